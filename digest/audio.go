// This file is part of gopherAdvance.
//
// gopherAdvance is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// gopherAdvance is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with gopherAdvance.  If not, see <https://www.gnu.org/licenses/>.

package digest

import (
	"crypto/sha1"
	"fmt"
)

// Audio is an implementation of the screen.AudioMixer interface. It
// generates a SHA-1 value of the audio stream, one digest per frame's worth
// of samples, chained across the whole session.
type Audio struct {
	digest [sha1.Size]byte
	buffer []byte
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() *Audio {
	return &Audio{}
}

// Hash implements the digest.Digest interface.
func (dig *Audio) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Audio) ResetDigest() {
	dig.digest = [sha1.Size]byte{}
}

// SetAudio implements the screen.AudioMixer interface.
func (dig *Audio) SetAudio(samples []int16) error {
	// chain fingerprints by placing the previous digest value at the head
	// of the buffer
	l := sha1.Size + len(samples)*2
	if cap(dig.buffer) < l {
		dig.buffer = make([]byte, l)
	}
	dig.buffer = dig.buffer[:l]

	copy(dig.buffer, dig.digest[:])

	i := sha1.Size
	for _, s := range samples {
		dig.buffer[i] = uint8(s)
		dig.buffer[i+1] = uint8(uint16(s) >> 8)
		i += 2
	}

	dig.digest = sha1.Sum(dig.buffer)

	return nil
}

// EndMixing implements the screen.AudioMixer interface.
func (dig *Audio) EndMixing() error {
	return nil
}
