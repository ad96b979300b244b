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

	"github.com/gopheradvance/gopheradvance/hardware/screen"
)

// the frame image as bytes, preceded by the previous frame's digest value
// so that the hashes chain across the whole session
const videoBufferLength = sha1.Size + screen.ClksVisible*screen.ScanlinesVisible*2

// Video is an implementation of the screen.PixelRenderer interface. It
// generates a SHA-1 value of the image every frame. It does not display the
// image anywhere.
type Video struct {
	digest   [sha1.Size]byte
	buffer   []byte
	frameNum int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{
		buffer: make([]byte, videoBufferLength),
	}
}

// Hash implements the digest.Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Video) ResetDigest() {
	dig.digest = [sha1.Size]byte{}
}

// FrameNum returns the number of the last frame digested.
func (dig *Video) FrameNum() int {
	return dig.frameNum
}

// NewFrame implements the screen.PixelRenderer interface.
func (dig *Video) NewFrame(frame *screen.Framebuffer, frameNum int) error {
	// chain fingerprints by copying the value of the last fingerprint to
	// the head of the buffer
	copy(dig.buffer, dig.digest[:])

	i := sha1.Size
	for _, col := range frame {
		dig.buffer[i] = uint8(col)
		dig.buffer[i+1] = uint8(col >> 8)
		i += 2
	}

	dig.digest = sha1.Sum(dig.buffer)
	dig.frameNum = frameNum

	return nil
}

// EndRendering implements the screen.PixelRenderer interface.
func (dig *Video) EndRendering() error {
	return nil
}
