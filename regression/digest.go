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

package regression

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/database"
	"github.com/gopheradvance/gopheradvance/digest"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
)

const digestEntryID = "digest"

const (
	digestFieldMode int = iota
	digestFieldCartName
	digestFieldCartHash
	digestFieldNumFrames
	digestFieldDigest
	numDigestFields
)

// DigestEntry is the simplest regression test type: run a ROM for a set
// number of frames and compare a hash of the output.
type DigestEntry struct {
	Mode      DigestMode
	CartLoad  cartridgeloader.Loader
	NumFrames int
	Digest    string
}

// NewDigestEntry is the preferred method of initialisation for the
// DigestEntry type. The reference digest is recorded when the entry is
// added to the database with RegressAdd.
func NewDigestEntry(mode DigestMode, cartload cartridgeloader.Loader, numFrames int) (*DigestEntry, error) {
	if mode == DigestUndefined {
		return nil, curated.Errorf(RegressionError, "undefined digest mode")
	}
	if numFrames < 1 {
		return nil, curated.Errorf(RegressionError, "number of frames must be at least one")
	}

	return &DigestEntry{
		Mode:      mode,
		CartLoad:  cartload,
		NumFrames: numFrames,
	}, nil
}

func deserialiseDigestEntry(fields database.SerialisedEntry) (database.Entry, error) {
	if len(fields) != numDigestFields {
		return nil, curated.Errorf(RegressionError, "wrong number of fields in digest entry")
	}

	mode, err := ParseDigestMode(fields[digestFieldMode])
	if err != nil {
		return nil, curated.Errorf(RegressionError, err)
	}

	numFrames, err := strconv.Atoi(fields[digestFieldNumFrames])
	if err != nil {
		return nil, curated.Errorf(RegressionError, err)
	}

	cartload := cartridgeloader.NewLoader(fields[digestFieldCartName])
	cartload.Hash = fields[digestFieldCartHash]

	return &DigestEntry{
		Mode:      mode,
		CartLoad:  cartload,
		NumFrames: numFrames,
		Digest:    fields[digestFieldDigest],
	}, nil
}

// ID implements the database.Entry interface.
func (ent DigestEntry) ID() string {
	return digestEntryID
}

// String implements the database.Entry interface.
func (ent DigestEntry) String() string {
	return fmt.Sprintf("[%s/%s] %s frames=%d", ent.ID(), ent.Mode, ent.CartLoad.ShortName(), ent.NumFrames)
}

// Serialise implements the database.Entry interface.
func (ent DigestEntry) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
		ent.Mode.String(),
		ent.CartLoad.Filename,
		ent.CartLoad.Hash,
		strconv.Itoa(ent.NumFrames),
		ent.Digest,
	}, nil
}

// CleanUp implements the database.Entry interface.
func (ent DigestEntry) CleanUp() error {
	return nil
}

// regress implements the Regressor interface.
func (ent *DigestEntry) regress(newRegression bool, output io.Writer, message string) (bool, error) {
	output.Write([]byte(message))

	// Load() verifies the ROM hash recorded when the test was added
	err := ent.CartLoad.Load()
	if err != nil {
		return false, curated.Errorf(RegressionError, err)
	}

	scr := screen.NewScreen()

	var vid *digest.Video
	var aud *digest.Audio

	if ent.Mode == DigestVideoOnly || ent.Mode == DigestBoth {
		vid = digest.NewVideo()
		scr.AddPixelRenderer(vid)
	}
	if ent.Mode == DigestAudioOnly || ent.Mode == DigestBoth {
		aud = digest.NewAudio()
		scr.AddAudioMixer(aud)
	}

	gba := hardware.NewGBA(scr, nil)

	err = gba.AttachCartridge(ent.CartLoad.Data)
	if err != nil {
		return false, curated.Errorf(RegressionError, err)
	}

	for i := 0; i < ent.NumFrames; i++ {
		err = gba.RunFrame()
		if err != nil {
			return false, curated.Errorf(RegressionError, err)
		}
	}

	var d string
	switch ent.Mode {
	case DigestVideoOnly:
		d = vid.Hash()
	case DigestAudioOnly:
		d = aud.Hash()
	case DigestBoth:
		d = fmt.Sprintf("%s/%s", vid.Hash(), aud.Hash())
	}

	if newRegression {
		ent.Digest = d
		return true, nil
	}

	return d == ent.Digest, nil
}
