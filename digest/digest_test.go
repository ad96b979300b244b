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

package digest_test

import (
	"encoding/binary"
	"testing"

	"github.com/gopheradvance/gopheradvance/digest"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/test"
)

func testROM(opcodes ...uint32) []byte {
	rom := make([]byte, 0x1000)

	binary.LittleEndian.PutUint32(rom, 0xea00002e) // B 0xc0
	copy(rom[0xa0:], "DIGEST")
	rom[0xb2] = 0x96

	var sum uint8
	for _, b := range rom[0xa0:0xbd] {
		sum += b
	}
	rom[0xbd] = -(sum + 0x19)

	for i, op := range opcodes {
		binary.LittleEndian.PutUint32(rom[0xc0+i*4:], op)
	}

	return rom
}

// runDigest runs the given program for the given number of frames and
// returns the final video and audio hashes
func runDigest(t *testing.T, frames int, rom []byte) (string, string) {
	t.Helper()

	scr := screen.NewScreen()
	vid := digest.NewVideo()
	aud := digest.NewAudio()
	scr.AddPixelRenderer(vid)
	scr.AddAudioMixer(aud)

	gba := hardware.NewGBA(scr, nil)
	if err := gba.AttachCartridge(rom); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < frames; i++ {
		if err := gba.RunFrame(); err != nil {
			t.Fatal(err)
		}
	}

	test.Equate(t, vid.FrameNum(), frames)

	return vid.Hash(), aud.Hash()
}

func TestDeterminism(t *testing.T) {
	rom := testROM(
		0xe3a00403, // MOV r0, #0x03000000
		0xe2811001, // ADD r1, r1, #1
		0xe5801000, // STR r1, [r0]
		0xeafffffc, // B (back to the ADD)
	)

	v1, a1 := runDigest(t, 3, rom)
	v2, a2 := runDigest(t, 3, rom)

	test.Equate(t, v1, v2)
	test.Equate(t, a1, a2)
}

func TestChaining(t *testing.T) {
	rom := testROM(0xeafffffe) // B . (spin)

	scr := screen.NewScreen()
	vid := digest.NewVideo()
	scr.AddPixelRenderer(vid)

	gba := hardware.NewGBA(scr, nil)
	if err := gba.AttachCartridge(rom); err != nil {
		t.Fatal(err)
	}

	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}
	h1 := vid.Hash()

	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}
	h2 := vid.Hash()

	// even though the image is identical the chained hash moves on
	if h1 == h2 {
		t.Error("chained digests should differ between frames")
	}
}

func TestDifferentOutput(t *testing.T) {
	// a black backdrop against a forced-blank white display
	quiet := testROM(0xeafffffe)
	busy := testROM(
		0xe3a00301, // MOV r0, #0x04000000
		0xe3a01080, // MOV r1, #0x80
		0xe1c010b0, // STRH r1, [r0] (DISPCNT: forced blank)
		0xeafffffe, // B . (spin)
	)

	v1, _ := runDigest(t, 2, quiet)
	v2, _ := runDigest(t, 2, busy)

	if v1 == v2 {
		t.Error("different programs should produce different video digests")
	}
}
