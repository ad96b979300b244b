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

package savestate_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/savestate"
	"github.com/gopheradvance/gopheradvance/test"
)

func testROM(opcodes ...uint32) []byte {
	rom := make([]byte, 0x1000)

	binary.LittleEndian.PutUint32(rom, 0xea00002e) // B 0xc0
	copy(rom[0xa0:], "SAVESTATE")
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

// a machine running a counter loop so that successive frames have different
// state
func newGBA(t *testing.T) *hardware.GBA {
	t.Helper()

	gba := hardware.NewGBA(screen.NewScreen(), nil)
	err := gba.AttachCartridge(testROM(
		0xe3a00403, // MOV r0, #0x03000000
		0xe2811001, // ADD r1, r1, #1
		0xe5801000, // STR r1, [r0]
		0xeafffffc, // B (back to the ADD)
	))
	if err != nil {
		t.Fatal(err)
	}
	return gba
}

func TestRoundTrip(t *testing.T) {
	gba := newGBA(t)

	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}

	blob, err := savestate.Save(gba)
	if err != nil {
		t.Fatal(err)
	}

	clock := gba.Clock
	r1 := gba.CPU.Regs.R[1]
	iwram := gba.Mem.IWRAM[0]

	// let the machine move on
	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}
	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}

	if err := savestate.Load(gba, blob); err != nil {
		t.Fatal(err)
	}

	test.Equate(t, gba.Clock, clock)
	test.Equate(t, gba.CPU.Regs.R[1], r1)
	test.Equate(t, gba.Mem.IWRAM[0], iwram)
	test.Equate(t, gba.Scr.FrameNum(), 1)

	// a reloaded machine produces the same state again
	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}
	blob2, err := savestate.Save(gba)
	if err != nil {
		t.Fatal(err)
	}

	if err := savestate.Load(gba, blob); err != nil {
		t.Fatal(err)
	}
	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}
	blob3, err := savestate.Save(gba)
	if err != nil {
		t.Fatal(err)
	}

	test.Equate(t, bytes.Equal(blob2, blob3), true)
}

func TestRejectedLoad(t *testing.T) {
	gba := newGBA(t)

	if err := gba.RunFrame(); err != nil {
		t.Fatal(err)
	}

	before, err := savestate.Save(gba)
	if err != nil {
		t.Fatal(err)
	}

	check := func(blob []byte) {
		t.Helper()

		err := savestate.Load(gba, blob)
		if err == nil {
			t.Fatal("expected load to fail")
		}
		test.Equate(t, curated.Has(err, savestate.InvalidState), true)

		// the machine is untouched
		after, err := savestate.Save(gba)
		if err != nil {
			t.Fatal(err)
		}
		test.Equate(t, bytes.Equal(before, after), true)
	}

	// bad magic
	bad := append([]byte{}, before...)
	bad[0] = 'X'
	check(bad)

	// bad version
	bad = append([]byte{}, before...)
	bad[4] = 0xff
	check(bad)

	// truncated section
	check(before[:len(before)-8])

	// trailing rubbish
	check(append(append([]byte{}, before...), 0x00))

	// corrupted section id
	bad = append([]byte{}, before...)
	bad[5] = 0x7f
	check(bad)

	// empty blob
	check(nil)
}

func TestDifferentCartridge(t *testing.T) {
	gba := newGBA(t)

	blob, err := savestate.Save(gba)
	if err != nil {
		t.Fatal(err)
	}

	other := hardware.NewGBA(screen.NewScreen(), nil)
	rom := testROM(0xeafffffe)
	copy(rom[0xac:], "XXXX") // different game code
	rom[0xbd] = 0
	var sum uint8
	for _, b := range rom[0xa0:0xbd] {
		sum += b
	}
	rom[0xbd] = -(sum + 0x19)
	if err := other.AttachCartridge(rom); err != nil {
		t.Fatal(err)
	}

	err = savestate.Load(other, blob)
	if err == nil {
		t.Fatal("expected load into a different cartridge to fail")
	}
}
