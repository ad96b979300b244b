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

package hardware_test

import (
	"encoding/binary"
	"testing"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/test"
)

// build a bootable ROM image: a valid header, a branch over the header at
// the entry point and the supplied program at offset 0xc0
func testROM(opcodes ...uint32) []byte {
	rom := make([]byte, 0x1000)

	binary.LittleEndian.PutUint32(rom, 0xea00002e) // B 0xc0
	copy(rom[0xa0:], "SCENARIO")
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

func newGBA(t *testing.T, opcodes ...uint32) *hardware.GBA {
	t.Helper()
	gba := hardware.NewGBA(screen.NewScreen(), nil)
	err := gba.AttachCartridge(testROM(opcodes...))
	if err != nil {
		t.Fatal(err)
	}
	return gba
}

func TestNoCartridge(t *testing.T) {
	gba := hardware.NewGBA(screen.NewScreen(), nil)
	err := gba.RunFrame()
	test.Equate(t, curated.Is(err, hardware.NoCartridge), true)
}

func TestInvalidROM(t *testing.T) {
	gba := hardware.NewGBA(screen.NewScreen(), nil)
	err := gba.AttachCartridge(make([]byte, 0x10))
	if err == nil {
		t.Fatal("expected rom validation to fail")
	}
}

func TestBoot(t *testing.T) {
	gba := newGBA(t)

	// booting without a bios leaves the machine the way the bios would
	test.Equate(t, gba.CPU.Regs.R[15], uint32(0x08000000))
	test.Equate(t, gba.CPU.Regs.R[13], uint32(0x03007f00))
	test.Equate(t, gba.Clock, uint64(0))
}

func TestScenario(t *testing.T) {
	gba := newGBA(t,
		0xe3a00403, // MOV r0, #0x03000000
		0xe3a010aa, // MOV r1, #0xaa
		0xe5801000, // STR r1, [r0]
		0xeafffffe, // B . (spin)
	)

	err := gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}

	test.Equate(t, gba.Scr.FrameNum(), 1)
	test.Equate(t, gba.Mem.IWRAM[0], 0xaa)

	// a frame boundary to frame boundary run consumes one frame's worth of
	// cycles, give or take the instruction in flight at vblank entry
	c1 := gba.Clock
	err = gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}
	diff := gba.Clock - c1
	if diff < screen.CyclesPerFrame || diff > screen.CyclesPerFrame+16 {
		t.Errorf("frame consumed %d cycles", diff)
	}
}

func TestResetIdempotence(t *testing.T) {
	gba := newGBA(t,
		0xe3a00403, // MOV r0, #0x03000000
		0xe3a010aa, // MOV r1, #0xaa
		0xe5801000, // STR r1, [r0]
		0xeafffffe, // B . (spin)
	)

	err := gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}

	err = gba.Reset()
	if err != nil {
		t.Fatal(err)
	}

	test.Equate(t, gba.Clock, uint64(0))
	test.Equate(t, gba.CPU.Regs.R[15], uint32(0x08000000))
	test.Equate(t, gba.Mem.IWRAM[0], 0)
	test.Equate(t, gba.Scr.FrameNum(), 0)

	// the machine behaves the same after a reset
	err = gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, gba.Mem.IWRAM[0], 0xaa)
}

func TestHalt(t *testing.T) {
	gba := newGBA(t,
		0xe3a00301, // MOV r0, #0x04000000
		0xe2800c03, // ADD r0, r0, #0x300
		0xe5c01001, // STRB r1, [r0, #1] (HALTCNT)
		0xeafffffe, // B . (never reached; no interrupt is enabled)
	)

	err := gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}

	// with no enabled interrupt the cpu stays halted while the rest of the
	// machine keeps running
	test.Equate(t, gba.Mem.Halted, true)
	test.Equate(t, gba.Scr.FrameNum(), 1)
}

func TestSnapshotPlumb(t *testing.T) {
	gba := newGBA(t,
		0xe3a00403, // MOV r0, #0x03000000
		0xe5900004, // LDR r0, [r0, #4] (keep the bus busy)
		0xeafffffd, // B (back to the LDR)
	)

	err := gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}

	state := gba.Snapshot()
	clock := gba.Clock
	pc := gba.CPU.Regs.R[15]

	err = gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}
	err = gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}

	gba.Plumb(state)

	test.Equate(t, gba.Clock, clock)
	test.Equate(t, gba.CPU.Regs.R[15], pc)
	test.Equate(t, gba.Scr.FrameNum(), 1)

	// the restored machine keeps running
	err = gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}
	test.Equate(t, gba.Scr.FrameNum(), 2)
}

type countingMixer struct {
	samples int
}

func (m *countingMixer) SetAudio(samples []int16) error {
	m.samples += len(samples)
	return nil
}

func (m *countingMixer) EndMixing() error {
	return nil
}

func TestAudioDelivery(t *testing.T) {
	scr := screen.NewScreen()
	mix := &countingMixer{}
	scr.AddAudioMixer(mix)

	gba := hardware.NewGBA(scr, nil)
	err := gba.AttachCartridge(testROM(0xeafffffe))
	if err != nil {
		t.Fatal(err)
	}

	err = gba.RunFrame()
	if err != nil {
		t.Fatal(err)
	}

	// interleaved stereo pairs
	if mix.samples == 0 || mix.samples%2 != 0 {
		t.Errorf("mixer received %d samples", mix.samples)
	}
}
