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

package memory_test

import (
	"encoding/binary"
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/apu"
	"github.com/gopheradvance/gopheradvance/hardware/dma"
	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/keypad"
	"github.com/gopheradvance/gopheradvance/hardware/lcd"
	"github.com/gopheradvance/gopheradvance/hardware/memory"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/hardware/memory/cartridge"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/hardware/timer"
	"github.com/gopheradvance/gopheradvance/test"
)

// a small ROM image with a valid header and a recognisable halfword at
// offset 0x100
func testROM(t *testing.T) *cartridge.Cartridge {
	t.Helper()

	rom := make([]byte, 0x1000)
	copy(rom[0x00a0:], "BUS TEST")
	rom[0x00b2] = 0x96

	var sum uint8
	for _, b := range rom[0x00a0:0x00bd] {
		sum += b
	}
	rom[0x00bd] = -(sum + 0x19)

	binary.LittleEndian.PutUint16(rom[0x0100:], 0xbeef)

	cart, err := cartridge.NewCartridge(rom)
	if err != nil {
		t.Fatal(err)
	}
	return cart
}

func newMemory(t *testing.T) *memory.Memory {
	t.Helper()

	ir := irq.NewIRQ()
	mem := memory.NewMemory(nil, testROM(t),
		lcd.NewLCD(screen.NewScreen()), apu.NewAPU(),
		timer.NewTimers(ir), keypad.NewKeypad(ir), ir)
	mem.SetDMA(dma.NewDMA(mem, ir))
	return mem
}

func TestWorkRAM(t *testing.T) {
	mem := newMemory(t)

	mem.Write32(0x02000000, 0x12345678)
	test.Equate(t, mem.Read32(0x02000000), uint32(0x12345678))
	test.Equate(t, mem.Read16(0x02000000), 0x5678)
	test.Equate(t, mem.Read8(0x02000003), 0x12)

	// EWRAM is mirrored every 256k
	test.Equate(t, mem.Read32(0x02040000), uint32(0x12345678))

	mem.Write16(0x03000100, 0xcafe)
	test.Equate(t, mem.Read16(0x03000100), 0xcafe)

	// IWRAM is mirrored every 32k
	test.Equate(t, mem.Read16(0x03ff8100), 0xcafe)
}

func TestIODispatch(t *testing.T) {
	mem := newMemory(t)

	mem.Write16(addresses.DISPCNT, 0x0403)
	test.Equate(t, mem.Read16(addresses.DISPCNT), 0x0403)

	mem.Write16(addresses.IE, 0x0001)
	test.Equate(t, mem.Read16(addresses.IE), 0x0001)

	// nothing pressed
	test.Equate(t, mem.Read16(addresses.KEYINPUT), 0x03ff)
}

func TestIOByteWrite(t *testing.T) {
	mem := newMemory(t)

	// byte writes merge with the other half of the register
	mem.Write8(addresses.IE, 0xff)
	mem.Write8(addresses.IE+1, 0x3f)
	test.Equate(t, mem.Read16(addresses.IE), 0x3fff)
}

func TestVRAMRouting(t *testing.T) {
	mem := newMemory(t)

	mem.Write16(0x06000000, 0x1234)
	test.Equate(t, mem.Read16(0x06000000), 0x1234)

	// VRAM is mirrored every 128k
	test.Equate(t, mem.Read16(0x06020000), 0x1234)

	// the upper 32k of VRAM appears twice within each mirror
	mem.Write16(0x06010000, 0x5678)
	test.Equate(t, mem.Read16(0x06018000), 0x5678)

	// byte writes to the object region of VRAM are dropped
	mem.Write8(0x06010100, 0xab)
	test.Equate(t, mem.Read16(0x06010100), 0)

	// byte writes to OAM are dropped
	mem.Write8(0x07000000, 0xab)
	test.Equate(t, mem.Read16(0x07000000), 0)

	// byte writes to palette RAM write both halves of the halfword
	mem.Write8(0x05000000, 0xab)
	test.Equate(t, mem.Read16(0x05000000), 0xabab)
}

func TestROM(t *testing.T) {
	mem := newMemory(t)

	test.Equate(t, mem.Read16(0x08000100), 0xbeef)

	// the three waitstate regions mirror the same data
	test.Equate(t, mem.Read16(0x0a000100), 0xbeef)
	test.Equate(t, mem.Read16(0x0c000100), 0xbeef)

	// reads beyond the end of the image see the address lines
	test.Equate(t, mem.Read16(0x08002000), 0x1000)

	// a cartridge without backup hardware pulls the SRAM area high
	test.Equate(t, mem.Read8(0x0e000000), 0xff)
}

func TestOpenBus(t *testing.T) {
	mem := newMemory(t)

	mem.Write16(0x02000000, 0xabcd)
	test.Equate(t, mem.Read16(0x02000000), 0xabcd)

	// unmapped areas return the last value seen on the bus
	test.Equate(t, mem.Read16(0x01000000), 0xabcd)
	test.Equate(t, mem.Read16(0x00004000), 0xabcd)
}

func TestOpenBusLatches(t *testing.T) {
	bios := make([]byte, 0x4000)
	binary.LittleEndian.PutUint32(bios[0x0200:], 0xe12fff1e)

	ir := irq.NewIRQ()
	mem := memory.NewMemory(bios, testROM(t),
		lcd.NewLCD(screen.NewScreen()), apu.NewAPU(),
		timer.NewTimers(ir), keypad.NewKeypad(ir), ir)
	mem.SetDMA(dma.NewDMA(mem, ir))

	// a data read of the BIOS by code running outside of it returns the
	// most recently fetched BIOS opcode, wherever in the BIOS it reads
	mem.Fetch32(0x0200)
	mem.Fetch32(0x08000000)
	test.Equate(t, mem.Read32(0x0000), uint32(0xe12fff1e))
	test.Equate(t, mem.Read32(0x1000), uint32(0xe12fff1e))

	// code running inside the BIOS reads it normally
	mem.Fetch32(0x0200)
	test.Equate(t, mem.Read32(0x0200), uint32(0xe12fff1e))
	test.Equate(t, mem.Read32(0x0000), uint32(0))

	// only the addressed half of the IWRAM latch refreshes on an access
	mem.Write32(0x03000000, 0x11112222)
	mem.Read16(0x03000000)
	mem.Write32(0x03000000, 0x33334444)
	mem.Read16(0x03000002)

	test.Equate(t, mem.Read16(0x01000000), 0x2222)
	test.Equate(t, mem.Read16(0x01000002), 0x3333)
}

func TestTimerWordWrite(t *testing.T) {
	mem := newMemory(t)

	// a word write sets the reload value before the start bit is seen, so
	// the new reload value appears in the counter immediately
	mem.Write32(addresses.TM0CNT_L, 0x0080fff0)
	test.Equate(t, mem.Read16(addresses.TM0CNT_L), 0xfff0)
	test.Equate(t, mem.Read16(addresses.TM0CNT_H), 0x0080)
}

func TestHalt(t *testing.T) {
	mem := newMemory(t)
	test.Equate(t, mem.Halted, false)
	mem.Write8(addresses.POSTFLG+1, 0x00)
	test.Equate(t, mem.Halted, true)
}
