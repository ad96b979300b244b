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

// Package memory implements the 32bit bus of the Game Boy Advance. The
// Memory type owns the two blocks of work RAM and routes every other
// access to the subsystem that owns the addressed area: video memory and
// the display registers to the lcd package, sound registers to the apu
// package, the cartridge port to the cartridge package, and so on.
//
// Addresses are normalised with the memorymap package before use. Reads
// from areas that no subsystem claims return the open bus value, a rough
// model of the last value seen on the data bus.
//
// The bus operates at halfword granularity. Word accesses are composed of
// two halfword accesses and unaligned addresses are expected to have been
// dealt with by the CPU, which rotates unaligned reads rather than
// forwarding them.
package memory

import (
	"encoding/binary"
	"io"

	"github.com/gopheradvance/gopheradvance/hardware/apu"
	"github.com/gopheradvance/gopheradvance/hardware/dma"
	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/keypad"
	"github.com/gopheradvance/gopheradvance/hardware/lcd"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/hardware/memory/cartridge"
	"github.com/gopheradvance/gopheradvance/hardware/memory/memorymap"
	"github.com/gopheradvance/gopheradvance/hardware/timer"
)

// the byte of the POSTFLG register that triggers the power-down modes
const haltcntAddress = addresses.POSTFLG + 1

// Memory implements the bus of the Game Boy Advance.
type Memory struct {
	bios []byte

	// work RAM. fields are exported for the benefit of the savestate
	// package
	EWRAM [0x40000]byte
	IWRAM [0x8000]byte

	// the subsystems the bus routes accesses to
	Cart   *cartridge.Cartridge
	LCD    *lcd.LCD
	APU    *apu.APU
	DMA    *dma.DMA
	Timers *timer.Timers
	Keypad *keypad.Keypad
	IRQ    *irq.IRQ

	// registers owned by the bus itself. the serial port is not emulated
	// beyond storing whatever is written to its registers
	WaitControl uint16
	PostFlag    uint16
	Serial      [0x20]uint16

	// set by a write to HALTCNT and cleared by the machine loop when an
	// interrupt is raised
	Halted bool

	// last value seen on the data bus
	OpenBus uint32

	// IWRAM sits on a narrow bus with a data latch of its own. only the
	// addressed half of the latch refreshes on an access
	OpenBusIwram uint32

	// the most recently fetched BIOS opcode. the BIOS cannot be read by
	// code running outside of it; the latched opcode is returned instead
	OpenBusBios uint32

	// whether the most recent instruction fetch came from the BIOS
	BIOSFetch bool
}

// NewMemory is the preferred method of initialisation for the Memory
// type. The DMA unit is attached separately with SetDMA because the unit
// itself requires a reference to the bus.
func NewMemory(bios []byte, cart *cartridge.Cartridge,
	lcd *lcd.LCD, apu *apu.APU, timers *timer.Timers,
	keypad *keypad.Keypad, irq *irq.IRQ) *Memory {

	return &Memory{
		bios:   bios,
		Cart:   cart,
		LCD:    lcd,
		APU:    apu,
		Timers: timers,
		Keypad: keypad,
		IRQ:    irq,
	}
}

// HasBIOS reports whether a BIOS image was supplied at creation.
func (mem *Memory) HasBIOS() bool {
	return len(mem.bios) > 0
}

// SetDMA attaches the DMA unit to the bus.
func (mem *Memory) SetDMA(dma *dma.DMA) {
	mem.DMA = dma
}

// Snapshot creates a copy of the bus in its current state. The referenced
// subsystems are not copied; the hardware package snapshots each
// subsystem individually and reattaches them with Plumb.
func (mem *Memory) Snapshot() *Memory {
	n := *mem
	return &n
}

// Plumb reattaches the subsystems after a Snapshot of the whole machine
// has been made, or after a savestate has been loaded.
func (mem *Memory) Plumb(cart *cartridge.Cartridge, lcd *lcd.LCD, apu *apu.APU,
	dma *dma.DMA, timers *timer.Timers, keypad *keypad.Keypad, irq *irq.IRQ) {
	mem.Cart = cart
	mem.LCD = lcd
	mem.APU = apu
	mem.DMA = dma
	mem.Timers = timers
	mem.Keypad = keypad
	mem.IRQ = irq
}

// Reset the bus, including both blocks of work RAM.
func (mem *Memory) Reset() {
	mem.EWRAM = [0x40000]byte{}
	mem.IWRAM = [0x8000]byte{}
	mem.WaitControl = 0
	mem.PostFlag = 0
	mem.Serial = [0x20]uint16{}
	mem.Halted = false
	mem.OpenBus = 0
	mem.OpenBusIwram = 0
	mem.OpenBusBios = 0
	mem.BIOSFetch = false
}

// Fetch16 reads a halfword for instruction execution.
func (mem *Memory) Fetch16(address uint32) uint16 {
	mem.trackBIOSFetch(address &^ 0x01)
	return mem.Read16(address)
}

// Fetch32 reads a word for instruction execution.
func (mem *Memory) Fetch32(address uint32) uint32 {
	mem.trackBIOSFetch(address &^ 0x03)
	return mem.Read32(address)
}

// fetches from the BIOS refresh the BIOS prefetch latch. the latch
// satisfies data reads of the BIOS made by code running anywhere else
func (mem *Memory) trackBIOSFetch(address uint32) {
	ma, area := memorymap.MapAddress(address)
	mem.BIOSFetch = area == memorymap.BIOS
	if mem.BIOSFetch && int(ma&^0x03)+3 < len(mem.bios) {
		mem.OpenBusBios = binary.LittleEndian.Uint32(mem.bios[ma&^0x03:])
	}
}

// Read8 reads a byte from the bus.
func (mem *Memory) Read8(address uint32) uint8 {
	// SRAM sits on an 8bit bus and is the only area where a byte access
	// is not just part of a halfword access
	if _, area := memorymap.MapAddress(address); area == memorymap.SRAM {
		return mem.Cart.ReadSRAM(address & memorymap.MaskSRAM)
	}

	v := mem.Read16(address &^ 0x01)
	if address&0x01 == 0x01 {
		return uint8(v >> 8)
	}
	return uint8(v)
}

// Read16 reads a halfword from the bus. The address is aligned before
// use.
func (mem *Memory) Read16(address uint32) uint16 {
	address &^= 0x01

	ma, area := memorymap.MapAddress(address)

	var v uint16

	switch area {
	case memorymap.BIOS:
		if !mem.BIOSFetch || int(ma)+1 >= len(mem.bios) {
			v = uint16(mem.OpenBusBios >> ((address & 0x02) * 8))
		} else {
			v = binary.LittleEndian.Uint16(mem.bios[ma:])
		}

	case memorymap.EWRAM:
		v = binary.LittleEndian.Uint16(mem.EWRAM[ma&memorymap.MaskEWRAM:])

	case memorymap.IWRAM:
		v = binary.LittleEndian.Uint16(mem.IWRAM[ma&memorymap.MaskIWRAM:])

		if address&0x02 == 0x02 {
			mem.OpenBusIwram = mem.OpenBusIwram&0x0000ffff | uint32(v)<<16
		} else {
			mem.OpenBusIwram = mem.OpenBusIwram&0xffff0000 | uint32(v)
		}
		mem.OpenBus = mem.OpenBusIwram

		return v

	case memorymap.IO:
		var ok bool
		v, ok = mem.readIO(ma)
		if !ok {
			return uint16(mem.OpenBus >> ((address & 0x02) * 8))
		}

	case memorymap.Palette:
		v = mem.LCD.ReadPalette16(ma ^ memorymap.OriginPalette)

	case memorymap.VRAM:
		v = mem.LCD.ReadVRAM16(ma ^ memorymap.OriginVRAM)

	case memorymap.OAM:
		v = mem.LCD.ReadOAM16(ma ^ memorymap.OriginOAM)

	case memorymap.ROM:
		v = mem.Cart.ReadROM16(ma ^ memorymap.OriginROM)

	case memorymap.SRAM:
		// an 8bit device. the single byte is mirrored across the bus
		b := mem.Cart.ReadSRAM(ma & memorymap.MaskSRAM)
		v = uint16(b)<<8 | uint16(b)

	default:
		return uint16(mem.OpenBus >> ((address & 0x02) * 8))
	}

	mem.OpenBus = uint32(v)<<16 | uint32(v)

	return v
}

// Read32 reads a word from the bus. The address is aligned before use.
func (mem *Memory) Read32(address uint32) uint32 {
	address &^= 0x03
	return uint32(mem.Read16(address)) | uint32(mem.Read16(address+2))<<16
}

// Write8 writes a byte to the bus. Byte writes to most areas write both
// halves of the addressed halfword or are ignored entirely; the quirks
// are handled by the subsystem that owns the area.
func (mem *Memory) Write8(address uint32, data uint8) {
	ma, area := memorymap.MapAddress(address)

	switch area {
	case memorymap.EWRAM:
		mem.EWRAM[ma&memorymap.MaskEWRAM] = data
		return

	case memorymap.IWRAM:
		mem.IWRAM[ma&memorymap.MaskIWRAM] = data
		return

	case memorymap.IO:
		if ma == haltcntAddress {
			mem.Halted = true
			return
		}

		// byte writes to IO registers are merged with the unwritten half
		// of the register
		v, _ := mem.readIO(ma &^ 0x01)
		if ma&0x01 == 0x01 {
			v = v&0x00ff | uint16(data)<<8
		} else {
			v = v&0xff00 | uint16(data)
		}
		mem.writeIO(ma&^0x01, v)
		return

	case memorymap.Palette:
		mem.LCD.WritePalette8(ma^memorymap.OriginPalette, data)
		return

	case memorymap.VRAM:
		mem.LCD.WriteVRAM8(ma^memorymap.OriginVRAM, data)
		return

	case memorymap.OAM:
		// byte writes to OAM are dropped
		return

	case memorymap.SRAM:
		mem.Cart.WriteSRAM(address&memorymap.MaskSRAM, data)
		return
	}
}

// Write16 writes a halfword to the bus. The address is aligned before
// use.
func (mem *Memory) Write16(address uint32, data uint16) {
	address &^= 0x01

	ma, area := memorymap.MapAddress(address)

	switch area {
	case memorymap.EWRAM:
		binary.LittleEndian.PutUint16(mem.EWRAM[ma&memorymap.MaskEWRAM:], data)

	case memorymap.IWRAM:
		binary.LittleEndian.PutUint16(mem.IWRAM[ma&memorymap.MaskIWRAM:], data)

	case memorymap.IO:
		mem.writeIO(ma, data)

	case memorymap.Palette:
		mem.LCD.WritePalette16(ma^memorymap.OriginPalette, data)

	case memorymap.VRAM:
		mem.LCD.WriteVRAM16(ma^memorymap.OriginVRAM, data)

	case memorymap.OAM:
		mem.LCD.WriteOAM16(ma^memorymap.OriginOAM, data)

	case memorymap.ROM:
		// writes to the ROM area talk to the EEPROM, if fitted
		mem.Cart.WriteROM16(ma^memorymap.OriginROM, data)

	case memorymap.SRAM:
		mem.Cart.WriteSRAM(address&memorymap.MaskSRAM, uint8(data))
	}
}

// Write32 writes a word to the bus. The address is aligned before use.
func (mem *Memory) Write32(address uint32, data uint32) {
	address &^= 0x03

	// a small number of registers want to see word writes whole: the
	// sound FIFOs receive four samples at once and a timer's reload and
	// control registers must be written before the control takes effect
	if ma, area := memorymap.MapAddress(address); area == memorymap.IO {
		switch ma {
		case addresses.FIFO_A_L, addresses.FIFO_B_L:
			mem.APU.WriteFIFO(ma, data)
			return
		case addresses.TM0CNT_L, addresses.TM1CNT_L, addresses.TM2CNT_L, addresses.TM3CNT_L:
			mem.Timers.WriteRegister32(ma, data)
			return
		}
	}

	mem.Write16(address, uint16(data))
	mem.Write16(address+2, uint16(data>>16))
}

// serialIndex returns an index into the serial register store, or false
// for addresses not belonging to the (unemulated) serial port.
func serialIndex(address uint32) (uint32, bool) {
	if address >= addresses.SIODATA32_L && address < addresses.KEYINPUT {
		return (address - addresses.SIODATA32_L) >> 1, true
	}
	if address >= addresses.RCNT && address <= addresses.JOYSTAT {
		return (address - addresses.SIODATA32_L) >> 1, true
	}
	return 0, false
}

func (mem *Memory) readIO(address uint32) (uint16, bool) {
	switch {
	case address >= addresses.DISPCNT && address <= addresses.BLDY:
		return mem.LCD.ReadRegister(address)

	case address >= addresses.SOUND1CNT_L && address <= addresses.FIFO_B_H:
		return mem.APU.ReadRegister(address)

	case address >= addresses.DMA0SAD_L && address <= addresses.DMAMemtop:
		return mem.DMA.ReadRegister(address)

	case address >= addresses.TM0CNT_L && address <= addresses.TM3CNT_H:
		return mem.Timers.ReadRegister(address), true

	case address == addresses.KEYINPUT || address == addresses.KEYCNT:
		return mem.Keypad.ReadRegister(address), true

	case address == addresses.IE || address == addresses.IF || address == addresses.IME:
		return mem.IRQ.ReadRegister(address), true

	case address == addresses.WAITCNT:
		return mem.WaitControl, true

	case address == addresses.POSTFLG:
		return mem.PostFlag, true
	}

	if i, ok := serialIndex(address); ok {
		return mem.Serial[i], true
	}

	return 0, false
}

func (mem *Memory) writeIO(address uint32, data uint16) {
	switch {
	case address >= addresses.DISPCNT && address <= addresses.BLDY:
		mem.LCD.WriteRegister(address, data)
		return

	case address >= addresses.SOUND1CNT_L && address <= addresses.FIFO_B_H:
		mem.APU.WriteRegister(address, data)
		return

	case address >= addresses.DMA0SAD_L && address <= addresses.DMAMemtop:
		mem.DMA.WriteRegister(address, data)
		return

	case address >= addresses.TM0CNT_L && address <= addresses.TM3CNT_H:
		mem.Timers.WriteRegister(address, data)
		return

	case address == addresses.KEYCNT:
		mem.Keypad.WriteRegister(address, data)
		return

	case address == addresses.IE || address == addresses.IF || address == addresses.IME:
		mem.IRQ.WriteRegister(address, data)
		return

	case address == addresses.WAITCNT:
		mem.WaitControl = data
		return

	case address == addresses.POSTFLG:
		mem.PostFlag = data & 0x01
		return
	}

	if i, ok := serialIndex(address); ok {
		mem.Serial[i] = data
	}
}

// WriteState writes the current state of the bus to the io.Writer. The
// BIOS image and the state of the attached subsystems are not included.
func (mem *Memory) WriteState(w io.Writer) error {
	for _, f := range mem.stateFields() {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadState restores a state previously created by WriteState.
func (mem *Memory) ReadState(r io.Reader) error {
	for _, f := range mem.stateFields() {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func (mem *Memory) stateFields() []interface{} {
	return []interface{}{
		&mem.EWRAM, &mem.IWRAM,
		&mem.WaitControl, &mem.PostFlag, &mem.Serial,
		&mem.Halted, &mem.OpenBus,
		&mem.OpenBusIwram, &mem.OpenBusBios, &mem.BIOSFetch,
	}
}
