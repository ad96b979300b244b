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

// Package irq implements the console's interrupt controller. The other
// hardware sub-systems raise interrupts through the Raise() function; the
// CPU asks for the state of its interrupt line with the Asserted() function.
//
// Peripherals never talk to the CPU directly. The interrupt line is the one
// channel between them and it is owned by this package.
//
// The line the CPU sees lags the interrupt request by a few cycles, as it
// does on the real console where the request passes through a synchroniser.
// The Step() function moves the synchroniser along and must be called once
// per machine cycle.
package irq

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
)

// Interrupt identifies the interrupt sources recognised by the controller.
// The value is the source's bit position in the IE and IF registers.
type Interrupt uint16

// List of valid Interrupt values.
const (
	VBlank  Interrupt = 0x0001
	HBlank  Interrupt = 0x0002
	VCount  Interrupt = 0x0004
	Timer0  Interrupt = 0x0008
	Timer1  Interrupt = 0x0010
	Timer2  Interrupt = 0x0020
	Timer3  Interrupt = 0x0040
	Serial  Interrupt = 0x0080
	DMA0    Interrupt = 0x0100
	DMA1    Interrupt = 0x0200
	DMA2    Interrupt = 0x0400
	DMA3    Interrupt = 0x0800
	Keypad  Interrupt = 0x1000
	GamePak Interrupt = 0x2000
)

func (i Interrupt) String() string {
	switch i {
	case VBlank:
		return "VBLANK"
	case HBlank:
		return "HBLANK"
	case VCount:
		return "VCOUNT"
	case Timer0:
		return "TIMER0"
	case Timer1:
		return "TIMER1"
	case Timer2:
		return "TIMER2"
	case Timer3:
		return "TIMER3"
	case Serial:
		return "SERIAL"
	case DMA0:
		return "DMA0"
	case DMA1:
		return "DMA1"
	case DMA2:
		return "DMA2"
	case DMA3:
		return "DMA3"
	case Keypad:
		return "KEYPAD"
	case GamePak:
		return "GAMEPAK"
	}
	return "unknown"
}

// number of cycles between an interrupt being requested and the CPU seeing
// the asserted line
const syncDelay = 3

// IRQ implements the console's interrupt controller.
type IRQ struct {
	// the IE, IF and IME registers. enable is IE, flags is IF
	enable uint16
	flags  uint16
	master bool

	// the synchroniser between the interrupt request and the CPU's interrupt
	// line. sync[0] is the state the CPU sees
	sync [syncDelay + 1]bool
}

// NewIRQ is the preferred method of initialisation for the IRQ type.
func NewIRQ() *IRQ {
	return &IRQ{}
}

// Snapshot creates a copy of the IRQ controller in its current state.
func (ir *IRQ) Snapshot() *IRQ {
	n := *ir
	return &n
}

// Plumb is a stub to satisfy the sub-system convention. The IRQ controller
// holds no references that need to be rewired after a Snapshot().
func (ir *IRQ) Plumb() {
}

// Reset the controller to its power-on state.
func (ir *IRQ) Reset() {
	ir.enable = 0
	ir.flags = 0
	ir.master = false
	ir.sync = [syncDelay + 1]bool{}
}

func (ir *IRQ) String() string {
	return fmt.Sprintf("IE=%#04x IF=%#04x IME=%v", ir.enable, ir.flags, ir.master)
}

// Raise requests an interrupt. The corresponding bit in the IF register is
// set regardless of the state of the IE and IME registers.
//
// Note that it is the raising sub-system's responsibility to check its own
// interrupt-enable condition (eg. the IRQ bit of a timer's control register)
// before calling Raise().
func (ir *IRQ) Raise(i Interrupt) {
	ir.flags |= uint16(i)
}

// Step moves the synchroniser along by one machine cycle.
func (ir *IRQ) Step() {
	copy(ir.sync[:], ir.sync[1:])
	ir.sync[syncDelay] = ir.master && ir.enable&ir.flags != 0
}

// Asserted returns the state of the CPU's interrupt line.
func (ir *IRQ) Asserted() bool {
	return ir.sync[0]
}

// Pending returns true if an enabled interrupt has been requested,
// regardless of the IME register and of the synchroniser. This is the
// condition that releases the CPU from the halt state.
func (ir *IRQ) Pending() bool {
	return ir.enable&ir.flags != 0
}

// WriteState writes the controller's state to the io.Writer. Used by the
// savestate package; the format is fixed-width little-endian fields in
// declaration order.
func (ir *IRQ) WriteState(w io.Writer) error {
	for _, v := range []interface{}{ir.enable, ir.flags, ir.master, ir.sync} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadState reads a state previously written with WriteState() into the
// controller.
func (ir *IRQ) ReadState(r io.Reader) error {
	for _, v := range []interface{}{&ir.enable, &ir.flags, &ir.master, &ir.sync} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister returns the value of the named interrupt control register.
func (ir *IRQ) ReadRegister(address uint32) uint16 {
	switch address {
	case addresses.IE:
		return ir.enable
	case addresses.IF:
		return ir.flags
	case addresses.IME:
		if ir.master {
			return 0x0001
		}
		return 0x0000
	}
	return 0
}

// WriteRegister updates the named interrupt control register. Writing to the
// IF register clears the flag bits that are set in the written value.
func (ir *IRQ) WriteRegister(address uint32, data uint16) {
	switch address {
	case addresses.IE:
		ir.enable = data & 0x3fff
	case addresses.IF:
		// write one to clear
		ir.flags &^= data
	case addresses.IME:
		ir.master = data&0x0001 == 0x0001
	}
}
