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

// Package keypad implements the console's input latch. The ten buttons of
// the console appear as bits in the KEYINPUT register, with a bit value of
// zero meaning the button is pressed.
//
// Input arrives through the SetInput() function. The emulation is expected
// to call SetInput() between frames; there is no provision for changing the
// input state mid-frame, which is far finer control than any human player
// could achieve on the real console.
//
// The KEYCNT register can raise an interrupt when a selected combination of
// buttons is pressed. The condition is checked by the Step() function once
// per machine cycle.
package keypad

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
)

// Input is the state of the console's buttons. A field value of true means
// the button is held down.
type Input struct {
	A      bool
	B      bool
	Select bool
	Start  bool
	Right  bool
	Left   bool
	Up     bool
	Down   bool
	R      bool
	L      bool
}

// the in-register bit for each button
const (
	bitA = 1 << iota
	bitB
	bitSelect
	bitStart
	bitRight
	bitLeft
	bitUp
	bitDown
	bitR
	bitL
)

// all buttons released. a zero bit means pressed
const statusReleased = uint16(0x03ff)

// KEYCNT register bits
const (
	maskSelected     = uint16(0x03ff)
	maskIRQEnable    = uint16(0x4000)
	maskIRQCondition = uint16(0x8000)
)

// Keypad implements the console's input latch.
type Keypad struct {
	irq *irq.IRQ

	// the KEYINPUT and KEYCNT registers
	status  uint16
	control uint16
}

// NewKeypad is the preferred method of initialisation for the Keypad type.
func NewKeypad(irq *irq.IRQ) *Keypad {
	return &Keypad{
		irq:    irq,
		status: statusReleased,
	}
}

// Snapshot creates a copy of the keypad in its current state.
func (key *Keypad) Snapshot() *Keypad {
	n := *key
	return &n
}

// Plumb the IRQ controller back into the keypad after a Snapshot().
func (key *Keypad) Plumb(irq *irq.IRQ) {
	key.irq = irq
}

// Reset the keypad to its power-on state. All buttons released.
func (key *Keypad) Reset() {
	key.status = statusReleased
	key.control = 0
}

func (key *Keypad) String() string {
	return fmt.Sprintf("KEYINPUT=%#04x KEYCNT=%#04x", key.status, key.control)
}

// SetInput latches the state of the console's buttons.
func (key *Keypad) SetInput(inp Input) {
	v := statusReleased
	if inp.A {
		v &^= bitA
	}
	if inp.B {
		v &^= bitB
	}
	if inp.Select {
		v &^= bitSelect
	}
	if inp.Start {
		v &^= bitStart
	}
	if inp.Right {
		v &^= bitRight
	}
	if inp.Left {
		v &^= bitLeft
	}
	if inp.Up {
		v &^= bitUp
	}
	if inp.Down {
		v &^= bitDown
	}
	if inp.R {
		v &^= bitR
	}
	if inp.L {
		v &^= bitL
	}
	key.status = v
}

// Step checks the KEYCNT interrupt condition. Must be called once per
// machine cycle.
func (key *Keypad) Step() {
	if key.control&maskIRQEnable != maskIRQEnable {
		return
	}

	selected := key.control & maskSelected
	pressed := ^key.status & maskSelected

	var raise bool
	if key.control&maskIRQCondition == maskIRQCondition {
		// logical AND. all selected buttons must be pressed
		raise = selected != 0 && pressed&selected == selected
	} else {
		// logical OR. any selected button pressed
		raise = pressed&selected != 0
	}

	if raise {
		key.irq.Raise(irq.Keypad)
	}
}

// WriteState writes the keypad's state to the io.Writer. Used by the
// savestate package.
func (key *Keypad) WriteState(w io.Writer) error {
	for _, v := range []interface{}{key.status, key.control} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadState reads a state previously written with WriteState() into the
// keypad.
func (key *Keypad) ReadState(r io.Reader) error {
	for _, v := range []interface{}{&key.status, &key.control} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// ReadRegister returns the value of the named keypad register.
func (key *Keypad) ReadRegister(address uint32) uint16 {
	switch address {
	case addresses.KEYINPUT:
		return key.status
	case addresses.KEYCNT:
		return key.control
	}
	return 0
}

// WriteRegister updates the named keypad register. The KEYINPUT register is
// read-only; writes to it are ignored.
func (key *Keypad) WriteRegister(address uint32, data uint16) {
	if address == addresses.KEYCNT {
		key.control = data
	}
}
