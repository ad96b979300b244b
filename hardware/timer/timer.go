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

// Package timer implements the console's four 16bit up-counting timers.
//
// Each timer counts up from a programmable reload value at one of four
// prescaler intervals, or in "count up" mode where the timer only advances
// when the previous timer overflows. On overflow a timer reloads, optionally
// raises an interrupt and reports the overflow to the caller of Step(). The
// caller is expected to forward overflows of timers 0 and 1 to the APU,
// which uses them to clock the Direct Sound FIFOs.
package timer

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
)

// NumTimers is the number of timers in the console.
const NumTimers = 4

// control register bits
const (
	maskPrescaler = 0x0003
	maskCountUp   = 0x0004
	maskIRQEnable = 0x0040
	maskStart     = 0x0080
)

// a single 16bit timer. the fields are exported for the benefit of the
// savestate package; they should not be written to directly.
type timer struct {
	// free running cycle count for the prescaler. only advances while the
	// timer is enabled
	Tick uint64

	Counter uint16
	Reload  uint16
	Control uint16

	// a newly started timer misses its first cycle
	StartupDelay bool
}

func (t *timer) enabled() bool {
	return t.Control&maskStart == maskStart
}

func (t *timer) countUp() bool {
	return t.Control&maskCountUp == maskCountUp
}

func (t *timer) irqEnabled() bool {
	return t.Control&maskIRQEnable == maskIRQEnable
}

// prescalerMask returns the mask applied to the timer's tick count. the
// timer advances on the cycle where all mask bits of the tick count are set.
func (t *timer) prescalerMask() uint64 {
	switch t.Control & maskPrescaler {
	case 0:
		return 0x000
	case 1:
		return 0x03f
	case 2:
		return 0x0ff
	}
	return 0x3ff
}

// step advances the timer by one machine cycle, returning true if the timer
// overflowed.
func (t *timer) step(previousOverflow bool) bool {
	if !t.enabled() {
		return false
	}

	if t.StartupDelay {
		t.StartupDelay = false
		return false
	}

	var increment bool
	if t.countUp() {
		increment = previousOverflow
	} else {
		m := t.prescalerMask()
		increment = t.Tick&m == m
	}

	t.Tick++

	if !increment {
		return false
	}

	t.Counter++
	if t.Counter == 0 {
		t.Counter = t.Reload
		return true
	}

	return false
}

// writeControl updates the control register. the reload value is copied into
// the counter when the start bit changes from 0 to 1.
func (t *timer) writeControl(data uint16) {
	wasEnabled := t.enabled()
	t.Control = data
	if !wasEnabled && t.enabled() {
		t.Counter = t.Reload
		t.StartupDelay = true
	}
}

// Timers implements the console's block of four timers.
type Timers struct {
	irq    *irq.IRQ
	timers [NumTimers]timer
}

// NewTimers is the preferred method of initialisation for the Timers type.
func NewTimers(irq *irq.IRQ) *Timers {
	return &Timers{irq: irq}
}

// Snapshot creates a copy of the timer block in its current state.
func (tms *Timers) Snapshot() *Timers {
	n := *tms
	return &n
}

// Plumb the IRQ controller back into the timer block after a Snapshot().
func (tms *Timers) Plumb(irq *irq.IRQ) {
	tms.irq = irq
}

// Reset the timers to their power-on state.
func (tms *Timers) Reset() {
	tms.timers = [NumTimers]timer{}
}

func (tms *Timers) String() string {
	s := strings.Builder{}
	for i, t := range tms.timers {
		s.WriteString(fmt.Sprintf("TM%d=%#04x (reload=%#04x ctrl=%#04x)  ", i, t.Counter, t.Reload, t.Control))
	}
	return strings.TrimSpace(s.String())
}

// interrupt raised by each timer on overflow
var timerInterrupt = [NumTimers]irq.Interrupt{irq.Timer0, irq.Timer1, irq.Timer2, irq.Timer3}

// Step advances every timer by one machine cycle. The returned value has one
// bit per timer, set if that timer overflowed on this cycle.
func (tms *Timers) Step() uint8 {
	var overflows uint8
	var previousOverflow bool

	for i := range tms.timers {
		o := tms.timers[i].step(previousOverflow)
		if o {
			overflows |= 1 << i
			if tms.timers[i].irqEnabled() {
				tms.irq.Raise(timerInterrupt[i])
			}
		}
		previousOverflow = o
	}

	return overflows
}

// WriteState writes the timer block's state to the io.Writer. Used by the
// savestate package.
func (tms *Timers) WriteState(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, tms.timers)
}

// ReadState reads a state previously written with WriteState() into the
// timer block.
func (tms *Timers) ReadState(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &tms.timers)
}

// Counter returns the current value of the numbered timer. Useful for
// testing and debugging.
func (tms *Timers) Counter(timer int) uint16 {
	return tms.timers[timer].Counter
}

// decompose a register address into timer number and a flag indicating
// whether the address refers to the control register (as opposed to the
// counter/reload register)
func registerDecode(address uint32) (int, bool) {
	n := int(address-addresses.TM0CNT_L) >> 2
	return n, address&0x02 == 0x02
}

// ReadRegister returns the value of the named timer register. Reading a
// counter/reload register returns the live counter value, not the reload
// value.
func (tms *Timers) ReadRegister(address uint32) uint16 {
	n, control := registerDecode(address)
	if control {
		return tms.timers[n].Control
	}
	return tms.timers[n].Counter
}

// WriteRegister updates the named timer register. Writing a counter/reload
// register sets the reload value; the counter itself is only updated from
// the reload value on overflow or when the timer is started.
func (tms *Timers) WriteRegister(address uint32, data uint16) {
	n, control := registerDecode(address)
	if control {
		tms.timers[n].writeControl(data)
	} else {
		tms.timers[n].Reload = data
	}
}

// WriteRegister32 updates a timer's counter/reload and control registers
// with a single 32bit write. When such a write both sets the reload value
// and changes the start bit from 0 to 1, the newly written reload value is
// recognised as the new counter value. Performing the two halves of the
// write in order is sufficient to honour this rule.
func (tms *Timers) WriteRegister32(address uint32, data uint32) {
	tms.WriteRegister(address, uint16(data))
	tms.WriteRegister(address+2, uint16(data>>16))
}
