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

package timer_test

import (
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/hardware/timer"
	"github.com/gopheradvance/gopheradvance/test"
)

func TestTimerStartup(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	// timer 0, prescaler 1, started. the reload value is copied into the
	// counter on the rising edge of the start bit
	tms.WriteRegister(addresses.TM0CNT_L, 0xfff0)
	tms.WriteRegister(addresses.TM0CNT_H, 0x0080)
	test.Equate(t, tms.Counter(0), 0xfff0)

	// a newly started timer misses its first cycle
	tms.Step()
	test.Equate(t, tms.Counter(0), 0xfff0)

	tms.Step()
	test.Equate(t, tms.Counter(0), 0xfff1)

	// reading the counter register returns the live counter
	test.Equate(t, tms.ReadRegister(addresses.TM0CNT_L), 0xfff1)
}

func TestTimerOverflowReload(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	tms.WriteRegister(addresses.TM0CNT_L, 0xfffe)
	tms.WriteRegister(addresses.TM0CNT_H, 0x0080)

	tms.Step() // startup delay
	tms.Step() // 0xffff
	test.Equate(t, tms.Counter(0), 0xffff)

	// overflow. the counter returns to the reload value
	o := tms.Step()
	test.Equate(t, int(o), 1)
	test.Equate(t, tms.Counter(0), 0xfffe)
}

func TestTimerPrescaler(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	// timer 1 with a divide-by-64 prescaler
	tms.WriteRegister(addresses.TM1CNT_L, 0x0000)
	tms.WriteRegister(addresses.TM1CNT_H, 0x0081)

	tms.Step() // startup delay

	// the prescaler advances the timer on the 64th cycle
	for i := 0; i < 63; i++ {
		tms.Step()
	}
	test.Equate(t, tms.Counter(1), 0x0000)

	tms.Step()
	test.Equate(t, tms.Counter(1), 0x0001)

	// and again 64 cycles later
	for i := 0; i < 64; i++ {
		tms.Step()
	}
	test.Equate(t, tms.Counter(1), 0x0002)
}

func TestTimerCascade(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	// timer 0 overflows every two cycles; timer 1 counts timer 0 overflows
	tms.WriteRegister(addresses.TM0CNT_L, 0xfffe)
	tms.WriteRegister(addresses.TM0CNT_H, 0x0080)
	tms.WriteRegister(addresses.TM1CNT_H, 0x0084)

	tms.Step() // startup delay (both timers)

	tms.Step() // timer 0 -> 0xffff
	test.Equate(t, tms.Counter(1), 0x0000)

	tms.Step() // timer 0 overflows
	test.Equate(t, tms.Counter(0), 0xfffe)
	test.Equate(t, tms.Counter(1), 0x0001)
}

func TestTimerIRQ(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	// enable the timer 2 interrupt at the controller
	ir.WriteRegister(addresses.IME, 0x0001)
	ir.WriteRegister(addresses.IE, uint16(irq.Timer2))

	// timer 2 with IRQ enabled, one cycle from overflow
	tms.WriteRegister(addresses.TM2CNT_L, 0xffff)
	tms.WriteRegister(addresses.TM2CNT_H, 0x00c0)

	tms.Step() // startup delay
	test.Equate(t, ir.Pending(), false)

	tms.Step()
	test.Equate(t, ir.Pending(), true)
	test.Equate(t, ir.ReadRegister(addresses.IF), uint16(irq.Timer2))
}

func TestTimerWrite32(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	// setting the reload value and the start bit with a single 32bit write
	// loads the new reload value into the counter
	tms.WriteRegister32(addresses.TM3CNT_L, 0x0080c123)
	test.Equate(t, tms.Counter(3), 0xc123)
}

func TestTimerSnapshot(t *testing.T) {
	ir := irq.NewIRQ()
	tms := timer.NewTimers(ir)

	tms.WriteRegister(addresses.TM0CNT_L, 0x1234)
	tms.WriteRegister(addresses.TM0CNT_H, 0x0080)
	tms.Step()
	tms.Step()

	sn := tms.Snapshot()
	sn.Plumb(ir)

	// stepping the original does not affect the snapshot
	tms.Step()
	test.Equate(t, tms.Counter(0) == sn.Counter(0), false)
}
