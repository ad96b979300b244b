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

package hardware

import (
	"github.com/gopheradvance/gopheradvance/hardware/apu"
	"github.com/gopheradvance/gopheradvance/hardware/cpu"
	"github.com/gopheradvance/gopheradvance/hardware/dma"
	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/keypad"
	"github.com/gopheradvance/gopheradvance/hardware/lcd"
	"github.com/gopheradvance/gopheradvance/hardware/memory"
	"github.com/gopheradvance/gopheradvance/hardware/memory/cartridge"
	"github.com/gopheradvance/gopheradvance/hardware/timer"
)

// State stores the GBA sub-systems. It is produced by the Snapshot()
// function and can be restored with the Plumb() function.
//
// Note in particular that the screen is not part of the snapshot process
// beyond its frame counter.
type State struct {
	CPU    *cpu.CPU
	Mem    *memory.Memory
	Cart   *cartridge.Cartridge
	LCD    *lcd.LCD
	APU    *apu.APU
	DMA    *dma.DMA
	Timers *timer.Timers
	Keypad *keypad.Keypad
	IRQ    *irq.IRQ

	Clock    uint64
	FrameNum int

	// sub-dot and sub-sample phase of the machine loop
	DotClk    int
	SampleClk int
}

// Snapshot the state of the GBA sub-systems.
func (gba *GBA) Snapshot() *State {
	return &State{
		CPU:       gba.CPU.Snapshot(),
		Mem:       gba.Mem.Snapshot(),
		Cart:      gba.Mem.Cart.Snapshot(),
		LCD:       gba.LCD.Snapshot(),
		APU:       gba.APU.Snapshot(),
		DMA:       gba.DMA.Snapshot(),
		Timers:    gba.Timers.Snapshot(),
		Keypad:    gba.Keypad.Snapshot(),
		IRQ:       gba.IRQ.Snapshot(),
		Clock:     gba.Clock,
		FrameNum:  gba.Scr.Snapshot(),
		DotClk:    gba.dotClk,
		SampleClk: gba.sampleClk,
	}
}

// Plumb a previously snapshotted system.
func (gba *GBA) Plumb(state *State) {
	if state == nil {
		panic("gba: cannot plumb in a nil state")
	}

	// take another snapshot of the state before plumbing. we don't want the
	// machine to change what the caller has stored in their state
	gba.CPU = state.CPU.Snapshot()
	gba.Mem = state.Mem.Snapshot()
	gba.LCD = state.LCD.Snapshot()
	gba.APU = state.APU.Snapshot()
	gba.DMA = state.DMA.Snapshot()
	gba.Timers = state.Timers.Snapshot()
	gba.Keypad = state.Keypad.Snapshot()
	gba.IRQ = state.IRQ.Snapshot()
	cart := state.Cart.Snapshot()

	gba.IRQ.Plumb()
	gba.Timers.Plumb(gba.IRQ)
	gba.Keypad.Plumb(gba.IRQ)
	gba.LCD.Plumb(gba.Scr)
	cart.Plumb()
	gba.Mem.Plumb(cart, gba.LCD, gba.APU, gba.DMA, gba.Timers, gba.Keypad, gba.IRQ)
	gba.DMA.Plumb(gba.Mem, gba.IRQ)
	gba.CPU.Plumb(gba.Mem)

	gba.Clock = state.Clock
	gba.Scr.Plumb(state.FrameNum)
	gba.dotClk = state.DotClk
	gba.sampleClk = state.SampleClk
	gba.samples = gba.samples[:0]
}
