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
	"strings"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/hardware/apu"
	"github.com/gopheradvance/gopheradvance/hardware/cpu"
	"github.com/gopheradvance/gopheradvance/hardware/dma"
	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/keypad"
	"github.com/gopheradvance/gopheradvance/hardware/lcd"
	"github.com/gopheradvance/gopheradvance/hardware/memory"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/hardware/memory/cartridge"
	"github.com/gopheradvance/gopheradvance/hardware/memory/memorymap"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/hardware/timer"
)

// sentinel error pattern returned by functions that need a cartridge when
// none is attached
const NoCartridge = "gba: no cartridge attached"

// the register state the BIOS leaves behind when it hands control to the
// cartridge. used when booting without a BIOS image.
const (
	bootSPSystem     = 0x03007f00
	bootSPIRQ        = 0x03007fa0
	bootSPSupervisor = 0x03007fe0
)

// GBA is the main container for the emulated components of the console.
type GBA struct {
	CPU    *cpu.CPU
	Mem    *memory.Memory
	LCD    *lcd.LCD
	APU    *apu.APU
	DMA    *dma.DMA
	Timers *timer.Timers
	Keypad *keypad.Keypad
	IRQ    *irq.IRQ

	// scr is not part of the console but is attached to it
	Scr *screen.Screen

	// number of machine cycles since the last Reset(). monotonic for the
	// lifetime of a session; it only ever rewinds on a state restore.
	Clock uint64

	// machine cycles into the current dot and the current audio sample
	dotClk    int
	sampleClk int

	// audio accumulates here during a frame and is handed to the screen
	// at vblank
	samples []int16
}

// NewGBA creates a new GBA and everything associated with the hardware. The
// bios argument may be nil in which case the machine boots directly into
// the cartridge with the register state the real BIOS would leave behind.
//
// The machine is not usable until a cartridge is attached with
// AttachCartridge().
func NewGBA(scr *screen.Screen, bios []byte) *GBA {
	gba := &GBA{
		Scr:     scr,
		samples: make([]int16, 0, screen.SamplesPerFrame*2),
	}

	gba.IRQ = irq.NewIRQ()
	gba.LCD = lcd.NewLCD(scr)
	gba.APU = apu.NewAPU()
	gba.Timers = timer.NewTimers(gba.IRQ)
	gba.Keypad = keypad.NewKeypad(gba.IRQ)
	gba.Mem = memory.NewMemory(bios, nil, gba.LCD, gba.APU, gba.Timers, gba.Keypad, gba.IRQ)
	gba.DMA = dma.NewDMA(gba.Mem, gba.IRQ)
	gba.Mem.SetDMA(gba.DMA)
	gba.CPU = cpu.NewCPU(gba.Mem)

	return gba
}

func (gba *GBA) String() string {
	s := strings.Builder{}
	s.WriteString(gba.CPU.String())
	s.WriteString("\n")
	s.WriteString(gba.LCD.String())
	s.WriteString("\n")
	s.WriteString(gba.IRQ.String())
	return s.String()
}

// AttachCartridge inserts a cartridge into the machine and resets it. The
// data argument is the complete ROM image.
func (gba *GBA) AttachCartridge(data []byte) error {
	cart, err := cartridge.NewCartridge(data)
	if err != nil {
		return err
	}
	gba.Mem.Cart = cart

	return gba.Reset()
}

// SetInput latches the state of the console's buttons. It should be called
// between frames.
func (gba *GBA) SetInput(inp keypad.Input) {
	gba.Keypad.SetInput(inp)
}

// Reset emulates the effect of a power cycle. The content of the
// cartridge's backup medium survives, as it does on real hardware.
func (gba *GBA) Reset() error {
	if gba.Mem.Cart == nil {
		return curated.Errorf(NoCartridge)
	}

	gba.CPU.Reset()
	gba.Mem.Reset()
	gba.Mem.Cart.Reset()
	gba.LCD.Reset()
	gba.APU.Reset()
	gba.DMA.Reset()
	gba.Timers.Reset()
	gba.Keypad.Reset()
	gba.IRQ.Reset()
	gba.Scr.Reset()

	gba.Clock = 0
	gba.dotClk = 0
	gba.sampleClk = 0
	gba.samples = gba.samples[:0]

	if !gba.Mem.HasBIOS() {
		gba.bootFromCartridge()
	}

	return nil
}

// bootFromCartridge reproduces the register state the BIOS leaves behind
// when it jumps to the cartridge entry point.
func (gba *GBA) bootFromCartridge() {
	r := &gba.CPU.Regs

	r.SetCPSR(cpu.ModeIRQ | cpu.DisableIRQ | cpu.DisableFIQ)
	r.R[13] = bootSPIRQ

	r.SetCPSR(cpu.ModeSupervisor | cpu.DisableIRQ | cpu.DisableFIQ)
	r.R[13] = bootSPSupervisor

	r.SetCPSR(cpu.ModeSystem)
	r.R[13] = bootSPSystem
	r.R[15] = memorymap.OriginROM
}

// Step the emulation by one CPU instruction, or by one idle cycle when the
// CPU is halted. Every clocked subsystem advances by the same number of
// machine cycles as the CPU consumed.
func (gba *GBA) Step() error {
	if gba.Mem.Halted {
		if gba.IRQ.Pending() {
			gba.Mem.Halted = false
		} else {
			return gba.tick(1)
		}
	}

	if gba.IRQ.Asserted() {
		gba.CPU.IRQ()
	}

	cycles := gba.CPU.Step()
	return gba.tick(cycles)
}

// tick advances every clocked subsystem by the given number of machine
// cycles. The order of operations within a cycle is fixed: keypad, timers,
// APU, FIFO DMA requests, LCD (every fourth cycle), DMA, and finally the
// interrupt synchroniser.
func (gba *GBA) tick(cycles int) error {
	for i := 0; i < cycles; i++ {
		gba.Keypad.Step()

		overflows := gba.Timers.Step()
		gba.APU.Step(overflows)

		refillA, refillB := gba.APU.FIFORefill()
		if refillA {
			gba.DMA.TriggerFIFO(addresses.FIFO_A_L)
		}
		if refillB {
			gba.DMA.TriggerFIFO(addresses.FIFO_B_L)
		}

		gba.dotClk++
		if gba.dotClk >= screen.ClksPerDot {
			gba.dotClk = 0
			if err := gba.tickLCD(); err != nil {
				return err
			}
		}

		gba.DMA.Step()
		gba.IRQ.Step()
		gba.Clock++

		gba.sampleClk++
		if gba.sampleClk >= screen.CyclesPerSample {
			gba.sampleClk = 0
			l, r := gba.APU.Sample()
			gba.samples = append(gba.samples, l, r)
		}
	}

	return nil
}

// tickLCD advances the LCD by one dot and deals with the consequences: DMA
// start timings, display interrupts and the end-of-frame audio handoff.
func (gba *GBA) tickLCD() error {
	res, err := gba.LCD.Step()
	if err != nil {
		return err
	}

	if res.HBlank {
		gba.DMA.Trigger(dma.TimingHBlank)
		if gba.LCD.HBlankIRQEnabled() {
			gba.IRQ.Raise(irq.HBlank)
		}
	}

	if res.VCountMatch && gba.LCD.VCountIRQEnabled() {
		gba.IRQ.Raise(irq.VCount)
	}

	if res.VBlank {
		gba.DMA.Trigger(dma.TimingVBlank)
		if gba.LCD.VBlankIRQEnabled() {
			gba.IRQ.Raise(irq.VBlank)
		}

		// the frame's audio travels with the frame
		if err := gba.Scr.SetAudio(gba.samples); err != nil {
			return err
		}
		gba.samples = gba.samples[:0]
	}

	return nil
}

// RunFrame runs the emulation until the next frame is complete. On return
// one finished framebuffer and one frame's worth of audio samples have been
// delivered to the attached renderers and mixers.
func (gba *GBA) RunFrame() error {
	if gba.Mem.Cart == nil {
		return curated.Errorf(NoCartridge)
	}

	target := gba.Scr.FrameNum() + 1
	for gba.Scr.FrameNum() < target {
		if err := gba.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Run sets the emulation running as quickly as possible. continueCheck()
// is consulted at every frame boundary and should return false when an
// external event (eg. a GUI event) indicates that the emulation should
// stop.
func (gba *GBA) Run(continueCheck func() (bool, error)) error {
	if gba.Mem.Cart == nil {
		return curated.Errorf(NoCartridge)
	}
	if continueCheck == nil {
		continueCheck = func() (bool, error) { return true, nil }
	}

	cont := true
	var err error
	for cont {
		if err = gba.RunFrame(); err != nil {
			return err
		}
		cont, err = continueCheck()
		if err != nil {
			return err
		}
	}

	return nil
}
