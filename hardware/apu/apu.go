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

// Package apu implements the console's sound hardware: the four PSG
// channels inherited from the Game Boy and the two Direct Sound FIFOs,
// which play 8bit PCM samples under DMA control.
//
// The APU is stepped once per machine cycle. The Direct Sound FIFOs
// consume a sample whenever their selected timer overflows, so the caller
// must pass the timer overflow information to Step(). After stepping, the
// FIFORefill() function says whether either FIFO has drained far enough to
// want a DMA transfer.
//
// Audio output is through the Sample() function. The console generates an
// analogue signal so a sampling interval must be imposed on it; the screen
// package defines the interval used elsewhere in the emulation.
package apu

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
)

// machine cycles between frame sequencer clocks. the sequencer runs at
// 512Hz
const sequencerPeriod = 32768

// APU implements the console's sound hardware. The fields are exported
// for the benefit of the savestate package; they should not be written to
// directly.
type APU struct {
	Ch1 square
	Ch2 square
	Ch3 wave
	Ch4 noise

	FIFOA fifo
	FIFOB fifo

	// SOUNDCNT_L
	VolumeEnable uint16

	// SOUNDCNT_H
	DSControl uint16

	// master enable bit of SOUNDCNT_X
	Enable bool

	// SOUNDBIAS
	Bias uint16

	Clock     uint64
	Sequencer uint8
}

// NewAPU is the preferred method of initialisation for the APU type.
func NewAPU() *APU {
	ap := &APU{}
	ap.Ch1.HasSweep = true
	return ap
}

// Snapshot creates a copy of the APU in its current state.
func (ap *APU) Snapshot() *APU {
	n := *ap
	return &n
}

// Reset the APU to its power-on state.
func (ap *APU) Reset() {
	*ap = APU{}
	ap.Ch1.HasSweep = true
}

func (ap *APU) String() string {
	return fmt.Sprintf("SOUNDCNT: %04x %04x  FIFO: %d/%d", ap.VolumeEnable, ap.DSControl,
		ap.FIFOA.Length, ap.FIFOB.Length)
}

// timer whose overflow clocks each Direct Sound FIFO
func (ap *APU) timerSelectA() uint8 {
	return uint8(ap.DSControl>>10) & 0x01
}

func (ap *APU) timerSelectB() uint8 {
	return uint8(ap.DSControl>>14) & 0x01
}

// Step advances the APU by one machine cycle. The overflows argument
// carries one bit per timer, set if that timer overflowed on this cycle,
// as returned by the timer block's own Step() function.
func (ap *APU) Step(overflows uint8) {
	if ap.Clock%sequencerPeriod == 0 {
		s := ap.Sequencer

		if lengthSteps[s] {
			ap.Ch1.clockLength()
			ap.Ch2.clockLength()
			ap.Ch3.clockLength()
			ap.Ch4.clockLength()
		}

		if envelopeSteps[s] {
			ap.Ch1.clockEnvelope()
			ap.Ch2.clockEnvelope()
			ap.Ch4.clockEnvelope()
		}

		if sweepSteps[s] {
			ap.Ch1.clockSweep()
		}

		ap.Sequencer = (s + 1) % 8
	}

	ap.Ch1.tick()
	ap.Ch2.tick()
	ap.Ch3.tick()
	ap.Ch4.tick()

	ap.Clock++

	ap.FIFOA.step(overflows&(1<<ap.timerSelectA()) != 0)
	ap.FIFOB.step(overflows&(1<<ap.timerSelectB()) != 0)
}

// FIFORefill says whether either Direct Sound FIFO has drained to the
// point where it wants a DMA transfer. The request is cleared by the
// call.
func (ap *APU) FIFORefill() (bool, bool) {
	a := ap.FIFOA.Refill
	b := ap.FIFOB.Refill
	ap.FIFOA.Refill = false
	ap.FIFOB.Refill = false
	return a, b
}

// level of a PSG channel in the mixed output
func psgLevel(v uint8) float32 {
	return (float32(v)/15*2 - 1) / 4
}

// level of a Direct Sound FIFO in the mixed output
func fifoLevel(v int8) float32 {
	return float32(v) / 128 / 4
}

func mixClamp(v float32) int16 {
	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return int16(v * 32767)
}

// Sample returns the current level of the mixed audio output as a stereo
// pair.
func (ap *APU) Sample() (int16, int16) {
	if !ap.Enable {
		return 0, 0
	}

	psg := [4]float32{
		psgLevel(ap.Ch1.sample()),
		psgLevel(ap.Ch2.sample()),
		psgLevel(ap.Ch3.sample()),
		psgLevel(ap.Ch4.sample()),
	}

	var left, right float32

	for i, l := range psg {
		if ap.VolumeEnable&(0x1000<<i) != 0 {
			left += l
		}
		if ap.VolumeEnable&(0x0100<<i) != 0 {
			right += l
		}
	}

	a := fifoLevel(ap.FIFOA.sample())
	b := fifoLevel(ap.FIFOB.sample())

	if ap.DSControl&0x0200 != 0 {
		left += a
	}
	if ap.DSControl&0x0100 != 0 {
		right += a
	}
	if ap.DSControl&0x2000 != 0 {
		left += b
	}
	if ap.DSControl&0x1000 != 0 {
		right += b
	}

	return mixClamp(left), mixClamp(right)
}

// WriteFIFO queues four packed 8bit samples to the FIFO at the named
// address.
func (ap *APU) WriteFIFO(address uint32, data uint32) {
	if address == addresses.FIFO_A_L {
		ap.FIFOA.write(data)
	} else {
		ap.FIFOB.write(data)
	}
}

// ReadRegister returns the value of the named sound register. The
// returned flag is false if the register is write-only, in which case a
// read of the address sees the open bus.
func (ap *APU) ReadRegister(address uint32) (uint16, bool) {
	switch address {
	case addresses.SOUND1CNT_L:
		return ap.Ch1.Sweep, true
	case addresses.SOUND1CNT_H:
		return ap.Ch1.Envelope, true
	case addresses.SOUND1CNT_X:
		return ap.Ch1.readControl(), true
	case addresses.SOUND2CNT_L:
		return ap.Ch2.Envelope, true
	case addresses.SOUND2CNT_H:
		return ap.Ch2.readControl(), true
	case addresses.SOUND3CNT_L:
		return ap.Ch3.Select, true
	case addresses.SOUND3CNT_H:
		return ap.Ch3.Length, true
	case addresses.SOUND3CNT_X:
		return ap.Ch3.readControl(), true
	case addresses.SOUND4CNT_L:
		return ap.Ch4.Envelope, true
	case addresses.SOUND4CNT_H:
		return ap.Ch4.readControl(), true
	case addresses.SOUNDCNT_L:
		return ap.VolumeEnable, true
	case addresses.SOUNDCNT_H:
		return ap.DSControl, true
	case addresses.SOUNDCNT_X:
		return ap.readEnable(), true
	case addresses.SOUNDBIAS:
		return ap.Bias, true
	}

	if address >= addresses.WAVE_RAM0_L && address <= addresses.WAVE_RAM3_H {
		o := address - addresses.WAVE_RAM0_L
		return uint16(ap.Ch3.readRAM(o)) | uint16(ap.Ch3.readRAM(o+1))<<8, true
	}

	return 0, false
}

// WriteRegister updates the named sound register.
func (ap *APU) WriteRegister(address uint32, data uint16) {
	switch address {
	case addresses.SOUND1CNT_L:
		ap.Ch1.writeSweep(data)
	case addresses.SOUND1CNT_H:
		ap.Ch1.writeEnvelope(data)
	case addresses.SOUND1CNT_X:
		ap.Ch1.writeControl(data)
	case addresses.SOUND2CNT_L:
		ap.Ch2.writeEnvelope(data)
	case addresses.SOUND2CNT_H:
		ap.Ch2.writeControl(data)
	case addresses.SOUND3CNT_L:
		ap.Ch3.Select = data
	case addresses.SOUND3CNT_H:
		ap.Ch3.writeLength(data)
	case addresses.SOUND3CNT_X:
		ap.Ch3.writeControl(data)
	case addresses.SOUND4CNT_L:
		ap.Ch4.writeEnvelope(data)
	case addresses.SOUND4CNT_H:
		ap.Ch4.writeControl(data)
	case addresses.SOUNDCNT_L:
		ap.VolumeEnable = data & 0xff77
	case addresses.SOUNDCNT_H:
		ap.DSControl = data & 0x770f
		if data&0x0800 == 0x0800 {
			ap.FIFOA.reset()
		}
		if data&0x8000 == 0x8000 {
			ap.FIFOB.reset()
		}
	case addresses.SOUNDCNT_X:
		ap.Enable = data&0x0080 == 0x0080
	case addresses.SOUNDBIAS:
		ap.Bias = data & 0xbffe
	case addresses.FIFO_A_L, addresses.FIFO_A_H, addresses.FIFO_B_L, addresses.FIFO_B_H:
		f := &ap.FIFOA
		if address >= addresses.FIFO_B_L {
			f = &ap.FIFOB
		}
		f.writeHalf(data)
	default:
		if address >= addresses.WAVE_RAM0_L && address <= addresses.WAVE_RAM3_H {
			o := address - addresses.WAVE_RAM0_L
			ap.Ch3.writeRAM(o, uint8(data))
			ap.Ch3.writeRAM(o+1, uint8(data>>8))
		}
	}
}

// the status half of SOUNDCNT_X, with a live flag for each PSG channel
func (ap *APU) readEnable() uint16 {
	var v uint16
	if ap.Ch1.Enabled {
		v |= 0x0001
	}
	if ap.Ch2.Enabled {
		v |= 0x0002
	}
	if ap.Ch3.Enabled {
		v |= 0x0004
	}
	if ap.Ch4.Enabled {
		v |= 0x0008
	}
	if ap.Enable {
		v |= 0x0080
	}
	return v
}

// WriteState writes the APU's state to the io.Writer. Used by the
// savestate package.
func (ap *APU) WriteState(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, ap)
}

// ReadState reads a state previously written with WriteState() into the
// APU.
func (ap *APU) ReadState(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, ap)
}
