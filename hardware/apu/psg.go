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

package apu

// the PSG channels are the four tone generators inherited from the Game
// Boy. they run from a frame sequencer clocked at 512Hz which distributes
// length counter, volume envelope and frequency sweep clocks across its
// eight steps.

// frame sequencer steps on which each unit is clocked
var (
	lengthSteps   = [8]bool{true, false, true, false, true, false, true, false}
	envelopeSteps = [8]bool{false, false, false, false, false, false, false, true}
	sweepSteps    = [8]bool{false, false, true, false, false, false, true, false}
)

// the four duty cycle waveforms of the square channels
var dutyWaveform = [4][8]bool{
	{false, false, false, false, false, false, false, true},
	{true, false, false, false, false, false, false, true},
	{true, false, false, false, false, true, true, true},
	{false, true, true, true, true, true, true, false},
}

// square wave channel, with an optional frequency sweep unit. channels 1
// and 2 of the console. the fields are exported for the benefit of the
// savestate package; they should not be written to directly.
type square struct {
	Sweep    uint16
	Envelope uint16
	Control  uint16

	Enabled bool
	Volume  uint8

	LengthCounter uint8
	EnvelopeTicks uint8

	DutyIndex uint8
	DutyTicks uint16

	// sweep unit state. meaningless for channel 2, which has no sweep
	// unit
	SweepEnabled bool
	SweepTicks   uint8
	Shadow       uint16

	// whether the channel has a sweep unit at all
	HasSweep bool
}

func (ch *square) frequency() uint16 {
	return ch.Control & 0x07ff
}

func (ch *square) setFrequency(f uint16) {
	ch.Control = ch.Control&^0x07ff | f&0x07ff
}

func (ch *square) lengthEnabled() bool {
	return ch.Control&0x4000 == 0x4000
}

func (ch *square) envelopePeriod() uint8 {
	return uint8(ch.Envelope>>8) & 0x07
}

func (ch *square) sweepShift() uint8 {
	return uint8(ch.Sweep) & 0x07
}

func (ch *square) sweepPeriod() uint8 {
	return uint8(ch.Sweep>>4) & 0x07
}

// next frequency according to the sweep unit. also used for the overflow
// check that disables the channel
func (ch *square) sweepFrequency() uint16 {
	d := ch.Shadow >> ch.sweepShift()
	if ch.Sweep&0x0008 == 0x0008 {
		return ch.Shadow - d
	}
	return ch.Shadow + d
}

func (ch *square) clockLength() {
	if ch.lengthEnabled() {
		if ch.LengthCounter > 0 {
			ch.LengthCounter--
		}
		if ch.LengthCounter == 0 {
			ch.Enabled = false
		}
	}
}

func (ch *square) clockEnvelope() {
	if ch.EnvelopeTicks > 0 {
		ch.EnvelopeTicks--
	}
	if ch.EnvelopeTicks == 0 {
		if ch.envelopePeriod() != 0 {
			if ch.Envelope&0x0800 == 0x0800 {
				if ch.Volume < 0x0f {
					ch.Volume++
				}
			} else if ch.Volume > 0 {
				ch.Volume--
			}
		}

		ch.EnvelopeTicks = ch.envelopePeriod()
		if ch.EnvelopeTicks == 0 {
			ch.EnvelopeTicks = 8
		}
	}
}

func (ch *square) clockSweep() {
	if !ch.HasSweep {
		return
	}

	if ch.SweepTicks > 0 {
		ch.SweepTicks--
	}
	if ch.SweepTicks == 0 {
		if ch.SweepEnabled && ch.sweepPeriod() != 0 && ch.sweepShift() != 0 {
			f := ch.sweepFrequency()
			if f > 2047 {
				ch.Enabled = false
			}
			ch.Shadow = f
			ch.setFrequency(f)

			// the overflow check is run a second time with the new
			// frequency. the result of this second calculation is
			// discarded
			if ch.sweepFrequency() > 2047 {
				ch.Enabled = false
			}
		}

		ch.SweepTicks = ch.sweepPeriod()
		if ch.SweepTicks == 0 {
			ch.SweepTicks = 8
		}
	}
}

// tick advances the channel's frequency timer by one machine cycle.
func (ch *square) tick() {
	if ch.DutyTicks > 0 {
		ch.DutyTicks--
	}
	if ch.DutyTicks == 0 {
		ch.DutyIndex = (ch.DutyIndex + 1) % 8

		// the channel steps through its waveform at sixteen machine
		// cycles per frequency unit. four times the rate of the Game
		// Boy, matching the faster core clock
		ch.DutyTicks = (2048 - ch.frequency()) * 16
	}
}

func (ch *square) sample() uint8 {
	if !ch.Enabled {
		return 0
	}
	if dutyWaveform[ch.Envelope>>6&0x03][ch.DutyIndex] {
		return ch.Volume
	}
	return 0
}

func (ch *square) trigger() {
	ch.Enabled = true
	ch.Volume = uint8(ch.Envelope >> 12)

	if ch.LengthCounter == 0 {
		ch.LengthCounter = 64
	}

	if ch.HasSweep {
		ch.SweepEnabled = ch.sweepPeriod() > 0 || ch.sweepShift() > 0
		ch.Shadow = ch.frequency()
	}
}

func (ch *square) writeSweep(data uint16) {
	ch.Sweep = data & 0x007f
}

func (ch *square) writeEnvelope(data uint16) {
	// the length field is consumed by the length counter and reads back
	// as zero
	ch.LengthCounter = uint8(data) & 0x3f
	ch.Envelope = data &^ 0x003f
}

func (ch *square) readControl() uint16 {
	return ch.Control & 0x4000
}

func (ch *square) writeControl(data uint16) {
	ch.Control = data &^ 0x8000
	if data&0x8000 == 0x8000 {
		ch.trigger()
	}
}

// wave channel plays samples from a small RAM of 4bit entries. channel 3
// of the console.
type wave struct {
	Select  uint16
	Length  uint16
	Control uint16

	LengthCounter uint16
	SampleIndex   uint8
	SampleTicks   uint16

	Enabled bool

	// two banks of sixteen bytes. CPU accesses are directed at the bank
	// not currently selected for playback
	RAM [2][16]byte
}

func (ch *wave) twoBanks() bool {
	return ch.Select&0x0020 == 0x0020
}

func (ch *wave) highBank() int {
	if ch.Select&0x0040 == 0x0040 {
		return 1
	}
	return 0
}

func (ch *wave) playback() bool {
	return ch.Select&0x0080 == 0x0080
}

func (ch *wave) lengthEnabled() bool {
	return ch.Control&0x4000 == 0x4000
}

func (ch *wave) clockLength() {
	if ch.lengthEnabled() {
		if ch.LengthCounter > 0 {
			ch.LengthCounter--
		}
		if ch.LengthCounter == 0 {
			ch.Enabled = false
		}
	}
}

func (ch *wave) tick() {
	if ch.SampleTicks > 0 {
		ch.SampleTicks--
	}
	if ch.SampleTicks == 0 {
		ch.SampleIndex++

		limit := uint8(32)
		if ch.twoBanks() {
			limit = 64
		}
		if ch.SampleIndex >= limit {
			ch.SampleIndex = 0
		}

		ch.SampleTicks = (2048 - ch.Control&0x07ff) * 8
	}
}

func (ch *wave) sample() uint8 {
	if !ch.Enabled || !ch.playback() {
		return 0
	}

	// in two bank mode playback continues into the other bank
	bank := ch.highBank()
	idx := ch.SampleIndex
	if idx >= 32 {
		bank = 1 - bank
		idx -= 32
	}

	b := ch.RAM[bank][idx/2]
	var nibble uint8
	if idx%2 == 0 {
		nibble = b >> 4
	} else {
		nibble = b & 0x0f
	}

	if ch.Length&0x8000 == 0x8000 {
		// forced 75% volume
		return nibble / 4 * 3
	}

	switch ch.Length >> 13 & 0x03 {
	case 0:
		return 0
	case 1:
		return nibble
	case 2:
		return nibble >> 1
	}
	return nibble >> 2
}

func (ch *wave) trigger() {
	ch.Enabled = true
	if ch.LengthCounter == 0 {
		ch.LengthCounter = 256
	}
}

func (ch *wave) writeLength(data uint16) {
	ch.LengthCounter = data & 0x00ff
	ch.Length = data
}

func (ch *wave) readControl() uint16 {
	return ch.Control & 0x4000
}

func (ch *wave) writeControl(data uint16) {
	ch.Control = data &^ 0x8000
	if data&0x8000 == 0x8000 {
		ch.trigger()
	}
}

// CPU accesses to wave RAM are directed at the bank not selected for
// playback
func (ch *wave) readRAM(offset uint32) uint8 {
	return ch.RAM[1-ch.highBank()][offset]
}

func (ch *wave) writeRAM(offset uint32, data uint8) {
	ch.RAM[1-ch.highBank()][offset] = data
}

// noise channel generates pseudo random noise with a linear feedback shift
// register. channel 4 of the console.
type noise struct {
	Envelope uint16
	Control  uint16

	Enabled bool
	Volume  uint8

	LengthCounter uint8
	EnvelopeTicks uint8

	LFSR  uint16
	Ticks uint16
}

func (ch *noise) lengthEnabled() bool {
	return ch.Control&0x4000 == 0x4000
}

func (ch *noise) envelopePeriod() uint8 {
	return uint8(ch.Envelope>>8) & 0x07
}

func (ch *noise) clockLength() {
	if ch.lengthEnabled() {
		if ch.LengthCounter > 0 {
			ch.LengthCounter--
		}
		if ch.LengthCounter == 0 {
			ch.Enabled = false
		}
	}
}

func (ch *noise) clockEnvelope() {
	if ch.EnvelopeTicks > 0 {
		ch.EnvelopeTicks--
	}
	if ch.EnvelopeTicks == 0 {
		if ch.envelopePeriod() != 0 {
			if ch.Envelope&0x0800 == 0x0800 {
				if ch.Volume < 0x0f {
					ch.Volume++
				}
			} else if ch.Volume > 0 {
				ch.Volume--
			}
		}

		ch.EnvelopeTicks = ch.envelopePeriod()
		if ch.EnvelopeTicks == 0 {
			ch.EnvelopeTicks = 8
		}
	}
}

func (ch *noise) tick() {
	if ch.Ticks > 0 {
		ch.Ticks--
	}
	if ch.Ticks == 0 {
		// low two bits are XORed, everything shifts right, XOR result
		// goes into the vacated high bit. in 7bit mode the result also
		// goes into bit 6 after the shift
		x := ch.LFSR&0x01 ^ ch.LFSR>>1&0x01
		ch.LFSR = ch.LFSR>>1&^0x4000 | x<<14
		if ch.Control&0x0008 == 0x0008 {
			ch.LFSR = ch.LFSR&^0x0040 | x<<6
		}

		ratio := ch.Control & 0x07
		shift := ch.Control >> 4 & 0x0f
		if ratio == 0 {
			ch.Ticks = 32 << shift
		} else {
			ch.Ticks = ratio << 6 << shift
		}
	}
}

func (ch *noise) sample() uint8 {
	if !ch.Enabled {
		return 0
	}

	// output is high when the low bit of the shift register is clear
	if ch.LFSR&0x01 == 0 {
		return ch.Volume
	}
	return 0
}

func (ch *noise) trigger() {
	ch.Enabled = true
	ch.Volume = uint8(ch.Envelope >> 12)
	ch.LFSR = 0x7fff

	if ch.LengthCounter == 0 {
		ch.LengthCounter = 64
	}
}

func (ch *noise) writeEnvelope(data uint16) {
	ch.LengthCounter = uint8(data) & 0x3f
	ch.Envelope = data &^ 0x003f
}

func (ch *noise) readControl() uint16 {
	return ch.Control & 0x4000
}

func (ch *noise) writeControl(data uint16) {
	ch.Control = data &^ 0x8000
	if data&0x8000 == 0x8000 {
		ch.trigger()
	}
}
