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

// size of a Direct Sound FIFO in samples
const fifoSize = 32

// a FIFO is refilled by DMA once it has drained to this level
const fifoRefillLevel = fifoSize / 2

// Direct Sound FIFO. samples are signed 8bit PCM, queued by the CPU or by
// DMA and consumed at the rate of the selected timer's overflow. the
// fields are exported for the benefit of the savestate package; they
// should not be written to directly.
type fifo struct {
	Buffer [fifoSize]int8
	Length uint8

	// set when the buffer drains to the refill level. cleared when the
	// refill request is collected
	Refill bool
}

func (f *fifo) reset() {
	*f = fifo{}
}

// sample returns the value at the front of the buffer, without consuming
// it.
func (f *fifo) sample() int8 {
	if f.Length == 0 {
		return 0
	}
	return f.Buffer[0]
}

func (f *fifo) writeByte(data int8) {
	if f.Length < fifoSize {
		f.Buffer[f.Length] = data
		f.Length++
	}
}

// write queues the four samples packed into the 32bit value. samples that
// do not fit in the buffer are dropped.
func (f *fifo) write(data uint32) {
	for i := 0; i < 4; i++ {
		f.writeByte(int8(data >> (i * 8)))
	}
}

// writeHalf queues the two samples packed into the 16bit value.
func (f *fifo) writeHalf(data uint16) {
	f.writeByte(int8(data))
	f.writeByte(int8(data >> 8))
}

// step consumes a sample on overflow of the selected timer, moving the
// next sample to the front of the buffer.
func (f *fifo) step(overflow bool) {
	if !overflow {
		return
	}

	if f.Length > 0 {
		copy(f.Buffer[:], f.Buffer[1:])
		f.Length--
	}

	if f.Length <= fifoRefillLevel {
		f.Refill = true
	}
}
