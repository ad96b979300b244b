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

// Package dma implements the console's four DMA channels.
//
// A channel can be started immediately on enable, or deferred until the
// start of vblank or hblank, or (channels 1 and 2 only) until a Direct
// Sound FIFO requests more sample data. A started channel performs its
// whole transfer in one go during the next call to Step(); the cycle
// stealing that the transfer would cause on real hardware is not modelled.
package dma

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/gopheradvance/gopheradvance/hardware/irq"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
)

// Bus is the memory interface a DMA transfer works through.
type Bus interface {
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write16(address uint32, data uint16)
	Write32(address uint32, data uint32)
}

// NumChannels is the number of DMA channels in the console.
const NumChannels = 4

// control register bits
const (
	maskDestControl = 0x0060
	maskSrcControl  = 0x0180
	maskRepeat      = 0x0200
	mask32bit       = 0x0400
	maskTiming      = 0x3000
	maskIRQEnable   = 0x4000
	maskEnable      = 0x8000
)

// address adjustment after each unit of a transfer
const (
	addrIncrement = iota
	addrDecrement
	addrFixed

	// as increment but the destination address is restored to its
	// original value when the transfer completes. not valid for the
	// source address
	addrIncrementReload
)

// start timings, as they appear in bits 12 and 13 of the control register.
const (
	TimingImmediate = iota
	TimingVBlank
	TimingHBlank
	TimingSpecial
)

// channels differ in how many bits of the source address, destination
// address and word count registers are implemented
var (
	sourceMask = [NumChannels]uint32{0x07ffffff, 0x0fffffff, 0x0fffffff, 0x0fffffff}
	destMask   = [NumChannels]uint32{0x07ffffff, 0x07ffffff, 0x07ffffff, 0x0fffffff}
	countMask  = [NumChannels]uint16{0x3fff, 0x3fff, 0x3fff, 0xffff}
)

// reads from an address below this value do not reach the bus. the channel's
// read latch is written in place of the unreadable data.
const minimumSourceAddr = 0x02000000

// a single DMA channel. the fields are exported for the benefit of the
// savestate package; they should not be written to directly.
type channel struct {
	Source  uint32
	Dest    uint32
	Count   uint16
	Control uint16

	// transfer has been started and will run on the next Step()
	Ongoing bool

	// transfer was started by a FIFO refill request. the transfer length
	// and unit size are fixed and the destination address is not adjusted
	FIFOMode bool

	// the most recently transferred value. returned for reads from
	// unreadable source addresses, in place of the normal open bus value
	Latch uint32
}

func (ch *channel) enabled() bool {
	return ch.Control&maskEnable == maskEnable
}

func (ch *channel) repeat() bool {
	return ch.Control&maskRepeat == maskRepeat
}

func (ch *channel) irqEnabled() bool {
	return ch.Control&maskIRQEnable == maskIRQEnable
}

func (ch *channel) destControl() int {
	return int(ch.Control&maskDestControl) >> 5
}

func (ch *channel) srcControl() int {
	return int(ch.Control&maskSrcControl) >> 7
}

func (ch *channel) timing() int {
	return int(ch.Control&maskTiming) >> 12
}

// writeControl updates the control register. an immediate transfer is
// started when the enable bit changes from 0 to 1.
func (ch *channel) writeControl(data uint16) {
	wasEnabled := ch.enabled()
	ch.Control = data
	if !wasEnabled && ch.enabled() && ch.timing() == TimingImmediate {
		ch.Ongoing = true
	}
}

// DMA implements the console's block of four DMA channels.
type DMA struct {
	bus      Bus
	irq      *irq.IRQ
	channels [NumChannels]channel
}

// NewDMA is the preferred method of initialisation for the DMA type.
func NewDMA(bus Bus, irq *irq.IRQ) *DMA {
	return &DMA{bus: bus, irq: irq}
}

// Snapshot creates a copy of the DMA block in its current state.
func (dm *DMA) Snapshot() *DMA {
	n := *dm
	return &n
}

// Plumb the memory bus and IRQ controller back into the DMA block after a
// Snapshot().
func (dm *DMA) Plumb(bus Bus, irq *irq.IRQ) {
	dm.bus = bus
	dm.irq = irq
}

// Reset the DMA channels to their power-on state.
func (dm *DMA) Reset() {
	dm.channels = [NumChannels]channel{}
}

func (dm *DMA) String() string {
	s := strings.Builder{}
	for i, ch := range dm.channels {
		s.WriteString(fmt.Sprintf("DMA%d: %08x -> %08x (count=%04x ctrl=%04x)\n",
			i, ch.Source, ch.Dest, ch.Count, ch.Control))
	}
	return s.String()
}

// decompose a register address into channel number and the offset of the
// register within the channel
func registerDecode(address uint32) (int, uint32) {
	o := address - addresses.DMA0SAD_L
	return int(o / addresses.DMAChanSize), o % addresses.DMAChanSize
}

// ReadRegister returns the value of the named DMA register. The returned
// flag is false if the register is write-only, in which case a read of the
// address sees the open bus.
func (dm *DMA) ReadRegister(address uint32) (uint16, bool) {
	n, offset := registerDecode(address)
	switch offset {
	case 0x08:
		// word count reads as zero
		return 0, true
	case 0x0a:
		return dm.channels[n].Control, true
	}
	return 0, false
}

// WriteRegister updates the named DMA register.
func (dm *DMA) WriteRegister(address uint32, data uint16) {
	n, offset := registerDecode(address)
	ch := &dm.channels[n]
	switch offset {
	case 0x00:
		ch.Source = (ch.Source&0xffff0000 | uint32(data)) & sourceMask[n]
	case 0x02:
		ch.Source = (ch.Source&0x0000ffff | uint32(data)<<16) & sourceMask[n]
	case 0x04:
		ch.Dest = (ch.Dest&0xffff0000 | uint32(data)) & destMask[n]
	case 0x06:
		ch.Dest = (ch.Dest&0x0000ffff | uint32(data)<<16) & destMask[n]
	case 0x08:
		ch.Count = data & countMask[n]
	case 0x0a:
		ch.writeControl(data)
	}
}

// Trigger starts every enabled channel that is waiting on the named start
// timing. Called by the machine when vblank or hblank begins.
func (dm *DMA) Trigger(timing int) {
	for i := range dm.channels {
		ch := &dm.channels[i]
		if ch.enabled() && !ch.Ongoing && ch.timing() == timing {
			ch.Ongoing = true
		}
	}
}

// TriggerFIFO starts any channel that is serving the Direct Sound FIFO at
// the given address. Only channels 1 and 2 can work in FIFO mode.
func (dm *DMA) TriggerFIFO(address uint32) {
	for _, i := range [...]int{1, 2} {
		ch := &dm.channels[i]
		if ch.enabled() && !ch.Ongoing && ch.timing() == TimingSpecial && ch.Dest == address {
			ch.Ongoing = true
			ch.FIFOMode = true
		}
	}
}

// interrupt raised by each channel at the end of a transfer
var dmaInterrupt = [NumChannels]irq.Interrupt{irq.DMA0, irq.DMA1, irq.DMA2, irq.DMA3}

// whether the address is in the cartridge ROM area. DMA from ROM always
// uses sequential accesses, meaning the source address always increments
// regardless of the source address control bits.
func isROM(address uint32) bool {
	return address >= 0x08000000 && address < 0x0e000000
}

// Step performs the transfer of every channel that has been started since
// the last call. The entire transfer happens at once. Lower numbered
// channels run first.
func (dm *DMA) Step() {
	for i := range dm.channels {
		if dm.channels[i].Ongoing {
			dm.run(i)
		}
	}
}

func (dm *DMA) run(n int) {
	ch := &dm.channels[n]

	source := ch.Source
	dest := ch.Dest
	originalDest := dest

	length := int(ch.Count)
	size := uint32(2)
	word := ch.Control&mask32bit == mask32bit

	destControl := ch.destControl()
	srcControl := ch.srcControl()

	if ch.FIFOMode {
		// FIFO transfers are always four words to a fixed destination
		length = 4
		word = true
		destControl = addrFixed
	}

	if word {
		size = 4
	}

	for i := 0; i < length; i++ {
		if word {
			a := source &^ 0x3
			var v uint32
			if a < minimumSourceAddr {
				v = ch.Latch
			} else {
				v = dm.bus.Read32(a)
				ch.Latch = v
			}
			dm.bus.Write32(dest&^0x3, v)
		} else {
			a := source &^ 0x1
			var v uint16
			if a < minimumSourceAddr {
				v = uint16(ch.Latch)
			} else {
				v = dm.bus.Read16(a)
				ch.Latch = uint32(v)<<16 | uint32(v)
			}
			dm.bus.Write16(dest&^0x1, v)
		}

		if isROM(source) {
			source += size
		} else {
			switch srcControl {
			case addrIncrement:
				source += size
			case addrDecrement:
				source -= size
			}
		}

		switch destControl {
		case addrIncrement, addrIncrementReload:
			dest += size
		case addrDecrement:
			dest -= size
		}
	}

	if destControl == addrIncrementReload {
		dest = originalDest
	}

	ch.Source = source
	ch.Dest = dest

	if !ch.repeat() {
		ch.Control &^= maskEnable
	}
	ch.Ongoing = false
	ch.FIFOMode = false

	if ch.irqEnabled() {
		dm.irq.Raise(dmaInterrupt[n])
	}
}

// WriteState writes the DMA block's state to the io.Writer. Used by the
// savestate package.
func (dm *DMA) WriteState(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, dm.channels)
}

// ReadState reads a state previously written with WriteState() into the
// DMA block.
func (dm *DMA) ReadState(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &dm.channels)
}
