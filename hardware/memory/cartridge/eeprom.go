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

package cartridge

import (
	"encoding/binary"
	"io"

	"github.com/gopheradvance/gopheradvance/logger"
)

// the phases of the EEPROM's serial protocol
type eepromPhase uint8

const (
	eepromReceivingCommand eepromPhase = iota
	eepromSetReadAddress
	eepromWrite
	eepromStopBit
)

// 8k EEPROM addressed as 1024 chunks of 64 bits. The chip is wired to the
// cartridge port's data line so every transfer moves a single bit: commands
// and addresses arrive bit by bit through writeBit() and data is returned
// bit by bit through readBit().
type eeprom struct {
	// 0x10000 bits, packed
	data []byte

	phase    eepromPhase
	rxBits   uint8
	rxBuffer uint64
	rxOffset uint16
	txBits   uint8
	txOffset uint16
}

const eepromBits = 0x10000

func newEEPROM() *eeprom {
	ee := &eeprom{
		data: make([]byte, eepromBits/8),
	}
	// an erased EEPROM reads all ones
	for i := range ee.data {
		ee.data[i] = 0xff
	}
	return ee
}

func (ee *eeprom) label() string {
	return "EEPROM"
}

func (ee *eeprom) bit(i uint16) uint16 {
	return uint16(ee.data[i>>3]>>(i&0x7)) & 0x1
}

func (ee *eeprom) setBit(i uint16, v bool) {
	if v {
		ee.data[i>>3] |= 1 << (i & 0x7)
	} else {
		ee.data[i>>3] &^= 1 << (i & 0x7)
	}
}

// writeBit accepts the next bit of the serial stream. Only bit 0 of the
// written halfword is significant.
func (ee *eeprom) writeBit(data uint16) {
	bit := data & 0x1
	ee.rxBits++
	ee.rxBuffer = ee.rxBuffer<<1 | uint64(bit)

	switch ee.phase {
	case eepromReceivingCommand:
		if ee.rxBits == 2 {
			switch ee.rxBuffer {
			case 0b11:
				ee.phase = eepromSetReadAddress
			case 0b10:
				ee.phase = eepromWrite
			default:
				logger.Logf(logger.Allow, "cartridge", "eeprom: unknown command %#02b", ee.rxBuffer)
				ee.phase = eepromStopBit
			}
			ee.rxBits = 0
			ee.rxBuffer = 0
		}

	case eepromSetReadAddress:
		if ee.rxBits == 14 {
			ee.txOffset = uint16(ee.rxBuffer) * 64
			ee.txBits = 0
			ee.phase = eepromStopBit
			ee.rxBits = 0
			ee.rxBuffer = 0
		}

	case eepromWrite:
		if ee.rxBits == 14 {
			ee.rxOffset = uint16(ee.rxBuffer) * 64
			ee.rxBuffer = 0
		} else if ee.rxBits > 14 {
			ee.setBit(ee.rxOffset, bit == 1)
			ee.rxOffset++
		}
		if ee.rxBits == 78 {
			ee.phase = eepromStopBit
			ee.rxBits = 0
			ee.rxBuffer = 0
		}

	case eepromStopBit:
		if ee.rxBuffer != 0 {
			logger.Logf(logger.Allow, "cartridge", "eeprom: invalid stop bit")
		}
		ee.phase = eepromReceivingCommand
		ee.rxBits = 0
		ee.rxBuffer = 0
	}
}

// readBit returns the next bit of the serial stream. A read transfer is
// four ignored bits followed by the 64 bits of the addressed chunk. Reads
// beyond the end of the transfer return the ready status.
func (ee *eeprom) readBit() uint16 {
	if ee.txBits < 4 {
		ee.txBits++
		return 0
	}
	if ee.txBits < 68 {
		v := ee.bit(ee.txOffset)
		ee.txOffset++
		ee.txBits++
		return v
	}
	return 1
}

// readByte and writeByte service the SRAM area of the cartridge port, which
// an EEPROM cartridge leaves unconnected.
func (ee *eeprom) readByte(offset uint32) uint8 {
	return 0xff
}

func (ee *eeprom) writeByte(offset uint32, data uint8) {
	logger.Logf(logger.Allow, "cartridge", "eeprom: ignoring write to sram area (address %#08x)", offset)
}

func (ee *eeprom) snapshot() backupMedium {
	n := *ee
	n.data = make([]byte, len(ee.data))
	copy(n.data, ee.data)
	return &n
}

func (ee *eeprom) reset() {
	ee.phase = eepromReceivingCommand
	ee.rxBits = 0
	ee.rxBuffer = 0
	ee.rxOffset = 0
	ee.txBits = 0
	ee.txOffset = 0
}

func (ee *eeprom) writeState(w io.Writer) error {
	if _, err := w.Write(ee.data); err != nil {
		return err
	}
	for _, v := range []interface{}{ee.phase, ee.rxBits, ee.rxBuffer, ee.rxOffset, ee.txBits, ee.txOffset} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func (ee *eeprom) readState(r io.Reader) error {
	if _, err := io.ReadFull(r, ee.data); err != nil {
		return err
	}
	for _, v := range []interface{}{&ee.phase, &ee.rxBits, &ee.rxBuffer, &ee.rxOffset, &ee.txBits, &ee.txOffset} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}
