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

// the stages of the flash chip's command protocol. every command starts
// with the write pair 0xaa to 0x5555 and 0x55 to 0x2aaa, followed by the
// command byte itself.
type flashState uint8

const (
	flashReadCommand flashState = iota
	flashBankSwitch
	flashIdentification
	flashErase
	flashWriteByte
)

// which write in the command sequence the chip is waiting for
type flashHandshake uint8

const (
	flashWant5555AA flashHandshake = iota
	flashWant2AAA55
	flashWantCommandData
)

// the identity reported by the Identification command. a Sanyo 128k part.
// Atmel chips, which use a different write protocol, are not handled.
const (
	flashManufacturer = 0xbf
	flashDeviceType   = 0xd4
)

const flashBankSize = 0x10000

// flash backup storage: two 64k banks with a command protocol for erasing,
// writing and bank switching. A 64k part simply never receives the bank
// switch command.
type flash struct {
	lowBank  []byte
	highBank []byte

	state     flashState
	handshake flashHandshake
	highBankSelected bool
}

func newFlash() *flash {
	fl := &flash{
		lowBank:  make([]byte, flashBankSize),
		highBank: make([]byte, flashBankSize),
	}
	for i := range fl.lowBank {
		fl.lowBank[i] = 0xff
		fl.highBank[i] = 0xff
	}
	return fl
}

func (fl *flash) label() string {
	return "Flash"
}

func (fl *flash) bank() []byte {
	if fl.highBankSelected {
		return fl.highBank
	}
	return fl.lowBank
}

func (fl *flash) readByte(offset uint32) uint8 {
	if fl.state == flashIdentification {
		switch offset & (flashBankSize - 1) {
		case 0x0000:
			return flashManufacturer
		case 0x0001:
			return flashDeviceType
		}
	}
	return fl.bank()[offset&(flashBankSize-1)]
}

func (fl *flash) writeByte(offset uint32, data uint8) {
	offset &= flashBankSize - 1

	switch fl.handshake {
	case flashWant5555AA:
		if offset == 0x5555 && data == 0xaa {
			fl.handshake = flashWant2AAA55
			return
		}
		if offset == 0x5555 && data == 0xf0 {
			// Macronix parts accept a bare 0xf0 as "forget the current
			// command"
			fl.state = flashReadCommand
			fl.handshake = flashWant5555AA
			return
		}

	case flashWant2AAA55:
		if offset == 0x2aaa && data == 0x55 {
			fl.handshake = flashWantCommandData
			return
		}

	case flashWantCommandData:
		fl.commandData(offset, data)
		return
	}

	logger.Logf(logger.Allow, "cartridge", "flash: unexpected write %#02x to %#04x", data, offset)
}

func (fl *flash) commandData(offset uint32, data uint8) {
	switch fl.state {
	case flashReadCommand:
		if offset != 0x5555 {
			break
		}
		switch data {
		case 0x80:
			fl.state = flashErase
			fl.handshake = flashWant5555AA
			return
		case 0x90:
			fl.state = flashIdentification
			fl.handshake = flashWant5555AA
			return
		case 0xa0:
			fl.state = flashWriteByte
			fl.handshake = flashWantCommandData
			return
		case 0xb0:
			fl.state = flashBankSwitch
			fl.handshake = flashWantCommandData
			return
		}

	case flashIdentification:
		if offset == 0x5555 && data == 0xf0 {
			fl.state = flashReadCommand
			fl.handshake = flashWant5555AA
			return
		}

	case flashBankSwitch:
		if offset == 0x0000 {
			fl.highBankSelected = data != 0
			fl.state = flashReadCommand
			fl.handshake = flashWant5555AA
			return
		}

	case flashWriteByte:
		fl.bank()[offset] = data
		fl.state = flashReadCommand
		fl.handshake = flashWant5555AA
		return

	case flashErase:
		switch {
		case data == 0x10 && offset == 0x5555:
			// chip erase
			for i := range fl.lowBank {
				fl.lowBank[i] = 0xff
				fl.highBank[i] = 0xff
			}
		case data == 0x30 && offset&0x0fff == 0:
			// 4k sector erase
			bank := fl.bank()
			for i := offset; i < offset+0x1000; i++ {
				bank[i] = 0xff
			}
		default:
			logger.Logf(logger.Allow, "cartridge", "flash: unknown erase command %#02x at %#04x", data, offset)
		}
		fl.state = flashReadCommand
		fl.handshake = flashWant5555AA
		return
	}

	logger.Logf(logger.Allow, "cartridge", "flash: unexpected command %#02x to %#04x", data, offset)
	fl.state = flashReadCommand
	fl.handshake = flashWant5555AA
}

func (fl *flash) snapshot() backupMedium {
	n := *fl
	n.lowBank = make([]byte, flashBankSize)
	n.highBank = make([]byte, flashBankSize)
	copy(n.lowBank, fl.lowBank)
	copy(n.highBank, fl.highBank)
	return &n
}

func (fl *flash) reset() {
	fl.state = flashReadCommand
	fl.handshake = flashWant5555AA
	fl.highBankSelected = false
}

func (fl *flash) writeState(w io.Writer) error {
	if _, err := w.Write(fl.lowBank); err != nil {
		return err
	}
	if _, err := w.Write(fl.highBank); err != nil {
		return err
	}
	for _, v := range []interface{}{fl.state, fl.handshake, fl.highBankSelected} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func (fl *flash) readState(r io.Reader) error {
	if _, err := io.ReadFull(r, fl.lowBank); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, fl.highBank); err != nil {
		return err
	}
	for _, v := range []interface{}{&fl.state, &fl.handshake, &fl.highBankSelected} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}
