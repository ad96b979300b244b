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

// Package cartridge implements the console's game pak: the ROM image itself
// and whichever backup medium (SRAM, Flash or EEPROM) the ROM expects to
// find on the cartridge.
//
// The backup medium is detected by searching the ROM for the ID strings
// that the official SDK embeds in every ROM that uses backup storage. A
// cartridge without any ID string is assumed to have no backup medium;
// reads from the SRAM area of such a cartridge return 0xff.
//
// EEPROM is unusual in that it is addressed through the top of the ROM
// area rather than the SRAM area. The Cartridge type intercepts 16bit
// accesses to the top of the ROM window and forwards them to the EEPROM
// when one is present.
package cartridge

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/logger"
)

// InvalidROM is the sentinel error pattern returned when a ROM image fails
// validation.
const InvalidROM = "cartridge: invalid rom image: %v"

// the smallest image we accept is a bare header; the largest is the full
// 32MB the cartridge port can address
const (
	minROMSize = 0x00c0
	maxROMSize = 0x02000000
)

// header field offsets
const (
	titleOffset      = 0x00a0
	gameCodeOffset   = 0x00ac
	makerCodeOffset  = 0x00b0
	fixedValueOffset = 0x00b2
	checksumOffset   = 0x00bd
)

// the EEPROM (when present) is addressed through the top of the ROM window
const eepromThreshold = 0x01ffff00

// Cartridge is the game pak attached to the console.
type Cartridge struct {
	rom []byte

	// the parsed header fields
	title     string
	gameCode  string
	makerCode string

	backup backupMedium
}

// NewCartridge is the preferred method of initialisation for the Cartridge
// type. The data argument is the complete ROM image; it is validated before
// anything else happens.
func NewCartridge(data []byte) (*Cartridge, error) {
	if err := validateROM(data); err != nil {
		return nil, err
	}

	cart := &Cartridge{rom: data}
	cart.title = headerString(data, titleOffset, 12)
	cart.gameCode = headerString(data, gameCodeOffset, 4)
	cart.makerCode = headerString(data, makerCodeOffset, 2)

	cart.backup = detectBackup(data)

	logger.Logf(logger.Allow, "cartridge", "%s [%s] backup=%s", cart.title, cart.gameCode, cart.backup.label())

	return cart, nil
}

// Snapshot creates a copy of the cartridge in its current state. The ROM
// image is immutable and is shared between snapshots; the backup medium is
// deep-copied.
func (cart *Cartridge) Snapshot() *Cartridge {
	n := *cart
	n.backup = cart.backup.snapshot()
	return &n
}

// Plumb is a stub to satisfy the sub-system convention.
func (cart *Cartridge) Plumb() {
}

// Reset the backup medium's transient state (the command state machines).
// The content of the backup medium survives a reset, as it does on the real
// cartridge where it is battery backed.
func (cart *Cartridge) Reset() {
	cart.backup.reset()
}

func (cart *Cartridge) String() string {
	return fmt.Sprintf("%s [%s] (%dk, backup=%s)", cart.title, cart.gameCode, len(cart.rom)/1024, cart.backup.label())
}

// Title returns the game title from the ROM header.
func (cart *Cartridge) Title() string {
	return cart.title
}

// GameCode returns the game code from the ROM header.
func (cart *Cartridge) GameCode() string {
	return cart.gameCode
}

// validateROM checks the parts of the header that the real console's BIOS
// checks before it will boot a cartridge.
func validateROM(data []byte) error {
	if len(data) < minROMSize {
		return curated.Errorf(InvalidROM, fmt.Sprintf("image smaller than the %d byte header", minROMSize))
	}
	if len(data) > maxROMSize {
		return curated.Errorf(InvalidROM, "image larger than the 32mb cartridge window")
	}

	if data[fixedValueOffset] != 0x96 {
		return curated.Errorf(InvalidROM, fmt.Sprintf("fixed value is %#02x, not 0x96", data[fixedValueOffset]))
	}

	var sum uint8
	for _, b := range data[titleOffset:checksumOffset] {
		sum += b
	}
	chk := -(sum + 0x19)
	if data[checksumOffset] != chk {
		return curated.Errorf(InvalidROM, fmt.Sprintf("header checksum is %#02x, expected %#02x", data[checksumOffset], chk))
	}

	return nil
}

func headerString(data []byte, offset int, length int) string {
	s := string(data[offset : offset+length])
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s
}

// the ID strings the official SDK embeds in ROMs that use backup storage
var (
	eepromPattern   = regexp.MustCompile(`EEPROM_V\w\w\w`)
	sramPattern     = regexp.MustCompile(`SRAM_V\w\w\w`)
	flash64kPattern = regexp.MustCompile(`FLASH_V\w\w\w|FLASH512_V\w\w\w`)
	flash1mPattern  = regexp.MustCompile(`FLASH1M_V\w\w\w`)
)

func detectBackup(data []byte) backupMedium {
	switch {
	case eepromPattern.Match(data):
		return newEEPROM()
	case sramPattern.Match(data):
		return newSRAM()
	case flash1mPattern.Match(data), flash64kPattern.Match(data):
		return newFlash()
	}
	return noBackup{}
}

// WriteState writes the cartridge's state to the io.Writer: the identity of
// the ROM the state belongs to, followed by the backup medium. Used by the
// savestate package.
func (cart *Cartridge) WriteState(w io.Writer) error {
	id := [12]byte{}
	copy(id[:4], cart.gameCode)
	copy(id[4:], cart.backup.label())
	if _, err := w.Write(id[:]); err != nil {
		return err
	}
	return cart.backup.writeState(w)
}

// ReadState reads a state previously written with WriteState() into the
// cartridge. An error is returned if the state belongs to a different ROM
// or to a cartridge with a different backup medium.
func (cart *Cartridge) ReadState(r io.Reader) error {
	id := [12]byte{}
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return err
	}

	expected := [12]byte{}
	copy(expected[:4], cart.gameCode)
	copy(expected[4:], cart.backup.label())
	if id != expected {
		return curated.Errorf("cartridge: state is for a different cartridge (%s)", strings.TrimRight(string(id[:4]), "\x00"))
	}

	return cart.backup.readState(r)
}

// ReadROM8 reads a byte from the ROM area of the cartridge port.
func (cart *Cartridge) ReadROM8(offset uint32) uint8 {
	if offset < uint32(len(cart.rom)) {
		return cart.rom[offset]
	}

	// the cartridge port uses the same signal lines for data and for the
	// lower halfword address, so reads beyond the ROM image see the address
	// lines themselves: incrementing 16bit values of (offset/2)&0xffff
	v := (offset / 2) & 0xffff
	if offset&0x1 == 0x1 {
		return uint8(v >> 8)
	}
	return uint8(v)
}

// ReadROM16 reads a halfword from the ROM area of the cartridge port. An
// access to the top of the ROM window is forwarded to the EEPROM when the
// cartridge has one.
func (cart *Cartridge) ReadROM16(offset uint32) uint16 {
	if ee, ok := cart.backup.(*eeprom); ok {
		if offset > eepromThreshold || offset >= uint32(len(cart.rom)) {
			return ee.readBit()
		}
	}
	return uint16(cart.ReadROM8(offset)) | uint16(cart.ReadROM8(offset+1))<<8
}

// ReadROM32 reads a word from the ROM area of the cartridge port.
func (cart *Cartridge) ReadROM32(offset uint32) uint32 {
	return uint32(cart.ReadROM16(offset)) | uint32(cart.ReadROM16(offset+2))<<16
}

// WriteROM16 writes a halfword to the ROM area of the cartridge port. ROM
// itself ignores writes but an access to the top of the ROM window is
// forwarded to the EEPROM when the cartridge has one.
func (cart *Cartridge) WriteROM16(offset uint32, data uint16) {
	if ee, ok := cart.backup.(*eeprom); ok {
		if offset > eepromThreshold || offset >= uint32(len(cart.rom)) {
			ee.writeBit(data)
		}
	}
}

// ReadSRAM reads a byte from the SRAM area of the cartridge port.
func (cart *Cartridge) ReadSRAM(offset uint32) uint8 {
	return cart.backup.readByte(offset)
}

// WriteSRAM writes a byte to the SRAM area of the cartridge port.
func (cart *Cartridge) WriteSRAM(offset uint32, data uint8) {
	cart.backup.writeByte(offset, data)
}
