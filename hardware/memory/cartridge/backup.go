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
	"io"

	"github.com/gopheradvance/gopheradvance/logger"
)

// backupMedium is the interface implemented by every kind of cartridge
// backup storage. The readByte/writeByte functions service the SRAM area of
// the cartridge port; the EEPROM additionally hooks into the ROM area (see
// ReadROM16).
type backupMedium interface {
	label() string
	readByte(offset uint32) uint8
	writeByte(offset uint32, data uint8)

	// deep copy of the medium, including transient command state
	snapshot() backupMedium

	// reset transient command state. content survives, it is battery backed
	reset()

	writeState(w io.Writer) error
	readState(r io.Reader) error
}

// noBackup is the backup medium of a cartridge with no backup storage at
// all. Reads from the SRAM area float high.
type noBackup struct{}

func (n noBackup) label() string {
	return "none"
}

func (n noBackup) readByte(offset uint32) uint8 {
	return 0xff
}

func (n noBackup) writeByte(offset uint32, data uint8) {
	logger.Logf(logger.Allow, "cartridge", "write to absent backup medium (address %#08x)", offset)
}

func (n noBackup) snapshot() backupMedium {
	return n
}

func (n noBackup) reset() {
}

func (n noBackup) writeState(w io.Writer) error {
	return nil
}

func (n noBackup) readState(r io.Reader) error {
	return nil
}
