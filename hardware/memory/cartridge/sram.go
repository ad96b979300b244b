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
)

// battery backed SRAM. the simplest of the backup media: a flat 64k byte
// array with no command protocol at all.
type sram struct {
	data []byte
}

const sramSize = 0x10000

func newSRAM() *sram {
	return &sram{
		data: make([]byte, sramSize),
	}
}

func (sr *sram) label() string {
	return "SRAM"
}

func (sr *sram) readByte(offset uint32) uint8 {
	return sr.data[offset&(sramSize-1)]
}

func (sr *sram) writeByte(offset uint32, data uint8) {
	sr.data[offset&(sramSize-1)] = data
}

func (sr *sram) snapshot() backupMedium {
	n := newSRAM()
	copy(n.data, sr.data)
	return n
}

func (sr *sram) reset() {
}

func (sr *sram) writeState(w io.Writer) error {
	_, err := w.Write(sr.data)
	return err
}

func (sr *sram) readState(r io.Reader) error {
	_, err := io.ReadFull(r, sr.data)
	return err
}
