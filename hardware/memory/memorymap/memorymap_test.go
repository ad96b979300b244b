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

package memorymap_test

import (
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/memory/memorymap"
	"github.com/gopheradvance/gopheradvance/test"
)

func TestMapAddress_primary(t *testing.T) {
	// addresses already in primary space map to themselves
	ma, ar := memorymap.MapAddress(0x00000000)
	test.Equate(t, ma, 0x00000000)
	test.Equate(t, ar == memorymap.BIOS, true)

	ma, ar = memorymap.MapAddress(0x02000000)
	test.Equate(t, ma, 0x02000000)
	test.Equate(t, ar == memorymap.EWRAM, true)

	ma, ar = memorymap.MapAddress(0x03007fff)
	test.Equate(t, ma, 0x03007fff)
	test.Equate(t, ar == memorymap.IWRAM, true)

	ma, ar = memorymap.MapAddress(0x04000000)
	test.Equate(t, ma, 0x04000000)
	test.Equate(t, ar == memorymap.IO, true)

	ma, ar = memorymap.MapAddress(0x08000000)
	test.Equate(t, ma, 0x08000000)
	test.Equate(t, ar == memorymap.ROM, true)
}

func TestMapAddress_mirrors(t *testing.T) {
	// EWRAM is mirrored every 256k
	ma, ar := memorymap.MapAddress(0x02040000)
	test.Equate(t, ma, 0x02000000)
	test.Equate(t, ar == memorymap.EWRAM, true)

	ma, _ = memorymap.MapAddress(0x02ffffff)
	test.Equate(t, ma, 0x0203ffff)

	// IWRAM is mirrored every 32k
	ma, ar = memorymap.MapAddress(0x03008000)
	test.Equate(t, ma, 0x03000000)
	test.Equate(t, ar == memorymap.IWRAM, true)

	ma, _ = memorymap.MapAddress(0x03fffff0)
	test.Equate(t, ma, 0x03007ff0)

	// palette and OAM are mirrored every 1k
	ma, ar = memorymap.MapAddress(0x05000400)
	test.Equate(t, ma, 0x05000000)
	test.Equate(t, ar == memorymap.Palette, true)

	ma, ar = memorymap.MapAddress(0x07000404)
	test.Equate(t, ma, 0x07000004)
	test.Equate(t, ar == memorymap.OAM, true)

	// the upper 32k of each 128k VRAM window mirrors the 32k at 0x06010000
	ma, ar = memorymap.MapAddress(0x06018000)
	test.Equate(t, ma, 0x06010000)
	test.Equate(t, ar == memorymap.VRAM, true)

	// and VRAM is mirrored every 128k
	ma, _ = memorymap.MapAddress(0x06020000)
	test.Equate(t, ma, 0x06000000)

	// all three cartridge port regions mirror the same ROM
	ma, ar = memorymap.MapAddress(0x0a000010)
	test.Equate(t, ma, 0x08000010)
	test.Equate(t, ar == memorymap.ROM, true)

	ma, _ = memorymap.MapAddress(0x0c000010)
	test.Equate(t, ma, 0x08000010)

	// SRAM is mirrored across the 0x0e and 0x0f regions
	ma, ar = memorymap.MapAddress(0x0f010000)
	test.Equate(t, ma, 0x0e000000)
	test.Equate(t, ar == memorymap.SRAM, true)
}

func TestMapAddress_unmapped(t *testing.T) {
	// addresses between the BIOS and EWRAM are unmapped
	_, ar := memorymap.MapAddress(0x00004000)
	test.Equate(t, ar == memorymap.Undefined, true)

	_, ar = memorymap.MapAddress(0x01000000)
	test.Equate(t, ar == memorymap.Undefined, true)

	// as are IO addresses beyond the register file
	_, ar = memorymap.MapAddress(0x04000400)
	test.Equate(t, ar == memorymap.Undefined, true)

	// and anything above the SRAM region
	_, ar = memorymap.MapAddress(0x10000000)
	test.Equate(t, ar == memorymap.Undefined, true)

	_, ar = memorymap.MapAddress(0xffffffff)
	test.Equate(t, ar == memorymap.Undefined, true)
}

func TestWaitstateRegion(t *testing.T) {
	test.Equate(t, memorymap.WaitstateRegion(0x08000000), 0)
	test.Equate(t, memorymap.WaitstateRegion(0x09ffffff), 0)
	test.Equate(t, memorymap.WaitstateRegion(0x0a000000), 1)
	test.Equate(t, memorymap.WaitstateRegion(0x0c000000), 2)
}
