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

// Package memorymap understands the address layout of the console's 32bit
// bus. It is used to differentiate the different areas of memory and to
// normalise addresses that fall inside one of the many mirrors.
//
// The MapAddress() function is the most important part of the package.
// Addresses should be passed through MapAddress() before being used to
// access any of the memory areas.
package memorymap

// Area represents the different areas of memory.
type Area int

func (a Area) String() string {
	switch a {
	case BIOS:
		return "BIOS"
	case EWRAM:
		return "EWRAM"
	case IWRAM:
		return "IWRAM"
	case IO:
		return "IO"
	case Palette:
		return "Palette"
	case VRAM:
		return "VRAM"
	case OAM:
		return "OAM"
	case ROM:
		return "ROM"
	case SRAM:
		return "SRAM"
	}

	return "undefined"
}

// The different memory areas of the console.
const (
	Undefined Area = iota
	BIOS
	EWRAM
	IWRAM
	IO
	Palette
	VRAM
	OAM
	ROM
	SRAM
)

// The origin and memory top for each area of memory. Checking which area an
// address falls within and folding mirror addresses into the normalised range
// is all handled by the MapAddress() function.
//
// Implementations of the different memory areas may need to drag the address
// down into the range of an array. This can be done elegantly with
// (address^origin) rather than subtraction.
const (
	OriginBIOS    = uint32(0x00000000)
	MemtopBIOS    = uint32(0x00003fff)
	OriginEWRAM   = uint32(0x02000000)
	MemtopEWRAM   = uint32(0x0203ffff)
	OriginIWRAM   = uint32(0x03000000)
	MemtopIWRAM   = uint32(0x03007fff)
	OriginIO      = uint32(0x04000000)
	MemtopIO      = uint32(0x040003fe)
	OriginPalette = uint32(0x05000000)
	MemtopPalette = uint32(0x050003ff)
	OriginVRAM    = uint32(0x06000000)
	MemtopVRAM    = uint32(0x06017fff)
	OriginOAM     = uint32(0x07000000)
	MemtopOAM     = uint32(0x070003ff)
	OriginROM     = uint32(0x08000000)
	MemtopROM     = uint32(0x09ffffff)
	OriginSRAM    = uint32(0x0e000000)
	MemtopSRAM    = uint32(0x0e00ffff)
)

// Within each area the address is mirrored across the full extent of the
// area's address window. The masks below keep only the relevant bits of an
// address known to be in the corresponding area.
const (
	MaskEWRAM   = uint32(0x0003ffff)
	MaskIWRAM   = uint32(0x00007fff)
	MaskIO      = uint32(0x000003ff)
	MaskPalette = uint32(0x000003ff)
	MaskVRAM    = uint32(0x0001ffff)
	MaskOAM     = uint32(0x000003ff)
	MaskROM     = uint32(0x01ffffff)
	MaskSRAM    = uint32(0x0000ffff)
)

// WaitstateRegion returns which of the three cartridge port regions (0, 1 or
// 2) an address falls in. The three ROM mirrors differ only in the number of
// wait states the cartridge port inserts.
//
// The result is meaningless for an address outside of the ROM area.
func WaitstateRegion(address uint32) int {
	return int(((address >> 24) - 8) >> 1)
}

// MapAddress translates the address argument from mirror space to primary
// space and identifies the memory area the address falls within. Generally,
// an address should be passed through this function before accessing memory.
//
// An Area of Undefined indicates that no memory area claims the address. It
// is up to the caller to decide what that means; on the real console such an
// access reads the open bus.
func MapAddress(address uint32) (uint32, Area) {
	switch address >> 24 {
	case 0x00:
		// the BIOS is not mirrored. addresses above the BIOS but below the
		// EWRAM origin are unmapped
		if address <= MemtopBIOS {
			return address, BIOS
		}
		return address, Undefined

	case 0x01:
		return address, Undefined

	case 0x02:
		return OriginEWRAM | (address & MaskEWRAM), EWRAM

	case 0x03:
		return OriginIWRAM | (address & MaskIWRAM), IWRAM

	case 0x04:
		// IO registers are not mirrored (with the minor exception of the
		// internal memory control register, which we treat as unmapped)
		if address <= MemtopIO {
			return address, IO
		}
		return address, Undefined

	case 0x05:
		return OriginPalette | (address & MaskPalette), Palette

	case 0x06:
		// VRAM is 96k in a 128k mirror window. the upper 32k appears twice
		// in each window
		a := address & MaskVRAM
		if a >= 0x00018000 {
			a -= 0x00008000
		}
		return OriginVRAM | a, VRAM

	case 0x07:
		return OriginOAM | (address & MaskOAM), OAM

	case 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d:
		// the three ROM regions mirror the same cartridge data
		return OriginROM | (address & MaskROM), ROM

	case 0x0e, 0x0f:
		return OriginSRAM | (address & MaskSRAM), SRAM
	}

	return address, Undefined
}
