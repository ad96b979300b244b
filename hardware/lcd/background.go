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

package lcd

import (
	"github.com/gopheradvance/gopheradvance/hardware/screen"
)

// background character data occupies the first 64k of VRAM in the tile
// video modes. fetches addressed beyond it never reach the object region
const bgVRAMSize = 0x10000

// which rendering path a background uses depends on the background number
// and the video mode
const (
	renderNone = iota
	renderText
	renderAffine
	renderBitmap
)

// rendering path for each background in each of the six video modes
var renderPath = [4][6]int{
	{renderText, renderText, renderNone, renderNone, renderNone, renderNone},
	{renderText, renderText, renderNone, renderNone, renderNone, renderNone},
	{renderText, renderAffine, renderAffine, renderBitmap, renderBitmap, renderBitmap},
	{renderText, renderNone, renderAffine, renderNone, renderNone, renderNone},
}

// a single background layer. all four backgrounds are represented by the
// same type; the background number decides which of the rendering paths
// and which of the affine registers are meaningful. the fields are
// exported for the benefit of the savestate package; they should not be
// written to directly.
type background struct {
	Num uint8

	Control uint16

	// scroll registers for the text rendering path
	XOffset uint16
	YOffset uint16

	// reference point and parameters for the affine rendering path.
	// meaningless for backgrounds 0 and 1
	AffineX uint32
	AffineY uint32
	PA      uint16
	PB      uint16
	PC      uint16
	PD      uint16
}

func (bg *background) priority() uint16 {
	return bg.Control & 0x0003
}

// base offset into VRAM of the background's tile image data
func (bg *background) tileBase() uint32 {
	return uint32(bg.Control>>2&0x03) * 0x4000
}

// base offset into VRAM of the background's tile map
func (bg *background) mapBase() uint32 {
	return uint32(bg.Control>>8&0x1f) * 0x800
}

func (bg *background) mosaic() bool {
	return bg.Control&0x0040 == 0x0040
}

func (bg *background) depth8() bool {
	return bg.Control&0x0080 == 0x0080
}

func (bg *background) screenSize() uint16 {
	return bg.Control >> 14 & 0x03
}

func (bg *background) affineWrap() bool {
	return bg.Control&0x2000 == 0x2000
}

// 8.8 signed fixed point to float
func affineParam(v uint16) float64 {
	return float64(int16(v)) / 256
}

// 20.8 signed fixed point to float. the value occupies the low 28 bits of
// the register
func affineOffset(v uint32) float64 {
	return float64(int32(v<<4)>>4) / 256
}

// pixel returns the background's contribution to the named dot, or false
// if the background is transparent there. the vram offset of the dot's
// data depends on the video mode and, in the bitmap modes, on the selected
// display frame.
func (bg *background) pixel(x uint16, y uint16, mode uint16, frame uint16,
	mosaicH uint16, mosaicV uint16, vram []byte, palette []uint16) (uint16, bool) {

	if mode > 5 {
		return 0, false
	}

	switch renderPath[bg.Num][mode] {
	case renderText:
		return bg.textPixel(x, y, mosaicH, mosaicV, vram, palette)
	case renderAffine:
		return bg.affinePixel(x, y, vram, palette)
	case renderBitmap:
		return bg.bitmapPixel(x, y, mode, frame, vram, palette)
	}

	return 0, false
}

func (bg *background) textPixel(x uint16, y uint16, mosaicH uint16, mosaicV uint16,
	vram []byte, palette []uint16) (uint16, bool) {

	x += bg.XOffset & 0x01ff
	y += bg.YOffset & 0x01ff

	if bg.mosaic() {
		x -= x % mosaicH
		y -= y % mosaicV
	}

	mapX := uint32(x/8) % 64
	mapY := uint32(y/8) % 64

	// a text background is built from one, two or four 32x32 blocks of
	// map entries
	entry := (mapY%32)*32 + mapX%32
	switch bg.screenSize() {
	case 1:
		if mapX >= 32 {
			entry += 1024
		}
	case 2:
		if mapY >= 32 {
			entry += 1024
		}
	case 3:
		if mapX >= 32 {
			entry += 1024
		}
		if mapY >= 32 {
			entry += 2048
		}
	}

	idx := bg.mapBase() + entry*2
	mapData := uint16(vram[idx]) | uint16(vram[idx+1])<<8

	tile := uint32(mapData & 0x03ff)
	paletteNum := mapData >> 12 & 0x0f

	tileX := uint32(x % 8)
	tileY := uint32(y % 8)
	if mapData&0x0400 == 0x0400 {
		tileX = 7 - tileX
	}
	if mapData&0x0800 == 0x0800 {
		tileY = 7 - tileY
	}

	var colour uint16

	if bg.depth8() {
		// a high tile number with a high character base reaches past the
		// 64K of background character data. nothing is fetched from the
		// object region of VRAM; the dot is transparent
		t := bg.tileBase() + tile*64 + tileY*8 + tileX
		if t >= bgVRAMSize {
			return 0, false
		}
		p := vram[t]
		if p == 0 {
			return 0, false
		}
		colour = uint16(p)
	} else {
		t := bg.tileBase() + tile*32 + tileY*4 + tileX/2
		if t >= bgVRAMSize {
			return 0, false
		}
		p := vram[t]
		if tileX%2 == 0 {
			p &= 0x0f
		} else {
			p >>= 4
		}
		if p == 0 {
			return 0, false
		}
		colour = paletteNum<<4 | uint16(p)
	}

	return palette[colour], true
}

func (bg *background) affinePixel(x uint16, y uint16, vram []byte, palette []uint16) (uint16, bool) {
	fx := float64(x)
	fy := float64(y)

	ax := fx*affineParam(bg.PA) + fy*affineParam(bg.PB) + affineOffset(bg.AffineX)
	ay := fx*affineParam(bg.PC) + fy*affineParam(bg.PD) + affineOffset(bg.AffineY)

	// affine backgrounds are square. the map entries are single bytes
	mapTiles := float64(uint32(16) << bg.screenSize())

	mapX := ax / 8
	mapY := ay / 8

	if bg.affineWrap() {
		mapX = mod(mapX, mapTiles)
		mapY = mod(mapY, mapTiles)
	} else if mapX < 0 || mapX >= mapTiles || mapY < 0 || mapY >= mapTiles {
		return 0, true
	}

	entry := uint32(mapY)*uint32(mapTiles) + uint32(mapX)
	tile := uint32(vram[bg.mapBase()+entry])

	tileX := uint32(mod(ax, 8))
	tileY := uint32(mod(ay, 8))

	// affine tile data is always 8bit depth
	p := vram[bg.tileBase()+tile*64+tileY*8+tileX]
	if p == 0 {
		return 0, false
	}

	return palette[p], true
}

// positive remainder
func mod(v float64, m float64) float64 {
	v -= float64(int64(v/m)) * m
	if v < 0 {
		v += m
	}
	return v
}

func (bg *background) bitmapPixel(x uint16, y uint16, mode uint16, frame uint16,
	vram []byte, palette []uint16) (uint16, bool) {

	switch mode {
	case 3:
		// single frame of full resolution 15bit colour
		o := (uint32(y)*screen.ClksVisible + uint32(x)) * 2
		return uint16(vram[o]) | uint16(vram[o+1])<<8, true

	case 4:
		// two frames of full resolution paletted colour
		o := uint32(y)*screen.ClksVisible + uint32(x)
		if frame == 1 {
			o += 0xa000
		}
		return palette[vram[o]], true

	case 5:
		// two frames of reduced resolution 15bit colour
		const modeWidth = 160
		const modeHeight = 128

		if x >= modeWidth || y >= modeHeight {
			return 0, true
		}

		o := (uint32(y)*modeWidth + uint32(x)) * 2
		if frame == 1 {
			o += 0xa000
		}
		return uint16(vram[o]) | uint16(vram[o+1])<<8, true
	}

	return 0, false
}
