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
	"encoding/binary"
)

const numSprites = 128

// object modes from attribute 0
const (
	objModeNormal = iota
	objModeSemiTransparent
	objModeWindow
	objModeProhibited
)

// sprite dimensions in pixels, indexed by shape and then size
var spriteDims = [3][4][2]uint16{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
}

// the three attribute halfwords of the numbered OAM entry
func (lc *LCD) spriteAttr(num int) (uint16, uint16, uint16) {
	o := num * 8
	return binary.LittleEndian.Uint16(lc.OAM[o:]),
		binary.LittleEndian.Uint16(lc.OAM[o+2:]),
		binary.LittleEndian.Uint16(lc.OAM[o+4:])
}

// rotation/scaling parameters are interleaved with the sprite attributes,
// one parameter group for every four OAM entries
func (lc *LCD) spriteParams(group uint16) (float64, float64, float64, float64) {
	o := int(group) * 32
	return affineParam(binary.LittleEndian.Uint16(lc.OAM[o+6:])),
		affineParam(binary.LittleEndian.Uint16(lc.OAM[o+14:])),
		affineParam(binary.LittleEndian.Uint16(lc.OAM[o+22:])),
		affineParam(binary.LittleEndian.Uint16(lc.OAM[o+30:]))
}

// the colour and priority of a sprite contribution to a dot
type spritePixel struct {
	colour   uint16
	priority uint16
}

// spritePixel returns the highest priority sprite contribution to the
// named dot. sprites earlier in OAM win ties. the final return value
// indicates whether an object-window mode sprite covers the dot; those
// sprites shape the object window and are never drawn themselves.
func (lc *LCD) spritePixel(x uint16, y uint16) (spritePixel, bool, bool) {
	var best spritePixel
	var found bool
	var objWindow bool

	oneDimensional := lc.Control&0x0040 == 0x0040
	bitmapMode := lc.Control&0x0007 >= 3

	mosaicH := lc.Mos>>8&0x0f + 1
	mosaicV := lc.Mos>>12&0x0f + 1

	for i := 0; i < numSprites; i++ {
		attr0, attr1, attr2 := lc.spriteAttr(i)

		affine := attr0&0x0100 == 0x0100
		if !affine && attr0&0x0200 == 0x0200 {
			// disable flag shares a bit with the double-size flag
			continue
		}

		shape := attr0 >> 14
		if shape == 3 {
			continue
		}
		width := spriteDims[shape][attr1>>14][0]
		height := spriteDims[shape][attr1>>14][1]

		// the bounding box of a double-size affine sprite is twice the
		// sprite's dimensions
		boxWidth := width
		boxHeight := height
		if affine && attr0&0x0200 == 0x0200 {
			boxWidth *= 2
			boxHeight *= 2
		}

		screenX := x
		screenY := y
		if attr0&0x1000 == 0x1000 {
			screenX -= screenX % mosaicH
			screenY -= screenY % mosaicV
		}

		// sprite coordinates wrap in a 512x256 space
		relX := (screenX - attr1&0x01ff) & 0x01ff
		relY := (screenY - attr0&0x00ff) & 0x00ff
		if relX >= boxWidth || relY >= boxHeight {
			continue
		}

		var texX uint16
		var texY uint16

		if affine {
			pa, pb, pc, pd := lc.spriteParams(attr1 >> 9 & 0x1f)

			// rotation is around the center of the bounding box
			localX := float64(relX) - float64(boxWidth)/2
			localY := float64(relY) - float64(boxHeight)/2

			fx := pa*localX + pb*localY + float64(width)/2
			fy := pc*localX + pd*localY + float64(height)/2
			if fx < 0 || fx >= float64(width) || fy < 0 || fy >= float64(height) {
				continue
			}

			texX = uint16(fx)
			texY = uint16(fy)
		} else {
			texX = relX
			texY = relY
			if attr1&0x1000 == 0x1000 {
				texX = width - 1 - texX
			}
			if attr1&0x2000 == 0x2000 {
				texY = height - 1 - texY
			}
		}

		depth8 := attr0&0x2000 == 0x2000

		// 8bit depth tiles occupy two tile number slots
		step := uint32(1)
		if depth8 {
			step = 2
		}

		// in two-dimensional mapping each row of tiles starts 32 slots
		// after the previous one, regardless of sprite width
		stride := uint32(32)
		if oneDimensional {
			stride = uint32(width/8) * step
		}

		tile := uint32(attr2&0x03ff) + uint32(texY/8)*stride + uint32(texX/8)*step

		// the lower half of object tile memory is used by the bitmap
		// backgrounds in modes 3 and above
		if bitmapMode && tile < 512 {
			continue
		}

		var colour uint16

		if depth8 {
			// the highest tile numbers address past the end of the 32k
			// object region. the fetch wraps within the region
			p := lc.VRAM[0x10000+(tile*32+uint32(texY%8)*8+uint32(texX%8))&0x7fff]
			if p == 0 {
				continue
			}
			colour = lc.Palette[0x100+uint32(p)]
		} else {
			p := lc.VRAM[0x10000+tile*32+uint32(texY%8)*4+uint32(texX%8)/2]
			if texX%2 == 0 {
				p &= 0x0f
			} else {
				p >>= 4
			}
			if p == 0 {
				continue
			}
			colour = lc.Palette[0x100+uint32(attr2>>12)*16+uint32(p)]
		}

		if attr0>>10&0x03 == objModeWindow {
			objWindow = true
			continue
		}

		priority := attr2 >> 10 & 0x03
		if !found || priority < best.priority {
			best = spritePixel{colour: colour, priority: priority}
			found = true
		}
	}

	return best, found, objWindow
}
