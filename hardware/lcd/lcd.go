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

// Package lcd implements the picture processing unit of the Game Boy
// Advance. The LCD owns the three blocks of video memory (palette RAM,
// VRAM and OAM) in addition to its registers; the memory package forwards
// accesses in those address ranges here.
//
// The implementation is a scanline renderer driven one dot at a time.
// Step() advances the dot clock by one and, during the visible portion of
// the frame, resolves the colour of the dot immediately: the sprite layer
// and the four backgrounds each offer a pixel, the window registers mask
// the offers, and the two highest priority survivors feed the colour
// special effects. Completed frames are handed to the screen package at
// the start of vertical blanking.
package lcd

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
)

// DISPSTAT flag bits
const (
	statusVBlank = 0x0001
	statusHBlank = 0x0002
	statusVCount = 0x0004
)

// the layers a dot colour can come from. also the bit positions of the
// layers in the window enable masks and in BLDCNT
const (
	sourceBG0 = iota
	sourceBG1
	sourceBG2
	sourceBG3
	sourceSprite
	sourceBackdrop
)

// a candidate colour for a dot
type pixel struct {
	colour   uint16
	priority uint16
	source   int
	present  bool
}

// StepResult describes the display events caused by a single step of the
// LCD. The hardware package uses the events to schedule DMA transfers and
// to raise interrupts.
type StepResult struct {
	VBlank      bool
	HBlank      bool
	VCountMatch bool
}

// LCD implements the display hardware of the Game Boy Advance.
type LCD struct {
	scr *screen.Screen

	// position of the dot clock. the dot counts through the horizontal
	// blanking period and VCount through the vertical blanking period
	//
	// fields are exported for the benefit of the savestate package
	Dot    uint16
	VCount uint16

	Control uint16
	Status  uint16

	BG [4]background

	Win0H  uint16
	Win1H  uint16
	Win0V  uint16
	Win1V  uint16
	WinIn  uint16
	WinOut uint16

	Mos      uint16
	BldCnt   uint16
	BldAlpha uint16
	BldY     uint16

	Palette [0x200]uint16
	VRAM    [0x18000]byte
	OAM     [0x400]byte

	// rendering happens into the back framebuffer. the buffers are
	// swapped at the start of vertical blanking and the new front buffer
	// is forwarded to the screen implementation
	front *screen.Framebuffer
	back  *screen.Framebuffer
}

// NewLCD is the preferred method of initialisation for the LCD type.
func NewLCD(scr *screen.Screen) *LCD {
	lc := &LCD{
		scr:   scr,
		front: &screen.Framebuffer{},
		back:  &screen.Framebuffer{},
	}
	lc.Reset()
	return lc
}

// Snapshot creates a copy of the LCD in its current state.
func (lc *LCD) Snapshot() *LCD {
	n := *lc
	n.front = &screen.Framebuffer{}
	n.back = &screen.Framebuffer{}
	*n.front = *lc.front
	*n.back = *lc.back
	return &n
}

// Plumb a new screen implementation into the LCD.
func (lc *LCD) Plumb(scr *screen.Screen) {
	lc.scr = scr
}

// Reset the LCD to its power-on state. Video memory is not cleared by the
// reset signal on real hardware but a predictable state is more useful.
func (lc *LCD) Reset() {
	lc.Dot = 0
	lc.VCount = 0
	lc.Control = 0
	lc.Status = 0
	for i := range lc.BG {
		lc.BG[i] = background{Num: uint8(i)}
	}
	lc.Win0H = 0
	lc.Win1H = 0
	lc.Win0V = 0
	lc.Win1V = 0
	lc.WinIn = 0
	lc.WinOut = 0
	lc.Mos = 0
	lc.BldCnt = 0
	lc.BldAlpha = 0
	lc.BldY = 0
	lc.Palette = [0x200]uint16{}
	lc.VRAM = [0x18000]byte{}
	lc.OAM = [0x400]byte{}
	*lc.front = screen.Framebuffer{}
	*lc.back = screen.Framebuffer{}
}

func (lc *LCD) String() string {
	return fmt.Sprintf("dot: %03d scanline: %03d mode: %d", lc.Dot, lc.VCount, lc.Control&0x0007)
}

// Frame returns the most recently completed framebuffer.
func (lc *LCD) Frame() *screen.Framebuffer {
	return lc.front
}

// VBlankIRQEnabled checks the interrupt enable bit in DISPSTAT.
func (lc *LCD) VBlankIRQEnabled() bool {
	return lc.Status&0x0008 == 0x0008
}

// HBlankIRQEnabled checks the interrupt enable bit in DISPSTAT.
func (lc *LCD) HBlankIRQEnabled() bool {
	return lc.Status&0x0010 == 0x0010
}

// VCountIRQEnabled checks the interrupt enable bit in DISPSTAT.
func (lc *LCD) VCountIRQEnabled() bool {
	return lc.Status&0x0020 == 0x0020
}

// Step advances the dot clock by one. On entering vertical blanking the
// framebuffers are swapped and the completed frame is forwarded to the
// screen implementation.
func (lc *LCD) Step() (StepResult, error) {
	var res StepResult

	if lc.VCount < screen.ScanlinesVisible {
		if lc.Dot == 0 {
			lc.Status &^= statusVBlank | statusHBlank
		} else if lc.Dot == screen.ClksVisible {
			res.HBlank = true
			lc.Status |= statusHBlank
		}

		if lc.Dot < screen.ClksVisible {
			lc.drawDot(lc.Dot, lc.VCount)
		}
	} else if lc.VCount == screen.ScanlinesVisible && lc.Dot == 0 {
		res.VBlank = true
		lc.Status |= statusVBlank

		lc.front, lc.back = lc.back, lc.front
		if err := lc.scr.NewFrame(lc.front); err != nil {
			return res, err
		}
	}

	lc.Dot++
	if lc.Dot >= screen.ClksScanline {
		lc.Dot = 0
		lc.VCount++
		if lc.VCount >= screen.ScanlinesTotal {
			lc.VCount = 0
		}

		if lc.VCount == lc.Status>>8 {
			lc.Status |= statusVCount
			res.VCountMatch = true
		} else {
			lc.Status &^= statusVCount
		}
	}

	return res, nil
}

// resolve the colour of a single dot and write it to the back framebuffer
func (lc *LCD) drawDot(x uint16, y uint16) {
	if lc.Control&0x0080 == 0x0080 {
		// forced blank
		lc.back.SetPixel(int(x), int(y), 0x7fff)
		return
	}

	mode := lc.Control & 0x0007
	frame := lc.Control >> 4 & 0x01

	var sprite spritePixel
	var spriteFound bool
	var objWindow bool
	if lc.Control&0x1000 == 0x1000 {
		sprite, spriteFound, objWindow = lc.spritePixel(x, y)
	}

	mask := lc.windowMask(x, y, objWindow)

	mosaicH := lc.Mos&0x0f + 1
	mosaicV := lc.Mos>>4&0x0f + 1

	// candidates are gathered in the order the layers win priority ties
	var candidates [5]pixel

	if spriteFound && mask&(1<<sourceSprite) != 0 {
		candidates[0] = pixel{
			colour:   sprite.colour,
			priority: sprite.priority,
			source:   sourceSprite,
			present:  true,
		}
	}

	for n := 0; n < 4; n++ {
		if lc.Control&(0x0100<<n) == 0 || mask&(1<<n) == 0 {
			continue
		}
		col, ok := lc.BG[n].pixel(x, y, mode, frame, mosaicH, mosaicV, lc.VRAM[:], lc.Palette[:])
		if ok {
			candidates[n+1] = pixel{
				colour:   col,
				priority: lc.BG[n].priority(),
				source:   sourceBG0 + n,
				present:  true,
			}
		}
	}

	var first pixel
	var second pixel
	for _, c := range candidates {
		if !c.present {
			continue
		}
		if !first.present || c.priority < first.priority {
			second = first
			first = c
		} else if !second.present || c.priority < second.priority {
			second = c
		}
	}

	backdrop := pixel{colour: lc.Palette[0], source: sourceBackdrop, present: true}
	if !first.present {
		first = backdrop
	}
	if !second.present {
		second = backdrop
	}

	col := first.colour

	if mask&0x0020 != 0 {
		switch lc.BldCnt >> 6 & 0x03 {
		case 1:
			if lc.firstTarget(first.source) && lc.secondTarget(second.source) {
				col = blend(first.colour, coefficient(lc.BldAlpha&0x1f),
					second.colour, coefficient(lc.BldAlpha>>8&0x1f))
			}
		case 2:
			if lc.firstTarget(first.source) {
				col = brighten(first.colour, coefficient(lc.BldY&0x1f))
			}
		case 3:
			if lc.firstTarget(first.source) {
				col = darken(first.colour, coefficient(lc.BldY&0x1f))
			}
		}
	}

	lc.back.SetPixel(int(x), int(y), col)
}

// windowMask returns the layer/effects enable mask that applies to the
// named dot. window zero has the highest precedence, then window one,
// then the object window. dots covered by no window use the outside mask.
// when no window is enabled at all every layer is displayed.
func (lc *LCD) windowMask(x uint16, y uint16, objWindow bool) uint16 {
	if lc.Control&0xe000 == 0 {
		return 0x003f
	}

	if lc.Control&0x2000 == 0x2000 && windowContains(lc.Win0H, lc.Win0V, x, y) {
		return lc.WinIn & 0x3f
	}
	if lc.Control&0x4000 == 0x4000 && windowContains(lc.Win1H, lc.Win1V, x, y) {
		return lc.WinIn >> 8 & 0x3f
	}
	if lc.Control&0x8000 == 0x8000 && objWindow {
		return lc.WinOut >> 8 & 0x3f
	}

	return lc.WinOut & 0x3f
}

func windowContains(h uint16, v uint16, x uint16, y uint16) bool {
	left := h >> 8
	right := h & 0xff
	top := v >> 8
	bottom := v & 0xff
	return x >= left && x < right && y >= top && y < bottom
}

// whether the layer is selected as the first target of colour special
// effects
func (lc *LCD) firstTarget(source int) bool {
	return lc.BldCnt>>source&0x01 == 0x01
}

// whether the layer is selected as the second target of colour special
// effects
func (lc *LCD) secondTarget(source int) bool {
	return lc.BldCnt>>(8+source)&0x01 == 0x01
}

// blending coefficients are 1.4 fixed point, saturating at 1.0
func coefficient(v uint16) float64 {
	if v > 16 {
		v = 16
	}
	return float64(v) / 16
}

func blend(a uint16, eva float64, b uint16, evb float64) uint16 {
	var col uint16
	for shift := 0; shift < 15; shift += 5 {
		c := float64(a>>shift&0x1f)*eva + float64(b>>shift&0x1f)*evb
		if c > 31 {
			c = 31
		}
		col |= uint16(c) << shift
	}
	return col
}

func brighten(a uint16, evy float64) uint16 {
	var col uint16
	for shift := 0; shift < 15; shift += 5 {
		c := float64(a >> shift & 0x1f)
		c += (31 - c) * evy
		col |= uint16(c) << shift
	}
	return col
}

func darken(a uint16, evy float64) uint16 {
	var col uint16
	for shift := 0; shift < 15; shift += 5 {
		c := float64(a >> shift & 0x1f)
		c -= c * evy
		col |= uint16(c) << shift
	}
	return col
}

// ReadRegister returns the value of the named display register. The
// second return value is false for registers that are not readable.
func (lc *LCD) ReadRegister(address uint32) (uint16, bool) {
	switch address {
	case addresses.DISPCNT:
		return lc.Control, true
	case addresses.DISPSTAT:
		return lc.Status, true
	case addresses.VCOUNT:
		return lc.VCount, true
	case addresses.BG0CNT:
		return lc.BG[0].Control, true
	case addresses.BG1CNT:
		return lc.BG[1].Control, true
	case addresses.BG2CNT:
		return lc.BG[2].Control, true
	case addresses.BG3CNT:
		return lc.BG[3].Control, true
	case addresses.WININ:
		return lc.WinIn, true
	case addresses.WINOUT:
		return lc.WinOut, true
	case addresses.BLDCNT:
		return lc.BldCnt, true
	case addresses.BLDALPHA:
		return lc.BldAlpha, true
	}

	return 0, false
}

// WriteRegister writes to the named display register. Registers that only
// exist in part are masked on the way in.
func (lc *LCD) WriteRegister(address uint32, data uint16) {
	switch address {
	case addresses.DISPCNT:
		lc.Control = data
	case addresses.DISPSTAT:
		// the flag bits are read-only
		lc.Status = lc.Status&0x0007 | data&0xfff8
	case addresses.BG0CNT:
		lc.BG[0].Control = data
	case addresses.BG1CNT:
		lc.BG[1].Control = data
	case addresses.BG2CNT:
		lc.BG[2].Control = data
	case addresses.BG3CNT:
		lc.BG[3].Control = data
	case addresses.BG0HOFS:
		lc.BG[0].XOffset = data
	case addresses.BG0VOFS:
		lc.BG[0].YOffset = data
	case addresses.BG1HOFS:
		lc.BG[1].XOffset = data
	case addresses.BG1VOFS:
		lc.BG[1].YOffset = data
	case addresses.BG2HOFS:
		lc.BG[2].XOffset = data
	case addresses.BG2VOFS:
		lc.BG[2].YOffset = data
	case addresses.BG3HOFS:
		lc.BG[3].XOffset = data
	case addresses.BG3VOFS:
		lc.BG[3].YOffset = data
	case addresses.BG2PA:
		lc.BG[2].PA = data
	case addresses.BG2PB:
		lc.BG[2].PB = data
	case addresses.BG2PC:
		lc.BG[2].PC = data
	case addresses.BG2PD:
		lc.BG[2].PD = data
	case addresses.BG2XL:
		lc.BG[2].AffineX = lc.BG[2].AffineX&0xffff0000 | uint32(data)
	case addresses.BG2XH:
		lc.BG[2].AffineX = lc.BG[2].AffineX&0x0000ffff | uint32(data)<<16
	case addresses.BG2YL:
		lc.BG[2].AffineY = lc.BG[2].AffineY&0xffff0000 | uint32(data)
	case addresses.BG2YH:
		lc.BG[2].AffineY = lc.BG[2].AffineY&0x0000ffff | uint32(data)<<16
	case addresses.BG3PA:
		lc.BG[3].PA = data
	case addresses.BG3PB:
		lc.BG[3].PB = data
	case addresses.BG3PC:
		lc.BG[3].PC = data
	case addresses.BG3PD:
		lc.BG[3].PD = data
	case addresses.BG3XL:
		lc.BG[3].AffineX = lc.BG[3].AffineX&0xffff0000 | uint32(data)
	case addresses.BG3XH:
		lc.BG[3].AffineX = lc.BG[3].AffineX&0x0000ffff | uint32(data)<<16
	case addresses.BG3YL:
		lc.BG[3].AffineY = lc.BG[3].AffineY&0xffff0000 | uint32(data)
	case addresses.BG3YH:
		lc.BG[3].AffineY = lc.BG[3].AffineY&0x0000ffff | uint32(data)<<16
	case addresses.WIN0H:
		lc.Win0H = data
	case addresses.WIN1H:
		lc.Win1H = data
	case addresses.WIN0V:
		lc.Win0V = data
	case addresses.WIN1V:
		lc.Win1V = data
	case addresses.WININ:
		lc.WinIn = data & 0x3f3f
	case addresses.WINOUT:
		lc.WinOut = data & 0x3f3f
	case addresses.MOSAIC:
		lc.Mos = data
	case addresses.BLDCNT:
		lc.BldCnt = data & 0x3fff
	case addresses.BLDALPHA:
		lc.BldAlpha = data & 0x1f1f
	case addresses.BLDY:
		lc.BldY = data
	}
}

// in the tile video modes the boundary between background and object
// character data sits at 0x10000. in the bitmap modes the background
// claims an extra 16k
func (lc *LCD) objRegionStart() uint32 {
	if lc.Control&0x0007 >= 3 {
		return 0x14000
	}
	return 0x10000
}

// ReadVRAM8 reads a byte of video RAM. The offset must have been folded
// into the 96k of real VRAM by the caller.
func (lc *LCD) ReadVRAM8(offset uint32) uint8 {
	return lc.VRAM[offset]
}

// ReadVRAM16 reads a halfword of video RAM.
func (lc *LCD) ReadVRAM16(offset uint32) uint16 {
	return binary.LittleEndian.Uint16(lc.VRAM[offset:])
}

// WriteVRAM8 writes a byte of video RAM. Byte writes to the background
// region are duplicated to both halves of the addressed halfword and byte
// writes to the object region are ignored entirely.
func (lc *LCD) WriteVRAM8(offset uint32, data uint8) {
	if offset >= lc.objRegionStart() {
		return
	}
	offset &^= 0x01
	lc.VRAM[offset] = data
	lc.VRAM[offset+1] = data
}

// WriteVRAM16 writes a halfword of video RAM.
func (lc *LCD) WriteVRAM16(offset uint32, data uint16) {
	binary.LittleEndian.PutUint16(lc.VRAM[offset:], data)
}

// ReadPalette16 reads a halfword of palette RAM.
func (lc *LCD) ReadPalette16(offset uint32) uint16 {
	return lc.Palette[offset>>1&0x1ff]
}

// ReadPalette8 reads a byte of palette RAM.
func (lc *LCD) ReadPalette8(offset uint32) uint8 {
	v := lc.ReadPalette16(offset)
	if offset&0x01 == 0x01 {
		return uint8(v >> 8)
	}
	return uint8(v)
}

// WritePalette16 writes a halfword of palette RAM.
func (lc *LCD) WritePalette16(offset uint32, data uint16) {
	lc.Palette[offset>>1&0x1ff] = data
}

// WritePalette8 writes a byte of palette RAM. As with VRAM, the byte is
// duplicated to both halves of the addressed halfword.
func (lc *LCD) WritePalette8(offset uint32, data uint8) {
	lc.Palette[offset>>1&0x1ff] = uint16(data)<<8 | uint16(data)
}

// ReadOAM16 reads a halfword of object attribute memory.
func (lc *LCD) ReadOAM16(offset uint32) uint16 {
	return binary.LittleEndian.Uint16(lc.OAM[offset&0x3fe:])
}

// ReadOAM8 reads a byte of object attribute memory.
func (lc *LCD) ReadOAM8(offset uint32) uint8 {
	return lc.OAM[offset&0x3ff]
}

// WriteOAM16 writes a halfword of object attribute memory. Byte writes to
// OAM are ignored by the hardware and there is no WriteOAM8.
func (lc *LCD) WriteOAM16(offset uint32, data uint16) {
	binary.LittleEndian.PutUint16(lc.OAM[offset&0x3fe:], data)
}

// WriteState writes the current state of the LCD to the io.Writer. The
// framebuffers are not included; they are repopulated as emulation
// resumes.
func (lc *LCD) WriteState(w io.Writer) error {
	for _, f := range lc.stateFields() {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadState restores a state previously created by WriteState.
func (lc *LCD) ReadState(r io.Reader) error {
	for _, f := range lc.stateFields() {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func (lc *LCD) stateFields() []interface{} {
	return []interface{}{
		&lc.Dot, &lc.VCount,
		&lc.Control, &lc.Status,
		&lc.BG,
		&lc.Win0H, &lc.Win1H, &lc.Win0V, &lc.Win1V,
		&lc.WinIn, &lc.WinOut,
		&lc.Mos, &lc.BldCnt, &lc.BldAlpha, &lc.BldY,
		&lc.Palette, &lc.VRAM, &lc.OAM,
	}
}
