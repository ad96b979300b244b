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

package lcd_test

import (
	"bytes"
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/lcd"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/test"
)

func newLCD(t *testing.T) *lcd.LCD {
	t.Helper()
	return lcd.NewLCD(screen.NewScreen())
}

// step the LCD through one complete frame
func runFrame(t *testing.T, lc *lcd.LCD) {
	t.Helper()
	for i := 0; i < screen.ClksScanline*screen.ScanlinesTotal; i++ {
		if _, err := lc.Step(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTiming(t *testing.T) {
	lc := newLCD(t)

	var vblanks int
	var hblanks int
	for i := 0; i < screen.ClksScanline*screen.ScanlinesTotal; i++ {
		res, err := lc.Step()
		if err != nil {
			t.Fatal(err)
		}
		if res.VBlank {
			vblanks++

			// the vblank flag should read back through DISPSTAT
			v, ok := lc.ReadRegister(addresses.DISPSTAT)
			test.Equate(t, ok, true)
			test.Equate(t, v&0x0001, 1)
		}
		if res.HBlank {
			hblanks++
		}
	}

	test.Equate(t, vblanks, 1)
	test.Equate(t, hblanks, int(screen.ScanlinesVisible))

	// back where we started
	v, _ := lc.ReadRegister(addresses.VCOUNT)
	test.Equate(t, v, 0)
}

func TestVCountMatch(t *testing.T) {
	lc := newLCD(t)
	lc.WriteRegister(addresses.DISPSTAT, 3<<8)

	var matched bool
	for i := 0; i < screen.ClksScanline*3; i++ {
		res, err := lc.Step()
		if err != nil {
			t.Fatal(err)
		}
		matched = matched || res.VCountMatch
	}
	test.Equate(t, matched, true)

	v, _ := lc.ReadRegister(addresses.DISPSTAT)
	test.Equate(t, v&0x0004, 0x0004)

	// the flag clears on the next scanline
	for i := 0; i < screen.ClksScanline; i++ {
		_, _ = lc.Step()
	}
	v, _ = lc.ReadRegister(addresses.DISPSTAT)
	test.Equate(t, v&0x0004, 0)
}

func TestBitmapMode(t *testing.T) {
	lc := newLCD(t)

	// video mode 3 with background 2 enabled
	lc.WriteRegister(addresses.DISPCNT, 0x0403)

	// one red pixel at 10,20
	lc.WriteVRAM16(uint32(20*screen.ClksVisible+10)*2, 0x001f)

	runFrame(t, lc)

	test.Equate(t, lc.Frame().Pixel(10, 20), 0x001f)
	test.Equate(t, lc.Frame().Pixel(11, 20), 0)
}

func TestTextBackground(t *testing.T) {
	lc := newLCD(t)

	// video mode 0 with background 0 enabled. background 0 places its map
	// in the ninth map block, clear of the tile data
	lc.WriteRegister(addresses.DISPCNT, 0x0100)
	lc.WriteRegister(addresses.BG0CNT, 0x0800)

	// map entry 0 selects tile 1
	lc.WriteVRAM16(0x4000, 0x0001)

	// tile 1 is solid colour index 1
	for i := uint32(0); i < 32; i += 2 {
		lc.WriteVRAM16(0x20+i, 0x1111)
	}

	// colour index 1 is green
	lc.WritePalette16(2, 0x03e0)

	runFrame(t, lc)

	test.Equate(t, lc.Frame().Pixel(0, 0), 0x03e0)
	test.Equate(t, lc.Frame().Pixel(7, 7), 0x03e0)

	// the neighbouring map entry selects the (empty) tile 0 so the
	// backdrop shows through
	test.Equate(t, lc.Frame().Pixel(8, 0), 0)
}

func TestTextTileOverflow(t *testing.T) {
	lc := newLCD(t)

	// video mode 0 with background 0 enabled. the highest character base
	// with an 8bit depth and the highest tile number addresses past the
	// end of the background region of VRAM
	lc.WriteRegister(addresses.DISPCNT, 0x0100)
	lc.WriteRegister(addresses.BG0CNT, 0x008c)

	// map entry 0 selects tile 0x3ff
	lc.WriteVRAM16(0, 0x03ff)

	runFrame(t, lc)

	// nothing is fetched from the object region so the backdrop shows
	test.Equate(t, lc.Frame().Pixel(0, 0), 0)
}

func TestSprite(t *testing.T) {
	lc := newLCD(t)

	// video mode 0 with the object layer enabled
	lc.WriteRegister(addresses.DISPCNT, 0x1000)

	// an 8x8 sprite at 0,0 using tile 0
	lc.WriteOAM16(0, 0x0000)
	lc.WriteOAM16(2, 0x0000)
	lc.WriteOAM16(4, 0x0000)

	// object tile 0 is solid colour index 1
	for i := uint32(0); i < 32; i += 2 {
		lc.WriteVRAM16(0x10000+i, 0x1111)
	}

	// colour index 1 of the object palette is blue
	lc.WritePalette16(0x200+2, 0x7c00)

	runFrame(t, lc)

	test.Equate(t, lc.Frame().Pixel(0, 0), 0x7c00)
	test.Equate(t, lc.Frame().Pixel(7, 7), 0x7c00)
	test.Equate(t, lc.Frame().Pixel(8, 8), 0)
}

func TestSpriteMosaic(t *testing.T) {
	lc := newLCD(t)

	// video mode 0 with the object layer enabled. object mosaic is four
	// dots wide
	lc.WriteRegister(addresses.DISPCNT, 0x1000)
	lc.WriteRegister(addresses.MOSAIC, 0x0300)

	// an 8x8 sprite at 0,0 with the mosaic flag set
	lc.WriteOAM16(0, 0x1000)
	lc.WriteOAM16(2, 0x0000)
	lc.WriteOAM16(4, 0x0000)

	// the first texel of the tile's top row is colour index 1, the rest
	// of the row colour index 2
	lc.WriteVRAM16(0x10000, 0x2221)
	lc.WriteVRAM16(0x10002, 0x2222)

	lc.WritePalette16(0x200+2, 0x001f)
	lc.WritePalette16(0x200+4, 0x03e0)

	runFrame(t, lc)

	// the first texel is stretched across the width of the mosaic block
	test.Equate(t, lc.Frame().Pixel(0, 0), 0x001f)
	test.Equate(t, lc.Frame().Pixel(3, 0), 0x001f)
	test.Equate(t, lc.Frame().Pixel(4, 0), 0x03e0)
}

func TestWindow(t *testing.T) {
	lc := newLCD(t)

	// video mode 3 with background 2 and window 0 enabled
	lc.WriteRegister(addresses.DISPCNT, 0x2403)

	// window 0 covers the left 50 dots of every visible scanline. the
	// background is enabled inside the window and disabled outside
	lc.WriteRegister(addresses.WIN0H, 0x0032)
	lc.WriteRegister(addresses.WIN0V, 0x00a0)
	lc.WriteRegister(addresses.WININ, 0x0004)
	lc.WriteRegister(addresses.WINOUT, 0x0000)

	// fill the first scanline of the bitmap
	for x := uint32(0); x < screen.ClksVisible; x++ {
		lc.WriteVRAM16(x*2, 0x001f)
	}

	runFrame(t, lc)

	test.Equate(t, lc.Frame().Pixel(0, 0), 0x001f)
	test.Equate(t, lc.Frame().Pixel(49, 0), 0x001f)
	test.Equate(t, lc.Frame().Pixel(50, 0), 0)
}

func TestBrightness(t *testing.T) {
	lc := newLCD(t)

	// no layers enabled so only the backdrop is displayed
	lc.WriteRegister(addresses.DISPCNT, 0x0003)

	// brightness increase with the backdrop as first target and the
	// coefficient at maximum. the backdrop washes out to white
	lc.WriteRegister(addresses.BLDCNT, 0x00a0)
	lc.WriteRegister(addresses.BLDY, 16)

	runFrame(t, lc)

	test.Equate(t, lc.Frame().Pixel(0, 0), 0x7fff)
}

func TestAlphaBlend(t *testing.T) {
	lc := newLCD(t)

	// video mode 3 with background 2 enabled. background 2 is the first
	// blend target and the backdrop the second, mixed half and half
	lc.WriteRegister(addresses.DISPCNT, 0x0403)
	lc.WriteRegister(addresses.BLDCNT, 0x2044|1<<6)
	lc.WriteRegister(addresses.BLDALPHA, 0x0808)

	// full intensity red over a full intensity blue backdrop
	lc.WriteVRAM16(0, 0x001f)
	lc.WritePalette16(0, 0x7c00)

	runFrame(t, lc)

	test.Equate(t, lc.Frame().Pixel(0, 0), 0x3c0f)
}

func TestVRAMByteWrites(t *testing.T) {
	lc := newLCD(t)

	// byte writes to the background region hit both halves of the halfword
	lc.WriteVRAM8(0x0101, 0xab)
	test.Equate(t, lc.ReadVRAM16(0x0100), 0xabab)

	// byte writes to the object region are dropped
	lc.WriteVRAM8(0x10000, 0xcd)
	test.Equate(t, lc.ReadVRAM16(0x10000), 0)

	// in the bitmap modes the boundary moves up
	lc.WriteRegister(addresses.DISPCNT, 0x0003)
	lc.WriteVRAM8(0x10000, 0xcd)
	test.Equate(t, lc.ReadVRAM16(0x10000), 0xcdcd)
	lc.WriteVRAM8(0x14000, 0xef)
	test.Equate(t, lc.ReadVRAM16(0x14000), 0)
}

func TestPaletteByteWrites(t *testing.T) {
	lc := newLCD(t)
	lc.WritePalette8(5, 0x12)
	test.Equate(t, lc.ReadPalette16(4), 0x1212)
	test.Equate(t, lc.ReadPalette8(4), 0x12)
	test.Equate(t, lc.ReadPalette8(5), 0x12)
}

func TestStateRoundTrip(t *testing.T) {
	lc := newLCD(t)
	lc.WriteRegister(addresses.DISPCNT, 0x1403)
	lc.WriteRegister(addresses.BG2CNT, 0x0f01)
	lc.WriteVRAM16(0x0100, 0x1234)
	lc.WriteOAM16(0x10, 0x5678)
	lc.WritePalette16(0x20, 0x7fff)
	for i := 0; i < 1000; i++ {
		_, _ = lc.Step()
	}

	b := &bytes.Buffer{}
	if err := lc.WriteState(b); err != nil {
		t.Fatal(err)
	}

	n := newLCD(t)
	if err := n.ReadState(b); err != nil {
		t.Fatal(err)
	}

	v, _ := lc.ReadRegister(addresses.DISPCNT)
	w, _ := n.ReadRegister(addresses.DISPCNT)
	test.Equate(t, w, v)

	v, _ = lc.ReadRegister(addresses.VCOUNT)
	w, _ = n.ReadRegister(addresses.VCOUNT)
	test.Equate(t, w, v)

	test.Equate(t, n.ReadVRAM16(0x0100), 0x1234)
	test.Equate(t, n.ReadOAM16(0x10), 0x5678)
	test.Equate(t, n.ReadPalette16(0x20), 0x7fff)
}
