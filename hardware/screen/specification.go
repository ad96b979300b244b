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

package screen

// The fixed geometry and timing of the console's LCD. Unlike a television
// there is no variation to account for: every frame is the same size and
// takes the same number of clock cycles.
const (
	// visible dots per scanline and visible scanlines per frame
	ClksVisible      = 240
	ScanlinesVisible = 160

	// total dots per scanline and total scanlines per frame, including the
	// horizontal and vertical blanking periods
	ClksScanline   = 308
	ScanlinesTotal = 228

	// the dot clock ticks once every four cycles of the master clock
	ClksPerDot = 4

	// master clock frequency
	CyclesPerSecond = 16777216

	// cycles for one complete frame. equal to
	// ClksScanline * ScanlinesTotal * ClksPerDot
	CyclesPerFrame = 280896
)

// Audio output constants. One stereo sample pair is generated every
// CyclesPerSample cycles of the master clock.
const (
	SampleFreq      = 32768
	CyclesPerSample = CyclesPerSecond / SampleFreq
	SamplesPerFrame = CyclesPerFrame / CyclesPerSample
)

// FramesPerSecond is the refresh rate of the console's LCD. Useful for
// renderers that want to limit the frame rate to the same speed as the
// original hardware.
const FramesPerSecond = float32(CyclesPerSecond) / float32(CyclesPerFrame)

// Framebuffer is one complete frame of video output. Pixels are stored in
// the console's native 15bit BGR format, one entry per dot, in row order.
type Framebuffer [ScanlinesVisible * ClksVisible]uint16

// Pixel returns the native pixel value at the specified coordinates.
func (fb *Framebuffer) Pixel(x, y int) uint16 {
	return fb[y*ClksVisible+x]
}

// SetPixel sets the native pixel value at the specified coordinates.
func (fb *Framebuffer) SetPixel(x, y int, col uint16) {
	fb[y*ClksVisible+x] = col
}

// RGB converts the native pixel value at the specified coordinates to 8bit
// per channel RGB. The native format packs five bits per channel so the
// conversion replicates the top bits into the bottom bits, stretching the
// channel over the full 8bit range.
func (fb *Framebuffer) RGB(x, y int) (red, green, blue uint8) {
	return RGB(fb.Pixel(x, y))
}

// RGB converts a native 15bit BGR pixel value to 8bit per channel RGB.
func RGB(col uint16) (red, green, blue uint8) {
	r := uint8(col & 0x1f)
	g := uint8((col >> 5) & 0x1f)
	b := uint8((col >> 10) & 0x1f)
	red = r<<3 | r>>2
	green = g<<3 | g>>2
	blue = b<<3 | b>>2
	return red, green, blue
}
