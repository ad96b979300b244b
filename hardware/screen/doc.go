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

// Package screen is the boundary between the emulated console and the host
// machine. The Screen type itself does not present anything, either visually
// or sonically. Instead, PixelRenderer and AudioMixer implementations are
// added to the Screen and those implementations receive the completed frame
// and the frame's audio samples whenever the LCD sub-system signals the start
// of the vertical blanking period.
//
// Unlike a real television there is no signal to decode. The console's LCD
// has a fixed geometry and a fixed frame rate so the package deals in whole
// framebuffers. A framebuffer handed to a PixelRenderer is not written to
// again by the emulation; the renderer may keep it until the next NewFrame().
package screen
