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

// Package hardware is the base package for the GBA emulation. It and its
// sub-packages contain everything required for a headless emulation.
//
// The GBA type is the root of the emulation and contains external references
// to all the console's sub-systems. From here, the emulation can either be
// stepped an instruction at a time, run a frame at a time, or set running
// continuously with an optional callback to check for continuation.
//
// All stepping happens on the goroutine of the caller; renderers and mixers
// attached to the screen only ever see completed frames.
package hardware
