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

package termplay

import "github.com/gopheradvance/gopheradvance/hardware/keypad"

// a terminal produces no key release events, so a keypress holds the
// corresponding button down for this many frames.
const holdFrames = 10

// indices into the hold array.
const (
	keyA = iota
	keyB
	keySelect
	keyStart
	keyRight
	keyLeft
	keyUp
	keyDown
	keyR
	keyL
	numKeys
)

// keyState tracks how long each console button remains held for.
type keyState struct {
	hold [numKeys]int
}

// press handles a single byte read from the terminal:
//
//	w / a / s / d    d-pad
//	z / x            B / A
//	q / e            L / R
//	return           Start
//	tab              Select
//
// Returns false if the byte is a quit request (escape or ctrl-c).
func (ks *keyState) press(b byte) bool {
	switch b {
	case 'w':
		ks.hold[keyUp] = holdFrames
	case 's':
		ks.hold[keyDown] = holdFrames
	case 'a':
		ks.hold[keyLeft] = holdFrames
	case 'd':
		ks.hold[keyRight] = holdFrames
	case 'x':
		ks.hold[keyA] = holdFrames
	case 'z':
		ks.hold[keyB] = holdFrames
	case 'q':
		ks.hold[keyL] = holdFrames
	case 'e':
		ks.hold[keyR] = holdFrames
	case '\r', '\n':
		ks.hold[keyStart] = holdFrames
	case '\t':
		ks.hold[keySelect] = holdFrames

	case 0x1b, 0x03: // escape, ctrl-c
		return false
	}

	return true
}

// input returns the current button state and ages every held button by one
// frame. Call once per frame.
func (ks *keyState) input() keypad.Input {
	inp := keypad.Input{
		A:      ks.hold[keyA] > 0,
		B:      ks.hold[keyB] > 0,
		Select: ks.hold[keySelect] > 0,
		Start:  ks.hold[keyStart] > 0,
		Right:  ks.hold[keyRight] > 0,
		Left:   ks.hold[keyLeft] > 0,
		Up:     ks.hold[keyUp] > 0,
		Down:   ks.hold[keyDown] > 0,
		R:      ks.hold[keyR] > 0,
		L:      ks.hold[keyL] > 0,
	}

	for i := 0; i < numKeys; i++ {
		if ks.hold[i] > 0 {
			ks.hold[i]--
		}
	}

	return inp
}
