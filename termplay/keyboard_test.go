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

import (
	"testing"

	"github.com/gopheradvance/gopheradvance/test"
)

func TestKeyMapping(t *testing.T) {
	var ks keyState

	test.Equate(t, ks.press('w'), true)
	test.Equate(t, ks.press('z'), true)
	test.Equate(t, ks.press('\r'), true)

	inp := ks.input()
	test.Equate(t, inp.Up, true)
	test.Equate(t, inp.B, true)
	test.Equate(t, inp.Start, true)
	test.Equate(t, inp.Down, false)
	test.Equate(t, inp.A, false)
}

func TestKeyHold(t *testing.T) {
	var ks keyState

	ks.press('d')

	// the button is held for exactly holdFrames frames
	for i := 0; i < holdFrames; i++ {
		test.Equate(t, ks.input().Right, true)
	}
	test.Equate(t, ks.input().Right, false)

	// a repeated press restarts the countdown
	ks.press('d')
	ks.input()
	ks.press('d')
	for i := 0; i < holdFrames; i++ {
		test.Equate(t, ks.input().Right, true)
	}
	test.Equate(t, ks.input().Right, false)
}

func TestQuitKeys(t *testing.T) {
	var ks keyState

	test.Equate(t, ks.press(0x1b), false)
	test.Equate(t, ks.press(0x03), false)

	// unmapped bytes are ignored but do not quit
	test.Equate(t, ks.press('p'), true)
}
