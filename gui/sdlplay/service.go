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

package sdlplay

import (
	"github.com/gopheradvance/gopheradvance/gui"

	"github.com/veandco/go-sdl2/sdl"
)

// Service implements the gui.GUI interface.
//
// MUST be called from the main goroutine.
func (pla *SdlPlay) Service() {
	// do not check for events if no event channel has been set
	if pla.events == nil {
		return
	}

	// loop until there are no more events to retrieve. servicing just one
	// event per call is not enough, queued events would take one frame or
	// longer to resolve
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			pla.events <- gui.EventQuit{}

		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}

			mod := gui.KeyModNone
			if sdl.GetModState()&(sdl.KMOD_LALT|sdl.KMOD_RALT) != 0 {
				mod = gui.KeyModAlt
			} else if sdl.GetModState()&(sdl.KMOD_LSHIFT|sdl.KMOD_RSHIFT) != 0 {
				mod = gui.KeyModShift
			} else if sdl.GetModState()&(sdl.KMOD_LCTRL|sdl.KMOD_RCTRL) != 0 {
				mod = gui.KeyModCtrl
			}

			pla.events <- gui.EventKeyboard{
				Key:  sdl.GetKeyName(ev.Keysym.Sym),
				Mod:  mod,
				Down: ev.Type == sdl.KEYDOWN,
			}
		}
	}
}
