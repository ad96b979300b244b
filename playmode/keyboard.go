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

package playmode

import (
	"os"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/gui"
	"github.com/gopheradvance/gopheradvance/logger"
	"github.com/gopheradvance/gopheradvance/savestate"
)

// the keyboard to console button mapping:
//
//	arrow keys     d-pad
//	Z / X          B / A
//	A / S          L / R
//	Return         Start
//	Right Shift    Select
//
// F1 saves the machine state, F2 restores it. Escape quits.
func (pl *playmode) keyboardHandler(ev gui.EventKeyboard) error {
	switch ev.Key {
	case "Up":
		pl.input.Up = ev.Down
	case "Down":
		pl.input.Down = ev.Down
	case "Left":
		pl.input.Left = ev.Down
	case "Right":
		pl.input.Right = ev.Down
	case "Z":
		pl.input.B = ev.Down
	case "X":
		pl.input.A = ev.Down
	case "A":
		pl.input.L = ev.Down
	case "S":
		pl.input.R = ev.Down
	case "Return":
		pl.input.Start = ev.Down
	case "Right Shift":
		pl.input.Select = ev.Down

	case "F1":
		if ev.Down {
			return pl.saveState()
		}
		return nil
	case "F2":
		if ev.Down {
			return pl.loadState()
		}
		return nil

	case "Escape":
		if ev.Down {
			return curated.Errorf(quitEvent)
		}
		return nil

	default:
		return nil
	}

	pl.gba.SetInput(pl.input)

	return nil
}

func (pl *playmode) saveState() error {
	blob, err := savestate.Save(pl.gba)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	err = os.WriteFile(pl.stateFile, blob, 0644)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	logger.Logf(logger.Allow, "playmode", "state saved to %s", pl.stateFile)

	return nil
}

func (pl *playmode) loadState() error {
	blob, err := os.ReadFile(pl.stateFile)
	if err != nil {
		// a missing state file is not an error worth stopping the
		// emulation for
		logger.Logf(logger.Allow, "playmode", "no state to restore: %v", err)
		return nil
	}

	err = savestate.Load(pl.gba, blob)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	logger.Logf(logger.Allow, "playmode", "state restored from %s", pl.stateFile)

	return nil
}
