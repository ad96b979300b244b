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

// Package playmode is the "normal" mode of operation for the emulator: a
// window, sound and keypad input, and no debugging facilities beyond
// savestates.
package playmode

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/gui"
	"github.com/gopheradvance/gopheradvance/gui/sdlplay"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/keypad"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/wavwriter"
)

// Sentinal error returned by all functions in the playmode package.
const PlayError = "playmode: %v"

// sentinal error used internally to indicate a clean quit request.
const quitEvent = "playmode: quit event"

type playmode struct {
	gba *hardware.GBA
	pla *sdlplay.SdlPlay

	// user input events from the gui
	events chan gui.Event

	// ctrl-c from the terminal
	intChan chan os.Signal

	// the current state of the console's buttons. updated by the keyboard
	// handler and pushed to the console between frames
	input keypad.Input

	// where savestates for the current cartridge are kept
	stateFile string
}

// Play sets the emulation running. If wav is not empty the session's audio
// is also written to a WAV file of that name.
func Play(cartload cartridgeloader.Loader, bios []byte, scale float32, fpsCap bool, wav string) error {
	err := cartload.Load()
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	scr := screen.NewScreen()

	if wav != "" {
		aw, err := wavwriter.New(wav)
		if err != nil {
			return curated.Errorf(PlayError, err)
		}
		scr.AddAudioMixer(aw)
	}

	pl := &playmode{
		gba:       hardware.NewGBA(scr, bios),
		events:    make(chan gui.Event, 32),
		intChan:   make(chan os.Signal, 1),
		stateFile: fmt.Sprintf("%s.state", cartload.Filename),
	}

	err = pl.gba.AttachCartridge(cartload.Data)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	pl.pla, err = sdlplay.NewSdlPlay(scr, scale)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}
	defer scr.End()

	err = pl.pla.SetFeature(gui.ReqSetEventChan, pl.events)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	err = pl.pla.SetFeature(gui.ReqFPSCap, fpsCap)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	err = pl.pla.SetFeature(gui.ReqSetVisibility, true)
	if err != nil {
		return curated.Errorf(PlayError, err)
	}

	// make sure deferred functions run even when ctrl-c is pressed
	signal.Notify(pl.intChan, os.Interrupt)
	defer signal.Stop(pl.intChan)

	err = pl.gba.Run(pl.eventHandler)
	if err != nil {
		if curated.Is(err, quitEvent) {
			return nil
		}
		return curated.Errorf(PlayError, err)
	}

	return nil
}

// eventHandler is called between frames by the running console.
func (pl *playmode) eventHandler() (bool, error) {
	pl.pla.Service()

	select {
	case <-pl.intChan:
		return false, nil
	default:
	}

	// drain the gui event queue entirely. more than one event can arrive
	// in one frame
	for {
		select {
		case ev := <-pl.events:
			switch ev := ev.(type) {
			case gui.EventQuit:
				return false, nil
			case gui.EventKeyboard:
				err := pl.keyboardHandler(ev)
				if err != nil {
					return false, err
				}
			}
		default:
			return true, nil
		}
	}
}
