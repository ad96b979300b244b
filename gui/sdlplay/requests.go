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
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/gui"
)

// SetFeature implements the gui.GUI interface.
//
// MUST be called from the same goroutine as Service().
func (pla *SdlPlay) SetFeature(request gui.FeatureReq, args ...gui.FeatureReqData) (rerr error) {
	// lazy (but clear) handling of type assertion errors
	defer func() {
		if r := recover(); r != nil {
			rerr = curated.Errorf(SDLPlay, r)
		}
	}()

	switch request {
	case gui.ReqSetEventChan:
		pla.events = args[0].(chan gui.Event)

	case gui.ReqSetVisibility:
		pla.showWindow(args[0].(bool))

	case gui.ReqSetScale:
		return pla.setScaling(args[0].(float32))

	case gui.ReqFPSCap:
		pla.fpsCap = args[0].(bool)
		pla.aud.Mute(!pla.fpsCap)

	default:
		return curated.Errorf(gui.UnsupportedGuiFeature, request)
	}

	return nil
}

// GetFeature implements the gui.GUI interface.
func (pla *SdlPlay) GetFeature(request gui.FeatureReq) (gui.FeatureReqData, error) {
	switch request {
	case gui.ReqSetVisibility:
		return pla.IsVisible(), nil

	case gui.ReqSetScale:
		return pla.scale, nil

	case gui.ReqFPSCap:
		return pla.fpsCap, nil
	}

	return nil, curated.Errorf(gui.UnsupportedGuiFeature, request)
}
