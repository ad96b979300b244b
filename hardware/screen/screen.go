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

import (
	"fmt"

	"github.com/gopheradvance/gopheradvance/curated"
)

// Screen is the nexus between the emulated hardware and whatever is
// displaying or recording the emulation's output.
type Screen struct {
	renderers []PixelRenderer
	triggers  []FrameTrigger
	mixers    []AudioMixer

	// number of frames completed since the last Reset()
	frameNum int
}

// NewScreen is the preferred method of initialisation for the Screen type.
func NewScreen() *Screen {
	return &Screen{
		renderers: make([]PixelRenderer, 0),
		triggers:  make([]FrameTrigger, 0),
		mixers:    make([]AudioMixer, 0),
	}
}

func (scr *Screen) String() string {
	return fmt.Sprintf("FR=%d", scr.frameNum)
}

// AddPixelRenderer registers an (additional) implementation of PixelRenderer.
func (scr *Screen) AddPixelRenderer(r PixelRenderer) {
	scr.renderers = append(scr.renderers, r)
}

// AddFrameTrigger registers an (additional) implementation of FrameTrigger.
func (scr *Screen) AddFrameTrigger(t FrameTrigger) {
	scr.triggers = append(scr.triggers, t)
}

// AddAudioMixer registers an (additional) implementation of AudioMixer.
func (scr *Screen) AddAudioMixer(m AudioMixer) {
	scr.mixers = append(scr.mixers, m)
}

// Reset the frame count to an initial state. Registered renderers and mixers
// survive a reset.
func (scr *Screen) Reset() {
	scr.frameNum = 0
}

// FrameNum returns the number of frames completed since the last Reset().
func (scr *Screen) FrameNum() int {
	return scr.frameNum
}

// NewFrame is called by the emulation at the start of the vertical blanking
// period. The completed frame is forwarded to all registered PixelRenderers.
func (scr *Screen) NewFrame(frame *Framebuffer) error {
	scr.frameNum++

	for _, r := range scr.renderers {
		err := r.NewFrame(frame, scr.frameNum)
		if err != nil {
			return curated.Errorf("screen: %v", err)
		}
	}

	for _, t := range scr.triggers {
		err := t.NewFrame(scr.frameNum)
		if err != nil {
			return curated.Errorf("screen: %v", err)
		}
	}

	return nil
}

// SetAudio is called by the emulation at the start of the vertical blanking
// period with the samples generated during the frame. The samples are
// forwarded to all registered AudioMixers.
func (scr *Screen) SetAudio(samples []int16) error {
	for _, m := range scr.mixers {
		err := m.SetAudio(samples)
		if err != nil {
			return curated.Errorf("screen: %v", err)
		}
	}
	return nil
}

// End should be called just before the program ends. Calls EndRendering()
// and EndMixing() on all registered renderers and mixers.
func (scr *Screen) End() error {
	var rerr error

	// ending renderers and mixers even if an earlier one returns an error
	for _, r := range scr.renderers {
		err := r.EndRendering()
		if err != nil {
			rerr = err
		}
	}
	for _, m := range scr.mixers {
		err := m.EndMixing()
		if err != nil {
			rerr = err
		}
	}

	if rerr != nil {
		return curated.Errorf("screen: %v", rerr)
	}
	return nil
}

// Snapshot implements the hardware state snapshotting convention. Only the
// frame count is part of the machine state; registered renderers and mixers
// are host-side and do not travel with a snapshot.
func (scr *Screen) Snapshot() int {
	return scr.frameNum
}

// Plumb state from a previous Snapshot().
func (scr *Screen) Plumb(frameNum int) {
	scr.frameNum = frameNum
}
