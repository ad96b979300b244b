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

// Package sdlplay is a simple SDL window for the playmode of the emulator.
// It renders the console's display and plays its audio but offers no
// debugging facilities.
package sdlplay

import (
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/gui"
	"github.com/gopheradvance/gopheradvance/gui/sdlaudio"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/performance/limiter"
	"github.com/gopheradvance/gopheradvance/version"

	"github.com/veandco/go-sdl2/sdl"
)

// Sentinal error returned by all functions in the sdlplay package.
const SDLPlay = "sdlplay: %v"

// byte per pixel in the texture (RGBA)
const pixelDepth = 4

// SdlPlay is a simple SDL implementation of the screen.PixelRenderer
// interface.
type SdlPlay struct {
	// user input events are forwarded over this channel. set with the
	// ReqSetEventChan feature request
	events chan gui.Event

	// limit rendering to the frame rate of the original hardware
	lmtr   *limiter.FpsLimiter
	fpsCap bool

	// all audio is handled by the sdlaudio package
	aud *sdlaudio.Audio

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	// pixels is the byte array that we copy to the texture on every new
	// frame. the console's native 15bit pixels are converted to RGBA as
	// they arrive
	pixels []byte

	// the amount of scaling applied to each pixel
	scale float32
}

// NewSdlPlay is the preferred method of initialisation for the SdlPlay
// type. The returned SdlPlay instance registers itself as a PixelRenderer
// and AudioMixer with the supplied Screen.
//
// MUST be called from the main goroutine.
func NewSdlPlay(scr *screen.Screen, scale float32) (*SdlPlay, error) {
	pla := &SdlPlay{
		pixels: make([]byte, screen.ClksVisible*screen.ScanlinesVisible*pixelDepth),
	}

	// preset alpha channel. we never change the value of this channel
	for i := pixelDepth - 1; i < len(pla.pixels); i += pixelDepth {
		pla.pixels[i] = 255
	}

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO)
	if err != nil {
		return nil, curated.Errorf(SDLPlay, err)
	}

	// window size is set in the setScaling() function below
	pla.window, err = sdl.CreateWindow(version.ApplicationName,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		0, 0,
		uint32(sdl.WINDOW_HIDDEN))
	if err != nil {
		return nil, curated.Errorf(SDLPlay, err)
	}

	pla.renderer, err = sdl.CreateRenderer(pla.window, -1, uint32(sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC))
	if err != nil {
		return nil, curated.Errorf(SDLPlay, err)
	}

	// texture is the same size as the console's display. scaling is
	// applied by the renderer in order to fit it in the window
	pla.texture, err = pla.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING),
		screen.ClksVisible, screen.ScanlinesVisible)
	if err != nil {
		return nil, curated.Errorf(SDLPlay, err)
	}

	pla.aud, err = sdlaudio.NewAudio()
	if err != nil {
		return nil, curated.Errorf(SDLPlay, err)
	}

	pla.lmtr = limiter.NewFPSLimiter(screen.FramesPerSecond)
	pla.fpsCap = true

	err = pla.setScaling(scale)
	if err != nil {
		return nil, curated.Errorf(SDLPlay, err)
	}

	scr.AddPixelRenderer(pla)
	scr.AddAudioMixer(pla.aud)

	// mouse motion events fill up the event queue pretty quickly and we
	// have no use for them
	sdl.EventState(sdl.MOUSEMOTION, sdl.IGNORE)

	// note that we've elected not to show the window on startup. the
	// window is instead opened on a ReqSetVisibility request

	return pla, nil
}

// use a scale of -1 to reapply the existing scale value.
func (pla *SdlPlay) setScaling(scale float32) error {
	if scale > 0 {
		pla.scale = scale
	}

	w := int32(float32(screen.ClksVisible) * pla.scale)
	h := int32(float32(screen.ScanlinesVisible) * pla.scale)
	pla.window.SetSize(w, h)

	return pla.renderer.SetScale(pla.scale, pla.scale)
}

// NewFrame implements the screen.PixelRenderer interface.
func (pla *SdlPlay) NewFrame(frame *screen.Framebuffer, frameNum int) error {
	i := 0
	for _, col := range frame {
		r, g, b := screen.RGB(col)
		pla.pixels[i] = r
		pla.pixels[i+1] = g
		pla.pixels[i+2] = b
		i += pixelDepth
	}

	err := pla.texture.Update(nil, pla.pixels, screen.ClksVisible*pixelDepth)
	if err != nil {
		return curated.Errorf(SDLPlay, err)
	}

	err = pla.renderer.Copy(pla.texture, nil, nil)
	if err != nil {
		return curated.Errorf(SDLPlay, err)
	}

	pla.renderer.Present()

	if pla.fpsCap {
		pla.lmtr.Wait()
	}

	return nil
}

// EndRendering implements the screen.PixelRenderer interface.
func (pla *SdlPlay) EndRendering() error {
	pla.texture.Destroy()
	pla.renderer.Destroy()
	pla.window.Destroy()
	sdl.Quit()
	return nil
}

func (pla *SdlPlay) showWindow(show bool) {
	if show {
		pla.window.Show()
	} else {
		pla.window.Hide()
	}
}

// IsVisible returns true if the window is currently shown.
func (pla *SdlPlay) IsVisible() bool {
	return pla.window.GetFlags()&sdl.WINDOW_SHOWN == sdl.WINDOW_SHOWN
}
