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

// PixelRenderer implementations display, or otherwise work with, visual
// information from the console. For example digest.Video.
//
// PixelRenderer implementations often find it convenient to maintain a
// reference to the parent Screen implementation and maybe even embed it. ie.
//
//	type ExampleScreen struct {
//		*screen.Screen
//		...
//	}
type PixelRenderer interface {
	// NewFrame is called at the start of the vertical blanking period with
	// the frame that has just been completed. The framebuffer will not be
	// written to again by the emulation; the renderer is free to keep the
	// reference until the next call to NewFrame().
	NewFrame(frame *Framebuffer, frameNum int) error

	// some renderers may need to conclude and/or dispose of resources gently.
	// for simplicity, the PixelRenderer should be considered unusable after
	// EndRendering() has been called
	EndRendering() error
}

// FrameTrigger implementations listen for NewFrame events but have no
// interest in the frame's pixels.
type FrameTrigger interface {
	NewFrame(frameNum int) error
}

// AudioMixer implementations work with sound; most probably playing it. An
// example of an AudioMixer that does not play sound but otherwise works with
// it is the digest.Audio type.
//
// Samples are interleaved stereo pairs (left then right), signed 16bit, at
// SampleFreq samples per second. One frame's worth of samples arrives with
// each call to SetAudio().
type AudioMixer interface {
	SetAudio(samples []int16) error

	// some mixers may need to conclude and/or dispose of resources gently.
	// for simplicity, the AudioMixer should be considered unusable after
	// EndMixing() has been called
	EndMixing() error
}
