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

// Package sdlaudio plays the console's audio output through SDL.
package sdlaudio

import (
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/logger"

	"github.com/veandco/go-sdl2/sdl"
)

// Sentinal error returned by all functions in the sdlaudio package.
const SDLAudio = "sdlaudio: %v"

// the number of sample pairs requested from SDL in one callback period. a
// shorter buffer reduces lag between the audio and video signal but risks
// underflow on a busy host.
const bufferLength = 512

// if the queue grows beyond this many bytes then the emulation is producing
// samples faster than the device is consuming them, most likely because the
// frame limiter is disabled. the queue is cleared rather than allowing the
// lag to accumulate.
const maxQueueLength = screen.SampleFreq

// Audio outputs sound using SDL.
type Audio struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec

	muted bool

	// SetAudio() is called with small sample batches. they are accumulated
	// here and queued with the device once per frame's worth of samples
	queue []byte
}

// NewAudio is the preferred method of initialisation for the Audio type.
//
// The SDL audio subsystem must have been initialised before calling this
// function.
func NewAudio() (*Audio, error) {
	aud := &Audio{
		queue: make([]byte, 0, screen.SamplesPerFrame*4),
	}

	spec := &sdl.AudioSpec{
		Freq:     screen.SampleFreq,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  uint16(bufferLength),
	}

	var err error
	var actualSpec sdl.AudioSpec

	aud.id, err = sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return nil, curated.Errorf(SDLAudio, err)
	}
	aud.spec = actualSpec

	logger.Logf(logger.Allow, "sdlaudio", "frequency: %d samples/sec", actualSpec.Freq)
	logger.Logf(logger.Allow, "sdlaudio", "buffer: %d samples", actualSpec.Samples)

	sdl.PauseAudioDevice(aud.id, false)

	return aud, nil
}

// SetAudio implements the screen.AudioMixer interface.
func (aud *Audio) SetAudio(samples []int16) error {
	if aud.muted {
		return nil
	}

	for _, s := range samples {
		aud.queue = append(aud.queue, uint8(s), uint8(s>>8))
	}

	// the device consumes samples at exactly the rate the emulation
	// produces them so the queue should hover around one frame in length.
	// if it has grown well beyond that then drop the backlog
	if sdl.GetQueuedAudioSize(aud.id) > maxQueueLength {
		sdl.ClearQueuedAudio(aud.id)
	}

	err := sdl.QueueAudio(aud.id, aud.queue)
	if err != nil {
		return curated.Errorf(SDLAudio, err)
	}
	aud.queue = aud.queue[:0]

	return nil
}

// EndMixing implements the screen.AudioMixer interface.
func (aud *Audio) EndMixing() error {
	sdl.CloseAudioDevice(aud.id)
	return nil
}

// Mute silences the audio device. Samples received while muted are
// discarded.
func (aud *Audio) Mute(muted bool) {
	aud.muted = muted
	sdl.ClearQueuedAudio(aud.id)
	aud.queue = aud.queue[:0]
}
