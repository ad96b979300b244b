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

// Package performance contains helper functions relating to performance.
//
// Check() is a quick way of running the emulation flat out for a fixed
// duration of time. It will optionally generate CPU and memory profiling
// information.
//
// CalcFPS() calculates frames-per-second in aggregate along with an
// accuracy value as compared to the console's real frame rate.
package performance

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
)

// sentinel error patterns for the performance package.
const CheckFailure = "performance: %v"

// CalcFPS takes the number of frames and duration (in seconds) and returns
// the frames-per-second and the accuracy of that value as a percentage of
// the console's real frame rate.
func CalcFPS(numFrames int, duration float64) (fps float64, accuracy float64) {
	fps = float64(numFrames) / duration
	accuracy = 100 * fps / float64(screen.FramesPerSecond)
	return fps, accuracy
}

// Check the performance of the emulator using the supplied cartridge. The
// emulation runs as fast as it can for the specified duration, after a
// short lead time to allow the go runtime to settle down.
func Check(output io.Writer, profile bool, cartload cartridgeloader.Loader, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf(CheckFailure, err)
	}

	if err = cartload.Load(); err != nil {
		return err
	}

	gba := hardware.NewGBA(screen.NewScreen(), nil)
	if err = gba.AttachCartridge(cartload.Data); err != nil {
		return err
	}

	const leadTime = 2 * time.Second

	// timers flag the two phase changes: measurement start (after the lead
	// time) and measurement end
	var phase int32
	time.AfterFunc(leadTime, func() {
		atomic.StoreInt32(&phase, 1)
		time.AfterFunc(dur, func() {
			atomic.StoreInt32(&phase, 2)
		})
	})

	startFrame := 0
	started := false

	runner := func() error {
		return gba.Run(func() (bool, error) {
			switch atomic.LoadInt32(&phase) {
			case 1:
				if !started {
					started = true
					startFrame = gba.Scr.FrameNum()
				}
			case 2:
				return false, nil
			}
			return true, nil
		})
	}

	// launch the runner directly or through the profiler, depending on the
	// supplied arguments
	if profile {
		err = profileCPU("cpu.profile", runner)
		if err == nil {
			err = profileMemory("mem.profile")
		}
	} else {
		err = runner()
	}
	if err != nil {
		return curated.Errorf(CheckFailure, err)
	}

	numFrames := gba.Scr.FrameNum() - startFrame
	fps, accuracy := CalcFPS(numFrames, dur.Seconds())
	fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, dur.Seconds(), accuracy)

	return nil
}
