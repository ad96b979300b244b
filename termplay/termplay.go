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

// Package termplay is a headless play mode. There is no video or audio
// output beyond a rolling digest of the video signal; keypad input is read
// from the terminal, which is placed into raw mode for the duration.
//
// It is mainly useful for exercising the emulation over an ssh connection
// or in scripted environments where SDL is unavailable.
package termplay

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/digest"
	"github.com/gopheradvance/gopheradvance/hardware"
	"github.com/gopheradvance/gopheradvance/hardware/screen"
	"github.com/gopheradvance/gopheradvance/performance/limiter"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Sentinal error returned by all functions in the termplay package.
const TermPlay = "termplay: %v"

// the status line is refreshed once per second of emulated time
const statusPeriod = 60

type termplay struct {
	gba    *hardware.GBA
	vid    *digest.Video
	output io.Writer

	lmtr   *limiter.FpsLimiter
	fpsCap bool

	// bytes read from the raw terminal
	keyBuffer chan byte

	// ctrl-c handling. raw mode disables ISIG so the interrupt arrives as
	// a byte in the keyBuffer, but keep the signal path too in case the
	// process is interrupted from elsewhere
	intChan chan os.Signal

	keys keyState
}

// Play sets the emulation running with the terminal as the user interface.
func Play(cartload cartridgeloader.Loader, bios []byte, fpsCap bool, output io.Writer) error {
	err := cartload.Load()
	if err != nil {
		return curated.Errorf(TermPlay, err)
	}

	scr := screen.NewScreen()

	tp := &termplay{
		gba:       hardware.NewGBA(scr, bios),
		vid:       digest.NewVideo(),
		output:    output,
		lmtr:      limiter.NewFPSLimiter(screen.FramesPerSecond),
		fpsCap:    fpsCap,
		keyBuffer: make(chan byte, 8),
		intChan:   make(chan os.Signal, 1),
	}

	scr.AddPixelRenderer(tp.vid)

	err = tp.gba.AttachCartridge(cartload.Data)
	if err != nil {
		return curated.Errorf(TermPlay, err)
	}

	// place the terminal into raw mode for the duration of the emulation
	var saved unix.Termios
	err = termios.Tcgetattr(os.Stdin.Fd(), &saved)
	if err != nil {
		return curated.Errorf(TermPlay, err)
	}

	raw := saved
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	err = termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &raw)
	if err != nil {
		return curated.Errorf(TermPlay, err)
	}
	defer termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &saved)

	signal.Notify(tp.intChan, os.Interrupt)
	defer signal.Stop(tp.intChan)

	// the read on stdin blocks so it lives in its own goroutine. the
	// goroutine leaks when Play returns but the process is about to end
	// anyway
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}
			tp.keyBuffer <- buf[0]
		}
	}()

	err = tp.gba.Run(tp.frameHandler)

	// leave the status line behind
	fmt.Fprintf(tp.output, "\n")

	if err != nil {
		return curated.Errorf(TermPlay, err)
	}

	fmt.Fprintf(tp.output, "final digest: %s\n", tp.vid.Hash())

	return nil
}

// frameHandler is called between frames by the running console.
func (tp *termplay) frameHandler() (bool, error) {
	select {
	case <-tp.intChan:
		return false, nil
	default:
	}

	// drain the key buffer entirely. more than one byte can arrive in one
	// frame
	drained := false
	for !drained {
		select {
		case b := <-tp.keyBuffer:
			if !tp.keys.press(b) {
				return false, nil
			}
		default:
			drained = true
		}
	}

	tp.gba.SetInput(tp.keys.input())

	if frame := tp.gba.Scr.FrameNum(); frame%statusPeriod == 0 {
		fmt.Fprintf(tp.output, "\rframe %d  %s", frame, tp.vid.Hash())
	}

	if tp.fpsCap {
		tp.lmtr.Wait()
	}

	return true, nil
}
