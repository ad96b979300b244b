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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/logger"
	"github.com/gopheradvance/gopheradvance/modalflag"
	"github.com/gopheradvance/gopheradvance/performance"
	"github.com/gopheradvance/gopheradvance/playmode"
	"github.com/gopheradvance/gopheradvance/regression"
	"github.com/gopheradvance/gopheradvance/statsview"
	"github.com/gopheradvance/gopheradvance/termplay"
	"github.com/gopheradvance/gopheradvance/version"
)

func init() {
	// SDL window creation and event servicing must happen on the main
	// thread
	runtime.LockOSThread()
}

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "PLAY", "TERM", "PERFORMANCE", "REGRESS", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		fallthrough
	case "PLAY":
		err = play(md)

	case "TERM":
		err = term(md)

	case "PERFORMANCE":
		err = perform(md)

	case "REGRESS":
		err = regress(md)

	case "VERSION":
		vers, rev, _ := version.Version()
		fmt.Printf("%s (%s)\n", vers, rev)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// read the BIOS image if one has been specified. an empty path is fine, the
// console boots with the post-BIOS register state instead.
func loadBIOS(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

func play(md *modalflag.Modes) error {
	md.NewMode()

	bios := md.AddString("bios", "", "path to BIOS image (optional)")
	scaling := md.AddFloat64("scale", 3.0, "window scaling")
	fpsCap := md.AddBool("fpscap", true, "cap FPS to the speed of the console")
	wav := md.AddString("wav", "", "record audio to wav file")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("cartridge required for %s mode", md)
	case 1:
		biosData, err := loadBIOS(*bios)
		if err != nil {
			return err
		}

		cartload := cartridgeloader.NewLoader(md.GetArg(0))

		return playmode.Play(cartload, biosData, float32(*scaling), *fpsCap, *wav)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func term(md *modalflag.Modes) error {
	md.NewMode()

	bios := md.AddString("bios", "", "path to BIOS image (optional)")
	fpsCap := md.AddBool("fpscap", true, "cap FPS to the speed of the console")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("cartridge required for %s mode", md)
	case 1:
		biosData, err := loadBIOS(*bios)
		if err != nil {
			return err
		}

		cartload := cartridgeloader.NewLoader(md.GetArg(0))

		return termplay.Play(cartload, biosData, *fpsCap, md.Output)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	duration := md.AddString("duration", "5s", "run duration (note: there is a 2s overhead)")
	profile := md.AddBool("profile", false, "produce cpu and memory profiling reports")
	stats := md.AddBool("statsview", false, "run the runtime stats server")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		statsview.Launch(md.Output)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("cartridge required for %s mode", md)
	case 1:
		cartload := cartridgeloader.NewLoader(md.GetArg(0))

		return performance.Check(md.Output, *profile, cartload, *duration)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func regress(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("RUN", "LIST", "DELETE", "ADD")
	md.AddDefaultSubMode("RUN")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch md.Mode() {
	case "RUN":
		return regressRun(md)

	case "LIST":
		md.NewMode()

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		return regression.RegressList(md.Output)

	case "DELETE":
		md.NewMode()

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			return fmt.Errorf("database key required for %s mode", md)
		case 1:
			return regression.RegressDelete(md.Output, os.Stdin, md.GetArg(0))
		default:
			return fmt.Errorf("only one key can be deleted at at time when using %s mode", md)
		}

	case "ADD":
		return regressAdd(md)
	}

	return nil
}

func regressRun(md *modalflag.Modes) error {
	md.NewMode()

	verbose := md.AddBool("verbose", false, "display error messages for failed tests")
	failOnError := md.AddBool("fail", false, "stop when a test encounters an error")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// remaining arguments are database keys, an empty list means every test
	return regression.RegressRunTests(md.Output, *verbose, *failOnError, md.RemainingArgs())
}

func regressAdd(md *modalflag.Modes) error {
	md.NewMode()

	mode := md.AddString("mode", "video", "digest mode: video, audio, both")
	numFrames := md.AddInt("frames", 10, "number of frames to run")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("cartridge required for %s mode", md)
	case 1:
		digestMode, err := regression.ParseDigestMode(*mode)
		if err != nil {
			return err
		}

		cartload := cartridgeloader.NewLoader(md.GetArg(0))

		ent, err := regression.NewDigestEntry(digestMode, cartload, *numFrames)
		if err != nil {
			return err
		}

		return regression.RegressAdd(md.Output, ent)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}
