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

package performance

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/logger"
)

// profileCPU runs the supplied function with the pprof CPU profiler
// attached, writing the profile to outFile.
func profileCPU(outFile string, run func() error) error {
	f, err := os.Create(outFile)
	if err != nil {
		return curated.Errorf(CheckFailure, err)
	}
	defer f.Close()

	if err = pprof.StartCPUProfile(f); err != nil {
		return curated.Errorf(CheckFailure, err)
	}
	defer pprof.StopCPUProfile()

	logger.Logf(logger.Allow, "performance", "writing cpu profile to %s", outFile)

	return run()
}

// profileMemory writes a heap profile to outFile.
func profileMemory(outFile string) error {
	f, err := os.Create(outFile)
	if err != nil {
		return curated.Errorf(CheckFailure, err)
	}
	defer f.Close()

	runtime.GC()
	if err = pprof.WriteHeapProfile(f); err != nil {
		return curated.Errorf(CheckFailure, err)
	}

	logger.Logf(logger.Allow, "performance", "writing memory profile to %s", outFile)

	return nil
}
