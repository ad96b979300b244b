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

package cartridgeloader_test

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/test"
)

func TestLoad(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "game.gba")
	data := []byte{0x01, 0x02, 0x03, 0x04}
	if err := os.WriteFile(fn, data, 0644); err != nil {
		t.Fatal(err)
	}

	cl := cartridgeloader.NewLoader(fn)
	test.Equate(t, cl.HasLoaded(), false)
	test.Equate(t, cl.ShortName(), "game")

	if err := cl.Load(); err != nil {
		t.Fatal(err)
	}

	test.Equate(t, cl.HasLoaded(), true)
	test.Equate(t, len(cl.Data), len(data))
	test.Equate(t, cl.Hash, fmt.Sprintf("%x", sha1.Sum(data)))
}

func TestHashMismatch(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "game.gba")
	if err := os.WriteFile(fn, []byte{0x01}, 0644); err != nil {
		t.Fatal(err)
	}

	cl := cartridgeloader.NewLoader(fn)
	cl.Hash = "not the right hash"

	if err := cl.Load(); err == nil {
		t.Fatal("expected hash mismatch to fail the load")
	}
}

func TestMissingFile(t *testing.T) {
	cl := cartridgeloader.NewLoader(filepath.Join(t.TempDir(), "nonexistent.gba"))
	if err := cl.Load(); err == nil {
		t.Fatal("expected load of a missing file to fail")
	}
}
