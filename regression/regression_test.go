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

package regression

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopheradvance/gopheradvance/cartridgeloader"
	"github.com/gopheradvance/gopheradvance/test"
)

func testROM(opcodes ...uint32) []byte {
	rom := make([]byte, 0x1000)

	binary.LittleEndian.PutUint32(rom, 0xea00002e) // B 0xc0
	copy(rom[0xa0:], "REGRESS")
	rom[0xb2] = 0x96

	var sum uint8
	for _, b := range rom[0xa0:0xbd] {
		sum += b
	}
	rom[0xbd] = -(sum + 0x19)

	for i, op := range opcodes {
		binary.LittleEndian.PutUint32(rom[0xc0+i*4:], op)
	}

	return rom
}

// writes a test ROM to the test's temporary directory and returns a loader
// for it.
func testLoader(t *testing.T) cartridgeloader.Loader {
	t.Helper()

	rom := testROM(
		0xe3a00403, // MOV r0, #0x03000000
		0xe3a010aa, // MOV r1, #0xaa
		0xe5801000, // STR r1, [r0]
		0xeafffffe, // B .
	)

	fn := filepath.Join(t.TempDir(), "game.gba")
	err := os.WriteFile(fn, rom, 0644)
	test.Equate(t, err, nil)

	return cartridgeloader.NewLoader(fn)
}

// run the regression tests from a scratch directory so the database file
// does not pollute the working directory.
func tempWorkingDir(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	test.Equate(t, err, nil)

	err = os.Chdir(t.TempDir())
	test.Equate(t, err, nil)

	t.Cleanup(func() {
		os.Chdir(wd)
	})
}

func TestDigestEntry(t *testing.T) {
	ent, err := NewDigestEntry(DigestVideoOnly, testLoader(t), 2)
	test.Equate(t, err, nil)

	// recording the reference digest
	ok, err := ent.regress(true, io.Discard, "")
	test.Equate(t, err, nil)
	test.Equate(t, ok, true)
	test.Equate(t, len(ent.Digest) > 0, true)

	// the same ROM produces the same digest
	ok, err = ent.regress(false, io.Discard, "")
	test.Equate(t, err, nil)
	test.Equate(t, ok, true)

	// a changed reference digest is a test failure
	ent.Digest = "0000000000000000000000000000000000000000"
	ok, err = ent.regress(false, io.Discard, "")
	test.Equate(t, err, nil)
	test.Equate(t, ok, false)
}

func TestDigestEntrySerialise(t *testing.T) {
	ent, err := NewDigestEntry(DigestBoth, testLoader(t), 5)
	test.Equate(t, err, nil)
	ent.Digest = "abc/def"

	ser, err := ent.Serialise()
	test.Equate(t, err, nil)

	redux, err := deserialiseDigestEntry(ser)
	test.Equate(t, err, nil)

	ent2 := redux.(*DigestEntry)
	test.Equate(t, ent2.Mode == DigestBoth, true)
	test.Equate(t, ent2.CartLoad.Filename, ent.CartLoad.Filename)
	test.Equate(t, ent2.NumFrames, 5)
	test.Equate(t, ent2.Digest, "abc/def")
}

func TestInvalidEntries(t *testing.T) {
	_, err := NewDigestEntry(DigestUndefined, cartridgeloader.Loader{}, 1)
	test.ExpectedFailure(t, err)

	_, err = NewDigestEntry(DigestVideoOnly, cartridgeloader.Loader{}, 0)
	test.ExpectedFailure(t, err)

	_, err = deserialiseDigestEntry([]string{"video", "too", "few"})
	test.ExpectedFailure(t, err)
}

func TestRegressionDatabase(t *testing.T) {
	cartload := testLoader(t)
	tempWorkingDir(t)

	ent, err := NewDigestEntry(DigestVideoOnly, cartload, 2)
	test.Equate(t, err, nil)

	err = RegressAdd(io.Discard, ent)
	test.Equate(t, err, nil)

	// the freshly added test passes
	err = RegressRunTests(io.Discard, false, true, nil)
	test.Equate(t, err, nil)

	// it shows up in the listing
	s := &strings.Builder{}
	err = RegressList(s)
	test.Equate(t, err, nil)
	test.Equate(t, strings.Contains(s.String(), "game"), true)
	test.Equate(t, strings.Contains(s.String(), "Total: 1"), true)

	// and can be deleted
	s.Reset()
	err = RegressDelete(s, strings.NewReader("y\n"), "0")
	test.Equate(t, err, nil)

	s.Reset()
	err = RegressList(s)
	test.Equate(t, err, nil)
	test.Equate(t, strings.Contains(s.String(), "empty"), true)
}
