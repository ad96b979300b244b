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

// Package savestate serialises the state of a GBA machine to a versioned
// binary blob and restores it again.
//
// The blob is self describing: a magic number and a format version followed
// by length-prefixed sections in a fixed order, one section per sub-system.
// Large sections are run-length crunched with the crunched package.
//
// Load() validates the entire blob before anything touches the running
// machine. The decoded state is assembled to the side and plumbed in with
// the hardware package's Snapshot/Plumb mechanism; a rejected blob leaves
// the machine exactly as it was.
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopheradvance/gopheradvance/crunched"
	"github.com/gopheradvance/gopheradvance/curated"
	"github.com/gopheradvance/gopheradvance/hardware"
)

// sentinel error patterns for the savestate package.
const (
	SaveFailure  = "savestate: save: %v"
	InvalidState = "savestate: invalid state: %v"
)

const (
	magic   = "GADV"
	version = 0x01
)

// sections smaller than this are stored raw; crunching them isn't worth the
// two extra header fields
const crunchThreshold = 0x100

// a section that decodes to more than this is corrupt by definition. the
// largest real section is the bus section at a little over 288k
const maxSectionSize = 0x100000

// the length-prefix header of every section
type sectionHeader struct {
	ID          uint8
	Crunched    uint8
	DecodedSize uint32
	StoredSize  uint32
}

type section struct {
	id    uint8
	label string
	write func(*hardware.State, io.Writer) error
	read  func(*hardware.State, io.Reader) error
}

// the fixed section order of the format. a blob with sections missing,
// repeated or reordered is rejected.
var sections = []section{
	{0x01, "cpu",
		func(s *hardware.State, w io.Writer) error { return s.CPU.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.CPU.ReadState(r) }},
	{0x02, "bus",
		func(s *hardware.State, w io.Writer) error { return s.Mem.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.Mem.ReadState(r) }},
	{0x03, "cartridge",
		func(s *hardware.State, w io.Writer) error { return s.Cart.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.Cart.ReadState(r) }},
	{0x04, "lcd",
		func(s *hardware.State, w io.Writer) error { return s.LCD.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.LCD.ReadState(r) }},
	{0x05, "apu",
		func(s *hardware.State, w io.Writer) error { return s.APU.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.APU.ReadState(r) }},
	{0x06, "timers",
		func(s *hardware.State, w io.Writer) error { return s.Timers.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.Timers.ReadState(r) }},
	{0x07, "dma",
		func(s *hardware.State, w io.Writer) error { return s.DMA.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.DMA.ReadState(r) }},
	{0x08, "keypad",
		func(s *hardware.State, w io.Writer) error { return s.Keypad.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.Keypad.ReadState(r) }},
	{0x09, "irq",
		func(s *hardware.State, w io.Writer) error { return s.IRQ.WriteState(w) },
		func(s *hardware.State, r io.Reader) error { return s.IRQ.ReadState(r) }},
	{0x0a, "machine", writeMachine, readMachine},
}

// the machine section carries the clocks that live with the GBA type itself
// rather than with any sub-system.
type machineState struct {
	Clock     uint64
	FrameNum  int64
	DotClk    int64
	SampleClk int64
}

func writeMachine(s *hardware.State, w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, machineState{
		Clock:     s.Clock,
		FrameNum:  int64(s.FrameNum),
		DotClk:    int64(s.DotClk),
		SampleClk: int64(s.SampleClk),
	})
}

func readMachine(s *hardware.State, r io.Reader) error {
	var m machineState
	if err := binary.Read(r, binary.LittleEndian, &m); err != nil {
		return err
	}
	s.Clock = m.Clock
	s.FrameNum = int(m.FrameNum)
	s.DotClk = int(m.DotClk)
	s.SampleClk = int(m.SampleClk)
	return nil
}

// Save serialises the current state of the machine to a blob suitable for
// Load().
func Save(gba *hardware.GBA) ([]byte, error) {
	state := gba.Snapshot()

	buf := &bytes.Buffer{}
	buf.WriteString(magic)
	buf.WriteByte(version)

	for _, sec := range sections {
		payload := &bytes.Buffer{}
		if err := sec.write(state, payload); err != nil {
			return nil, curated.Errorf(SaveFailure, fmt.Sprintf("%s section: %v", sec.label, err))
		}

		decoded := payload.Bytes()
		stored, isCrunched := crunch(decoded)

		hdr := sectionHeader{
			ID:          sec.id,
			DecodedSize: uint32(len(decoded)),
			StoredSize:  uint32(len(stored)),
		}
		if isCrunched {
			hdr.Crunched = 0x01
		}

		_ = binary.Write(buf, binary.LittleEndian, hdr)
		buf.Write(stored)
	}

	return buf.Bytes(), nil
}

// Load restores a machine state previously serialised with Save(). The blob
// is validated in full before the machine is touched; on error the machine
// is left exactly as it was.
func Load(gba *hardware.GBA, blob []byte) error {
	r := bytes.NewReader(blob)

	hdr := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return curated.Errorf(InvalidState, "too short for the header")
	}
	if string(hdr[:len(magic)]) != magic {
		return curated.Errorf(InvalidState, "not a savestate blob")
	}
	if hdr[len(magic)] != version {
		return curated.Errorf(InvalidState, fmt.Sprintf("unsupported version %#02x", hdr[len(magic)]))
	}

	// decode every section before anything touches the machine
	payloads := make(map[uint8][]byte, len(sections))
	for _, sec := range sections {
		var sh sectionHeader
		if err := binary.Read(r, binary.LittleEndian, &sh); err != nil {
			return curated.Errorf(InvalidState, fmt.Sprintf("missing %s section", sec.label))
		}
		if sh.ID != sec.id {
			return curated.Errorf(InvalidState, fmt.Sprintf("expected %s section, found id %#02x", sec.label, sh.ID))
		}
		if sh.DecodedSize > maxSectionSize || sh.StoredSize > maxSectionSize {
			return curated.Errorf(InvalidState, fmt.Sprintf("%s section is implausibly large", sec.label))
		}

		stored := make([]byte, sh.StoredSize)
		if _, err := io.ReadFull(r, stored); err != nil {
			return curated.Errorf(InvalidState, fmt.Sprintf("%s section is truncated", sec.label))
		}

		decoded := stored
		if sh.Crunched != 0 {
			var err error
			decoded, err = uncrunch(stored, int(sh.DecodedSize))
			if err != nil {
				return curated.Errorf(InvalidState, fmt.Sprintf("%s section: %v", sec.label, err))
			}
		}
		if len(decoded) != int(sh.DecodedSize) {
			return curated.Errorf(InvalidState, fmt.Sprintf("%s section has the wrong length", sec.label))
		}

		payloads[sec.id] = decoded
	}

	if r.Len() != 0 {
		return curated.Errorf(InvalidState, "trailing data after the last section")
	}

	// assemble the new state to the side. the snapshot gives us independent
	// copies of every sub-system so a failure part way leaves the running
	// machine untouched
	state := gba.Snapshot()
	for _, sec := range sections {
		if err := sec.read(state, bytes.NewReader(payloads[sec.id])); err != nil {
			return curated.Errorf(InvalidState, fmt.Sprintf("%s section: %v", sec.label, err))
		}
	}

	gba.Plumb(state)

	return nil
}

// crunch run-length encodes a section payload. payloads too small to be
// worth the effort, and payloads that do not shrink, are returned as they
// are.
func crunch(payload []byte) ([]byte, bool) {
	if len(payload) < crunchThreshold {
		return payload, false
	}

	d := crunched.NewQuick(len(payload))
	copy(*d.Data(), payload)

	s := d.Snapshot()
	if !s.IsCrunched() {
		return payload, false
	}

	return *s.(crunched.Inspection).Inspect(), true
}

// uncrunch reverses crunch(). The encoded stream is validated against the
// expected decoded size before it is expanded.
func uncrunch(stored []byte, decodedSize int) ([]byte, error) {
	if len(stored)&0x01 == 0x01 {
		return nil, fmt.Errorf("crunched stream has an odd length")
	}

	var n int
	for i := 1; i < len(stored); i += 2 {
		n += int(stored[i]) + 1
	}
	if n != decodedSize {
		return nil, fmt.Errorf("crunched stream expands to %d bytes, expected %d", n, decodedSize)
	}

	d := crunched.NewQuickFromCrunched(stored, decodedSize)
	return *d.Data(), nil
}
