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

package apu_test

import (
	"bytes"
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/apu"
	"github.com/gopheradvance/gopheradvance/hardware/memory/addresses"
	"github.com/gopheradvance/gopheradvance/test"
)

func TestMasterEnable(t *testing.T) {
	ap := apu.NewAPU()

	// sound output is silent until the master enable bit is set
	l, r := ap.Sample()
	test.Equate(t, int64(l), int64(0))
	test.Equate(t, int64(r), int64(0))
}

func TestChannelStatus(t *testing.T) {
	ap := apu.NewAPU()
	ap.WriteRegister(addresses.SOUNDCNT_X, 0x0080)

	v, ok := ap.ReadRegister(addresses.SOUNDCNT_X)
	test.Equate(t, ok, true)
	test.Equate(t, v, 0x0080)

	// triggering channel 1 shows in the status flags
	ap.WriteRegister(addresses.SOUND1CNT_H, 0xf000)
	ap.WriteRegister(addresses.SOUND1CNT_X, 0x8000)

	v, _ = ap.ReadRegister(addresses.SOUNDCNT_X)
	test.Equate(t, v, 0x0081)
}

func TestSquareOutput(t *testing.T) {
	ap := apu.NewAPU()
	ap.WriteRegister(addresses.SOUNDCNT_X, 0x0080)

	// channel 1 at full volume to both sides of the output
	ap.WriteRegister(addresses.SOUNDCNT_L, 0x1100)

	// maximum volume, 75% duty, maximum frequency
	ap.WriteRegister(addresses.SOUND1CNT_H, 0xf0c0)
	ap.WriteRegister(addresses.SOUND1CNT_X, 0x87ff)

	// a single step moves the channel onto a high part of the duty
	// waveform
	ap.Step(0)

	l, r := ap.Sample()
	test.Equate(t, int64(l), int64(8191))
	test.Equate(t, int64(r), int64(8191))
}

func TestLengthCounter(t *testing.T) {
	ap := apu.NewAPU()
	ap.WriteRegister(addresses.SOUNDCNT_X, 0x0080)

	// length counter of 2, with the length flag set on trigger
	ap.WriteRegister(addresses.SOUND1CNT_H, 0xf002)
	ap.WriteRegister(addresses.SOUND1CNT_X, 0xc000)

	v, _ := ap.ReadRegister(addresses.SOUNDCNT_X)
	test.Equate(t, v, 0x0081)

	// the length counter is clocked on the even steps of the frame
	// sequencer. four steps in, the channel has been silenced
	for i := 0; i < 32768*4; i++ {
		ap.Step(0)
	}

	v, _ = ap.ReadRegister(addresses.SOUNDCNT_X)
	test.Equate(t, v, 0x0080)
}

func TestFIFO(t *testing.T) {
	ap := apu.NewAPU()
	ap.WriteRegister(addresses.SOUNDCNT_X, 0x0080)

	// FIFO A clocked by timer 0, FIFO B by timer 1
	ap.WriteRegister(addresses.SOUNDCNT_H, 0x4300)

	// five words is twenty samples
	for i := 0; i < 5; i++ {
		ap.WriteFIFO(addresses.FIFO_A_L, 0x04030201)
	}

	// nothing is consumed until the selected timer overflows
	ap.Step(0)
	a, b := ap.FIFORefill()
	test.Equate(t, a, false)
	test.Equate(t, b, false)

	// four overflows of timer 0 drains the FIFO to the refill level.
	// FIFO B is clocked by the other timer and is not affected
	for i := 0; i < 4; i++ {
		ap.Step(0x01)
	}
	a, b = ap.FIFORefill()
	test.Equate(t, a, true)
	test.Equate(t, b, false)

	// the request is consumed by the poll
	a, _ = ap.FIFORefill()
	test.Equate(t, a, false)
}

func TestWaveRAM(t *testing.T) {
	ap := apu.NewAPU()

	// accesses are directed at the bank not selected for playback, so
	// what is written with one bank selection cannot be read back with
	// the other
	ap.WriteRegister(addresses.WAVE_RAM0_L, 0x2211)
	v, ok := ap.ReadRegister(addresses.WAVE_RAM0_L)
	test.Equate(t, ok, true)
	test.Equate(t, v, 0x2211)

	ap.WriteRegister(addresses.SOUND3CNT_L, 0x0040)
	v, _ = ap.ReadRegister(addresses.WAVE_RAM0_L)
	test.Equate(t, v, 0x0000)
}

func TestStateRoundTrip(t *testing.T) {
	ap := apu.NewAPU()
	ap.WriteRegister(addresses.SOUNDCNT_X, 0x0080)
	ap.WriteRegister(addresses.SOUNDCNT_L, 0x1177)
	ap.WriteRegister(addresses.SOUND1CNT_H, 0xf0c0)
	ap.WriteRegister(addresses.SOUND1CNT_X, 0x87ff)
	for i := 0; i < 100; i++ {
		ap.Step(0)
	}

	w := &bytes.Buffer{}
	err := ap.WriteState(w)
	if err != nil {
		t.Fatal(err)
	}

	np := apu.NewAPU()
	err = np.ReadState(bytes.NewReader(w.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	v, _ := np.ReadRegister(addresses.SOUNDCNT_L)
	test.Equate(t, v, 0x1177)

	// the restored APU produces the same output
	al, ar := ap.Sample()
	bl, br := np.Sample()
	test.Equate(t, int64(al), int64(bl))
	test.Equate(t, int64(ar), int64(br))
}
