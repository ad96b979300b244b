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

package cpu

import (
	"fmt"
	"strings"
)

// the processor modes of the ARM7TDMI
const (
	ModeUser       = uint32(0x10)
	ModeFIQ        = uint32(0x11)
	ModeIRQ        = uint32(0x12)
	ModeSupervisor = uint32(0x13)
	ModeAbort      = uint32(0x17)
	ModeUndefined  = uint32(0x1b)
	ModeSystem     = uint32(0x1f)
)

// CPSR flag and control bits
const (
	FlagN = uint32(0x80000000)
	FlagZ = uint32(0x40000000)
	FlagC = uint32(0x20000000)
	FlagV = uint32(0x10000000)

	DisableIRQ = uint32(0x00000080)
	DisableFIQ = uint32(0x00000040)
	FlagThumb  = uint32(0x00000020)

	maskMode = uint32(0x0000001f)
)

// Registers is the register file of the ARM7TDMI. R holds the registers of
// the current mode; the banked copies of the other modes are swapped in
// and out on a mode change.
//
// Fields are exported for the benefit of the savestate package. Use
// SetCPSR() rather than writing CPSR directly so that a change of the
// mode bits banks the registers correctly.
type Registers struct {
	R    [16]uint32
	CPSR uint32

	// banked r8-r14 for the user/system modes and fiq, and banked r13-r14
	// for the exception modes. the bank belonging to the current mode
	// holds stale values; its contents only matter after a mode switch
	BankUser [7]uint32
	BankFIQ  [7]uint32
	BankSVC  [2]uint32
	BankABT  [2]uint32
	BankIRQ  [2]uint32
	BankUND  [2]uint32

	SPSRFIQ uint32
	SPSRSVC uint32
	SPSRABT uint32
	SPSRIRQ uint32
	SPSRUND uint32
}

func (reg *Registers) String() string {
	s := strings.Builder{}
	for i := 0; i < 16; i++ {
		s.WriteString(fmt.Sprintf("r%d=%08x ", i, reg.R[i]))
		if i%8 == 7 {
			s.WriteString("\n")
		}
	}
	s.WriteString(fmt.Sprintf("cpsr=%08x", reg.CPSR))
	return s.String()
}

// Mode returns the mode bits of the CPSR.
func (reg *Registers) Mode() uint32 {
	return reg.CPSR & maskMode
}

// Thumb returns true if the T bit of the CPSR is set.
func (reg *Registers) Thumb() bool {
	return reg.CPSR&FlagThumb == FlagThumb
}

func (reg *Registers) flag(f uint32) bool {
	return reg.CPSR&f == f
}

func (reg *Registers) setFlag(f uint32, v bool) {
	if v {
		reg.CPSR |= f
	} else {
		reg.CPSR &^= f
	}
}

// r13-r14 storage for the exception modes other than fiq. r8-r12 of
// those modes are shared with the user bank
func (reg *Registers) exceptionBank(mode uint32) []uint32 {
	switch mode {
	case ModeSupervisor:
		return reg.BankSVC[:]
	case ModeAbort:
		return reg.BankABT[:]
	case ModeIRQ:
		return reg.BankIRQ[:]
	case ModeUndefined:
		return reg.BankUND[:]
	}
	return nil
}

// copy the banked registers of the current mode out of R, and the banked
// registers of the new mode into R
func (reg *Registers) swapBank(oldMode uint32, newMode uint32) {
	if oldMode == newMode {
		return
	}

	// save r8-r14 of the old mode
	switch oldMode {
	case ModeFIQ:
		copy(reg.BankFIQ[:], reg.R[8:15])
	case ModeUser, ModeSystem:
		copy(reg.BankUser[:], reg.R[8:15])
	default:
		copy(reg.BankUser[0:5], reg.R[8:13])
		copy(reg.exceptionBank(oldMode), reg.R[13:15])
	}

	// load r8-r14 of the new mode
	switch newMode {
	case ModeFIQ:
		copy(reg.R[8:15], reg.BankFIQ[:])
	case ModeUser, ModeSystem:
		copy(reg.R[8:15], reg.BankUser[:])
	default:
		copy(reg.R[8:13], reg.BankUser[0:5])
		copy(reg.R[13:15], reg.exceptionBank(newMode))
	}
}

// SetCPSR updates the CPSR, banking registers if the mode bits change.
func (reg *Registers) SetCPSR(v uint32) {
	old := reg.Mode()
	reg.CPSR = v
	reg.swapBank(old, reg.Mode())
}

// SPSR returns the saved status register of the current mode. The user
// and system modes have no SPSR; reading it returns the CPSR.
func (reg *Registers) SPSR() uint32 {
	switch reg.Mode() {
	case ModeFIQ:
		return reg.SPSRFIQ
	case ModeSupervisor:
		return reg.SPSRSVC
	case ModeAbort:
		return reg.SPSRABT
	case ModeIRQ:
		return reg.SPSRIRQ
	case ModeUndefined:
		return reg.SPSRUND
	}
	return reg.CPSR
}

// SetSPSR updates the saved status register of the current mode. Writes
// in user and system mode are dropped.
func (reg *Registers) SetSPSR(v uint32) {
	switch reg.Mode() {
	case ModeFIQ:
		reg.SPSRFIQ = v
	case ModeSupervisor:
		reg.SPSRSVC = v
	case ModeAbort:
		reg.SPSRABT = v
	case ModeIRQ:
		reg.SPSRIRQ = v
	case ModeUndefined:
		reg.SPSRUND = v
	}
}

// user-bank register access for the LDM/STM forms with the S bit set.
// the index is the register number
func (reg *Registers) userReg(i int) uint32 {
	mode := reg.Mode()
	if mode == ModeUser || mode == ModeSystem || i < 8 || i == 15 {
		return reg.R[i]
	}
	if mode == ModeFIQ {
		return reg.BankUser[i-8]
	}
	if i < 13 {
		return reg.R[i]
	}
	return reg.BankUser[i-8]
}

func (reg *Registers) setUserReg(i int, v uint32) {
	mode := reg.Mode()
	if mode == ModeUser || mode == ModeSystem || i < 8 || i == 15 {
		reg.R[i] = v
		return
	}
	if mode == ModeFIQ {
		reg.BankUser[i-8] = v
		return
	}
	if i < 13 {
		reg.R[i] = v
		return
	}
	reg.BankUser[i-8] = v
}
