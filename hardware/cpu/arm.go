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
	"math/bits"
)

// condition field values
const (
	condEQ = iota
	condNE
	condCS
	condCC
	condMI
	condPL
	condVS
	condVC
	condHI
	condLS
	condGE
	condLT
	condGT
	condLE
	condAL
	condNV
)

func (cp *CPU) condition(cond uint32) bool {
	n := cp.Regs.flag(FlagN)
	z := cp.Regs.flag(FlagZ)
	c := cp.Regs.flag(FlagC)
	v := cp.Regs.flag(FlagV)

	switch cond {
	case condEQ:
		return z
	case condNE:
		return !z
	case condCS:
		return c
	case condCC:
		return !c
	case condMI:
		return n
	case condPL:
		return !n
	case condVS:
		return v
	case condVC:
		return !v
	case condHI:
		return c && !z
	case condLS:
		return !c || z
	case condGE:
		return n == v
	case condLT:
		return n != v
	case condGT:
		return !z && n == v
	case condLE:
		return z || n != v
	case condAL:
		return true
	}

	// the NV condition is unpredictable on ARMv4. the real core treats
	// the instruction as a no-op
	return false
}

// executeARM decodes and executes a single ARM instruction, returning the
// number of cycles consumed.
func (cp *CPU) executeARM(opcode uint32) int {
	if !cp.condition(opcode >> 28) {
		return 1
	}

	switch {
	case opcode&0x0ffffff0 == 0x012fff10:
		return cp.armBranchExchange(opcode)

	case opcode&0x0fc000f0 == 0x00000090:
		return cp.armMultiply(opcode)

	case opcode&0x0f8000f0 == 0x00800090:
		return cp.armMultiplyLong(opcode)

	case opcode&0x0fb00ff0 == 0x01000090:
		return cp.armSwap(opcode)

	case opcode&0x0e000090 == 0x00000090 && opcode&0x00000060 != 0:
		return cp.armHalfwordTransfer(opcode)

	case opcode&0x0fbf0fff == 0x010f0000:
		return cp.armMRS(opcode)

	case opcode&0x0fb0fff0 == 0x0120f000:
		return cp.armMSR(opcode, cp.Regs.R[int(opcode&0x0f)])

	case opcode&0x0fb0f000 == 0x0320f000:
		return cp.armMSR(opcode, bits.RotateLeft32(opcode&0xff, -2*int(opcode>>8&0x0f)))

	case opcode&0x0c000000 == 0x00000000:
		return cp.armDataProcessing(opcode)

	case opcode&0x0e000010 == 0x06000010:
		// the undefined instruction extension space
		return cp.undefined()

	case opcode&0x0c000000 == 0x04000000:
		return cp.armSingleTransfer(opcode)

	case opcode&0x0e000000 == 0x08000000:
		return cp.armBlockTransfer(opcode)

	case opcode&0x0e000000 == 0x0a000000:
		return cp.armBranch(opcode)

	case opcode&0x0f000000 == 0x0f000000:
		return cp.softwareInterrupt()
	}

	// the coprocessor instructions. the console has no coprocessors so
	// they all take the undefined trap
	return cp.undefined()
}

// shifterOperand evaluates the register form of a data processing
// operand: a register shifted by an immediate amount or by the bottom
// byte of another register. Returns the operand, the shifter carry and
// the internal cycle cost.
func (cp *CPU) shifterOperand(opcode uint32) (uint32, bool, int) {
	carry := cp.Regs.flag(FlagC)

	rm := int(opcode & 0x0f)
	v := cp.Regs.R[rm]

	var amount uint32
	var cycles int

	if opcode&0x00000010 == 0x00000010 {
		// shift by register. the extra internal cycle means R15 has
		// advanced by the time the operand is read
		amount = cp.Regs.R[int(opcode>>8&0x0f)] & 0xff
		if rm == 15 {
			v += 4
		}
		cycles = 1

		if amount == 0 {
			return v, carry, cycles
		}
	} else {
		amount = opcode >> 7 & 0x1f
	}

	switch opcode >> 5 & 0x03 {
	case 0: // logical left
		if amount == 0 {
			return v, carry, cycles
		}
		if amount < 32 {
			return v << amount, v>>(32-amount)&0x01 == 0x01, cycles
		}
		if amount == 32 {
			return 0, v&0x01 == 0x01, cycles
		}
		return 0, false, cycles

	case 1: // logical right
		if amount == 0 {
			// LSR #0 encodes LSR #32
			amount = 32
		}
		if amount < 32 {
			return v >> amount, v>>(amount-1)&0x01 == 0x01, cycles
		}
		if amount == 32 {
			return 0, v&0x80000000 == 0x80000000, cycles
		}
		return 0, false, cycles

	case 2: // arithmetic right
		if amount == 0 || amount > 32 {
			// ASR #0 encodes ASR #32; shifts beyond 32 behave the same
			amount = 32
		}
		if amount < 32 {
			return uint32(int32(v) >> amount), v>>(amount-1)&0x01 == 0x01, cycles
		}
		return uint32(int32(v) >> 31), v&0x80000000 == 0x80000000, cycles

	case 3: // rotate right
		if amount == 0 {
			// ROR #0 encodes RRX
			r := v >> 1
			if carry {
				r |= 0x80000000
			}
			return r, v&0x01 == 0x01, cycles
		}
		amount &= 0x1f
		if amount == 0 {
			return v, v&0x80000000 == 0x80000000, cycles
		}
		return bits.RotateLeft32(v, -int(amount)), v>>(amount-1)&0x01 == 0x01, cycles
	}

	return v, carry, cycles
}

// data processing opcodes
const (
	opAND = iota
	opEOR
	opSUB
	opRSB
	opADD
	opADC
	opSBC
	opRSC
	opTST
	opTEQ
	opCMP
	opCMN
	opORR
	opMOV
	opBIC
	opMVN
)

func add(a uint32, b uint32, carryIn bool) (uint32, bool, bool) {
	var c uint32
	if carryIn {
		c = 1
	}
	r := uint64(a) + uint64(b) + uint64(c)
	res := uint32(r)
	carry := r > 0xffffffff
	overflow := (a^res)&(b^res)&0x80000000 == 0x80000000
	return res, carry, overflow
}

func sub(a uint32, b uint32, carryIn bool) (uint32, bool, bool) {
	return add(a, ^b, carryIn)
}

func (cp *CPU) setNZ(v uint32) {
	cp.Regs.setFlag(FlagN, v&0x80000000 == 0x80000000)
	cp.Regs.setFlag(FlagZ, v == 0)
}

func (cp *CPU) armDataProcessing(opcode uint32) int {
	op := opcode >> 21 & 0x0f
	s := opcode&0x00100000 == 0x00100000
	rn := int(opcode >> 16 & 0x0f)
	rd := int(opcode >> 12 & 0x0f)

	var op2 uint32
	var shiftCarry bool
	var cycles int

	if opcode&0x02000000 == 0x02000000 {
		// immediate operand: an 8bit value rotated right by twice the
		// rotate field
		rot := int(opcode >> 8 & 0x0f)
		op2 = bits.RotateLeft32(opcode&0xff, -2*rot)
		shiftCarry = cp.Regs.flag(FlagC)
		if rot != 0 {
			shiftCarry = op2&0x80000000 == 0x80000000
		}
	} else {
		op2, shiftCarry, cycles = cp.shifterOperand(opcode)
	}

	op1 := cp.Regs.R[rn]
	if rn == 15 && cycles > 0 {
		op1 += 4
	}

	carryIn := cp.Regs.flag(FlagC)

	var res uint32
	var carry, overflow bool
	var logical, write bool

	switch op {
	case opAND:
		res = op1 & op2
		logical = true
		write = true
	case opEOR:
		res = op1 ^ op2
		logical = true
		write = true
	case opSUB:
		res, carry, overflow = sub(op1, op2, true)
		write = true
	case opRSB:
		res, carry, overflow = sub(op2, op1, true)
		write = true
	case opADD:
		res, carry, overflow = add(op1, op2, false)
		write = true
	case opADC:
		res, carry, overflow = add(op1, op2, carryIn)
		write = true
	case opSBC:
		res, carry, overflow = sub(op1, op2, carryIn)
		write = true
	case opRSC:
		res, carry, overflow = sub(op2, op1, carryIn)
		write = true
	case opTST:
		res = op1 & op2
		logical = true
	case opTEQ:
		res = op1 ^ op2
		logical = true
	case opCMP:
		res, carry, overflow = sub(op1, op2, true)
	case opCMN:
		res, carry, overflow = add(op1, op2, false)
	case opORR:
		res = op1 | op2
		logical = true
		write = true
	case opMOV:
		res = op2
		logical = true
		write = true
	case opBIC:
		res = op1 &^ op2
		logical = true
		write = true
	case opMVN:
		res = ^op2
		logical = true
		write = true
	}

	if s {
		if rd == 15 {
			// S with R15 as destination restores the CPSR from the SPSR
			// of the current mode
			cp.Regs.SetCPSR(cp.Regs.SPSR())
		} else {
			cp.setNZ(res)
			if logical {
				cp.Regs.setFlag(FlagC, shiftCarry)
			} else {
				cp.Regs.setFlag(FlagC, carry)
				cp.Regs.setFlag(FlagV, overflow)
			}
		}
	}

	if write {
		cp.setReg(rd, res)
		if rd == 15 {
			cycles += 2
		}
	}

	return 1 + cycles
}

// cycles taken by the multiplier array: one internal cycle per
// significant byte of the multiplier operand
func multiplierCycles(v uint32) int {
	switch {
	case v&0xffffff00 == 0 || v&0xffffff00 == 0xffffff00:
		return 1
	case v&0xffff0000 == 0 || v&0xffff0000 == 0xffff0000:
		return 2
	case v&0xff000000 == 0 || v&0xff000000 == 0xff000000:
		return 3
	}
	return 4
}

func (cp *CPU) armMultiply(opcode uint32) int {
	rd := int(opcode >> 16 & 0x0f)
	rn := int(opcode >> 12 & 0x0f)
	rs := int(opcode >> 8 & 0x0f)
	rm := int(opcode & 0x0f)

	cycles := 1 + multiplierCycles(cp.Regs.R[rs])

	res := cp.Regs.R[rm] * cp.Regs.R[rs]
	if opcode&0x00200000 == 0x00200000 {
		res += cp.Regs.R[rn]
		cycles++
	}

	cp.setReg(rd, res)

	if opcode&0x00100000 == 0x00100000 {
		cp.setNZ(res)
	}

	return cycles
}

func (cp *CPU) armMultiplyLong(opcode uint32) int {
	rdhi := int(opcode >> 16 & 0x0f)
	rdlo := int(opcode >> 12 & 0x0f)
	rs := int(opcode >> 8 & 0x0f)
	rm := int(opcode & 0x0f)

	cycles := 2 + multiplierCycles(cp.Regs.R[rs])

	var res uint64
	if opcode&0x00400000 == 0x00400000 {
		// signed
		res = uint64(int64(int32(cp.Regs.R[rm])) * int64(int32(cp.Regs.R[rs])))
	} else {
		res = uint64(cp.Regs.R[rm]) * uint64(cp.Regs.R[rs])
	}

	if opcode&0x00200000 == 0x00200000 {
		// accumulate
		res += uint64(cp.Regs.R[rdhi])<<32 | uint64(cp.Regs.R[rdlo])
		cycles++
	}

	cp.setReg(rdlo, uint32(res))
	cp.setReg(rdhi, uint32(res>>32))

	if opcode&0x00100000 == 0x00100000 {
		cp.Regs.setFlag(FlagN, res&0x8000000000000000 == 0x8000000000000000)
		cp.Regs.setFlag(FlagZ, res == 0)
	}

	return cycles
}

func (cp *CPU) armSwap(opcode uint32) int {
	rn := int(opcode >> 16 & 0x0f)
	rd := int(opcode >> 12 & 0x0f)
	rm := int(opcode & 0x0f)

	addr := cp.Regs.R[rn]

	if opcode&0x00400000 == 0x00400000 {
		old := cp.bus.Read8(addr)
		cp.bus.Write8(addr, uint8(cp.Regs.R[rm]))
		cp.setReg(rd, uint32(old))
	} else {
		old := readRotated(cp.bus, addr)
		cp.bus.Write32(addr, cp.Regs.R[rm])
		cp.setReg(rd, old)
	}

	return 4
}

func (cp *CPU) armBranchExchange(opcode uint32) int {
	v := cp.Regs.R[int(opcode&0x0f)]
	cp.Regs.setFlag(FlagThumb, v&0x01 == 0x01)
	cp.branch(v)
	return 3
}

func (cp *CPU) armBranch(opcode uint32) int {
	if opcode&0x01000000 == 0x01000000 {
		// branch with link
		cp.Regs.R[14] = cp.nextPC()
	}

	offset := uint32(int32(opcode<<8) >> 6)
	cp.branch(cp.Regs.R[15] + offset)
	return 3
}

func (cp *CPU) armMRS(opcode uint32) int {
	rd := int(opcode >> 12 & 0x0f)
	if opcode&0x00400000 == 0x00400000 {
		cp.setReg(rd, cp.Regs.SPSR())
	} else {
		cp.setReg(rd, cp.Regs.CPSR)
	}
	return 1
}

func (cp *CPU) armMSR(opcode uint32, v uint32) int {
	var mask uint32
	if opcode&0x00080000 == 0x00080000 {
		mask |= 0xff000000
	}
	if opcode&0x00040000 == 0x00040000 {
		mask |= 0x00ff0000
	}
	if opcode&0x00020000 == 0x00020000 {
		mask |= 0x0000ff00
	}
	if opcode&0x00010000 == 0x00010000 {
		mask |= 0x000000ff
	}

	// the control bits are protected in user mode
	if cp.Regs.Mode() == ModeUser {
		mask &= 0xff000000
	}

	if opcode&0x00400000 == 0x00400000 {
		cp.Regs.SetSPSR(cp.Regs.SPSR()&^mask | v&mask)
	} else {
		cp.Regs.SetCPSR(cp.Regs.CPSR&^mask | v&mask)
	}

	return 1
}

// a 32bit read from a misaligned address presents the addressed byte in
// the low lane: the aligned word rotated right by the misalignment
func readRotated(bus Bus, addr uint32) uint32 {
	v := bus.Read32(addr)
	return bits.RotateLeft32(v, -8*int(addr&0x03))
}

func (cp *CPU) armSingleTransfer(opcode uint32) int {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	byteAccess := opcode&0x00400000 == 0x00400000
	writeback := opcode&0x00200000 == 0x00200000
	load := opcode&0x00100000 == 0x00100000

	rn := int(opcode >> 16 & 0x0f)
	rd := int(opcode >> 12 & 0x0f)

	var offset uint32
	if opcode&0x02000000 == 0x02000000 {
		// register offset, shifted by an immediate amount
		offset, _, _ = cp.shifterOperand(opcode &^ 0x00000010)
	} else {
		offset = opcode & 0x0fff
	}

	addr := cp.Regs.R[rn]
	updated := addr
	if up {
		updated += offset
	} else {
		updated -= offset
	}
	if pre {
		addr = updated
	}

	cycles := 2

	if load {
		var v uint32
		if byteAccess {
			v = uint32(cp.bus.Read8(addr))
		} else {
			v = readRotated(cp.bus, addr)
		}

		// writeback happens before the loaded value lands in the base
		if writeback || !pre {
			cp.Regs.R[rn] = updated
		}

		cp.setReg(rd, v)
		cycles = 3
		if rd == 15 {
			cycles += 2
		}
	} else {
		v := cp.Regs.R[rd]
		if rd == 15 {
			// stores of the PC see it a fetch further ahead
			v += 4
		}

		if byteAccess {
			cp.bus.Write8(addr, uint8(v))
		} else {
			cp.bus.Write32(addr, v)
		}

		if writeback || !pre {
			cp.Regs.R[rn] = updated
		}
	}

	return cycles
}

func (cp *CPU) armHalfwordTransfer(opcode uint32) int {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	writeback := opcode&0x00200000 == 0x00200000
	load := opcode&0x00100000 == 0x00100000

	rn := int(opcode >> 16 & 0x0f)
	rd := int(opcode >> 12 & 0x0f)

	var offset uint32
	if opcode&0x00400000 == 0x00400000 {
		offset = opcode>>4&0xf0 | opcode&0x0f
	} else {
		offset = cp.Regs.R[int(opcode&0x0f)]
	}

	addr := cp.Regs.R[rn]
	updated := addr
	if up {
		updated += offset
	} else {
		updated -= offset
	}
	if pre {
		addr = updated
	}

	cycles := 2

	if load {
		var v uint32
		switch opcode >> 5 & 0x03 {
		case 1: // unsigned halfword. a misaligned read rotates
			v = uint32(cp.bus.Read16(addr))
			v = bits.RotateLeft32(v, -8*int(addr&0x01))
		case 2: // signed byte
			v = uint32(int32(int8(cp.bus.Read8(addr))))
		case 3: // signed halfword. a misaligned read sees a signed byte
			if addr&0x01 == 0x01 {
				v = uint32(int32(int8(cp.bus.Read8(addr))))
			} else {
				v = uint32(int32(int16(cp.bus.Read16(addr))))
			}
		}

		if writeback || !pre {
			cp.Regs.R[rn] = updated
		}

		cp.setReg(rd, v)
		cycles = 3
		if rd == 15 {
			cycles += 2
		}
	} else {
		// only STRH exists; the signed forms are load-only
		v := cp.Regs.R[rd]
		if rd == 15 {
			v += 4
		}
		cp.bus.Write16(addr, uint16(v))

		if writeback || !pre {
			cp.Regs.R[rn] = updated
		}
	}

	return cycles
}

func (cp *CPU) armBlockTransfer(opcode uint32) int {
	pre := opcode&0x01000000 == 0x01000000
	up := opcode&0x00800000 == 0x00800000
	psr := opcode&0x00400000 == 0x00400000
	writeback := opcode&0x00200000 == 0x00200000
	load := opcode&0x00100000 == 0x00100000

	rn := int(opcode >> 16 & 0x0f)
	list := opcode & 0xffff

	// an empty register list transfers R15 only but moves the base as if
	// all sixteen registers had been named
	n := bits.OnesCount32(list)
	baseShift := uint32(n) * 4
	if list == 0 {
		list = 0x8000
		n = 1
		baseShift = 0x40
	}

	base := cp.Regs.R[rn]

	// lowest numbered register sits at the lowest address
	addr := base
	if !up {
		addr -= baseShift
	}
	if pre == up {
		addr += 4
	}

	var updated uint32
	if up {
		updated = base + baseShift
	} else {
		updated = base - baseShift
	}

	// user bank transfer for the S bit forms that do not restore the CPSR
	userBank := psr && !(load && list&0x8000 == 0x8000)

	first := true
	for i := 0; i < 16; i++ {
		if list&(1<<i) == 0 {
			continue
		}

		if load {
			v := cp.bus.Read32(addr)
			if userBank {
				cp.Regs.setUserReg(i, v)
			} else if i == 15 {
				// restore the CPSR before the branch so that the new
				// Thumb state aligns the target
				if psr {
					cp.Regs.SetCPSR(cp.Regs.SPSR())
				}
				cp.branch(v)
			} else {
				cp.Regs.R[i] = v
			}
		} else {
			var v uint32
			if userBank {
				v = cp.Regs.userReg(i)
			} else {
				v = cp.Regs.R[i]
			}
			if i == 15 {
				v += 4
			}
			if i == rn && !first {
				// a stored base register after the first slot sees the
				// written back value
				v = updated
			}
			cp.bus.Write32(addr, v)
		}

		addr += 4
		first = false
	}

	if writeback {
		if load && list&(1<<rn) != 0 {
			// the loaded value wins over the writeback
		} else {
			cp.Regs.R[rn] = updated
		}
	}

	cycles := n + 1
	if load {
		cycles = n + 2
		if list&0x8000 == 0x8000 {
			cycles += 2
		}
	}

	return cycles
}
