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

// executeThumb decodes and executes a single Thumb instruction, returning
// the number of cycles consumed.
func (cp *CPU) executeThumb(opcode uint16) int {
	switch opcode >> 13 {
	case 0:
		if opcode>>11&0x03 == 0x03 {
			return cp.thumbAddSubtract(opcode)
		}
		return cp.thumbShifted(opcode)

	case 1:
		return cp.thumbImmediate(opcode)

	case 2:
		switch {
		case opcode>>10 == 0x10:
			return cp.thumbALU(opcode)
		case opcode>>10 == 0x11:
			return cp.thumbHiRegister(opcode)
		case opcode>>11 == 0x09:
			return cp.thumbPCRelativeLoad(opcode)
		case opcode&0x0200 == 0:
			return cp.thumbRegisterTransfer(opcode)
		}
		return cp.thumbSignedTransfer(opcode)

	case 3:
		return cp.thumbImmediateTransfer(opcode)

	case 4:
		if opcode&0x1000 == 0 {
			return cp.thumbHalfwordTransfer(opcode)
		}
		return cp.thumbStackTransfer(opcode)

	case 5:
		if opcode&0x1000 == 0 {
			return cp.thumbLoadAddress(opcode)
		}
		return cp.thumbStackOps(opcode)

	case 6:
		if opcode&0x1000 == 0 {
			return cp.thumbMultipleTransfer(opcode)
		}
		return cp.thumbConditionalBranch(opcode)
	}

	switch opcode >> 11 & 0x03 {
	case 0:
		return cp.thumbBranch(opcode)
	case 2:
		return cp.thumbLongBranchHigh(opcode)
	case 3:
		return cp.thumbLongBranchLow(opcode)
	}

	// 0xe800 is the BLX prefix of later architectures
	return cp.undefined()
}

// move shifted register: LSL/LSR/ASR with an immediate shift amount
func (cp *CPU) thumbShifted(opcode uint16) int {
	rd := int(opcode & 0x07)
	v := cp.Regs.R[int(opcode>>3&0x07)]
	amount := uint32(opcode >> 6 & 0x1f)

	carry := cp.Regs.flag(FlagC)
	var res uint32

	switch opcode >> 11 & 0x03 {
	case 0: // LSL
		res = v
		if amount > 0 {
			res = v << amount
			carry = v>>(32-amount)&0x01 == 0x01
		}
	case 1: // LSR. a zero amount encodes a shift of 32
		if amount == 0 {
			res = 0
			carry = v&0x80000000 == 0x80000000
		} else {
			res = v >> amount
			carry = v>>(amount-1)&0x01 == 0x01
		}
	case 2: // ASR. a zero amount encodes a shift of 32
		if amount == 0 {
			res = uint32(int32(v) >> 31)
			carry = v&0x80000000 == 0x80000000
		} else {
			res = uint32(int32(v) >> amount)
			carry = v>>(amount-1)&0x01 == 0x01
		}
	}

	cp.Regs.R[rd] = res
	cp.setNZ(res)
	cp.Regs.setFlag(FlagC, carry)
	return 1
}

// add/subtract a register or a 3bit immediate
func (cp *CPU) thumbAddSubtract(opcode uint16) int {
	rd := int(opcode & 0x07)
	op1 := cp.Regs.R[int(opcode>>3&0x07)]

	var op2 uint32
	if opcode&0x0400 == 0x0400 {
		op2 = uint32(opcode >> 6 & 0x07)
	} else {
		op2 = cp.Regs.R[int(opcode>>6&0x07)]
	}

	var res uint32
	var carry, overflow bool
	if opcode&0x0200 == 0x0200 {
		res, carry, overflow = sub(op1, op2, true)
	} else {
		res, carry, overflow = add(op1, op2, false)
	}

	cp.Regs.R[rd] = res
	cp.setNZ(res)
	cp.Regs.setFlag(FlagC, carry)
	cp.Regs.setFlag(FlagV, overflow)
	return 1
}

// MOV/CMP/ADD/SUB with an 8bit immediate
func (cp *CPU) thumbImmediate(opcode uint16) int {
	rd := int(opcode >> 8 & 0x07)
	imm := uint32(opcode & 0xff)

	switch opcode >> 11 & 0x03 {
	case 0: // MOV
		cp.Regs.R[rd] = imm
		cp.setNZ(imm)
	case 1: // CMP
		res, carry, overflow := sub(cp.Regs.R[rd], imm, true)
		cp.setNZ(res)
		cp.Regs.setFlag(FlagC, carry)
		cp.Regs.setFlag(FlagV, overflow)
	case 2: // ADD
		res, carry, overflow := add(cp.Regs.R[rd], imm, false)
		cp.Regs.R[rd] = res
		cp.setNZ(res)
		cp.Regs.setFlag(FlagC, carry)
		cp.Regs.setFlag(FlagV, overflow)
	case 3: // SUB
		res, carry, overflow := sub(cp.Regs.R[rd], imm, true)
		cp.Regs.R[rd] = res
		cp.setNZ(res)
		cp.Regs.setFlag(FlagC, carry)
		cp.Regs.setFlag(FlagV, overflow)
	}

	return 1
}

// the register-to-register ALU operations
func (cp *CPU) thumbALU(opcode uint16) int {
	rd := int(opcode & 0x07)
	op1 := cp.Regs.R[rd]
	op2 := cp.Regs.R[int(opcode>>3&0x07)]

	carry := cp.Regs.flag(FlagC)
	cycles := 1

	var res uint32
	write := true
	arithmetic := false
	var aCarry, aOverflow bool

	switch opcode >> 6 & 0x0f {
	case 0x0: // AND
		res = op1 & op2
	case 0x1: // EOR
		res = op1 ^ op2
	case 0x2: // LSL
		amount := op2 & 0xff
		res = op1
		switch {
		case amount == 0:
		case amount < 32:
			res = op1 << amount
			carry = op1>>(32-amount)&0x01 == 0x01
		case amount == 32:
			res = 0
			carry = op1&0x01 == 0x01
		default:
			res = 0
			carry = false
		}
		cycles = 2
	case 0x3: // LSR
		amount := op2 & 0xff
		res = op1
		switch {
		case amount == 0:
		case amount < 32:
			res = op1 >> amount
			carry = op1>>(amount-1)&0x01 == 0x01
		case amount == 32:
			res = 0
			carry = op1&0x80000000 == 0x80000000
		default:
			res = 0
			carry = false
		}
		cycles = 2
	case 0x4: // ASR
		amount := op2 & 0xff
		res = op1
		if amount > 0 {
			if amount >= 32 {
				res = uint32(int32(op1) >> 31)
				carry = op1&0x80000000 == 0x80000000
			} else {
				res = uint32(int32(op1) >> amount)
				carry = op1>>(amount-1)&0x01 == 0x01
			}
		}
		cycles = 2
	case 0x5: // ADC
		res, aCarry, aOverflow = add(op1, op2, carry)
		arithmetic = true
	case 0x6: // SBC
		res, aCarry, aOverflow = sub(op1, op2, carry)
		arithmetic = true
	case 0x7: // ROR
		amount := op2 & 0xff
		res = op1
		if amount > 0 {
			amount &= 0x1f
			if amount == 0 {
				carry = op1&0x80000000 == 0x80000000
			} else {
				res = bits.RotateLeft32(op1, -int(amount))
				carry = op1>>(amount-1)&0x01 == 0x01
			}
		}
		cycles = 2
	case 0x8: // TST
		res = op1 & op2
		write = false
	case 0x9: // NEG
		res, aCarry, aOverflow = sub(0, op2, true)
		arithmetic = true
	case 0xa: // CMP
		res, aCarry, aOverflow = sub(op1, op2, true)
		arithmetic = true
		write = false
	case 0xb: // CMN
		res, aCarry, aOverflow = add(op1, op2, false)
		arithmetic = true
		write = false
	case 0xc: // ORR
		res = op1 | op2
	case 0xd: // MUL
		res = op1 * op2
		cycles = 1 + multiplierCycles(op1)
	case 0xe: // BIC
		res = op1 &^ op2
	case 0xf: // MVN
		res = ^op2
	}

	if write {
		cp.Regs.R[rd] = res
	}

	cp.setNZ(res)
	if arithmetic {
		cp.Regs.setFlag(FlagC, aCarry)
		cp.Regs.setFlag(FlagV, aOverflow)
	} else {
		cp.Regs.setFlag(FlagC, carry)
	}

	return cycles
}

// ADD/CMP/MOV on the full register range, and BX
func (cp *CPU) thumbHiRegister(opcode uint16) int {
	rd := int(opcode&0x07 | opcode>>4&0x08)
	rs := int(opcode >> 3 & 0x0f)

	op2 := cp.Regs.R[rs]

	switch opcode >> 8 & 0x03 {
	case 0: // ADD without flags
		cp.setReg(rd, cp.Regs.R[rd]+op2)
		if rd == 15 {
			return 3
		}
	case 1: // CMP
		res, carry, overflow := sub(cp.Regs.R[rd], op2, true)
		cp.setNZ(res)
		cp.Regs.setFlag(FlagC, carry)
		cp.Regs.setFlag(FlagV, overflow)
	case 2: // MOV without flags
		cp.setReg(rd, op2)
		if rd == 15 {
			return 3
		}
	case 3: // BX
		cp.Regs.setFlag(FlagThumb, op2&0x01 == 0x01)
		cp.branch(op2)
		return 3
	}

	return 1
}

func (cp *CPU) thumbPCRelativeLoad(opcode uint16) int {
	rd := int(opcode >> 8 & 0x07)
	addr := cp.Regs.R[15]&^0x03 + uint32(opcode&0xff)*4
	cp.Regs.R[rd] = cp.bus.Read32(addr)
	return 3
}

// load/store with a register offset
func (cp *CPU) thumbRegisterTransfer(opcode uint16) int {
	rd := int(opcode & 0x07)
	addr := cp.Regs.R[int(opcode>>3&0x07)] + cp.Regs.R[int(opcode>>6&0x07)]

	switch opcode >> 10 & 0x03 {
	case 0: // STR
		cp.bus.Write32(addr, cp.Regs.R[rd])
		return 2
	case 1: // STRB
		cp.bus.Write8(addr, uint8(cp.Regs.R[rd]))
		return 2
	case 2: // LDR
		cp.Regs.R[rd] = readRotated(cp.bus, addr)
	case 3: // LDRB
		cp.Regs.R[rd] = uint32(cp.bus.Read8(addr))
	}

	return 3
}

// load/store sign-extended byte/halfword with a register offset
func (cp *CPU) thumbSignedTransfer(opcode uint16) int {
	rd := int(opcode & 0x07)
	addr := cp.Regs.R[int(opcode>>3&0x07)] + cp.Regs.R[int(opcode>>6&0x07)]

	switch opcode >> 10 & 0x03 {
	case 0: // STRH
		cp.bus.Write16(addr, uint16(cp.Regs.R[rd]))
		return 2
	case 1: // LDSB
		cp.Regs.R[rd] = uint32(int32(int8(cp.bus.Read8(addr))))
	case 2: // LDRH. a misaligned read rotates
		v := uint32(cp.bus.Read16(addr))
		cp.Regs.R[rd] = bits.RotateLeft32(v, -8*int(addr&0x01))
	case 3: // LDSH. a misaligned read sees a signed byte
		if addr&0x01 == 0x01 {
			cp.Regs.R[rd] = uint32(int32(int8(cp.bus.Read8(addr))))
		} else {
			cp.Regs.R[rd] = uint32(int32(int16(cp.bus.Read16(addr))))
		}
	}

	return 3
}

// load/store with a 5bit immediate offset
func (cp *CPU) thumbImmediateTransfer(opcode uint16) int {
	rd := int(opcode & 0x07)
	rb := int(opcode >> 3 & 0x07)
	imm := uint32(opcode >> 6 & 0x1f)

	switch opcode >> 11 & 0x03 {
	case 0: // STR
		cp.bus.Write32(cp.Regs.R[rb]+imm*4, cp.Regs.R[rd])
		return 2
	case 1: // LDR
		cp.Regs.R[rd] = readRotated(cp.bus, cp.Regs.R[rb]+imm*4)
	case 2: // STRB
		cp.bus.Write8(cp.Regs.R[rb]+imm, uint8(cp.Regs.R[rd]))
		return 2
	case 3: // LDRB
		cp.Regs.R[rd] = uint32(cp.bus.Read8(cp.Regs.R[rb] + imm))
	}

	return 3
}

// load/store halfword with a 5bit immediate offset
func (cp *CPU) thumbHalfwordTransfer(opcode uint16) int {
	rd := int(opcode & 0x07)
	addr := cp.Regs.R[int(opcode>>3&0x07)] + uint32(opcode>>6&0x1f)*2

	if opcode&0x0800 == 0x0800 {
		v := uint32(cp.bus.Read16(addr))
		cp.Regs.R[rd] = bits.RotateLeft32(v, -8*int(addr&0x01))
		return 3
	}

	cp.bus.Write16(addr, uint16(cp.Regs.R[rd]))
	return 2
}

// load/store relative to the stack pointer
func (cp *CPU) thumbStackTransfer(opcode uint16) int {
	rd := int(opcode >> 8 & 0x07)
	addr := cp.Regs.R[13] + uint32(opcode&0xff)*4

	if opcode&0x0800 == 0x0800 {
		cp.Regs.R[rd] = readRotated(cp.bus, addr)
		return 3
	}

	cp.bus.Write32(addr, cp.Regs.R[rd])
	return 2
}

// ADD rd, PC/SP, #imm
func (cp *CPU) thumbLoadAddress(opcode uint16) int {
	rd := int(opcode >> 8 & 0x07)
	imm := uint32(opcode&0xff) * 4

	if opcode&0x0800 == 0x0800 {
		cp.Regs.R[rd] = cp.Regs.R[13] + imm
	} else {
		cp.Regs.R[rd] = cp.Regs.R[15]&^0x03 + imm
	}

	return 1
}

// the remaining stack operations: SP adjustment and PUSH/POP
func (cp *CPU) thumbStackOps(opcode uint16) int {
	switch {
	case opcode&0x0f00 == 0x0000:
		// ADD SP, #±imm
		imm := uint32(opcode&0x7f) * 4
		if opcode&0x0080 == 0x0080 {
			cp.Regs.R[13] -= imm
		} else {
			cp.Regs.R[13] += imm
		}
		return 1

	case opcode&0x0e00 == 0x0400:
		return cp.thumbPush(opcode)

	case opcode&0x0e00 == 0x0c00:
		return cp.thumbPop(opcode)
	}

	return cp.undefined()
}

func (cp *CPU) thumbPush(opcode uint16) int {
	list := uint32(opcode & 0xff)

	n := bits.OnesCount32(list)
	if opcode&0x0100 == 0x0100 {
		n++
	}

	addr := cp.Regs.R[13] - uint32(n)*4
	cp.Regs.R[13] = addr

	for i := 0; i < 8; i++ {
		if list&(1<<i) != 0 {
			cp.bus.Write32(addr, cp.Regs.R[i])
			addr += 4
		}
	}

	if opcode&0x0100 == 0x0100 {
		cp.bus.Write32(addr, cp.Regs.R[14])
	}

	return n + 1
}

func (cp *CPU) thumbPop(opcode uint16) int {
	list := uint32(opcode & 0xff)

	addr := cp.Regs.R[13]
	n := 0

	for i := 0; i < 8; i++ {
		if list&(1<<i) != 0 {
			cp.Regs.R[i] = cp.bus.Read32(addr)
			addr += 4
			n++
		}
	}

	cycles := n + 2

	if opcode&0x0100 == 0x0100 {
		cp.branch(cp.bus.Read32(addr))
		addr += 4
		n++
		cycles = n + 4
	}

	cp.Regs.R[13] = addr
	return cycles
}

func (cp *CPU) thumbMultipleTransfer(opcode uint16) int {
	rb := int(opcode >> 8 & 0x07)
	list := uint32(opcode & 0xff)
	load := opcode&0x0800 == 0x0800

	// an empty register list transfers R15 only but moves the base as if
	// all sixteen registers had been named
	n := bits.OnesCount32(list)
	baseShift := uint32(n) * 4
	transferPC := false
	if list == 0 {
		transferPC = true
		n = 1
		baseShift = 0x40
	}

	base := cp.Regs.R[rb]
	addr := base
	updated := base + baseShift

	if transferPC {
		if load {
			cp.branch(cp.bus.Read32(addr))
		} else {
			cp.bus.Write32(addr, cp.Regs.R[15]+2)
		}
		cp.Regs.R[rb] = updated
		return n + 2
	}

	first := true
	for i := 0; i < 8; i++ {
		if list&(1<<i) == 0 {
			continue
		}

		if load {
			cp.Regs.R[i] = cp.bus.Read32(addr)
		} else {
			v := cp.Regs.R[i]
			if i == rb && !first {
				v = updated
			}
			cp.bus.Write32(addr, v)
		}

		addr += 4
		first = false
	}

	if !(load && list&(1<<rb) != 0) {
		cp.Regs.R[rb] = updated
	}

	if load {
		return n + 2
	}
	return n + 1
}

func (cp *CPU) thumbConditionalBranch(opcode uint16) int {
	cond := uint32(opcode >> 8 & 0x0f)

	if cond == condNV {
		return cp.softwareInterrupt()
	}
	if cond == condAL {
		// the always encoding is undefined in this format
		return cp.undefined()
	}

	if !cp.condition(cond) {
		return 1
	}

	offset := uint32(int32(int8(opcode)) * 2)
	cp.branch(cp.Regs.R[15] + offset)
	return 3
}

func (cp *CPU) thumbBranch(opcode uint16) int {
	// 11bit signed offset in halfwords
	offset := uint32(int32(int16(opcode<<5))>>5) * 2
	cp.branch(cp.Regs.R[15] + offset)
	return 3
}

// the first half of a BL pair: the high part of the target lands in LR
func (cp *CPU) thumbLongBranchHigh(opcode uint16) int {
	offset := uint32(int32(int16(opcode<<5))>>5) << 12
	cp.Regs.R[14] = cp.Regs.R[15] + offset
	return 1
}

// the second half of a BL pair: branch and leave the return address,
// with its Thumb bit set, in LR
func (cp *CPU) thumbLongBranchLow(opcode uint16) int {
	target := cp.Regs.R[14] + uint32(opcode&0x07ff)*2
	cp.Regs.R[14] = cp.nextPC() | 0x01
	cp.branch(target)
	return 3
}
