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

package cpu_test

import (
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/cpu"
	"github.com/gopheradvance/gopheradvance/test"
)

// two words of ARM stub at the reset vector switch the CPU into Thumb state.
// the Thumb program starts at address 8.
func thumbProgram(b *testBus, opcodes ...uint16) *cpu.CPU {
	program(b,
		0xe3a00009, // MOV r0, #9
		0xe12fff10, // BX r0
	)
	for i, op := range opcodes {
		b.Write16(8+uint32(i)*2, op)
	}

	cp := cpu.NewCPU(b)
	run(cp, 2)
	return cp
}

func TestThumbSwitch(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b)

	test.Equate(t, cp.Regs.Thumb(), true)
	test.Equate(t, cp.Regs.R[15], uint32(8))
}

func TestThumbImmediate(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x202a, // MOV r0, #42
		0x3001, // ADD r0, #1
		0x3802, // SUB r0, #2
		0x2829, // CMP r0, #41
	)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[0], uint32(41))
	test.Equate(t, cp.Regs.CPSR&cpu.FlagZ, cpu.FlagZ)
}

func TestThumbShifted(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x2001, // MOV r0, #1
		0x0101, // LSL r1, r0, #4
		0x084a, // LSR r2, r1, #1
	)
	run(cp, 3)

	test.Equate(t, cp.Regs.R[1], uint32(0x10))
	test.Equate(t, cp.Regs.R[2], uint32(0x08))
}

func TestThumbALU(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x20f0, // MOV r0, #0xf0
		0x210f, // MOV r1, #0x0f
		0x43ca, // MVN r2, r1
		0x4008, // AND r0, r1
	)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[0], uint32(0))
	test.Equate(t, cp.Regs.CPSR&cpu.FlagZ, cpu.FlagZ)
	test.Equate(t, cp.Regs.R[2], uint32(0xfffffff0))
}

func TestThumbHiRegister(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x2004, // MOV r0, #4
		0x4680, // MOV r8, r0
		0x4440, // ADD r0, r8
	)
	run(cp, 3)

	test.Equate(t, cp.Regs.R[0], uint32(8))
	test.Equate(t, cp.Regs.R[8], uint32(4))
}

func TestThumbPCRelativeLoad(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x4801, // LDR r0, [PC, #4]
		0x46c0, // MOV r8, r8
	)
	b.Write32(16, 0xdeadbeef)
	cp.Step()

	test.Equate(t, cp.Regs.R[0], uint32(0xdeadbeef))
}

func TestThumbStack(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x2080, // MOV r0, #0x80
		0x0080, // LSL r0, r0, #2
		0x4685, // MOV sp, r0
		0x2001, // MOV r0, #1
		0x2102, // MOV r1, #2
		0xb403, // PUSH {r0, r1}
		0xbc0c, // POP {r2, r3}
	)
	run(cp, 6)

	test.Equate(t, cp.Regs.R[13], uint32(0x1f8))
	test.Equate(t, b.Read32(0x1f8), uint32(1))
	test.Equate(t, b.Read32(0x1fc), uint32(2))

	cp.Step()
	test.Equate(t, cp.Regs.R[13], uint32(0x200))
	test.Equate(t, cp.Regs.R[2], uint32(1))
	test.Equate(t, cp.Regs.R[3], uint32(2))
}

func TestThumbConditionalBranch(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0x2000, // MOV r0, #0
		0x2800, // CMP r0, #0
		0xd000, // BEQ +0 (lands two fetches ahead)
		0x2101, // MOV r1, #1 (skipped)
		0x2201, // MOV r2, #1
	)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[1], uint32(0))
	test.Equate(t, cp.Regs.R[2], uint32(1))
}

func TestThumbBranchLink(t *testing.T) {
	b := newTestBus()
	cp := thumbProgram(b,
		0xf000, // BL prefix
		0xf802, // BL +4
	)
	run(cp, 2)

	test.Equate(t, cp.Regs.R[15], uint32(16))
	test.Equate(t, cp.Regs.R[14], uint32(13))
}
