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
	"bytes"
	"testing"

	"github.com/gopheradvance/gopheradvance/hardware/cpu"
	"github.com/gopheradvance/gopheradvance/test"
)

// a flat RAM covering the whole address space
type testBus struct {
	mem map[uint32]uint8
}

func newTestBus() *testBus {
	return &testBus{mem: make(map[uint32]uint8)}
}

func (b *testBus) Read8(address uint32) uint8 {
	return b.mem[address]
}

func (b *testBus) Read16(address uint32) uint16 {
	address &^= 0x01
	return uint16(b.mem[address]) | uint16(b.mem[address+1])<<8
}

func (b *testBus) Read32(address uint32) uint32 {
	address &^= 0x03
	return uint32(b.Read16(address)) | uint32(b.Read16(address+2))<<16
}

func (b *testBus) Fetch16(address uint32) uint16 {
	return b.Read16(address)
}

func (b *testBus) Fetch32(address uint32) uint32 {
	return b.Read32(address)
}

func (b *testBus) Write8(address uint32, data uint8) {
	b.mem[address] = data
}

func (b *testBus) Write16(address uint32, data uint16) {
	address &^= 0x01
	b.mem[address] = uint8(data)
	b.mem[address+1] = uint8(data >> 8)
}

func (b *testBus) Write32(address uint32, data uint32) {
	address &^= 0x03
	b.Write16(address, uint16(data))
	b.Write16(address+2, uint16(data>>16))
}

// lay a program down in memory, one word per instruction, starting at the
// reset vector
func program(b *testBus, opcodes ...uint32) {
	for i, op := range opcodes {
		b.Write32(uint32(i)*4, op)
	}
}

func run(cp *cpu.CPU, n int) {
	for i := 0; i < n; i++ {
		cp.Step()
	}
}

func TestDataProcessing(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00001, // MOV r0, #1
		0xe0801000, // ADD r1, r0, r0
		0xe0412000, // SUB r2, r1, r0
		0xe1a03100, // MOV r3, r0, LSL #2
	)

	cp := cpu.NewCPU(b)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[0], uint32(1))
	test.Equate(t, cp.Regs.R[1], uint32(2))
	test.Equate(t, cp.Regs.R[2], uint32(1))
	test.Equate(t, cp.Regs.R[3], uint32(4))
}

func TestFlags(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00001, // MOV r0, #1
		0xe3500001, // CMP r0, #1
		0xe3500002, // CMP r0, #2
	)

	cp := cpu.NewCPU(b)
	run(cp, 2)
	test.Equate(t, cp.Regs.CPSR&cpu.FlagZ, cpu.FlagZ)
	test.Equate(t, cp.Regs.CPSR&cpu.FlagC, cpu.FlagC)

	cp.Step()
	test.Equate(t, cp.Regs.CPSR&cpu.FlagZ, uint32(0))
	test.Equate(t, cp.Regs.CPSR&cpu.FlagN, cpu.FlagN)

	// carry clear means borrow on a subtract
	test.Equate(t, cp.Regs.CPSR&cpu.FlagC, uint32(0))
}

func TestConditionCodes(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00000, // MOV r0, #0
		0xe3500000, // CMP r0, #0
		0x03a01001, // MOVEQ r1, #1
		0x13a02001, // MOVNE r2, #1
	)

	cp := cpu.NewCPU(b)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[1], uint32(1))
	test.Equate(t, cp.Regs.R[2], uint32(0))
}

func TestBranch(t *testing.T) {
	b := newTestBus()
	program(b,
		0xea000000, // B +0 (lands two fetches ahead)
	)

	cp := cpu.NewCPU(b)
	cycles := cp.Step()

	test.Equate(t, cp.Regs.R[15], uint32(8))
	test.Equate(t, cycles, 3)
}

func TestBranchWithLink(t *testing.T) {
	b := newTestBus()
	program(b,
		0xeb000001, // BL +4
	)

	cp := cpu.NewCPU(b)
	cp.Step()

	test.Equate(t, cp.Regs.R[15], uint32(12))
	test.Equate(t, cp.Regs.R[14], uint32(4))
}

func TestLoadStore(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00c01, // MOV r0, #0x100
		0xe5901000, // LDR r1, [r0]
		0xe5800004, // STR r0, [r0, #4]
		0xe5d02000, // LDRB r2, [r0]
	)
	b.Write32(0x100, 0xcafe0042)

	cp := cpu.NewCPU(b)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[1], uint32(0xcafe0042))
	test.Equate(t, b.Read32(0x104), uint32(0x100))
	test.Equate(t, cp.Regs.R[2], uint32(0x42))
}

func TestMisalignedLoad(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00c01, // MOV r0, #0x100
		0xe5901001, // LDR r1, [r0, #1]
	)
	b.Write32(0x100, 0x11223344)

	cp := cpu.NewCPU(b)
	run(cp, 2)

	// the addressed byte rotates into the low lane
	test.Equate(t, cp.Regs.R[1], uint32(0x44112233))
}

func TestHalfwordTransfer(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00c01, // MOV r0, #0x100
		0xe1d010b0, // LDRH r1, [r0]
		0xe1d020d2, // LDRSB r2, [r0, #2]
		0xe1c030b4, // STRH r3, [r0, #4]
	)
	b.Write32(0x100, 0x00ff8001)

	cp := cpu.NewCPU(b)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[1], uint32(0x8001))
	test.Equate(t, cp.Regs.R[2], uint32(0xffffffff))
	test.Equate(t, b.Read16(0x104), 0)
}

func TestMultiply(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a01007, // MOV r1, #7
		0xe3a02006, // MOV r2, #6
		0xe0000291, // MUL r0, r1, r2
	)

	cp := cpu.NewCPU(b)
	run(cp, 3)

	test.Equate(t, cp.Regs.R[0], uint32(42))
}

func TestBlockTransfer(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a0d601, // MOV r13, #0x100000
		0xe3a00001, // MOV r0, #1
		0xe3a01002, // MOV r1, #2
		0xe92d0003, // STMDB r13!, {r0, r1}
		0xe3a00000, // MOV r0, #0
		0xe3a01000, // MOV r1, #0
		0xe8bd0003, // LDMIA r13!, {r0, r1}
	)

	cp := cpu.NewCPU(b)
	run(cp, 4)

	test.Equate(t, cp.Regs.R[13], uint32(0x100000-8))
	test.Equate(t, b.Read32(0x100000-8), uint32(1))
	test.Equate(t, b.Read32(0x100000-4), uint32(2))

	run(cp, 3)
	test.Equate(t, cp.Regs.R[0], uint32(1))
	test.Equate(t, cp.Regs.R[1], uint32(2))
	test.Equate(t, cp.Regs.R[13], uint32(0x100000))
}

func TestSoftwareInterrupt(t *testing.T) {
	b := newTestBus()
	program(b,
		0xef000000, // SWI 0
	)

	cp := cpu.NewCPU(b)
	old := cp.Regs.CPSR
	cp.Step()

	test.Equate(t, cp.Regs.R[15], uint32(0x08))
	test.Equate(t, cp.Regs.R[14], uint32(4))
	test.Equate(t, cp.Regs.Mode(), cpu.ModeSupervisor)
	test.Equate(t, cp.Regs.SPSR(), old)
}

func TestIRQ(t *testing.T) {
	b := newTestBus()
	cp := cpu.NewCPU(b)

	// interrupts are disabled out of reset
	test.Equate(t, cp.IRQ(), false)

	cp.Regs.SetCPSR(cp.Regs.CPSR &^ cpu.DisableIRQ)
	cp.Regs.R[15] = 0x200

	test.Equate(t, cp.IRQ(), true)
	test.Equate(t, cp.Regs.R[15], uint32(0x18))
	test.Equate(t, cp.Regs.R[14], uint32(0x204))
	test.Equate(t, cp.Regs.Mode(), cpu.ModeIRQ)
}

func TestBankedRegisters(t *testing.T) {
	b := newTestBus()
	cp := cpu.NewCPU(b)

	// supervisor mode out of reset
	cp.Regs.R[13] = 0x1000

	cp.Regs.SetCPSR(cp.Regs.CPSR&^0x1f | cpu.ModeIRQ)
	cp.Regs.R[13] = 0x2000

	cp.Regs.SetCPSR(cp.Regs.CPSR&^0x1f | cpu.ModeSystem)
	cp.Regs.R[13] = 0x3000

	cp.Regs.SetCPSR(cp.Regs.CPSR&^0x1f | cpu.ModeSupervisor)
	test.Equate(t, cp.Regs.R[13], uint32(0x1000))

	cp.Regs.SetCPSR(cp.Regs.CPSR&^0x1f | cpu.ModeIRQ)
	test.Equate(t, cp.Regs.R[13], uint32(0x2000))

	cp.Regs.SetCPSR(cp.Regs.CPSR&^0x1f | cpu.ModeUser)
	test.Equate(t, cp.Regs.R[13], uint32(0x3000))
}

func TestStateRoundTrip(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe3a00001, // MOV r0, #1
		0xe3a01002, // MOV r1, #2
		0xef000000, // SWI 0
	)

	cp := cpu.NewCPU(b)
	run(cp, 3)

	buf := &bytes.Buffer{}
	err := cp.WriteState(buf)
	if err != nil {
		t.Fatal(err)
	}

	np := cpu.NewCPU(b)
	err = np.ReadState(buf)
	if err != nil {
		t.Fatal(err)
	}

	test.Equate(t, np.Regs.R[0], uint32(1))
	test.Equate(t, np.Regs.R[1], uint32(2))
	test.Equate(t, np.Regs.R[15], cp.Regs.R[15])
	test.Equate(t, np.Regs.CPSR, cp.Regs.CPSR)
	test.Equate(t, np.Regs.SPSR(), cp.Regs.SPSR())
}

func TestUndefinedInstruction(t *testing.T) {
	b := newTestBus()
	program(b,
		0xe7f000f0, // an undefined extension space encoding
	)

	cp := cpu.NewCPU(b)
	cp.Step()

	test.Equate(t, cp.LastResult.Undefined, true)
	test.Equate(t, cp.Regs.R[15], uint32(0x04))
	test.Equate(t, cp.Regs.Mode(), cpu.ModeUndefined)
}
