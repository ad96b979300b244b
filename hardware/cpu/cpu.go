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

// Package cpu implements the ARM7TDMI core of the Game Boy Advance: the
// full ARM and Thumb instruction sets of the ARMv4T architecture, the
// banked register files of the six processor modes, and the exception
// model.
//
// The two stage prefetch pipeline of the real core is modelled by keeping
// the visible value of R15 two fetches ahead of the executing instruction
// whenever an instruction reads it. The pipeline itself is not emulated;
// its effect on instruction timing is folded into the per-instruction
// cycle counts, which follow the documented ARM7TDMI cycle table with
// every memory access costing a single cycle. Wait states are the
// business of the bus.
package cpu

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gopheradvance/gopheradvance/logger"
)

// Bus is the memory bus the CPU fetches and loads through.
type Bus interface {
	Read8(address uint32) uint8
	Read16(address uint32) uint16
	Read32(address uint32) uint32

	// instruction fetches are distinguished from data reads so the bus
	// can maintain its prefetch latches
	Fetch16(address uint32) uint16
	Fetch32(address uint32) uint32

	Write8(address uint32, data uint8)
	Write16(address uint32, data uint16)
	Write32(address uint32, data uint32)
}

// exception vectors
const (
	vectorReset     = uint32(0x00000000)
	vectorUndefined = uint32(0x00000004)
	vectorSWI       = uint32(0x00000008)
	vectorIRQ       = uint32(0x00000018)
)

// Result records the last instruction executed by the CPU. Useful for
// debugging tools; the emulation itself only uses the cycle count.
type Result struct {
	Address   uint32
	Opcode    uint32
	Thumb     bool
	Cycles    int
	Undefined bool
}

func (res Result) String() string {
	if res.Thumb {
		return fmt.Sprintf("%08x  %04x", res.Address, res.Opcode)
	}
	return fmt.Sprintf("%08x  %08x", res.Address, res.Opcode)
}

// CPU implements the ARM7TDMI core.
type CPU struct {
	bus Bus

	// Regs is exported for the benefit of the savestate package and of
	// debugging tools
	Regs Registers

	// LastResult records the most recently executed instruction
	LastResult Result

	// set by any instruction that writes to R15. when clear at the end of
	// an instruction the PC simply moves to the next instruction
	pcWritten bool
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(bus Bus) *CPU {
	cp := &CPU{bus: bus}
	cp.Reset()
	return cp
}

// Snapshot creates a copy of the CPU in its current state.
func (cp *CPU) Snapshot() *CPU {
	n := *cp
	return &n
}

// Plumb a new bus implementation into the CPU.
func (cp *CPU) Plumb(bus Bus) {
	cp.bus = bus
}

// Reset the CPU. The core comes up in supervisor mode with interrupts
// disabled and the PC at the reset vector.
func (cp *CPU) Reset() {
	cp.Regs = Registers{}
	cp.Regs.CPSR = ModeSupervisor | DisableIRQ | DisableFIQ
	cp.Regs.R[15] = vectorReset
	cp.LastResult = Result{}
}

func (cp *CPU) String() string {
	return cp.Regs.String()
}

// Step fetches and executes one instruction, returning the number of
// cycles consumed.
func (cp *CPU) Step() int {
	addr := cp.Regs.R[15]
	cp.pcWritten = false

	if cp.Regs.Thumb() {
		opcode := cp.bus.Fetch16(addr &^ 0x01)
		cp.LastResult = Result{Address: addr, Opcode: uint32(opcode), Thumb: true}

		// the visible PC is two fetches ahead during execution
		cp.Regs.R[15] = addr + 4

		cp.LastResult.Cycles = cp.executeThumb(opcode)
		if !cp.pcWritten {
			cp.Regs.R[15] = addr + 2
		}
	} else {
		opcode := cp.bus.Fetch32(addr &^ 0x03)
		cp.LastResult = Result{Address: addr, Opcode: opcode}

		cp.Regs.R[15] = addr + 8

		cp.LastResult.Cycles = cp.executeARM(opcode)
		if !cp.pcWritten {
			cp.Regs.R[15] = addr + 4
		}
	}

	return cp.LastResult.Cycles
}

// write to a register by number. a write to R15 is a branch
func (cp *CPU) setReg(i int, v uint32) {
	if i == 15 {
		cp.branch(v)
		return
	}
	cp.Regs.R[i] = v
}

func (cp *CPU) branch(v uint32) {
	if cp.Regs.Thumb() {
		v &^= 0x01
	} else {
		v &^= 0x03
	}
	cp.Regs.R[15] = v
	cp.pcWritten = true
}

// enter an exception: save the CPSR, switch mode, disable IRQ, drop to
// ARM state and jump to the vector
func (cp *CPU) exception(mode uint32, vector uint32, lr uint32) {
	spsr := cp.Regs.CPSR
	cp.Regs.SetCPSR(cp.Regs.CPSR&^(maskMode|FlagThumb) | mode | DisableIRQ)
	cp.Regs.SetSPSR(spsr)
	cp.Regs.R[14] = lr
	cp.Regs.R[15] = vector
	cp.pcWritten = true
}

// IRQ asks the CPU to take the interrupt exception. It returns false,
// without any effect, when the I bit of the CPSR is set.
//
// It should be called between instructions, when the PC rests on the next
// instruction to execute.
func (cp *CPU) IRQ() bool {
	if cp.Regs.CPSR&DisableIRQ == DisableIRQ {
		return false
	}

	// the handler returns with SUBS PC,LR,#4 regardless of the state the
	// core was interrupted in
	cp.exception(ModeIRQ, vectorIRQ, cp.Regs.R[15]+4)
	return true
}

// the address of the instruction after the one currently executing.
// only meaningful during execution, when R15 is two fetches ahead
func (cp *CPU) nextPC() uint32 {
	if cp.Regs.Thumb() {
		return cp.Regs.R[15] - 2
	}
	return cp.Regs.R[15] - 4
}

func (cp *CPU) softwareInterrupt() int {
	cp.exception(ModeSupervisor, vectorSWI, cp.nextPC())
	return 3
}

func (cp *CPU) undefined() int {
	cp.LastResult.Undefined = true
	logger.Logf(logger.Allow, "cpu", "undefined instruction %s", cp.LastResult.String())
	cp.exception(ModeUndefined, vectorUndefined, cp.nextPC())
	return 3
}

// WriteState writes the register file to the io.Writer. Used by the
// savestate package.
func (cp *CPU) WriteState(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, cp.Regs)
}

// ReadState reads a state previously written with WriteState() into the
// CPU.
func (cp *CPU) ReadState(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &cp.Regs)
}
