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

// Package addresses enumerates the hardware registers in the IO area of the
// memory map. The bus uses these values to route register accesses to the
// sub-system that owns the register; the sub-systems use them to identify
// which of their registers is being accessed.
//
// Registers are 16bit and aligned to 16bit boundaries. 8bit accesses to
// either half of a register and 32bit accesses to a pair of registers are
// resolved by the bus before routing.
package addresses

// LCD registers.
const (
	DISPCNT  = uint32(0x04000000)
	DISPSTAT = uint32(0x04000004)
	VCOUNT   = uint32(0x04000006)
	BG0CNT   = uint32(0x04000008)
	BG1CNT   = uint32(0x0400000a)
	BG2CNT   = uint32(0x0400000c)
	BG3CNT   = uint32(0x0400000e)
	BG0HOFS  = uint32(0x04000010)
	BG0VOFS  = uint32(0x04000012)
	BG1HOFS  = uint32(0x04000014)
	BG1VOFS  = uint32(0x04000016)
	BG2HOFS  = uint32(0x04000018)
	BG2VOFS  = uint32(0x0400001a)
	BG3HOFS  = uint32(0x0400001c)
	BG3VOFS  = uint32(0x0400001e)
	BG2PA    = uint32(0x04000020)
	BG2PB    = uint32(0x04000022)
	BG2PC    = uint32(0x04000024)
	BG2PD    = uint32(0x04000026)
	BG2XL    = uint32(0x04000028)
	BG2XH    = uint32(0x0400002a)
	BG2YL    = uint32(0x0400002c)
	BG2YH    = uint32(0x0400002e)
	BG3PA    = uint32(0x04000030)
	BG3PB    = uint32(0x04000032)
	BG3PC    = uint32(0x04000034)
	BG3PD    = uint32(0x04000036)
	BG3XL    = uint32(0x04000038)
	BG3XH    = uint32(0x0400003a)
	BG3YL    = uint32(0x0400003c)
	BG3YH    = uint32(0x0400003e)
	WIN0H    = uint32(0x04000040)
	WIN1H    = uint32(0x04000042)
	WIN0V    = uint32(0x04000044)
	WIN1V    = uint32(0x04000046)
	WININ    = uint32(0x04000048)
	WINOUT   = uint32(0x0400004a)
	MOSAIC   = uint32(0x0400004c)
	BLDCNT   = uint32(0x04000050)
	BLDALPHA = uint32(0x04000052)
	BLDY     = uint32(0x04000054)
)

// Sound registers.
const (
	SOUND1CNT_L = uint32(0x04000060)
	SOUND1CNT_H = uint32(0x04000062)
	SOUND1CNT_X = uint32(0x04000064)
	SOUND2CNT_L = uint32(0x04000068)
	SOUND2CNT_H = uint32(0x0400006c)
	SOUND3CNT_L = uint32(0x04000070)
	SOUND3CNT_H = uint32(0x04000072)
	SOUND3CNT_X = uint32(0x04000074)
	SOUND4CNT_L = uint32(0x04000078)
	SOUND4CNT_H = uint32(0x0400007c)
	SOUNDCNT_L  = uint32(0x04000080)
	SOUNDCNT_H  = uint32(0x04000082)
	SOUNDCNT_X  = uint32(0x04000084)
	SOUNDBIAS   = uint32(0x04000088)
	WAVE_RAM0_L = uint32(0x04000090)
	WAVE_RAM3_H = uint32(0x0400009e)
	FIFO_A_L    = uint32(0x040000a0)
	FIFO_A_H    = uint32(0x040000a2)
	FIFO_B_L    = uint32(0x040000a4)
	FIFO_B_H    = uint32(0x040000a6)
)

// DMA registers.
const (
	DMA0SAD_L   = uint32(0x040000b0)
	DMA0SAD_H   = uint32(0x040000b2)
	DMA0DAD_L   = uint32(0x040000b4)
	DMA0DAD_H   = uint32(0x040000b6)
	DMA0CNT_L   = uint32(0x040000b8)
	DMA0CNT_H   = uint32(0x040000ba)
	DMA1SAD_L   = uint32(0x040000bc)
	DMA1CNT_H   = uint32(0x040000c6)
	DMA2SAD_L   = uint32(0x040000c8)
	DMA2CNT_H   = uint32(0x040000d2)
	DMA3SAD_L   = uint32(0x040000d4)
	DMA3CNT_H   = uint32(0x040000de)
	DMAMemtop   = uint32(0x040000de)
	DMAChanSize = uint32(0x0c)
)

// Timer registers.
const (
	TM0CNT_L = uint32(0x04000100)
	TM0CNT_H = uint32(0x04000102)
	TM1CNT_L = uint32(0x04000104)
	TM1CNT_H = uint32(0x04000106)
	TM2CNT_L = uint32(0x04000108)
	TM2CNT_H = uint32(0x0400010a)
	TM3CNT_L = uint32(0x0400010c)
	TM3CNT_H = uint32(0x0400010e)
)

// Serial communication registers. The serial port is not emulated but the
// registers are honoured as plain storage so that ROMs that probe them do
// not misbehave.
const (
	SIODATA32_L = uint32(0x04000120)
	SIOCNT      = uint32(0x04000128)
	RCNT        = uint32(0x04000134)
	JOYCNT      = uint32(0x04000140)
	JOY_RECV_L  = uint32(0x04000150)
	JOY_TRANS_L = uint32(0x04000154)
	JOYSTAT     = uint32(0x04000158)
)

// Keypad registers.
const (
	KEYINPUT = uint32(0x04000130)
	KEYCNT   = uint32(0x04000132)
)

// Interrupt, waitstate and power-down control registers. The HALTCNT
// register is the high byte of the 16bit register at the POSTFLG address.
const (
	IE      = uint32(0x04000200)
	IF      = uint32(0x04000202)
	WAITCNT = uint32(0x04000204)
	IME     = uint32(0x04000208)
	POSTFLG = uint32(0x04000300)
)
