package cpu

// execute dispatches a single opcode. The core arithmetic, load/store,
// branch, stack and transfer set named in spec §4.3 is implemented in
// full; opcodes outside that set are explicit stubs that only consume
// their operand bytes, listed individually below (§9 open question:
// a faithful reimplementation should finish these before claiming
// real-game compatibility).
//
// Stubbed opcodes (operand bytes consumed, no semantic effect):
//   - 0x42 WDM (reserved, 1 operand byte).
//   - ORA/AND/EOR/ADC/CMP/SBC in stack-relative (0x03 0x23 0x43 0x63
//     0xC3 0xE3) and (sr),Y (0x13 0x33 0x53 0x73 0xD3 0xF3) form, and
//     ORA/AND/EOR/CMP in [dp] (0x07 0x27 0x47 0xC7) and [dp],Y (0x17
//     0x37 0x57 0xD7) form: 1 operand byte each.
//   - ORA/AND/EOR/CMP absolute long (0x0F 0x2F 0x4F 0xCF) and long,X
//     (0x1F 0x3F 0x5F 0xDF): 3 operand bytes each.
//   - 0xEB XBA: no operand.
// 0xCB WAI and 0x44/0x54 MVP/MVN are handled below (not stubs). Every
// one of the 256 opcodes has a case, so the default branch is not reached.
func (c *CPU) execute(opcode uint8) {
	switch opcode {

	// ---- Loads ----
	case 0xA9: // LDA #imm
		c.ldaImm()
	case 0xA5:
		c.lda(c.addrDirectPage())
	case 0xB5:
		c.lda(c.addrDirectPageX())
	case 0xAD:
		c.lda(c.addrAbsolute())
	case 0xBD:
		c.lda(c.addrAbsoluteX())
	case 0xB9:
		c.lda(c.addrAbsoluteY())
	case 0xA1:
		c.lda(c.addrDirectPageIndirectXIndexed())
	case 0xB1:
		c.lda(c.addrDirectPageIndirectIndexedY())
	case 0xB2:
		c.lda(c.addrDirectPageIndirect())
	case 0xA7:
		c.lda(c.addrDirectPageIndirectLong())
	case 0xB7:
		c.lda(c.addrDirectPageIndirectLongIndexedY())
	case 0xAF:
		c.lda(c.addrAbsoluteLong())
	case 0xBF:
		c.lda(c.addrAbsoluteLongX())
	case 0xA3:
		c.lda(c.addrStackRelative())
	case 0xB3:
		c.lda(c.addrStackRelativeIndirectIndexedY())

	case 0xA2: // LDX #imm
		c.ldxImm()
	case 0xA6:
		c.ldx(c.addrDirectPage())
	case 0xB6:
		c.ldx(c.addrDirectPageY())
	case 0xAE:
		c.ldx(c.addrAbsolute())
	case 0xBE:
		c.ldx(c.addrAbsoluteY())

	case 0xA0: // LDY #imm
		c.ldyImm()
	case 0xA4:
		c.ldy(c.addrDirectPage())
	case 0xB4:
		c.ldy(c.addrDirectPageX())
	case 0xAC:
		c.ldy(c.addrAbsolute())
	case 0xBC:
		c.ldy(c.addrAbsoluteX())

	// ---- Stores ----
	case 0x85:
		c.sta(c.addrDirectPage())
	case 0x95:
		c.sta(c.addrDirectPageX())
	case 0x8D:
		c.sta(c.addrAbsolute())
	case 0x9D:
		c.sta(c.addrAbsoluteX())
	case 0x99:
		c.sta(c.addrAbsoluteY())
	case 0x81:
		c.sta(c.addrDirectPageIndirectXIndexed())
	case 0x91:
		c.sta(c.addrDirectPageIndirectIndexedY())
	case 0x92:
		c.sta(c.addrDirectPageIndirect())
	case 0x87:
		c.sta(c.addrDirectPageIndirectLong())
	case 0x97:
		c.sta(c.addrDirectPageIndirectLongIndexedY())
	case 0x8F:
		c.sta(c.addrAbsoluteLong())
	case 0x9F:
		c.sta(c.addrAbsoluteLongX())
	case 0x83:
		c.sta(c.addrStackRelative())
	case 0x93:
		c.sta(c.addrStackRelativeIndirectIndexedY())

	case 0x86:
		c.stx(c.addrDirectPage())
	case 0x96:
		c.stx(c.addrDirectPageY())
	case 0x8E:
		c.stx(c.addrAbsolute())

	case 0x84:
		c.sty(c.addrDirectPage())
	case 0x94:
		c.sty(c.addrDirectPageX())
	case 0x8C:
		c.sty(c.addrAbsolute())

	case 0x64:
		c.stz(c.addrDirectPage())
	case 0x74:
		c.stz(c.addrDirectPageX())
	case 0x9C:
		c.stz(c.addrAbsolute())
	case 0x9E:
		c.stz(c.addrAbsoluteX())

	// ---- Transfers ----
	case 0xAA: // TAX
		v := c.A
		if c.FlagX {
			v &= 0xFF
		}
		c.X = v
		c.setNZWidth(v, c.FlagX)
	case 0xA8: // TAY
		v := c.A
		if c.FlagX {
			v &= 0xFF
		}
		c.Y = v
		c.setNZWidth(v, c.FlagX)
	case 0x8A: // TXA
		c.transferToA(c.X)
	case 0x98: // TYA
		c.transferToA(c.Y)
	case 0xBA: // TSX
		v := c.SP
		if c.FlagX {
			v &= 0xFF
		}
		c.X = v
		c.setNZWidth(v, c.FlagX)
	case 0x9A: // TXS
		if c.E {
			c.SP = 0x0100 | (c.X & 0xFF)
		} else {
			c.SP = c.X
		}
	case 0x9B: // TXY
		v := c.X
		c.Y = v
		c.setNZWidth(v, c.FlagX)
	case 0xBB: // TYX
		v := c.Y
		c.X = v
		c.setNZWidth(v, c.FlagX)
	case 0x5B: // TCD
		c.D = c.A
		c.setNZ16(c.D)
	case 0x7B: // TDC
		c.A = c.D
		c.setNZ16(c.A)
	case 0x1B: // TCS
		if c.E {
			c.SP = 0x0100 | (c.A & 0xFF)
		} else {
			c.SP = c.A
		}
	case 0x3B: // TSC
		c.A = c.SP
		c.setNZ16(c.A)

	// ---- Stack ----
	case 0x48: // PHA
		c.pushWidth(c.A, c.FlagM)
	case 0x68: // PLA
		c.transferToA(c.pullWidth(c.FlagM))
		c.setNZWidth(c.A, c.FlagM)
	case 0xDA: // PHX
		c.pushWidth(c.X, c.FlagX)
	case 0xFA: // PLX
		c.X = c.pullWidth(c.FlagX)
		c.setNZWidth(c.X, c.FlagX)
	case 0x5A: // PHY
		c.pushWidth(c.Y, c.FlagX)
	case 0x7A: // PLY
		c.Y = c.pullWidth(c.FlagX)
		c.setNZWidth(c.Y, c.FlagX)
	case 0x08: // PHP
		c.push8(c.packP())
	case 0x28: // PLP
		c.unpackP(c.pop8())
	case 0x8B: // PHB
		c.push8(c.DB)
	case 0xAB: // PLB
		c.DB = c.pop8()
		c.setNZ8(c.DB)
	case 0x0B: // PHD
		c.push16(c.D)
	case 0x2B: // PLD
		c.D = c.pop16()
		c.setNZ16(c.D)
	case 0x4B: // PHK
		c.push8(c.PB)
	case 0xF4: // PEA
		v := c.fetch16()
		c.push16(v)
	case 0xD4: // PEI
		addr := c.addrDirectPage()
		c.push16(c.read16(addr))
	case 0x62: // PER
		disp := int16(c.fetch16())
		c.push16(uint16(int32(c.PC) + int32(disp)))

	// ---- Arithmetic / logic ----
	case 0x69:
		c.adc(c.immOperand(c.FlagM))
	case 0x65:
		c.adcMem(c.addrDirectPage())
	case 0x75:
		c.adcMem(c.addrDirectPageX())
	case 0x6D:
		c.adcMem(c.addrAbsolute())
	case 0x7D:
		c.adcMem(c.addrAbsoluteX())
	case 0x79:
		c.adcMem(c.addrAbsoluteY())
	case 0x61:
		c.adcMem(c.addrDirectPageIndirectXIndexed())
	case 0x71:
		c.adcMem(c.addrDirectPageIndirectIndexedY())
	case 0x72:
		c.adcMem(c.addrDirectPageIndirect())
	case 0x67:
		c.adcMem(c.addrDirectPageIndirectLong())
	case 0x77:
		c.adcMem(c.addrDirectPageIndirectLongIndexedY())
	case 0x6F:
		c.adcMem(c.addrAbsoluteLong())
	case 0x7F:
		c.adcMem(c.addrAbsoluteLongX())

	case 0xE9:
		c.sbc(c.immOperand(c.FlagM))
	case 0xE5:
		c.sbcMem(c.addrDirectPage())
	case 0xF5:
		c.sbcMem(c.addrDirectPageX())
	case 0xED:
		c.sbcMem(c.addrAbsolute())
	case 0xFD:
		c.sbcMem(c.addrAbsoluteX())
	case 0xF9:
		c.sbcMem(c.addrAbsoluteY())
	case 0xE1:
		c.sbcMem(c.addrDirectPageIndirectXIndexed())
	case 0xF1:
		c.sbcMem(c.addrDirectPageIndirectIndexedY())
	case 0xF2:
		c.sbcMem(c.addrDirectPageIndirect())
	case 0xE7:
		c.sbcMem(c.addrDirectPageIndirectLong())
	case 0xF7:
		c.sbcMem(c.addrDirectPageIndirectLongIndexedY())
	case 0xEF:
		c.sbcMem(c.addrAbsoluteLong())
	case 0xFF:
		c.sbcMem(c.addrAbsoluteLongX())

	case 0x29:
		c.and(c.immOperand(c.FlagM))
	case 0x25:
		c.andMem(c.addrDirectPage())
	case 0x35:
		c.andMem(c.addrDirectPageX())
	case 0x2D:
		c.andMem(c.addrAbsolute())
	case 0x3D:
		c.andMem(c.addrAbsoluteX())
	case 0x39:
		c.andMem(c.addrAbsoluteY())
	case 0x21:
		c.andMem(c.addrDirectPageIndirectXIndexed())
	case 0x31:
		c.andMem(c.addrDirectPageIndirectIndexedY())
	case 0x32:
		c.andMem(c.addrDirectPageIndirect())

	case 0x09:
		c.ora(c.immOperand(c.FlagM))
	case 0x05:
		c.oraMem(c.addrDirectPage())
	case 0x15:
		c.oraMem(c.addrDirectPageX())
	case 0x0D:
		c.oraMem(c.addrAbsolute())
	case 0x1D:
		c.oraMem(c.addrAbsoluteX())
	case 0x19:
		c.oraMem(c.addrAbsoluteY())
	case 0x01:
		c.oraMem(c.addrDirectPageIndirectXIndexed())
	case 0x11:
		c.oraMem(c.addrDirectPageIndirectIndexedY())
	case 0x12:
		c.oraMem(c.addrDirectPageIndirect())

	case 0x49:
		c.eor(c.immOperand(c.FlagM))
	case 0x45:
		c.eorMem(c.addrDirectPage())
	case 0x55:
		c.eorMem(c.addrDirectPageX())
	case 0x4D:
		c.eorMem(c.addrAbsolute())
	case 0x5D:
		c.eorMem(c.addrAbsoluteX())
	case 0x59:
		c.eorMem(c.addrAbsoluteY())
	case 0x41:
		c.eorMem(c.addrDirectPageIndirectXIndexed())
	case 0x51:
		c.eorMem(c.addrDirectPageIndirectIndexedY())
	case 0x52:
		c.eorMem(c.addrDirectPageIndirect())

	case 0xC9:
		c.cmp(c.immOperand(c.FlagM))
	case 0xC5:
		c.cmpMem(c.addrDirectPage())
	case 0xD5:
		c.cmpMem(c.addrDirectPageX())
	case 0xCD:
		c.cmpMem(c.addrAbsolute())
	case 0xDD:
		c.cmpMem(c.addrAbsoluteX())
	case 0xD9:
		c.cmpMem(c.addrAbsoluteY())
	case 0xC1:
		c.cmpMem(c.addrDirectPageIndirectXIndexed())
	case 0xD1:
		c.cmpMem(c.addrDirectPageIndirectIndexedY())
	case 0xD2:
		c.cmpMem(c.addrDirectPageIndirect())

	case 0xE0:
		c.cpx(c.immOperandWidth(c.FlagX))
	case 0xE4:
		c.cpxMem(c.addrDirectPage())
	case 0xEC:
		c.cpxMem(c.addrAbsolute())

	case 0xC0:
		c.cpy(c.immOperandWidth(c.FlagX))
	case 0xC4:
		c.cpyMem(c.addrDirectPage())
	case 0xCC:
		c.cpyMem(c.addrAbsolute())

	case 0x89:
		c.bitImm(c.immOperand(c.FlagM))
	case 0x24:
		c.bit(c.addrDirectPage())
	case 0x34:
		c.bit(c.addrDirectPageX())
	case 0x2C:
		c.bit(c.addrAbsolute())
	case 0x3C:
		c.bit(c.addrAbsoluteX())

	case 0x1A: // INC A
		c.incDecA(1)
	case 0x3A: // DEC A
		c.incDecA(^uint16(0))
	case 0xE6:
		c.incDecMem(c.addrDirectPage(), 1)
	case 0xF6:
		c.incDecMem(c.addrDirectPageX(), 1)
	case 0xEE:
		c.incDecMem(c.addrAbsolute(), 1)
	case 0xFE:
		c.incDecMem(c.addrAbsoluteX(), 1)
	case 0xC6:
		c.incDecMem(c.addrDirectPage(), ^uint16(0))
	case 0xD6:
		c.incDecMem(c.addrDirectPageX(), ^uint16(0))
	case 0xCE:
		c.incDecMem(c.addrAbsolute(), ^uint16(0))
	case 0xDE:
		c.incDecMem(c.addrAbsoluteX(), ^uint16(0))

	case 0xE8: // INX
		c.X = c.incDecIndex(c.X, 1)
	case 0xC8: // INY
		c.Y = c.incDecIndex(c.Y, 1)
	case 0xCA: // DEX
		c.X = c.incDecIndex(c.X, ^uint16(0))
	case 0x88: // DEY
		c.Y = c.incDecIndex(c.Y, ^uint16(0))

	// ---- Shifts / rotates ----
	case 0x0A:
		c.A = c.shiftWidth(c.A, c.FlagM, shiftASL)
	case 0x06:
		c.shiftMem(c.addrDirectPage(), shiftASL)
	case 0x16:
		c.shiftMem(c.addrDirectPageX(), shiftASL)
	case 0x0E:
		c.shiftMem(c.addrAbsolute(), shiftASL)
	case 0x1E:
		c.shiftMem(c.addrAbsoluteX(), shiftASL)

	case 0x4A:
		c.A = c.shiftWidth(c.A, c.FlagM, shiftLSR)
	case 0x46:
		c.shiftMem(c.addrDirectPage(), shiftLSR)
	case 0x56:
		c.shiftMem(c.addrDirectPageX(), shiftLSR)
	case 0x4E:
		c.shiftMem(c.addrAbsolute(), shiftLSR)
	case 0x5E:
		c.shiftMem(c.addrAbsoluteX(), shiftLSR)

	case 0x2A:
		c.A = c.shiftWidth(c.A, c.FlagM, shiftROL)
	case 0x26:
		c.shiftMem(c.addrDirectPage(), shiftROL)
	case 0x36:
		c.shiftMem(c.addrDirectPageX(), shiftROL)
	case 0x2E:
		c.shiftMem(c.addrAbsolute(), shiftROL)
	case 0x3E:
		c.shiftMem(c.addrAbsoluteX(), shiftROL)

	case 0x6A:
		c.A = c.shiftWidth(c.A, c.FlagM, shiftROR)
	case 0x66:
		c.shiftMem(c.addrDirectPage(), shiftROR)
	case 0x76:
		c.shiftMem(c.addrDirectPageX(), shiftROR)
	case 0x6E:
		c.shiftMem(c.addrAbsolute(), shiftROR)
	case 0x7E:
		c.shiftMem(c.addrAbsoluteX(), shiftROR)

	case 0x14: // TRB dp
		c.trb(c.addrDirectPage())
	case 0x1C: // TRB abs
		c.trb(c.addrAbsolute())
	case 0x04: // TSB dp
		c.tsb(c.addrDirectPage())
	case 0x0C: // TSB abs
		c.tsb(c.addrAbsolute())

	// ---- Branches ----
	case 0x10:
		c.branch(!c.FlagN)
	case 0x30:
		c.branch(c.FlagN)
	case 0x50:
		c.branch(!c.FlagV)
	case 0x70:
		c.branch(c.FlagV)
	case 0x90:
		c.branch(!c.FlagC)
	case 0xB0:
		c.branch(c.FlagC)
	case 0xD0:
		c.branch(!c.FlagZ)
	case 0xF0:
		c.branch(c.FlagZ)
	case 0x80:
		c.branch(true)
	case 0x82: // BRL
		c.PC = c.relBranch16()

	// ---- Control flow ----
	case 0x4C: // JMP abs
		c.PC = c.fetch16()
	case 0x5C: // JML abs long
		addr := c.fetch24()
		c.PB = uint8(addr >> 16)
		c.PC = uint16(addr)
	case 0x6C: // JMP (abs)
		ptr := c.addrAbsoluteIndirect()
		c.PC = c.read16(ptr)
	case 0xDC: // JML [abs]
		ptr := c.addrAbsoluteIndirectLong()
		lo := uint32(c.read8(ptr))
		mid := uint32(c.read8(ptr + 1))
		bank := uint32(c.read8(ptr + 2))
		c.PC = uint16(lo | mid<<8)
		c.PB = uint8(bank)
	case 0x7C: // JMP (abs,X)
		ptr := c.addrAbsoluteIndexedIndirect()
		c.PC = c.read16(ptr)

	case 0x20: // JSR abs
		target := c.fetch16()
		c.push16(c.PC - 1)
		c.PC = target
	case 0xFC: // JSR (abs,X)
		ptr := c.addrAbsoluteIndexedIndirect()
		ret := c.PC - 1
		target := c.read16(ptr)
		c.push16(ret)
		c.PC = target
	case 0x22: // JSL long
		addr := c.fetch24()
		c.push8(c.PB)
		c.push16(c.PC - 1)
		c.PB = uint8(addr >> 16)
		c.PC = uint16(addr)
	case 0x60: // RTS
		c.PC = c.pop16() + 1
	case 0x6B: // RTL
		c.PC = c.pop16() + 1
		c.PB = c.pop8()
	case 0x40: // RTI
		c.unpackP(c.pop8())
		c.PC = c.pop16()
		if !c.E {
			c.PB = c.pop8()
		}

	case 0x00: // BRK
		c.fetch8() // signature byte, discarded
		c.serviceInterrupt(c.irqBrkVector(), true)
	case 0x02: // COP
		c.fetch8()
		c.serviceInterrupt(c.copVector(), true)

	// ---- Block move ----
	case 0x54: // MVN src,dest — copies forward, A counts down
		c.blockMove(1)
	case 0x44: // MVP src,dest — copies backward, A counts down
		c.blockMove(^uint16(0))

	// ---- Flags ----
	case 0x18:
		c.FlagC = false
	case 0x38:
		c.FlagC = true
	case 0x58:
		c.FlagI = false
	case 0x78:
		c.FlagI = true
	case 0xB8:
		c.FlagV = false
	case 0xD8:
		c.FlagD = false
	case 0xF8:
		c.FlagD = true
	case 0xC2: // REP #imm
		mask := c.fetch8()
		c.unpackP(c.packP() &^ mask)
	case 0xE2: // SEP #imm
		mask := c.fetch8()
		c.unpackP(c.packP() | mask)
	case 0xFB: // XCE
		oldC := c.FlagC
		c.FlagC = c.E
		c.E = oldC
		c.applyEmulationInvariants()

	case 0xCB: // WAI
		c.waiting = true
	case 0xDB: // STP
		c.stopped = true
	case 0xEA: // NOP
		// nothing
	case 0x42: // WDM — reserved 2-byte NOP, operand discarded
		c.fetch8()

	// ---- Stubs (see the list above execute) ----
	case 0x03, 0x13, 0x23, 0x33, 0x43, 0x53, 0x63, 0x73, 0xC3, 0xD3, 0xE3, 0xF3,
		0x07, 0x17, 0x27, 0x37, 0x47, 0x57, 0xC7, 0xD7:
		c.fetch8()
	case 0x0F, 0x1F, 0x2F, 0x3F, 0x4F, 0x5F, 0xCF, 0xDF:
		c.fetch24()
	case 0xEB: // XBA

	default:
		// Not reached: every opcode has a case above.
	}
}

func (c *CPU) irqBrkVector() uint16 {
	if c.E {
		return vectorEmulIRQ
	}
	return vectorNativeIRQ
}

func (c *CPU) copVector() uint16 {
	if c.E {
		return 0xFFF4
	}
	return 0xFFE4
}

// addrDirectPageIndirectXIndexed resolves (dp,X).
func (c *CPU) addrDirectPageIndirectXIndexed() uint32 {
	dp := c.fetch8()
	ptr := uint32(c.D+uint16(dp)+c.indexX()) & 0xFFFF
	word := c.read16(ptr)
	return uint32(c.DB)<<16 | uint32(word)
}
