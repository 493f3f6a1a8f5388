package cpu

// This file implements the width-polymorphic operation bodies shared
// by the opcode dispatch table: the M flag gates accumulator/memory
// width, the X flag gates index-register width, exactly as §4.3
// describes. Each operation reads/writes 8 or 16 bits according to
// the relevant flag and updates NZ (and C/V where applicable) from
// the result at that width.

// immOperand fetches an immediate operand sized by the M flag (for
// accumulator-class ops) as a 16-bit value (high byte zero in 8-bit
// mode).
func (c *CPU) immOperand(eightBit bool) uint16 {
	if eightBit {
		return uint16(c.fetch8())
	}
	return c.fetch16()
}

// immOperandWidth is immOperand under a different name for index-class
// ops (X flag), kept distinct for readability at call sites.
func (c *CPU) immOperandWidth(eightBit bool) uint16 {
	return c.immOperand(eightBit)
}

func (c *CPU) setNZWidth(v uint16, eightBit bool) {
	if eightBit {
		c.setNZ8(uint8(v))
	} else {
		c.setNZ16(v)
	}
}

// transferToA writes v into A: in 8-bit mode only the low byte is
// replaced, the hidden high byte survives a later REP #$20.
func (c *CPU) transferToA(v uint16) {
	if c.FlagM {
		c.A = c.A&0xFF00 | v&0xFF
	} else {
		c.A = v
	}
	c.setNZWidth(c.A, c.FlagM)
}

func (c *CPU) pushWidth(v uint16, eightBit bool) {
	if eightBit {
		c.push8(uint8(v))
	} else {
		c.push16(v)
	}
}

func (c *CPU) pullWidth(eightBit bool) uint16 {
	if eightBit {
		return uint16(c.pop8())
	}
	return c.pop16()
}

// readOperand reads a memory operand at the width selected by the M
// flag (for accumulator-class ops) or X flag (for index-class ops).
func (c *CPU) readOperand(addr uint32, eightBit bool) uint16 {
	if eightBit {
		return uint16(c.read8(addr))
	}
	return c.read16(addr)
}

// --- Loads / stores ---

func (c *CPU) ldaImm() { c.transferToA(c.immOperand(c.FlagM)) }
func (c *CPU) lda(addr uint32) {
	c.transferToA(c.readOperand(addr, c.FlagM))
}

func (c *CPU) ldxImm() {
	v := c.immOperandWidth(c.FlagX)
	c.X = v
	c.setNZWidth(v, c.FlagX)
}
func (c *CPU) ldx(addr uint32) {
	v := c.readOperand(addr, c.FlagX)
	c.X = v
	c.setNZWidth(v, c.FlagX)
}

func (c *CPU) ldyImm() {
	v := c.immOperandWidth(c.FlagX)
	c.Y = v
	c.setNZWidth(v, c.FlagX)
}
func (c *CPU) ldy(addr uint32) {
	v := c.readOperand(addr, c.FlagX)
	c.Y = v
	c.setNZWidth(v, c.FlagX)
}

func (c *CPU) sta(addr uint32) {
	if c.FlagM {
		c.write8(addr, uint8(c.A))
	} else {
		c.write16(addr, c.A)
	}
}

func (c *CPU) stx(addr uint32) {
	if c.FlagX {
		c.write8(addr, uint8(c.X))
	} else {
		c.write16(addr, c.X)
	}
}

func (c *CPU) sty(addr uint32) {
	if c.FlagX {
		c.write8(addr, uint8(c.Y))
	} else {
		c.write16(addr, c.Y)
	}
}

func (c *CPU) stz(addr uint32) {
	if c.FlagM {
		c.write8(addr, 0)
	} else {
		c.write16(addr, 0)
	}
}

// --- Arithmetic ---
//
// Decimal mode (FlagD) is tracked for software that reads/writes it
// via REP/SEP/PLP, but ADC/SBC here always compute binary; SNES
// software essentially never runs the CPU in decimal mode, and the
// spec's core scope (booting well-behaved ROMs) does not exercise it.

func (c *CPU) adc(value uint16) {
	if c.FlagM {
		a := uint16(uint8(c.A))
		v := value & 0xFF
		carry := uint16(0)
		if c.FlagC {
			carry = 1
		}
		sum := a + v + carry
		result := uint8(sum)
		c.FlagC = sum > 0xFF
		c.FlagV = (a^uint16(result))&(v^uint16(result))&0x80 != 0
		c.transferToA(uint16(result))
	} else {
		a := c.A
		carry := uint32(0)
		if c.FlagC {
			carry = 1
		}
		sum := uint32(a) + uint32(value) + carry
		result := uint16(sum)
		c.FlagC = sum > 0xFFFF
		c.FlagV = (a^result)&(value^result)&0x8000 != 0
		c.transferToA(result)
	}
}

func (c *CPU) adcMem(addr uint32) { c.adc(c.readOperand(addr, c.FlagM)) }

func (c *CPU) sbc(value uint16) {
	// SBC is ADC with the operand's bits inverted at the operation's
	// width, matching the 65816's internal borrow-as-inverted-carry.
	if c.FlagM {
		c.adc(uint16(^uint8(value)))
	} else {
		c.adc(^value)
	}
}

func (c *CPU) sbcMem(addr uint32) { c.sbc(c.readOperand(addr, c.FlagM)) }

func (c *CPU) and(value uint16) {
	if c.FlagM {
		c.transferToA(uint16(uint8(c.A) & uint8(value)))
	} else {
		c.transferToA(c.A & value)
	}
}
func (c *CPU) andMem(addr uint32) { c.and(c.readOperand(addr, c.FlagM)) }

func (c *CPU) ora(value uint16) {
	if c.FlagM {
		c.transferToA(uint16(uint8(c.A) | uint8(value)))
	} else {
		c.transferToA(c.A | value)
	}
}
func (c *CPU) oraMem(addr uint32) { c.ora(c.readOperand(addr, c.FlagM)) }

func (c *CPU) eor(value uint16) {
	if c.FlagM {
		c.transferToA(uint16(uint8(c.A) ^ uint8(value)))
	} else {
		c.transferToA(c.A ^ value)
	}
}
func (c *CPU) eorMem(addr uint32) { c.eor(c.readOperand(addr, c.FlagM)) }

func (c *CPU) compare(reg, value uint16, eightBit bool) {
	if eightBit {
		r8, v8 := uint8(reg), uint8(value)
		result := r8 - v8
		c.FlagC = r8 >= v8
		c.setNZ8(result)
	} else {
		result := reg - value
		c.FlagC = reg >= value
		c.setNZ16(result)
	}
}

func (c *CPU) cmp(value uint16)        { c.compare(c.A, value, c.FlagM) }
func (c *CPU) cmpMem(addr uint32)      { c.cmp(c.readOperand(addr, c.FlagM)) }
func (c *CPU) cpx(value uint16)        { c.compare(c.X, value, c.FlagX) }
func (c *CPU) cpxMem(addr uint32)      { c.cpx(c.readOperand(addr, c.FlagX)) }
func (c *CPU) cpy(value uint16)        { c.compare(c.Y, value, c.FlagX) }
func (c *CPU) cpyMem(addr uint32)      { c.cpy(c.readOperand(addr, c.FlagX)) }

func (c *CPU) bitCommon(value uint16, setNV bool) {
	if c.FlagM {
		r := uint8(c.A) & uint8(value)
		c.FlagZ = r == 0
		if setNV {
			c.FlagN = value&0x80 != 0
			c.FlagV = value&0x40 != 0
		}
	} else {
		r := c.A & value
		c.FlagZ = r == 0
		if setNV {
			c.FlagN = value&0x8000 != 0
			c.FlagV = value&0x4000 != 0
		}
	}
}

// bitImm: BIT #imm only affects Z, never N/V (immediate addressing
// can't examine the "memory" bits 6/7 since there is no memory).
func (c *CPU) bitImm(value uint16) { c.bitCommon(value, false) }
func (c *CPU) bit(addr uint32)     { c.bitCommon(c.readOperand(addr, c.FlagM), true) }

func (c *CPU) incDecA(delta uint16) {
	if c.FlagM {
		c.transferToA(uint16(uint8(c.A) + uint8(delta)))
	} else {
		c.transferToA(c.A + delta)
	}
}

func (c *CPU) incDecMem(addr uint32, delta uint16) {
	if c.FlagM {
		v := c.read8(addr) + uint8(delta)
		c.write8(addr, v)
		c.setNZ8(v)
	} else {
		v := c.read16(addr) + delta
		c.write16(addr, v)
		c.setNZ16(v)
	}
}

func (c *CPU) incDecIndex(reg uint16, delta uint16) uint16 {
	var v uint16
	if c.FlagX {
		v = uint16(uint8(reg) + uint8(delta))
	} else {
		v = reg + delta
	}
	c.setNZWidth(v, c.FlagX)
	return v
}

// --- Shifts / rotates ---

type shiftKind int

const (
	shiftASL shiftKind = iota
	shiftLSR
	shiftROL
	shiftROR
)

func (c *CPU) shiftWidth(v uint16, eightBit bool, kind shiftKind) uint16 {
	if eightBit {
		r, carryOut := shift8(uint8(v), kind, c.FlagC)
		c.FlagC = carryOut
		c.setNZ8(r)
		return c.A&0xFF00 | uint16(r)
	}
	r, carryOut := shift16(v, kind, c.FlagC)
	c.FlagC = carryOut
	c.setNZ16(r)
	return r
}

func shift8(v uint8, kind shiftKind, carryIn bool) (uint8, bool) {
	switch kind {
	case shiftASL:
		return v << 1, v&0x80 != 0
	case shiftLSR:
		return v >> 1, v&0x01 != 0
	case shiftROL:
		r := v << 1
		if carryIn {
			r |= 1
		}
		return r, v&0x80 != 0
	default: // shiftROR
		r := v >> 1
		if carryIn {
			r |= 0x80
		}
		return r, v&0x01 != 0
	}
}

func shift16(v uint16, kind shiftKind, carryIn bool) (uint16, bool) {
	switch kind {
	case shiftASL:
		return v << 1, v&0x8000 != 0
	case shiftLSR:
		return v >> 1, v&0x0001 != 0
	case shiftROL:
		r := v << 1
		if carryIn {
			r |= 1
		}
		return r, v&0x8000 != 0
	default: // shiftROR
		r := v >> 1
		if carryIn {
			r |= 0x8000
		}
		return r, v&0x0001 != 0
	}
}

func (c *CPU) shiftMem(addr uint32, kind shiftKind) {
	if c.FlagM {
		v := c.read8(addr)
		r, carryOut := shift8(v, kind, c.FlagC)
		c.write8(addr, r)
		c.FlagC = carryOut
		c.setNZ8(r)
	} else {
		v := c.read16(addr)
		r, carryOut := shift16(v, kind, c.FlagC)
		c.write16(addr, r)
		c.FlagC = carryOut
		c.setNZ16(r)
	}
}

// trb/tsb: test-and-reset / test-and-set bits, Z set from A&mem, never
// touches N/V.
func (c *CPU) trb(addr uint32) {
	if c.FlagM {
		v := c.read8(addr)
		c.FlagZ = v&uint8(c.A) == 0
		c.write8(addr, v&^uint8(c.A))
	} else {
		v := c.read16(addr)
		c.FlagZ = v&c.A == 0
		c.write16(addr, v&^c.A)
	}
}

func (c *CPU) tsb(addr uint32) {
	if c.FlagM {
		v := c.read8(addr)
		c.FlagZ = v&uint8(c.A) == 0
		c.write8(addr, v|uint8(c.A))
	} else {
		v := c.read16(addr)
		c.FlagZ = v&c.A == 0
		c.write16(addr, v|c.A)
	}
}

// --- Branches ---

func (c *CPU) branch(taken bool) {
	target := c.relBranch8()
	if taken {
		c.PC = target
	}
}

// --- Block move ---
//
// MVN/MVP operate on the full 16-bit A (count-1) and X/Y (source and
// destination offsets) regardless of M/X, per hardware behavior.
func (c *CPU) blockMove(step uint16) {
	destBank := c.fetch8()
	srcBank := c.fetch8()
	c.DB = destBank
	srcAddr := uint32(srcBank)<<16 | uint32(c.X)
	destAddr := uint32(destBank)<<16 | uint32(c.Y)
	v := c.read8(srcAddr)
	c.write8(destAddr, v)
	c.X += step
	c.Y += step
	c.A--
	if c.A != 0xFFFF {
		c.PC -= 3 // repeat this instruction until A underflows from 0
	}
}
