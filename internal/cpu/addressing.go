package cpu

// This file resolves the operand address for every addressing mode
// named in spec §4.3. Each resolver consumes its operand bytes from
// the instruction stream via fetch8/fetch16/fetch24 and returns a
// 24-bit effective address; immediate-mode operands are read directly
// by the opcode handler instead; only the addressing modes that name
// a memory location have a resolver here.

// indexX/indexY read the index registers masked to the current width
// (FlagX selects 8-bit) for use inside an addressing calculation.
func (c *CPU) indexX() uint16 {
	if c.FlagX {
		return c.X & 0xFF
	}
	return c.X
}

func (c *CPU) indexY() uint16 {
	if c.FlagX {
		return c.Y & 0xFF
	}
	return c.Y
}

// dpAddr computes the bank-0 direct page address D+dp, wrapping at
// 0xFFFF. Direct page accesses are always in bank 0.
func (c *CPU) dpAddr(dp uint8) uint32 {
	return uint32(c.D+uint16(dp)) & 0xFFFF
}

func (c *CPU) addrDirectPage() uint32 {
	dp := c.fetch8()
	return c.dpAddr(dp)
}

func (c *CPU) addrDirectPageX() uint32 {
	dp := c.fetch8()
	return uint32(c.D+uint16(dp)+c.indexX()) & 0xFFFF
}

func (c *CPU) addrDirectPageY() uint32 {
	dp := c.fetch8()
	return uint32(c.D+uint16(dp)+c.indexY()) & 0xFFFF
}

func (c *CPU) addrDirectPageIndirect() uint32 {
	dp := c.fetch8()
	ptr := c.dpAddr(dp)
	word := c.read16(ptr)
	return uint32(c.DB)<<16 | uint32(word)
}

func (c *CPU) addrDirectPageIndirectLong() uint32 {
	dp := c.fetch8()
	ptr := c.dpAddr(dp)
	lo := uint32(c.read8(ptr))
	mid := uint32(c.read8(ptr + 1))
	bank := uint32(c.read8(ptr + 2))
	return bank<<16 | mid<<8 | lo
}

func (c *CPU) addrDirectPageIndirectIndexedY() uint32 {
	dp := c.fetch8()
	ptr := c.dpAddr(dp)
	word := c.read16(ptr)
	return (uint32(c.DB)<<16 | uint32(word)) + uint32(c.indexY())
}

func (c *CPU) addrDirectPageIndirectLongIndexedY() uint32 {
	dp := c.fetch8()
	ptr := c.dpAddr(dp)
	lo := uint32(c.read8(ptr))
	mid := uint32(c.read8(ptr + 1))
	bank := uint32(c.read8(ptr + 2))
	return (bank<<16 | mid<<8 | lo) + uint32(c.indexY())
}

func (c *CPU) addrAbsolute() uint32 {
	addr := c.fetch16()
	return uint32(c.DB)<<16 | uint32(addr)
}

func (c *CPU) addrAbsoluteX() uint32 {
	addr := c.fetch16()
	return (uint32(c.DB)<<16 | uint32(addr)) + uint32(c.indexX())
}

func (c *CPU) addrAbsoluteY() uint32 {
	addr := c.fetch16()
	return (uint32(c.DB)<<16 | uint32(addr)) + uint32(c.indexY())
}

func (c *CPU) addrAbsoluteLong() uint32 {
	return c.fetch24()
}

func (c *CPU) addrAbsoluteLongX() uint32 {
	return c.fetch24() + uint32(c.indexX())
}

func (c *CPU) addrStackRelative() uint32 {
	off := c.fetch8()
	return uint32(c.SP+uint16(off)) & 0xFFFF
}

func (c *CPU) addrStackRelativeIndirectIndexedY() uint32 {
	off := c.fetch8()
	ptr := uint32(c.SP+uint16(off)) & 0xFFFF
	word := c.read16(ptr)
	return (uint32(c.DB)<<16 | uint32(word)) + uint32(c.indexY())
}

// addrAbsoluteIndirect resolves JMP (addr) — pointer lives in bank 0,
// destination is within the program bank.
func (c *CPU) addrAbsoluteIndirect() uint32 {
	addr := c.fetch16()
	return uint32(addr)
}

func (c *CPU) addrAbsoluteIndirectLong() uint32 {
	addr := c.fetch16()
	return uint32(addr)
}

// addrAbsoluteIndexedIndirect resolves JMP (addr,X) — pointer lookup is
// within the current program bank.
func (c *CPU) addrAbsoluteIndexedIndirect() uint32 {
	addr := c.fetch16()
	ptr := uint32(c.PB)<<16 | uint32(addr+c.indexX())&0xFFFF
	return ptr
}

// relBranch8 computes the target PC for an 8-bit signed PC-relative
// branch; the displacement is added to PC after the operand fetch.
func (c *CPU) relBranch8() uint16 {
	disp := int8(c.fetch8())
	return uint16(int32(c.PC) + int32(disp))
}

func (c *CPU) relBranch16() uint16 {
	disp := int16(c.fetch16())
	return uint16(int32(c.PC) + int32(disp))
}
