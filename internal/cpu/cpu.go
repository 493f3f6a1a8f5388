// Package cpu implements the 65816 CPU emulation for the SNES.
package cpu

import "fmt"

// Memory is the bus interface the CPU fetches instructions and operands
// through. Addresses are 24-bit (bank<<16 | offset) packed into a uint32.
type Memory interface {
	Read(addr uint32) uint8
	Write(addr uint32, value uint8)
}

// Status flag bit masks within the P register. E is tracked separately,
// it has no bit position of its own in P.
const (
	FlagMaskN = 0x80
	FlagMaskV = 0x40
	FlagMaskM = 0x20
	FlagMaskX = 0x10
	FlagMaskD = 0x08
	FlagMaskI = 0x04
	FlagMaskZ = 0x02
	FlagMaskC = 0x01
)

// Interrupt vectors (16-bit, bank 0).
const (
	vectorNativeNMI    = 0xFFEA
	vectorNativeIRQ    = 0xFFEE
	vectorEmulResetPC  = 0xFFFC
	vectorEmulNMI      = 0xFFFA
	vectorEmulIRQ      = 0xFFFE
	resetFallbackPC    = 0x8000
)

// CPU represents the 65816 processor used by the SNES.
type CPU struct {
	// General-purpose registers. A, X and Y are stored full width;
	// the M/X flags gate which bits participate in a given operation.
	A  uint16
	X  uint16
	Y  uint16
	SP uint16
	PC uint16
	PB uint8 // program bank
	DB uint8 // data bank
	D  uint16 // direct page register

	// Status flags. Named with a Flag prefix to avoid colliding with
	// the X register and the D (direct page) register above.
	FlagN bool
	FlagV bool
	FlagM bool
	FlagX bool
	FlagD bool
	FlagI bool
	FlagZ bool
	FlagC bool
	E     bool // emulation mode

	mem Memory

	cycles uint64

	nmiPending bool
	nmiLine    bool // edge-detected NMI input line
	irqLine    bool // level-triggered IRQ input line

	stopped bool // STP executed
	waiting bool // WAI executed, released by interrupt

	debugLog bool
}

// New creates a CPU bound to the given memory interface.
func New(mem Memory) *CPU {
	cpu := &CPU{mem: mem}
	cpu.Reset()
	return cpu
}

// SetDebugLog enables per-instruction tracing to stdout via fmt.Printf.
func (c *CPU) SetDebugLog(enabled bool) { c.debugLog = enabled }

// Reset performs the 65816 reset sequence: PC from the reset vector,
// emulation mode forced, SP to 0x01FF, M/X forced to 8-bit widths.
//
// If the vector reads back as 0x0000 the ROM is almost certainly
// missing or malformed; rather than let the CPU fetch from bank 0
// offset 0 and spin on garbage, the spec calls for an explicit
// lenient fallback to 0x8000 so simple demos still boot.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.D = 0
	c.PB, c.DB = 0, 0
	c.E = true
	c.FlagM, c.FlagX = true, true
	c.FlagI = true
	c.FlagD = false
	c.FlagC, c.FlagV, c.FlagN, c.FlagZ = false, false, false, false
	c.SP = 0x01FF

	lo := uint16(c.mem.Read(vectorEmulResetPC))
	hi := uint16(c.mem.Read(vectorEmulResetPC + 1))
	vec := lo | hi<<8
	if vec == 0 {
		vec = resetFallbackPC
	}
	c.PC = vec

	c.nmiPending = false
	c.nmiLine = false
	c.irqLine = false
	c.stopped = false
	c.waiting = false
}

// RaiseNMI latches a non-maskable interrupt, serviced before the next
// instruction (or immediately, if the CPU is halted in WAI).
func (c *CPU) RaiseNMI() {
	c.nmiPending = true
	c.waiting = false
}

// SetIRQLine sets the level-triggered IRQ input. The CPU services it
// between instructions whenever the line is asserted and I is clear.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
	if asserted {
		c.waiting = false
	}
}

// Step executes exactly one instruction (servicing a pending interrupt
// first, if any) and returns the number of cycles it cost.
func (c *CPU) Step() uint32 {
	if c.stopped {
		return 1
	}

	if c.nmiPending {
		c.nmiPending = false
		c.waiting = false
		return c.serviceInterrupt(c.nmiVector(), false)
	}
	if c.irqLine && !c.FlagI {
		c.waiting = false
		return c.serviceInterrupt(c.irqVector(), false)
	}

	if c.waiting {
		return 1
	}

	start := c.cycles
	opcode := c.fetch8()
	if c.debugLog {
		fmt.Printf("PC=%02X:%04X opcode=%02X A=%04X X=%04X Y=%04X SP=%04X E=%v M=%v X=%v\n",
			c.PB, c.PC, opcode, c.A, c.X, c.Y, c.SP, c.E, c.FlagM, c.FlagX)
	}
	c.execute(opcode)
	return uint32(c.cycles - start)
}

func (c *CPU) nmiVector() uint16 {
	if c.E {
		return vectorEmulNMI
	}
	return vectorNativeNMI
}

func (c *CPU) irqVector() uint16 {
	if c.E {
		return vectorEmulIRQ
	}
	return vectorNativeIRQ
}

// serviceInterrupt follows the BRK sequence without the PC offset:
// push PB (native only), PC, P; set I; clear D (native); vector in.
func (c *CPU) serviceInterrupt(vector uint16, isBreak bool) uint32 {
	cycles := uint32(0)
	if !c.E {
		c.push8(c.PB)
		cycles++
	}
	c.push16(c.PC)
	cycles += 2
	p := c.packP()
	if c.E && !isBreak {
		p &^= FlagMaskX // B bit shares X's position in emulation mode; cleared for hardware IRQ/NMI
	}
	c.push8(p)
	cycles++

	c.FlagI = true
	if !c.E {
		c.FlagD = false
	}
	c.PB = 0
	lo := uint16(c.mem.Read(uint32(vector)))
	hi := uint16(c.mem.Read(uint32(vector) + 1))
	c.PC = lo | hi<<8
	cycles += 2
	return cycles
}

// fetch8 reads the next byte at (PB<<16)|PC and advances PC.
func (c *CPU) fetch8() uint8 {
	v := c.mem.Read(uint32(c.PB)<<16 | uint32(c.PC))
	c.PC++
	c.cycles++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) fetch24() uint32 {
	lo := uint32(c.fetch8())
	mid := uint32(c.fetch8())
	hi := uint32(c.fetch8())
	return lo | mid<<8 | hi<<16
}

func (c *CPU) read8(addr uint32) uint8  { c.cycles++; return c.mem.Read(addr & 0xFFFFFF) }
func (c *CPU) write8(addr uint32, v uint8) {
	c.cycles++
	c.mem.Write(addr&0xFFFFFF, v)
}

func (c *CPU) read16(addr uint32) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | hi<<8
}

func (c *CPU) write16(addr uint32, v uint16) {
	c.write8(addr, uint8(v))
	c.write8(addr+1, uint8(v>>8))
}

// push8/pop8 implement the stack per §4.3: push writes then decrements
// SP; in emulation mode the high byte of SP is pinned to 0x01.
func (c *CPU) push8(v uint8) {
	c.write8(uint32(c.SP), v)
	c.SP--
	c.clampStack()
}

func (c *CPU) pop8() uint8 {
	c.SP++
	c.clampStack()
	return c.read8(uint32(c.SP))
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.pop8())
	hi := uint16(c.pop8())
	return lo | hi<<8
}

func (c *CPU) clampStack() {
	if c.E {
		c.SP = 0x0100 | (c.SP & 0x00FF)
	}
}

// packP encodes the flags into the P register byte.
func (c *CPU) packP() uint8 {
	var p uint8
	if c.FlagN {
		p |= FlagMaskN
	}
	if c.FlagV {
		p |= FlagMaskV
	}
	if c.FlagM {
		p |= FlagMaskM
	}
	if c.FlagX {
		p |= FlagMaskX
	}
	if c.FlagD {
		p |= FlagMaskD
	}
	if c.FlagI {
		p |= FlagMaskI
	}
	if c.FlagZ {
		p |= FlagMaskZ
	}
	if c.FlagC {
		p |= FlagMaskC
	}
	return p
}

// unpackP sets the flags from a P register byte, then re-applies the
// emulation-mode invariants (E forces M=X=1, narrows X/Y, clamps SP).
func (c *CPU) unpackP(p uint8) {
	c.FlagN = p&FlagMaskN != 0
	c.FlagV = p&FlagMaskV != 0
	c.FlagM = p&FlagMaskM != 0
	c.FlagX = p&FlagMaskX != 0
	c.FlagD = p&FlagMaskD != 0
	c.FlagI = p&FlagMaskI != 0
	c.FlagZ = p&FlagMaskZ != 0
	c.FlagC = p&FlagMaskC != 0
	c.applyEmulationInvariants()
}

// applyEmulationInvariants re-establishes E=1 ⇒ M=X=1, SP high byte
// 0x01, and X=1 ⇒ X/Y high bytes zero. Called after anything that can
// change E, M or X.
func (c *CPU) applyEmulationInvariants() {
	if c.E {
		c.FlagM = true
		c.FlagX = true
		c.clampStack()
	}
	if c.FlagX {
		c.X &= 0x00FF
		c.Y &= 0x00FF
	}
}

// GetFlags returns the packed P register, for host introspection.
func (c *CPU) GetFlags() uint8 { return c.packP() }

// SetFlags applies a packed P register, for host introspection and
// save-state restore. set(get()) == get() per the spec's idempotence
// property, modulo the emulation-mode invariants always re-applied.
func (c *CPU) SetFlags(p uint8) { c.unpackP(p) }

// Registers is a snapshot of CPU state for host introspection and
// save-state serialization.
type Registers struct {
	A, X, Y, SP, PC, D uint16
	PB, DB             uint8
	P                  uint8
	E                  bool
}

func (c *CPU) GetRegisters() Registers {
	return Registers{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, D: c.D,
		PB: c.PB, DB: c.DB, P: c.packP(), E: c.E,
	}
}

func (c *CPU) SetRegisters(r Registers) {
	c.A, c.X, c.Y, c.SP, c.PC, c.D = r.A, r.X, r.Y, r.SP, r.PC, r.D
	c.PB, c.DB = r.PB, r.DB
	c.E = r.E
	c.unpackP(r.P)
}

func (c *CPU) setNZ8(v uint8) {
	c.FlagZ = v == 0
	c.FlagN = v&0x80 != 0
}

func (c *CPU) setNZ16(v uint16) {
	c.FlagZ = v == 0
	c.FlagN = v&0x8000 != 0
}
