// Package memory implements the SNES bus: address decoding across
// WRAM, cartridge ROM/SRAM, and the PPU/APU/DMA/input register
// windows (§4.1).
package memory

import "gosnes/internal/dma"

// PPUPorts is the register-level interface the PPU exposes to the bus.
type PPUPorts interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// APUPorts is the 4-port mailbox interface the APU stub exposes.
type APUPorts interface {
	ReadPort(n uint8) uint8
	WritePort(n uint8, value uint8)
}

// InputPorts is the controller-pair interface the bus drives on
// strobe writes and serial reads.
type InputPorts interface {
	WriteStrobe(value uint8)
	ReadPort1() uint8
	ReadPort2() uint8
}

// DMAEngine is the channel register file and transfer driver the bus
// triggers from 0x420B.
type DMAEngine interface {
	WriteRegister(addr uint16, value uint8)
	ReadRegister(addr uint16) uint8
	Trigger(mask uint8, abus dma.ABus, bbus dma.Ports)
}

// CartridgeInterface is the subset of *cartridge.Cartridge the bus
// depends on, kept as an interface so this package never imports the
// cartridge package directly.
type CartridgeInterface interface {
	ReadROM(bank uint8, offset uint16) uint8
	WriteROM(bank uint8, offset uint16, value uint8)
	ReadSRAM(addr uint16) uint8
	WriteSRAM(addr uint16, value uint8)
}

const wramSize = 0x20000 // 128 KiB, banks 0x7E-0x7F

// Memory is the SNES system bus: WRAM plus the decode logic that
// fans CPU reads/writes out to the cartridge and the I/O register
// windows.
type Memory struct {
	wram [wramSize]uint8

	// ioShadow mirrors 0x2000-0x5FFF for passive readback of
	// write-only registers, per §3's "I/O register mirror" data model.
	ioShadow [0x4000]uint8

	ppu   PPUPorts
	apu   APUPorts
	input InputPorts
	dma   DMAEngine
	cart  CartridgeInterface

	nmiEnable     bool // NMITIMEN (0x4200) bit 7
	autoJoyEnable bool // NMITIMEN bit 0; polling itself is not modeled
}

// New creates a bus with the given component wiring. cart may be nil
// before a ROM is loaded; ROM-mapped reads return open-bus (0xFF)
// until SetCartridge installs one.
func New(ppu PPUPorts, apu APUPorts, input InputPorts, dma DMAEngine, cart CartridgeInterface) *Memory {
	return &Memory{ppu: ppu, apu: apu, input: input, dma: dma, cart: cart}
}

// SetCartridge installs (or replaces) the cartridge backing ROM/SRAM
// reads.
func (m *Memory) SetCartridge(cart CartridgeInterface) { m.cart = cart }

// Reset clears WRAM and the I/O shadow buffer; register state inside
// the PPU/APU/DMA/input components is reset independently by their
// owners.
func (m *Memory) Reset() {
	m.wram = [wramSize]uint8{}
	m.ioShadow = [0x4000]uint8{}
	m.nmiEnable = false
	m.autoJoyEnable = false
}

// NMIEnabled reports NMITIMEN bit 7, consulted by the bus's PPU NMI
// callback at the vblank edge.
func (m *Memory) NMIEnabled() bool { return m.nmiEnable }

// WRAM returns the raw 128 KiB work-RAM buffer for save-state
// serialization.
func (m *Memory) WRAM() []uint8 { return m.wram[:] }

// SetWRAM restores a previously saved WRAM image.
func (m *Memory) SetWRAM(data []uint8) {
	copy(m.wram[:], data)
}

// Read implements cpu.Memory and dma.ABus: a 24-bit address split
// into bank (top byte) and 16-bit offset, routed per §4.1.
func (m *Memory) Read(addr uint32) uint8 {
	bank := uint8(addr >> 16)
	offset := uint16(addr)
	return m.read(bank, offset)
}

// Write implements cpu.Memory and dma.ABus.
func (m *Memory) Write(addr uint32, value uint8) {
	bank := uint8(addr >> 16)
	offset := uint16(addr)
	m.write(bank, offset, value)
}

func (m *Memory) read(bank uint8, offset uint16) uint8 {
	switch {
	case bank == 0x7E || bank == 0x7F:
		return m.wram[(uint32(bank-0x7E)<<16)|uint32(offset)]

	case isLowBank(bank):
		switch {
		case offset < 0x2000:
			return m.wram[offset]
		case offset < 0x6000:
			return m.readIO(offset)
		case offset < 0x8000:
			return m.readExpansion(bank, offset)
		default:
			return m.cartRead(bank, offset)
		}

	case bank&^0x80 >= sramBankStart && bank&^0x80 <= sramBankEnd && offset < 0x8000:
		return m.readExpansion(bank, offset)

	default:
		return m.cartRead(bank, offset)
	}
}

func (m *Memory) write(bank uint8, offset uint16, value uint8) {
	switch {
	case bank == 0x7E || bank == 0x7F:
		m.wram[(uint32(bank-0x7E)<<16)|uint32(offset)] = value

	case isLowBank(bank):
		switch {
		case offset < 0x2000:
			m.wram[offset] = value
		case offset < 0x6000:
			m.writeIO(offset, value)
		case offset < 0x8000:
			m.writeExpansion(bank, offset, value)
		default:
			m.cartWrite(bank, offset, value)
		}

	case bank&^0x80 >= sramBankStart && bank&^0x80 <= sramBankEnd && offset < 0x8000:
		m.writeExpansion(bank, offset, value)

	default:
		m.cartWrite(bank, offset, value)
	}
}

// isLowBank reports whether bank is in 0x00-0x3F or 0x80-0xBF, the
// ranges that expose the WRAM mirror and I/O window per §4.1.
func isLowBank(bank uint8) bool {
	b := bank &^ 0x80
	return b <= 0x3F
}

// sramBankStart/End are the battery-backed SRAM banks on LoROM carts
// (real hardware places cartridge SRAM here, ahead of the 0x8000 ROM
// window); supplements the spec's "other banks => ROM" rule since
// without it no save RAM would ever be reachable.
const sramBankStart, sramBankEnd = 0x70, 0x7D

func (m *Memory) readExpansion(bank uint8, offset uint16) uint8 {
	b := bank &^ 0x80
	if b >= sramBankStart && b <= sramBankEnd && m.cart != nil {
		return m.cart.ReadSRAM(offset)
	}
	return 0xFF
}

func (m *Memory) writeExpansion(bank uint8, offset uint16, value uint8) {
	b := bank &^ 0x80
	if b >= sramBankStart && b <= sramBankEnd && m.cart != nil {
		m.cart.WriteSRAM(offset, value)
	}
}

func (m *Memory) cartRead(bank uint8, offset uint16) uint8 {
	if m.cart == nil {
		return 0xFF
	}
	return m.cart.ReadROM(bank, offset)
}

func (m *Memory) cartWrite(bank uint8, offset uint16, value uint8) {
	if m.cart != nil {
		m.cart.WriteROM(bank, offset, value)
	}
}

// readIO dispatches the 0x2000-0x5FFF register window.
func (m *Memory) readIO(offset uint16) uint8 {
	switch {
	case offset >= 0x2100 && offset <= 0x213F:
		if m.ppu != nil && InReadWhitelistAddr(offset) {
			v := m.ppu.ReadRegister(offset)
			m.ioShadow[offset-0x2000] = v
			return v
		}
		return m.ioShadow[offset-0x2000]

	case offset >= 0x2140 && offset <= 0x2143:
		if m.apu != nil {
			return m.apu.ReadPort(uint8(offset - 0x2140))
		}
		return m.ioShadow[offset-0x2000]

	case offset == 0x4016:
		if m.input != nil {
			return m.input.ReadPort1()
		}
		return 0

	case offset == 0x4017:
		if m.input != nil {
			return m.input.ReadPort2()
		}
		return 0

	case offset >= 0x4300 && offset <= 0x437F:
		if m.dma != nil {
			return m.dma.ReadRegister(offset)
		}
		return m.ioShadow[offset-0x2000]

	default:
		return m.ioShadow[offset-0x2000]
	}
}

// writeIO dispatches the 0x2000-0x5FFF register window.
func (m *Memory) writeIO(offset uint16, value uint8) {
	m.ioShadow[offset-0x2000] = value

	switch {
	case offset >= 0x2100 && offset <= 0x213F:
		if m.ppu != nil {
			m.ppu.WriteRegister(offset, value)
		}

	case offset >= 0x2140 && offset <= 0x2143:
		if m.apu != nil {
			m.apu.WritePort(uint8(offset-0x2140), value)
		}

	case offset == 0x4016:
		if m.input != nil {
			m.input.WriteStrobe(value)
		}

	case offset == 0x4200:
		m.nmiEnable = value&0x80 != 0
		m.autoJoyEnable = value&0x01 != 0

	case offset == 0x420B:
		if m.dma != nil {
			m.dma.Trigger(value, m, dmaPortAdapter{m})
		}

	case offset >= 0x4300 && offset <= 0x437F:
		if m.dma != nil {
			m.dma.WriteRegister(offset, value)
		}
	}
}

// dmaPortAdapter exposes the bus's PPU/APU register window as the
// dma.Ports B-bus collaborator, so the DMA engine never imports ppu
// or apu directly.
type dmaPortAdapter struct{ m *Memory }

func (a dmaPortAdapter) ReadPort(addr uint16) uint8 {
	return a.m.readIO(addr)
}

func (a dmaPortAdapter) WritePort(addr uint16, value uint8) {
	a.m.writeIO(addr, value)
}

// InReadWhitelistAddr reports whether addr is one of the small set of
// PPU registers with real read semantics (see ppu.InReadWhitelist);
// duplicated here as a package-local address check to avoid an import
// cycle risk if the ppu package ever needs the memory package.
func InReadWhitelistAddr(addr uint16) bool {
	switch addr {
	case 0x2134, 0x2135, 0x2136, 0x2137, 0x2138, 0x2139, 0x213A, 0x213B, 0x213E, 0x213F:
		return true
	}
	return false
}
