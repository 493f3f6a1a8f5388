// Package bus wires the CPU, PPU, APU, DMA engine and controllers
// into one owning context and exposes the host-facing control surface
// (§6): load_rom, reset, register/flag introspection and save-state.
package bus

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gosnes/internal/apu"
	"gosnes/internal/cartridge"
	"gosnes/internal/cpu"
	"gosnes/internal/dma"
	"gosnes/internal/input"
	"gosnes/internal/memory"
	"gosnes/internal/ppu"
)

// Bus owns every SNES component for one emulator instance and is the
// sole mutator of their state, per §5's single-owning-context model.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	DMA    *dma.Engine
	Input  *input.Pair
	Memory *memory.Memory

	cart *cartridge.Cartridge

	nmiPending     bool
	frameCallback  func([]uint8)
	cartridgeTitle string
}

// New creates a fully wired, unreset bus with no cartridge loaded.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		DMA:   dma.New(),
		Input: input.NewPair(),
	}
	b.Memory = memory.New(b.PPU, b.APU, b.Input, b.DMA, nil)
	b.CPU = cpu.New(b.Memory)

	b.PPU.SetNMICallback(b.onPPUNMI)
	b.PPU.SetFrameCompleteCallback(b.onFrameComplete)

	b.Reset()
	return b
}

// SetFrameCallback installs the function invoked once per frame with
// the PPU's RGBA framebuffer, per §6's frame output contract.
func (b *Bus) SetFrameCallback(fn func([]uint8)) { b.frameCallback = fn }

func (b *Bus) onPPUNMI() {
	if b.Memory.NMIEnabled() {
		b.nmiPending = true
	}
}

func (b *Bus) onFrameComplete() {
	if b.frameCallback != nil {
		b.frameCallback(b.PPU.Framebuffer())
	}
}

// ServiceNMI delivers a latched NMI to the CPU; called by StepCPU
// before each instruction, since interrupt servicing happens between
// instructions rather than inside PPU.RenderScanline.
func (b *Bus) ServiceNMI() {
	if b.nmiPending {
		b.CPU.RaiseNMI()
		b.nmiPending = false
	}
}

// LoadROM parses a ROM image and resets the machine to run it.
func (b *Bus) LoadROM(data []uint8) error {
	cart, err := cartridge.Load(data)
	if err != nil {
		return fmt.Errorf("bus: load rom: %w", err)
	}
	b.cart = cart
	b.cartridgeTitle = cart.Header.Title
	b.Memory.SetCartridge(cart)
	b.Reset()
	return nil
}

// CartridgeTitle returns the loaded ROM's header title, or "" if none
// is loaded.
func (b *Bus) CartridgeTitle() string { return b.cartridgeTitle }

// Reset reinitializes every component to power-up/reset state.
func (b *Bus) Reset() {
	b.Memory.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.DMA.Reset()
	b.Input.Reset()
	b.nmiPending = false

	b.PPU.SetNMICallback(b.onPPUNMI)
	b.PPU.SetFrameCompleteCallback(b.onFrameComplete)

	b.CPU.Reset()
}

// StepCPU executes exactly one CPU instruction, servicing any pending
// NMI first, and returns the consumed cycle count.
func (b *Bus) StepCPU() uint32 {
	b.ServiceNMI()
	return b.CPU.Step()
}

// RenderScanline advances the PPU by one scanline tick.
func (b *Bus) RenderScanline() { b.PPU.RenderScanline() }

// FrameCount returns the number of frames the PPU has completed.
func (b *Bus) FrameCount() uint64 { return b.PPU.FrameCount() }

// Framebuffer returns the PPU's current RGBA pixel buffer.
func (b *Bus) Framebuffer() []uint8 { return b.PPU.Framebuffer() }

// GetRegisters returns a snapshot of CPU registers for host
// introspection, per §6's get_registers contract.
func (b *Bus) GetRegisters() cpu.Registers { return b.CPU.GetRegisters() }

// GetFlags returns the packed CPU status register, per §6's
// get_flags contract.
func (b *Bus) GetFlags() uint8 { return b.CPU.GetFlags() }

// snapshot is the save-state wire format: enough register and memory
// state to resume an in-progress session, per SPEC_FULL's
// save_state/load_state supplement. HDMA, audio synthesis state and
// debug counters are intentionally excluded.
type snapshot struct {
	CPU       cpu.Registers
	WRAM      []uint8
	VRAM      []uint16
	CGRAM     []uint16
	OAM       []uint8
	SRAM      []uint8
	DMAChan   [8][16]uint8
	FrameCount uint64
}

// SaveState serializes enough state to resume the current session,
// per §6's save_state contract.
func (b *Bus) SaveState() ([]byte, error) {
	s := snapshot{
		CPU:        b.CPU.GetRegisters(),
		WRAM:       append([]uint8(nil), b.Memory.WRAM()...),
		VRAM:       append([]uint16(nil), b.PPU.VRAM[:]...),
		CGRAM:      append([]uint16(nil), b.PPU.CGRAM[:]...),
		OAM:        append([]uint8(nil), b.PPU.OAM[:]...),
		DMAChan:    b.DMA.ChannelSnapshot(),
		FrameCount: b.PPU.FrameCount(),
	}
	if b.cart != nil {
		s.SRAM = append([]uint8(nil), b.cart.SRAM()...)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil, fmt.Errorf("bus: save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores state previously produced by SaveState. The
// cartridge itself (ROM bytes, mapping mode) is not part of the
// snapshot; the caller must have already loaded the matching ROM.
func (b *Bus) LoadState(data []uint8) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("bus: load state: %w", err)
	}

	b.CPU.SetRegisters(s.CPU)
	b.Memory.SetWRAM(s.WRAM)
	copy(b.PPU.VRAM[:], s.VRAM)
	copy(b.PPU.CGRAM[:], s.CGRAM)
	copy(b.PPU.OAM[:], s.OAM)
	b.DMA.RestoreChannels(s.DMAChan)
	b.PPU.SetFrameCount(s.FrameCount)
	if b.cart != nil && len(s.SRAM) > 0 {
		copy(b.cart.SRAM(), s.SRAM)
	}
	return nil
}
