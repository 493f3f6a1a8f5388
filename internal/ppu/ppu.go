// Package ppu implements the SNES Picture Processing Unit: a
// per-scanline tile/sprite rasterizer producing an RGBA framebuffer.
package ppu

const (
	ScreenWidth  = 256
	ScreenHeight = 224
	totalScanlines = 262
	vblankScanline = 224
)

// Layer identifies one of the four background layers or the sprite
// plane, used by the per-pixel priority scratch buffer.
type Layer uint8

const (
	LayerBG1 Layer = iota
	LayerBG2
	LayerBG3
	LayerBG4
	LayerOBJ
	LayerNone
)

// background holds one BGn layer's register state.
type background struct {
	tilemapBase uint16 // word address
	charBase    uint16 // word address
	hScroll     uint16
	vScroll     uint16
	tileSize16  bool // false = 8x8, true = 16x16 (not rendered differently; recorded per spec data model)
}

// PPU is the Picture Processing Unit: VRAM/CGRAM/OAM, the register
// file that addresses them, and the scanline rasterizer.
type PPU struct {
	VRAM  [0x8000]uint16 // 64KiB, word-addressable
	CGRAM [256]uint16    // 256 BGR555 entries
	OAM   [544]uint8     // 128 x 4-byte primary + 32-byte extended tail

	brightness uint8 // 0-15

	// VRAM access
	vramAddr     uint16
	vramStep     uint16
	vramIncOnHigh bool
	objCharBase  uint16

	// CGRAM access
	cgramAddr uint16 // word index 0-255
	cgramHigh bool   // toggle: false = awaiting low byte
	cgramLatchLow uint8

	// OAM access
	oamAddr uint16 // byte address, 0-0x21F
	oamHigh bool

	bgMode      uint8
	bg3Priority bool // BGMODE bit3: promotes BG3 in mode1
	bg          [4]background

	mainScreenEnable uint8 // bits 0-4: BG1-4,OBJ
	subScreenEnable  uint8

	mosaicSize uint8
	mosaicMask uint8

	// BG scroll double-write shares one previous-byte buffer across
	// every layer's H/V scroll port, per the spec's flagged source
	// behavior (§9 open question) rather than one buffer per layer.
	scrollToggle  bool
	scrollPrevByte uint8

	scanline    uint16
	frameCount  uint64
	vblank      bool

	// Per-scanline scratch buffers, reset at the start of every
	// visible scanline.
	lineLayer    [ScreenWidth]Layer
	linePriority [ScreenWidth]int

	framebuffer [ScreenWidth * ScreenHeight * 4]uint8

	onNMI      func()
	onFrame    func()
}

// New creates a PPU with all registers zeroed, matching hardware
// power-up (brightness 0, forced-blank equivalent is out of scope).
func New() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

// SetNMICallback installs the function invoked on the vblank edge
// (scanline 223 -> 224), mirroring the scheduler's NMI wiring.
func (p *PPU) SetNMICallback(fn func()) { p.onNMI = fn }

// SetFrameCompleteCallback installs the function invoked once the
// last scanline (261) wraps back to 0.
func (p *PPU) SetFrameCompleteCallback(fn func()) { p.onFrame = fn }

// Reset returns every register and memory to zero and rewinds the
// raster position to scanline 0.
func (p *PPU) Reset() {
	*p = PPU{onNMI: p.onNMI, onFrame: p.onFrame}
}

func (p *PPU) Scanline() uint16   { return p.scanline }
func (p *PPU) FrameCount() uint64 { return p.frameCount }
func (p *PPU) InVBlank() bool     { return p.vblank }

// SetFrameCount lets the owning bus restore the frame counter when it
// loads a save state.
func (p *PPU) SetFrameCount(n uint64) { p.frameCount = n }

// Framebuffer returns the RGBA pixel buffer, 256x224x4 bytes, valid
// after the frame-complete callback fires.
func (p *PPU) Framebuffer() []uint8 { return p.framebuffer[:] }

// RenderScanline implements §4.4's per-scanline tick: render visible
// rows into the framebuffer, then advance the raster position,
// latching vblank at 224 and wrapping (and firing the frame-complete
// callback) at 262.
func (p *PPU) RenderScanline() {
	if p.scanline < vblankScanline {
		p.renderVisibleLine(p.scanline)
	}

	p.scanline++
	if p.scanline == vblankScanline {
		p.vblank = true
		if p.onNMI != nil {
			p.onNMI()
		}
	}
	if p.scanline == totalScanlines {
		p.scanline = 0
		p.vblank = false
		p.frameCount++
		if p.onFrame != nil {
			p.onFrame()
		}
	}
}
