package ppu

import "testing"

func TestCGRAMRoundTrip(t *testing.T) {
	p := New()
	p.WriteRegister(0x2121, 0x05) // CGADD = 5
	p.WriteRegister(0x2122, 0x34) // low byte
	p.WriteRegister(0x2122, 0xBA) // high byte (bit7 ignored)

	if got := p.CGRAM[5]; got != 0x3A34 {
		t.Fatalf("CGRAM[5] = %#04x, want 0x3A34", got)
	}

	p.WriteRegister(0x2121, 0x05)
	if got := p.ReadRegister(0x213B); got != 0x34 {
		t.Fatalf("CGDATA low read = %#02x, want 0x34", got)
	}
	if got := p.ReadRegister(0x213B); got != 0x3A {
		t.Fatalf("CGDATA high read = %#02x, want 0x3A", got)
	}
}

func TestVRAMIncrementsOncePerWord(t *testing.T) {
	p := New()
	p.WriteRegister(0x2115, 0x80) // step 1, increment on high-byte write
	p.WriteRegister(0x2116, 0x00)
	p.WriteRegister(0x2117, 0x00) // VMADD = 0

	p.WriteRegister(0x2118, 0xAA) // low byte, should NOT advance address
	if p.vramAddr != 0 {
		t.Fatalf("vramAddr advanced after low-byte write: %d", p.vramAddr)
	}
	p.WriteRegister(0x2119, 0xBB) // high byte, should advance address
	if p.vramAddr != 1 {
		t.Fatalf("vramAddr = %d after high write, want 1", p.vramAddr)
	}
	if p.VRAM[0] != 0xBBAA {
		t.Fatalf("VRAM[0] = %#04x, want 0xBBAA", p.VRAM[0])
	}
}

func TestTransparentPixelNeverDrawn(t *testing.T) {
	p := New()
	p.bgMode = 0
	p.mainScreenEnable = 0x01 // BG1 only
	p.CGRAM[0] = 0x1234       // distinctive backdrop color

	// tile 0's VRAM content is left all-zero: every pixel decodes to
	// color index 0, i.e. fully transparent.
	p.renderVisibleLine(0)

	for x := 0; x < ScreenWidth; x++ {
		if p.lineLayer[x] != LayerNone {
			t.Fatalf("pixel %d claimed by layer %v despite transparent tile", x, p.lineLayer[x])
		}
	}

	r, g, b, _ := bgr555ToRGBA(p.CGRAM[0], p.brightness)
	off := 0
	if p.framebuffer[off] != r || p.framebuffer[off+1] != g || p.framebuffer[off+2] != b {
		t.Fatalf("backdrop color not written when every layer is transparent")
	}
}

func TestSolidTilePaintsFramebuffer(t *testing.T) {
	p := New()
	p.bgMode = 0
	p.mainScreenEnable = 0x01
	p.brightness = 15
	p.bg[0].tilemapBase = 0
	p.bg[0].charBase = 0x100

	// Tilemap entry at (0,0): tile index 1, palette group 0, no flip/priority.
	p.VRAM[0] = 1

	// Tile 1 at charBase 0x100, 2bpp stride 8 words/tile -> word 0x108.
	// Row 0: low-plane byte 0xFF (all bit0 set), high-plane byte 0x00
	// -> every pixel in row 0 has color index 1.
	p.VRAM[0x108] = 0x00FF

	p.CGRAM[1] = 0x7FFF // distinctive opaque color for palette index 1

	p.renderVisibleLine(0)

	if p.lineLayer[0] != LayerBG1 {
		t.Fatalf("pixel 0 layer = %v, want LayerBG1", p.lineLayer[0])
	}
	r, g, b, _ := bgr555ToRGBA(p.CGRAM[1], 15)
	if p.framebuffer[0] != r || p.framebuffer[1] != g || p.framebuffer[2] != b {
		t.Fatalf("framebuffer[0:3] = %v,%v,%v want %v,%v,%v", p.framebuffer[0], p.framebuffer[1], p.framebuffer[2], r, g, b)
	}
}

func TestSpriteUsesPaletteFromAttributeBits1To3(t *testing.T) {
	p := New()
	p.bgMode = 0
	p.mainScreenEnable = 0x10 // OBJ only
	p.brightness = 15
	p.objCharBase = 0x100

	// OAM entry 0: x=0, y=0, tile 1, attr palette nibble = 5 (bits 1-3),
	// no flip/priority.
	p.OAM[0] = 0 // X
	p.OAM[1] = 0 // Y
	p.OAM[2] = 1 // tile index
	p.OAM[3] = 5 << 1

	// Tile 1 at objCharBase 0x100, 4bpp stride 16 words/tile -> word 0x110.
	// Row 0 low-plane byte 0xFF -> every pixel in row 0 has color index 1.
	p.VRAM[0x110] = 0x00FF

	wantIndex := paletteIndex(spriteBpp, uint16(5)+8, 1)
	p.CGRAM[wantIndex] = 0x7FFF // distinctive color at the expected palette slot
	p.CGRAM[paletteIndex(spriteBpp, 8, 1)] = 0x001F // wrong-palette color (group 0), should not be used

	p.renderVisibleLine(0)

	if p.lineLayer[0] != LayerOBJ {
		t.Fatalf("pixel 0 layer = %v, want LayerOBJ", p.lineLayer[0])
	}
	r, g, b, _ := bgr555ToRGBA(p.CGRAM[wantIndex], 15)
	if p.framebuffer[0] != r || p.framebuffer[1] != g || p.framebuffer[2] != b {
		t.Fatalf("framebuffer[0:3] = %v,%v,%v want %v,%v,%v (wrong palette group used)",
			p.framebuffer[0], p.framebuffer[1], p.framebuffer[2], r, g, b)
	}
}

func TestRenderScanlineLatchesVBlankAndFiresCallbacks(t *testing.T) {
	p := New()
	nmiFired := false
	frameFired := false
	p.SetNMICallback(func() { nmiFired = true })
	p.SetFrameCompleteCallback(func() { frameFired = true })

	for i := 0; i < vblankScanline; i++ {
		p.RenderScanline()
	}
	if !p.InVBlank() {
		t.Fatalf("expected vblank latched at scanline %d", vblankScanline)
	}
	if !nmiFired {
		t.Fatalf("expected NMI callback to fire entering vblank")
	}

	for i := vblankScanline; i < totalScanlines; i++ {
		p.RenderScanline()
	}
	if p.Scanline() != 0 {
		t.Fatalf("scanline = %d after wraparound, want 0", p.Scanline())
	}
	if p.FrameCount() != 1 {
		t.Fatalf("frameCount = %d, want 1", p.FrameCount())
	}
	if !frameFired {
		t.Fatalf("expected frame-complete callback to fire at wraparound")
	}
}
