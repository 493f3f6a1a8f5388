package ppu

// bppTable gives the bit depth (0, 2, 4 or 8) of each of the four
// background layers for a given BGMODE value. Mode 7's rotated bitmap
// plane and offset-per-tile modes (2, 4, 6) are non-goals and render
// as blank BG3/BG4 planes; only the BG1/BG2 depths those modes share
// with the simpler modes are honored.
var bppTable = [8][4]uint8{
	{2, 2, 2, 2}, // mode 0
	{4, 4, 2, 0}, // mode 1
	{4, 4, 0, 0}, // mode 2 (offset-per-tile not modeled)
	{8, 4, 0, 0}, // mode 3
	{8, 2, 0, 0}, // mode 4
	{4, 2, 0, 0}, // mode 5 (hires not modeled)
	{4, 0, 0, 0}, // mode 6
	{0, 0, 0, 0}, // mode 7 (rotated bitmap plane not modeled)
}

const tileMapSize = 32 // tiles per tilemap side; extended (64-wide/tall) maps not modeled

// tileWordStride returns the VRAM word distance between consecutive
// tile characters at a given bit depth.
func tileWordStride(bpp uint8) uint16 {
	return uint16(bpp) * 8 / 2
}

// tilePixel decodes one pixel's color index (0 = transparent) out of
// the interleaved-bitplane tile format: each pair of bitplanes occupies
// 8 consecutive VRAM words, one word per row, low byte holding the
// even plane and high byte the odd plane of the pair.
func tilePixel(vram *[0x8000]uint16, charBase uint16, tileIndex uint16, bpp uint8, px, py int) uint8 {
	if bpp == 0 {
		return 0
	}
	base := charBase + tileIndex*tileWordStride(bpp)
	bit := 7 - px
	var color uint8
	for pair := uint8(0); pair < bpp/2; pair++ {
		word := vram[(base+uint16(pair)*8+uint16(py))&0x7FFF]
		lo := uint8(word) >> uint(bit) & 1
		hi := uint8(word>>8) >> uint(bit) & 1
		color |= (lo | hi<<1) << (pair * 2)
	}
	return color
}

// bgr555ToRGBA expands a 15-bit BGR555 color (bit15 unused) to opaque
// 8-bit RGBA, scaled by the current screen brightness (0-15).
func bgr555ToRGBA(c uint16, brightness uint8) (r, g, b, a uint8) {
	r5 := uint8(c & 0x1F)
	g5 := uint8((c >> 5) & 0x1F)
	b5 := uint8((c >> 10) & 0x1F)
	scale := func(v5 uint8) uint8 {
		v8 := (v5<<3 | v5>>2)
		return uint8(uint16(v8) * uint16(brightness) / 15)
	}
	return scale(r5), scale(g5), scale(b5), 0xFF
}

// renderVisibleLine rasterizes one visible scanline (0-223) into the
// framebuffer: backgrounds are composited by priority first, then the
// sprite plane is drawn last-to-first so that OAM index 0 ends up on
// top, matching its status as the highest-priority sprite.
func (p *PPU) renderVisibleLine(scanline uint16) {
	for x := 0; x < ScreenWidth; x++ {
		p.lineLayer[x] = LayerNone
		p.linePriority[x] = -1
	}

	depths := bppTable[p.bgMode]
	lineColor := [ScreenWidth]uint16{}

	for layer := 0; layer < 4; layer++ {
		bpp := depths[layer]
		if bpp == 0 || p.mainScreenEnable&(1<<uint(layer)) == 0 {
			continue
		}
		bg := &p.bg[layer]
		for x := 0; x < ScreenWidth; x++ {
			srcX := x + int(bg.hScroll)
			srcY := int(scanline) + int(bg.vScroll)
			tx := (srcX / 8) % tileMapSize
			ty := (srcY / 8) % tileMapSize
			if tx < 0 {
				tx += tileMapSize
			}
			if ty < 0 {
				ty += tileMapSize
			}
			px, py := srcX%8, srcY%8
			if px < 0 {
				px += 8
			}
			if py < 0 {
				py += 8
			}

			entry := p.VRAM[(bg.tilemapBase+uint16(ty)*tileMapSize+uint16(tx))&0x7FFF]
			tileIndex := entry & 0x3FF
			paletteGroup := (entry >> 10) & 0x7
			priorityBit := (entry >> 13) & 1
			if entry&0x4000 != 0 { // horizontal flip
				px = 7 - px
			}
			if entry&0x8000 != 0 { // vertical flip
				py = 7 - py
			}

			colorIndex := tilePixel(&p.VRAM, bg.charBase, tileIndex, bpp, px, py)
			if colorIndex == 0 {
				continue
			}

			score := int(priorityBit)*8 + (3 - layer)
			if layer == 2 && p.bg3Priority {
				score += 16
			}
			if score <= p.linePriority[x] {
				continue
			}

			cgramIndex := paletteIndex(bpp, paletteGroup, uint16(colorIndex))
			p.linePriority[x] = score
			p.lineLayer[x] = Layer(layer)
			lineColor[x] = p.CGRAM[cgramIndex]
		}
	}

	if p.mainScreenEnable&0x10 != 0 {
		p.renderSprites(scanline, &lineColor)
	}

	rowOff := int(scanline) * ScreenWidth * 4
	backdrop := p.CGRAM[0]
	for x := 0; x < ScreenWidth; x++ {
		c := backdrop
		if p.lineLayer[x] != LayerNone {
			c = lineColor[x]
		}
		r, g, b, a := bgr555ToRGBA(c, p.brightness)
		off := rowOff + x*4
		p.framebuffer[off+0] = r
		p.framebuffer[off+1] = g
		p.framebuffer[off+2] = b
		p.framebuffer[off+3] = a
	}
}

// paletteIndex computes the CGRAM entry for a decoded pixel:
// paletteGroup * (1<<bpp) + colorIndex, masked to the 256-entry table.
func paletteIndex(bpp uint8, group, colorIndex uint16) uint16 {
	return (group*(1<<bpp) + colorIndex) & 0xFF
}

const spriteBpp = 4 // OBJ tiles are always 4bpp

// renderSprites draws the 8x8 sprite plane (16x16 OAM sprites are not
// modeled) for one scanline, iterating OAM back-to-front so index 0
// ends up drawn last and thus on top.
func (p *PPU) renderSprites(scanline uint16, lineColor *[ScreenWidth]uint16) {
	for i := 127; i >= 0; i-- {
		base := i * 4
		y := int(p.OAM[base+1])
		spriteY := scanline - uint16(y)
		if spriteY >= 8 {
			continue
		}
		x := int(p.OAM[base])
		tileIndex := uint16(p.OAM[base+2])
		attr := p.OAM[base+3]
		paletteGroup := uint16((attr>>1)&0x07) + 8
		priorityBit := (attr >> 4) & 0x3
		flipX := attr&0x40 != 0
		flipY := attr&0x80 != 0

		py := int(spriteY)
		if flipY {
			py = 7 - py
		}

		for col := 0; col < 8; col++ {
			sx := x + col
			if sx < 0 || sx >= ScreenWidth {
				continue
			}
			px := col
			if flipX {
				px = 7 - px
			}
			colorIndex := tilePixel(&p.VRAM, p.objCharBase, tileIndex, spriteBpp, px, py)
			if colorIndex == 0 {
				continue
			}
			score := int(priorityBit)*8 + 32 // sprites outrank backgrounds at equal tier
			if score < p.linePriority[sx] {
				continue
			}
			p.linePriority[sx] = score
			p.lineLayer[sx] = LayerOBJ
			lineColor[sx] = p.CGRAM[paletteIndex(spriteBpp, paletteGroup, uint16(colorIndex))]
		}
	}
}
