package ppu

// vramStepTable is the VMAIN step selection for bits 0-1: {1, 32,
// 128, 128}. Real hardware's third entry is 64; this table matches
// the documented register protocol exactly rather than hardware.
var vramStepTable = [4]uint16{1, 32, 128, 128}

// InReadWhitelist lists the only 0x21xx addresses that have real read
// semantics; everything else in 0x2100-0x213F is write-only and falls
// back to the bus's passive I/O mirror.
func InReadWhitelist(addr uint16) bool {
	switch addr {
	case 0x2134, 0x2135, 0x2136, // multiplication result (Mode 7, stubbed 0)
		0x2137,                          // software H/V latch (stubbed 0)
		0x2138,                          // OAM data read
		0x2139, 0x213A,                  // VRAM data read
		0x213B,                          // CGRAM data read
		0x213E, 0x213F:                  // STAT77/STAT78 stubs
		return true
	}
	return false
}

// WriteRegister dispatches a CPU write in the 0x2100-0x213F range.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x2100: // INIDISP
		p.brightness = value & 0x0F
	case 0x2101: // OBSEL
		p.objCharBase = uint16(value&0x07) * 0x2000
	case 0x2102: // OAMADDL
		p.oamAddr = (p.oamAddr &^ 0x1FF) | uint16(value)
		p.oamHigh = false
	case 0x2103: // OAMADDH
		if value&0x01 != 0 {
			p.oamAddr |= 0x100
		} else {
			p.oamAddr &^= 0x100
		}
		p.oamHigh = false
	case 0x2104: // OAMDATA
		p.OAM[p.oamAddr%uint16(len(p.OAM))] = value
		p.oamAddr = (p.oamAddr + 1) % 0x220
	case 0x2105: // BGMODE
		p.bgMode = value & 0x07
		p.bg3Priority = value&0x08 != 0
		for i := range p.bg {
			p.bg[i].tileSize16 = value&(0x10<<uint(i)) != 0
		}
	case 0x2106: // MOSAIC
		p.mosaicSize = value >> 4
		p.mosaicMask = value & 0x0F
	case 0x2107, 0x2108, 0x2109, 0x210A: // BGnSC
		i := addr - 0x2107
		p.bg[i].tilemapBase = uint16(value>>2) * 0x400
	case 0x210B: // BG12NBA
		p.bg[0].charBase = uint16(value&0x0F) * 0x1000
		p.bg[1].charBase = uint16(value>>4) * 0x1000
	case 0x210C: // BG34NBA
		p.bg[2].charBase = uint16(value&0x0F) * 0x1000
		p.bg[3].charBase = uint16(value>>4) * 0x1000
	case 0x210D, 0x210F, 0x2111, 0x2113: // BGnHOFS
		p.writeScroll(&p.bg[(addr-0x210D)/2].hScroll, value)
	case 0x210E, 0x2110, 0x2112, 0x2114: // BGnVOFS
		p.writeScroll(&p.bg[(addr-0x210E)/2].vScroll, value)
	case 0x2115: // VMAIN
		p.vramStep = vramStepTable[value&0x03]
		p.vramIncOnHigh = value&0x80 != 0
	case 0x2116: // VMADDL
		p.vramAddr = (p.vramAddr & 0xFF00) | uint16(value)
	case 0x2117: // VMADDH
		p.vramAddr = (p.vramAddr & 0x00FF) | uint16(value)<<8
	case 0x2118: // VMDATAL
		p.VRAM[p.vramAddr&0x7FFF] = (p.VRAM[p.vramAddr&0x7FFF] & 0xFF00) | uint16(value)
		if !p.vramIncOnHigh {
			p.vramAddr += p.vramStep
		}
	case 0x2119: // VMDATAH
		p.VRAM[p.vramAddr&0x7FFF] = (p.VRAM[p.vramAddr&0x7FFF] & 0x00FF) | uint16(value)<<8
		if p.vramIncOnHigh {
			p.vramAddr += p.vramStep
		}
	case 0x2121: // CGADD
		p.cgramAddr = uint16(value)
		p.cgramHigh = false
	case 0x2122: // CGDATA
		if !p.cgramHigh {
			p.cgramLatchLow = value
			p.cgramHigh = true
		} else {
			word := uint16(p.cgramLatchLow) | uint16(value&0x7F)<<8
			p.CGRAM[p.cgramAddr&0xFF] = word
			p.cgramAddr = (p.cgramAddr + 1) & 0xFF
			p.cgramHigh = false
		}
	case 0x212C: // TM
		p.mainScreenEnable = value & 0x1F
	case 0x212D: // TS
		p.subScreenEnable = value & 0x1F
	default:
		// Window/color-math/Mode-7 registers and the rest of the
		// range accept writes with no rendering effect; Mode 7,
		// HDMA and color math are non-goals.
	}
}

// writeScroll implements the two-write, shared-previous-byte scroll
// port protocol described in §9's open question.
func (p *PPU) writeScroll(target *uint16, value uint8) {
	if !p.scrollToggle {
		p.scrollPrevByte = value
		*target = (*target &^ 0x00FF) | uint16(value)
		p.scrollToggle = true
	} else {
		*target = uint16(value)<<8 | uint16(p.scrollPrevByte)
		p.scrollToggle = false
	}
}

// ReadRegister serves the small whitelist of 0x21xx ports that have
// real read semantics (VRAM/CGRAM/OAM data ports, status stubs);
// everything else is handled by the bus's passive I/O mirror and
// never reaches here.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2134, 0x2135, 0x2136, 0x2137, 0x213E, 0x213F:
		return 0x00 // Mode 7 multiply / H-V latch / status stubs
	case 0x2138: // OAMDATA read
		v := p.OAM[p.oamAddr%uint16(len(p.OAM))]
		p.oamAddr = (p.oamAddr + 1) % 0x220
		return v
	case 0x2139: // VMDATAL read
		v := uint8(p.VRAM[p.vramAddr&0x7FFF])
		if !p.vramIncOnHigh {
			p.vramAddr += p.vramStep
		}
		return v
	case 0x213A: // VMDATAH read
		v := uint8(p.VRAM[p.vramAddr&0x7FFF] >> 8)
		if p.vramIncOnHigh {
			p.vramAddr += p.vramStep
		}
		return v
	case 0x213B: // CGDATA read
		word := p.CGRAM[p.cgramAddr&0xFF]
		var v uint8
		if !p.cgramHigh {
			v = uint8(word)
			p.cgramHigh = true
		} else {
			v = uint8(word >> 8)
			p.cgramAddr = (p.cgramAddr + 1) & 0xFF
			p.cgramHigh = false
		}
		return v
	}
	return 0
}
