package ppu

// lineSprite is a sprite selected for the scanline being drawn, with its
// pattern row already fetched.
type lineSprite struct {
	x      int
	lo, hi uint8
	attr   uint8
	zero   bool
}

// spritePixel is a resolved opaque sprite pixel.
type spritePixel struct {
	// 5-bit palette offset, 0x11-0x1F
	palette uint8
	behind  bool
	zero    bool
}

// renderScanline draws one visible line into the frame buffer.
func (p *PPU) renderScanline(y int) {
	var background [Width]uint8
	if p.mask&maskBackground != 0 {
		p.backgroundLine(y, &background)
	}

	var sprites []lineSprite
	if p.mask&maskSprites != 0 {
		sprites = p.evaluateSprites(y)
	}

	row := p.frameBuffer[y*Width*3 : (y+1)*Width*3]
	for x := 0; x < Width; x++ {
		bg := background[x]
		if x < 8 && p.mask&maskBackgroundLeft == 0 {
			bg = 0
		}

		// index 0 of every background palette shows the backdrop
		color := p.palette[0]
		if bg&0x03 != 0 {
			color = p.palette[bg]
		}

		if len(sprites) > 0 && (x >= 8 || p.mask&maskSpritesLeft != 0) {
			if sp, ok := resolveSprite(sprites, x); ok {
				if sp.zero && bg&0x03 != 0 && x != Width-1 {
					p.status |= statusSprite0
				}
				if !sp.behind || bg&0x03 == 0 {
					color = p.palette[sp.palette]
				}
			}
		}

		rgb := Palette[color&0x3F]
		row[x*3] = rgb[0]
		row[x*3+1] = rgb[1]
		row[x*3+2] = rgb[2]
	}
}

// backgroundLine fills line with the 4-bit palette offsets (palette group
// in bits 2-3, color index in bits 0-1) of the background on scanline y.
func (p *PPU) backgroundLine(y int, line *[Width]uint8) {
	scrollX := int(p.t&0x1F)*8 + int(p.x)
	if p.t&0x0400 != 0 {
		scrollX += Width
	}
	worldY := (p.frameScrollY + y) % (Height * 2)

	patternBase := uint16(0)
	if p.ctrl&ctrlBackgroundTable != 0 {
		patternBase = 0x1000
	}

	tableRow := worldY / Height
	tileY := (worldY % Height) / 8
	fineY := uint16(worldY % 8)

	var lo, hi, group uint8
	for x := 0; x < Width; x++ {
		worldX := (scrollX + x) % (Width * 2)
		fineX := worldX % 8

		if x == 0 || fineX == 0 {
			tileX := (worldX % Width) / 8
			base := 0x2000 + uint16(tableRow*2+worldX/Width)*0x400

			tile := uint16(p.ReadVRAM(base + uint16(tileY*32+tileX)))
			attr := p.ReadVRAM(base + 0x3C0 + uint16((tileY/4)*8+tileX/4))
			// each attribute byte covers 4x4 tiles, two bits per 2x2
			// quadrant
			shift := uint((tileY&2)<<1 | tileX&2)
			group = (attr >> shift) & 0x03

			address := patternBase + tile*16 + fineY
			lo = p.ReadVRAM(address)
			hi = p.ReadVRAM(address + 8)
		}

		bit := uint(7 - fineX)
		pixel := (lo>>bit)&1 | ((hi>>bit)&1)<<1
		line[x] = group<<2 | pixel
	}
}

// evaluateSprites selects the first eight sprites in OAM order that cover
// scanline y. Finding a ninth sets the overflow flag.
func (p *PPU) evaluateSprites(y int) []lineSprite {
	height := 8
	if p.ctrl&ctrlSpriteSize16 != 0 {
		height = 16
	}

	n := 0
	for i := 0; i < 64; i++ {
		entry := p.oam[i*4 : i*4+4]

		// sprites are drawn one line below their OAM Y
		row := y - (int(entry[0]) + 1)
		if row < 0 || row >= height {
			continue
		}
		if n == len(p.lineSprites) {
			p.status |= statusOverflow
			break
		}

		tile := uint16(entry[1])
		attr := entry[2]
		if attr&0x80 != 0 {
			row = height - 1 - row
		}

		var address uint16
		if height == 16 {
			// bit 0 of the tile picks the pattern table, the rest
			// picks an even/odd tile pair
			table := (tile & 0x01) * 0x1000
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
			address = table + tile*16 + uint16(row)
		} else {
			table := uint16(0)
			if p.ctrl&ctrlSpriteTable != 0 {
				table = 0x1000
			}
			address = table + tile*16 + uint16(row)
		}

		p.lineSprites[n] = lineSprite{
			x:    int(entry[3]),
			lo:   p.ReadVRAM(address),
			hi:   p.ReadVRAM(address + 8),
			attr: attr,
			zero: i == 0,
		}
		n++
	}

	return p.lineSprites[:n]
}

// resolveSprite returns the first opaque sprite pixel at column x.
func resolveSprite(sprites []lineSprite, x int) (spritePixel, bool) {
	for _, s := range sprites {
		col := x - s.x
		if col < 0 || col > 7 {
			continue
		}
		bit := uint(7 - col)
		if s.attr&0x40 != 0 {
			bit = uint(col)
		}
		pixel := (s.lo>>bit)&1 | ((s.hi>>bit)&1)<<1
		if pixel == 0 {
			continue
		}
		return spritePixel{
			palette: 0x10 | (s.attr&0x03)<<2 | pixel,
			behind:  s.attr&0x20 != 0,
			zero:    s.zero,
		}, true
	}
	return spritePixel{}, false
}
