package ppu

import (
	"testing"

	"sen/internal/cartridge"
)

const (
	backdropColor = 0x0F
	tileColor     = 0x30
	spriteColor   = 0x16
)

// setTile writes an 8x8 tile whose every row is lo/hi.
func (h *ppuHarness) setTile(base uint16, tile uint8, lo, hi uint8) {
	address := base + uint16(tile)*16
	for row := uint16(0); row < 8; row++ {
		h.cart.chr[address+row] = lo
		h.cart.chr[address+row+8] = hi
	}
}

func (h *ppuHarness) setSprite(index int, y, tile, attr, x uint8) {
	copy(h.oam[index*4:], []uint8{y, tile, attr, x})
}

func newRenderHarness() *ppuHarness {
	h := newHarness(cartridge.MirrorVertical)
	h.WriteVRAM(0x3F00, backdropColor)
	h.WriteVRAM(0x3F01, tileColor)
	h.WriteVRAM(0x3F11, spriteColor)
	h.setTile(0x0000, 1, 0xFF, 0x00)
	return h
}

func assertPixel(t *testing.T, h *ppuHarness, x, y int, color uint8) {
	t.Helper()
	if got, want := h.pixel(x, y), Palette[color]; got != want {
		t.Errorf("pixel (%d,%d) = %v, want %v (color %#02x)", x, y, got, want, color)
	}
}

func TestRender_DisabledShowsBackdrop(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2000, 1)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 0, 0, backdropColor)
	assertPixel(t, h, 255, 239, backdropColor)
}

func TestRender_Background(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2000, 1)    // tile (0,0)
	h.WriteVRAM(0x2000+33, 1) // tile (1,1)
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 0, 0, tileColor)
	assertPixel(t, h, 7, 7, tileColor)
	assertPixel(t, h, 8, 0, backdropColor)
	assertPixel(t, h, 0, 8, backdropColor)
	assertPixel(t, h, 12, 12, tileColor)
}

func TestRender_BackgroundLeftClip(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2000, 1)
	h.WriteVRAM(0x2001, 1)
	h.WriteRegister(0x2001, maskBackground)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 0, 0, backdropColor)
	assertPixel(t, h, 8, 0, tileColor)
}

func TestRender_AttributeQuadrants(t *testing.T) {
	h := newRenderHarness()
	// tiles (2,0) and (0,2) are in the top-right and bottom-left quadrants
	// of the first attribute byte
	h.WriteVRAM(0x2000+2, 1)
	h.WriteVRAM(0x2000+64, 1)
	h.WriteVRAM(0x23C0, 0x01<<2|0x02<<4)
	h.WriteVRAM(0x3F05, 0x21)
	h.WriteVRAM(0x3F09, 0x2A)
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 16, 0, 0x21)
	assertPixel(t, h, 0, 16, 0x2A)
}

func TestRender_HorizontalScroll(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2001, 1) // tile (1,0)
	h.WriteVRAM(0x2400, 1) // first tile of the right-hand table
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft)
	h.ReadRegister(0x2002)
	h.WriteRegister(0x2005, 12)
	h.WriteRegister(0x2005, 0)
	h.runScanlines(visibleScanlines)

	// tile 1 covers world X 8-15, so screen X 0-3
	assertPixel(t, h, 0, 0, tileColor)
	assertPixel(t, h, 3, 0, tileColor)
	assertPixel(t, h, 4, 0, backdropColor)
	// world X 256 appears at screen X 244
	assertPixel(t, h, 244, 0, tileColor)
	assertPixel(t, h, 243, 0, backdropColor)
}

func TestRender_VerticalScrollLatchedPerFrame(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2000+32, 1) // tile (0,1)
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft)
	h.ReadRegister(0x2002)
	h.WriteRegister(0x2005, 0)
	h.WriteRegister(0x2005, 8)

	// the first frame still uses the scroll latched at reset
	h.runScanlines(visibleScanlines)
	assertPixel(t, h, 0, 8, tileColor)

	h.runScanlines(scanlinesPerFrame)
	assertPixel(t, h, 0, 0, tileColor)
	assertPixel(t, h, 0, 8, backdropColor)
}

func TestRender_SpriteOverBackground(t *testing.T) {
	h := newRenderHarness()
	h.setTile(0x0000, 2, 0x0F, 0x00) // right half opaque
	h.setSprite(0, 9, 2, 0x00, 20)
	h.WriteRegister(0x2001, maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	// drawn one line below its OAM Y
	assertPixel(t, h, 24, 9, backdropColor)
	assertPixel(t, h, 24, 10, spriteColor)
	assertPixel(t, h, 27, 17, spriteColor)
	assertPixel(t, h, 24, 18, backdropColor)
	// transparent half
	assertPixel(t, h, 20, 10, backdropColor)
}

func TestRender_SpriteFlips(t *testing.T) {
	h := newRenderHarness()
	// one opaque column on the left, one opaque row on top
	address := uint16(3) * 16
	for row := uint16(0); row < 8; row++ {
		h.cart.chr[address+row] = 0x80
	}
	h.cart.chr[address] = 0xFF
	h.setSprite(0, 9, 3, 0x40|0x80, 40)
	h.WriteRegister(0x2001, maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	// flipped both ways: column lands on the right, full row at the bottom
	assertPixel(t, h, 47, 10, spriteColor)
	assertPixel(t, h, 40, 10, backdropColor)
	assertPixel(t, h, 40, 17, spriteColor)
	assertPixel(t, h, 44, 17, spriteColor)
}

func TestRender_SpritePriority(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2000+32+1, 1) // tile (1,1)
	h.setTile(0x0000, 2, 0xFF, 0x00)
	h.setSprite(0, 9, 2, 0x20, 4) // behind, straddles tiles 0 and 1
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft|maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	// visible over a transparent background pixel, hidden by an opaque one
	assertPixel(t, h, 4, 10, spriteColor)
	assertPixel(t, h, 8, 10, tileColor)
}

func TestRender_LowerOAMIndexWins(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x3F15, 0x2C)
	h.setTile(0x0000, 2, 0xFF, 0x00)
	h.setSprite(0, 9, 2, 0x00, 50)
	h.setSprite(1, 9, 2, 0x01, 54)
	h.WriteRegister(0x2001, maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 54, 10, spriteColor)
	assertPixel(t, h, 58, 10, 0x2C)
}

func TestRender_TallSpritesUseTileBitForTable(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x3F12, 0x1A)
	h.setTile(0x1000, 0x02, 0xFF, 0x00) // top half, color 1
	h.setTile(0x1000, 0x03, 0x00, 0xFF) // bottom half, color 2
	// odd tile number selects 0x1000 regardless of the sprite table bit
	h.setSprite(0, 19, 0x03, 0x00, 100)
	h.WriteRegister(0x2000, ctrlSpriteSize16)
	h.WriteRegister(0x2001, maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 100, 20, spriteColor)
	assertPixel(t, h, 100, 27, spriteColor)
	assertPixel(t, h, 100, 28, 0x1A)
	assertPixel(t, h, 100, 35, 0x1A)
	assertPixel(t, h, 100, 36, backdropColor)
}

func TestRender_EightSpritesPerLine(t *testing.T) {
	h := newRenderHarness()
	h.setTile(0x0000, 2, 0xFF, 0x00)
	for i := 0; i < 9; i++ {
		h.setSprite(i, 49, 2, 0x00, uint8(i*16))
	}
	h.WriteRegister(0x2001, maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	assertPixel(t, h, 7*16, 50, spriteColor)
	assertPixel(t, h, 8*16, 50, backdropColor)
	if h.status&statusOverflow == 0 {
		t.Error("Expected sprite overflow flag")
	}
}

func TestRender_SpriteZeroHit(t *testing.T) {
	h := newRenderHarness()
	h.WriteVRAM(0x2000+5*32+5, 1) // tile (5,5)
	h.setTile(0x0000, 2, 0xFF, 0x00)
	h.setSprite(0, 39, 2, 0x00, 40)
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft|maskSprites|maskSpritesLeft)

	h.runScanlines(40)
	if h.status&statusSprite0 != 0 {
		t.Fatal("Sprite zero hit before the sprite is drawn")
	}
	h.runScanlines(1)
	if h.status&statusSprite0 == 0 {
		t.Error("Expected sprite zero hit on line 40")
	}

	// cleared on the pre-render line
	h.runScanlines(preRenderScanline - 40)
	if h.status&statusSprite0 != 0 {
		t.Error("Expected sprite zero hit cleared for the next frame")
	}
}

func TestRender_NoSpriteZeroHitOnTransparentBackground(t *testing.T) {
	h := newRenderHarness()
	h.setTile(0x0000, 2, 0xFF, 0x00)
	h.setSprite(0, 39, 2, 0x00, 40)
	h.WriteRegister(0x2001, maskBackground|maskBackgroundLeft|maskSprites|maskSpritesLeft)
	h.runScanlines(visibleScanlines)

	if h.status&statusSprite0 != 0 {
		t.Error("Sprite zero hit over a transparent background")
	}
}
