package graphics

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// SaveScreenshot writes frame as a PNG scaled by an integer factor with
// nearest-neighbour sampling. Missing directories are created.
func SaveScreenshot(path string, frame []uint8, scale int) error {
	if scale < 1 {
		scale = 1
	}

	src := FrameToImage(frame)
	var img image.Image = src
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, FrameWidth*scale, FrameHeight*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		img = dst
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("screenshot: %w", err)
	}
	return f.Close()
}
