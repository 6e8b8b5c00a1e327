package graphics

import (
	"image"
	"math"
)

// Frame dimensions of the console's picture.
const (
	FrameWidth  = 256
	FrameHeight = 240
)

// VideoProcessor converts frames to images, applying colour adjustments.
type VideoProcessor struct {
	brightness float32
	contrast   float32
	saturation float32
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(brightness, contrast, saturation float32) *VideoProcessor {
	return &VideoProcessor{
		brightness: brightness,
		contrast:   contrast,
		saturation: saturation,
	}
}

// NewFrameImage allocates an image the size of one frame.
func NewFrameImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
}

// FrameToImage copies an RGB frame into a new image without adjustment.
func FrameToImage(frame []uint8) *image.RGBA {
	img := NewFrameImage()
	(*VideoProcessor)(nil).ProcessFrame(frame, img)
	return img
}

// ProcessFrame writes the RGB triples of frame into dst as opaque pixels.
// A nil processor copies the colours unchanged.
func (vp *VideoProcessor) ProcessFrame(frame []uint8, dst *image.RGBA) {
	identity := vp == nil || (vp.brightness == 1.0 && vp.contrast == 1.0 && vp.saturation == 1.0)

	for i, j := 0, 0; i+2 < len(frame) && j+3 < len(dst.Pix); i, j = i+3, j+4 {
		r, g, b := frame[i], frame[i+1], frame[i+2]
		if !identity {
			r, g, b = vp.adjust(r, g, b)
		}
		dst.Pix[j] = r
		dst.Pix[j+1] = g
		dst.Pix[j+2] = b
		dst.Pix[j+3] = 0xFF
	}
}

func (vp *VideoProcessor) adjust(r8, g8, b8 uint8) (uint8, uint8, uint8) {
	r := float32(r8) * vp.brightness
	g := float32(g8) * vp.brightness
	b := float32(b8) * vp.brightness

	r = ((r/255.0-0.5)*vp.contrast + 0.5) * 255.0
	g = ((g/255.0-0.5)*vp.contrast + 0.5) * 255.0
	b = ((b/255.0-0.5)*vp.contrast + 0.5) * 255.0

	if vp.saturation != 1.0 {
		h, s, l := rgbToHSL(clamp(r, 0, 255)/255.0, clamp(g, 0, 255)/255.0, clamp(b, 0, 255)/255.0)
		s *= vp.saturation
		if s > 1.0 {
			s = 1.0
		}
		r, g, b = hslToRGB(h, s, l)
		r *= 255.0
		g *= 255.0
		b *= 255.0
	}

	return uint8(clamp(r, 0, 255)), uint8(clamp(g, 0, 255)), uint8(clamp(b, 0, 255))
}

// clamp limits a value to a range
func clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// rgbToHSL converts RGB to HSL color space
func rgbToHSL(r, g, b float32) (h, s, l float32) {
	max := math.Max(float64(r), math.Max(float64(g), float64(b)))
	min := math.Min(float64(r), math.Min(float64(g), float64(b)))

	l = float32((max + min) / 2.0)

	if max == min {
		return 0, 0, l
	}

	d := float32(max - min)
	if l > 0.5 {
		s = d / float32(2.0-max-min)
	} else {
		s = d / float32(max+min)
	}

	switch max {
	case float64(r):
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case float64(g):
		h = (b-r)/d + 2
	case float64(b):
		h = (r-g)/d + 4
	}
	h /= 6

	return h, s, l
}

// hslToRGB converts HSL to RGB color space
func hslToRGB(h, s, l float32) (r, g, b float32) {
	if s == 0 {
		return l, l, l
	}

	var q float32
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return hueToRGB(p, q, h+1.0/3.0), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3.0)
}

func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
