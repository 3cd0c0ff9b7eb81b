package watermark

import (
	"image"
	"image/color"
	"math"
	"math/rand"
)

// smoothImage renders mixed sinusoids plus mild noise, kept away from 0 and
// 255 so that marks never clip.
func smoothImage(w, h int, seed int64) *image.NRGBA {
	r := rand.New(rand.NewSource(seed))
	fx, fy, ph := 3+r.Float64()*6, 3+r.Float64()*6, r.Float64()*math.Pi
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := 128 +
				40*math.Sin(float64(x)/fx+ph) +
				30*math.Cos(float64(y)/fy) +
				10*math.Sin(float64(x+y)/3) +
				r.Float64()*8 - 4
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(v), G: uint8(v - 10), B: uint8(v + 10), A: 255})
		}
	}
	return img
}

func withAlpha(img *image.NRGBA, a uint8) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = a
	}
	return img
}

func randomBits(n int, seed int64) []bool {
	r := rand.New(rand.NewSource(seed))
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = r.Intn(2) == 1
	}
	return bits
}
