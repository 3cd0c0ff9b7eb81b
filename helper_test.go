package watermark

import (
	"image"
	"image/color"
	"math"
	"math/rand"
)

// photoLike renders smooth structure with mild grain in the 40..215 range.
func photoLike(w, h int, seed int64) *image.NRGBA {
	r := rand.New(rand.NewSource(seed))
	fx, fy := 4+r.Float64()*10, 4+r.Float64()*10
	px, py := r.Float64()*math.Pi, r.Float64()*math.Pi
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := 128 +
				35*math.Sin(float64(x)/fx+px)*math.Cos(float64(y)/fy+py) +
				25*math.Sin(float64(x+2*y)/17) +
				r.Float64()*12 - 6
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(v + 8), G: uint8(v), B: uint8(v - 12), A: 255})
		}
	}
	return img
}

// noiseImage is uniform noise over the full range.
func noiseImage(w, h int, seed int64) *image.NRGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.Intn(256))
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}
	return img
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8(x * 255 / w)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: uint8(y * 255 / h), B: 100, A: 255})
		}
	}
	return img
}

func flatImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
