package main

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func gradient(w, h int, shift uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8((x*3+y*2)%200) + shift
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestPSNR(t *testing.T) {
	a := gradient(32, 32, 0)
	assert.True(t, math.IsInf(psnr(a, a), 1))
	// a uniform error of 1 gives 20*log10(255)
	assert.InDelta(t, 48.13, psnr(a, gradient(32, 32, 1)), 0.01)
}

func TestSSIM(t *testing.T) {
	a := gradient(32, 32, 0)
	assert.InDelta(t, 1, ssim(a, a), 1e-9)
	assert.Less(t, ssim(a, gradient(32, 32, 40)), 1.0)
	assert.Zero(t, ssim(gradient(4, 4, 0), gradient(4, 4, 0)))
}
