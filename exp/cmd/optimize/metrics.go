package main

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	ssimWindow = 8
	ssimStride = 4
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
)

// lumaPlane returns the BT.601 luma of img in row-major order.
func lumaPlane(img image.Image) (plane []float64, width, height int) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	plane = make([]float64, width*height)
	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			plane[y*width+x] = 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	return plane, width, height
}

// psnr returns the peak signal to noise ratio of the luma planes in dB.
// Identical images give +Inf.
func psnr(a, b image.Image) float64 {
	pa, _, _ := lumaPlane(a)
	pb, _, _ := lumaPlane(b)
	var mse float64
	for i := range pa {
		d := pa[i] - pb[i]
		mse += d * d
	}
	mse /= float64(len(pa))
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}

// ssim returns the mean structural similarity of the luma planes over
// overlapping 8x8 windows.
func ssim(a, b image.Image) float64 {
	pa, w, h := lumaPlane(a)
	pb, _, _ := lumaPlane(b)
	if w < ssimWindow || h < ssimWindow {
		return 0
	}

	wa := make([]float64, ssimWindow*ssimWindow)
	wb := make([]float64, ssimWindow*ssimWindow)
	var sum float64
	var n int
	for y := 0; y+ssimWindow <= h; y += ssimStride {
		for x := 0; x+ssimWindow <= w; x += ssimStride {
			for dy := range ssimWindow {
				copy(wa[dy*ssimWindow:], pa[(y+dy)*w+x:(y+dy)*w+x+ssimWindow])
				copy(wb[dy*ssimWindow:], pb[(y+dy)*w+x:(y+dy)*w+x+ssimWindow])
			}
			ma, va := stat.MeanVariance(wa, nil)
			mb, vb := stat.MeanVariance(wb, nil)
			cov := stat.Covariance(wa, wb, nil)
			sum += ((2*ma*mb + ssimC1) * (2*cov + ssimC2)) /
				((ma*ma + mb*mb + ssimC1) * (va + vb + ssimC2))
			n++
		}
	}
	return sum / float64(n)
}
