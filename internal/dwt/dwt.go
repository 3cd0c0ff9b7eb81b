package dwt

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxLevels bounds the decomposition depth accepted by Decompose.
const MaxLevels = 16

var ErrInvalidDimension = errors.New("invalid dimension")

// Level holds the four bands produced by one analysis step.
// Width and Height are the dimensions of the plane that was decomposed;
// every band is ceil(Height/2) x ceil(Width/2).
type Level struct {
	Width, Height int
	A, H, V, D    *mat.Dense
}

// Validate reports whether a width x height plane can be decomposed levels times.
func Validate(width, height, levels int) error {
	if levels < 1 || levels > MaxLevels {
		return fmt.Errorf("%w: levels must be within 1..%d, got %d", ErrInvalidDimension, MaxLevels, levels)
	}
	if min := 1 << levels; width < min || height < min {
		return fmt.Errorf("%w: %dx%d is smaller than %dx%d required by level %d",
			ErrInvalidDimension, width, height, min, min, levels)
	}
	return nil
}

// Capacity returns the number of deepest diagonal coefficients whose support
// lies wholly inside a width x height plane.
func Capacity(width, height, levels int) int {
	w, h := UsableSize(width, height, levels)
	return w * h
}

// UsableSize returns the usable rectangle of the deepest band.
func UsableSize(width, height, levels int) (int, int) {
	if levels < 1 || levels > MaxLevels || width <= 0 || height <= 0 {
		return 0, 0
	}
	s := 1 << levels
	return width / s, height / s
}

// BandSize returns the band dimensions after levels analysis steps.
func BandSize(width, height, levels int) (int, int) {
	for range levels {
		width, height = (width+1)/2, (height+1)/2
	}
	return width, height
}

// Decompose applies the Haar analysis levels times, each time on the previous
// approximation band. The returned slice is ordered from the finest level.
func Decompose(plane *mat.Dense, levels int) ([]Level, error) {
	h, w := plane.Dims()
	if err := Validate(w, h, levels); err != nil {
		return nil, err
	}
	data := rawCopy(plane)
	result := make([]Level, levels)
	for l := range levels {
		bands := HaarDWT(data, w)
		hw, hh := (w+1)/2, (h+1)/2
		result[l] = Level{
			Width:  w,
			Height: h,
			A:      mat.NewDense(hh, hw, bands[0]),
			H:      mat.NewDense(hh, hw, bands[1]),
			V:      mat.NewDense(hh, hw, bands[2]),
			D:      mat.NewDense(hh, hw, bands[3]),
		}
		data, w, h = bands[0], hw, hh
	}
	return result, nil
}

// Reconstruct runs the synthesis from the deepest approximation band.
// Approximation bands of the shallower levels are ignored.
func Reconstruct(levels []Level) *mat.Dense {
	if len(levels) == 0 {
		return nil
	}
	data := rawCopy(levels[len(levels)-1].A)
	for l := len(levels) - 1; l >= 0; l-- {
		lv := levels[l]
		data = HaarIDWT([][]float64{data, rawCopy(lv.H), rawCopy(lv.V), rawCopy(lv.D)}, lv.Width, lv.Height)
	}
	return mat.NewDense(levels[0].Height, levels[0].Width, data)
}

// HaarDWT performs one analysis step on a row-major plane of width w.
// An odd trailing row or column is mirrored into the missing sample.
// It returns cA, cH, cV and cD.
func HaarDWT(data []float64, w int) [][]float64 {
	h := len(data) / w

	hw, hh := (w+1)/2, (h+1)/2
	l := hw * hh
	cA := make([]float64, l)
	cH := make([]float64, l)
	cV := make([]float64, l)
	cD := make([]float64, l)

	for y0 := 0; y0 < h; y0 += 2 {
		var y1 int
		if y0+1 < h {
			y1 = y0 + 1
		} else {
			y1 = y0
		}
		for x0 := 0; x0 < w; x0 += 2 {
			var x1 int
			if x0+1 < w {
				x1 = x0 + 1
			} else {
				x1 = x0
			}
			a1, d1 := cacd(data[y0*w+x0], data[y1*w+x0])
			a2, d2 := cacd(data[y0*w+x1], data[y1*w+x1])

			idx := (y0/2)*hw + (x0 / 2)
			cA[idx], cV[idx] = cacd(a1, a2)
			cH[idx], cD[idx] = cacd(d1, d2)
		}
	}

	return [][]float64{cA, cH, cV, cD}
}

// HaarIDWT inverts HaarDWT for a w x h plane. Mirrored samples are dropped.
func HaarIDWT(bands [][]float64, w, h int) []float64 {
	data := make([]float64, w*h)
	var (
		cA = bands[0]
		cH = bands[1]
		cV = bands[2]
		cD = bands[3]
	)
	hw := (w + 1) / 2
	for y0 := 0; y0 < h; y0 += 2 {
		for x0 := 0; x0 < w; x0 += 2 {
			idx := (y0/2)*hw + (x0 / 2)

			a1, a2 := icacd(cA[idx], cV[idx])
			d1, d2 := icacd(cH[idx], cD[idx])

			v1, v2 := icacd(a1, d1)
			v3, v4 := icacd(a2, d2)

			data[y0*w+x0] = v1
			if y0+1 < h {
				data[(y0+1)*w+x0] = v2
			}
			if x0+1 < w {
				data[y0*w+(x0+1)] = v3
			}
			if y0+1 < h && x0+1 < w {
				data[(y0+1)*w+(x0+1)] = v4
			}
		}
	}
	return data
}

// Haar taps: low = (v1+v2)/sqrt2, high = (v1-v2)/sqrt2.
const tap = 1 / math.Sqrt2

func cacd(v1, v2 float64) (float64, float64) {
	return (v1 + v2) * tap, (v1 - v2) * tap
}

func icacd(a, d float64) (float64, float64) {
	return (a + d) * tap, (a - d) * tap
}

func rawCopy(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, r*c)
	for i := range r {
		copy(out[i*c:(i+1)*c], m.RawRowView(i))
	}
	return out
}
