package watermark

import (
	"context"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/yyyoichi/aigc_watermark/internal/dwt"
	"github.com/yyyoichi/aigc_watermark/internal/yuv"
	"github.com/yyyoichi/aigc_watermark/mark"
)

const (
	// referenceFloor is the smallest reference magnitude per unit of 2^levels.
	// Flat regions have almost no local deviation; the floor keeps the margin
	// above quantisation noise there.
	referenceFloor = 32.
	// minStep is the smallest margin per unit of 2^levels, one grey level.
	minStep = 1.
)

// Capacity returns the number of bits an image can hold at levels.
func Capacity(src ImageSource, levels int) int {
	return dwt.Capacity(src.width, src.height, levels)
}

// Embed writes bits, repeated cyclically, into the signs of the deepest
// diagonal coefficients of channel ch. A one forces a coefficient to at least
// +margin and a zero to at most -margin, where margin scales with strength
// and the local deviation of the band. Coefficients already past the margin
// on the right side are kept. src is not modified.
func Embed(ctx context.Context, src ImageSource, ch yuv.Channel, bits []bool, levels int, strength float64) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bits) == 0 {
		return nil, ErrEmptyMark
	}
	if err := dwt.Validate(src.width, src.height, levels); err != nil {
		return nil, err
	}
	if c := Capacity(src, levels); len(bits) > c {
		return nil, &mark.CapacityError{Err: ErrInsufficientCapacity, Need: len(bits), Capacity: c}
	}
	plane, err := src.plane(ch)
	if err != nil {
		return nil, err
	}
	bands, err := dwt.Decompose(plane, levels)
	if err != nil {
		return nil, err
	}

	var (
		deep     = bands[levels-1].D
		original = mat.DenseCopyOf(deep)
		_, bw    = deep.Dims()
		scale    = float64(int(1) << levels)
		mk       = embedMark(bits)
		window   = make([]float64, 0, 9)
	)
	for at, p := range Positions(src.width, src.height, levels) {
		x, y := p%bw, p/bw
		ref := math.Max(localStdDev(original, x, y, window), scale*referenceFloor)
		margin := math.Max(strength*ref, scale*minStep)
		deep.Set(y, x, push(original.At(y, x), mk.getBit(at), margin))
	}

	dst := src.Copy()
	if err := yuv.Apply(dst.pix, ch, dwt.Reconstruct(bands)); err != nil {
		return nil, err
	}
	return dst.pix, nil
}

// ExtractBits reads one bit per usable coefficient, in the same order Embed
// writes them.
func ExtractBits(src ImageSource, ch yuv.Channel, levels int) ([]bool, error) {
	if err := dwt.Validate(src.width, src.height, levels); err != nil {
		return nil, err
	}
	plane, err := src.plane(ch)
	if err != nil {
		return nil, err
	}
	bands, err := dwt.Decompose(plane, levels)
	if err != nil {
		return nil, err
	}
	return readBits(bands[levels-1], src.width, src.height, levels), nil
}

func readBits(level dwt.Level, width, height, levels int) []bool {
	_, bw := level.D.Dims()
	positions := Positions(width, height, levels)
	bits := make([]bool, len(positions))
	for i, p := range positions {
		bits[i] = level.D.At(p/bw, p%bw) > 0
	}
	return bits
}

func push(c float64, bit bool, margin float64) float64 {
	if bit {
		return math.Max(c, margin)
	}
	return math.Min(c, -margin)
}

// localStdDev is the standard deviation of the 3x3 neighbourhood of (x, y),
// cut at the band edges.
func localStdDev(band *mat.Dense, x, y int, window []float64) float64 {
	rows, cols := band.Dims()
	window = window[:0]
	for yy := max(y-1, 0); yy <= min(y+1, rows-1); yy++ {
		for xx := max(x-1, 0); xx <= min(x+1, cols-1); xx++ {
			window = append(window, band.At(yy, xx))
		}
	}
	if len(window) < 2 {
		return 0
	}
	return stat.StdDev(window, nil)
}
