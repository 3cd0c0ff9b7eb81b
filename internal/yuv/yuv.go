// Package yuv moves single channels of an NRGBA buffer in and out of float planes.
package yuv

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// https://github.com/opencv/opencv/blob/0e88b49a53842f0f7cdc4c61b98c283be7e5057c/modules/imgproc/src/opencl/color_yuv.cl#L148-L234
const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
)

var ErrUnsupportedChannel = errors.New("unsupported channel")

// Channel selects the plane a mark lives in.
type Channel int

const (
	// Luma is BT.601 Y. Writes shift R, G and B by the same amount, which
	// keeps the chroma of every pixel.
	Luma Channel = iota
	Red
	Green
	Blue
	Alpha
)

func (c Channel) String() string {
	switch c {
	case Luma:
		return "luma"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Alpha:
		return "alpha"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// ParseChannel is the inverse of Channel.String.
func ParseChannel(s string) (Channel, error) {
	for c := Luma; c <= Alpha; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedChannel, s)
}

// Check reports whether c can be used on an image with the given number of
// channels (3 for opaque images, 4 with alpha).
func (c Channel) Check(channels int) error {
	switch {
	case c < Luma || c > Alpha:
		return fmt.Errorf("%w: %v", ErrUnsupportedChannel, c)
	case c == Alpha && channels < 4:
		return fmt.Errorf("%w: %v on an image without alpha", ErrUnsupportedChannel, c)
	}
	return nil
}

// Plane copies channel c of img into a height x width matrix.
func Plane(img *image.NRGBA, c Channel) (*mat.Dense, error) {
	if err := c.Check(4); err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float64, w*h)
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			p := row[x*4 : x*4+4 : x*4+4]
			switch c {
			case Luma:
				data[y*w+x] = luma(p)
			case Red, Green, Blue, Alpha:
				data[y*w+x] = float64(p[c-Red])
			}
		}
	}
	return mat.NewDense(h, w, data), nil
}

// Apply writes plane into channel c of img, rounding and clamping to 0..255.
// For Luma the difference to the current luma is added to R, G and B.
func Apply(img *image.NRGBA, c Channel, plane *mat.Dense) error {
	if err := c.Check(4); err != nil {
		return err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if r, cc := plane.Dims(); r != h || cc != w {
		return fmt.Errorf("plane is %dx%d, image is %dx%d", cc, r, w, h)
	}
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		values := plane.RawRowView(y)
		for x := range w {
			p := row[x*4 : x*4+4 : x*4+4]
			switch c {
			case Luma:
				delta := values[x] - luma(p)
				p[0] = clip8(float64(p[0]) + delta)
				p[1] = clip8(float64(p[1]) + delta)
				p[2] = clip8(float64(p[2]) + delta)
			case Red, Green, Blue, Alpha:
				p[c-Red] = clip8(values[x])
			}
		}
	}
	return nil
}

func luma(p []uint8) float64 {
	return yr*float64(p[0]) + yg*float64(p[1]) + yb*float64(p[2])
}

func clip8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
