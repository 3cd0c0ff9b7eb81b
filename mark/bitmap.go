package mark

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultBitmapSize is the side length used when a logo is turned into a mark.
const DefaultBitmapSize = 32

// Bitmap is a monochrome raster stored row-major. A true pixel is white.
type Bitmap struct {
	Width, Height int
	Pix           []bool
}

// NewBitmap returns an all-black bitmap. Both sides must be within 1..255.
func NewBitmap(width, height int) (*Bitmap, error) {
	bm := &Bitmap{Width: width, Height: height, Pix: make([]bool, max(width*height, 0))}
	if err := bm.validate(); err != nil {
		return nil, err
	}
	return bm, nil
}

func (b *Bitmap) validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil bitmap", ErrInvalidBitmap)
	}
	if b.Width < 1 || b.Width > 255 || b.Height < 1 || b.Height > 255 {
		return fmt.Errorf("%w: size %dx%d is outside 1x1..255x255", ErrInvalidBitmap, b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidBitmap, len(b.Pix), b.Width, b.Height)
	}
	return nil
}

func (b *Bitmap) At(x, y int) bool { return b.Pix[y*b.Width+x] }

func (b *Bitmap) Set(x, y int, v bool) { b.Pix[y*b.Width+x] = v }

// Image renders the bitmap as black and white grayscale.
func (b *Bitmap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for i, v := range b.Pix {
		if v {
			img.Pix[(i/b.Width)*img.Stride+i%b.Width] = 0xff
		}
	}
	return img
}

// BitmapFromImage reduces img to a size x size monochrome mark. Pixels are
// converted to grayscale weighted by alpha, stretched to the full 0..255
// range, thresholded at 127 and resampled with nearest neighbour.
func BitmapFromImage(img image.Image, size int) (*Bitmap, error) {
	if size <= 0 {
		size = DefaultBitmapSize
	}
	if size > 255 {
		return nil, fmt.Errorf("%w: size %d exceeds 255", ErrInvalidBitmap, size)
	}
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidBitmap)
	}

	w, h := bounds.Dx(), bounds.Dy()
	values := make([]float64, w*h)
	lo, hi := 255.0, 0.0
	for y := range h {
		for x := range w {
			i := y*gray.Stride + x*4
			v := float64(gray.Pix[i]) * float64(gray.Pix[i+3]) / 255
			values[y*w+x] = v
			lo, hi = min(lo, v), max(hi, v)
		}
	}

	binary := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range values {
		if hi > lo {
			v = (v - lo) * 255 / (hi - lo)
		}
		if v > 127 {
			binary.SetGray(i%w, i/w, color.Gray{Y: 0xff})
		}
	}

	resized := imaging.Resize(binary, size, size, imaging.NearestNeighbor)
	bm := &Bitmap{Width: size, Height: size, Pix: make([]bool, size*size)}
	for y := range size {
		for x := range size {
			bm.Pix[y*size+x] = resized.Pix[y*resized.Stride+x*4] > 127
		}
	}
	return bm, nil
}
