package watermark

import (
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"

	"github.com/yyyoichi/aigc_watermark/internal/yuv"
)

// ImageSource is a private 8-bit NRGBA copy of an input image.
type ImageSource struct {
	pix           *image.NRGBA
	width, height int
	// 3 for opaque images, 4 when the source may carry alpha.
	channels int
}

func NewImageSource(src image.Image) ImageSource {
	var s ImageSource
	s.pix = imaging.Clone(src)
	s.width, s.height = s.pix.Bounds().Dx(), s.pix.Bounds().Dy()
	s.channels = 3
	if o, ok := src.(interface{ Opaque() bool }); ok && !o.Opaque() {
		s.channels = 4
	}
	return s
}

func (s ImageSource) Width() int    { return s.width }
func (s ImageSource) Height() int   { return s.height }
func (s ImageSource) Channels() int { return s.channels }

// Copy returns a source whose pixels can be modified independently.
func (s ImageSource) Copy() ImageSource {
	s.pix = imaging.Clone(s.pix)
	return s
}

func (s ImageSource) plane(ch yuv.Channel) (*mat.Dense, error) {
	if err := ch.Check(s.channels); err != nil {
		return nil, err
	}
	return yuv.Plane(s.pix, ch)
}
