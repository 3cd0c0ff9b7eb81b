package watermark

import (
	"fmt"
	"image"

	"github.com/yyyoichi/aigc_watermark/mark"
)

// PayloadKind names what a mark carries.
type PayloadKind string

const (
	PayloadText  PayloadKind = "text"
	PayloadImage PayloadKind = "image"
	PayloadNone  PayloadKind = "none"
)

// Bitmap is a monochrome mark image.
type Bitmap = mark.Bitmap

// Payload is the content embedded into an image.
type Payload struct {
	kind   PayloadKind
	text   string
	bitmap *Bitmap
}

// TextPayload carries a UTF-8 text.
func TextPayload(text string) Payload {
	return Payload{kind: PayloadText, text: text}
}

// BitmapPayload carries a monochrome bitmap of at most 255x255 pixels.
func BitmapPayload(bm *Bitmap) Payload {
	return Payload{kind: PayloadImage, bitmap: bm}
}

// ImagePayload reduces a logo image to a size x size bitmap
// (mark.DefaultBitmapSize when size is 0).
func ImagePayload(img image.Image, size int) (Payload, error) {
	bm, err := mark.BitmapFromImage(img, size)
	if err != nil {
		return Payload{}, err
	}
	return BitmapPayload(bm), nil
}

func (p Payload) Kind() PayloadKind {
	if p.kind == "" {
		return PayloadNone
	}
	return p.kind
}

func (p Payload) empty() bool {
	switch p.kind {
	case PayloadText:
		return p.text == ""
	case PayloadImage:
		return p.bitmap == nil
	}
	return true
}

// encode returns the frame for p, or a *CapacityError wrapping
// ErrPayloadTooLarge when it does not fit capacity bits.
func (p Payload) encode(capacity int, opts []mark.Option) ([]bool, error) {
	switch p.kind {
	case PayloadText:
		return mark.EncodeText(p.text, capacity, opts...)
	case PayloadImage:
		return mark.EncodeBitmap(p.bitmap, capacity, opts...)
	}
	return nil, fmt.Errorf("%w: kind %q", ErrEmptyPayload, p.kind)
}
