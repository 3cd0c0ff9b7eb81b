// Package imagecodec reads and writes the raster formats the service accepts.
package imagecodec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// Registered so that GIF input is recognised and rejected by name.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	PNG  = "png"
	JPEG = "jpeg"
	WEBP = "webp"

	// DefaultJPEGQuality is used when JPEG output is requested.
	DefaultJPEGQuality = 95
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Supported reports whether format can be read and written.
func Supported(format string) bool {
	switch format {
	case PNG, JPEG, WEBP:
		return true
	}
	return false
}

// DecodeConfig reads the format and dimensions without decoding pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if !Supported(format) {
		return image.Config{}, format, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return cfg, format, nil
}

// Decode decodes PNG, JPEG or WEBP data. Other formats fail with
// ErrUnsupportedFormat.
func Decode(data []byte) (image.Image, string, error) {
	if _, format, err := DecodeConfig(data); err != nil {
		return nil, format, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, format, nil
	}
	// x/image/webp does not cover every encoder's output.
	if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
		return img, WEBP, nil
	}
	return nil, format, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
}

// Encode writes img as PNG, lossless WEBP or JPEG at DefaultJPEGQuality.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case PNG, "":
		return png.Encode(w, img)
	case WEBP:
		return webp.Encode(w, img, &webp.Options{Lossless: true})
	case JPEG:
		return EncodeJPEG(w, img, DefaultJPEGQuality)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// EncodeJPEG writes img as JPEG at quality (1..100).
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
