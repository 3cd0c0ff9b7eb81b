// Package watermark embeds short texts and small bitmaps into images as
// invisible marks and detects them again without the original image.
//
// A payload is framed with a sync pattern, a length and a checksum, then
// written into the signs of the deepest diagonal Haar wavelet coefficients
// of one channel, repeated over the whole image. Extraction decomposes the
// image again, folds the repeated frames and reports a confidence score.
package watermark

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/yyyoichi/aigc_watermark/internal/dwt"
	"github.com/yyyoichi/aigc_watermark/internal/imagecodec"
	"github.com/yyyoichi/aigc_watermark/internal/watermark"
	"github.com/yyyoichi/aigc_watermark/internal/yuv"
	"github.com/yyyoichi/aigc_watermark/mark"
)

const (
	// AlgorithmDWT is the only algorithm. An empty algorithm selects it.
	AlgorithmDWT = "dwt"

	DefaultStrength      = 0.1
	MinStrength          = 0.01
	MaxStrength          = 0.5
	DefaultThreshold     = 0.5
	DefaultMaxImageBytes = 10 << 20
)

// Channel selects the image plane a mark lives in.
type Channel = yuv.Channel

const (
	ChannelLuma  = yuv.Luma
	ChannelRed   = yuv.Red
	ChannelGreen = yuv.Green
	ChannelBlue  = yuv.Blue
	ChannelAlpha = yuv.Alpha
)

// ParseChannel returns the channel named s ("luma", "red", "green", "blue"
// or "alpha").
func ParseChannel(s string) (Channel, error) { return yuv.ParseChannel(s) }

// ExtractConfig is one channel and level pair tried by extraction.
type ExtractConfig = watermark.Config

// DefaultExtractConfigs returns luma 3, 2, 1 followed by blue 3, 2, 1.
func DefaultExtractConfigs() []ExtractConfig { return watermark.DefaultConfigs() }

// EmbedResult describes an embedded image.
type EmbedResult struct {
	Success bool
	// Image is the encoded marked image.
	Image  []byte
	Format string
	// Message is a one-line human readable summary.
	Message   string
	Kind      PayloadKind
	Channel   Channel
	Levels    int
	Strength  float64
	Capacity  int
	FrameBits int
}

// ExtractResult describes what extraction found. An image without a mark is
// a successful extraction with Detected false.
type ExtractResult struct {
	Success  bool
	Detected bool
	Kind     PayloadKind
	Text     string
	Bitmap   *Bitmap
	// ImageBytes is Bitmap encoded as PNG.
	ImageBytes []byte
	Confidence float64
	Algorithm  string
	Channel    Channel
	Levels     int
}

// Embed embeds payload into src with the default settings.
// This is a convenience function that creates a Watermark instance and calls its Embed method.
func Embed(ctx context.Context, src image.Image, payload Payload, strength float64, opts ...Option) (image.Image, error) {
	w, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return w.Embed(ctx, src, payload, strength)
}

// Extract looks for a mark in src with the default settings.
// This is a convenience function that creates a Watermark instance and calls its Extract method.
func Extract(ctx context.Context, src image.Image, opts ...Option) (*ExtractResult, error) {
	w, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return w.Extract(ctx, src)
}

// MaxPayloadBits returns how many bits a width x height image holds when
// decomposed levels times.
func MaxPayloadBits(width, height, levels int) (int, error) {
	if err := dwt.Validate(width, height, levels); err != nil {
		return 0, err
	}
	return dwt.Capacity(width, height, levels), nil
}

// Watermark embeds and extracts marks. It is immutable after New and safe
// for concurrent use.
type Watermark struct {
	levels        []int
	channel       Channel
	configs       []ExtractConfig
	golay         bool
	seed          int64
	threshold     float64
	tolerance     int
	maxImageBytes int
	outputFormat  string
	logger        *log.Logger
}

// New initializes a watermark service.
// For default values, refer to the init function.
func New(opts ...Option) (*Watermark, error) {
	w := new(Watermark)
	if err := w.init(opts...); err != nil {
		return nil, err
	}
	return w, nil
}

// EmbedInvisible decodes imageBytes, embeds payload and returns the encoded
// result.
//
// Process:
//  1. Validates the algorithm, the input size and format, and the strength.
//  2. Frames the payload and picks the first embed level that can hold it.
//  3. Writes the frame, repeated, into the chosen channel.
//  4. Encodes the marked image in the output format.
func (w *Watermark) EmbedInvisible(ctx context.Context, imageBytes []byte, payload Payload, strength float64, algorithm string) (*EmbedResult, error) {
	if err := checkAlgorithm(algorithm); err != nil {
		return nil, err
	}
	img, err := w.decode(imageBytes)
	if err != nil {
		return nil, err
	}
	marked, res, err := w.embed(ctx, img, payload, strength)
	if err != nil {
		return nil, err
	}
	if res.Image, err = imagecodec.EncodeBytes(marked, w.outputFormat); err != nil {
		return nil, err
	}
	res.Format = w.outputFormat
	return res, nil
}

// ExtractInvisible decodes imageBytes and looks for a mark.
func (w *Watermark) ExtractInvisible(ctx context.Context, imageBytes []byte, algorithm string) (*ExtractResult, error) {
	if err := checkAlgorithm(algorithm); err != nil {
		return nil, err
	}
	img, err := w.decode(imageBytes)
	if err != nil {
		return nil, err
	}
	return w.Extract(ctx, img)
}

// Embed embeds payload into src. A zero strength selects DefaultStrength.
//
// Returns a *CapacityError wrapping ErrPayloadTooLarge when no embed level
// can hold the payload, and ErrInvalidDimension when the image is too small
// for every embed level.
func (w *Watermark) Embed(ctx context.Context, src image.Image, payload Payload, strength float64) (image.Image, error) {
	marked, _, err := w.embed(ctx, src, payload, strength)
	if err != nil {
		return nil, err
	}
	return marked, nil
}

// Extract tries every extract config in order and reports the first mark
// found with confidence at or above the threshold.
func (w *Watermark) Extract(ctx context.Context, src image.Image) (*ExtractResult, error) {
	det, err := watermark.Detect(ctx, watermark.NewImageSource(src), w.configs, w.threshold,
		mark.WithSyncTolerance(w.tolerance), mark.WithGolaySeed(w.seed))
	if err != nil {
		return nil, err
	}
	res, err := newExtractResult(det)
	if err != nil {
		return nil, err
	}
	w.logger.Printf("extract: detected=%t kind=%s confidence=%.3f channel=%v levels=%d tried=%d",
		res.Detected, res.Kind, res.Confidence, det.Config.Channel, det.Config.Levels, det.Tried)
	return res, nil
}

func (w *Watermark) embed(ctx context.Context, src image.Image, payload Payload, strength float64) (image.Image, *EmbedResult, error) {
	strength, err := normalizeStrength(strength)
	if err != nil {
		return nil, nil, err
	}
	if payload.empty() {
		return nil, nil, ErrEmptyPayload
	}

	img := watermark.NewImageSource(src)
	if err := w.channel.Check(img.Channels()); err != nil {
		return nil, nil, err
	}
	levels, bits, err := w.plan(img, payload)
	if err != nil {
		return nil, nil, err
	}
	marked, err := watermark.Embed(ctx, img, w.channel, bits, levels, strength)
	if err != nil {
		return nil, nil, err
	}

	res := &EmbedResult{
		Success:   true,
		Kind:      payload.Kind(),
		Channel:   w.channel,
		Levels:    levels,
		Strength:  strength,
		Capacity:  watermark.Capacity(img, levels),
		FrameBits: len(bits),
	}
	res.Message = fmt.Sprintf("embedded %s mark: %d bits repeated over %d coefficients of the %v channel at level %d",
		res.Kind, res.FrameBits, res.Capacity, res.Channel, res.Levels)
	w.logger.Printf("embed: %s strength=%.3f", res.Message, strength)
	return marked, res, nil
}

// plan picks the first embed level that holds the payload frame.
func (w *Watermark) plan(img watermark.ImageSource, payload Payload) (int, []bool, error) {
	var (
		capErr *CapacityError
		dimErr error
	)
	for _, levels := range w.levels {
		if err := dwt.Validate(img.Width(), img.Height(), levels); err != nil {
			dimErr = err
			continue
		}
		bits, err := payload.encode(watermark.Capacity(img, levels), w.markOptions())
		var ce *CapacityError
		if errors.As(err, &ce) {
			if capErr == nil || ce.Capacity > capErr.Capacity {
				capErr = ce
			}
			continue
		}
		if err != nil {
			return 0, nil, err
		}
		return levels, bits, nil
	}
	if capErr != nil {
		return 0, nil, capErr
	}
	return 0, nil, dimErr
}

func (w *Watermark) markOptions() []mark.Option {
	if w.golay {
		return []mark.Option{mark.WithGolay(w.seed)}
	}
	return []mark.Option{mark.WithoutECC()}
}

func (w *Watermark) decode(imageBytes []byte) (image.Image, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrUnsupportedFormat)
	}
	if len(imageBytes) > w.maxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, len(imageBytes), w.maxImageBytes)
	}
	img, _, err := imagecodec.Decode(imageBytes)
	return img, err
}

func (w *Watermark) init(opts ...Option) error {
	w.levels = []int{3, 2, 1}
	w.channel = ChannelLuma
	w.configs = DefaultExtractConfigs()
	w.seed = mark.DefaultShuffleSeed
	w.threshold = DefaultThreshold
	w.tolerance = mark.DefaultSyncTolerance
	w.maxImageBytes = DefaultMaxImageBytes
	w.outputFormat = imagecodec.PNG
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return err
		}
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard, "", 0)
	}
	return nil
}
