package watermark

import (
	"fmt"
	"log"
	"slices"

	"github.com/yyyoichi/aigc_watermark/internal/dwt"
	"github.com/yyyoichi/aigc_watermark/internal/imagecodec"
)

type Option func(*Watermark) error

// WithEmbedLevels sets the decomposition depths tried when embedding, in
// order of preference. The first depth whose capacity holds the payload
// frame is used. Deeper levels survive compression better but hold fewer
// bits. The default is 3, 2, 1.
func WithEmbedLevels(levels ...int) Option {
	return func(w *Watermark) error {
		if len(levels) == 0 {
			return fmt.Errorf("%w: no embed levels", ErrInvalidOption)
		}
		for _, l := range levels {
			if l < 1 || l > dwt.MaxLevels {
				return fmt.Errorf("%w: embed level %d is outside 1..%d", ErrInvalidOption, l, dwt.MaxLevels)
			}
		}
		w.levels = slices.Clone(levels)
		return nil
	}
}

// WithChannel sets the channel marks are embedded into. The default is luma.
func WithChannel(ch Channel) Option {
	return func(w *Watermark) error {
		if ch < ChannelLuma || ch > ChannelAlpha {
			return fmt.Errorf("%w: %v", ErrUnsupportedChannel, ch)
		}
		w.channel = ch
		return nil
	}
}

// WithExtractConfigs sets the ordered list of channel and level pairs tried
// when extracting. The default is luma 3, 2, 1 followed by blue 3, 2, 1.
func WithExtractConfigs(configs ...ExtractConfig) Option {
	return func(w *Watermark) error {
		if len(configs) == 0 {
			return fmt.Errorf("%w: no extract configs", ErrInvalidOption)
		}
		for _, c := range configs {
			if c.Channel < ChannelLuma || c.Channel > ChannelAlpha {
				return fmt.Errorf("%w: %v", ErrUnsupportedChannel, c.Channel)
			}
			if c.Levels < 1 || c.Levels > dwt.MaxLevels {
				return fmt.Errorf("%w: extract level %d is outside 1..%d", ErrInvalidOption, c.Levels, dwt.MaxLevels)
			}
		}
		w.configs = slices.Clone(configs)
		return nil
	}
}

// WithGolay protects embedded frames with a Golay code shuffled by seed.
// Extraction recognises Golay frames on its own but needs the same seed.
func WithGolay(seed int64) Option {
	return func(w *Watermark) error {
		w.golay = true
		w.seed = seed
		return nil
	}
}

// WithThreshold sets the confidence at which extraction reports a mark.
// The default is 0.5.
func WithThreshold(threshold float64) Option {
	return func(w *Watermark) error {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("%w: threshold %v is outside (0, 1]", ErrInvalidOption, threshold)
		}
		w.threshold = threshold
		return nil
	}
}

// WithSyncTolerance sets how many of the 16 sync bits may differ.
func WithSyncTolerance(n int) Option {
	return func(w *Watermark) error {
		if n < 0 || n > 8 {
			return fmt.Errorf("%w: sync tolerance %d is outside 0..8", ErrInvalidOption, n)
		}
		w.tolerance = n
		return nil
	}
}

// WithMaxImageBytes limits the size of encoded input images.
func WithMaxImageBytes(n int) Option {
	return func(w *Watermark) error {
		if n <= 0 {
			return fmt.Errorf("%w: max image bytes %d", ErrInvalidOption, n)
		}
		w.maxImageBytes = n
		return nil
	}
}

// WithOutputFormat sets the encoding of embedded images: "png" (default),
// "webp" (lossless) or "jpeg" (quality 95).
func WithOutputFormat(format string) Option {
	return func(w *Watermark) error {
		if !imagecodec.Supported(format) {
			return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}
		w.outputFormat = format
		return nil
	}
}

// WithLogger receives one line per embed and extract call.
func WithLogger(l *log.Logger) Option {
	return func(w *Watermark) error {
		w.logger = l
		return nil
	}
}
