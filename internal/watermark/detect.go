package watermark

import (
	"context"
	"sync"

	"github.com/yyyoichi/aigc_watermark/internal/dwt"
	"github.com/yyyoichi/aigc_watermark/internal/yuv"
	"github.com/yyyoichi/aigc_watermark/mark"
)

// Config is one channel and decomposition depth to try when detecting.
type Config struct {
	Channel yuv.Channel
	Levels  int
}

// DefaultConfigs is the order in which Detect tries configurations when none
// are given.
func DefaultConfigs() []Config {
	return []Config{
		{Channel: yuv.Luma, Levels: 3},
		{Channel: yuv.Luma, Levels: 2},
		{Channel: yuv.Luma, Levels: 1},
		{Channel: yuv.Blue, Levels: 3},
		{Channel: yuv.Blue, Levels: 2},
		{Channel: yuv.Blue, Levels: 1},
	}
}

// Detection is the outcome of Detect.
type Detection struct {
	// Found is true when a frame decoded with confidence >= threshold.
	Found bool
	// Config produced Result. When nothing was found it is the
	// configuration with the best partial confidence.
	Config Config
	Result mark.Result
	// Tried counts the configurations that were decoded.
	Tried int
}

// Detect tries configs in order and stops at the first one whose frame
// decodes with confidence at least threshold. Every channel is decomposed
// once, to the deepest level any config asks for, and all configs on that
// channel read from the same decomposition. Configs that the image cannot
// satisfy are skipped. Running out of configs is not an error. ctx is
// checked between configs and while decoding.
func Detect(ctx context.Context, src ImageSource, configs []Config, threshold float64, opts ...mark.DecodeOption) (Detection, error) {
	if len(configs) == 0 {
		configs = DefaultConfigs()
	}

	depth := make(map[yuv.Channel]int)
	var channels []yuv.Channel
	for _, c := range configs {
		if c.Channel.Check(src.channels) != nil || dwt.Validate(src.width, src.height, c.Levels) != nil {
			continue
		}
		if _, ok := depth[c.Channel]; !ok {
			channels = append(channels, c.Channel)
		}
		depth[c.Channel] = max(depth[c.Channel], c.Levels)
	}

	decomposed := make([][]dwt.Level, len(channels))
	errs := make([]error, len(channels))
	var wg sync.WaitGroup
	wg.Add(len(channels))
	for i, ch := range channels {
		go func(i int, ch yuv.Channel) {
			defer wg.Done()
			plane, err := src.plane(ch)
			if err != nil {
				errs[i] = err
				return
			}
			decomposed[i], errs[i] = dwt.Decompose(plane, depth[ch])
		}(i, ch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return Detection{}, err
		}
	}
	levelsOf := make(map[yuv.Channel][]dwt.Level, len(channels))
	for i, ch := range channels {
		levelsOf[ch] = decomposed[i]
	}

	var best Detection
	for _, c := range configs {
		if err := ctx.Err(); err != nil {
			return Detection{}, err
		}
		levels, ok := levelsOf[c.Channel]
		if !ok || c.Levels < 1 || c.Levels > len(levels) {
			continue
		}
		bits := readBits(levels[c.Levels-1], src.width, src.height, c.Levels)
		res, err := mark.DecodeContext(ctx, bits, opts...)
		if err != nil {
			return Detection{}, err
		}
		best.Tried++
		if res.Found && res.Confidence >= threshold {
			return Detection{Found: true, Config: c, Result: res, Tried: best.Tried}, nil
		}
		if res.Confidence > best.Result.Confidence || best.Config == (Config{}) {
			best.Config, best.Result = c, res
		}
	}
	return best, nil
}
