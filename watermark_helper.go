package watermark

import (
	"fmt"
	"strings"

	"github.com/yyyoichi/aigc_watermark/internal/imagecodec"
	"github.com/yyyoichi/aigc_watermark/internal/watermark"
	"github.com/yyyoichi/aigc_watermark/mark"
)

func checkAlgorithm(algorithm string) error {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmDWT:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
}

// normalizeStrength maps 0 to DefaultStrength and rejects values outside
// MinStrength..MaxStrength.
func normalizeStrength(strength float64) (float64, error) {
	if strength == 0 {
		return DefaultStrength, nil
	}
	if !(strength >= MinStrength && strength <= MaxStrength) {
		return 0, fmt.Errorf("%w: %v is outside %v..%v", ErrInvalidStrength, strength, MinStrength, MaxStrength)
	}
	return strength, nil
}

func newExtractResult(det watermark.Detection) (*ExtractResult, error) {
	res := &ExtractResult{
		Success:    true,
		Kind:       PayloadNone,
		Confidence: det.Result.Confidence,
		Algorithm:  AlgorithmDWT,
	}
	if !det.Found {
		return res, nil
	}
	res.Detected = true
	res.Channel = det.Config.Channel
	res.Levels = det.Config.Levels
	switch det.Result.Kind {
	case mark.KindText:
		res.Kind = PayloadText
		res.Text = det.Result.Text
	case mark.KindBitmap:
		res.Kind = PayloadImage
		res.Bitmap = det.Result.Bitmap
		data, err := imagecodec.EncodeBytes(res.Bitmap.Image(), imagecodec.PNG)
		if err != nil {
			return nil, err
		}
		res.ImageBytes = data
	}
	return res, nil
}
