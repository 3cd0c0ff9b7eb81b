package watermark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyoichi/aigc_watermark/internal/yuv"
	"github.com/yyyoichi/aigc_watermark/mark"
)

func TestDetect(t *testing.T) {
	ctx := context.Background()
	frame, err := mark.EncodeText("detect me", 0)
	require.NoError(t, err)

	t.Run("luma level 2", func(t *testing.T) {
		src := NewImageSource(smoothImage(128, 128, 21))
		out, err := Embed(ctx, src, yuv.Luma, frame, 2, 0.1)
		require.NoError(t, err)

		det, err := Detect(ctx, NewImageSource(out), nil, 0.5)
		require.NoError(t, err)
		require.True(t, det.Found)
		assert.Equal(t, Config{Channel: yuv.Luma, Levels: 2}, det.Config)
		assert.Equal(t, 2, det.Tried)
		assert.Equal(t, "detect me", det.Result.Text)
		assert.GreaterOrEqual(t, det.Result.Confidence, 0.9)
	})

	t.Run("blue level 1", func(t *testing.T) {
		src := NewImageSource(smoothImage(96, 96, 22))
		out, err := Embed(ctx, src, yuv.Blue, frame, 1, 0.1)
		require.NoError(t, err)

		det, err := Detect(ctx, NewImageSource(out), nil, 0.5)
		require.NoError(t, err)
		require.True(t, det.Found)
		assert.Equal(t, 1, det.Config.Levels)
		assert.Equal(t, "detect me", det.Result.Text)

		det, err = Detect(ctx, NewImageSource(out), []Config{{Channel: yuv.Blue, Levels: 1}}, 0.5)
		require.NoError(t, err)
		require.True(t, det.Found)
		assert.Equal(t, Config{Channel: yuv.Blue, Levels: 1}, det.Config)
		assert.Equal(t, 1, det.Tried)
	})

	t.Run("unmarked", func(t *testing.T) {
		for seed := range int64(5) {
			det, err := Detect(ctx, NewImageSource(smoothImage(96, 64, seed+100)), nil, 0.5)
			require.NoError(t, err)
			assert.False(t, det.Found)
			assert.Less(t, det.Result.Confidence, 0.5)
			assert.Equal(t, 6, det.Tried)
		}
	})

	t.Run("skips configs the image cannot hold", func(t *testing.T) {
		src := NewImageSource(smoothImage(16, 16, 1))
		det, err := Detect(ctx, src, []Config{
			{Channel: yuv.Luma, Levels: 5},
			{Channel: yuv.Alpha, Levels: 1},
			{Channel: yuv.Red, Levels: 1},
		}, 0.5)
		require.NoError(t, err)
		assert.False(t, det.Found)
		assert.Equal(t, 1, det.Tried)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Detect(cctx, NewImageSource(smoothImage(64, 64, 1)), nil, 0.5)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
