package watermark

import (
	"context"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyyoichi/aigc_watermark/internal/dwt"
	"github.com/yyyoichi/aigc_watermark/internal/yuv"
	"github.com/yyyoichi/aigc_watermark/mark"
)

func TestEmbedExtractBits(t *testing.T) {
	ctx := context.Background()
	test := []struct {
		w, h    int
		levels  int
		channel yuv.Channel
	}{
		{w: 96, h: 80, levels: 1, channel: yuv.Luma},
		{w: 97, h: 81, levels: 2, channel: yuv.Luma},
		{w: 97, h: 81, levels: 3, channel: yuv.Luma},
		{w: 64, h: 64, levels: 2, channel: yuv.Red},
		{w: 64, h: 64, levels: 2, channel: yuv.Green},
		{w: 120, h: 90, levels: 3, channel: yuv.Blue},
	}
	for _, tt := range test {
		t.Run(fmt.Sprintf("%dx%d_L%d_%v", tt.w, tt.h, tt.levels, tt.channel), func(t *testing.T) {
			src := NewImageSource(smoothImage(tt.w, tt.h, int64(tt.w*tt.levels)))
			bits := randomBits(min(100, Capacity(src, tt.levels)), 3)

			out, err := Embed(ctx, src, tt.channel, bits, tt.levels, 0.1)
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, tt.w, tt.h), out.Bounds())

			got, err := ExtractBits(NewImageSource(out), tt.channel, tt.levels)
			require.NoError(t, err)
			require.Len(t, got, Capacity(src, tt.levels))
			for i, b := range got {
				require.Equal(t, bits[i%len(bits)], b, "bit %d", i)
			}
		})
	}
}

func TestEmbed_lowStrength(t *testing.T) {
	src := NewImageSource(smoothImage(64, 64, 11))
	bits := randomBits(64, 5)
	out, err := Embed(context.Background(), src, yuv.Luma, bits, 2, 0.01)
	require.NoError(t, err)

	got, err := ExtractBits(NewImageSource(out), yuv.Luma, 2)
	require.NoError(t, err)
	for i, b := range got {
		require.Equal(t, bits[i%len(bits)], b, "bit %d", i)
	}
}

func TestEmbed_capacityBoundary(t *testing.T) {
	ctx := context.Background()
	src := NewImageSource(smoothImage(64, 64, 1))
	require.Equal(t, 256, Capacity(src, 2))

	_, err := Embed(ctx, src, yuv.Luma, randomBits(256, 1), 2, 0.1)
	require.NoError(t, err)

	_, err = Embed(ctx, src, yuv.Luma, randomBits(257, 1), 2, 0.1)
	require.ErrorIs(t, err, ErrInsufficientCapacity)
	var ce *mark.CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 256, ce.Capacity)
	assert.Equal(t, 257, ce.Need)
}

func TestEmbed_deterministicAndPure(t *testing.T) {
	img := smoothImage(80, 72, 9)
	before := append([]uint8(nil), img.Pix...)
	src := NewImageSource(img)
	bits := randomBits(90, 2)

	out1, err := Embed(context.Background(), src, yuv.Luma, bits, 2, 0.2)
	require.NoError(t, err)
	out2, err := Embed(context.Background(), src, yuv.Luma, bits, 2, 0.2)
	require.NoError(t, err)

	assert.Equal(t, out1.Pix, out2.Pix)
	assert.Equal(t, before, img.Pix)
	assert.Equal(t, before, src.pix.Pix)
	assert.NotEqual(t, before, out1.Pix)
}

func TestEmbed_channels(t *testing.T) {
	ctx := context.Background()
	bits := randomBits(50, 4)

	t.Run("luma keeps chroma", func(t *testing.T) {
		img := smoothImage(64, 64, 2)
		out, err := Embed(ctx, NewImageSource(img), yuv.Luma, bits, 1, 0.1)
		require.NoError(t, err)
		for i := 0; i < len(img.Pix); i += 4 {
			in, o := img.Pix[i:i+4], out.Pix[i:i+4]
			require.Equal(t, int(in[0])-int(in[1]), int(o[0])-int(o[1]), "pixel %d", i/4)
			require.Equal(t, int(in[1])-int(in[2]), int(o[1])-int(o[2]), "pixel %d", i/4)
			require.Equal(t, in[3], o[3])
		}
	})

	t.Run("blue leaves other channels", func(t *testing.T) {
		img := smoothImage(64, 64, 3)
		out, err := Embed(ctx, NewImageSource(img), yuv.Blue, bits, 1, 0.1)
		require.NoError(t, err)
		for i := 0; i < len(img.Pix); i += 4 {
			require.Equal(t, img.Pix[i], out.Pix[i])
			require.Equal(t, img.Pix[i+1], out.Pix[i+1])
			require.Equal(t, img.Pix[i+3], out.Pix[i+3])
		}
	})

	t.Run("alpha needs an alpha channel", func(t *testing.T) {
		_, err := Embed(ctx, NewImageSource(smoothImage(64, 64, 4)), yuv.Alpha, bits, 1, 0.1)
		assert.ErrorIs(t, err, yuv.ErrUnsupportedChannel)

		src := NewImageSource(withAlpha(smoothImage(64, 64, 4), 200))
		require.Equal(t, 4, src.Channels())
		out, err := Embed(ctx, src, yuv.Alpha, bits, 1, 0.1)
		require.NoError(t, err)
		got, err := ExtractBits(NewImageSource(out), yuv.Alpha, 1)
		require.NoError(t, err)
		for i, b := range got {
			require.Equal(t, bits[i%len(bits)], b, "bit %d", i)
		}
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := Embed(ctx, NewImageSource(smoothImage(64, 64, 4)), yuv.Channel(7), bits, 1, 0.1)
		assert.ErrorIs(t, err, yuv.ErrUnsupportedChannel)
	})
}

func TestEmbed_errors(t *testing.T) {
	src := NewImageSource(smoothImage(16, 16, 1))

	_, err := Embed(context.Background(), src, yuv.Luma, nil, 1, 0.1)
	assert.ErrorIs(t, err, ErrEmptyMark)

	_, err = Embed(context.Background(), src, yuv.Luma, []bool{true}, 5, 0.1)
	assert.ErrorIs(t, err, dwt.ErrInvalidDimension)

	_, err = ExtractBits(src, yuv.Luma, 5)
	assert.ErrorIs(t, err, dwt.ErrInvalidDimension)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Embed(ctx, src, yuv.Luma, []bool{true}, 1, 0.1)
	assert.ErrorIs(t, err, context.Canceled)
}
