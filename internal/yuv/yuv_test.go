package yuv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 255, B: 0, A: 255})
	img.SetNRGBA(2, 0, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	img.SetNRGBA(1, 1, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{R: 250, G: 250, B: 250, A: 0})
	return img
}

func TestPlane(t *testing.T) {
	img := testImage()
	test := []struct {
		channel Channel
		exp     []float64
	}{
		{channel: Luma, exp: []float64{76.245, 149.685, 29.07, 0.299*10 + 0.587*20 + 0.114*30, 128, 250}},
		{channel: Red, exp: []float64{255, 0, 0, 10, 128, 250}},
		{channel: Green, exp: []float64{0, 255, 0, 20, 128, 250}},
		{channel: Blue, exp: []float64{0, 0, 255, 30, 128, 250}},
		{channel: Alpha, exp: []float64{255, 255, 255, 40, 255, 0}},
	}
	for _, tt := range test {
		t.Run(tt.channel.String(), func(t *testing.T) {
			plane, err := Plane(img, tt.channel)
			require.NoError(t, err)
			r, c := plane.Dims()
			require.Equal(t, 2, r)
			require.Equal(t, 3, c)
			assert.InDeltaSlice(t, tt.exp, plane.RawMatrix().Data, 1e-9)
		})
	}
}

func TestApply_unchangedPlaneKeepsPixels(t *testing.T) {
	for c := Luma; c <= Alpha; c++ {
		img := testImage()
		plane, err := Plane(img, c)
		require.NoError(t, err)
		require.NoError(t, Apply(img, c, plane))
		assert.Equal(t, testImage().Pix, img.Pix, c.String())
	}
}

func TestApply_luma(t *testing.T) {
	img := testImage()
	plane, err := Plane(img, Luma)
	require.NoError(t, err)
	plane.Apply(func(_, _ int, v float64) float64 { return v + 10 }, plane)

	require.NoError(t, Apply(img, Luma, plane))
	assert.Equal(t, color.NRGBA{R: 255, G: 10, B: 10, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 20, G: 30, B: 40, A: 40}, img.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{R: 138, G: 138, B: 138, A: 255}, img.NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 0}, img.NRGBAAt(2, 1))
}

func TestApply_singleChannel(t *testing.T) {
	img := testImage()
	plane := mat.NewDense(2, 3, []float64{-5, 300, 12.4, 12.6, 0, 255})
	require.NoError(t, Apply(img, Blue, plane))

	exp := testImage()
	for i, v := range []uint8{0, 255, 12, 13, 0, 255} {
		exp.Pix[i*4+2] = v
	}
	assert.Equal(t, exp.Pix, img.Pix)

	assert.Error(t, Apply(img, Blue, mat.NewDense(3, 2, nil)))
}

func TestChannel_Check(t *testing.T) {
	assert.NoError(t, Luma.Check(3))
	assert.NoError(t, Blue.Check(3))
	assert.NoError(t, Alpha.Check(4))
	assert.ErrorIs(t, Alpha.Check(3), ErrUnsupportedChannel)
	assert.ErrorIs(t, Channel(9).Check(4), ErrUnsupportedChannel)

	_, err := Plane(testImage(), Channel(-1))
	assert.ErrorIs(t, err, ErrUnsupportedChannel)
}

func TestParseChannel(t *testing.T) {
	for c := Luma; c <= Alpha; c++ {
		got, err := ParseChannel(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseChannel("cyan")
	assert.ErrorIs(t, err, ErrUnsupportedChannel)
}
