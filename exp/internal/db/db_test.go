package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "nested", "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	imageID, err := d.InsertImage("https://example.com/a.jpg")
	require.NoError(t, err)
	again, err := d.InsertImage("https://example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, imageID, again)

	sizeID, err := d.InsertImageSize(640, 360)
	require.NoError(t, err)
	_, err = d.InsertImageSize(320, 180)
	require.NoError(t, err)
	markID, err := d.InsertMark("AIGC", "none")
	require.NoError(t, err)
	paramID, err := d.InsertMarkParam("luma", 2, 0.1)
	require.NoError(t, err)

	sizes, err := d.ListImageSizes()
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.Equal(t, 320, sizes[0].Width)

	marks, err := d.ListMarks()
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, "AIGC", marks[0].Text)

	params, err := d.ListMarkParams()
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, 2, params[0].Levels)

	id, err := d.ResultExists(imageID, sizeID, markID, paramID, 85)
	require.NoError(t, err)
	assert.Zero(t, id)

	r := &Result{
		ImageID: imageID, ImageSizeID: sizeID, MarkID: markID, MarkParamID: paramID, Quality: 85,
		FrameBits: 72, Capacity: 14400, EmbedCount: 200,
		Detected: true, Success: true, Confidence: 0.98, PSNR: 44.1, SSIM: 0.99,
	}
	_, err = d.InsertResult(r)
	require.NoError(t, err)

	id, err = d.ResultExists(imageID, sizeID, markID, paramID, 85)
	require.NoError(t, err)
	assert.NotZero(t, id)

	r.Success = false
	_, err = d.InsertResult(r)
	require.NoError(t, err)
	count, err := d.CountResults()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	detailed, err := d.ListDetailed()
	require.NoError(t, err)
	require.Len(t, detailed, 1)
	assert.Equal(t, "https://example.com/a.jpg", detailed[0].ImageURI)
	assert.Equal(t, 0.1, detailed[0].Strength)
	assert.False(t, detailed[0].Success)

	best, err := d.GetBestParameters(0)
	require.NoError(t, err)
	require.Len(t, best, 1)
	assert.Equal(t, 1, best[0].TotalTests)

	byQuality, err := d.GetQualityStats()
	require.NoError(t, err)
	require.Len(t, byQuality, 1)
	assert.Equal(t, "q85", byQuality[0].Group)

	byCount, err := d.GetEmbedCountStats()
	require.NoError(t, err)
	require.Len(t, byCount, 1)
	assert.Equal(t, "16+", byCount[0].Group)
}
