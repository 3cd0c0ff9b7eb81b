package mark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/aigc_watermark/internal/bitconv"
	"github.com/yyyoichi/golay"
)

func TestEncodeText(t *testing.T) {
	bits, err := EncodeText("hello", 0)
	require.NoError(t, err)
	require.Len(t, bits, 80)
	assert.Equal(t, FrameBits(KindText, 5), len(bits))

	assert.Equal(t, SyncPattern, bitconv.BoolsToUint16(bits))
	assert.Equal(t, uint16(5), bitconv.BoolsToUint16(bits[16:]))
	assert.Equal(t, []byte("hello"), bitconv.BoolsToBytes(bits[32:72]))
	assert.Equal(t, checksum([]byte("hello")), bitconv.BoolsToBytes(bits[72:])[0])
}

func TestEncodeText_capacity(t *testing.T) {
	text := "0123456789abcdef0123456789abcdef"

	bits, err := EncodeText(text, 296)
	require.NoError(t, err)
	assert.Len(t, bits, 296)

	_, err = EncodeText(text, 295)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
	var ce *CapacityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 296, ce.Need)
	assert.Equal(t, 295, ce.Capacity)

	_, err = EncodeText(string([]byte{0xff}), 0)
	assert.ErrorIs(t, err, ErrInvalidText)

	_, err = EncodeText(strings.Repeat("a", MaxTextLength), 0)
	require.NoError(t, err)
	_, err = EncodeText(strings.Repeat("a", MaxTextLength+1), 0)
	require.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestEncodeBitmap(t *testing.T) {
	bm, err := NewBitmap(5, 3)
	require.NoError(t, err)
	bm.Set(0, 0, true)
	bm.Set(4, 2, true)

	bits, err := EncodeBitmap(bm, 0)
	require.NoError(t, err)
	// 15 pixels pack into 2 bytes after the 2 dimension bytes.
	assert.Len(t, bits, 32+8*(2+2+1))
	assert.Equal(t, FrameBits(KindBitmap, 2), len(bits))

	length := bitconv.BoolsToUint16(bits[16:])
	assert.NotZero(t, length&bitmapFlag)
	assert.Zero(t, length&golayFlag)
	assert.Equal(t, uint16(2), length&lengthMask)
	assert.Equal(t, []byte{5, 3}, bitconv.BoolsToBytes(bits[32:48]))

	_, err = EncodeBitmap(&Bitmap{Width: 2, Height: 2, Pix: make([]bool, 3)}, 0)
	assert.ErrorIs(t, err, ErrInvalidBitmap)
}

func TestEncode_golay(t *testing.T) {
	bits, err := EncodeText("hello", 0, WithGolay(DefaultShuffleSeed))
	require.NoError(t, err)
	assert.Len(t, bits, 32+golay.EncodedBits(48))
	assert.Equal(t, len(bits), FrameBits(KindText, 5, WithGolay(DefaultShuffleSeed)))

	length := bitconv.BoolsToUint16(bits[16:])
	assert.NotZero(t, length&golayFlag)
	assert.Equal(t, uint16(5), length&lengthMask)
}

func TestMaxTextBytes(t *testing.T) {
	test := []struct {
		capacity int
		exp      int
	}{
		{capacity: 296, exp: 32},
		{capacity: 303, exp: 32},
		{capacity: 304, exp: 33},
		{capacity: 40, exp: 0},
		{capacity: 39, exp: -1},
		{capacity: 1 << 30, exp: MaxTextLength},
	}
	for _, tt := range test {
		assert.Equal(t, tt.exp, MaxTextBytes(tt.capacity), "capacity %d", tt.capacity)
	}

	for _, capacity := range []int{100, 296, 1024} {
		n := MaxTextBytes(capacity, WithGolay(1))
		require.GreaterOrEqual(t, n, 0)
		assert.LessOrEqual(t, FrameBits(KindText, n, WithGolay(1)), capacity)
		assert.Greater(t, FrameBits(KindText, n+1, WithGolay(1)), capacity)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "image", KindBitmap.String())
	assert.Equal(t, "none", KindNone.String())
}
