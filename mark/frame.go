// Package mark encodes watermark payloads into self-delimiting bit frames
// and recovers them from noisy, cyclically repeated bitstreams.
//
// A frame is laid out as
//
//	[sync 16][length 16][dims 16, bitmap only][payload n*8][checksum 8]
//
// where the length field carries the payload byte count in its low 14 bits,
// a bitmap flag in bit 15 and a Golay flag in bit 14. Everything after the
// length field is the body; with Golay enabled the body is coded and shuffled.
package mark

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/yyyoichi/aigc_watermark/internal/bitconv"
)

const (
	// SyncPattern marks the start of every frame.
	SyncPattern uint16 = 0xB2E5
	// MaxPayloadBytes is the largest payload the length field can describe.
	MaxPayloadBytes = 1<<14 - 1
	// MaxTextLength is the longest text payload in bytes. Decoding ignores
	// candidate frames announcing longer texts.
	MaxTextLength = 255
	// maxBitmapBytes is the packed size of a 255x255 bitmap.
	maxBitmapBytes = (255*255 + 7) / 8

	syncBits   = 16
	headerBits = 32

	bitmapFlag uint16 = 1 << 15
	golayFlag  uint16 = 1 << 14
	lengthMask uint16 = golayFlag - 1
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidBitmap   = errors.New("invalid bitmap")
	ErrInvalidText     = errors.New("text is not valid UTF-8")
)

// CapacityError reports a frame that does not fit the available bits.
type CapacityError struct {
	Err      error
	Need     int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: need %d bits, capacity is %d bits", e.Err, e.Need, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return e.Err }

// Kind identifies the payload carried by a frame.
type Kind uint8

const (
	KindNone Kind = iota
	KindText
	KindBitmap
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBitmap:
		return "image"
	default:
		return "none"
	}
}

// EncodeText returns the frame bits for text. A positive capacityBits makes
// frames longer than capacityBits fail with ErrPayloadTooLarge.
func EncodeText(text string, capacityBits int, opts ...Option) ([]bool, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidText
	}
	if len(text) > MaxTextLength {
		fc := newFrameConfig(opts)
		return nil, &CapacityError{Err: ErrPayloadTooLarge, Need: frameBits(KindText, len(text), fc.coder), Capacity: frameBits(KindText, MaxTextLength, fc.coder)}
	}
	return encodeFrame(KindText, nil, []byte(text), capacityBits, newFrameConfig(opts))
}

// EncodeBitmap returns the frame bits for bm.
func EncodeBitmap(bm *Bitmap, capacityBits int, opts ...Option) ([]bool, error) {
	if err := bm.validate(); err != nil {
		return nil, err
	}
	dims := []byte{byte(bm.Width), byte(bm.Height)}
	return encodeFrame(KindBitmap, dims, bitconv.BoolsToBytes(bm.Pix), capacityBits, newFrameConfig(opts))
}

// FrameBits returns the frame length for a payload of n bytes.
func FrameBits(kind Kind, n int, opts ...Option) int {
	return frameBits(kind, n, newFrameConfig(opts).coder)
}

// MaxTextBytes returns the largest text payload, in bytes, whose frame fits
// capacityBits. It returns -1 when not even an empty frame fits.
func MaxTextBytes(capacityBits int, opts ...Option) int {
	f := newFrameConfig(opts).coder
	n := min((capacityBits-headerBits-8)/8, MaxTextLength)
	for ; n >= 0; n-- {
		if frameBits(KindText, n, f) <= capacityBits {
			return n
		}
	}
	return -1
}

func frameBits(kind Kind, n int, c bodyCoder) int {
	return headerBits + c.codedBits(bodyBytes(kind, n)*8)
}

func bodyBytes(kind Kind, n int) int {
	return dimsBytes(kind) + n + 1
}

func dimsBytes(kind Kind) int {
	if kind == KindBitmap {
		return 2
	}
	return 0
}

func encodeFrame(kind Kind, dims, payload []byte, capacityBits int, fc frameConfig) ([]bool, error) {
	n := len(payload)
	if n > MaxPayloadBytes {
		return nil, &CapacityError{Err: ErrPayloadTooLarge, Need: frameBits(kind, n, fc.coder), Capacity: capacityBits}
	}
	if need := frameBits(kind, n, fc.coder); capacityBits > 0 && need > capacityBits {
		return nil, &CapacityError{Err: ErrPayloadTooLarge, Need: need, Capacity: capacityBits}
	}

	length := uint16(n)
	if kind == KindBitmap {
		length |= bitmapFlag
	}
	if fc.golay() {
		length |= golayFlag
	}

	body := make([]byte, 0, len(dims)+n+1)
	body = append(body, dims...)
	body = append(body, payload...)
	body = append(body, checksum(body))

	coded := fc.coder.encode(bitconv.BytesToBools(body))

	frame := make([]bool, 0, headerBits+len(coded))
	frame = append(frame, bitconv.Uint16ToBools(SyncPattern)...)
	frame = append(frame, bitconv.Uint16ToBools(length)...)
	return append(frame, coded...), nil
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}
