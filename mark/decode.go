package mark

import (
	"context"
	"math/bits"
	"unicode/utf8"

	"github.com/yyyoichi/aigc_watermark/internal/bitconv"
	"github.com/yyyoichi/aigc_watermark/internal/kmeans"
)

// Result is the outcome of Decode.
type Result struct {
	// Found is true only when a frame passed its checksum.
	Found      bool
	Kind       Kind
	Text       string
	Bitmap     *Bitmap
	Confidence float64

	// Offset is the bit position of the sync that produced the result.
	Offset int
	// FrameBits is the frame length read from the length field.
	FrameBits int
	// Copies is the number of whole frames averaged together.
	Copies int
	// SyncErrors counts differing sync bits after averaging.
	SyncErrors int
	// ChecksumMismatch counts differing checksum bits when Found is false.
	ChecksumMismatch int
}

// ctxCheckEvery is how many offsets DecodeContext scans between context
// checks.
const ctxCheckEvery = 1 << 12

// partialWeight scales the confidence of frames that failed their checksum,
// keeping it well below any detection threshold.
const partialWeight = 0.25

// Decode searches bits for a frame. It is DecodeContext without
// cancellation.
func Decode(stream []bool, opts ...DecodeOption) Result {
	res, _ := DecodeContext(context.Background(), stream, opts...)
	return res
}

// DecodeContext searches bits for a frame.
//
// Every offset whose 16 bits are within the sync tolerance and whose length
// field describes a frame an encoder could have written is a candidate. The
// candidate's length field gives the frame length, and every whole frame
// aligned with the candidate is averaged bit by bit before the bits are
// decided. Each alignment and length is folded once, however many of its
// copies start with a sync. A candidate whose neighbouring frame does not
// start with a sync is decoded on its own, which lets a single frame be found
// inside unrelated bits. The first candidate with a valid checksum wins;
// otherwise the most confident partial result is returned with Found false.
//
// Work is bounded by the stream length times the longest plausible frame.
// ctx is checked between candidates.
func DecodeContext(ctx context.Context, stream []bool, opts ...DecodeOption) (Result, error) {
	cfg := newDecodeConfig(opts)
	n := len(stream)

	type alignment struct {
		start int
		raw   uint16
	}
	folded := make(map[alignment]bool)

	var best Result
	for k := 0; k+headerBits <= n; k++ {
		if k%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		if bitconv.Hamming16(stream[k:], SyncPattern) > cfg.tolerance {
			continue
		}
		h := parseHeader(bitconv.BoolsToUint16(stream[k+syncBits:]))
		if !h.plausible(stream[k+headerBits:]) {
			continue
		}
		size := h.frameBits()
		if size > n {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var res Result
		var ok bool
		start, copies := k%size, (n-k%size)/size
		switch {
		case copies > 1 && neighbourAgrees(stream, k, size, cfg.tolerance):
			key := alignment{start: start, raw: h.raw}
			if folded[key] {
				continue
			}
			folded[key] = true
			res, ok = decodeFolded(stream, start, copies, h, cfg)
		case k+size <= n:
			res, ok = decodeFolded(stream, k, 1, h, cfg)
			// Room for a second copy without its sync: this is noise.
			if ok && !res.Found && copies > 1 {
				res.Confidence = 0
			}
		}
		if !ok {
			continue
		}
		res.Offset = k
		if res.Found {
			return res, nil
		}
		if res.Confidence > best.Confidence {
			best = res
		}
	}
	return best, nil
}

type header struct {
	raw    uint16
	kind   Kind
	golay  bool
	length int
}

func parseHeader(raw uint16) header {
	h := header{
		raw:    raw,
		kind:   KindText,
		golay:  raw&golayFlag != 0,
		length: int(raw & lengthMask),
	}
	if raw&bitmapFlag != 0 {
		h.kind = KindBitmap
	}
	return h
}

func (h header) coder(seed int64) bodyCoder {
	if h.golay {
		return golayCoder{seed: seed}
	}
	return plainCoder{}
}

// plausible rejects length fields no encoder writes. body starts right
// after the length field; for a plain bitmap its dimensions must account for
// the announced length.
func (h header) plausible(body []bool) bool {
	if h.kind != KindBitmap {
		return h.length <= MaxTextLength
	}
	if h.length < 1 || h.length > maxBitmapBytes {
		return false
	}
	if h.golay || len(body) < 16 {
		return true
	}
	dims := bitconv.BoolsToUint16(body)
	w, ht := int(dims>>8), int(dims&0xff)
	return w > 0 && ht > 0 && (w*ht+7)/8 == h.length
}

func (h header) frameBits() int {
	return frameBits(h.kind, h.length, h.coder(0))
}

// neighbourAgrees checks the sync of the frame following (or preceding) the
// candidate at k. Its tolerance is doubled since a single copy is noisier
// than the folded frame.
func neighbourAgrees(stream []bool, k, size, tolerance int) bool {
	switch {
	case k+size+syncBits <= len(stream):
		return bitconv.Hamming16(stream[k+size:], SyncPattern) <= 2*tolerance
	case k-size >= 0:
		return bitconv.Hamming16(stream[k-size:], SyncPattern) <= 2*tolerance
	default:
		return true
	}
}

func decodeFolded(stream []bool, start, copies int, h header, cfg decodeConfig) (Result, bool) {
	size := h.frameBits()
	frame, agreement := stream[start:start+size], 1.0
	if copies > 1 {
		frame, agreement = fold(stream, start, copies, size)
	}

	syncErrors := bitconv.Hamming16(frame, SyncPattern)
	if syncErrors > cfg.tolerance || bitconv.BoolsToUint16(frame[syncBits:]) != h.raw {
		return Result{}, false
	}
	syncScore := 1 - float64(syncErrors)/syncBits

	res := Result{
		Kind:       h.kind,
		FrameBits:  size,
		Copies:     copies,
		SyncErrors: syncErrors,
	}

	nbody := bodyBytes(h.kind, h.length)
	body := bitconv.BoolsToBytes(h.coder(cfg.seed).decode(frame[headerBits:], nbody*8))
	content, sum := body[:nbody-1], body[nbody-1]

	res.ChecksumMismatch = bits.OnesCount8(checksum(content) ^ sum)
	if res.ChecksumMismatch == 0 && res.fill(content, h) {
		res.Found = true
		res.Confidence = syncScore * agreement
		return res, true
	}

	// A checksum-valid body that does not parse scores 0, as does a
	// checksum with every bit wrong. A single copy carries no agreement
	// evidence and counts half.
	res.Kind = KindNone
	var integrity float64
	if res.ChecksumMismatch > 0 {
		integrity = 1 - float64(res.ChecksumMismatch)/8
	}
	if copies == 1 {
		agreement = .5
	}
	res.Confidence = partialWeight * integrity * syncScore * agreement
	return res, true
}

// fold averages copies aligned frames bit by bit and decides each bit with
// k-means. agreement is the mean per-bit |2*avg-1|.
func fold(stream []bool, start, copies, size int) (frame []bool, agreement float64) {
	stores := make([]kmeans.AverageStore, size)
	for c := range copies {
		for i, bit := range stream[start+c*size : start+(c+1)*size] {
			if bit {
				stores[i].Add(1)
			} else {
				stores[i].Add(0)
			}
		}
	}
	averages := make([]float64, size)
	for i := range stores {
		averages[i] = stores[i].Average()
		agreement += stores[i].Agreement()
	}
	return kmeans.OneDimKmeans(averages), agreement / float64(size)
}

// fill sets the payload fields from a checksum-valid body.
func (r *Result) fill(content []byte, h header) bool {
	switch h.kind {
	case KindBitmap:
		w, hh := int(content[0]), int(content[1])
		pix := content[2:]
		if w == 0 || hh == 0 || len(pix) != (w*hh+7)/8 {
			return false
		}
		r.Bitmap = &Bitmap{Width: w, Height: hh, Pix: bitconv.BytesToBools(pix)[:w*hh]}
	default:
		if !utf8.Valid(content) {
			return false
		}
		r.Text = string(content)
	}
	return true
}
