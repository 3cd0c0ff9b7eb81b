package mark

import (
	"math/rand"
	"slices"

	"github.com/yyyoichi/bitstream-go"
	"github.com/yyyoichi/golay"
)

// bodyCoder turns frame body bits into the bits written after the header
// and back.
type bodyCoder interface {
	encode(body []bool) []bool
	// decode returns bodyBits bits recovered from coded.
	decode(coded []bool, bodyBits int) []bool
	codedBits(bodyBits int) int
}

var (
	_ bodyCoder = plainCoder{}
	_ bodyCoder = golayCoder{}
)

type plainCoder struct{}

func (plainCoder) encode(body []bool) []bool { return slices.Clone(body) }

func (plainCoder) decode(coded []bool, bodyBits int) []bool {
	return slices.Clone(coded[:bodyBits])
}

func (plainCoder) codedBits(bodyBits int) int { return bodyBits }

// golayCoder applies a Golay code and then a permutation seeded by seed.
type golayCoder struct {
	seed int64
}

func (g golayCoder) encode(body []bool) []bool {
	if len(body) == 0 {
		return nil
	}
	var encoded []uint64
	enc := golay.NewEncoder(&encoded)
	_ = enc.Encode(pack(body), len(body))
	coded := unpack(encoded, enc.Bits())

	out := make([]bool, len(coded))
	for i, from := range permutation(len(coded), g.seed) {
		out[i] = coded[from]
	}
	return out
}

func (g golayCoder) decode(coded []bool, bodyBits int) []bool {
	if bodyBits == 0 {
		return nil
	}
	unshuffled := make([]bool, len(coded))
	for i, to := range permutation(len(coded), g.seed) {
		unshuffled[to] = coded[i]
	}

	var decoded []uint64
	dec := golay.NewDecoder(pack(unshuffled), len(unshuffled))
	_ = dec.Decode(&decoded)
	return unpack(decoded, bodyBits)
}

func (golayCoder) codedBits(bodyBits int) int {
	if bodyBits == 0 {
		return 0
	}
	return golay.EncodedBits(bodyBits)
}

// permutation returns a shuffled 0..n-1. The same seed always yields the
// same order.
func permutation(n int, seed int64) []int {
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	rd := rand.New(rand.NewSource(seed))
	rd.Shuffle(n, func(i, j int) {
		index[i], index[j] = index[j], index[i]
	})
	return index
}

func pack(bits []bool) []uint64 {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, b := range bits {
		w.WriteBool(b)
	}
	return w.Data()
}

func unpack(data []uint64, n int) []bool {
	r := bitstream.NewBitReader(data, 0, 0)
	out := make([]bool, n)
	for i := range out {
		out[i], _ = r.ReadBitAt(i)
	}
	return out
}
