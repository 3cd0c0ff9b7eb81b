package mark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBits(n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = (i*7+i/3)%5 < 2
	}
	return bits
}

func TestGolayCoder(t *testing.T) {
	g := golayCoder{seed: 12345}

	t.Run("coded length", func(t *testing.T) {
		for n := range 64 * 4 {
			assert.Len(t, g.encode(sampleBits(n)), g.codedBits(n), "size %d", n)
		}
		assert.Equal(t, 0, g.codedBits(0))
	})

	t.Run("encode/decode", func(t *testing.T) {
		for _, n := range []int{8, 72, 128, 301} {
			body := sampleBits(n)
			got := g.decode(g.encode(body), n)
			require.Equal(t, body, got, "size %d", n)
		}
	})

	t.Run("corrects scattered errors", func(t *testing.T) {
		body := sampleBits(64)
		coded := g.encode(body)
		coded[3] = !coded[3]
		coded[len(coded)-1] = !coded[len(coded)-1]
		assert.Equal(t, body, g.decode(coded, 64))
	})

	t.Run("seed changes the order", func(t *testing.T) {
		body := sampleBits(96)
		other := golayCoder{seed: 54321}
		assert.NotEqual(t, g.encode(body), other.encode(body))
		assert.NotEqual(t, body, other.decode(g.encode(body), 96))
	})
}

func TestPlainCoder(t *testing.T) {
	var p plainCoder
	body := sampleBits(64)
	coded := p.encode(body)
	assert.Equal(t, body, coded)
	assert.Equal(t, 64, p.codedBits(64))
	assert.Equal(t, body[:40], p.decode(coded, 40))

	coded[0] = !coded[0]
	assert.NotEqual(t, body[0], coded[0], "encode must copy")
}

func TestPermutation(t *testing.T) {
	a := permutation(100, 7)
	assert.Equal(t, a, permutation(100, 7))
	assert.ElementsMatch(t, a, permutation(100, 8))
	seen := make([]bool, 100)
	for _, v := range a {
		require.False(t, seen[v])
		seen[v] = true
	}
}
