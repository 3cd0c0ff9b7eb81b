// Package bitconv converts between bytes and MSB-first bit slices.
package bitconv

func BytesToBools(b []byte) []bool {
	bits := make([]bool, 0, len(b)*8)
	for _, bb := range b {
		for i := 7; i >= 0; i-- {
			bits = append(bits, ((bb>>uint(i))&1) == 1)
		}
	}
	return bits
}

// BoolsToBytes packs bits into bytes; a trailing partial byte is zero padded.
func BoolsToBytes(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

// Uint16ToBools returns the 16 bits of v, most significant first.
func Uint16ToBools(v uint16) []bool {
	bits := make([]bool, 16)
	for i := range bits {
		bits[i] = (v>>uint(15-i))&1 == 1
	}
	return bits
}

// BoolsToUint16 reads the first 16 bits of bits, most significant first.
func BoolsToUint16(bits []bool) uint16 {
	var v uint16
	for _, bit := range bits[:16] {
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v
}

// Hamming16 counts the bits of bits[:16] that differ from v.
func Hamming16(bits []bool, v uint16) int {
	var n int
	for i, bit := range bits[:16] {
		if bit != ((v>>uint(15-i))&1 == 1) {
			n++
		}
	}
	return n
}
