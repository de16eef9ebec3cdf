// Package bitset packs 1-bit track flags into 32-bit words the way they are
// laid out inside a compressed clip: MSB-first within each word.
package bitset

import (
	"encoding/binary"
	"math/bits"
)

func Size(numBits int) int {
	return (numBits + 31) / 32
}

func mask(index int) uint32 {
	return uint32(1) << (31 - uint(index%32))
}

func Set(words []uint32, index int, value bool) {
	if value {
		words[index/32] |= mask(index)
	} else {
		words[index/32] &^= mask(index)
	}
}

func Test(words []uint32, index int) bool {
	return words[index/32]&mask(index) != 0
}

// TestBytes tests a bit inside a bitset serialized as little-endian words,
// without building the word slice. The decoder reads bitsets in place.
func TestBytes(data []byte, index int) bool {
	word := binary.LittleEndian.Uint32(data[(index/32)*4:])
	return word&mask(index) != 0
}

func Count(words []uint32) int {
	total := 0
	for _, w := range words {
		total += bits.OnesCount32(w)
	}
	return total
}

// CountRange counts set bits with index in [startBit, startBit+numBits).
func CountRange(words []uint32, startBit, numBits int) int {
	total := 0
	for i := startBit; i < startBit+numBits; i++ {
		if Test(words, i) {
			total++
		}
	}
	return total
}
