package bitset

import (
	"encoding/binary"
	"testing"
)

func TestTestBytesMatchesWords(t *testing.T) {
	words := make([]uint32, 2)
	for _, i := range []int{0, 5, 31, 32, 63} {
		Set(words, i, true)
	}

	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], words[0])
	binary.LittleEndian.PutUint32(data[4:], words[1])

	for i := 0; i < 64; i++ {
		if TestBytes(data, i) != Test(words, i) {
			t.Errorf("bit %d: byte view disagrees with word view", i)
		}
	}
}
