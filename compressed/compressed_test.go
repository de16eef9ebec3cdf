package compressed

import (
	"encoding/binary"
	"testing"

	"github.com/mogren/animpack/format"
)

func buildValidBlob(t *testing.T) []byte {
	// One bone, both tracks default: fixed part plus two bitset words
	buf := make([]byte, FixedSize+8)
	cc := Make(buf, format.AlgorithmUniformlySampled)

	h := Header{
		NumBones:            1,
		RotationFormat:      format.RotationQuat128,
		TranslationFormat:   format.Vector396,
		NumSamples:          2,
		SampleRate:          30,
		DefaultBitsetOffset: Offset32(FixedSize),
		ConstantDataOffset:  InvalidOffset,
		RangeDataOffset:     InvalidOffset,
		AnimatedDataOffset:  InvalidOffset,
	}
	h.Write(buf)
	cc.Finalize()

	if err := Validate(buf, true); err != nil {
		t.Fatalf("fresh blob does not validate: %v", err)
	}
	return buf
}

func TestHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, FixedSize)
	want := Header{
		NumBones:                     17,
		RotationFormat:               format.RotationQuat48,
		TranslationFormat:            format.Vector332,
		RangeReduction:               format.RangeReductionPerClip | format.RangeReductionTranslations,
		NumSamples:                   120,
		SampleRate:                   30,
		NumAnimatedRotationTracks:    5,
		NumAnimatedTranslationTracks: 7,
		DefaultBitsetOffset:          Offset32(FixedSize),
		ConstantDataOffset:           64,
		RangeDataOffset:              InvalidOffset,
		AnimatedDataOffset:           128,
	}
	want.Write(buf)
	if got := ReadHeader(buf); got != want {
		t.Errorf("header round trip:\n got %+v\nwant %+v", got, want)
	}
}

func TestHeaderBitsetSize(t *testing.T) {
	tests := []struct {
		bones uint16
		words int
	}{{1, 1}, {16, 1}, {17, 2}, {64, 4}}
	for _, test := range tests {
		h := Header{NumBones: test.bones}
		if got := h.BitsetSize(); got != test.words {
			t.Errorf("BitsetSize(%d bones)=%d; expected %d", test.bones, got, test.words)
		}
	}
}

func integrityField(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an integrity error")
	}
	ie, ok := err.(*IntegrityError)
	if !ok {
		t.Fatalf("expected IntegrityError, got %T: %v", err, err)
	}
	return ie.Field
}

func TestValidateRejectsCorruption(t *testing.T) {
	blob := buildValidBlob(t)

	short := blob[:FixedSize-1]
	if got := integrityField(t, Validate(short, true)); got != "size" {
		t.Errorf("short blob rejected as %q", got)
	}

	bad := append([]byte{}, blob...)
	binary.LittleEndian.PutUint32(bad[0:4], 0xdeadbeef)
	if got := integrityField(t, Validate(bad, true)); got != "magic" {
		t.Errorf("bad magic rejected as %q", got)
	}

	bad = append([]byte{}, blob...)
	binary.LittleEndian.PutUint16(bad[4:6], 99)
	if got := integrityField(t, Validate(bad, true)); got != "version" {
		t.Errorf("bad version rejected as %q", got)
	}

	bad = append([]byte{}, blob...)
	bad[6] = 0
	if got := integrityField(t, Validate(bad, true)); got != "algorithm" {
		t.Errorf("zero algorithm rejected as %q", got)
	}

	bad = append([]byte{}, blob...)
	binary.LittleEndian.PutUint32(bad[8:12], uint32(len(bad)+4))
	if got := integrityField(t, Validate(bad, true)); got != "total_size" {
		t.Errorf("bad total size rejected as %q", got)
	}

	bad = append([]byte{}, blob...)
	bad[len(bad)-1] ^= 0x01
	if got := integrityField(t, Validate(bad, true)); got != "crc" {
		t.Errorf("payload corruption rejected as %q", got)
	}
}

func TestValidateEverySingleBitFlip(t *testing.T) {
	blob := buildValidBlob(t)
	// Any single payload bit flip must fail CRC (or another field check)
	for byteIndex := PreambleSize; byteIndex < len(blob); byteIndex++ {
		for bit := uint(0); bit < 8; bit++ {
			bad := append([]byte{}, blob...)
			bad[byteIndex] ^= 1 << bit
			if Validate(bad, true) == nil {
				t.Fatalf("flip of byte %d bit %d went undetected", byteIndex, bit)
			}
		}
	}
}

func TestValidateOffsetChecks(t *testing.T) {
	blob := buildValidBlob(t)
	h := ReadHeader(blob)

	// Unaligned offset
	bad := append([]byte{}, blob...)
	h2 := h
	h2.ConstantDataOffset = Offset32(FixedSize + 2)
	h2.Write(bad)
	(&Clip{data: bad}).Finalize()
	if got := integrityField(t, Validate(bad, true)); got != "constant_data_offset" {
		t.Errorf("unaligned offset rejected as %q", got)
	}

	// Out-of-bounds offset
	bad = append([]byte{}, blob...)
	h2 = h
	h2.AnimatedDataOffset = Offset32(len(blob) + 64)
	h2.Write(bad)
	(&Clip{data: bad}).Finalize()
	if got := integrityField(t, Validate(bad, true)); got != "animated_data_offset" {
		t.Errorf("out-of-bounds offset rejected as %q", got)
	}

	// Missing bitset offset
	bad = append([]byte{}, blob...)
	h2 = h
	h2.DefaultBitsetOffset = InvalidOffset
	h2.Write(bad)
	(&Clip{data: bad}).Finalize()
	if got := integrityField(t, Validate(bad, true)); got != "default_bitset_offset" {
		t.Errorf("sentinel bitset offset rejected as %q", got)
	}
}

func TestFromBuffer(t *testing.T) {
	blob := buildValidBlob(t)
	cc, err := FromBuffer(blob)
	if err != nil {
		t.Fatal(err)
	}
	if cc.AlgorithmType() != format.AlgorithmUniformlySampled {
		t.Errorf("algorithm tag = %v", cc.AlgorithmType())
	}
	if cc.Size() != uint32(len(blob)) {
		t.Errorf("size = %d", cc.Size())
	}

	blob[20] ^= 0xff
	if _, err := FromBuffer(blob); err == nil {
		t.Errorf("corrupted blob must not load")
	}
}
