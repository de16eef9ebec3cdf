package memory

import (
	"testing"
	"unsafe"
)

func TestAllocateAlignment(t *testing.T) {
	a := HeapAllocator{}
	for _, alignment := range []int{16, 32, 64} {
		buf := a.Allocate(100, alignment)
		if len(buf) != 100 {
			t.Errorf("Allocate(100, %d) returned %d bytes", alignment, len(buf))
		}
		if addr := uintptr(unsafe.Pointer(&buf[0])); addr&uintptr(alignment-1) != 0 {
			t.Errorf("buffer not %d-byte aligned: %x", alignment, addr)
		}
		a.Deallocate(buf)
	}
}

var alignTests = []struct {
	in, alignment, out int
}{
	{0, 4, 0},
	{1, 4, 4},
	{4, 4, 4},
	{5, 4, 8},
	{17, 16, 32},
}

func TestAlignTo(t *testing.T) {
	for _, test := range alignTests {
		if got := AlignTo(test.in, test.alignment); got != test.out {
			t.Errorf("AlignTo(%d,%d)=%d; expected %d", test.in, test.alignment, got, test.out)
		}
	}
	if !IsAlignedTo(8, 4) || IsAlignedTo(6, 4) {
		t.Errorf("IsAlignedTo broken")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	for _, v := range []int{1, 2, 4, 1024} {
		if !IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d)=false", v)
		}
	}
	for _, v := range []int{0, 3, 6, -4} {
		if IsPowerOfTwo(v) {
			t.Errorf("IsPowerOfTwo(%d)=true", v)
		}
	}
}
