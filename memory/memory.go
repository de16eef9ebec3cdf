// Package memory carries the allocator capability used for artifact buffers.
// Compression hands every buffer it returns to the caller through one of
// these, so a host with its own memory tracking can slot in.
package memory

import "unsafe"

const DefaultAlignment = 16

// Allocator is single-thread-confined unless the implementation documents
// otherwise. Alignment is always a power of two.
type Allocator interface {
	Allocate(size, alignment int) []byte
	Deallocate(buf []byte)
}

// HeapAllocator allocates from the Go heap. Deallocate is a no-op, the
// garbage collector reclaims buffers once the caller drops them.
type HeapAllocator struct{}

func (HeapAllocator) Allocate(size, alignment int) []byte {
	if !IsPowerOfTwo(alignment) {
		panic("allocation alignment is not a power of two")
	}
	raw := make([]byte, size+alignment)
	shift := alignment - int(uintptr(unsafe.Pointer(&raw[0]))&uintptr(alignment-1))
	if shift == alignment {
		shift = 0
	}
	return raw[shift : shift+size : shift+size]
}

func (HeapAllocator) Deallocate(buf []byte) {}

func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

func AlignTo(v, alignment int) int {
	return (v + alignment - 1) &^ (alignment - 1)
}

func IsAlignedTo(v, alignment int) bool {
	return v&(alignment-1) == 0
}
