package analysis

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBadPointerWidth is returned for pointer widths other than 4 or 8 bytes.
var ErrBadPointerWidth = errors.New("unsupported pointer width")

// AddressSpace is the loaded memory image of the target binary, addressed by
// virtual address. It is read-only; a false return means the requested range
// is unmapped.
type AddressSpace interface {
	// ReadAt reads n bytes at va. It fails if any byte of the range is
	// unmapped.
	ReadAt(va uint64, n int) ([]byte, bool)
	// SectionStart returns the start address of a named section.
	SectionStart(name string) (uint64, bool)
	// FindPattern returns the address of the first occurrence of pattern at
	// or after start.
	FindPattern(start uint64, pattern []byte) (uint64, bool)
}

// Reader decodes fixed-width little-endian values from an address space.
// The pointer width is fixed for the whole session.
type Reader struct {
	space   AddressSpace
	ptrSize int
}

func NewReader(space AddressSpace, ptrSize int) (*Reader, error) {
	if ptrSize != 4 && ptrSize != 8 {
		return nil, fmt.Errorf("%w: %d", ErrBadPointerWidth, ptrSize)
	}
	return &Reader{space: space, ptrSize: ptrSize}, nil
}

func (r *Reader) Space() AddressSpace { return r.space }

func (r *Reader) PointerSize() int { return r.ptrSize }

// ReadPointer reads a pointer-width little-endian unsigned integer at va.
func (r *Reader) ReadPointer(va uint64) (uint64, bool) {
	b, ok := r.space.ReadAt(va, r.ptrSize)
	if !ok {
		return 0, false
	}
	if r.ptrSize == 4 {
		return uint64(binary.LittleEndian.Uint32(b)), true
	}
	return binary.LittleEndian.Uint64(b), true
}

// ReadUint32 reads a 4-byte little-endian unsigned integer at va.
func (r *Reader) ReadUint32(va uint64) (uint32, bool) {
	b, ok := r.space.ReadAt(va, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// ReadBytes reads n raw bytes at va.
func (r *Reader) ReadBytes(va uint64, n int) ([]byte, bool) {
	return r.space.ReadAt(va, n)
}

// maxCStringLen bounds string reads so a corrupt name pointer into a large
// mapped region cannot produce a multi-megabyte "name".
const maxCStringLen = 4096

// ReadCString reads ASCII bytes at va up to, not including, the first NUL.
// It reports false when va is unmapped or points directly at a NUL.
func (r *Reader) ReadCString(va uint64) (string, bool) {
	buf := make([]byte, 0, 32)
	for len(buf) < maxCStringLen {
		b, ok := r.space.ReadAt(va+uint64(len(buf)), 1)
		if !ok || b[0] == 0 {
			break
		}
		buf = append(buf, b[0])
	}
	if len(buf) == 0 {
		return "", false
	}
	return string(buf), true
}
