package layout

import (
	"fmt"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

// Element returns the bytes of element index in the section starting at
// offset, where every element is size bytes. The range is checked against
// len(buf) before slicing; arithmetic is done in 64 bits so hostile
// offsets cannot wrap around. The returned slice aliases buf.
func Element(buf []byte, offset, size, index uint32) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: zero element size", domain.ErrOutOfBounds)
	}
	start := uint64(offset) + uint64(index)*uint64(size)
	end := start + uint64(size)
	if end > uint64(len(buf)) {
		return nil, fmt.Errorf("%w: element %d [%d,%d) exceeds %d bytes", domain.ErrOutOfBounds, index, start, end, len(buf))
	}
	return buf[start:end:end], nil
}

// maxElements caps a header-declared count by how many elements of size
// could possibly fit after offset, so a torn count cannot drive a huge
// allocation.
func maxElements(buf []byte, offset, size, count uint32) int {
	if size == 0 || uint64(offset) >= uint64(len(buf)) {
		return 0
	}
	fit := (uint64(len(buf)) - uint64(offset)) / uint64(size)
	if uint64(count) < fit {
		return int(count)
	}
	return int(fit)
}
