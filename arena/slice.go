package arena

import "unsafe"

// Scalar is the set of element types that may be viewed inside an arena.
// Pointer-carrying types are excluded: arena memory is invisible to the
// garbage collector.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Slice returns the payload of h as a []T covering every whole element.
func Slice[T Scalar](a *Arena, h Handle) ([]T, error) {
	b, err := a.Bytes(h)
	if err != nil {
		return nil, err
	}
	var zero T
	n := len(b) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)[:n:n], nil //nolint:gosec // payloads are Alignment-aligned
}

// AllocSlice allocates n elements of T and returns the handle and an n-length view.
func AllocSlice[T Scalar](a *Arena, n int) (Handle, []T, error) {
	if n <= 0 {
		return Handle{}, nil, ErrInvalidSize
	}
	var zero T
	h, err := a.Alloc(n * int(unsafe.Sizeof(zero)))
	if err != nil {
		return Handle{}, nil, err
	}
	s, err := Slice[T](a, h)
	if err != nil {
		return Handle{}, nil, err
	}
	return h, s[:n:n], nil
}
