package meshopt

import (
	"errors"
	"fmt"
	"math"
)

// Error kinds reported by the package. Returned errors wrap one of
// these; test with errors.Is.
var (
	// ErrInvalidArgument reports a missing required buffer, a buffer
	// shorter than its count implies, or an out-of-range parameter.
	ErrInvalidArgument = errors.New("meshopt: invalid argument")
	// ErrArithmeticOverflow reports face or vertex counts whose
	// products exceed 32-bit arithmetic.
	ErrArithmeticOverflow = errors.New("meshopt: arithmetic overflow")
	// ErrUnexpected reports input data that violates an invariant the
	// caller asserted, such as an index beyond the vertex count.
	ErrUnexpected = errors.New("meshopt: unexpected data")
	// ErrOutOfMemory reports an output container that could not be
	// sized.
	ErrOutOfMemory = errors.New("meshopt: out of memory")
)

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unexpected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpected, fmt.Sprintf(format, args...))
}

// checkFaces validates a face count against an index buffer.
func checkFaces[T Index](indices []T, faceCount int) error {
	if indices == nil {
		return invalidArg("nil index buffer")
	}
	if faceCount <= 0 {
		return invalidArg("face count %d", faceCount)
	}
	if uint64(faceCount)*3 >= math.MaxUint32 {
		return fmt.Errorf("%w: %d faces", ErrArithmeticOverflow, faceCount)
	}
	if len(indices) < faceCount*3 {
		return invalidArg("index buffer holds %d indices, %d faces need %d", len(indices), faceCount, faceCount*3)
	}
	return nil
}

// checkVertices validates a vertex count against the index width.
// A count that would collide with the sentinel is invalid; a count
// below minimum is unexpected.
func checkVertices[T Index](vertexCount, minimum int) error {
	if uint64(vertexCount) >= uint64(Sentinel[T]()) {
		return invalidArg("%d vertices exceed the index range", vertexCount)
	}
	if vertexCount < minimum {
		return unexpected("%d vertices, need at least %d", vertexCount, minimum)
	}
	return nil
}

// checkStride validates a vertex stride and a vertex buffer length.
func checkStride(vb []byte, stride, vertexCount int) error {
	if vb == nil {
		return invalidArg("nil vertex buffer")
	}
	if stride <= 0 || stride > maxStride {
		return invalidArg("stride %d", stride)
	}
	if vertexCount <= 0 {
		return invalidArg("vertex count %d", vertexCount)
	}
	if uint64(vertexCount) >= math.MaxUint32 {
		return invalidArg("%d vertices", vertexCount)
	}
	if uint64(vertexCount)*uint64(stride) > math.MaxUint32 {
		return fmt.Errorf("%w: %d vertices of %d bytes", ErrArithmeticOverflow, vertexCount, stride)
	}
	if len(vb) < vertexCount*stride {
		return invalidArg("vertex buffer holds %d bytes, need %d", len(vb), vertexCount*stride)
	}
	return nil
}
