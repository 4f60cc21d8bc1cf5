// Package apyerr defines the error kinds shared by every apygo package.
// It is a leaf package deliberately kept free of any
// dependency on fixed/apfloat/ndarray/apygo so that all of them can
// import it without a cycle; apygo re-exports Kind and Error under its
// own name for callers who only ever import the top-level package.
package apyerr

import "fmt"

// Kind distinguishes the seven user-visible error categories.
type Kind int

const (
	// SpecInvalid covers bit widths out of range or inconsistent redundant
	// specifiers (bits/int_bits/frac_bits, or exp_bits/man_bits/bias).
	SpecInvalid Kind = iota
	// ShapeMismatch covers non-broadcastable shapes, non-conformable matmul
	// dimensions, and convolution on non-1-D operands.
	ShapeMismatch
	// IndexOutOfRange covers an integer index outside its axis bounds.
	IndexOutOfRange
	// KeyInvalid covers an unsupported subscript key type, multiple
	// ellipses, or a key tuple longer than ndim.
	KeyInvalid
	// ValueInvalid covers a malformed decimal string, a reshape total-size
	// mismatch, squeezing a non-size-1 axis, or an invalid negative
	// dimension in reshape.
	ValueInvalid
	// TypeInvalid covers an ndarray dtype unsupported by a conversion
	// constructor.
	TypeInvalid
	// NotImplemented covers a quantization mode or base not yet supported
	// by the requested operation.
	NotImplemented
)

func (k Kind) String() string {
	switch k {
	case SpecInvalid:
		return "spec-invalid"
	case ShapeMismatch:
		return "shape-mismatch"
	case IndexOutOfRange:
		return "index-out-of-range"
	case KeyInvalid:
		return "key-invalid"
	case ValueInvalid:
		return "value-invalid"
	case TypeInvalid:
		return "type-invalid"
	case NotImplemented:
		return "not-implemented"
	default:
		return "unknown-error-kind"
	}
}

// Error is the typed error every apygo package raises. Op names the
// package-qualified operation that failed (e.g. "fixed.New",
// "ndarray.Reshape"), mirroring mat's convention of prefixing panic/error
// text with the package name.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// New builds an *Error with a formatted message.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}
