package per

import (
	"github.com/pkg/errors"

	"github.com/thebagchi/xnap-go/lib/bitbuffer"
)

// Error kinds reported by the codecs. Context is attached with errors.Wrapf,
// compare with errors.Is.
var (
	// ErrBufferExhausted reports truncated input or a full bounded writer.
	ErrBufferExhausted = bitbuffer.ErrBufferExhausted

	// ErrValueOutOfRange reports a value outside its declared bounds.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrLengthOutOfRange reports a size outside its declared bounds.
	ErrLengthOutOfRange = errors.New("length out of range")

	// ErrWrongVariant reports access to a choice alternative that is not the
	// selected one. It is a programming error, never a wire condition.
	ErrWrongVariant = errors.New("wrong choice variant")

	// ErrUnknownCriticalIE reports an unrecognised information element whose
	// criticality is reject.
	ErrUnknownCriticalIE = errors.New("unknown critical information element")

	// ErrMalformed reports an encoding that is internally inconsistent.
	ErrMalformed = errors.New("malformed encoding")
)

// IsWireError reports whether err was caused by the encoded data rather than
// by misuse of the API.
func IsWireError(err error) bool {
	if err == nil || errors.Is(err, ErrWrongVariant) {
		return false
	}
	for _, kind := range []error{
		ErrBufferExhausted,
		ErrValueOutOfRange,
		ErrLengthOutOfRange,
		ErrUnknownCriticalIE,
		ErrMalformed,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Ref returns a pointer to v. Bounds are passed as pointers, nil meaning
// unconstrained.
func Ref[T any](v T) *T {
	return &v
}
