package per

import (
	"fmt"
)

// Enumerated describes an ENUMERATED type: its root values, the additions
// known to this build and whether it carries an extension marker.
type Enumerated struct {
	Name       string
	Root       []string
	Additions  []string
	Extensible bool
}

// Encode writes ordinal value. Ordinals past the root are written as
// additions, including ones this build does not know.
func (t *Enumerated) Encode(e *Encoder, value uint64) error {
	return e.EncodeEnumerated(value, uint64(len(t.Root)), t.Extensible)
}

// Decode reads an ordinal. Unknown additions are returned as is; use Known to
// tell them apart.
func (t *Enumerated) Decode(d *Decoder) (uint64, error) {
	return d.DecodeEnumerated(uint64(len(t.Root)), t.Extensible)
}

// Known reports whether value names a root value or a known addition.
func (t *Enumerated) Known(value uint64) bool {
	return value < uint64(len(t.Root)+len(t.Additions))
}

// String returns the identifier of value, or unknown(n).
func (t *Enumerated) String(value uint64) string {
	switch {
	case value < uint64(len(t.Root)):
		return t.Root[value]
	case t.Known(value):
		return t.Additions[value-uint64(len(t.Root))]
	}
	return fmt.Sprintf("unknown(%d)", value)
}
