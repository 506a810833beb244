package per

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// Choice holds exactly one alternative of a CHOICE type: its index in
// declaration order (root alternatives first, then additions) and its value.
type Choice struct {
	index int
	value any
}

// NewChoice returns a choice selecting alternative index.
func NewChoice(index int, value any) Choice {
	return Choice{index: index, value: value}
}

// Type returns the index of the selected alternative.
func (c *Choice) Type() int {
	return c.index
}

// Value returns the value of the selected alternative.
func (c *Choice) Value() any {
	return c.value
}

// Set replaces the selected alternative.
func (c *Choice) Set(index int, value any) {
	c.index = index
	c.value = value
}

// Alternative returns the value of alternative index. It fails with
// ErrWrongVariant, leaving c untouched, when another alternative is selected
// or the stored value is not a T.
func Alternative[T any](c *Choice, index int) (T, error) {
	var zero T
	if c.index != index {
		return zero, errors.Wrapf(ErrWrongVariant, "alternative %d requested, %d selected", index, c.index)
	}
	value, ok := c.value.(T)
	if !ok {
		return zero, errors.Wrapf(ErrWrongVariant, "alternative %d holds %T", index, c.value)
	}
	return value, nil
}

// Equal reports whether both choices select the same alternative with equal
// values.
func (c Choice) Equal(o Choice) bool {
	return c.index == o.index && cmp.Equal(c.value, o.value)
}

// MarshalJSON renders the selected alternative.
func (c Choice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index int `json:"index"`
		Value any `json:"value"`
	}{c.index, c.value})
}

// 23 Encoding the choice type
// |- 23.5 With an extension marker a single bit tells whether an extension
// |  |  addition alternative is chosen.
// |- 23.6 / 23.7 A root alternative index is a constrained whole number
// |  |  0..n-1; with a single root alternative no bits are written.
// |- 23.8 An addition index is a normally small non-negative whole number
// |  |  and the value is an open type.

// EncodeChoiceIndex writes the index of the chosen alternative among root
// alternatives, or as an extension addition past them.
func (e *Encoder) EncodeChoiceIndex(index, root int, extensible bool) error {
	if index < 0 || (!extensible && index >= root) {
		return errors.Wrapf(ErrValueOutOfRange, "choice index %d of %d", index, root)
	}
	if extensible {
		if err := e.WriteBit(index >= root); err != nil {
			return err
		}
		if index >= root {
			return e.EncodeNormallySmallNonNegativeWholeNumber(uint64(index - root))
		}
	}
	return e.EncodeConstrainedWholeNumber(0, int64(root-1), int64(index))
}

// DecodeChoiceIndex reads a choice index and reports whether it addresses an
// extension addition, whose value then follows as an open type.
func (d *Decoder) DecodeChoiceIndex(root int, extensible bool) (int, bool, error) {
	if extensible {
		extended, err := d.ReadBit()
		if err != nil {
			return 0, false, err
		}
		if extended {
			value, err := d.DecodeNormallySmallNonNegativeWholeNumber()
			if err != nil {
				return 0, false, err
			}
			if value > uint64(1<<31) {
				return 0, false, errors.Wrapf(ErrValueOutOfRange, "choice addition %d", value)
			}
			return root + int(value), true, nil
		}
	}
	index, err := d.DecodeConstrainedWholeNumber(0, int64(root-1))
	if err != nil {
		return 0, false, err
	}
	return int(index), false, nil
}
