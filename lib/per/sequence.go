package per

import (
	"github.com/pkg/errors"
)

// 19 Encoding the sequence type
// |- 19.1 With an extension marker a single bit tells whether extension
// |  |  additions are present.
// |- 19.2 Each OPTIONAL or DEFAULT root component contributes one bit to a
// |  |  bit-map, set when the component is present.
// |- 19.7 Additions: a normally small length "n" of the addition bit-map, the
// |  |  n-bit bit-map, then each present addition as an open type.

// EncodeSequencePreamble writes the extension bit and the presence bit-map of
// the OPTIONAL root components, in declaration order.
func (e *Encoder) EncodeSequencePreamble(extensible, extended bool, optionals ...bool) error {
	if extensible {
		if err := e.WriteBit(extended); err != nil {
			return err
		}
	} else if extended {
		return errors.Wrap(ErrMalformed, "extension additions on a non extensible sequence")
	}
	for _, present := range optionals {
		if err := e.WriteBit(present); err != nil {
			return err
		}
	}
	return nil
}

// DecodeSequencePreamble reads the extension bit and a presence bit-map of
// count OPTIONAL root components.
func (d *Decoder) DecodeSequencePreamble(extensible bool, count int) (bool, []bool, error) {
	extended := false
	if extensible {
		bit, err := d.ReadBit()
		if err != nil {
			return false, nil, err
		}
		extended = bit
	}
	optionals := make([]bool, count)
	for i := range optionals {
		bit, err := d.ReadBit()
		if err != nil {
			return false, nil, err
		}
		optionals[i] = bit
	}
	return extended, optionals, nil
}

// ExtensionAdditions holds the extension additions of a SEQUENCE by position.
// A nil entry is an absent addition. Additions are kept as complete
// encodings so that unknown ones survive a decode/encode cycle.
type ExtensionAdditions []OpenType

// Present reports whether any addition is present.
func (x ExtensionAdditions) Present() bool {
	for _, addition := range x {
		if addition != nil {
			return true
		}
	}
	return false
}

// EncodeExtensionAdditions writes the addition bit-map and the present
// additions. Callers write it only when Present reports true.
func (e *Encoder) EncodeExtensionAdditions(x ExtensionAdditions) error {
	if !x.Present() {
		return errors.Wrap(ErrMalformed, "extension bit set without additions")
	}
	if _, _, err := e.EncodeNormallySmallLength(uint64(len(x))); err != nil {
		return err
	}
	for _, addition := range x {
		if err := e.WriteBit(addition != nil); err != nil {
			return err
		}
	}
	for _, addition := range x {
		if addition == nil {
			continue
		}
		if err := e.EncodeOctetStringFragments(complete(addition), nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// DecodeExtensionAdditions reads the additions announced by a set extension
// bit.
func (d *Decoder) DecodeExtensionAdditions() (ExtensionAdditions, error) {
	n, more, err := d.DecodeNormallySmallLength()
	if err != nil {
		return nil, err
	}
	if more {
		return nil, errors.Wrapf(ErrMalformed, "fragmented addition bit-map of %d", n)
	}
	if n > d.Remaining() {
		return nil, ErrBufferExhausted
	}
	present := make([]bool, n)
	for i := range present {
		if present[i], err = d.ReadBit(); err != nil {
			return nil, err
		}
	}
	additions := make(ExtensionAdditions, n)
	for i := range present {
		if !present[i] {
			continue
		}
		data, err := d.DecodeOpenType()
		if err != nil {
			return nil, err
		}
		additions[i] = data
		d.Logger().WithField("addition", i).Debug("keeping unknown extension addition")
	}
	return additions, nil
}

// 20 Encoding the sequence-of type
// |- 20.4 Fixed size below 64K: no length determinant.
// |- 20.5 Otherwise the count is a length determinant (constrained or
// |  |  fragmented) followed by the components.
// |- 20.2 With an extension marker, one bit tells whether the count lies
// |  |  outside the root; such counts are semi-constrained.

// EncodeSequenceOf encodes items with encode under SIZE(lb..ub).
func EncodeSequenceOf[T any](e *Encoder, items []T, lb, ub *uint64, extensible bool,
	encode func(*Encoder, T) error) error {
	n := uint64(len(items))
	outside := (lb != nil && n < *lb) || (ub != nil && n > *ub)
	if extensible {
		if err := e.WriteBit(outside); err != nil {
			return err
		}
		if outside {
			lb, ub = nil, nil
		}
	} else if outside {
		return errors.Wrapf(ErrLengthOutOfRange, "%d items outside %s", n, sizeString(lb, ub))
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		for _, item := range items {
			if err := encode(e, item); err != nil {
				return err
			}
		}
		return nil
	}

	offset := uint64(0)
	for {
		length, more, err := e.EncodeLengthDeterminant(n-offset, lb, ub)
		if err != nil {
			return err
		}
		for _, item := range items[offset : offset+length] {
			if err := encode(e, item); err != nil {
				return err
			}
		}
		offset += length
		if !more {
			return nil
		}
		lb = nil
	}
}

// DecodeSequenceOf decodes items with decode under SIZE(lb..ub).
func DecodeSequenceOf[T any](d *Decoder, lb, ub *uint64, extensible bool,
	decode func(*Decoder) (T, error)) ([]T, error) {
	if extensible {
		outside, err := d.ReadBit()
		if err != nil {
			return nil, err
		}
		if outside {
			lb, ub = nil, nil
		}
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		return decodeItems(d, nil, *ub, decode)
	}

	var items []T
	for {
		length, more, err := d.DecodeLengthDeterminant(lb, ub)
		if err != nil {
			return nil, err
		}
		if items, err = decodeItems(d, items, length, decode); err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := checkSize(uint64(len(items)), lb, ub); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeItems appends n decoded items. The up-front allocation is capped so
// that a hostile count cannot reserve memory the input cannot fill.
func decodeItems[T any](d *Decoder, items []T, n uint64, decode func(*Decoder) (T, error)) ([]T, error) {
	if items == nil {
		items = make([]T, 0, min(n, d.Remaining()+1, 1024))
	}
	for range n {
		item, err := decode(d)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
