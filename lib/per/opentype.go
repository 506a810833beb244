package per

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
)

// Value is implemented by every type with a PER encoding.
type Value interface {
	Encode(*Encoder) error
	Decode(*Decoder) error
}

// OpenType is the complete encoding of a value whose type is not known to the
// decoder. It is re-encoded unchanged.
type OpenType []byte

// Encode writes the raw octets.
func (o OpenType) Encode(e *Encoder) error {
	return e.codec.WriteBytes(o)
}

// Decode takes every remaining octet of d.
func (o *OpenType) Decode(d *Decoder) error {
	if d.codec.Offset()%8 != 0 {
		return errors.Wrap(ErrMalformed, "open type contents not octet aligned")
	}
	data, err := d.codec.ReadBytes(int(d.Remaining() / 8))
	if err != nil {
		return err
	}
	*o = data
	return nil
}

// MarshalJSON renders the octets as hex.
func (o OpenType) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(o))
}

// 10.2 Open type fields
// |- 10.2.1 The value is encoded as a complete encoding (an outermost value,
// |  |  padded to an octet multiple and never empty) and placed in an
// |  |  unconstrained length determinant prefixed octet string.

// EncodeOpenType encodes v as a complete encoding wrapped in an octet string.
func (e *Encoder) EncodeOpenType(v Value) error {
	sub := e.sub()
	if err := v.Encode(sub); err != nil {
		return err
	}
	return e.EncodeOctetStringFragments(complete(sub.Bytes()), nil, nil)
}

// DecodeOpenType returns the octets of an open type field.
func (d *Decoder) DecodeOpenType() ([]byte, error) {
	return d.DecodeOctetStringFragments(nil, nil)
}

// DecodeOpenTypeValue decodes an open type field into v.
func (d *Decoder) DecodeOpenTypeValue(v Value) error {
	data, err := d.DecodeOpenType()
	if err != nil {
		return err
	}
	return d.DecodeComplete(data, v)
}

func complete(data []byte) []byte {
	if len(data) == 0 {
		return []byte{0x00}
	}
	return data
}

// decodeComplete decodes v from a complete encoding and rejects trailing
// octets. The single zero octet of an empty encoding is accepted.
func decodeComplete(d *Decoder, data []byte, v Value) error {
	if err := v.Decode(d); err != nil {
		return err
	}
	if d.Remaining() >= 8 && !(d.NumRead() == 0 && len(data) == 1) {
		return errors.Wrapf(ErrMalformed, "%d trailing bits after value", d.Remaining())
	}
	return nil
}

// Unaligned selects the UNALIGNED variant.
func Unaligned() Option {
	return func(d *Decoder) {
		d.aligned = false
	}
}

// CollectIssues makes the decoder append its issues to dst.
func CollectIssues(dst *[]Issue) Option {
	return func(d *Decoder) {
		d.issues = dst
	}
}

// Marshal returns the complete APER encoding of v.
func Marshal(v Value) ([]byte, error) {
	return MarshalWith(NewEncoder(true), v)
}

// MarshalWith encodes v as a complete encoding with e.
func MarshalWith(e *Encoder, v Value) ([]byte, error) {
	if err := v.Encode(e); err != nil {
		return nil, err
	}
	return complete(e.Bytes()), nil
}

// Unmarshal decodes the complete APER encoding data into v.
func Unmarshal(data []byte, v Value, options ...Option) error {
	return decodeComplete(NewDecoder(data, true, options...), data, v)
}

// DecodeComplete decodes v from the complete encoding data with a decoder
// sharing d's settings.
func (d *Decoder) DecodeComplete(data []byte, v Value) error {
	return decodeComplete(d.Sub(data), data, v)
}
