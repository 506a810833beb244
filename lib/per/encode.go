package per

import (
	"encoding/asn1"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/thebagchi/xnap-go/lib/bitbuffer"
)

// Encoder represents a PER encoder for bit-level encoding
type Encoder struct {
	codec   *bitbuffer.Cursor
	aligned bool
	logger  *logrus.Entry
}

// NewEncoder creates a new PER encoder
// aligned: true for APER (Aligned PER), false for UPER (Unaligned PER)
func NewEncoder(aligned bool) *Encoder {
	return &Encoder{
		codec:   bitbuffer.CreateWriter(),
		aligned: aligned,
	}
}

// NewBoundedEncoder creates an encoder whose output may not exceed size octets.
func NewBoundedEncoder(aligned bool, size int) *Encoder {
	return &Encoder{
		codec:   bitbuffer.CreateBoundedWriter(size),
		aligned: aligned,
	}
}

// WithLogger attaches a logger used by value encoders.
func (e *Encoder) WithLogger(logger *logrus.Entry) *Encoder {
	e.logger = logger
	return e
}

// Logger returns the attached logger or the standard one.
func (e *Encoder) Logger() *logrus.Entry {
	if e.logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return e.logger
}

// Aligned reports whether this is an APER encoder.
func (e *Encoder) Aligned() bool {
	return e.aligned
}

// Bytes returns the encoded bytes; a trailing partial octet is zero padded.
func (e *Encoder) Bytes() []byte {
	return e.codec.Bytes()
}

// NumWritten returns the number of bits written so far.
func (e *Encoder) NumWritten() uint64 {
	return e.codec.NumWritten()
}

// sub returns an empty encoder sharing this encoder's settings, used for the
// contents of open types.
func (e *Encoder) sub() *Encoder {
	return &Encoder{
		codec:   bitbuffer.CreateWriter(),
		aligned: e.aligned,
		logger:  e.logger,
	}
}

func (e *Encoder) align() error {
	if !e.aligned {
		return nil
	}
	return e.codec.Align()
}

// WriteBit appends a single bit.
func (e *Encoder) WriteBit(set bool) error {
	if set {
		return e.codec.Write(1, 1)
	}
	return e.codec.Write(1, 0)
}

// 11.3 Encoding as a non-negative-binary-integer
// |- 11.3.6 A minimum octet non-negative-binary-integer encoding of the whole
// |  |  number has a field which is a multiple of eight bits and also satisfies
// |  |  the condition that the leading eight bits of the field shall not all be
// |  |  zero unless the field is precisely eight bits long.

func BitsNonNegativeBinaryInteger(value uint64) int {
	if value == 0 {
		return 1
	}
	return bits.Len64(value)
}

func OctetsNonNegativeBinaryIntegerLength(value uint64) int {
	bits := BitsNonNegativeBinaryInteger(value)
	return (bits + 7) >> 3
}

// 11.4 Encoding as a 2's-complement-binary-integer
// |- 11.4.6 A minimum octet 2's-complement-binary-integer encoding of the whole
// |  |  number has a field-width that is a multiple of eight bits and also
// |  |  satisfies the condition that the leading nine bits of the field shall not
// |  |  all be zero and shall not all be ones.

func BitsTwosComplementBinaryInteger(value int64) int {
	if value == 0 {
		return 1
	}
	if value > 0 {
		return bits.Len64(uint64(value)) + 1
	}
	return bits.Len64(uint64(^value)) + 1
}

func OctetsTwosComplementBinaryInteger(value int64) int {
	bits := BitsTwosComplementBinaryInteger(value)
	return (bits + 7) >> 3
}

// BitsConstrainedWholeNumber returns the width of the bit-field case of
// 11.5.7.1 (and of every UNALIGNED constrained whole number).
func BitsConstrainedWholeNumber(vr uint64) uint8 {
	if vr <= 1 {
		return 0
	}
	return uint8(bits.Len64(vr - 1))
}

// 11.5 Encoding of a constrained whole number
// |- 11.5.4 If "range" has the value 1, then the result of the encoding shall
// |  |  be an empty bit-field (no bits).
// |- 11.5.6 UNALIGNED: ("n" - "lb") in the minimum number of bits necessary to
// |  |  represent the range.
// |- 11.5.7 ALIGNED:
// |  |  a) "range" <= 255: minimum bit-field, not aligned;
// |  |  b) "range" == 256: one octet, octet-aligned;
// |  |  c) 256 < "range" <= 64K: two octets, octet-aligned;
// |  |  d) "range" > 64K: minimum octets, octet-aligned, preceded by a length
// |  |     determinant (13.2.6 a: constrained 1..octets needed for the range).

func (e *Encoder) EncodeConstrainedWholeNumber(lb, ub, n int64) error {
	if n < lb || n > ub {
		return errors.Wrapf(ErrValueOutOfRange, "%d not in %d..%d", n, lb, ub)
	}
	var (
		vr    = uint64(ub-lb) + 1
		value = uint64(n - lb)
	)
	if vr == 1 {
		return nil
	}

	if !e.aligned {
		return e.codec.Write(BitsConstrainedWholeNumber(vr), value)
	}

	switch {
	case vr <= 0xFF:
		return e.codec.Write(BitsConstrainedWholeNumber(vr), value)
	case vr == 0x100:
		if err := e.codec.Align(); err != nil {
			return err
		}
		return e.codec.Write(8, value)
	case vr <= 0x10000:
		if err := e.codec.Align(); err != nil {
			return err
		}
		return e.codec.Write(16, value)
	}

	var (
		octets = OctetsNonNegativeBinaryIntegerLength(value)
		lbLen  = uint64(1)
		ubLen  = uint64(OctetsNonNegativeBinaryIntegerLength(uint64(ub - lb)))
	)
	if err := e.EncodeConstrainedWholeNumber(int64(lbLen), int64(ubLen), int64(octets)); err != nil {
		return err
	}
	if err := e.codec.Align(); err != nil {
		return err
	}
	return e.codec.Write(uint8(octets*8), value)
}

// 11.6 Encoding of a normally small non-negative whole number
// |- 11.6.1 If "n" <= 63: a single bit set to 0 followed by "n" in a 6-bit
// |  |  bit-field.
// |- 11.6.2 Otherwise a single bit set to 1 followed by "n" as a
// |  |  semi-constrained whole number with "lb" equal to 0, preceded by a length
// |  |  determinant.

func (e *Encoder) EncodeNormallySmallNonNegativeWholeNumber(n uint64) error {
	if n <= MAX_NORMALLY_SMALL {
		if err := e.codec.Write(1, 0); err != nil {
			return err
		}
		return e.codec.Write(6, n)
	}
	if err := e.codec.Write(1, 1); err != nil {
		return err
	}
	return e.encodeSemiConstrained(n)
}

// 11.7 Encoding of a semi-constrained whole number
// |- 11.7.4 ("n" - "lb") as a minimum octet non-negative-binary-integer,
// |  |  octet-aligned in the ALIGNED variant, preceded by an unconstrained
// |  |  length determinant.

func (e *Encoder) EncodeSemiConstrainedWholeNumber(lb, n int64) error {
	if n < lb {
		return errors.Wrapf(ErrValueOutOfRange, "%d below lower bound %d", n, lb)
	}
	return e.encodeSemiConstrained(uint64(n - lb))
}

func (e *Encoder) encodeSemiConstrained(value uint64) error {
	octets := OctetsNonNegativeBinaryIntegerLength(value)
	if _, _, err := e.EncodeUnconstrainedLength(uint64(octets)); err != nil {
		return err
	}
	return e.codec.Write(uint8(octets*8), value)
}

// 11.8 Encoding of an unconstrained whole number
// |- 11.8.3 "n" as a minimum octet 2's-complement-binary-integer, octet-aligned
// |  |  in the ALIGNED variant, preceded by an unconstrained length determinant.

func (e *Encoder) EncodeUnconstrainedWholeNumber(n int64) error {
	octets := OctetsTwosComplementBinaryInteger(n)
	if _, _, err := e.EncodeUnconstrainedLength(uint64(octets)); err != nil {
		return err
	}
	return e.codec.Write(uint8(octets*8), uint64(n))
}

// 11.9 General rules for encoding a length determinant
// |- 11.9.3.3 / 11.9.4.1 If "ub" is less than 64K the length is encoded as a
// |  |  constrained whole number ("lb".."ub").
// |- 11.9.3.5-8 Otherwise the length is octet-aligned (ALIGNED variant) and:
// |  |  a) n < 128: one octet, bit 8 zero;
// |  |  b) n < 16K: two octets, bits "10" leading;
// |  |  c) otherwise one octet "11" followed by m (1..4), announcing a fragment
// |  |     of m*16K items; another length determinant follows the fragment.
//
// EncodeLengthDeterminant returns the number of items covered by the written
// determinant and whether another determinant must follow them. Callers
// writing fragments check lb on the first determinant only.

func (e *Encoder) EncodeLengthDeterminant(n uint64, lb *uint64, ub *uint64) (uint64, bool, error) {
	low := uint64(0)
	if lb != nil {
		low = *lb
	}
	if n < low || (ub != nil && n > *ub) {
		return 0, false, errors.Wrapf(ErrLengthOutOfRange, "length %d outside %s", n, sizeString(lb, ub))
	}
	if ub != nil && *ub < MAX_CONSTRAINED_LENGTH {
		if err := e.EncodeConstrainedWholeNumber(int64(low), int64(*ub), int64(n)); err != nil {
			return 0, false, err
		}
		return n, false, nil
	}
	return e.EncodeUnconstrainedLength(n)
}

func (e *Encoder) EncodeUnconstrainedLength(n uint64) (uint64, bool, error) {
	if err := e.align(); err != nil {
		return 0, false, err
	}

	if n <= 127 {
		return n, false, e.codec.Write(8, n)
	}

	if n < FRAGMENT_SIZE {
		return n, false, e.codec.Write(16, (1<<15)|n)
	}

	m := CalculateFragmentSize(n)
	if err := e.codec.Write(8, (3<<6)|(m/FRAGMENT_SIZE)); err != nil {
		return 0, false, err
	}
	return m, true, nil
}

// 11.9.3.4 Normally small length: "n" <= 64 as a zero bit and ("n"-1) in six
// bits, otherwise a one bit and an unconstrained length.

func (e *Encoder) EncodeNormallySmallLength(n uint64) (uint64, bool, error) {
	if n == 0 {
		return 0, false, errors.Wrap(ErrLengthOutOfRange, "normally small length of zero")
	}
	if n <= 64 {
		if err := e.codec.Write(1, 0); err != nil {
			return 0, false, err
		}
		return n, false, e.codec.Write(6, n-1)
	}
	if err := e.codec.Write(1, 1); err != nil {
		return 0, false, err
	}
	return e.EncodeUnconstrainedLength(n)
}

func CalculateFragmentSize(n uint64) uint64 {
	switch {
	case n >= 4*FRAGMENT_SIZE:
		return 4 * FRAGMENT_SIZE
	case n >= 3*FRAGMENT_SIZE:
		return 3 * FRAGMENT_SIZE
	case n >= 2*FRAGMENT_SIZE:
		return 2 * FRAGMENT_SIZE
	default:
		return FRAGMENT_SIZE
	}
}

// 12 Encoding the boolean type: a single bit, 1 for TRUE.

func (e *Encoder) EncodeBoolean(value bool) error {
	return e.WriteBit(value)
}

// 13 Encoding the integer type
// |- 13.1 With an extension marker a single bit tells whether the value lies
// |  |  outside the extension root; such values are encoded as unconstrained.
// |- 13.2.1 Single value: no bits.
// |- 13.2.2 Constrained: 11.5. 13.2.3 Semi-constrained: 11.7.
// |- 13.2.4 Unconstrained: 11.8.

func (e *Encoder) EncodeInteger(value int64, lb *int64, ub *int64, extensible bool) error {
	outside := (lb != nil && value < *lb) || (ub != nil && value > *ub)
	if extensible {
		if err := e.WriteBit(outside); err != nil {
			return err
		}
		if outside {
			return e.EncodeUnconstrainedWholeNumber(value)
		}
	}
	if outside {
		return errors.Wrapf(ErrValueOutOfRange, "integer %d outside %s", value, rangeString(lb, ub))
	}

	switch {
	case lb != nil && ub != nil:
		return e.EncodeConstrainedWholeNumber(*lb, *ub, value)
	case lb != nil:
		return e.EncodeSemiConstrainedWholeNumber(*lb, value)
	default:
		return e.EncodeUnconstrainedWholeNumber(value)
	}
}

// 14 Encoding the enumerated type
// |- 14.2 Without an extension marker the index is a constrained whole number
// |  |  0..count-1.
// |- 14.3 With an extension marker a single bit tells whether the value is an
// |  |  extension addition; additions are encoded as a normally small
// |  |  non-negative whole number counted from the first addition.

func (e *Encoder) EncodeEnumerated(value uint64, count uint64, extensible bool) error {
	if extensible {
		if value >= count {
			if err := e.codec.Write(1, 1); err != nil {
				return err
			}
			return e.EncodeNormallySmallNonNegativeWholeNumber(value - count)
		}
		if err := e.codec.Write(1, 0); err != nil {
			return err
		}
	}
	if value >= count {
		return errors.Wrapf(ErrValueOutOfRange, "enumerated index %d of %d", value, count)
	}
	return e.EncodeConstrainedWholeNumber(0, int64(count-1), int64(value))
}

// WriteBits writes the first count bits of data.
func (e *Encoder) WriteBits(data []byte, count uint64) error {
	if count == 0 {
		return nil
	}
	if uint64(len(data))*8 < count {
		return errors.Wrapf(ErrMalformed, "%d bits requested from %d octets", count, len(data))
	}

	num := count / 8
	if num > 0 {
		if err := e.codec.WriteBytes(data[:num]); err != nil {
			return err
		}
	}

	remaining := count % 8
	if remaining > 0 {
		value := uint64(data[num] >> (8 - remaining))
		return e.codec.Write(uint8(remaining), value)
	}
	return nil
}

// 16 Encoding the bitstring type
// |- 16.6 Extensible: one bit, set when the length is outside the root; the
// |  |  length is then semi-constrained (16.11).
// |- 16.8 "ub" == 0: no encoding.
// |- 16.9 Fixed length <= 16 bits: bit-field, no length, not aligned.
// |- 16.10 Fixed length <= 64K: octet-aligned bit-field, no length.
// |- 16.11 Otherwise a length determinant then the octet-aligned bits.

func (e *Encoder) EncodeBitString(value *asn1.BitString, lb *uint64,
	ub *uint64, extensible bool) error {
	if value == nil {
		value = &asn1.BitString{}
	}
	n := uint64(value.BitLength)
	outside := (lb != nil && n < *lb) || (ub != nil && n > *ub)

	if extensible {
		if err := e.WriteBit(outside); err != nil {
			return err
		}
		if outside {
			return e.EncodeBitStringFragments(value.Bytes, n, nil, nil)
		}
	}
	if outside {
		return errors.Wrapf(ErrLengthOutOfRange, "bit string of %d bits outside %s", n, sizeString(lb, ub))
	}

	if ub != nil && *ub == 0 {
		return nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub <= 16 {
		return e.WriteBits(value.Bytes, n)
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		if err := e.align(); err != nil {
			return err
		}
		return e.WriteBits(value.Bytes, n)
	}

	return e.EncodeBitStringFragments(value.Bytes, n, lb, ub)
}

// EncodeBitStringFragments writes count bits preceded by length determinants,
// fragmenting unconstrained lengths per 11.9.3.8.
func (e *Encoder) EncodeBitStringFragments(value []byte, count uint64,
	lb *uint64, ub *uint64) error {
	if uint64(len(value))*8 < count {
		return errors.Wrapf(ErrMalformed, "bit string of %d bits in %d octets", count, len(value))
	}
	offset := uint64(0)
	for {
		length, more, err := e.EncodeLengthDeterminant(count-offset, lb, ub)
		if err != nil {
			return err
		}
		if length > 0 {
			if err := e.align(); err != nil {
				return err
			}
			if err := e.writeBitsAt(value, offset, length); err != nil {
				return err
			}
		}
		offset += length
		if !more {
			return nil
		}
		// lb bounds the total, not what is left after a fragment.
		lb = nil
	}
}

// writeBitsAt writes count bits of data starting at bit offset. Fragments are
// multiples of 16K bits so offset is always octet aligned.
func (e *Encoder) writeBitsAt(data []byte, offset, count uint64) error {
	return e.WriteBits(data[offset/8:], count)
}

// 17 Encoding the octetstring type
// |- 17.3 Extensible: one bit, set when the length is outside the root; the
// |  |  length is then semi-constrained (17.8).
// |- 17.5 "ub" == 0: no encoding.
// |- 17.6 Fixed length <= 2 octets: bit-field, no length, not aligned.
// |- 17.7 Fixed length < 64K: octet-aligned, no length.
// |- 17.8 Otherwise a length determinant then the octet-aligned octets.

func (e *Encoder) EncodeOctetString(value []byte, lb *uint64, ub *uint64, extensible bool) error {
	n := uint64(len(value))
	outside := (lb != nil && n < *lb) || (ub != nil && n > *ub)

	if extensible {
		if err := e.WriteBit(outside); err != nil {
			return err
		}
		if outside {
			return e.EncodeOctetStringFragments(value, nil, nil)
		}
	}
	if outside {
		return errors.Wrapf(ErrLengthOutOfRange, "octet string of %d octets outside %s", n, sizeString(lb, ub))
	}

	if ub != nil && *ub == 0 {
		return nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub <= 2 {
		return e.codec.WriteBytes(value)
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		if err := e.align(); err != nil {
			return err
		}
		return e.codec.WriteBytes(value)
	}

	return e.EncodeOctetStringFragments(value, lb, ub)
}

// EncodeOctetStringFragments writes value preceded by length determinants,
// fragmenting unconstrained lengths per 11.9.3.8.
func (e *Encoder) EncodeOctetStringFragments(value []byte, lb *uint64, ub *uint64) error {
	var (
		n      = uint64(len(value))
		offset = uint64(0)
	)
	for {
		length, more, err := e.EncodeLengthDeterminant(n-offset, lb, ub)
		if err != nil {
			return err
		}
		if length > 0 {
			if err := e.align(); err != nil {
				return err
			}
			if err := e.codec.WriteBytes(value[offset : offset+length]); err != nil {
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

// 18 Encoding the null type: no bits.

func (e *Encoder) EncodeNull() error {
	return nil
}

// EncodeString encodes restricted character strings for which PER uses one
// octet per character (VisibleString, IA5String and PrintableString without
// a PER-visible permitted alphabet constraint).
func (e *Encoder) EncodeString(value string, lb *uint64, ub *uint64, extensible bool) error {
	return e.EncodeOctetString([]byte(value), lb, ub, extensible)
}

func sizeString(lb, ub *uint64) string {
	low := uint64(0)
	if lb != nil {
		low = *lb
	}
	if ub == nil {
		return fmt.Sprintf("SIZE(%d..MAX)", low)
	}
	return fmt.Sprintf("SIZE(%d..%d)", low, *ub)
}

func rangeString(lb, ub *int64) string {
	low, high := "MIN", "MAX"
	if lb != nil {
		low = strconv.FormatInt(*lb, 10)
	}
	if ub != nil {
		high = strconv.FormatInt(*ub, 10)
	}
	return "(" + low + ".." + high + ")"
}
