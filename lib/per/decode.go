package per

import (
	"encoding/asn1"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/thebagchi/xnap-go/lib/bitbuffer"
)

// Issue is a non fatal finding recorded while decoding, such as an IE that
// was not understood or a mandatory IE that was missing.
type Issue struct {
	ID          uint32
	Criticality uint8
	TypeOfError uint8
	Container   string
}

// Decoder represents a PER decoder
type Decoder struct {
	codec   *bitbuffer.Cursor
	aligned bool
	logger  *logrus.Entry
	issues  *[]Issue
	limit   uint64
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger attaches a logger to the decoder.
func WithLogger(logger *logrus.Entry) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithLimit bounds the number of entries accepted in a single container.
func WithLimit(limit uint64) Option {
	return func(d *Decoder) {
		d.limit = limit
	}
}

// NewDecoder creates a new PER decoder from encoded data
// aligned: true for APER, false for UPER
func NewDecoder(data []byte, aligned bool, options ...Option) *Decoder {
	d := &Decoder{
		codec:   bitbuffer.CreateReader(data),
		aligned: aligned,
		issues:  &[]Issue{},
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Sub returns a decoder over data sharing this decoder's settings and issue
// list. Open type contents are decoded through it.
func (d *Decoder) Sub(data []byte) *Decoder {
	return &Decoder{
		codec:   bitbuffer.CreateReader(data),
		aligned: d.aligned,
		logger:  d.logger,
		issues:  d.issues,
		limit:   d.limit,
	}
}

// Logger returns the attached logger or the standard one.
func (d *Decoder) Logger() *logrus.Entry {
	if d.logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return d.logger
}

// Aligned reports whether this is an APER decoder.
func (d *Decoder) Aligned() bool {
	return d.aligned
}

// Limit returns the container entry limit, 0 when unlimited.
func (d *Decoder) Limit() uint64 {
	return d.limit
}

// Report records a non fatal issue.
func (d *Decoder) Report(issue Issue) {
	*d.issues = append(*d.issues, issue)
}

// Issues returns the issues recorded so far by this decoder and every
// decoder derived from it.
func (d *Decoder) Issues() []Issue {
	return *d.issues
}

// NumRead returns the number of bits consumed.
func (d *Decoder) NumRead() uint64 {
	return d.codec.NumRead()
}

// Remaining returns the number of unread bits.
func (d *Decoder) Remaining() uint64 {
	return d.codec.Remaining()
}

func (d *Decoder) align() error {
	if !d.aligned {
		return nil
	}
	return d.codec.Advance()
}

// ReadBit reads a single bit.
func (d *Decoder) ReadBit() (bool, error) {
	value, err := d.codec.Read(1)
	if err != nil {
		return false, err
	}
	return value == 1, nil
}

// DecodeConstrainedWholeNumber decodes a constrained whole number
// with lower bound lb and upper bound ub.
// Returns the decoded value n, or an error if decoding fails.
func (d *Decoder) DecodeConstrainedWholeNumber(lb, ub int64) (int64, error) {
	if ub < lb {
		return 0, errors.Wrapf(ErrValueOutOfRange, "empty range %d..%d", lb, ub)
	}
	vr := uint64(ub-lb) + 1

	// 11.5.4: range 1, no bits
	if vr == 1 {
		return lb, nil
	}

	var (
		value uint64
		err   error
	)
	switch {
	case !d.aligned, vr <= 0xFF:
		value, err = d.codec.Read(BitsConstrainedWholeNumber(vr))
	case vr == 0x100:
		if err = d.codec.Advance(); err == nil {
			value, err = d.codec.Read(8)
		}
	case vr <= 0x10000:
		if err = d.codec.Advance(); err == nil {
			value, err = d.codec.Read(16)
		}
	default:
		// 11.5.7.4: indefinite length case
		var octets int64
		ubLen := int64(OctetsNonNegativeBinaryIntegerLength(uint64(ub - lb)))
		octets, err = d.DecodeConstrainedWholeNumber(1, ubLen)
		if err != nil {
			return 0, err
		}
		if err = d.codec.Advance(); err == nil {
			value, err = d.codec.Read(uint8(octets * 8))
		}
	}
	if err != nil {
		return 0, err
	}
	if value > uint64(ub-lb) {
		return 0, errors.Wrapf(ErrValueOutOfRange, "decoded %d exceeds %d..%d", lb+int64(value), lb, ub)
	}
	return lb + int64(value), nil
}

// DecodeNormallySmallNonNegativeWholeNumber decodes 11.6.
func (d *Decoder) DecodeNormallySmallNonNegativeWholeNumber() (uint64, error) {
	large, err := d.ReadBit()
	if err != nil {
		return 0, err
	}
	if !large {
		return d.codec.Read(6)
	}
	value, err := d.DecodeSemiConstrainedWholeNumber(0)
	if err != nil {
		return 0, err
	}
	return uint64(value), nil
}

// DecodeSemiConstrainedWholeNumber decodes 11.7.
func (d *Decoder) DecodeSemiConstrainedWholeNumber(lb int64) (int64, error) {
	octets, err := d.decodeIntegerLength()
	if err != nil {
		return 0, err
	}
	value, err := d.codec.Read(uint8(octets * 8))
	if err != nil {
		return 0, err
	}
	if value > uint64(1<<63-1)-uint64(max(lb, 0)) {
		return 0, errors.Wrapf(ErrValueOutOfRange, "semi-constrained value %d overflows", value)
	}
	return lb + int64(value), nil
}

// DecodeUnconstrainedWholeNumber decodes 11.8.
func (d *Decoder) DecodeUnconstrainedWholeNumber() (int64, error) {
	octets, err := d.decodeIntegerLength()
	if err != nil {
		return 0, err
	}
	value, err := d.codec.Read(uint8(octets * 8))
	if err != nil {
		return 0, err
	}
	// sign extend
	shift := 64 - octets*8
	return int64(value<<shift) >> shift, nil
}

func (d *Decoder) decodeIntegerLength() (uint64, error) {
	octets, more, err := d.DecodeUnconstrainedLength()
	if err != nil {
		return 0, err
	}
	if more || octets == 0 {
		return 0, errors.Wrapf(ErrMalformed, "integer of %d octets", octets)
	}
	if octets > 8 {
		return 0, errors.Wrapf(ErrValueOutOfRange, "integer of %d octets", octets)
	}
	return octets, nil
}

// DecodeLengthDeterminant decodes a length determinant. It returns the number
// of items that follow and whether another determinant comes after them.
// Bounds of fragmented lengths are checked by the caller on the total.
func (d *Decoder) DecodeLengthDeterminant(lb, ub *uint64) (uint64, bool, error) {
	low := uint64(0)
	if lb != nil {
		low = *lb
	}
	if ub != nil && *ub < MAX_CONSTRAINED_LENGTH {
		n, err := d.DecodeConstrainedWholeNumber(int64(low), int64(*ub))
		if err != nil {
			return 0, false, lengthError(err)
		}
		return uint64(n), false, nil
	}
	n, more, err := d.DecodeUnconstrainedLength()
	if err != nil {
		return 0, false, err
	}
	return n, more, nil
}

// DecodeUnconstrainedLength decodes the octet-aligned forms of 11.9.3.6-8.
func (d *Decoder) DecodeUnconstrainedLength() (uint64, bool, error) {
	if err := d.align(); err != nil {
		return 0, false, err
	}

	first, err := d.codec.Read(8)
	if err != nil {
		return 0, false, err
	}

	switch {
	case first&0x80 == 0:
		return first, false, nil
	case first&0xC0 == 0x80:
		second, err := d.codec.Read(8)
		if err != nil {
			return 0, false, err
		}
		return ((first & 0x3F) << 8) | second, false, nil
	}

	m := first & 0x3F
	if m < 1 || m > MAX_FRAGMENTS {
		return 0, false, errors.Wrapf(ErrMalformed, "fragment multiplier %d", m)
	}
	return m * FRAGMENT_SIZE, true, nil
}

// DecodeNormallySmallLength decodes 11.9.3.4.
func (d *Decoder) DecodeNormallySmallLength() (uint64, bool, error) {
	large, err := d.ReadBit()
	if err != nil {
		return 0, false, err
	}
	if !large {
		value, err := d.codec.Read(6)
		if err != nil {
			return 0, false, err
		}
		return value + 1, false, nil
	}
	return d.DecodeUnconstrainedLength()
}

// DecodeBoolean decodes 12.
func (d *Decoder) DecodeBoolean() (bool, error) {
	return d.ReadBit()
}

// DecodeInteger decodes 13.
func (d *Decoder) DecodeInteger(lb *int64, ub *int64, extensible bool) (int64, error) {
	if extensible {
		outside, err := d.ReadBit()
		if err != nil {
			return 0, err
		}
		if outside {
			return d.DecodeUnconstrainedWholeNumber()
		}
	}

	var (
		value int64
		err   error
	)
	switch {
	case lb != nil && ub != nil:
		return d.DecodeConstrainedWholeNumber(*lb, *ub)
	case lb != nil:
		value, err = d.DecodeSemiConstrainedWholeNumber(*lb)
	default:
		value, err = d.DecodeUnconstrainedWholeNumber()
	}
	if err != nil {
		return 0, err
	}
	if ub != nil && value > *ub {
		return 0, errors.Wrapf(ErrValueOutOfRange, "integer %d outside %s", value, rangeString(lb, ub))
	}
	return value, nil
}

// DecodeEnumerated decodes 14. Extension additions are returned as count plus
// their addition index, whether or not the caller knows them.
func (d *Decoder) DecodeEnumerated(count uint64, extensible bool) (uint64, error) {
	if extensible {
		addition, err := d.ReadBit()
		if err != nil {
			return 0, err
		}
		if addition {
			value, err := d.DecodeNormallySmallNonNegativeWholeNumber()
			if err != nil {
				return 0, err
			}
			return count + value, nil
		}
	}
	if count == 0 {
		return 0, errors.Wrap(ErrValueOutOfRange, "enumeration without root values")
	}
	value, err := d.DecodeConstrainedWholeNumber(0, int64(count-1))
	if err != nil {
		return 0, err
	}
	return uint64(value), nil
}

// ReadBits reads count bits into ceil(count/8) octets, left aligned.
func (d *Decoder) ReadBits(count uint64) ([]byte, error) {
	if count == 0 {
		return []byte{}, nil
	}
	if count > d.codec.Remaining() {
		return nil, ErrBufferExhausted
	}

	data, err := d.codec.ReadBytes(int(count / 8))
	if err != nil {
		return nil, err
	}

	remaining := count % 8
	if remaining > 0 {
		value, err := d.codec.Read(uint8(remaining))
		if err != nil {
			return nil, err
		}
		data = append(data, byte(value<<(8-remaining)))
	}
	return data, nil
}

// DecodeBitString decodes 16.
func (d *Decoder) DecodeBitString(lb *uint64, ub *uint64, extensible bool) (*asn1.BitString, error) {
	if extensible {
		outside, err := d.ReadBit()
		if err != nil {
			return nil, err
		}
		if outside {
			return d.DecodeBitStringFragments(nil, nil)
		}
	}

	if ub != nil && *ub == 0 {
		return &asn1.BitString{Bytes: []byte{}}, nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		if *ub > 16 {
			if err := d.align(); err != nil {
				return nil, err
			}
		}
		data, err := d.ReadBits(*ub)
		if err != nil {
			return nil, err
		}
		return &asn1.BitString{Bytes: data, BitLength: int(*ub)}, nil
	}

	return d.DecodeBitStringFragments(lb, ub)
}

// DecodeBitStringFragments reads length determinants and their bits until a
// determinant without continuation.
func (d *Decoder) DecodeBitStringFragments(lb *uint64, ub *uint64) (*asn1.BitString, error) {
	var (
		data  []byte
		total uint64
	)
	for {
		length, more, err := d.DecodeLengthDeterminant(lb, ub)
		if err != nil {
			return nil, err
		}
		if length > 0 {
			if err := d.align(); err != nil {
				return nil, err
			}
			chunk, err := d.ReadBits(length)
			if err != nil {
				return nil, err
			}
			data = append(data, chunk...)
		}
		total += length
		if !more {
			break
		}
	}
	if err := checkSize(total, lb, ub); err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return &asn1.BitString{Bytes: data, BitLength: int(total)}, nil
}

// DecodeOctetString decodes 17.
func (d *Decoder) DecodeOctetString(lb *uint64, ub *uint64, extensible bool) ([]byte, error) {
	if extensible {
		outside, err := d.ReadBit()
		if err != nil {
			return nil, err
		}
		if outside {
			return d.DecodeOctetStringFragments(nil, nil)
		}
	}

	if ub != nil && *ub == 0 {
		return []byte{}, nil
	}

	if lb != nil && ub != nil && *lb == *ub && *ub < MAX_CONSTRAINED_LENGTH {
		if *ub > 2 {
			if err := d.align(); err != nil {
				return nil, err
			}
		}
		return d.codec.ReadBytes(int(*ub))
	}

	return d.DecodeOctetStringFragments(lb, ub)
}

// DecodeOctetStringFragments reads length determinants and their octets until
// a determinant without continuation.
func (d *Decoder) DecodeOctetStringFragments(lb *uint64, ub *uint64) ([]byte, error) {
	data := []byte{}
	for {
		length, more, err := d.DecodeLengthDeterminant(lb, ub)
		if err != nil {
			return nil, err
		}
		if length > 0 {
			if err := d.align(); err != nil {
				return nil, err
			}
			chunk, err := d.codec.ReadBytes(int(length))
			if err != nil {
				return nil, err
			}
			data = append(data, chunk...)
		}
		if !more {
			break
		}
	}
	if err := checkSize(uint64(len(data)), lb, ub); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeNull decodes 18.
func (d *Decoder) DecodeNull() error {
	return nil
}

// DecodeString decodes the restricted character strings written by
// Encoder.EncodeString.
func (d *Decoder) DecodeString(lb *uint64, ub *uint64, extensible bool) (string, error) {
	data, err := d.DecodeOctetString(lb, ub, extensible)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func checkSize(n uint64, lb, ub *uint64) error {
	if (lb != nil && n < *lb) || (ub != nil && n > *ub) {
		return errors.Wrapf(ErrLengthOutOfRange, "length %d outside %s", n, sizeString(lb, ub))
	}
	return nil
}

// lengthError turns a range failure of a constrained length into a length
// failure.
func lengthError(err error) error {
	if errors.Is(err, ErrValueOutOfRange) {
		return errors.Wrap(ErrLengthOutOfRange, err.Error())
	}
	return err
}
