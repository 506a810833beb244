// Package bitbuffer provides the bit cursor used by the PER codecs.
//
// # Overview
//
// A Cursor owns (writer) or borrows (reader) a byte buffer together with a bit
// offset. Bits are written and read MSB-first, which is the ordering mandated
// by ITU-T X.691. All higher level codecs in this module go through a Cursor.
//
// # Invariants
//
//   - offset <= capacity at all times.
//   - Every operation either advances the offset by exactly the number of bits
//     it produced/consumed, or fails with ErrBufferExhausted leaving the cursor
//     untouched.
//
// # Thread Safety
//
// Cursor is NOT thread-safe. Each goroutine encoding or decoding a message
// must use its own Cursor.
package bitbuffer

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// ENABLE_TRACE controls whether every primitive operation is logged
	ENABLE_TRACE = false

	// BITS_PER_BYTE is the number of bits in a byte
	BITS_PER_BYTE = 8

	// TMP_ARRAY_SIZE is the size of temporary arrays used for binary operations
	TMP_ARRAY_SIZE = 8
)

var (
	// ErrBufferExhausted is returned when a read runs past the end of the
	// input or a write would exceed the capacity of a bounded writer.
	ErrBufferExhausted = errors.New("buffer exhausted")

	// ErrBitCount is returned for bit counts outside 0..64.
	ErrBitCount = errors.New("bit count must be between 0 and 64")
)

// InitialBufferSize is the initial capacity for the buffer in CreateWriter.
var InitialBufferSize = 64

// Cursor is a bit position over a byte buffer.
//
//	buff:     encoded octets; the last octet may be partially used
//	offset:   bit position from the start of buff
//	capacity: maximum number of bits; 0 means the writer grows on demand
//	writer:   true for encoding cursors
type Cursor struct {
	buff     []byte
	offset   uint64
	capacity uint64
	writer   bool
}

// Trace logs the cursor state when ENABLE_TRACE is set.
func (c *Cursor) Trace(event, function, arguments string) {
	if !ENABLE_TRACE {
		return
	}
	logrus.WithFields(logrus.Fields{
		"event":    event,
		"function": function,
		"len":      len(c.buff),
		"offset":   c.offset,
		"args":     arguments,
	}).Trace("bitbuffer")
}

// CreateWriter creates a growable Cursor for writing.
func CreateWriter() *Cursor {
	return &Cursor{
		buff:   make([]byte, 0, InitialBufferSize),
		writer: true,
	}
}

// CreateBoundedWriter creates a writer that refuses to grow past size octets.
func CreateBoundedWriter(size int) *Cursor {
	return &Cursor{
		buff:     make([]byte, 0, size),
		capacity: uint64(size) * BITS_PER_BYTE,
		writer:   true,
	}
}

// CreateReader creates a Cursor reading data from its first bit. The slice is
// borrowed, not copied.
func CreateReader(data []byte) *Cursor {
	return &Cursor{
		buff:     data,
		capacity: uint64(len(data)) * BITS_PER_BYTE,
	}
}

// Len returns the number of octets touched so far (writer) or the size of
// the input (reader).
func (c *Cursor) Len() int {
	return len(c.buff)
}

// Cap returns the capacity in bits, 0 for growable writers.
func (c *Cursor) Cap() uint64 {
	return c.capacity
}

// Offset returns the current bit position.
func (c *Cursor) Offset() uint64 {
	return c.offset
}

// NumWritten returns the total number of bits written, padding included.
func (c *Cursor) NumWritten() uint64 {
	if !c.writer {
		return 0
	}
	return c.offset
}

// NumRead returns the total number of bits consumed, padding included.
func (c *Cursor) NumRead() uint64 {
	if c.writer {
		return 0
	}
	return c.offset
}

// Remaining returns the number of unread bits of a reader.
func (c *Cursor) Remaining() uint64 {
	if c.writer {
		return 0
	}
	return c.capacity - c.offset
}

// Aligned reports whether the cursor sits on an octet boundary.
func (c *Cursor) Aligned() bool {
	return c.offset%BITS_PER_BYTE == 0
}

// Bytes returns the encoded octets. Unused trailing bits of the last octet are
// zero.
func (c *Cursor) Bytes() []byte {
	if c.offset == 0 {
		return nil
	}
	return c.buff[:octets(c.offset)]
}

// String implements fmt.Stringer.
func (c *Cursor) String() string {
	return fmt.Sprintf("Cursor{len: %d, offset: %d, capacity: %d, writer: %v}",
		len(c.buff), c.offset, c.capacity, c.writer)
}

func octets(bits uint64) int {
	return int((bits + BITS_PER_BYTE - 1) / BITS_PER_BYTE)
}

// reserve checks room for n more bits and extends the buffer with zeroed
// octets to cover them.
func (c *Cursor) reserve(n uint64) error {
	if c.capacity > 0 && c.offset+n > c.capacity {
		return ErrBufferExhausted
	}
	if need := octets(c.offset + n); need > len(c.buff) {
		c.buff = append(c.buff, make([]byte, need-len(c.buff))...)
	}
	return nil
}

// Write writes the least significant num bits of value (0 <= num <= 64),
// most significant bit first.
func (c *Cursor) Write(num uint8, value uint64) error {
	if ENABLE_TRACE {
		c.Trace("ENTER", "Write", fmt.Sprintf("bits=%d value=%d", num, value))
		defer c.Trace("EXIT", "Write", "")
	}
	if !c.writer {
		return errors.New("write on a reader")
	}
	if num > 64 {
		return ErrBitCount
	}
	if num == 0 {
		return nil
	}
	if num < 64 {
		value = value & ((1 << num) - 1)
	}
	if err := c.reserve(uint64(num)); err != nil {
		return err
	}

	// Fast path: whole octets starting on a boundary.
	if c.Aligned() && num%BITS_PER_BYTE == 0 {
		tmp := [TMP_ARRAY_SIZE]byte{}
		binary.BigEndian.PutUint64(tmp[:], value<<(64-uint(num)))
		pos := int(c.offset / BITS_PER_BYTE)
		copy(c.buff[pos:], tmp[:num/BITS_PER_BYTE])
		c.offset += uint64(num)
		return nil
	}

	pending := num
	for pending > 0 {
		var (
			pos       = int(c.offset / BITS_PER_BYTE)
			used      = uint8(c.offset % BITS_PER_BYTE)
			available = BITS_PER_BYTE - used
			nbits     = min(pending, available)
			remaining = pending - nbits
			chunk     = uint8(value>>remaining) & uint8((1<<nbits)-1)
			shift     = available - nbits
		)
		c.buff[pos] |= chunk << shift
		c.offset += uint64(nbits)
		pending = remaining
	}
	return nil
}

// Read reads the next num bits (0 <= num <= 64) as an unsigned value.
func (c *Cursor) Read(num uint8) (uint64, error) {
	if ENABLE_TRACE {
		c.Trace("ENTER", "Read", fmt.Sprintf("num=%d", num))
		defer c.Trace("EXIT", "Read", "")
	}
	if num > 64 {
		return 0, ErrBitCount
	}
	if num == 0 {
		return 0, nil
	}
	if c.offset+uint64(num) > c.capacity {
		return 0, ErrBufferExhausted
	}

	// Fast path: whole octets starting on a boundary.
	if c.Aligned() && num%BITS_PER_BYTE == 0 {
		var (
			tmp    = [TMP_ARRAY_SIZE]byte{}
			pos    = int(c.offset / BITS_PER_BYTE)
			nbytes = int(num / BITS_PER_BYTE)
		)
		copy(tmp[:nbytes], c.buff[pos:pos+nbytes])
		c.offset += uint64(num)
		return binary.BigEndian.Uint64(tmp[:]) >> (64 - uint(num)), nil
	}

	var (
		result  uint64
		pending = num
	)
	for pending > 0 {
		var (
			pos       = int(c.offset / BITS_PER_BYTE)
			used      = uint8(c.offset % BITS_PER_BYTE)
			remaining = BITS_PER_BYTE - used
			reading   = min(pending, remaining)
			shift     = remaining - reading
			bits      = uint64(c.buff[pos]>>shift) & ((1 << reading) - 1)
		)
		result = (result << reading) | bits
		c.offset += uint64(reading)
		pending -= reading
	}
	return result, nil
}

// WriteBytes writes full octets from the current bit position. It does not
// align; callers align first where X.691 requires octet alignment.
func (c *Cursor) WriteBytes(data []byte) error {
	if ENABLE_TRACE {
		c.Trace("ENTER", "WriteBytes", fmt.Sprintf("len(data)=%d", len(data)))
		defer c.Trace("EXIT", "WriteBytes", "")
	}
	if len(data) == 0 {
		return nil
	}
	if !c.writer {
		return errors.New("write on a reader")
	}
	if c.Aligned() {
		if err := c.reserve(uint64(len(data)) * BITS_PER_BYTE); err != nil {
			return err
		}
		copy(c.buff[c.offset/BITS_PER_BYTE:], data)
		c.offset += uint64(len(data)) * BITS_PER_BYTE
		return nil
	}
	if c.capacity > 0 && c.offset+uint64(len(data))*BITS_PER_BYTE > c.capacity {
		return ErrBufferExhausted
	}
	for _, b := range data {
		if err := c.Write(8, uint64(b)); err != nil {
			return err
		}
	}
	return nil
}

// ReadBytes reads n full octets from the current bit position. The returned
// slice is a copy.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if ENABLE_TRACE {
		c.Trace("ENTER", "ReadBytes", fmt.Sprintf("n=%d", n))
		defer c.Trace("EXIT", "ReadBytes", "")
	}
	if n < 0 {
		return nil, errors.New("negative byte count")
	}
	if n == 0 {
		return []byte{}, nil
	}
	if c.offset+uint64(n)*BITS_PER_BYTE > c.capacity {
		return nil, ErrBufferExhausted
	}
	result := make([]byte, n)
	if c.Aligned() {
		pos := int(c.offset / BITS_PER_BYTE)
		copy(result, c.buff[pos:pos+n])
		c.offset += uint64(n) * BITS_PER_BYTE
		return result, nil
	}
	for i := range result {
		value, err := c.Read(8)
		if err != nil {
			return nil, err
		}
		result[i] = uint8(value)
	}
	return result, nil
}

// Skip moves a reader forward by n bits.
func (c *Cursor) Skip(n uint64) error {
	if c.offset+n > c.capacity {
		return ErrBufferExhausted
	}
	c.offset += n
	return nil
}

// Align pads a writer with zero bits up to the next octet boundary.
func (c *Cursor) Align() error {
	if ENABLE_TRACE {
		c.Trace("ENTER", "Align", "")
		defer c.Trace("EXIT", "Align", "")
	}
	pad := (BITS_PER_BYTE - c.offset%BITS_PER_BYTE) % BITS_PER_BYTE
	if pad == 0 {
		return nil
	}
	if err := c.reserve(pad); err != nil {
		return err
	}
	c.offset += pad
	return nil
}

// Advance skips a reader to the next octet boundary. It cannot fail on a
// well-formed cursor since the input always ends on an octet boundary.
func (c *Cursor) Advance() error {
	if ENABLE_TRACE {
		c.Trace("ENTER", "Advance", "")
		defer c.Trace("EXIT", "Advance", "")
	}
	pad := (BITS_PER_BYTE - c.offset%BITS_PER_BYTE) % BITS_PER_BYTE
	return c.Skip(pad)
}
