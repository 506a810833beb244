package per

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

// sample ::= SEQUENCE {
//	flag  BOOLEAN,
//	count INTEGER (0..255) OPTIONAL,
//	...
// }
type sample struct {
	Flag      bool
	Count     *int64
	Additions ExtensionAdditions
}

func (s *sample) Encode(e *Encoder) error {
	if err := e.EncodeSequencePreamble(true, s.Additions.Present(), s.Count != nil); err != nil {
		return err
	}
	if err := e.EncodeBoolean(s.Flag); err != nil {
		return err
	}
	if s.Count != nil {
		if err := e.EncodeConstrainedWholeNumber(0, 255, *s.Count); err != nil {
			return err
		}
	}
	if s.Additions.Present() {
		return e.EncodeExtensionAdditions(s.Additions)
	}
	return nil
}

func (s *sample) Decode(d *Decoder) error {
	extended, optionals, err := d.DecodeSequencePreamble(true, 1)
	if err != nil {
		return err
	}
	if s.Flag, err = d.DecodeBoolean(); err != nil {
		return err
	}
	if optionals[0] {
		count, err := d.DecodeConstrainedWholeNumber(0, 255)
		if err != nil {
			return err
		}
		s.Count = &count
	}
	if extended {
		s.Additions, err = d.DecodeExtensionAdditions()
	}
	return err
}

type empty struct{}

func (empty) Encode(*Encoder) error  { return nil }
func (*empty) Decode(*Decoder) error { return nil }

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q) error = %v", s, err)
	}
	return data
}

func TestSequence(t *testing.T) {
	tests := []struct {
		name   string
		value  sample
		output string
	}{
		{"ALL_ABSENT", sample{}, "00"},
		{"OPTIONAL_PRESENT", sample{Flag: true, Count: Ref[int64](5)}, "6005"},
		{"ADDITION_PRESENT", sample{Flag: true, Additions: ExtensionAdditions{nil, OpenType{0xab}}}, "a05001ab"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Marshal(&tc.value)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if expected := unhex(t, tc.output); !bytes.Equal(data, expected) {
				t.Fatalf("Marshal() = %x, expected %x", data, expected)
			}
			var result sample
			if err := Unmarshal(data, &result); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tc.value, result); diff != "" {
				t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSequenceTrailingOctets(t *testing.T) {
	var result sample
	if err := Unmarshal(unhex(t, "600500"), &result); !errors.Is(err, ErrMalformed) {
		t.Errorf("Unmarshal() error = %v, expected ErrMalformed", err)
	}
}

func TestSequenceExtensionWithoutAdditions(t *testing.T) {
	err := NewEncoder(true).EncodeExtensionAdditions(ExtensionAdditions{nil, nil})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("EncodeExtensionAdditions() error = %v, expected ErrMalformed", err)
	}
	err = NewEncoder(true).EncodeSequencePreamble(false, true)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("EncodeSequencePreamble() error = %v, expected ErrMalformed", err)
	}
}

func encodeOctet(e *Encoder, v int64) error {
	return e.EncodeConstrainedWholeNumber(0, 255, v)
}

func decodeOctet(d *Decoder) (int64, error) {
	return d.DecodeConstrainedWholeNumber(0, 255)
}

func TestSequenceOf(t *testing.T) {
	tests := []struct {
		name       string
		items      []int64
		lb, ub     *uint64
		extensible bool
		output     string
	}{
		{"CONSTRAINED", []int64{1, 2}, Ref[uint64](1), Ref[uint64](4), false, "400102"},
		{"FIXED", []int64{7, 8}, Ref[uint64](2), Ref[uint64](2), false, "0708"},
		{"UNCONSTRAINED", []int64{}, nil, nil, false, "00"},
		{"OUTSIDE_ROOT", []int64{1, 2, 3, 4, 5}, Ref[uint64](1), Ref[uint64](4), true, "80050102030405"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoder := NewEncoder(true)
			if err := EncodeSequenceOf(encoder, tc.items, tc.lb, tc.ub, tc.extensible, encodeOctet); err != nil {
				t.Fatalf("EncodeSequenceOf() error = %v", err)
			}
			data := complete(encoder.Bytes())
			if expected := unhex(t, tc.output); !bytes.Equal(data, expected) {
				t.Fatalf("EncodeSequenceOf() = %x, expected %x", data, expected)
			}
			items, err := DecodeSequenceOf(NewDecoder(data, true), tc.lb, tc.ub, tc.extensible, decodeOctet)
			if err != nil {
				t.Fatalf("DecodeSequenceOf() error = %v", err)
			}
			if diff := cmp.Diff(tc.items, items); diff != "" {
				t.Errorf("DecodeSequenceOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSequenceOfErrors(t *testing.T) {
	items := []int64{1, 2, 3, 4, 5}
	err := EncodeSequenceOf(NewEncoder(true), items, Ref[uint64](1), Ref[uint64](4), false, encodeOctet)
	if !errors.Is(err, ErrLengthOutOfRange) {
		t.Errorf("EncodeSequenceOf() error = %v, expected ErrLengthOutOfRange", err)
	}
	// a count of 127 announced by two octets of input
	_, err = DecodeSequenceOf(NewDecoder([]byte{0x7f, 0x01}, true), nil, nil, false, decodeOctet)
	if !errors.Is(err, ErrBufferExhausted) {
		t.Errorf("DecodeSequenceOf() error = %v, expected ErrBufferExhausted", err)
	}
}

func TestSequenceOfFragments(t *testing.T) {
	for _, count := range []int{16384, 32768} {
		t.Run(fmt.Sprintf("COUNT_%d", count), func(t *testing.T) {
			items := make([]int64, count)
			for i := range items {
				items[i] = int64(i % 256)
			}
			encoder := NewEncoder(true)
			if err := EncodeSequenceOf(encoder, items, Ref[uint64](1), nil, false, encodeOctet); err != nil {
				t.Fatalf("EncodeSequenceOf() error = %v", err)
			}
			data := encoder.Bytes()
			// fragment header, the items, then an empty closing determinant
			if size := len(data); size != count+2 {
				t.Fatalf("EncodeSequenceOf() returned %d bytes, expected %d", size, count+2)
			}
			if last := data[len(data)-1]; last != 0x00 {
				t.Errorf("closing length = %02x, expected 00", last)
			}
			decoded, err := DecodeSequenceOf(NewDecoder(data, true), Ref[uint64](1), nil, false, decodeOctet)
			if err != nil {
				t.Fatalf("DecodeSequenceOf() error = %v", err)
			}
			if diff := cmp.Diff(items, decoded); diff != "" {
				t.Errorf("DecodeSequenceOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// visibleString ::= VisibleString (SIZE (1..150))
type visibleString string

func (s visibleString) Encode(e *Encoder) error {
	return e.EncodeString(string(s), Ref[uint64](1), Ref[uint64](150), false)
}

func (s *visibleString) Decode(d *Decoder) error {
	value, err := d.DecodeString(Ref[uint64](1), Ref[uint64](150), false)
	*s = visibleString(value)
	return err
}

func TestString(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		lb, ub     *uint64
		extensible bool
		output     string
	}{
		{"CONSTRAINED", "abc", Ref[uint64](1), Ref[uint64](150), false, "02616263"},
		{"UNCONSTRAINED", "hello", nil, nil, false, "0568656c6c6f"},
		{"FIXED", "ab", Ref[uint64](2), Ref[uint64](2), false, "6162"},
		{"EXTENSIBLE_ROOT", "ab", Ref[uint64](1), Ref[uint64](4), true, "206162"},
		{"EXTENSIBLE_OUTSIDE_ROOT", "hello", Ref[uint64](1), Ref[uint64](4), true, "800568656c6c6f"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoder := NewEncoder(true)
			if err := encoder.EncodeString(tc.value, tc.lb, tc.ub, tc.extensible); err != nil {
				t.Fatalf("EncodeString() error = %v", err)
			}
			if expected := unhex(t, tc.output); !bytes.Equal(encoder.Bytes(), expected) {
				t.Fatalf("EncodeString() = %x, expected %x", encoder.Bytes(), expected)
			}
			value, err := NewDecoder(encoder.Bytes(), true).DecodeString(tc.lb, tc.ub, tc.extensible)
			if err != nil {
				t.Fatalf("DecodeString() error = %v", err)
			}
			if value != tc.value {
				t.Errorf("DecodeString() = %q, expected %q", value, tc.value)
			}
		})
	}

	abc := visibleString("abc")
	data, err := Marshal(&abc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var value visibleString
	if err := Unmarshal(data, &value); err != nil || value != "abc" {
		t.Errorf("Unmarshal(%x) = %q, %v", data, value, err)
	}
	if _, err := Marshal(new(visibleString)); !errors.Is(err, ErrLengthOutOfRange) {
		t.Errorf("Marshal() error = %v, expected ErrLengthOutOfRange", err)
	}
}

func TestNull(t *testing.T) {
	encoder := NewEncoder(true)
	if err := encoder.EncodeNull(); err != nil {
		t.Fatalf("EncodeNull() error = %v", err)
	}
	if n := encoder.NumWritten(); n != 0 {
		t.Errorf("EncodeNull() wrote %d bits, expected 0", n)
	}
	decoder := NewDecoder([]byte{0x80}, true)
	if err := decoder.DecodeNull(); err != nil {
		t.Fatalf("DecodeNull() error = %v", err)
	}
	if n := decoder.NumRead(); n != 0 {
		t.Errorf("DecodeNull() read %d bits, expected 0", n)
	}
}

func TestChoiceIndex(t *testing.T) {
	tests := []struct {
		name       string
		index      int
		root       int
		extensible bool
		output     string
	}{
		{"ROOT", 1, 3, true, "20"},
		{"ADDITION", 4, 3, true, "81"},
		{"NOT_EXTENSIBLE", 2, 3, false, "80"},
		{"SINGLE_ROOT", 0, 1, false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoder := NewEncoder(true)
			if err := encoder.EncodeChoiceIndex(tc.index, tc.root, tc.extensible); err != nil {
				t.Fatalf("EncodeChoiceIndex() error = %v", err)
			}
			if expected := unhex(t, tc.output); !bytes.Equal(encoder.Bytes(), expected) {
				t.Fatalf("EncodeChoiceIndex() = %x, expected %x", encoder.Bytes(), expected)
			}
			index, extended, err := NewDecoder(encoder.Bytes(), true).DecodeChoiceIndex(tc.root, tc.extensible)
			if err != nil {
				t.Fatalf("DecodeChoiceIndex() error = %v", err)
			}
			if index != tc.index || extended != (tc.index >= tc.root) {
				t.Errorf("DecodeChoiceIndex() = %d, %v", index, extended)
			}
		})
	}
	if err := NewEncoder(true).EncodeChoiceIndex(3, 3, false); !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("EncodeChoiceIndex() error = %v, expected ErrValueOutOfRange", err)
	}
}

func TestChoiceAlternative(t *testing.T) {
	choice := NewChoice(1, "value")
	if _, err := Alternative[string](&choice, 0); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("Alternative(0) error = %v, expected ErrWrongVariant", err)
	}
	if _, err := Alternative[int](&choice, 1); !errors.Is(err, ErrWrongVariant) {
		t.Errorf("Alternative[int](1) error = %v, expected ErrWrongVariant", err)
	}
	if choice.Type() != 1 || choice.Value() != "value" {
		t.Fatalf("choice changed to %d/%v", choice.Type(), choice.Value())
	}
	value, err := Alternative[string](&choice, 1)
	if err != nil || value != "value" {
		t.Errorf("Alternative(1) = %q, %v", value, err)
	}
	if !choice.Equal(NewChoice(1, "value")) || choice.Equal(NewChoice(0, "value")) {
		t.Error("Equal() compares index and value")
	}
}

func TestOpenType(t *testing.T) {
	data, err := Marshal(&empty{})
	if err != nil || !bytes.Equal(data, []byte{0x00}) {
		t.Errorf("Marshal(empty) = %x, %v, expected 00", data, err)
	}
	if err := Unmarshal(data, &empty{}); err != nil {
		t.Errorf("Unmarshal(00) error = %v", err)
	}

	encoder := NewEncoder(true)
	if err := encoder.EncodeOpenType(&empty{}); err != nil {
		t.Fatalf("EncodeOpenType(empty) error = %v", err)
	}
	raw := OpenType{0x01, 0x02, 0x03}
	if err := encoder.EncodeOpenType(&raw); err != nil {
		t.Fatalf("EncodeOpenType(raw) error = %v", err)
	}
	if expected := unhex(t, "010003010203"); !bytes.Equal(encoder.Bytes(), expected) {
		t.Fatalf("EncodeOpenType() = %x, expected %x", encoder.Bytes(), expected)
	}

	decoder := NewDecoder(encoder.Bytes(), true)
	if err := decoder.DecodeOpenTypeValue(&empty{}); err != nil {
		t.Fatalf("DecodeOpenTypeValue(empty) error = %v", err)
	}
	var result OpenType
	if err := decoder.DecodeOpenTypeValue(&result); err != nil {
		t.Fatalf("DecodeOpenTypeValue(raw) error = %v", err)
	}
	if !bytes.Equal(result, raw) {
		t.Errorf("DecodeOpenTypeValue(raw) = %x, expected %x", result, raw)
	}
	if decoder.Remaining() != 0 {
		t.Errorf("Remaining() = %d after both open types", decoder.Remaining())
	}
}

func TestOpenTypeTrailingOctets(t *testing.T) {
	// BOOLEAN carried in two octets
	decoder := NewDecoder(unhex(t, "028000"), true)
	var value boolean
	if err := decoder.DecodeOpenTypeValue(&value); !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodeOpenTypeValue() error = %v, expected ErrMalformed", err)
	}
}

type boolean bool

func (b boolean) Encode(e *Encoder) error { return e.EncodeBoolean(bool(b)) }
func (b *boolean) Decode(d *Decoder) error {
	value, err := d.DecodeBoolean()
	*b = boolean(value)
	return err
}

func TestEnumeratedType(t *testing.T) {
	enum := Enumerated{
		Name:       "Sample",
		Root:       []string{"a", "b", "c"},
		Additions:  []string{"d"},
		Extensible: true,
	}
	tests := []struct {
		value  uint64
		output string
		known  bool
		name   string
	}{
		{1, "20", true, "b"},
		{3, "80", true, "d"},
		{5, "82", false, "unknown(5)"},
	}
	for _, tc := range tests {
		encoder := NewEncoder(true)
		if err := enum.Encode(encoder, tc.value); err != nil {
			t.Fatalf("Encode(%d) error = %v", tc.value, err)
		}
		if expected := unhex(t, tc.output); !bytes.Equal(encoder.Bytes(), expected) {
			t.Errorf("Encode(%d) = %x, expected %x", tc.value, encoder.Bytes(), expected)
		}
		value, err := enum.Decode(NewDecoder(encoder.Bytes(), true))
		if err != nil || value != tc.value {
			t.Errorf("Decode() = %d, %v, expected %d", value, err, tc.value)
		}
		if enum.Known(value) != tc.known || enum.String(value) != tc.name {
			t.Errorf("Known(%d) = %v, String() = %q", value, enum.Known(value), enum.String(value))
		}
	}
}

func TestIntegerProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		aligned := rapid.Bool().Draw(t, "aligned")
		lb := rapid.Int64Range(-1<<40, 1<<40).Draw(t, "lb")
		ub := lb + rapid.Int64Range(0, 1<<40).Draw(t, "span")
		value := rapid.Int64Range(lb, ub).Draw(t, "value")
		extensible := rapid.Bool().Draw(t, "extensible")

		bounds := []struct{ lb, ub *int64 }{{&lb, &ub}, {&lb, nil}, {nil, nil}}
		for _, b := range bounds {
			encoder := NewEncoder(aligned)
			if err := encoder.EncodeInteger(value, b.lb, b.ub, extensible); err != nil {
				t.Fatalf("EncodeInteger(%d, %s) error = %v", value, rangeString(b.lb, b.ub), err)
			}
			result, err := NewDecoder(encoder.Bytes(), aligned).DecodeInteger(b.lb, b.ub, extensible)
			if err != nil {
				t.Fatalf("DecodeInteger(%s) error = %v", rangeString(b.lb, b.ub), err)
			}
			if result != value {
				t.Fatalf("DecodeInteger(%s) = %d, expected %d", rangeString(b.lb, b.ub), result, value)
			}
		}
	})
}

func TestOctetStringProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		aligned := rapid.Bool().Draw(t, "aligned")
		value := rapid.SliceOfN(rapid.Byte(), 0, 40000).Draw(t, "value")

		encoder := NewEncoder(aligned)
		if err := encoder.EncodeOctetString(value, nil, nil, false); err != nil {
			t.Fatalf("EncodeOctetString() error = %v", err)
		}
		result, err := NewDecoder(encoder.Bytes(), aligned).DecodeOctetString(nil, nil, false)
		if err != nil {
			t.Fatalf("DecodeOctetString() error = %v", err)
		}
		if !bytes.Equal(result, value) {
			t.Fatalf("DecodeOctetString() = %d octets, expected %d", len(result), len(value))
		}
	})
}

func TestSequenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := sample{Flag: rapid.Bool().Draw(t, "flag")}
		if rapid.Bool().Draw(t, "count") {
			value.Count = Ref(rapid.Int64Range(0, 255).Draw(t, "value"))
		}
		n := rapid.IntRange(0, 70).Draw(t, "additions")
		for range n {
			var addition OpenType
			if rapid.Bool().Draw(t, "present") {
				addition = rapid.SliceOfN(rapid.Byte(), 1, 300).Draw(t, "addition")
			}
			value.Additions = append(value.Additions, addition)
		}
		if !value.Additions.Present() {
			value.Additions = nil
		}

		data, err := Marshal(&value)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		var result sample
		if err := Unmarshal(data, &result); err != nil {
			t.Fatalf("Unmarshal(%x) error = %v", data, err)
		}
		if diff := cmp.Diff(value, result); diff != "" {
			t.Fatalf("Unmarshal() mismatch (-want +got):\n%s", diff)
		}
	})
}
