package per

import (
	"bytes"
	"encoding/asn1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// dref dereferences a pointer and returns its string representation.
// If the pointer is nil, returns "NIL".
func dref[T any](ptr *T) string {
	if ptr == nil {
		return "NIL"
	}
	return fmt.Sprintf("%v", *ptr)
}

// load reads the test cases of testing/<name>.json
func load[T any](t *testing.T, name string) []T {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testing", name+".json"))
	if err != nil {
		t.Fatalf("Failed to read test data file: %v", err)
	}
	var tests []T
	if err := json.Unmarshal(data, &tests); err != nil {
		t.Fatalf("Failed to parse test data: %v", err)
	}
	return tests
}

// output decodes the expected hex output of a test case
func output(t *testing.T, text string) []byte {
	t.Helper()
	expected, err := hex.DecodeString(text)
	if err != nil {
		t.Fatalf("Failed to decode expected output hex: %v", err)
	}
	return expected
}

func flag(ptr *bool) bool {
	return ptr != nil && *ptr
}

// GenOctetString returns the octet string used by the vectors: 00 01 02 ...
func GenOctetString(length int) []byte {
	data := make([]byte, length)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

// GenBitString returns the bit string used by the vectors: 100100100...
func GenBitString(length int) *asn1.BitString {
	data := make([]byte, (length+7)/8)
	for i := 0; i < length; i += 3 {
		data[i/8] |= 0x80 >> (i % 8)
	}
	return &asn1.BitString{Bytes: data, BitLength: length}
}

// BOOL represents a single test case from the JSON file
type BOOL struct {
	Input   bool   `json:"input"`
	Aligned bool   `json:"aligned"`
	Output  string `json:"output"`
}

// INT represents a single integer test case from the JSON file
type INT struct {
	Input struct {
		Value      int64  `json:"value"`
		Lb         *int64 `json:"lb"`
		Ub         *int64 `json:"ub"`
		Extensible *bool  `json:"extensible"`
	} `json:"input"`
	Output  string `json:"output"`
	Aligned bool   `json:"aligned"`
}

// ENUM represents a single enumerated test case from the JSON file
type ENUM struct {
	Input struct {
		Value      uint64 `json:"value"`
		Count      uint64 `json:"count"`
		Extensible bool   `json:"extensible"`
	} `json:"input"`
	Output  string `json:"output"`
	Aligned bool   `json:"aligned"`
}

// OCT_STR represents a single octet string test case from the JSON file
type OCT_STR struct {
	Input struct {
		Length     int     `json:"length"`
		Lb         *uint64 `json:"lb"`
		Ub         *uint64 `json:"ub"`
		Extensible *bool   `json:"extensible"`
	} `json:"input"`
	Output  string `json:"output"`
	Aligned bool   `json:"aligned"`
}

// BIT_STR represents a single bit string test case from the JSON file
type BIT_STR = OCT_STR

func TestWriteBool(t *testing.T) {
	for _, tc := range load[BOOL](t, "bool") {
		name := strings.ToUpper(fmt.Sprintf("BOOL_VALUE_%v_ALIGNED_%v", tc.Input, tc.Aligned))
		t.Run(name, func(t *testing.T) {
			expected := output(t, tc.Output)
			encoder := NewEncoder(tc.Aligned)
			if err := encoder.EncodeBoolean(tc.Input); err != nil {
				t.Fatalf("EncodeBoolean() error = %v", err)
			}
			if result := encoder.Bytes(); !bytes.Equal(result, expected) {
				t.Errorf("EncodeBoolean() = %x, expected %x", result, expected)
			}
		})
	}
}

func TestWriteInteger(t *testing.T) {
	for _, tc := range load[INT](t, "integer") {
		name := strings.ToUpper(fmt.Sprintf("INTEGER_VALUE_%d_LB_%s_UB_%s_ALIGNED_%v_EXTENSIBLE_%s",
			tc.Input.Value, dref(tc.Input.Lb), dref(tc.Input.Ub), tc.Aligned, dref(tc.Input.Extensible)))
		t.Run(name, func(t *testing.T) {
			expected := output(t, tc.Output)
			encoder := NewEncoder(tc.Aligned)
			err := encoder.EncodeInteger(tc.Input.Value, tc.Input.Lb, tc.Input.Ub, flag(tc.Input.Extensible))
			if err != nil {
				t.Fatalf("EncodeInteger() error = %v", err)
			}
			if result := encoder.Bytes(); !bytes.Equal(result, expected) {
				t.Errorf("EncodeInteger() = %x, expected %x", result, expected)
			}
		})
	}
}

func TestWriteEnumerated(t *testing.T) {
	for _, tc := range load[ENUM](t, "enumerated") {
		name := strings.ToUpper(fmt.Sprintf("ENUMERATED_VALUE_%d_COUNT_%d_ALIGNED_%v_EXTENSIBLE_%v",
			tc.Input.Value, tc.Input.Count, tc.Aligned, tc.Input.Extensible))
		t.Run(name, func(t *testing.T) {
			expected := output(t, tc.Output)
			encoder := NewEncoder(tc.Aligned)
			if err := encoder.EncodeEnumerated(tc.Input.Value, tc.Input.Count, tc.Input.Extensible); err != nil {
				t.Fatalf("EncodeEnumerated() error = %v", err)
			}
			if result := encoder.Bytes(); !bytes.Equal(result, expected) {
				t.Errorf("EncodeEnumerated() = %x, expected %x", result, expected)
			}
		})
	}
}

func TestWriteOctetString(t *testing.T) {
	for _, tc := range load[OCT_STR](t, "octet_string") {
		name := strings.ToUpper(fmt.Sprintf("OCTET_STRING_LENGTH_%d_LB_%s_UB_%s_ALIGNED_%v_EXTENSIBLE_%s",
			tc.Input.Length, dref(tc.Input.Lb), dref(tc.Input.Ub), tc.Aligned, dref(tc.Input.Extensible)))
		t.Run(name, func(t *testing.T) {
			expected := output(t, tc.Output)
			encoder := NewEncoder(tc.Aligned)
			err := encoder.EncodeOctetString(GenOctetString(tc.Input.Length), tc.Input.Lb, tc.Input.Ub, flag(tc.Input.Extensible))
			if err != nil {
				t.Fatalf("EncodeOctetString() error = %v", err)
			}
			if result := encoder.Bytes(); !bytes.Equal(result, expected) {
				t.Errorf("EncodeOctetString() = %x, expected %x", result, expected)
			}
		})
	}
}

func TestWriteBitString(t *testing.T) {
	for _, tc := range load[BIT_STR](t, "bit_string") {
		name := strings.ToUpper(fmt.Sprintf("BIT_STRING_LENGTH_%d_LB_%s_UB_%s_ALIGNED_%v_EXTENSIBLE_%s",
			tc.Input.Length, dref(tc.Input.Lb), dref(tc.Input.Ub), tc.Aligned, dref(tc.Input.Extensible)))
		t.Run(name, func(t *testing.T) {
			expected := output(t, tc.Output)
			encoder := NewEncoder(tc.Aligned)
			err := encoder.EncodeBitString(GenBitString(tc.Input.Length), tc.Input.Lb, tc.Input.Ub, flag(tc.Input.Extensible))
			if err != nil {
				t.Fatalf("EncodeBitString() error = %v", err)
			}
			if result := encoder.Bytes(); !bytes.Equal(result, expected) {
				t.Errorf("EncodeBitString() = %x, expected %x", result, expected)
			}
		})
	}
}

// TestIntegerBounds checks lb-1, lb, ub and ub+1 for several ranges
func TestIntegerBounds(t *testing.T) {
	ranges := []struct{ lb, ub int64 }{
		{0, 1}, {0, 7}, {-10, 10}, {0, 255}, {0, 65535}, {0, 4294967295}, {100, 100},
	}
	for _, r := range ranges {
		for _, aligned := range []bool{true, false} {
			name := fmt.Sprintf("RANGE_%d_%d_ALIGNED_%v", r.lb, r.ub, aligned)
			t.Run(name, func(t *testing.T) {
				for _, value := range []int64{r.lb, r.ub} {
					encoder := NewEncoder(aligned)
					if err := encoder.EncodeInteger(value, &r.lb, &r.ub, false); err != nil {
						t.Fatalf("EncodeInteger(%d) error = %v", value, err)
					}
					decoded, err := NewDecoder(encoder.Bytes(), aligned).DecodeInteger(&r.lb, &r.ub, false)
					if err != nil || decoded != value {
						t.Errorf("DecodeInteger() = %d, %v, expected %d", decoded, err, value)
					}
				}
				for _, value := range []int64{r.lb - 1, r.ub + 1} {
					err := NewEncoder(aligned).EncodeInteger(value, &r.lb, &r.ub, false)
					if !errors.Is(err, ErrValueOutOfRange) {
						t.Errorf("EncodeInteger(%d) error = %v, expected ErrValueOutOfRange", value, err)
					}
				}
			})
		}
	}
}

// TestSizeBounds checks lb-1, lb, ub and ub+1 for strings
func TestSizeBounds(t *testing.T) {
	lb, ub := uint64(2), uint64(6)
	for _, aligned := range []bool{true, false} {
		for _, length := range []uint64{lb, ub} {
			encoder := NewEncoder(aligned)
			if err := encoder.EncodeOctetString(GenOctetString(int(length)), &lb, &ub, false); err != nil {
				t.Fatalf("EncodeOctetString(%d) error = %v", length, err)
			}
			if err := encoder.EncodeBitString(GenBitString(int(length)), &lb, &ub, false); err != nil {
				t.Fatalf("EncodeBitString(%d) error = %v", length, err)
			}
		}
		for _, length := range []uint64{lb - 1, ub + 1} {
			err := NewEncoder(aligned).EncodeOctetString(GenOctetString(int(length)), &lb, &ub, false)
			if !errors.Is(err, ErrLengthOutOfRange) {
				t.Errorf("EncodeOctetString(%d) error = %v, expected ErrLengthOutOfRange", length, err)
			}
			err = NewEncoder(aligned).EncodeBitString(GenBitString(int(length)), &lb, &ub, false)
			if !errors.Is(err, ErrLengthOutOfRange) {
				t.Errorf("EncodeBitString(%d) error = %v, expected ErrLengthOutOfRange", length, err)
			}
		}
	}
}

func TestEnumeratedOutOfRoot(t *testing.T) {
	err := NewEncoder(true).EncodeEnumerated(3, 3, false)
	if !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("EncodeEnumerated() error = %v, expected ErrValueOutOfRange", err)
	}
}

// TestFragmentation covers the 16K fragments of 11.9.3.8 including the
// empty determinant closing an exact multiple of 16K
func TestFragmentation(t *testing.T) {
	tests := []struct {
		length int
		size   int
		prefix string
	}{
		{16383, 16385, "bfff"},
		{16384, 16386, "c1"},
		{16385, 16387, "c1"},
		{65536, 65538, "c4"},
		{70000, 70003, "c4"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("OCTET_STRING_LENGTH_%d", tc.length), func(t *testing.T) {
			value := GenOctetString(tc.length)
			encoder := NewEncoder(true)
			if err := encoder.EncodeOctetString(value, nil, nil, false); err != nil {
				t.Fatalf("EncodeOctetString() error = %v", err)
			}
			result := encoder.Bytes()
			if len(result) != tc.size {
				t.Fatalf("EncodeOctetString() returned %d bytes, expected %d", len(result), tc.size)
			}
			if prefix := hex.EncodeToString(result[:len(tc.prefix)/2]); prefix != tc.prefix {
				t.Errorf("EncodeOctetString() starts with %s, expected %s", prefix, tc.prefix)
			}
			decoded, err := NewDecoder(result, true).DecodeOctetString(nil, nil, false)
			if err != nil {
				t.Fatalf("DecodeOctetString() error = %v", err)
			}
			if !bytes.Equal(decoded, value) {
				t.Errorf("DecodeOctetString() returned %d bytes, expected %d", len(decoded), len(value))
			}
		})
	}

	// 16384 octets end with an empty length determinant
	encoder := NewEncoder(true)
	if err := encoder.EncodeOctetString(GenOctetString(16384), nil, nil, false); err != nil {
		t.Fatalf("EncodeOctetString() error = %v", err)
	}
	if last := encoder.Bytes()[16385]; last != 0x00 {
		t.Errorf("terminating length = %02x, expected 00", last)
	}

	// 70000 octets: 64K fragment, then a long form length for the rest
	encoder = NewEncoder(true)
	if err := encoder.EncodeOctetString(GenOctetString(70000), nil, nil, false); err != nil {
		t.Fatalf("EncodeOctetString() error = %v", err)
	}
	if length := hex.EncodeToString(encoder.Bytes()[65537:65539]); length != "9170" {
		t.Errorf("second length = %s, expected 9170", length)
	}
}

// TestFragmentationLowerBound checks that SIZE(1..MAX) applies to the total
// length: the closing determinant after a 16K multiple is zero.
func TestFragmentationLowerBound(t *testing.T) {
	for _, length := range []int{16384, 32768, 65536, 65537} {
		t.Run(fmt.Sprintf("OCTET_STRING_LENGTH_%d", length), func(t *testing.T) {
			value := GenOctetString(length)
			encoder := NewEncoder(true)
			if err := encoder.EncodeOctetString(value, Ref[uint64](1), nil, false); err != nil {
				t.Fatalf("EncodeOctetString() error = %v", err)
			}
			decoded, err := NewDecoder(encoder.Bytes(), true).DecodeOctetString(Ref[uint64](1), nil, false)
			if err != nil {
				t.Fatalf("DecodeOctetString() error = %v", err)
			}
			if !bytes.Equal(decoded, value) {
				t.Errorf("DecodeOctetString() returned %d bytes, expected %d", len(decoded), len(value))
			}
		})
	}

	value := GenBitString(32768)
	encoder := NewEncoder(true)
	if err := encoder.EncodeBitString(value, Ref[uint64](8), nil, false); err != nil {
		t.Fatalf("EncodeBitString() error = %v", err)
	}
	decoded, err := NewDecoder(encoder.Bytes(), true).DecodeBitString(Ref[uint64](8), nil, false)
	if err != nil {
		t.Fatalf("DecodeBitString() error = %v", err)
	}
	if decoded.BitLength != value.BitLength || !bytes.Equal(decoded.Bytes, value.Bytes) {
		t.Errorf("DecodeBitString() returned %d bits, expected %d", decoded.BitLength, value.BitLength)
	}

	err = NewEncoder(true).EncodeOctetString([]byte{}, Ref[uint64](1), nil, false)
	if !errors.Is(err, ErrLengthOutOfRange) {
		t.Errorf("EncodeOctetString() error = %v, expected ErrLengthOutOfRange", err)
	}
}

func TestBitStringFragmentation(t *testing.T) {
	value := GenBitString(40000)
	encoder := NewEncoder(true)
	if err := encoder.EncodeBitString(value, nil, nil, false); err != nil {
		t.Fatalf("EncodeBitString() error = %v", err)
	}
	// c2 (32K bits), 4096 octets, 9c40 (7232 bits), 904 octets
	if size := len(encoder.Bytes()); size != 1+4096+2+904 {
		t.Fatalf("EncodeBitString() returned %d bytes, expected %d", size, 1+4096+2+904)
	}
	decoded, err := NewDecoder(encoder.Bytes(), true).DecodeBitString(nil, nil, false)
	if err != nil {
		t.Fatalf("DecodeBitString() error = %v", err)
	}
	if decoded.BitLength != value.BitLength || !bytes.Equal(decoded.Bytes, value.Bytes) {
		t.Errorf("DecodeBitString() returned %d bits, expected %d", decoded.BitLength, value.BitLength)
	}
}

func TestBoundedEncoder(t *testing.T) {
	encoder := NewBoundedEncoder(true, 2)
	err := encoder.EncodeOctetString(GenOctetString(3), nil, nil, false)
	if !errors.Is(err, ErrBufferExhausted) {
		t.Errorf("EncodeOctetString() error = %v, expected ErrBufferExhausted", err)
	}
}
