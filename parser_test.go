package xnap_go

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestParseString(t *testing.T) {
	data, err := ParseString(`
# ErrorIndication
0x00 15 40
0a 00 00 # trailing comment
`)
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(data, []byte{0x00, 0x15, 0x40, 0x0a, 0x00, 0x00}))
}

func TestParseStringPrefixes(t *testing.T) {
	data, err := ParseString("0x12 0x34\n0X56 78 0xab")
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(data, []byte{0x12, 0x34, 0x56, 0x78, 0xab}))
}

func TestParseStringErrors(t *testing.T) {
	_, err := ParseString("00 1")
	assert.ErrorContains(t, err, "odd number of hex digits")

	_, err = ParseString("00\nzz\n")
	assert.ErrorContains(t, err, "line 2")
}

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.hex")
	assert.NilError(t, os.WriteFile(path, []byte("00 02 f8 39\n"), 0o644))

	data, err := Parse(path)
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(data, []byte{0x00, 0x02, 0xf8, 0x39}))

	_, err = Parse(filepath.Join(t.TempDir(), "missing.hex"))
	assert.Check(t, os.IsNotExist(err))
}
