package xnap_go

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Parse reads a hex capture file: hex digits with any whitespace, '#'
// comments to the end of a line and an optional 0x prefix per field.
func Parse(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if nil != err {
		return nil, err
	}
	defer file.Close()
	return parse(file)
}

// ParseString parses capture text as Parse does.
func ParseString(text string) ([]byte, error) {
	return parse(strings.NewReader(text))
}

func parse(reader io.Reader) ([]byte, error) {
	var (
		builder strings.Builder
		scanner = bufio.NewScanner(reader)
		line    = 0
	)
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		for _, field := range strings.Fields(text) {
			field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
			if _, err := hex.DecodeString(padded(field)); err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			builder.WriteString(field)
		}
	}
	if err := scanner.Err(); nil != err {
		return nil, err
	}
	data, err := hex.DecodeString(builder.String())
	if nil != err {
		return nil, errors.Wrap(err, "odd number of hex digits")
	}
	return data, nil
}

// padded makes a field even length so that its digits can be checked on
// their own; captures may split an octet across fields.
func padded(field string) string {
	if len(field)%2 == 1 {
		return field + "0"
	}
	return field
}
