// Package mutf8 implements the JVM's modified UTF-8 encoding.
//
// Modified UTF-8 is the CESU-8 dialect used for CONSTANT_Utf8 payloads in
// class files. It differs from standard UTF-8 in two ways: U+0000 is encoded
// as the two-byte sequence 0xC0 0x80 (so encoded text never contains a raw
// NUL byte), and supplementary characters are encoded as a UTF-16 surrogate
// pair with each surrogate in its own three-byte form (six bytes total);
// four-byte UTF-8 sequences never appear.
package mutf8

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	highMax      = 0xDBFF
)

// Decode converts modified UTF-8 bytes to a Go string.
// It is strict: raw NUL bytes, four-byte sequences, truncated sequences and
// unpaired surrogates are all errors.
func Decode(data []byte) (string, error) {
	var b strings.Builder
	b.Grow(len(data))

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == 0x00:
			return "", fmt.Errorf("raw NUL byte at offset %d", i)

		case c < 0x80:
			b.WriteByte(c)
			i++

		case c&0xE0 == 0xC0:
			if i+1 >= len(data) {
				return "", fmt.Errorf("truncated two-byte sequence at offset %d", i)
			}
			c2 := data[i+1]
			if c2&0xC0 != 0x80 {
				return "", fmt.Errorf("invalid continuation byte 0x%02x at offset %d", c2, i+1)
			}
			r := rune(c&0x1F)<<6 | rune(c2&0x3F)
			// 0xC0 0x80 is the modified encoding of U+0000; other
			// overlong forms remain invalid.
			if r < 0x80 && r != 0 {
				return "", fmt.Errorf("overlong two-byte sequence at offset %d", i)
			}
			b.WriteRune(r)
			i += 2

		case c&0xF0 == 0xE0:
			if i+2 >= len(data) {
				return "", fmt.Errorf("truncated three-byte sequence at offset %d", i)
			}
			c2, c3 := data[i+1], data[i+2]
			if c2&0xC0 != 0x80 || c3&0xC0 != 0x80 {
				return "", fmt.Errorf("invalid continuation byte in three-byte sequence at offset %d", i)
			}
			r := rune(c&0x0F)<<12 | rune(c2&0x3F)<<6 | rune(c3&0x3F)
			if r < 0x800 {
				return "", fmt.Errorf("overlong three-byte sequence at offset %d", i)
			}
			if r >= surrogateMin && r <= surrogateMax {
				if r > highMax {
					return "", fmt.Errorf("unpaired low surrogate at offset %d", i)
				}
				lo, n, err := decodeLowSurrogate(data, i+3)
				if err != nil {
					return "", err
				}
				b.WriteRune(utf16.DecodeRune(r, lo))
				i += 3 + n
				continue
			}
			b.WriteRune(r)
			i += 3

		default:
			return "", fmt.Errorf("invalid byte 0x%02x at offset %d", c, i)
		}
	}

	return b.String(), nil
}

// decodeLowSurrogate reads the three-byte low surrogate that must follow a
// high surrogate. Returns the surrogate value and bytes consumed.
func decodeLowSurrogate(data []byte, i int) (rune, int, error) {
	if i+2 >= len(data) {
		return 0, 0, fmt.Errorf("unpaired high surrogate at offset %d", i-3)
	}
	c, c2, c3 := data[i], data[i+1], data[i+2]
	if c&0xF0 != 0xE0 || c2&0xC0 != 0x80 || c3&0xC0 != 0x80 {
		return 0, 0, fmt.Errorf("unpaired high surrogate at offset %d", i-3)
	}
	r := rune(c&0x0F)<<12 | rune(c2&0x3F)<<6 | rune(c3&0x3F)
	if r <= highMax || r > surrogateMax {
		return 0, 0, fmt.Errorf("unpaired high surrogate at offset %d", i-3)
	}
	return r, 3, nil
}

// Encode converts a Go string to modified UTF-8 bytes.
func Encode(s string) []byte {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			buf = append(buf, 0xC0, 0x80)
		case r < 0x80:
			buf = append(buf, byte(r))
		case r < 0x800:
			buf = append(buf, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			buf = appendThreeByte(buf, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			buf = appendThreeByte(buf, hi)
			buf = appendThreeByte(buf, lo)
		}
	}
	return buf
}

func appendThreeByte(buf []byte, r rune) []byte {
	return append(buf,
		0xE0|byte(r>>12),
		0x80|byte(r>>6&0x3F),
		0x80|byte(r&0x3F))
}

// Valid reports whether data is well-formed modified UTF-8.
func Valid(data []byte) bool {
	_, err := Decode(data)
	return err == nil
}
