// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dataset

import (
	"bytes"
)

// Literals JavaScript allows in a data file that JSON does not.
// Infinity maps to an overflowing exponent so it decodes as ±Inf, and NaN
// maps to a marker string that is replaced after decoding.
const (
	nanMarker   = "\u0000NaN\u0000"
	nanLiteral  = `"\u0000NaN\u0000"`
	infLiteral  = "1e999"
	nullLiteral = "null"
)

var jsLiterals = []struct {
	word        string
	replacement string
}{
	{"NaN", nanLiteral},
	{"Infinity", infLiteral},
	{"undefined", nullLiteral},
}

// sanitize rewrites JavaScript-flavoured array text into JSON. It strips
// comments and trailing commas and replaces NaN, Infinity and undefined.
// String contents are never touched.
func sanitize(src []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			end := stringEnd(src, i)
			if c == '\'' {
				writeSingleQuoted(&out, src[i+1:end-1])
			} else {
				out.Write(src[i:end])
			}
			i = end

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				i = len(src)
			} else {
				i += end + 4
			}
			out.WriteByte(' ')

		case isIdentStart(c) && (i == 0 || !isIdentPart(src[i-1])):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := string(src[i:j])
			if isObjectKey(src, j) {
				out.WriteString(`"` + word + `"`)
				i = j
				continue
			}
			replaced := false
			for _, lit := range jsLiterals {
				if word == lit.word {
					out.WriteString(lit.replacement)
					replaced = true
					break
				}
			}
			if !replaced {
				out.WriteString(word)
			}
			i = j

		default:
			out.WriteByte(c)
			i++
		}
	}

	return dropTrailingCommas(out.Bytes())
}

// stringEnd returns the index just past the string literal starting at i.
// An unterminated string runs to the end of the input.
func stringEnd(src []byte, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(src)
}

// writeSingleQuoted re-quotes a single-quoted literal body with double quotes.
func writeSingleQuoted(out *bytes.Buffer, body []byte) {
	out.WriteByte('"')
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			out.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			out.WriteByte(c)
			out.WriteByte(body[i+1])
			i++
		case c == '"':
			out.WriteString(`\"`)
		default:
			out.WriteByte(c)
		}
	}
	out.WriteByte('"')
}

// dropTrailingCommas removes commas that directly precede ] or }.
func dropTrailingCommas(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '"' {
			end := stringEnd(src, i)
			out = append(out, src[i:end]...)
			i = end - 1
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(src) && isSpace(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == ']' || src[j] == '}') {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// isObjectKey reports whether the identifier ending at j is a bare object key.
func isObjectKey(src []byte, j int) bool {
	for j < len(src) && isSpace(src[j]) {
		j++
	}
	return j < len(src) && src[j] == ':'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
