// Package llmjson decodes JSON objects out of untrusted model output. It strips
// markdown fences and surrounding prose, and applies one bounded repair pass
// (trailing commas, an unterminated string, unbalanced brackets) before giving up.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when the text holds no decodable JSON object even after repair.
var ErrMalformed = errors.New("malformed JSON in model output")

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Clean strips fences and returns the outermost {...} object span. When the
// object is never closed the span runs to the end of the text. Text without
// an opening brace is returned fence-stripped.
func Clean(text string) string {
	s := StripFences(text)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return s
	}
	s = s[start:]

	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return s
}

// Repair applies the bounded repair to Clean(text). It is idempotent and
// leaves valid JSON untouched.
func Repair(text string) string {
	s := Clean(text)

	var b strings.Builder
	b.Grow(len(s) + 8)
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			trimTrailingComma(&b)
			if len(stack) == 0 || stack[len(stack)-1] != c {
				// stray closer
				continue
			}
			stack = stack[:len(stack)-1]
		}
		b.WriteByte(c)
	}

	if inString {
		out := b.String()
		if escaped {
			out = out[:len(out)-1]
		}
		b.Reset()
		b.WriteString(out)
		b.WriteByte('"')
	}
	if len(stack) > 0 {
		trimTrailingComma(&b)
		out := strings.TrimRight(b.String(), " \t\r\n")
		if strings.HasSuffix(out, ":") {
			out += `""`
		}
		b.Reset()
		b.WriteString(out)
		for i := len(stack) - 1; i >= 0; i-- {
			b.WriteByte(stack[i])
		}
	}
	return b.String()
}

// trimTrailingComma drops a comma (and whitespace after it) at the end of b.
func trimTrailingComma(b *strings.Builder) {
	out := b.String()
	trimmed := strings.TrimRight(out, " \t\r\n")
	if strings.HasSuffix(trimmed, ",") {
		b.Reset()
		b.WriteString(trimmed[:len(trimmed)-1])
	}
}

// Decode unmarshals the JSON object found in text into v. A plain decode of
// the cleaned span is tried first and the repaired span second.
func Decode(text string, v any) error {
	s := Clean(text)
	if !strings.HasPrefix(s, "{") {
		return fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}
	if !json.Valid([]byte(s)) {
		s = Repair(text)
		if !json.Valid([]byte(s)) {
			return fmt.Errorf("%w: invalid after repair", ErrMalformed)
		}
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
