package message

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey is returned when a template references a key absent from the payload.
	ErrMissingKey = errors.New("message: template key missing from payload")
	// ErrBadTemplate is returned for unbalanced braces or empty placeholders.
	ErrBadTemplate = errors.New("message: malformed template")
)

// Format substitutes {key} placeholders in tmpl from payload. Literal braces are written
// as {{ and }}. Missing keys are an error, never rendered as blanks.
func Format(tmpl string, payload Payload) (string, error) {
	if !strings.ContainsAny(tmpl, "{}") {
		return tmpl, nil
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d in %q", ErrBadTemplate, i, tmpl)
			}
			key := tmpl[i+1 : i+1+end]
			if key == "" || strings.ContainsRune(key, '{') {
				return "", fmt.Errorf("%w: bad placeholder at offset %d in %q", ErrBadTemplate, i, tmpl)
			}
			val, ok := payload[key]
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrMissingKey, key)
			}
			b.WriteString(fmt.Sprint(val))
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d in %q", ErrBadTemplate, i, tmpl)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
