package message

import "sort"

// TextField is the content field transports render as the message body.
const TextField = "text"

// Field is a named content value.
type Field struct {
	Key   string
	Value any
}

// Content is an immutable set of raw, unformatted fields. Only string values are
// treated as templates when rendered.
type Content struct {
	keys   []string
	fields map[string]any
}

// Text builds content holding just a text field.
func Text(text string) *Content {
	return NewContent(Field{Key: TextField, Value: text})
}

// NewContent builds content from fields in the given order. Later duplicates win.
func NewContent(fields ...Field) *Content {
	c := &Content{fields: make(map[string]any, len(fields))}
	for _, f := range fields {
		if _, seen := c.fields[f.Key]; !seen {
			c.keys = append(c.keys, f.Key)
		}
		c.fields[f.Key] = f.Value
	}
	return c
}

// ContentFromMap builds content from a map; text comes first, the rest sorted by key.
func ContentFromMap(m map[string]any) *Content {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != TextField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]Field, 0, len(m))
	if v, ok := m[TextField]; ok {
		fields = append(fields, Field{Key: TextField, Value: v})
	}
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: m[k]})
	}
	return NewContent(fields...)
}

// Keys lists field names in declaration order.
func (c *Content) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Get returns the raw value of a field.
func (c *Content) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.fields[key]
	return v, ok
}

// RawText returns the unformatted text field.
func (c *Content) RawText() string {
	v, _ := c.Get(TextField)
	s, _ := v.(string)
	return s
}

// Render formats every string field against payload. Non-string fields are copied as is.
func (c *Content) Render(payload Payload) (map[string]any, error) {
	if c == nil {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(c.keys))
	for _, k := range c.keys {
		v := c.fields[k]
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		formatted, err := Format(s, payload)
		if err != nil {
			return nil, err
		}
		out[k] = formatted
	}
	return out, nil
}
