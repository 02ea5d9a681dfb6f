package message

// Payload is the request-scoped substitution context passed to templates, callbacks
// and predicates.
type Payload map[string]any

// Clone returns a shallow copy. A nil payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of p with key set to value.
func (p Payload) With(key string, value any) Payload {
	out := p.Clone()
	out[key] = value
	return out
}

// String returns the value under key when it is a string.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
