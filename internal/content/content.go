package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Reserved keys.
const (
	KeyType          = "type"
	KeyPartialReason = "partialDecodingReason"
	KeyError         = "error"
)

// Result types emitted by the decoder itself rather than an interpreter.
const (
	TypeInvalid     = "Invalid"
	TypeUnsupported = "Unsupported"
)

// PartialReason explains why a decoded result is incomplete.
type PartialReason int

const (
	ReasonNone PartialReason = iota
	ReasonMissingNetwork
	ReasonMissingConfiguration
)

var reasonNames = map[PartialReason]string{
	ReasonNone:                 "NONE",
	ReasonMissingNetwork:       "MISSING_NETWORK",
	ReasonMissingConfiguration: "MISSING_CONFIGURATION",
}

func (r PartialReason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("PartialReason(%d)", int(r))
}

// MarshalText renders the reason by name.
func (r PartialReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (r *PartialReason) UnmarshalText(text []byte) error {
	for reason, name := range reasonNames {
		if strings.EqualFold(name, string(text)) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown partial decoding reason %q", text)
}

// Content is an insertion-ordered mapping of field names to scalar values
// (int, float64, string, bool or PartialReason). Interpreters fill one with
// Set; once returned it is treated as immutable.
type Content struct {
	keys   []string
	values map[string]any
}

// New returns an empty Content.
func New() Content {
	return Content{values: map[string]any{}}
}

// Typed returns a Content whose first key is type.
func Typed(typ string) Content {
	c := New()
	c.Set(KeyType, typ)
	return c
}

// Partial returns a Content carrying only a partial decoding reason.
func Partial(reason PartialReason) Content {
	c := New()
	c.Set(KeyPartialReason, reason)
	return c
}

// Failure returns a Content carrying an error message.
func Failure(err error) Content {
	c := New()
	c.Set(KeyError, err.Error())
	return c
}

// Set stores value under key, keeping the key's original position if it
// already exists.
func (c *Content) Set(key string, value any) {
	if c.values == nil {
		c.values = map[string]any{}
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// SetReason records why the content is partial.
func (c *Content) SetReason(reason PartialReason) {
	c.Set(KeyPartialReason, reason)
}

// Get returns the value stored under key.
func (c Content) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c Content) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the keys in order.
func (c Content) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c Content) Len() int { return len(c.keys) }

// Type returns the type field, or "" when absent.
func (c Content) Type() string {
	if s, ok := c.values[KeyType].(string); ok {
		return s
	}
	return ""
}

// Reason returns the partial decoding reason, ReasonNone when absent.
func (c Content) Reason() PartialReason {
	if r, ok := c.values[KeyPartialReason].(PartialReason); ok {
		return r
	}
	return ReasonNone
}

// Map returns a copy of the fields as a plain map.
func (c Content) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Merge combines parts left to right into a new Content. A later value
// overrides an earlier one for the same key; the type key, when present, is
// moved to the front and the remaining keys keep first-insertion order.
func Merge(parts ...Content) Content {
	out := New()
	for _, part := range parts {
		for _, k := range part.keys {
			out.Set(k, part.values[k])
		}
	}
	for i, k := range out.keys {
		if k == KeyType && i > 0 {
			keys := make([]string, 0, len(out.keys))
			keys = append(keys, KeyType)
			keys = append(keys, out.keys[:i]...)
			keys = append(keys, out.keys[i+1:]...)
			out.keys = keys
			break
		}
	}
	return out
}

// MarshalJSON encodes the content as a JSON object in key order.
func (c Content) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order. Numbers become
// int when integral and float64 otherwise; partialDecodingReason is restored
// to a PartialReason.
func (c *Content) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("content must be a JSON object")
	}
	*c = New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		value, err := normalize(key, raw)
		if err != nil {
			return err
		}
		c.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

func normalize(key string, raw any) (any, error) {
	if key == KeyPartialReason {
		var r PartialReason
		switch v := raw.(type) {
		case string:
			if err := r.UnmarshalText([]byte(v)); err != nil {
				return nil, err
			}
			return r, nil
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return nil, err
			}
			return PartialReason(n), nil
		}
	}
	if n, ok := raw.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		return n.Float64()
	}
	return raw, nil
}

func (c Content) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("content(%d keys, marshal error: %v)", len(c.keys), err)
	}
	return string(data)
}
