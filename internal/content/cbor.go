package content

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// encMode produces deterministic CBOR so identical results encode to
// identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// MarshalCBOR encodes the content as a canonical CBOR map. Key order follows
// CBOR canonical sorting; the partial reason is written by name.
func (c Content) MarshalCBOR() ([]byte, error) {
	m := make(map[string]any, len(c.values))
	for k, v := range c.values {
		if r, ok := v.(PartialReason); ok {
			m[k] = r.String()
			continue
		}
		m[k] = v
	}
	return encMode.Marshal(m)
}

// UnmarshalCBOR decodes a CBOR map produced by MarshalCBOR. Keys are ordered
// with type first and the rest in the decoded (canonical) order.
func (c *Content) UnmarshalCBOR(data []byte) error {
	var m map[string]any
	if err := decMode.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode cbor content: %w", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortCanonical(keys)
	out := New()
	for _, k := range keys {
		v := m[k]
		switch n := v.(type) {
		case uint64:
			v = int(n)
		case int64:
			v = int(n)
		}
		if k == KeyPartialReason {
			if s, ok := v.(string); ok {
				var r PartialReason
				if err := r.UnmarshalText([]byte(s)); err != nil {
					return err
				}
				v = r
			}
		}
		out.Set(k, v)
	}
	*c = Merge(out)
	return nil
}

// sortCanonical orders keys the way CBOR canonical encoding does for text
// keys: shorter first, then bytewise.
func sortCanonical(keys []string) {
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
}
