package driver

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// InputKind is the value kind a builder input accepts.
type InputKind string

const (
	KindBoolean InputKind = "boolean"
	KindNumber  InputKind = "number"
)

// InputField declares one builder input.
type InputField struct {
	Name string    `json:"name" yaml:"name"`
	Kind InputKind `json:"kind" yaml:"kind"`
	// Default is used when the caller omits the field; nil makes the field
	// required.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`
	// Min and Max bound numeric inputs.
	Min     float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Integer bool    `json:"integer,omitempty" yaml:"integer,omitempty"`
}

// BoolField declares a boolean input.
func BoolField(name string, def bool) InputField {
	return InputField{Name: name, Kind: KindBoolean, Default: def}
}

// IntField declares an integral numeric input within [min, max]. A nil def
// makes it required.
func IntField(name string, def any, min, max float64) InputField {
	return InputField{Name: name, Kind: KindNumber, Default: def, Min: min, Max: max, Integer: true}
}

// Input holds validated builder inputs: booleans as bool, numbers as float64.
type Input map[string]any

// Bool returns a boolean input.
func (in Input) Bool(name string) bool {
	b, _ := in[name].(bool)
	return b
}

// Number returns a numeric input.
func (in Input) Number(name string) float64 {
	f, _ := in[name].(float64)
	return f
}

// BuildFunc assembles a downlink frame from validated input.
type BuildFunc func(in Input, nw frame.Network) (frame.Frame, error)

// Builder describes how to build one downlink frame.
type Builder struct {
	Device string
	Code   byte
	Inputs []InputField
	Build  BuildFunc
}

// Resolve validates raw against the declared inputs and fills defaults.
// Unknown keys, wrong kinds and out-of-range numbers fail with
// ErrInvalidInput.
func (b Builder) Resolve(raw map[string]any) (Input, error) {
	declared := make(map[string]InputField, len(b.Inputs))
	for _, f := range b.Inputs {
		declared[f.Name] = f
	}
	for k := range raw {
		if _, ok := declared[k]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q for %s/0x%02x", ErrInvalidInput, k, b.Device, b.Code)
		}
	}
	in := make(Input, len(b.Inputs))
	for _, f := range b.Inputs {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			if f.Default == nil {
				return nil, fmt.Errorf("%w: field %q is required", ErrInvalidInput, f.Name)
			}
			v = f.Default
		}
		switch f.Kind {
		case KindBoolean:
			bv, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: field %q must be a boolean, got %T", ErrInvalidInput, f.Name, v)
			}
			in[f.Name] = bv
		case KindNumber:
			n, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidInput, f.Name, err)
			}
			if math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("%w: field %q is not finite", ErrInvalidInput, f.Name)
			}
			if f.Integer && n != math.Trunc(n) {
				return nil, fmt.Errorf("%w: field %q must be an integer, got %v", ErrInvalidInput, f.Name, n)
			}
			if n < f.Min || n > f.Max {
				return nil, fmt.Errorf("%w: field %q out of range [%v, %v]: %v", ErrInvalidInput, f.Name, f.Min, f.Max, n)
			}
			in[f.Name] = n
		default:
			return nil, fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidInput, f.Name, f.Kind)
		}
	}
	return in, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
