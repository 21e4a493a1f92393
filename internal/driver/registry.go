package driver

import (
	"errors"
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// AnyTag is how the wildcard device is reported.
const AnyTag = "any"

// AnyFrameCode is how the wildcard frame code is reported.
const AnyFrameCode = -1

var (
	// ErrDuplicateRegistration is returned when two descriptors claim the
	// same concrete (device type, frame code) pair.
	ErrDuplicateRegistration = errors.New("duplicate registration")
	// ErrUnsupportedFrame is returned when no builder exists for a pair.
	ErrUnsupportedFrame = errors.New("unsupported frame")
	// ErrInvalidInput is returned when builder input fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// DeviceMatch selects the device types an interpreter applies to.
type DeviceMatch struct {
	tag string
	any bool
}

// AnyDevice matches every device type.
var AnyDevice = DeviceMatch{any: true}

// Device matches exactly one device type.
func Device(tag string) DeviceMatch { return DeviceMatch{tag: tag} }

// Matches reports whether device is covered.
func (m DeviceMatch) Matches(device string) bool { return m.any || m.tag == device }

// IsAny reports whether this is the wildcard.
func (m DeviceMatch) IsAny() bool { return m.any }

// Tag returns the device type, or "any" for the wildcard.
func (m DeviceMatch) Tag() string {
	if m.any {
		return AnyTag
	}
	return m.tag
}

func (m DeviceMatch) String() string { return m.Tag() }

// CodeMatch selects the frame codes an interpreter applies to.
type CodeMatch struct {
	code byte
	any  bool
}

// AnyCode matches every frame code.
var AnyCode = CodeMatch{any: true}

// Code matches exactly one frame code.
func Code(c byte) CodeMatch { return CodeMatch{code: c} }

// Matches reports whether code is covered.
func (m CodeMatch) Matches(code byte) bool { return m.any || m.code == code }

// IsAny reports whether this is the wildcard.
func (m CodeMatch) IsAny() bool { return m.any }

// Value returns the frame code, or -1 for the wildcard.
func (m CodeMatch) Value() int {
	if m.any {
		return AnyFrameCode
	}
	return int(m.code)
}

func (m CodeMatch) String() string {
	if m.any {
		return "any"
	}
	return fmt.Sprintf("0x%02x", m.code)
}

// InterpretFunc extracts fields from f. cfg is the last configuration frame
// known for the device (possibly empty) and nw the network the frame came
// from. Errors are reported back to the caller as an error field.
type InterpretFunc func(f, cfg frame.Frame, nw frame.Network) (content.Content, error)

// Interpreter describes one frame interpreter.
type Interpreter struct {
	Name      string
	Device    DeviceMatch
	Code      CodeMatch
	Interpret InterpretFunc
}

func (i Interpreter) concrete() bool { return !i.Device.IsAny() && !i.Code.IsAny() }

// Pair identifies a (device type, frame code) combination. Wildcards are
// reported as "any" and -1.
type Pair struct {
	DeviceType string `json:"deviceType" yaml:"device_type"`
	FrameCode  int    `json:"frameCode" yaml:"frame_code"`
}

func (p Pair) String() string {
	if p.FrameCode == AnyFrameCode {
		return p.DeviceType + "/any"
	}
	return fmt.Sprintf("%s/0x%02x", p.DeviceType, p.FrameCode)
}

// Family groups the interpreters and builders of one device family.
type Family struct {
	Name string
	// SkipWildcardOverlays keeps wildcard-device interpreters away from
	// frames of a device already known to belong to this family.
	SkipWildcardOverlays bool
	Interpreters         []Interpreter
	Builders             []Builder
}

type pairKey struct {
	device string
	code   byte
}

// Registry is the fixed table of interpreters and builders. It is built once
// by NewRegistry and never mutated afterwards, so it is safe for concurrent
// use.
type Registry struct {
	interpreters []Interpreter
	builders     []Builder
	byPair       map[pairKey]int
	builderIdx   map[pairKey]int
	skipOverlay  map[string]bool
}

// NewRegistry validates and indexes the families.
func NewRegistry(families ...Family) (*Registry, error) {
	r := &Registry{
		byPair:      map[pairKey]int{},
		builderIdx:  map[pairKey]int{},
		skipOverlay: map[string]bool{},
	}
	for _, fam := range families {
		if fam.SkipWildcardOverlays {
			r.skipOverlay[fam.Name] = true
		}
		for _, it := range fam.Interpreters {
			if it.Interpret == nil {
				return nil, fmt.Errorf("family %s: interpreter %q has no function", fam.Name, it.Name)
			}
			if it.concrete() {
				key := pairKey{device: it.Device.Tag(), code: it.Code.code}
				if prev, ok := r.byPair[key]; ok {
					return nil, fmt.Errorf("%w: interpreter %s/%s (%q and %q)", ErrDuplicateRegistration,
						it.Device, it.Code, r.interpreters[prev].Name, it.Name)
				}
				r.byPair[key] = len(r.interpreters)
			}
			r.interpreters = append(r.interpreters, it)
		}
		for _, b := range fam.Builders {
			if b.Build == nil {
				return nil, fmt.Errorf("family %s: builder %s/0x%02x has no function", fam.Name, b.Device, b.Code)
			}
			key := pairKey{device: b.Device, code: b.Code}
			if _, ok := r.builderIdx[key]; ok {
				return nil, fmt.Errorf("%w: builder %s/0x%02x", ErrDuplicateRegistration, b.Device, b.Code)
			}
			r.builderIdx[key] = len(r.builders)
			r.builders = append(r.builders, b)
		}
	}
	return r, nil
}

// MustNewRegistry panics when the families do not form a valid registry.
func MustNewRegistry(families ...Family) *Registry {
	r, err := NewRegistry(families...)
	if err != nil {
		panic(err)
	}
	return r
}

// Interpreters returns every interpreter in registration order.
func (r *Registry) Interpreters() []Interpreter {
	out := make([]Interpreter, len(r.interpreters))
	copy(out, r.interpreters)
	return out
}

// LookupAll returns every interpreter whose device match covers device and
// whose code match covers code, in registration order.
func (r *Registry) LookupAll(device string, code byte) []Interpreter {
	var out []Interpreter
	for _, it := range r.interpreters {
		if it.Device.Matches(device) && it.Code.Matches(code) {
			out = append(out, it)
		}
	}
	return out
}

// registeredFor returns the interpreters registered for exactly code.
func (r *Registry) registeredFor(code byte) []Interpreter {
	var out []Interpreter
	for _, it := range r.interpreters {
		if !it.Code.IsAny() && it.Code.code == code {
			out = append(out, it)
		}
	}
	return out
}

// UniqueDeviceFor returns the device type of the only concrete interpreter
// registered for code. It reports false when there is none or more than one.
func (r *Registry) UniqueDeviceFor(code byte) (string, bool) {
	found := ""
	n := 0
	for _, it := range r.registeredFor(code) {
		if it.Device.IsAny() {
			continue
		}
		found = it.Device.Tag()
		n++
	}
	if n != 1 {
		return "", false
	}
	return found, true
}

// DeviceTypesFor lists the distinct device tags, "any" included, with an
// interpreter registered for exactly code.
func (r *Registry) DeviceTypesFor(code byte) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, it := range r.registeredFor(code) {
		tag := it.Device.Tag()
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// SkipsWildcardOverlays reports the overlay policy of the family named device.
func (r *Registry) SkipsWildcardOverlays(device string) bool {
	return r.skipOverlay[device]
}

// SupportedDecode lists the distinct interpreter pairs in registration order.
func (r *Registry) SupportedDecode() []Pair {
	seen := map[Pair]bool{}
	out := []Pair{}
	for _, it := range r.interpreters {
		p := Pair{DeviceType: it.Device.Tag(), FrameCode: it.Code.Value()}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// SupportedEncode lists the builder pairs in registration order.
func (r *Registry) SupportedEncode() []Pair {
	out := make([]Pair, 0, len(r.builders))
	for _, b := range r.builders {
		out = append(out, Pair{DeviceType: b.Device, FrameCode: int(b.Code)})
	}
	return out
}

// Builder returns the builder registered for the pair.
func (r *Registry) Builder(device string, code byte) (Builder, bool) {
	idx, ok := r.builderIdx[pairKey{device: device, code: code}]
	if !ok {
		return Builder{}, false
	}
	return r.builders[idx], true
}
