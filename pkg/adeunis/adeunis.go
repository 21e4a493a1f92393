// Package adeunis decodes uplink frames and encodes downlink frames of the
// LoRaWAN and Sigfox sensor range. A Codec remembers, per device, the
// device type and the last configuration frame so later frames can be
// interpreted in context.
package adeunis

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/catalog"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/store"
)

type (
	// Content is an ordered decoding result.
	Content = content.Content
	// Network is the radio network a frame travelled on.
	Network = frame.Network
	// Pair names a supported (device type, frame code) combination.
	Pair = driver.Pair
	// InputField describes one encoder input.
	InputField = driver.InputField
	// PartialReason explains an incomplete result.
	PartialReason = content.PartialReason
)

const (
	NetworkUnknown = frame.NetworkUnknown
	NetworkLoRa868 = frame.NetworkLoRa868
	NetworkSigfox  = frame.NetworkSigfox
)

var (
	ErrUnsupportedFrame = driver.ErrUnsupportedFrame
	ErrInvalidInput     = driver.ErrInvalidInput
)

// ParseNetwork converts a network name such as "lora868".
func ParseNetwork(s string) (Network, error) {
	return frame.ParseNetwork(s)
}

// Codec decodes and encodes frames. It is safe for concurrent use; state
// updates of one device are serialized.
type Codec struct {
	reg     *driver.Registry
	devices *store.DeviceStore
	log     logrus.FieldLogger
}

// NewCodec returns a codec over every supported device family.
func NewCodec(opts Options) *Codec {
	return newCodec(catalog.Default(), opts)
}

func newCodec(reg *driver.Registry, opts Options) *Codec {
	opts = opts.withDefaults()
	return &Codec{
		reg:     reg,
		devices: store.NewDeviceStore(opts.Storage, reg, opts.Logger),
		log:     opts.Logger,
	}
}

// Decode interprets an uplink frame given as hex. An unreadable frame yields
// a content of type Invalid. The error is only set when the storage fails.
func (c *Codec) Decode(ctx context.Context, raw string, opts DecodeOptions) (Content, error) {
	f, err := frame.ParseHex(raw)
	if err != nil {
		c.log.WithError(err).Debug("invalid frame")
		return content.Typed(content.TypeInvalid), nil
	}
	id := store.DeviceKey(opts.DeviceID)
	unlock := c.devices.Lock(id)
	defer unlock()

	deviceType, err := c.devices.ResolveDeviceType(ctx, id, f.Code())
	if err != nil {
		return Content{}, err
	}
	if deviceType == "" {
		if deviceType, err = c.devices.DeviceType(ctx, id); err != nil {
			return Content{}, err
		}
	}

	var cfg frame.Frame
	if f.Code() == frame.ConfigurationCode {
		cfg = f
		if _, err := c.devices.StoreConfiguration(ctx, id, f); err != nil {
			return Content{}, err
		}
	} else if cfg, err = c.devices.Configuration(ctx, id); err != nil {
		return Content{}, err
	}

	log := c.log.WithFields(logrus.Fields{
		"device_id":   id,
		"device_type": deviceType,
		"frame_code":  fmt.Sprintf("0x%02x", f.Code()),
	})
	return c.interpret(f, cfg, deviceType, opts.Network, log), nil
}

// DecodeWithConfiguration interprets raw against an explicit configuration
// frame and device type without reading or writing any stored state. An
// empty cfgHex means no configuration is known.
func (c *Codec) DecodeWithConfiguration(raw, cfgHex, deviceType string, nw Network) Content {
	f, err := frame.ParseHex(raw)
	if err != nil {
		return content.Typed(content.TypeInvalid)
	}
	var cfg frame.Frame
	if cfgHex != "" {
		if cfg, err = frame.ParseHex(cfgHex); err != nil {
			c.log.WithError(err).Debug("ignoring invalid configuration")
			cfg = nil
		}
	}
	log := c.log.WithFields(logrus.Fields{
		"device_type": deviceType,
		"frame_code":  fmt.Sprintf("0x%02x", f.Code()),
	})
	return c.interpret(f, cfg, deviceType, nw, log)
}

func (c *Codec) interpret(f, cfg frame.Frame, deviceType string, nw Network, log logrus.FieldLogger) Content {
	active := driver.Select(c.reg, deviceType, f.Code())
	parts := make([]Content, 0, len(active)+1)
	for _, it := range active {
		part, err := run(it, f, cfg, nw)
		if err != nil {
			log.WithError(err).WithField("interpreter", it.Name).Debug("interpreter failed")
			part = content.Failure(err)
		}
		parts = append(parts, part)
	}
	if driver.AllGeneric(active) {
		log.Debug("no interpreter for frame code")
		parts = append(parts, content.Typed(content.TypeUnsupported))
	}
	return content.Merge(parts...)
}

// run calls the interpreter, turning a panic into an error.
func run(it driver.Interpreter, f, cfg frame.Frame, nw Network) (out Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter %s panicked: %v", it.Name, r)
		}
	}()
	return it.Interpret(f, cfg, nw)
}

// Encode builds the downlink frame for the device type and frame code and
// returns it as lower-case hex.
func (c *Codec) Encode(deviceType string, frameCode int, nw Network, input map[string]any) (string, error) {
	b, err := c.builder(deviceType, frameCode)
	if err != nil {
		return "", err
	}
	in, err := b.Resolve(input)
	if err != nil {
		return "", err
	}
	f, err := b.Build(in, nw)
	if err != nil {
		return "", fmt.Errorf("build %s/0x%02x: %w", deviceType, frameCode, err)
	}
	return f.Hex(), nil
}

// GetInputDataTypes describes the inputs Encode accepts for the pair.
func (c *Codec) GetInputDataTypes(deviceType string, frameCode int) ([]InputField, error) {
	b, err := c.builder(deviceType, frameCode)
	if err != nil {
		return nil, err
	}
	out := make([]InputField, len(b.Inputs))
	copy(out, b.Inputs)
	return out, nil
}

func (c *Codec) builder(deviceType string, frameCode int) (driver.Builder, error) {
	if frameCode < 0 || frameCode > 0xff {
		return driver.Builder{}, fmt.Errorf("%w: frame code %d", ErrUnsupportedFrame, frameCode)
	}
	b, ok := c.reg.Builder(deviceType, byte(frameCode))
	if !ok {
		return driver.Builder{}, fmt.Errorf("%w: %s/0x%02x", ErrUnsupportedFrame, deviceType, frameCode)
	}
	return b, nil
}

// GetSupportedDecode lists the pairs the decoder has interpreters for.
func (c *Codec) GetSupportedDecode() []Pair {
	return c.reg.SupportedDecode()
}

// GetSupportedEncode lists the pairs the encoder can build.
func (c *Codec) GetSupportedEncode() []Pair {
	return c.reg.SupportedEncode()
}

// SetDeviceType records the device type of deviceID, overriding whatever
// was inferred from earlier frames.
func (c *Codec) SetDeviceType(ctx context.Context, deviceType, deviceID string) error {
	unlock := c.devices.Lock(deviceID)
	defer unlock()
	return c.devices.SetDeviceType(ctx, deviceID, deviceType)
}

// ClearStoredData forgets the device type and configuration of deviceID.
func (c *Codec) ClearStoredData(ctx context.Context, deviceID string) error {
	unlock := c.devices.Lock(deviceID)
	defer unlock()
	return c.devices.Clear(ctx, deviceID)
}

// FindDeviceTypes lists the device types, "any" included, with an
// interpreter for the frame's code. An unreadable frame yields none.
func (c *Codec) FindDeviceTypes(raw string) []string {
	f, err := frame.ParseHex(raw)
	if err != nil {
		return []string{}
	}
	return c.reg.DeviceTypesFor(f.Code())
}
