package adeunis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/generic"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/store"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestCodec(t *testing.T) (*Codec, *store.MemoryStorage) {
	t.Helper()
	mem := store.NewMemoryStorage()
	return NewCodec(Options{Storage: mem, Logger: quietLogger()}), mem
}

func TestDecodeInvalidDoesNotTouchStorage(t *testing.T) {
	codec, mem := newTestCodec(t)
	for _, raw := range []string{
		"", "1", "10", "zz00", "123",
		"43 40 01 00", "4340_0100", "4340|0100", "43400100f40200f1\n",
	} {
		c, err := codec.Decode(context.Background(), raw, DecodeOptions{DeviceID: "dev"})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"type": content.TypeInvalid}, c.Map(), raw)
	}
	require.Empty(t, mem.Keys(""))
}

func TestDecodeLearnsDeviceTypeAndConfiguration(t *testing.T) {
	ctx := context.Background()
	codec, mem := newTestCodec(t)

	_, err := codec.Decode(ctx, "100001016705464602", DecodeOptions{DeviceID: "dc-1"})
	require.NoError(t, err)
	cfg, _, _ := mem.GetItem(ctx, "dc-1.configuration")
	require.Equal(t, "100001016705464602", cfg)
	_, ok, _ := mem.GetItem(ctx, "dc-1.deviceType")
	require.False(t, ok, "0x10 is shared by several families")

	_, err = codec.Decode(ctx, "4040000100000000000001", DecodeOptions{DeviceID: "dc-1"})
	require.NoError(t, err)
	dev, _, _ := mem.GetItem(ctx, "dc-1.deviceType")
	require.Equal(t, "dc", dev)

	// The family is now known, so the shared code decodes with dc's layout.
	c, err := codec.Decode(ctx, "100001016705464601", DecodeOptions{DeviceID: "dc-1"})
	require.NoError(t, err)
	require.Equal(t, "0x10 Dry Contacts configuration", c.Type())
	product, err := Fields(c).String("product_mode")
	require.NoError(t, err)
	require.Equal(t, "PRODUCTION", product)
}

func TestDecodePlaceholderDevice(t *testing.T) {
	ctx := context.Background()
	codec, mem := newTestCodec(t)
	_, err := codec.Decode(ctx, "43400100f40200f1", DecodeOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"tmpDevId.deviceType"}, mem.Keys(""))
}

func TestDecodeKeyOrder(t *testing.T) {
	codec, _ := newTestCodec(t)
	c, err := codec.Decode(context.Background(), "43400100f40200f1", DecodeOptions{DeviceID: "t"})
	require.NoError(t, err)
	require.Equal(t, []string{
		"type",
		"frame_counter", "hardware_error", "low_battery", "configuration_done",
		"ambient_probe_alarm", "remote_probe_alarm",
		"ambient_probe_id", "ambient_temperature_celsius_degrees",
		"remote_probe_id", "remote_temperature_celsius_degrees",
	}, c.Keys())
}

func TestSetDeviceTypeOverrides(t *testing.T) {
	ctx := context.Background()
	codec, _ := newTestCodec(t)
	require.NoError(t, codec.SetDeviceType(ctx, "temp", "t-2"))
	c, err := codec.Decode(ctx, "102090010003000302020a", DecodeOptions{DeviceID: "t-2"})
	require.NoError(t, err)
	require.Equal(t, "0x10 Temperature configuration", c.Type())
	require.True(t, c.Has("ambient_probe_alarm"))
}

func TestClearStoredData(t *testing.T) {
	ctx := context.Background()
	codec, mem := newTestCodec(t)
	_, err := codec.Decode(ctx, "100021c000010001012c", DecodeOptions{DeviceID: "c"})
	require.NoError(t, err)
	require.NoError(t, codec.SetDeviceType(ctx, "comfort", "c"))
	require.NoError(t, codec.SetDeviceType(ctx, "motion", "m"))
	require.NoError(t, codec.ClearStoredData(ctx, "c"))
	require.Equal(t, []string{"m.deviceType"}, mem.Keys(""))
}

func TestDecodeAfterClearMatchesFreshDevice(t *testing.T) {
	ctx := context.Background()
	const data = "4040000100000000000001"
	codec, _ := newTestCodec(t)

	fresh, err := codec.Decode(ctx, data, DecodeOptions{DeviceID: "fresh"})
	require.NoError(t, err)

	_, err = codec.Decode(ctx, "100001016705464602", DecodeOptions{DeviceID: "dc"})
	require.NoError(t, err)
	withConfig, err := codec.Decode(ctx, data, DecodeOptions{DeviceID: "dc"})
	require.NoError(t, err)
	require.NotEmpty(t, cmp.Diff(fresh.Map(), withConfig.Map()), "stored configuration changes the data frame")

	require.NoError(t, codec.ClearStoredData(ctx, "dc"))
	cleared, err := codec.Decode(ctx, data, DecodeOptions{DeviceID: "dc"})
	require.NoError(t, err)
	if diff := cmp.Diff(fresh.Map(), cleared.Map()); diff != "" {
		t.Fatalf("decode after clear differs from a fresh device (-fresh +cleared):\n%s", diff)
	}
}

func TestDecodeRepeaterAcknowledgements(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		raw string
		typ string
	}{
		{raw: "0130", typ: "0x01 Repeater return mode"},
		{raw: "0330", typ: "0x03 Repeater WL validation"},
	} {
		codec, mem := newTestCodec(t)
		require.Equal(t, []string{"repeater"}, codec.FindDeviceTypes(tc.raw), tc.raw)

		c, err := codec.Decode(ctx, tc.raw, DecodeOptions{DeviceID: "r"})
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"type":          tc.typ,
			"frame_counter": 3,
			"low_battery":   false,
		}, c.Map(), tc.raw)

		dev, ok, err := mem.GetItem(ctx, "r.deviceType")
		require.NoError(t, err)
		require.True(t, ok, tc.raw)
		require.Equal(t, "repeater", dev)
	}
}

func TestDecodeUnknownDeviceAmbiguousCode(t *testing.T) {
	codec, _ := newTestCodec(t)
	c, err := codec.Decode(context.Background(), "3000", DecodeOptions{DeviceID: "x"})
	require.NoError(t, err)
	require.Equal(t, "0x30 Keep alive", c.Type())
	require.False(t, c.Has("configuration_inconsistency"), "family interpreters need a known device")
}

func TestDecodeStorageFailure(t *testing.T) {
	boom := errors.New("disk gone")
	codec := NewCodec(Options{Storage: brokenStorage{err: boom}, Logger: quietLogger()})
	_, err := codec.Decode(context.Background(), "43400100f40200f1", DecodeOptions{DeviceID: "t"})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, codec.ClearStoredData(context.Background(), "t"), boom)
}

type brokenStorage struct{ err error }

func (b brokenStorage) GetItem(context.Context, string) (string, bool, error) { return "", false, b.err }
func (b brokenStorage) SetItem(context.Context, string, string) error         { return b.err }
func (b brokenStorage) RemoveItem(context.Context, string) error              { return b.err }

func TestInterpreterPanicIsCaptured(t *testing.T) {
	reg := driver.MustNewRegistry(
		generic.Family(),
		driver.Family{
			Name: "faulty",
			Interpreters: []driver.Interpreter{
				{Name: "faulty data", Device: driver.Device("faulty"), Code: driver.Code(0x60),
					Interpret: func(_, _ frame.Frame, _ frame.Network) (content.Content, error) {
						panic("index out of range")
					}},
			},
		},
	)
	codec := newCodec(reg, Options{Logger: quietLogger()})
	c, err := codec.Decode(context.Background(), "6020", DecodeOptions{DeviceID: "f"})
	require.NoError(t, err)
	msg, err := Fields(c).String("error")
	require.NoError(t, err)
	require.Contains(t, msg, "faulty data panicked")
	counter, err := Fields(c).Int("frame_counter")
	require.NoError(t, err)
	require.Equal(t, int64(1), counter, "sibling interpreters still run")
	require.NotEqual(t, content.TypeUnsupported, c.Type())
}

func TestEncode(t *testing.T) {
	codec, _ := newTestCodec(t)
	hex, err := codec.Encode("comfort", 0x10, NetworkUnknown, map[string]any{"readingFrequency": 2400})
	require.NoError(t, err)
	require.Equal(t, "100000000000000104b0", hex)

	hex, err = codec.Encode("dc", 0x10, NetworkLoRa868, map[string]any{"channel1Output": true})
	require.NoError(t, err)
	require.Equal(t, "100000000701010100", hex)

	hex, err = codec.Encode("comfort", 0x10, NetworkUnknown, map[string]any{"readingFrequency": 131071})
	require.NoError(t, err)
	require.Equal(t, "1000000000000001ffff", hex)
}

func TestEncodeErrors(t *testing.T) {
	codec, _ := newTestCodec(t)
	_, err := codec.Encode("comfort", 0x4c, NetworkUnknown, nil)
	require.ErrorIs(t, err, ErrUnsupportedFrame)
	_, err = codec.Encode("comfort", 0x110, NetworkUnknown, nil)
	require.ErrorIs(t, err, ErrUnsupportedFrame)
	_, err = codec.Encode("nope", 0x10, NetworkUnknown, nil)
	require.ErrorIs(t, err, ErrUnsupportedFrame)
	_, err = codec.Encode("dc", 0x10, NetworkUnknown, map[string]any{"channel1Output": "yes"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetInputDataTypes(t *testing.T) {
	codec, _ := newTestCodec(t)
	fields, err := codec.GetInputDataTypes("pulse", 0x10)
	require.NoError(t, err)
	require.Equal(t, []InputField{driver.BoolField("historicLogEvery1h", false)}, fields)

	_, err = codec.GetInputDataTypes("pulse", 0x46)
	require.ErrorIs(t, err, ErrUnsupportedFrame)
}

func TestFindDeviceTypes(t *testing.T) {
	codec, _ := newTestCodec(t)
	require.Equal(t, []string{"comfort"}, codec.FindDeviceTypes("4c00"))
	require.Equal(t, []string{"any", "dc", "pulse", "temp", "comfort", "motion", "deltap"}, codec.FindDeviceTypes("1000"))
	require.Equal(t, []string{}, codec.FindDeviceTypes("zz"))
	require.Equal(t, []string{}, codec.FindDeviceTypes("9900"))
}

func TestSupportedPairs(t *testing.T) {
	codec, _ := newTestCodec(t)
	require.Contains(t, codec.GetSupportedDecode(), Pair{DeviceType: "motion", FrameCode: 0x50})
	require.Contains(t, codec.GetSupportedEncode(), Pair{DeviceType: "repeater", FrameCode: 0x05})
}

func TestConcurrentDecode(t *testing.T) {
	codec, mem := newTestCodec(t)
	frames := []string{"100001016705464602", "4040000100000000000001", "3008", "43400100f40200f1"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("dev-%d", i%3)
			for _, raw := range frames {
				if _, err := codec.Decode(context.Background(), raw, DecodeOptions{DeviceID: id}); err != nil {
					t.Error(err)
				}
			}
		}(i)
	}
	wg.Wait()
	require.Len(t, mem.Keys(""), 6)
}
