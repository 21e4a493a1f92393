package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/options"
	"github.com/bkkIoT/iotAdeunis/internal/store"
	"github.com/bkkIoT/iotAdeunis/pkg/adeunis"
)

func useMemoryCodec(t *testing.T) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg = options.Default()
	network = adeunis.NetworkUnknown
	deviceID = ""
	codec = adeunis.NewCodec(adeunis.Options{Storage: store.NewMemoryStorage(), Logger: log})
}

func decodedType(t *testing.T, out string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m), out)
	typ, _ := m["type"].(string)
	return typ
}

func TestStripSeparators(t *testing.T) {
	require.Equal(t, "43400100", stripSeparators(" 43 40|01_00\t\n"))
	require.Equal(t, "", stripSeparators(" | _ "))
}

func TestDecodeWritesToCommandOutput(t *testing.T) {
	useMemoryCodec(t)
	var buf bytes.Buffer
	require.NoError(t, runDecode(context.Background(), &buf, "43 40 01 00 f4 02 00 f1"))
	require.Equal(t, "0x43 Temperature data", decodedType(t, buf.String()))

	buf.Reset()
	require.NoError(t, runDecode(context.Background(), &buf, "43zz"))
	require.Equal(t, "Invalid", decodedType(t, buf.String()))
}

func TestInteractiveKeepsDeviceState(t *testing.T) {
	useMemoryCodec(t)
	in := strings.NewReader("10 00 01 01 67 05 46 46 02\n\n40400001|00000000000001\n")
	var buf bytes.Buffer
	require.NoError(t, runInteractive(context.Background(), in, &buf))

	dec := json.NewDecoder(strings.NewReader(strings.ReplaceAll(buf.String(), "> ", "")))
	var results []map[string]any
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		results = append(results, m)
	}
	require.Len(t, results, 2)
	require.Equal(t, "0x40 Dry Contacts data", results[1]["type"])
	require.NotContains(t, results[1], "channelA_event_counter", "configuration from the first line applies")
}

func TestParseFrameCode(t *testing.T) {
	for in, want := range map[string]int{"16": 16, "0x10": 16, "0X4c": 0x4c, "0": 0} {
		got, err := parseFrameCode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := parseFrameCode("ten")
	require.Error(t, err)
}

func TestParseInputKeepsNumbers(t *testing.T) {
	input, err := parseInput(`{"readingFrequency": 2400, "channel1Output": true}`)
	require.NoError(t, err)
	require.Equal(t, json.Number("2400"), input["readingFrequency"])
	require.Equal(t, true, input["channel1Output"])

	_, err = parseInput(`[1, 2]`)
	require.Error(t, err)
}

func TestPrintContent(t *testing.T) {
	c := content.Typed("0x30 Keep alive")
	c.Set("low_battery", true)

	cfg = options.Default()
	var buf bytes.Buffer
	require.NoError(t, printContent(&buf, c))
	require.JSONEq(t, `{"type": "0x30 Keep alive", "low_battery": true}`, buf.String())

	cfg.Output = options.OutputCBOR
	buf.Reset()
	require.NoError(t, printContent(&buf, c))
	data, err := hex.DecodeString(string(bytes.TrimSpace(buf.Bytes())))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, cbor.Unmarshal(data, &decoded))
	require.Equal(t, "0x30 Keep alive", decoded["type"])
	require.Equal(t, true, decoded["low_battery"])
}
