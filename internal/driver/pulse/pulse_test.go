package pulse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

const (
	loraConfiguration10min = "1020010003010122003c000000000000000000020001"
	loraConfiguration1h    = "1020010003010222003c000000000000000000020001"
	loraHistoric1h         = "48200000000127000000600000000000000000000000000000000000000000"
	loraHistoric1dFrame1   = "482001000001270000006000000000000000000000000000000000000000000000000000000000000000000000000000000000"
)

func TestConfigurationLoRa(t *testing.T) {
	c, err := Configuration(frame.MustParseHex(loraConfiguration10min), nil, frame.NetworkLoRa868)
	require.NoError(t, err)
	want := map[string]any{
		"type":                                     "0x10 Pulse configuration",
		"product_mode":                             "PRODUCTION",
		"transmission_period_min":                  3,
		"channelA_configuration_state":             "enabled",
		"channelA_configuration_type":              "other_pull_up_off",
		"channelA_configuration_tamper_activated":  false,
		"channelB_configuration_state":             "disabled",
		"channelB_configuration_type":              "other_pull_up_off",
		"channelB_configuration_tamper_activated":  false,
		"historic_mode":                            "historic_log_every_10min",
		"channelA_configuration_debouncing_period": "10msec",
		"channelB_configuration_debouncing_period": "10msec",
		"flow_calculation_period_min":              60,
		"channelA_leakage_detection_overflow_alarm_trigger_threshold":                  0,
		"channelB_leakage_detection_overflow_alarm_trigger_threshold":                  0,
		"channelA_leakage_detection_threshold":                                         0,
		"channelB_leakage_detection_threshold":                                         0,
		"channelA_leakage_detection_daily_periods_below_which_leakage_alarm_triggered": 2,
		"channelB_leakage_detection_daily_periods_below_which_leakage_alarm_triggered": 1,
	}
	require.Equal(t, want, c.Map())

	c, err = Configuration(frame.MustParseHex(loraConfiguration1h), nil, frame.NetworkLoRa868)
	require.NoError(t, err)
	v, _ := c.Get("historic_mode")
	require.Equal(t, "historic_log_every_1h", v)
}

func TestConfigurationInfersNetworkFromLength(t *testing.T) {
	c, err := Configuration(frame.MustParseHex(loraConfiguration10min), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	require.Equal(t, content.ReasonNone, c.Reason())
	require.True(t, c.Has("channelA_leakage_detection_threshold"))

	// 9 bytes is the sigfox layout: one byte period, fields shifted by one.
	c, err = Configuration(frame.MustParseHex("102001030101220a00"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	v, _ := c.Get("transmission_period_min")
	require.Equal(t, 30, v)
	v, _ = c.Get("historic_mode")
	require.Equal(t, "historic_log_every_10min", v)
	v, _ = c.Get("flow_calculation_period_min")
	require.Equal(t, 0x0a00, v)
	require.False(t, c.Has("channelA_leakage_detection_threshold"))

	c, err = Configuration(frame.MustParseHex("102001000301012200"), nil, frame.NetworkLoRa868)
	require.ErrorIs(t, err, frame.ErrTruncated)

	c, err = Configuration(frame.MustParseHex("1020010003010122003c00"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	require.Equal(t, content.ReasonMissingNetwork, c.Reason())
}

func TestLeakageAndDailyConfiguration(t *testing.T) {
	c, err := LeakageConfiguration(frame.MustParseHex("11000000000000000000"), nil, frame.NetworkSigfox)
	require.NoError(t, err)
	require.Equal(t, "0x11 Pulse configuration", c.Type())

	c, err = DailyConfiguration(frame.MustParseHex("120000000000"), nil, frame.NetworkSigfox)
	require.NoError(t, err)
	require.Equal(t, "0x12 Pulse configuration", c.Type())
}

func TestKeepAlive(t *testing.T) {
	c, err := KeepAlive(frame.MustParseHex("30e0010f7800000f780000"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"type":                       "0x30 Pulse keep alive",
		"channelA_flow_alarm":        true,
		"channelB_flow_alarm":        false,
		"channelA_fraud_alarm":       false,
		"channelB_fraud_alarm":       false,
		"channelA_leakage_alarm":     false,
		"channelB_leakage_alarm":     false,
		"channelA_last_24h_max_flow": 3960,
		"channelB_last_24h_max_flow": 0,
		"channelA_last_24h_min_flow": 3960,
		"channelB_last_24h_min_flow": 0,
	}, c.Map())
}

func TestDataAndAlarm(t *testing.T) {
	c, err := Data(frame.MustParseHex("46800000009f00000002"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	v, _ := c.Get("channelA_index")
	require.Equal(t, 159, v)
	v, _ = c.Get("channelB_index")
	require.Equal(t, 2, v)

	c, err = Alarm(frame.MustParseHex("4720000a0014"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	v, _ = c.Get("channelB_flow")
	require.Equal(t, 20, v)
}

func TestHistoric1hWithoutConfiguration(t *testing.T) {
	c, err := HistoricData(frame.MustParseHex(loraHistoric1h), nil, frame.NetworkLoRa868)
	require.NoError(t, err)
	require.Equal(t, "0x48 Pulse historic data", c.Type())
	fields := c.Map()
	require.Equal(t, 0, fields["frame_index"])
	require.Equal(t, 295, fields["channelA_index_10min_after_previous_frame"])
	require.Equal(t, 96, fields["channelB_index_10min_after_previous_frame"])
	for from := 10; from <= 50; from += 10 {
		for _, ch := range []string{"A", "B"} {
			key := fmt.Sprintf("channel%s_delta_%dmin_to_%dmin_after_previous_frame", ch, from, from+10)
			require.Equal(t, 0, fields[key], key)
		}
	}
	require.Len(t, fields, 2+2+10)
}

func TestHistoric1hWithConfiguration(t *testing.T) {
	c, err := HistoricData(frame.MustParseHex(loraHistoric1h), frame.MustParseHex(loraConfiguration10min), frame.NetworkLoRa868)
	require.NoError(t, err)
	require.True(t, c.Has("channelA_delta_50min_to_60min_after_previous_frame"))
}

func TestHistoric1dSecondFrame(t *testing.T) {
	c, err := HistoricData(frame.MustParseHex(loraHistoric1dFrame1), frame.MustParseHex(loraConfiguration1h), frame.NetworkLoRa868)
	require.NoError(t, err)
	fields := c.Map()
	require.Equal(t, 1, fields["frame_index"])
	require.Equal(t, 0, fields["channelA_delta_11h_to_12h_after_previous_frame"])
	require.Equal(t, 295, fields["channelB_delta_11h_to_12h_after_previous_frame"])
	require.Equal(t, 96, fields["channelB_delta_12h_to_13h_after_previous_frame"])
	require.Contains(t, fields, "channelB_delta_22h_to_23h_after_previous_frame")
	require.NotContains(t, fields, "channelA_index_1h_after_previous_frame")
}

func TestHistoric1dLastFrame(t *testing.T) {
	c, err := HistoricData(frame.MustParseHex("48200200050006"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	v, _ := c.Get("channelA_delta_23h_to_24h_after_previous_frame")
	require.Equal(t, 5, v)
	v, _ = c.Get("channelB_delta_23h_to_24h_after_previous_frame")
	require.Equal(t, 6, v)
}

func TestHistoricMissingContext(t *testing.T) {
	// 11 bytes: sigfox, but the historic mode is unknown without configuration.
	c, err := HistoricData(frame.MustParseHex("4820000000012700000060"), nil, frame.NetworkUnknown)
	require.NoError(t, err)
	require.Equal(t, content.ReasonMissingConfiguration, c.Reason())
	require.Equal(t, []string{"type", "frame_index", "partialDecodingReason"}, c.Keys())

	// Historic mode from configuration but no way to tell the network.
	c, err = HistoricData(frame.MustParseHex("482000000001270000006000000000"), frame.MustParseHex(loraConfiguration10min), frame.NetworkUnknown)
	require.NoError(t, err)
	require.Equal(t, content.ReasonMissingNetwork, c.Reason())
	require.True(t, c.Has("channelA_index_10min_after_previous_frame"))
	require.False(t, c.Has("channelA_delta_10min_to_20min_after_previous_frame"))
}

func TestHistoricSigfox1h(t *testing.T) {
	c, err := HistoricData(frame.MustParseHex("48200200010002"), frame.MustParseHex(loraConfiguration10min), frame.NetworkSigfox)
	require.NoError(t, err)
	v, _ := c.Get("channelA_delta_30min_to_40min_after_previous_frame")
	require.Equal(t, 1, v)
	v, _ = c.Get("channelB_delta_30min_to_40min_after_previous_frame")
	require.Equal(t, 2, v)
}

func TestBuilder(t *testing.T) {
	b := configurationBuilder()
	for _, tc := range []struct {
		in   map[string]any
		want string
	}{
		{in: map[string]any{"historicLogEvery1h": false}, want: "10000000000001000000000000000000000000000000"},
		{in: map[string]any{"historicLogEvery1h": true}, want: "10000000000002000000000000000000000000000000"},
		{in: map[string]any{}, want: "10000000000001000000000000000000000000000000"},
	} {
		in, err := b.Resolve(tc.in)
		require.NoError(t, err)
		f, err := b.Build(in, frame.NetworkUnknown)
		require.NoError(t, err)
		require.Equal(t, tc.want, f.Hex())
	}
	_, err := b.Resolve(map[string]any{"historicLogEvery1h": 1})
	require.ErrorIs(t, err, driver.ErrInvalidInput)
}
