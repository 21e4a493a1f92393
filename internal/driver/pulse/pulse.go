// Package pulse interprets frames of the pulse counter, a two channel meter
// reader with leakage and fraud detection.
package pulse

import (
	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// Tag is the device type of the pulse counter.
const Tag = "pulse"

const (
	CodeConfiguration        byte = 0x10
	CodeLeakageConfiguration byte = 0x11
	CodeDailyConfiguration   byte = 0x12
	CodeKeepAlive            byte = 0x30
	CodeData                 byte = 0x46
	CodeAlarm                byte = 0x47
	CodeHistoricData         byte = 0x48
)

// Configuration frame lengths per network.
const (
	configurationLenLoRa   = 22
	configurationLenSigfox = 9
)

var historicModes = []string{"no_historic", "historic_log_every_10min", "historic_log_every_1h"}

var debouncingPeriods = []string{
	"no_debounce", "1msec", "10msec", "20msec", "50msec", "100msec", "200msec", "500msec",
	"1s", "2s", "5s", "10s",
}

var keepAliveAlarms = []common.FlagDef{
	{Mask: 0x01, Key: "channelA_flow_alarm"},
	{Mask: 0x02, Key: "channelB_flow_alarm"},
	{Mask: 0x04, Key: "channelA_fraud_alarm"},
	{Mask: 0x08, Key: "channelB_fraud_alarm"},
	{Mask: 0x10, Key: "channelA_leakage_alarm"},
	{Mask: 0x20, Key: "channelB_leakage_alarm"},
}

// Family returns the pulse interpreters and builders.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name: Tag,
		Interpreters: []driver.Interpreter{
			{Name: "pulse configuration", Device: dev, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "pulse leakage configuration", Device: dev, Code: driver.Code(CodeLeakageConfiguration), Interpret: LeakageConfiguration},
			{Name: "pulse daily configuration", Device: dev, Code: driver.Code(CodeDailyConfiguration), Interpret: DailyConfiguration},
			{Name: "pulse keep alive", Device: dev, Code: driver.Code(CodeKeepAlive), Interpret: KeepAlive},
			{Name: "pulse data", Device: dev, Code: driver.Code(CodeData), Interpret: Data},
			{Name: "pulse alarm", Device: dev, Code: driver.Code(CodeAlarm), Interpret: Alarm},
			{Name: "pulse historic data", Device: dev, Code: driver.Code(CodeHistoricData), Interpret: HistoricData},
		},
		Builders: []driver.Builder{configurationBuilder()},
	}
}

func inferNetworkFromConfiguration(length int) frame.Network {
	switch length {
	case configurationLenLoRa:
		return frame.NetworkLoRa868
	case configurationLenSigfox:
		return frame.NetworkSigfox
	default:
		return frame.NetworkUnknown
	}
}

// Configuration decodes the pulse configuration frame. The period register
// is one byte on Sigfox and two on LoRa, which shifts every later field; when
// the network is not given it is inferred from the frame length. On LoRa the
// frame also carries the leakage and daily period blocks.
func Configuration(f, _ frame.Frame, nw frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x10 Pulse configuration")
	c.Set("product_mode", common.ProductModeText(r.Uint8(2)))

	known := nw
	if !known.Known() {
		known = inferNetworkFromConfiguration(f.Len())
	}

	testMode := r.Uint8(8) == common.ProductModeTest
	off := 0
	switch {
	case testMode && known == frame.NetworkSigfox:
		c.Set("transmission_period_sec", r.Uint8(3)*20)
		off = -1
	case testMode:
		c.Set("transmission_period_sec", r.Uint16(3)*20)
	case known == frame.NetworkSigfox:
		c.Set("transmission_period_min", r.Uint8(3)*10)
		off = -1
	default:
		c.Set("transmission_period_min", r.Uint16(3))
	}

	channels := byte(r.Uint8(off + 5))
	c.Set("channelA_configuration_state", stateText(channels&0x01 != 0))
	c.Set("channelA_configuration_type", typeText(channels&0x02 != 0))
	c.Set("channelA_configuration_tamper_activated", channels&0x08 != 0)
	c.Set("channelB_configuration_state", stateText(channels&0x10 != 0))
	c.Set("channelB_configuration_type", typeText(channels&0x20 != 0))
	c.Set("channelB_configuration_tamper_activated", channels&0x80 != 0)

	c.Set("historic_mode", common.Text(historicModes, r.Uint8(off+6)))
	debounce := r.Uint8(off + 7)
	c.Set("channelA_configuration_debouncing_period", common.Text(debouncingPeriods, debounce&0x0f))
	c.Set("channelB_configuration_debouncing_period", common.Text(debouncingPeriods, (debounce&0xf0)>>4))

	if testMode {
		c.Set("flow_calculation_period_sec", r.Uint16(off+8)*20)
	} else {
		c.Set("flow_calculation_period_min", r.Uint16(off+8))
	}

	switch known {
	case frame.NetworkLoRa868:
		leakageThresholds(r, &c, 10)
		dailyPeriods(r, &c, 18)
	case frame.NetworkSigfox:
		// thresholds travel in separate 0x11 and 0x12 frames
	default:
		c.SetReason(content.ReasonMissingNetwork)
	}
	return common.Finish(r, c)
}

func stateText(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func typeText(gas bool) string {
	if gas {
		return "gas_pull_up_on"
	}
	return "other_pull_up_off"
}

func leakageThresholds(r *frame.Reader, c *content.Content, off int) {
	c.Set("channelA_leakage_detection_overflow_alarm_trigger_threshold", r.Uint16(off))
	c.Set("channelB_leakage_detection_overflow_alarm_trigger_threshold", r.Uint16(off+2))
	c.Set("channelA_leakage_detection_threshold", r.Uint16(off+4))
	c.Set("channelB_leakage_detection_threshold", r.Uint16(off+6))
}

func dailyPeriods(r *frame.Reader, c *content.Content, off int) {
	c.Set("channelA_leakage_detection_daily_periods_below_which_leakage_alarm_triggered", r.Uint16(off))
	c.Set("channelB_leakage_detection_daily_periods_below_which_leakage_alarm_triggered", r.Uint16(off+2))
}

// LeakageConfiguration decodes the leakage detection thresholds.
func LeakageConfiguration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x11 Pulse configuration")
	leakageThresholds(r, &c, 2)
	return common.Finish(r, c)
}

// DailyConfiguration decodes the daily leakage periods.
func DailyConfiguration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x12 Pulse configuration")
	dailyPeriods(r, &c, 2)
	return common.Finish(r, c)
}

// KeepAlive decodes alarm states and the last 24h flow extremes.
func KeepAlive(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x30 Pulse keep alive")
	common.SetFlags(&c, byte(r.Uint8(2)), keepAliveAlarms)
	c.Set("channelA_last_24h_max_flow", r.Uint16(3))
	c.Set("channelB_last_24h_max_flow", r.Uint16(5))
	c.Set("channelA_last_24h_min_flow", r.Uint16(7))
	c.Set("channelB_last_24h_min_flow", r.Uint16(9))
	return common.Finish(r, c)
}

// Data decodes the current channel indexes.
func Data(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x46 Pulse data")
	c.Set("channelA_index", r.Uint32(2))
	c.Set("channelB_index", r.Uint32(6))
	return common.Finish(r, c)
}

// Alarm decodes the flows measured when an overflow occurred.
func Alarm(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x47 Pulse alarm")
	c.Set("channelA_flow", r.Uint16(2))
	c.Set("channelB_flow", r.Uint16(4))
	return common.Finish(r, c)
}
