// Package smartbuilding interprets the dry-contact (TOR) inputs shared by the
// smart building sensors: channel configuration and the two alarm frames.
package smartbuilding

import (
	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

const (
	CodeChannelsConfiguration byte = 0x1f
	CodeTOR1Alarm             byte = 0x51
	CodeTOR2Alarm             byte = 0x52
)

var channelTypes = []string{"deactivated", "event_on", "event_off", "event_on_off"}

var debounceDurations = []string{
	"no_debounce", "10msec", "20msec", "50msec", "100msec", "200msec", "500msec", "1s",
	"2s", "5s", "10s", "20s", "40s", "60s", "5min", "10min",
}

// Family returns the wildcard smart building interpreters.
func Family() driver.Family {
	return driver.Family{
		Name: "smartbuilding",
		Interpreters: []driver.Interpreter{
			{Name: "smart building channels configuration", Device: driver.AnyDevice, Code: driver.Code(CodeChannelsConfiguration),
				Interpret: Typed("0x1f Smart Building channels configuration", ChannelsConfiguration)},
			{Name: "smart building TOR1 alarm", Device: driver.AnyDevice, Code: driver.Code(CodeTOR1Alarm),
				Interpret: Typed("0x51 Smart Building TOR1 alarm", Alarm)},
			{Name: "smart building TOR2 alarm", Device: driver.AnyDevice, Code: driver.Code(CodeTOR2Alarm),
				Interpret: Typed("0x52 Smart Building TOR2 alarm", Alarm)},
		},
	}
}

// Typed wraps fn so its result carries typ as the type field. Device
// families reuse the shared layouts under their own names this way.
func Typed(typ string, fn driver.InterpretFunc) driver.InterpretFunc {
	return func(f, cfg frame.Frame, nw frame.Network) (content.Content, error) {
		fields, err := fn(f, cfg, nw)
		if err != nil {
			return content.Content{}, err
		}
		return content.Merge(content.Typed(typ), fields), nil
	}
}

// ChannelsConfiguration decodes the configuration of both TOR channels.
func ChannelsConfiguration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.New()
	for i, off := range []int{2, 5} {
		prefix := []string{"channel1", "channel2"}[i]
		b := r.Uint8(off)
		c.Set(prefix+"_configuration_type", common.Text(channelTypes, b&0x0f))
		c.Set(prefix+"_configuration_debounce_duration", common.Text(debounceDurations, (b&0xf0)>>4))
		c.Set(prefix+"_alarm_threshold", r.Uint16(off+1))
	}
	return common.Finish(r, c)
}

// Alarm decodes a TOR alarm: current and previous state plus counters.
func Alarm(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	state := r.Uint8(2)
	c := content.New()
	c.Set("alarm_status_tor_previous_frame", state>>1&1)
	c.Set("alarm_status_tor_current", state&1)
	c.Set("global_digital_counter", r.Uint32(3))
	c.Set("instantaneous_digital_counter", r.Uint16(7))
	return common.Finish(r, c)
}
