// Package motion interprets frames of the presence and luminosity sensor.
package motion

import (
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/driver/smartbuilding"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/records"
)

// Tag is the device type of the motion sensor.
const Tag = "motion"

const (
	CodeConfiguration         byte = 0x10
	CodeChannelsConfiguration byte = 0x1f
	CodeKeepAlive             byte = 0x30
	CodeData                  byte = 0x4e
	CodePresenceAlarm         byte = 0x4f
	CodeLuminosityAlarm       byte = 0x50
	CodeTOR1Alarm             byte = 0x51
	CodeTOR2Alarm             byte = 0x52
)

// history holds the past presence counters (uint16) and luminosity (uint8).
var history = records.Series{Start: 7, Stride: 3}

// Family returns the motion sensor interpreters and builders.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name: Tag,
		Interpreters: []driver.Interpreter{
			{Name: "motion status byte", Device: dev, Code: driver.AnyCode, Interpret: smartbuilding.ConfigurationInconsistency},
			{Name: "motion configuration", Device: dev, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "motion channels configuration", Device: dev, Code: driver.Code(CodeChannelsConfiguration),
				Interpret: smartbuilding.Typed("0x1f Motion channels configuration", smartbuilding.ChannelsConfiguration)},
			{Name: "motion keep alive", Device: dev, Code: driver.Code(CodeKeepAlive), Interpret: smartbuilding.KeepAlive},
			{Name: "motion data", Device: dev, Code: driver.Code(CodeData), Interpret: Data},
			{Name: "motion presence alarm", Device: dev, Code: driver.Code(CodePresenceAlarm), Interpret: PresenceAlarm},
			{Name: "motion luminosity alarm", Device: dev, Code: driver.Code(CodeLuminosityAlarm), Interpret: LuminosityAlarm},
			{Name: "motion TOR1 alarm", Device: dev, Code: driver.Code(CodeTOR1Alarm),
				Interpret: smartbuilding.Typed("0x51 Motion TOR1 alarm", smartbuilding.Alarm)},
			{Name: "motion TOR2 alarm", Device: dev, Code: driver.Code(CodeTOR2Alarm),
				Interpret: smartbuilding.Typed("0x52 Motion TOR2 alarm", smartbuilding.Alarm)},
		},
		Builders: []driver.Builder{smartbuilding.ReadingFrequencyBuilder(Tag)},
	}
}

// Configuration decodes the sampling periods and the detector inhibition.
// Unlike the comfort sensor the keep alive period is already in seconds.
func Configuration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x10 Motion configuration")
	historization, sampling, period := r.Uint16(4), r.Uint16(6), r.Uint16(8)
	c.Set("transmission_period_keep_alive_sec", r.Uint16(2))
	c.Set("number_of_historization_before_sending", historization)
	c.Set("number_of_sampling_before_historization", sampling)
	c.Set("sampling_period_sec", period*2)
	c.Set("presence_detector_inhibition_duration_sec", r.Uint16(10)*10)
	c.Set("calculated_period_recording_sec", period*sampling*2)
	c.Set("calculated_period_sending_sec", period*sampling*historization*2)
	return common.Finish(r, c)
}

// Data decodes presence counters and luminosity with their history.
func Data(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x4e Motion data")
	c.Set("presence_global_counter", r.Uint16(2))
	c.Set("presence_current_counter", r.Uint16(4))
	c.Set("luminosity_current_percentage", r.Uint8(6))
	history.Each(f.Len(), func(i, off int) {
		c.Set(fmt.Sprintf("presence_%s_counter", common.Historic(i)), r.Uint16(off))
		c.Set(fmt.Sprintf("luminosity_%s_percentage", common.Historic(i)), r.Uint8(off+2))
	})
	return common.Finish(r, c)
}

// PresenceAlarm decodes the presence counters sent on alarm.
func PresenceAlarm(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x4f Motion presence alarm")
	c.Set("presence_global_counter", r.Uint16(2))
	c.Set("presence_counter_since_last_alarm", r.Uint16(4))
	return common.Finish(r, c)
}

// LuminosityAlarm decodes the luminosity threshold alarm.
func LuminosityAlarm(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x50 Motion luminosity alarm")
	status := "inactive"
	if r.Uint8(2) != 0 {
		status = "active"
	}
	c.Set("luminosity_alarm_status", status)
	c.Set("luminosity_percentage", r.Uint8(3))
	return common.Finish(r, c)
}
