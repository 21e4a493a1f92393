// Package comfort interprets frames of the temperature and humidity comfort
// sensor.
package comfort

import (
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/driver/smartbuilding"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/records"
)

// Tag is the device type of the comfort sensor.
const Tag = "comfort"

const (
	CodeConfiguration         byte = 0x10
	CodeChannelsConfiguration byte = 0x1f
	CodeKeepAlive             byte = 0x30
	CodeData                  byte = 0x4c
	CodeAlarm                 byte = 0x4d
	CodeTOR1Alarm             byte = 0x51
	CodeTOR2Alarm             byte = 0x52
)

const temperatureScale = 10.0

// history holds the past temperature (int16) and humidity (uint8) samples.
var history = records.Series{Start: 5, Stride: 3}

// Family returns the comfort sensor interpreters and builders.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name: Tag,
		Interpreters: []driver.Interpreter{
			{Name: "comfort status byte", Device: dev, Code: driver.AnyCode, Interpret: smartbuilding.ConfigurationInconsistency},
			{Name: "comfort configuration", Device: dev, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "comfort channels configuration", Device: dev, Code: driver.Code(CodeChannelsConfiguration),
				Interpret: smartbuilding.Typed("0x1f Comfort channels configuration", smartbuilding.ChannelsConfiguration)},
			{Name: "comfort keep alive", Device: dev, Code: driver.Code(CodeKeepAlive), Interpret: smartbuilding.KeepAlive},
			{Name: "comfort data", Device: dev, Code: driver.Code(CodeData), Interpret: Data},
			{Name: "comfort alarm", Device: dev, Code: driver.Code(CodeAlarm), Interpret: Alarm},
			{Name: "comfort TOR1 alarm", Device: dev, Code: driver.Code(CodeTOR1Alarm),
				Interpret: smartbuilding.Typed("0x51 Comfort TOR1 alarm", smartbuilding.Alarm)},
			{Name: "comfort TOR2 alarm", Device: dev, Code: driver.Code(CodeTOR2Alarm),
				Interpret: smartbuilding.Typed("0x52 Comfort TOR2 alarm", smartbuilding.Alarm)},
		},
		Builders: []driver.Builder{smartbuilding.ReadingFrequencyBuilder(Tag)},
	}
}

// Configuration decodes the sampling and transmission periods.
func Configuration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x10 Comfort configuration")
	keepAlive, historization, sampling, period := r.Uint16(2), r.Uint16(4), r.Uint16(6), r.Uint16(8)
	c.Set("transmission_period_keep_alive_sec", keepAlive*10)
	c.Set("number_of_historization_before_sending", historization)
	c.Set("number_of_sampling_before_historization", sampling)
	c.Set("sampling_period_sec", period*2)
	c.Set("calculated_period_recording_sec", period*sampling*2)
	c.Set("calculated_period_sending_sec", period*sampling*historization*2)
	return common.Finish(r, c)
}

// Data decodes the current readings followed by the historized samples,
// newest first.
func Data(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x4c Comfort data")
	c.Set("instantaneous_temperature_celsius_degrees", float64(r.Int16(2))/temperatureScale)
	c.Set("humidity_current_percentage", r.Uint8(4))
	history.Each(f.Len(), func(i, off int) {
		c.Set(fmt.Sprintf("temperature_%s_celsius_degrees", common.Historic(i)), float64(r.Int16(off))/temperatureScale)
		c.Set(fmt.Sprintf("humidity_%s_percentage", common.Historic(i)), r.Uint8(off+2))
	})
	return common.Finish(r, c)
}

// Alarm decodes the threshold alarm states with the triggering readings.
func Alarm(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x4d Comfort alarm")
	c.Set("alarm_status_temperature", r.Uint8(2)>>4&1)
	c.Set("alarm_status_humidity", r.Uint8(3)&1)
	c.Set("temperature_celsius_degrees", float64(r.Int16(3))/temperatureScale)
	c.Set("humidity_percentage", r.Uint8(5))
	return common.Finish(r, c)
}
