// Package deltap interprets frames of the differential pressure sensor and
// its 0-10 V input.
package deltap

import (
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/driver/smartbuilding"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/records"
)

// Tag is the device type of the delta pressure sensor.
const Tag = "deltap"

const (
	CodeConfiguration         byte = 0x10
	CodeVoltageConfiguration  byte = 0x11
	CodeChannelsConfiguration byte = 0x1f
	CodeKeepAlive             byte = 0x30
	CodeTOR1Alarm             byte = 0x51
	CodeTOR2Alarm             byte = 0x52
	CodePressureData          byte = 0x53
	CodePressureAlarm         byte = 0x54
	CodeVoltageData           byte = 0x55
	CodeVoltageAlarm          byte = 0x56
)

// history holds the past int16 samples of both periodic frames.
var history = records.Series{Start: 4, Stride: 2}

// Family returns the delta pressure interpreters and builders.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name: Tag,
		Interpreters: []driver.Interpreter{
			{Name: "deltap status byte", Device: dev, Code: driver.AnyCode, Interpret: smartbuilding.ConfigurationInconsistency},
			{Name: "deltap configuration", Device: dev, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "deltap 0-10V configuration", Device: dev, Code: driver.Code(CodeVoltageConfiguration), Interpret: VoltageConfiguration},
			{Name: "deltap channels configuration", Device: dev, Code: driver.Code(CodeChannelsConfiguration),
				Interpret: smartbuilding.Typed("0x1f Delta P channels configuration", smartbuilding.ChannelsConfiguration)},
			{Name: "deltap keep alive", Device: dev, Code: driver.Code(CodeKeepAlive), Interpret: smartbuilding.KeepAlive},
			{Name: "deltap TOR1 alarm", Device: dev, Code: driver.Code(CodeTOR1Alarm),
				Interpret: smartbuilding.Typed("0x51 Delta P - TOR1 alarm", smartbuilding.Alarm)},
			{Name: "deltap TOR2 alarm", Device: dev, Code: driver.Code(CodeTOR2Alarm),
				Interpret: smartbuilding.Typed("0x52 Delta P - TOR2 alarm", smartbuilding.Alarm)},
			{Name: "deltap pressure data", Device: dev, Code: driver.Code(CodePressureData),
				Interpret: periodic("0x53 Delta P periodic data", "delta_pressure", "pa")},
			{Name: "deltap pressure alarm", Device: dev, Code: driver.Code(CodePressureAlarm),
				Interpret: alarm("0x54 Delta P alarm", "delta_pressure", "pa")},
			{Name: "deltap 0-10V data", Device: dev, Code: driver.Code(CodeVoltageData),
				Interpret: periodic("0x55 Delta P - periodic 0-10 V", "voltage", "mv")},
			{Name: "deltap 0-10V alarm", Device: dev, Code: driver.Code(CodeVoltageAlarm),
				Interpret: alarm("0x56 Delta P - alarm 0-10 V", "voltage", "mv")},
		},
		Builders: []driver.Builder{smartbuilding.ReadingFrequencyBuilder(Tag)},
	}
}

// Configuration decodes the pressure sampling and transmission periods.
func Configuration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x10 Delta P configuration")
	historization, sampling, period := r.Uint16(4), r.Uint16(6), r.Uint16(8)
	c.Set("transmission_period_keep_alive_sec", r.Uint16(2)*10)
	c.Set("number_of_historization_before_sending", historization)
	c.Set("number_of_sampling_before_historization", sampling)
	c.Set("sampling_period_sec", period*2)
	c.Set("calculated_period_recording_sec", period*sampling*2)
	c.Set("calculated_period_sending_sec", period*sampling*historization*2)
	return common.Finish(r, c)
}

// VoltageConfiguration decodes the 0-10 V input periods. Its registers come
// in a different order than the pressure ones.
func VoltageConfiguration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x11 Delta P 0-10V configuration")
	sampling, period, historization := r.Uint16(2), r.Uint16(4), r.Uint16(6)
	c.Set("number_of_sampling_before_historization", sampling)
	c.Set("sampling_period_sec", period*2)
	c.Set("number_of_historization_before_sending", historization)
	c.Set("calculated_period_recording_sec", sampling*period*2)
	c.Set("calculated_period_sending_sec", sampling*period*historization*2)
	return common.Finish(r, c)
}

// periodic decodes the instantaneous value and its history, e.g.
// instantaneous_voltage_mv then voltage_tminus1_mv.
func periodic(typ, quantity, unit string) driver.InterpretFunc {
	return func(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
		r := frame.NewReader(f)
		c := content.Typed(typ)
		c.Set(fmt.Sprintf("instantaneous_%s_%s", quantity, unit), r.Int16(2))
		history.Each(f.Len(), func(i, off int) {
			c.Set(fmt.Sprintf("%s_%s_%s", quantity, common.Historic(i), unit), r.Int16(off))
		})
		return common.Finish(r, c)
	}
}

func alarm(typ, quantity, unit string) driver.InterpretFunc {
	return func(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
		r := frame.NewReader(f)
		c := content.Typed(typ)
		c.Set("alarm_status_"+quantity, r.Uint8(2)&1)
		c.Set(fmt.Sprintf("%s_%s", quantity, unit), r.Int16(3))
		return common.Finish(r, c)
	}
}
