// Package temp interprets frames of the two probe temperature sensor.
package temp

import (
	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// Tag is the device type of the temperature sensor.
const Tag = "temp"

const (
	CodeConfiguration     byte = 0x10
	CodeAmbientThresholds byte = 0x11
	CodeRemoteThresholds  byte = 0x12
	CodeKeepAlive         byte = 0x30
	CodeData              byte = 0x43
)

const (
	probeDefect             = 0x8000
	temperatureScale        = 10.0
	productModeOffset       = 8
	acquisitionPeriodOffset = 10
)

var thresholdTriggering = []string{"none", "low_only", "high_only", "low_and_high"}

var statusFlags = []common.FlagDef{
	{Mask: 0x08, Key: "ambient_probe_alarm"},
	{Mask: 0x10, Key: "remote_probe_alarm"},
}

// Family returns the temperature sensor interpreters.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name: Tag,
		Interpreters: []driver.Interpreter{
			{Name: "temp status byte", Device: dev, Code: driver.AnyCode, Interpret: StatusByte},
			{Name: "temp configuration", Device: dev, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "temp ambient thresholds", Device: dev, Code: driver.Code(CodeAmbientThresholds), Interpret: AmbientThresholds},
			{Name: "temp remote thresholds", Device: dev, Code: driver.Code(CodeRemoteThresholds), Interpret: RemoteThresholds},
			{Name: "temp keep alive", Device: dev, Code: driver.Code(CodeKeepAlive), Interpret: readings("0x30 Temperature keep alive")},
			{Name: "temp data", Device: dev, Code: driver.Code(CodeData), Interpret: readings("0x43 Temperature data")},
		},
	}
}

// StatusByte decodes the probe alarm flags of the status byte.
func StatusByte(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.New()
	common.SetFlags(&c, byte(r.Uint8(common.StatusByte)), statusFlags)
	return common.Finish(r, c)
}

// Configuration decodes periods, probe setup and the product mode.
func Configuration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x10 Temperature configuration")
	mode := r.Uint8(productModeOffset)
	testMode := mode == common.ProductModeTest
	common.SetPeriod(&c, "transmission_period_keep_alive", r.Uint8(2), testMode)
	common.SetPeriod(&c, "transmission_period_data", r.Uint8(3), testMode)
	c.Set("ambient_probe_id", r.Uint8(4))
	c.Set("ambient_probe_threshold_triggering", common.Text(thresholdTriggering, r.Uint8(5)&0x03))
	c.Set("remote_probe_id", r.Uint8(6))
	c.Set("remote_probe_threshold_triggering", common.Text(thresholdTriggering, r.Uint8(7)&0x03))
	c.Set("product_mode", common.ProductModeText(mode))
	c.Set("sensors_activation", r.Uint8(9))
	if testMode {
		c.Set("acquisition_period_sec", r.Uint8(acquisitionPeriodOffset)*20)
	} else {
		c.Set("acquisition_period_min", r.Uint8(acquisitionPeriodOffset)*10)
	}
	return common.Finish(r, c)
}

func thresholds(r *frame.Reader, c *content.Content, probe string) {
	c.Set(probe+"_high_threshold_value", float64(r.Uint16(2))/temperatureScale)
	c.Set(probe+"_high_threshold_hysteresis", float64(r.Uint8(4))/temperatureScale)
	c.Set(probe+"_low_threshold_value", float64(r.Uint16(5))/temperatureScale)
	c.Set(probe+"_low_threshold_hysteresis", float64(r.Uint8(7))/temperatureScale)
}

// AmbientThresholds decodes the ambient probe alarm thresholds.
func AmbientThresholds(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x11 Temperature configuration")
	thresholds(r, &c, "ambient_probe")
	c.Set("super_sampling_factor", r.Uint8(8))
	return common.Finish(r, c)
}

// RemoteThresholds decodes the remote probe alarm thresholds.
func RemoteThresholds(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x12 Temperature configuration")
	thresholds(r, &c, "remote_probe")
	return common.Finish(r, c)
}

// readings decodes both probes. The keep alive and the data frame share
// this layout. A raw value of 0x8000 flags a defective probe.
func readings(typ string) driver.InterpretFunc {
	return func(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
		r := frame.NewReader(f)
		c := content.Typed(typ)
		probe(r, &c, "ambient", 2)
		probe(r, &c, "remote", 5)
		return common.Finish(r, c)
	}
}

func probe(r *frame.Reader, c *content.Content, name string, off int) {
	c.Set(name+"_probe_id", (r.Uint8(off)&0xf0)>>4)
	if r.Uint16(off+1) == probeDefect {
		c.Set(name+"_probe_defect", true)
		return
	}
	c.Set(name+"_temperature_celsius_degrees", float64(r.Int16(off+1))/temperatureScale)
}
