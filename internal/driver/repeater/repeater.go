// Package repeater interprets and builds the white list frames of the radio
// repeater. The repeater has no generic status byte, so its family opts out
// of the wildcard overlays.
package repeater

import (
	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// Tag is the device type of the repeater.
const Tag = "repeater"

// Uplink codes. The 0x01 and 0x03 uplinks acknowledge the downlinks of the
// same code and carry nothing past the status byte.
const (
	CodeReturnModeStatus      byte = 0x01
	CodeWhiteListModification byte = 0x02
	CodeValidationStatus      byte = 0x03
	CodeWhiteListConfirmation byte = 0x04
)

// Downlink codes.
const (
	CodeReturnMode          byte = 0x01
	CodeWhiteListActivation byte = 0x02
	CodeWhiteListValidation byte = 0x03
	CodeReset               byte = 0x05
)

const (
	frameCounterShift = 4
	lowBatteryMask    = 0x02
)

// Family returns the repeater interpreters and builders.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name:                 Tag,
		SkipWildcardOverlays: true,
		Interpreters: []driver.Interpreter{
			{Name: "repeater return mode", Device: dev, Code: driver.Code(CodeReturnModeStatus),
				Interpret: statusOnly("0x01 Repeater return mode")},
			{Name: "repeater WL modification", Device: dev, Code: driver.Code(CodeWhiteListModification),
				Interpret: whiteList("0x02 Repeater WL modification")},
			{Name: "repeater WL validation", Device: dev, Code: driver.Code(CodeValidationStatus),
				Interpret: statusOnly("0x03 Repeater WL validation")},
			{Name: "repeater WL confirmation", Device: dev, Code: driver.Code(CodeWhiteListConfirmation),
				Interpret: whiteList("0x04 White List confirmation")},
		},
		Builders: builders(),
	}
}

// uplinkStatus decodes the repeater status byte.
func uplinkStatus(r *frame.Reader, c *content.Content) {
	status := r.Uint8(common.StatusByte)
	c.Set("frame_counter", status>>frameCounterShift)
	c.Set("low_battery", status&lowBatteryMask != 0)
}

func statusOnly(typ string) driver.InterpretFunc {
	return func(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
		r := frame.NewReader(f)
		c := content.Typed(typ)
		uplinkStatus(r, &c)
		return common.Finish(r, c)
	}
}

func whiteList(typ string) driver.InterpretFunc {
	return func(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
		r := frame.NewReader(f)
		c := content.Typed(typ)
		uplinkStatus(r, &c)
		c.Set("number_of_id_in_wl", r.Uint8(2))
		return common.Finish(r, c)
	}
}
