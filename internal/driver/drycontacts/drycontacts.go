// Package drycontacts interprets frames of the four channel dry contacts
// device. Each channel is an input counter or a command output, which decides
// whether its data frame carries an event counter.
package drycontacts

import (
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/driver/generic"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// Tag is the device type of the dry contacts device.
const Tag = "dc"

const (
	CodeConfiguration byte = 0x10
	CodeKeepAlive     byte = 0x30
	CodeData          byte = 0x40
)

// Channel types 7 and 8 are outputs.
const (
	typeOutputClosed = 0x07
	typeOutputOpen   = 0x08
	typeInputHigh    = 0x01
)

const (
	channelConfigOffset = 4
	productModeOffset   = 8
	// configurationLen is the shortest configuration covering all channels.
	configurationLen = 8
)

var channels = []string{"A", "B", "C", "D"}

var channelTypes = []string{
	"disabled",
	"in_periodic_mode_high_edge",
	"in_periodic_mode_low_edge",
	"in_periodic_mode_high_and_low_edge",
	"in_event_mode_high_edge",
	"in_event_mode_low_edge",
	"in_event_mode_high_and_low_edge",
	"out_default_state_1close",
	"out_default_state_0open",
}

var waitingPeriods = []string{
	"no_debounce", "10msec", "20msec", "50msec", "100msec", "200msec", "500msec", "1sec",
	"2sec", "5sec", "10sec", "20sec", "40sec", "60sec", "5min",
}

// Family returns the dry contacts interpreters and builders.
func Family() driver.Family {
	dev := driver.Device(Tag)
	return driver.Family{
		Name: Tag,
		Interpreters: []driver.Interpreter{
			{Name: "dc configuration", Device: dev, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "dc keep alive", Device: dev, Code: driver.Code(CodeKeepAlive), Interpret: KeepAlive},
			{Name: "dc data", Device: dev, Code: driver.Code(CodeData), Interpret: Data},
		},
		Builders: []driver.Builder{configurationBuilder()},
	}
}

// Configuration decodes periods, channel types and the product mode.
func Configuration(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x10 Dry Contacts configuration")
	mode := r.Uint8(productModeOffset)
	testMode := mode == common.ProductModeTest
	common.SetPeriod(&c, "transmission_period_keep_alive", r.Uint8(2), testMode)
	common.SetPeriod(&c, "transmission_period_event_counters", r.Uint8(3), testMode)
	for i, ch := range channels {
		b := r.Uint8(channelConfigOffset + i)
		c.Set(fmt.Sprintf("channel%s_type", ch), common.Text(channelTypes, b&0x0f))
		c.Set(fmt.Sprintf("channel%s_waiting_period_duration", ch), common.Text(waitingPeriods, (b&0xf0)>>4))
	}
	c.Set("product_mode", common.ProductModeText(mode))
	return common.Finish(r, c)
}

// KeepAlive extends the generic keep alive with the output command flag.
func KeepAlive(f, cfg frame.Frame, nw frame.Network) (content.Content, error) {
	c, err := generic.KeepAlive(f, cfg, nw)
	if err != nil {
		return content.Content{}, err
	}
	r := frame.NewReader(f)
	c.Set("command_output_done", r.Flag(common.StatusByte, 0x08))
	return common.Finish(r, c)
}

// Data decodes channel counters and states. A channel configured as output
// has no counter; without a full configuration every channel is assumed to
// be an input and the result is marked partial.
func Data(f, cfg frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x40 Dry Contacts data")
	states := byte(r.Uint8(10))
	for i, ch := range channels {
		typ := cfg.At(channelConfigOffset+i) & 0x0f
		if typ != typeOutputClosed && typ != typeOutputOpen {
			c.Set(fmt.Sprintf("channel%s_event_counter", ch), r.Uint16(2+2*i))
		}
		current := byte(0x01) << (2 * i)
		c.Set(fmt.Sprintf("channel%s_current_state", ch), states&current != 0)
		c.Set(fmt.Sprintf("channel%s_previous_frame_state", ch), states&(current<<1) != 0)
	}
	if cfg.Len() < configurationLen {
		c.SetReason(content.ReasonMissingConfiguration)
	}
	return common.Finish(r, c)
}
