// Package generic interprets the frames every device shares: the status
// byte, the configuration announcements and the keep alive.
package generic

import (
	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// Frame codes handled here.
const (
	CodeConfiguration byte = 0x10
	CodeNetworkConfig byte = 0x20
	CodeKeepAlive     byte = 0x30
)

const (
	frameCounterMask  = 0xe0
	frameCounterShift = 5
)

var statusFlagDefs = []common.FlagDef{
	{Mask: 0x04, Key: "hardware_error"},
	{Mask: 0x02, Key: "low_battery"},
	{Mask: 0x01, Key: "configuration_done"},
}

// Family returns the wildcard-device interpreters.
func Family() driver.Family {
	return driver.Family{
		Name: "generic",
		Interpreters: []driver.Interpreter{
			{Name: "generic configuration", Device: driver.AnyDevice, Code: driver.Code(CodeConfiguration), Interpret: Configuration},
			{Name: "generic network configuration", Device: driver.AnyDevice, Code: driver.Code(CodeNetworkConfig), Interpret: NetworkConfiguration},
			{Name: "generic keep alive", Device: driver.AnyDevice, Code: driver.Code(CodeKeepAlive), Interpret: KeepAlive},
			{Name: "generic status byte", Device: driver.AnyDevice, Code: driver.AnyCode, Interpret: StatusByte},
		},
	}
}

// Configuration only announces that a configuration frame arrived; the
// family interpreters fill in the details.
func Configuration(_, _ frame.Frame, _ frame.Network) (content.Content, error) {
	return content.Typed("0x10 Configuration"), nil
}

// NetworkConfiguration decodes the network-specific configuration block.
func NetworkConfiguration(f, _ frame.Frame, nw frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x20 Configuration")
	switch nw {
	case frame.NetworkLoRa868:
		c.Set("lora_adr", r.Flag(2, 0x01))
		if r.Uint8(3) == 0 {
			c.Set("lora_provisioning_mode", "ABP")
		} else {
			c.Set("lora_provisioning_mode", "OTAA")
		}
	case frame.NetworkSigfox:
		c.Set("sigfox_retry", r.Uint8(2)&0x03)
	default:
		c.SetReason(content.ReasonMissingNetwork)
	}
	return common.Finish(r, c)
}

// KeepAlive is the device-independent keep alive.
func KeepAlive(_, _ frame.Frame, _ frame.Network) (content.Content, error) {
	return content.Typed("0x30 Keep alive"), nil
}

// StatusByte decodes the status byte carried at offset 1 of every uplink.
func StatusByte(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	status := r.Uint8(common.StatusByte)
	c := content.New()
	c.Set("frame_counter", (status&frameCounterMask)>>frameCounterShift)
	common.SetFlags(&c, byte(status), statusFlagDefs)
	return common.Finish(r, c)
}
