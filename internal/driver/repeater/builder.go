package repeater

import (
	"encoding/binary"

	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

const (
	maxByte     = 0xff
	maxDeviceID = 0xffffffff
)

func builders() []driver.Builder {
	return []driver.Builder{
		{
			Device: Tag,
			Code:   CodeReturnMode,
			Inputs: []driver.InputField{driver.IntField("return_mode", 0, 0, maxByte)},
			Build: func(in driver.Input, _ frame.Network) (frame.Frame, error) {
				return frame.Frame{CodeReturnMode, byte(in.Number("return_mode"))}, nil
			},
		},
		{
			Device: Tag,
			Code:   CodeWhiteListActivation,
			Inputs: []driver.InputField{
				driver.IntField("wl_activation", 0, 0, maxByte),
				driver.IntField("id", 0, 0, maxDeviceID),
			},
			Build: withID(CodeWhiteListActivation, "wl_activation"),
		},
		{
			Device: Tag,
			Code:   CodeWhiteListValidation,
			Inputs: []driver.InputField{
				driver.IntField("wl_validation", 0, 0, maxByte),
				driver.IntField("id", 0, 0, maxDeviceID),
			},
			Build: withID(CodeWhiteListValidation, "wl_validation"),
		},
		{
			Device: Tag,
			Code:   CodeReset,
			Build: func(driver.Input, frame.Network) (frame.Frame, error) {
				return frame.Frame{CodeReset}, nil
			},
		},
	}
}

// withID builds [code, flag, id as big-endian uint32].
func withID(code byte, flag string) driver.BuildFunc {
	return func(in driver.Input, _ frame.Network) (frame.Frame, error) {
		f := make(frame.Frame, 6)
		f[0] = code
		f[1] = byte(in.Number(flag))
		binary.BigEndian.PutUint32(f[2:], uint32(in.Number("id")))
		return f, nil
	}
}
