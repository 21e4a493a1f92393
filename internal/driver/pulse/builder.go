package pulse

import (
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

const configurationFrameLen = 22

func configurationBuilder() driver.Builder {
	return driver.Builder{
		Device: Tag,
		Code:   CodeConfiguration,
		Inputs: []driver.InputField{driver.BoolField("historicLogEvery1h", false)},
		Build:  buildConfiguration,
	}
}

// buildConfiguration only sets the historic mode; every other register is
// left at zero.
func buildConfiguration(in driver.Input, _ frame.Network) (frame.Frame, error) {
	f := make(frame.Frame, configurationFrameLen)
	f[0] = CodeConfiguration
	if in.Bool("historicLogEvery1h") {
		f[historicModeByte] = historic1d
	} else {
		f[historicModeByte] = historic1h
	}
	return f, nil
}
