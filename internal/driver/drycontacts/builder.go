package drycontacts

import (
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

const configurationFrameLen = 9

func configurationBuilder() driver.Builder {
	inputs := make([]driver.InputField, 0, len(channels))
	for i := range channels {
		inputs = append(inputs, driver.BoolField(outputField(i), false))
	}
	return driver.Builder{
		Device: Tag,
		Code:   CodeConfiguration,
		Inputs: inputs,
		Build:  buildConfiguration,
	}
}

func outputField(i int) string {
	return fmt.Sprintf("channel%dOutput", i+1)
}

// buildConfiguration sets each channel either to a closed-default output or
// to a periodic high-edge input.
func buildConfiguration(in driver.Input, _ frame.Network) (frame.Frame, error) {
	f := make(frame.Frame, configurationFrameLen)
	f[0] = CodeConfiguration
	for i := range channels {
		if in.Bool(outputField(i)) {
			f[channelConfigOffset+i] = typeOutputClosed
		} else {
			f[channelConfigOffset+i] = typeInputHigh
		}
	}
	return f, nil
}
