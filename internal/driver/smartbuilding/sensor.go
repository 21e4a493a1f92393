package smartbuilding

import (
	"encoding/binary"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/driver/generic"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// The comfort, motion and delta pressure sensors share the status flag, the
// keep alive extension and the configuration downlink below.

const (
	inconsistencyMask = 0x08

	// ReadingFrequencyInput is the builder input of the 0x10 downlink, in
	// seconds between two historized samples.
	ReadingFrequencyInput = "readingFrequency"

	configurationFrameLen    = 10
	samplingBeforeHistoryReg = 6
	acquisitionPeriodReg     = 8
	// samplingBeforeHistory is written to the S320 register.
	samplingBeforeHistory = 1
	// acquisitionPeriodUnit is the S321 register step in seconds.
	acquisitionPeriodUnit = 2
)

// ConfigurationInconsistency decodes the configuration inconsistency flag of
// the status byte.
func ConfigurationInconsistency(f, _ frame.Frame, _ frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.New()
	c.Set("configuration_inconsistency", r.Flag(common.StatusByte, inconsistencyMask))
	return common.Finish(r, c)
}

// KeepAlive is the generic keep alive plus the inconsistency flag.
func KeepAlive(f, cfg frame.Frame, nw frame.Network) (content.Content, error) {
	c, err := generic.KeepAlive(f, cfg, nw)
	if err != nil {
		return content.Content{}, err
	}
	flag, err := ConfigurationInconsistency(f, cfg, nw)
	if err != nil {
		return content.Content{}, err
	}
	return content.Merge(c, flag), nil
}

// ReadingFrequencyBuilder returns the 0x10 builder of device. The reading
// frequency is spread over one sample per historization, so the acquisition
// period register carries half of it.
func ReadingFrequencyBuilder(device string) driver.Builder {
	return driver.Builder{
		Device: device,
		Code:   generic.CodeConfiguration,
		Inputs: []driver.InputField{
			driver.IntField(ReadingFrequencyInput, 600, 0, 2*0xffff+1),
		},
		Build: buildReadingFrequency,
	}
}

func buildReadingFrequency(in driver.Input, _ frame.Network) (frame.Frame, error) {
	f := make(frame.Frame, configurationFrameLen)
	f[0] = generic.CodeConfiguration
	acquisition := in.Number(ReadingFrequencyInput) / samplingBeforeHistory
	binary.BigEndian.PutUint16(f[samplingBeforeHistoryReg:], samplingBeforeHistory)
	binary.BigEndian.PutUint16(f[acquisitionPeriodReg:], common.SanitizeUint16(acquisition/acquisitionPeriodUnit))
	return f, nil
}
