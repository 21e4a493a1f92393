package pulse

import (
	"fmt"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/driver/common"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/records"
)

// Historic configurations, from byte 6 of the configuration frame.
const (
	historicUnknown = -1
	historic1h      = 0x1 // samples every 10 minutes over one hour
	historic1d      = 0x2 // samples every hour over one day
)

const historicModeByte = 6

// Interval starts of the first delta in each historic frame.
var (
	base1hSigfox = []int{10, 10, 30, 50}
	base1dSigfox = []int{1, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19, 21, 23}
	base1dLoRa   = []int{1, 11, 23}
)

// inferHistoric guesses the network and historic configuration from the
// frame index and length:
//
//	            1h history      1d history
//	LoRa 868    1 frame [31]    3 frames [51, 51, 7]
//	Sigfox      4 [11 11 11 7]  13 [11 ... 11, 7]
func inferHistoric(index, length int) (frame.Network, int) {
	switch {
	case length == 31:
		return frame.NetworkLoRa868, historic1h
	case length == 51 || (index == 2 && length == 7):
		return frame.NetworkLoRa868, historic1d
	case index == 3 && length == 7:
		return frame.NetworkSigfox, historic1h
	case index >= 3:
		return frame.NetworkSigfox, historic1d
	case length == 11:
		return frame.NetworkSigfox, historicUnknown
	default:
		return frame.NetworkUnknown, historicUnknown
	}
}

// HistoricData decodes one frame of a historic series. The frame layout
// depends on the historic mode and the network; both are taken from the
// stored configuration and the caller when known and inferred otherwise.
func HistoricData(f, cfg frame.Frame, nw frame.Network) (content.Content, error) {
	r := frame.NewReader(f)
	c := content.Typed("0x48 Pulse historic data")
	index := r.Uint8(2)
	if err := r.Err(); err != nil {
		return content.Content{}, err
	}
	c.Set("frame_index", index)

	inferredNetwork, historic := inferHistoric(index, f.Len())
	known := nw
	if !known.Known() {
		known = inferredNetwork
	}
	if mode := cfg.At(historicModeByte); mode != 0 {
		historic = int(mode & 0x03)
	}
	if historic < 0 {
		c.SetReason(content.ReasonMissingConfiguration)
		return c, nil
	}

	if index == 0 {
		step := "1h"
		if historic == historic1h {
			step = "10min"
		}
		c.Set(fmt.Sprintf("channelA_index_%s_after_previous_frame", step), r.Uint32(3))
		c.Set(fmt.Sprintf("channelB_index_%s_after_previous_frame", step), r.Uint32(7))
	}
	if !known.Known() {
		c.SetReason(content.ReasonMissingNetwork)
		return common.Finish(r, c)
	}

	start := 3
	if index == 0 {
		start = 11
	}
	base, err := intervalBase(known, historic, index)
	if err != nil {
		return content.Content{}, err
	}
	records.Series{Start: start, Stride: 4}.Each(f.Len(), func(n, off int) {
		var interval string
		if historic == historic1h {
			from := base + (n-1)*10
			interval = fmt.Sprintf("%dmin_to_%dmin", from, from+10)
		} else {
			from := base + n - 1
			interval = fmt.Sprintf("%dh_to_%dh", from, from+1)
		}
		c.Set(fmt.Sprintf("channelA_delta_%s_after_previous_frame", interval), r.Uint16(off))
		c.Set(fmt.Sprintf("channelB_delta_%s_after_previous_frame", interval), r.Uint16(off+2))
	})
	return common.Finish(r, c)
}

func intervalBase(nw frame.Network, historic, index int) (int, error) {
	var table []int
	switch {
	case historic == historic1h && nw == frame.NetworkSigfox:
		table = base1hSigfox
	case historic == historic1h:
		return 10, nil
	case nw == frame.NetworkSigfox:
		table = base1dSigfox
	default:
		table = base1dLoRa
	}
	if index >= len(table) {
		return 0, fmt.Errorf("historic frame index %d out of range for %s", index, nw)
	}
	return table[index], nil
}
