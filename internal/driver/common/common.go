// Package common holds the small tables and bit helpers shared by the device
// family interpreters and builders.
package common

import (
	"fmt"
	"math"

	"github.com/bkkIoT/iotAdeunis/internal/content"
	"github.com/bkkIoT/iotAdeunis/internal/frame"
)

// Product modes as carried in configuration frames.
const (
	ProductModePark       = 0
	ProductModeProduction = 1
	ProductModeTest       = 2
	ProductModeDead       = 3
)

var productModes = []string{"PARK", "PRODUCTION", "TEST", "DEAD"}

// ProductModeText names a product mode; unknown values map to "".
func ProductModeText(mode int) string {
	return Text(productModes, mode)
}

// Text returns table[i], or "" when i is out of range.
func Text(table []string, i int) string {
	if i < 0 || i >= len(table) {
		return ""
	}
	return table[i]
}

// SanitizeUint16 truncates v toward zero and clamps it to [0, 65535].
func SanitizeUint16(v float64) uint16 {
	if math.IsNaN(v) {
		return 0
	}
	t := math.Trunc(v)
	switch {
	case t < 0:
		return 0
	case t > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(t)
	}
}

// FlagDef maps one bit mask of a byte to a boolean field.
type FlagDef struct {
	Mask byte
	Key  string
}

// SetFlags sets every field in defs to whether its mask is set in b.
func SetFlags(c *content.Content, b byte, defs []FlagDef) {
	for _, def := range defs {
		c.Set(def.Key, b&def.Mask != 0)
	}
}

// SetPeriod stores a transmission period. In TEST mode the register counts
// 20 second steps and the field is name_sec; otherwise it counts 10 minute
// steps and the field is name_min.
func SetPeriod(c *content.Content, name string, raw int, testMode bool) {
	if testMode {
		c.Set(name+"_sec", raw*20)
		return
	}
	c.Set(name+"_min", raw*10)
}

// Historic names the n-th past sample of a series, e.g. tminus3.
func Historic(n int) string {
	return fmt.Sprintf("tminus%d", n)
}

// StatusByte is the offset of the status byte in uplink frames.
const StatusByte = 1

// Finish returns c, or the reader's error if any read went out of range.
func Finish(r *frame.Reader, c content.Content) (content.Content, error) {
	if err := r.Err(); err != nil {
		return content.Content{}, err
	}
	return c, nil
}
