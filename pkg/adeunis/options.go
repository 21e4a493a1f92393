package adeunis

import (
	"github.com/sirupsen/logrus"

	"github.com/bkkIoT/iotAdeunis/internal/store"
)

// Options configures a Codec.
type Options struct {
	// Storage keeps device types and configurations between calls. Nil
	// selects a fresh in-memory storage.
	Storage store.Storage
	// Logger receives debug entries about routing and interpreter
	// failures. Nil selects the logrus standard logger.
	Logger logrus.FieldLogger
}

func (o Options) withDefaults() Options {
	if o.Storage == nil {
		o.Storage = store.NewMemoryStorage()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// DecodeOptions identifies where a frame came from.
type DecodeOptions struct {
	// DeviceID keys the stored state; empty shares one placeholder entry.
	DeviceID string
	Network  Network
}
