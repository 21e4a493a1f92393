// Package catalog assembles the registry of every supported device family.
package catalog

import (
	"sync"

	"github.com/bkkIoT/iotAdeunis/internal/driver"
	"github.com/bkkIoT/iotAdeunis/internal/driver/comfort"
	"github.com/bkkIoT/iotAdeunis/internal/driver/deltap"
	"github.com/bkkIoT/iotAdeunis/internal/driver/drycontacts"
	"github.com/bkkIoT/iotAdeunis/internal/driver/generic"
	"github.com/bkkIoT/iotAdeunis/internal/driver/motion"
	"github.com/bkkIoT/iotAdeunis/internal/driver/pulse"
	"github.com/bkkIoT/iotAdeunis/internal/driver/repeater"
	"github.com/bkkIoT/iotAdeunis/internal/driver/smartbuilding"
	"github.com/bkkIoT/iotAdeunis/internal/driver/temp"
)

var (
	once     sync.Once
	registry *driver.Registry
)

// Families returns the device families in registration order. Wildcard
// families come first so their fields are overridden by device ones.
func Families() []driver.Family {
	return []driver.Family{
		generic.Family(),
		smartbuilding.Family(),
		drycontacts.Family(),
		pulse.Family(),
		temp.Family(),
		comfort.Family(),
		motion.Family(),
		repeater.Family(),
		deltap.Family(),
	}
}

// Default returns the shared registry, built on first use.
func Default() *driver.Registry {
	once.Do(func() {
		registry = driver.MustNewRegistry(Families()...)
	})
	return registry
}
