package adeunis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bkkIoT/iotAdeunis/internal/content"
)

func TestFieldSet(t *testing.T) {
	c := content.Typed("0x4c Comfort data")
	c.Set("humidity_current_percentage", 32)
	c.Set("instantaneous_temperature_celsius_degrees", 19.7)
	c.Set("configuration_inconsistency", false)
	c.SetReason(content.ReasonMissingConfiguration)
	fs := Fields(c)

	f, err := fs.Float("instantaneous_temperature_celsius_degrees")
	require.NoError(t, err)
	require.InDelta(t, 19.7, f, 1e-9)

	f, err = fs.Float("humidity_current_percentage")
	require.NoError(t, err)
	require.Equal(t, 32.0, f)

	i, err := fs.Int("humidity_current_percentage")
	require.NoError(t, err)
	require.Equal(t, int64(32), i)

	_, err = fs.Int("instantaneous_temperature_celsius_degrees")
	require.Error(t, err)

	b, err := fs.Bool("configuration_inconsistency")
	require.NoError(t, err)
	require.False(t, b)

	s, err := fs.String(content.KeyPartialReason)
	require.NoError(t, err)
	require.Equal(t, "MISSING_CONFIGURATION", s)
	require.Equal(t, content.ReasonMissingConfiguration, fs.Reason())

	_, err = fs.Float("missing")
	require.Error(t, err)
	_, err = fs.Bool("type")
	require.Error(t, err)
	require.Len(t, fs.Map(), 5)
}
