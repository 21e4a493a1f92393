package records

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeriesEach(t *testing.T) {
	s := Series{Start: 5, Stride: 3}
	var got [][2]int
	s.Each(14, func(index, offset int) {
		got = append(got, [2]int{index, offset})
	})
	require.Equal(t, [][2]int{{1, 5}, {2, 8}, {3, 11}}, got)
}

func TestSeriesEmpty(t *testing.T) {
	s := Series{Start: 4, Stride: 2}
	calls := 0
	s.Each(4, func(int, int) { calls++ })
	require.Zero(t, calls)
	Series{Start: 1}.Each(10, func(int, int) { calls++ })
	require.Zero(t, calls, "zero stride visits nothing")
}
