package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want, delta            float64
	}{
		{name: "Same point", lat1: 3.15, lng1: 101.70, lat2: 3.15, lng2: 101.70, want: 0, delta: 1e-9},
		{name: "KL to Petaling Jaya", lat1: 3.1390, lng1: 101.6869, lat2: 3.1073, lng2: 101.6067, want: 9.6, delta: 0.3},
		{name: "KL to Penang", lat1: 3.1390, lng1: 101.6869, lat2: 5.4141, lng2: 100.3288, want: 294, delta: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2), tt.delta)
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(3.15, 101.70))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(0, -180.5))
}
