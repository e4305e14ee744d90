package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindDirection(t *testing.T) {
	tests := []struct {
		name string
		u, v float64
		want float64
	}{
		{"calm", 0, 0, 0},
		{"north", 0, -10, 360},
		{"east", -10, 0, 90},
		{"south", 0, 10, 180},
		{"west", 10, 0, 270},
		{"southwest", 10, 10, 225},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WindDirection(tt.u, tt.v), 1e-9)
		})
	}
}

func TestWindSpeed(t *testing.T) {
	assert.InDelta(t, 5, WindSpeed(3, 4), 1e-12)
	assert.InDelta(t, 5, WindSpeed(-3, -4), 1e-12)
}
