package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"NB", DirectionNorth},
		{"nb", DirectionNorth},
		{" Northbound ", DirectionNorth},
		{"north-bound", DirectionNorth},
		{"North", DirectionNorth},
		{"NB (2)", DirectionNorth},
		{"lane_nb", DirectionNorth},
		{"SB", DirectionSouth},
		{"Southbound", DirectionSouth},
		{"south/1", DirectionSouth},
		{"EB", DirectionUnknown},
		{"", DirectionUnknown},
		{"nan", DirectionUnknown},
		{"snb", DirectionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDirection(tt.in))
		})
	}
}

func TestDirectionArrow(t *testing.T) {
	assert.Equal(t, "↑ NB", DirectionNorth.Arrow())
	assert.Equal(t, "↓ SB", DirectionSouth.Arrow())
	assert.Equal(t, "• UNK", DirectionUnknown.Arrow())
	assert.Equal(t, "• UNK", Direction("").Arrow())
}
