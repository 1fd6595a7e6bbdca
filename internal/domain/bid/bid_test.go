package bid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimumNext(t *testing.T) {
	tests := []struct {
		name           string
		startingPrice  float64
		currentHighest float64
		want           float64
	}{
		{"empty ledger uses starting price", 35000, 0, 35000},
		{"highest plus increment", 35000, 40000, 41000},
		{"starting price still wins near the floor", 35000, 33000, 35000},
		{"increment exactly reaches starting price", 35000, 34000, 35000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MinimumNext(tt.startingPrice, tt.currentHighest))
		})
	}
}
