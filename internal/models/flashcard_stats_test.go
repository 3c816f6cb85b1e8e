package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/wordflash/internal/models"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		rate int
		want models.Band
	}{
		{0, models.BandLow},
		{59, models.BandLow},
		{60, models.BandMedium},
		{79, models.BandMedium},
		{80, models.BandHigh},
		{100, models.BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.BandFor(tt.rate), "rate %d", tt.rate)
	}
}
