package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTime(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	first := NormalizeTime(time.Time{}, now)
	second := NormalizeTime(time.Time{}, now)
	assert.Equal(t, fixed, first)
	assert.Equal(t, first, second)

	stored := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, stored, NormalizeTime(stored, now))
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
	assert.False(t, OrderStatus("Shipped").Valid())
}

func TestEffectivePrice(t *testing.T) {
	pct := func(v int) *int { return &v }

	assert.Equal(t, int64(10000), Product{Price: 10000}.EffectivePrice())
	assert.Equal(t, int64(8500), Product{Price: 10000, DiscountPercentage: pct(15)}.EffectivePrice())
	assert.Equal(t, int64(667), Product{Price: 1333, DiscountPercentage: pct(50)}.EffectivePrice())
	assert.Equal(t, int64(0), Product{Price: 10000, DiscountPercentage: pct(100)}.EffectivePrice())
}

func TestFormatTZS(t *testing.T) {
	assert.Equal(t, "950 TZS", FormatTZS(950))
	assert.Equal(t, "1,250,000 TZS", FormatTZS(1250000))
	assert.Equal(t, "-30,000 TZS", FormatTZS(-30000))
}
