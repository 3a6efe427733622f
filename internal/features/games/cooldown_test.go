package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanRedeemFirstTime(t *testing.T) {
	now := time.Now()
	assert.True(t, CanRedeem(nil, now, 24*time.Hour))
	assert.Equal(t, time.Duration(0), Remaining(nil, now, 24*time.Hour))
}

func TestCanRedeemWithinPeriod(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	last := now.Add(-1 * time.Hour)
	period := 24 * time.Hour

	assert.False(t, CanRedeem(&last, now, period))
	assert.Equal(t, 23*time.Hour, Remaining(&last, now, period))
}

func TestCanRedeemAfterPeriod(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	period := 24 * time.Hour

	// Ровно через период — граница включительная
	exact := now.Add(-period)
	assert.True(t, CanRedeem(&exact, now, period))
	assert.Equal(t, time.Duration(0), Remaining(&exact, now, period))

	older := now.Add(-48 * time.Hour)
	assert.True(t, CanRedeem(&older, now, period))
}
