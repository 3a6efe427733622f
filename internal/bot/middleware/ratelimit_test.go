package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterLimitsWithinWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))

	// Другой пользователь не затронут
	assert.True(t, rl.Allow(2))
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow(1))
}
