package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagementRate(t *testing.T) {
	now := time.Now()

	// 10 likes + 2*4 comments + 3*2 shares = 24 interactions over 4 hours.
	rate := EngagementRate(10, 4, 2, now.Add(-4*time.Hour), now)
	assert.InDelta(t, 6.0, rate, 0.01)

	// Posts younger than an hour are normalized as one hour old so fresh
	// posts do not get inflated rates.
	rate = EngagementRate(6, 0, 0, now.Add(-5*time.Minute), now)
	assert.InDelta(t, 6.0, rate, 1e-9)

	rate = EngagementRate(0, 0, 0, now.Add(-10*time.Hour), now)
	assert.Zero(t, rate)
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []string{PostStatusPosted, PostStatusFailed, PostStatusRejected} {
		assert.True(t, IsTerminal(status), status)
	}
	for _, status := range []string{PostStatusGenerating, PostStatusScheduled, PostStatusPosting} {
		assert.False(t, IsTerminal(status), status)
	}
}
