package rateLimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiter_Window(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "ip:1", 3, time.Minute))
	}
	assert.False(t, l.Allow(ctx, "ip:1", 3, time.Minute))
	assert.True(t, l.Allow(ctx, "ip:2", 3, time.Minute))

	now = now.Add(time.Minute)
	assert.True(t, l.Allow(ctx, "ip:1", 3, time.Minute))
}
