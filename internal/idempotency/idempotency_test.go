package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotency_ReplayAfterComplete(t *testing.T) {
	ctx := context.Background()
	idemp := idempotency.NewIdempotency(idempotency.NewMemoryBackend(), time.Hour, time.Minute)

	resp, lease, err := idemp.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, resp)
	require.NotNil(t, lease)

	_, _, err = idemp.Begin(ctx, "k1")
	assert.ErrorIs(t, err, idempotency.ErrInFlight)

	require.NoError(t, idemp.Complete(ctx, lease, idempotency.Response{Status: 200, Result: []byte(`{"ok":true}`)}))

	resp, lease, err = idemp.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, lease)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.Status)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Result))
}

func TestIdempotency_AbortAllowsRetry(t *testing.T) {
	ctx := context.Background()
	idemp := idempotency.NewIdempotency(idempotency.NewMemoryBackend(), time.Hour, time.Minute)

	_, lease, err := idemp.Begin(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, idemp.Abort(ctx, lease))

	resp, lease, err := idemp.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.NotNil(t, lease)
}

// completingBackend runs afterGet once, right after the first lookup.
type completingBackend struct {
	*idempotency.MemoryBackend
	afterGet func()
}

func (b *completingBackend) Get(ctx context.Context, key string) (*idempotency.Response, error) {
	resp, err := b.MemoryBackend.Get(ctx, key)
	if f := b.afterGet; f != nil {
		b.afterGet = nil
		f()
	}
	return resp, err
}

func TestIdempotency_ReplaysResponseStoredBetweenLookupAndLock(t *testing.T) {
	ctx := context.Background()
	backend := &completingBackend{MemoryBackend: idempotency.NewMemoryBackend()}
	idemp := idempotency.NewIdempotency(backend, time.Hour, time.Minute)

	_, first, err := idemp.Begin(ctx, "k3")
	require.NoError(t, err)

	backend.afterGet = func() {
		require.NoError(t, idemp.Complete(ctx, first, idempotency.Response{Status: 201, Result: []byte(`{"booking_id":"BK1"}`)}))
	}
	resp, lease, err := idemp.Begin(ctx, "k3")
	require.NoError(t, err)
	assert.Nil(t, lease)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.Status)

	ok, err := backend.Acquire(ctx, "k3", "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "lock taken for the re-check must be released")
}

func TestIdempotency_ExpiredLeaseCannotReleaseNextHolder(t *testing.T) {
	ctx := context.Background()
	idemp := idempotency.NewIdempotency(idempotency.NewMemoryBackend(), time.Hour, 10*time.Millisecond)

	_, stale, err := idemp.Begin(ctx, "k4")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, current, err := idemp.Begin(ctx, "k4")
	require.NoError(t, err)
	require.NotNil(t, current)

	require.NoError(t, idemp.Abort(ctx, stale))
	_, _, err = idemp.Begin(ctx, "k4")
	assert.ErrorIs(t, err, idempotency.ErrInFlight)

	require.NoError(t, idemp.Abort(ctx, current))
	_, lease, err := idemp.Begin(ctx, "k4")
	require.NoError(t, err)
	assert.NotNil(t, lease)
}

func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	b := idempotency.NewMemoryBackend()

	require.NoError(t, b.Set(ctx, "k", idempotency.Response{Status: 201}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	resp, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, resp)

	ok, _ := b.Acquire(ctx, "k", "a", time.Millisecond)
	assert.True(t, ok)
	time.Sleep(5 * time.Millisecond)
	ok, _ = b.Acquire(ctx, "k", "b", time.Minute)
	assert.True(t, ok)
}
