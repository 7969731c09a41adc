package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"github.com/robertarktes/movie-ticket-booking/internal/theatre"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(ttl time.Duration) (*MemoryStore, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemoryStore(ttl, observability.NewNopLogger())
	m.now = c.now
	return m, c
}

func TestMemoryStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	m, c := newStore(time.Minute)
	st := New(domain.Movie{ID: 550, Title: "Fight Club"}, theatre.Defaults(), c.t)
	require.NoError(t, m.Create(ctx, st))

	got, err := m.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", got.Movie.Title)
	assert.Len(t, got.Theatres, 3)

	got.Movie.Title = "changed"
	again, _ := m.Get(ctx, st.ID)
	assert.Equal(t, "Fight Club", again.Movie.Title)

	assert.ErrorIs(t, m.Create(ctx, st), domain.ErrConflict)
	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStore_UpdateRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	m, c := newStore(time.Minute)
	st := New(domain.Movie{ID: 1}, theatre.Defaults(), c.t)
	require.NoError(t, m.Create(ctx, st))

	c.t = c.t.Add(50 * time.Second)
	updated, err := m.Update(ctx, st.ID, func(s *State) error {
		s.Selection.SelectTheatre(s.Theatres[0])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, c.t, updated.UpdatedAt)

	c.t = c.t.Add(50 * time.Second)
	got, err := m.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Selection.Theatre.ID)

	c.t = c.t.Add(11 * time.Second)
	_, err = m.Get(ctx, st.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStore_FailedUpdateKeepsState(t *testing.T) {
	ctx := context.Background()
	m, c := newStore(time.Minute)
	st := New(domain.Movie{ID: 1}, theatre.Defaults(), c.t)
	require.NoError(t, m.Create(ctx, st))

	boom := errors.New("boom")
	_, err := m.Update(ctx, st.ID, func(s *State) error {
		s.Movie = nil
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := m.Get(ctx, st.ID)
	assert.NotNil(t, got.Movie)
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	m, c := newStore(time.Minute)
	for i := 0; i < 3; i++ {
		require.NoError(t, m.Create(ctx, New(domain.Movie{ID: i}, nil, c.t)))
	}
	assert.Equal(t, 0, m.Sweep(c.t))
	assert.Equal(t, 3, m.Sweep(c.t.Add(time.Minute)))

	st := New(domain.Movie{ID: 9}, nil, c.t)
	require.NoError(t, m.Create(ctx, st))
	require.NoError(t, m.Delete(ctx, st.ID))
	_, err := m.Get(ctx, st.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
