package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/robertarktes/movie-ticket-booking/internal/catalog"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingFinder struct {
	started chan string
}

func (f *blockingFinder) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	f.started <- query
	if query == "slow" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []domain.Movie{{ID: 1, Title: query}}, nil
}

func TestSearcher_LatestWins(t *testing.T) {
	f := &blockingFinder{started: make(chan string, 2)}
	s := catalog.NewSearcher(f)

	slowErr := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "slow")
		slowErr <- err
	}()
	require.Equal(t, "slow", <-f.started)

	movies, err := s.Search(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", movies[0].Title)

	select {
	case err := <-slowErr:
		assert.ErrorIs(t, err, domain.ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded search was not canceled")
	}
}

func TestSearchers_PerKeyAndPrune(t *testing.T) {
	f := &blockingFinder{started: make(chan string, 4)}
	reg := catalog.NewSearchers(f, time.Minute)

	a := reg.For("client-a")
	assert.Same(t, a, reg.For("client-a"))
	assert.NotSame(t, a, reg.For("client-b"))
	assert.Equal(t, 2, reg.Len())

	assert.Equal(t, 0, reg.Prune(time.Now()))
	assert.Equal(t, 2, reg.Prune(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, reg.Len())
}
