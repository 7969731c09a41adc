package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
)

type Finder interface {
	Search(ctx context.Context, query string) ([]domain.Movie, error)
}

// Searcher runs searches for a single client so that only the most recently
// issued query can deliver results. Starting a search cancels the one in flight.
type Searcher struct {
	finder Finder

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	lastUsed time.Time
}

func NewSearcher(finder Finder) *Searcher {
	return &Searcher{finder: finder, lastUsed: time.Now()}
}

func (s *Searcher) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	tag := s.seq
	s.cancel = cancel
	s.lastUsed = time.Now()
	s.mu.Unlock()

	movies, err := s.finder.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tag != s.seq {
		observability.SearchesSuperseded.Inc()
		return nil, errors.Wrapf(domain.ErrStale, "search %q superseded", query)
	}
	s.cancel = nil
	return movies, err
}

func (s *Searcher) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return time.Now()
	}
	return s.lastUsed
}

// Searchers hands out one Searcher per client key.
type Searchers struct {
	finder Finder
	idle   time.Duration

	mu    sync.Mutex
	byKey map[string]*Searcher
}

func NewSearchers(finder Finder, idle time.Duration) *Searchers {
	return &Searchers{finder: finder, idle: idle, byKey: make(map[string]*Searcher)}
}

func (s *Searchers) For(key string) *Searcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	sr, ok := s.byKey[key]
	if !ok {
		sr = NewSearcher(s.finder)
		s.byKey[key] = sr
	}
	return sr
}

func (s *Searchers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

// Prune drops searchers that have been idle longer than the configured window.
func (s *Searchers) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, sr := range s.byKey {
		if now.Sub(sr.idleSince()) > s.idle {
			delete(s.byKey, key)
			n++
		}
	}
	return n
}

func (s *Searchers) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Prune(now)
		}
	}
}
