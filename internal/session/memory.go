package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Values are stored encoded so callers
// never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	logger  observability.Logger
}

func NewMemoryStore(ttl time.Duration, logger observability.Logger) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]entry), logger: logger}
}

func (m *MemoryStore) Create(ctx context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[st.ID]; ok {
		return errors.Wrapf(domain.ErrConflict, "session %s exists", st.ID)
	}
	if err := m.put(st); err != nil {
		return err
	}
	observability.SessionsActive.Set(float64(len(m.entries)))
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id)
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(st *State) error) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, err := m.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = m.now()
	if err := m.put(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	observability.SessionsActive.Set(float64(len(m.entries)))
	return nil
}

func (m *MemoryStore) load(id string) (*State, error) {
	e, ok := m.entries[id]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, errors.Wrapf(domain.ErrSessionNotFound, "session %s", id)
	}
	var st State
	if err := json.Unmarshal(e.data, &st); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &st, nil
}

func (m *MemoryStore) put(st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	m.entries[st.ID] = entry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Sweep removes expired sessions and reports how many were dropped.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	observability.SessionsActive.Set(float64(len(m.entries)))
	return n
}

func (m *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				m.logger.WithField("expired", n).Debug("swept booking sessions")
			}
		}
	}
}
