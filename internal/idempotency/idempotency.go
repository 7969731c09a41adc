package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var ErrInFlight = errors.New("request with this key is already in progress")

type Response struct {
	Status int
	Result []byte
}

// Backend stores responses and per-key locks. Release must only drop a lock
// that owner still holds.
type Backend interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, resp Response, ttl time.Duration) error
}

// Lease is the right to run the request for one key.
type Lease struct {
	Key   string
	owner string
}

// Idempotency lets one request per key run at a time and replays the stored
// response of a completed one.
type Idempotency struct {
	backend Backend
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotency(backend Backend, ttl, lockTTL time.Duration) *Idempotency {
	return &Idempotency{backend: backend, ttl: ttl, lockTTL: lockTTL}
}

// Begin returns a stored response when there is one. Otherwise it takes the
// key's lock and returns a lease the caller must end with Complete or Abort.
func (i *Idempotency) Begin(ctx context.Context, key string) (*Response, *Lease, error) {
	existing, err := i.backend.Get(ctx, key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "idempotency lookup")
	}
	if existing != nil {
		return existing, nil, nil
	}

	lease := &Lease{Key: key, owner: uuid.NewString()}
	ok, err := i.backend.Acquire(ctx, key, lease.owner, i.lockTTL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "idempotency lock")
	}
	if !ok {
		return nil, nil, ErrInFlight
	}

	// The previous holder may have completed between the lookup and the lock.
	existing, err = i.backend.Get(ctx, key)
	if err != nil || existing != nil {
		i.backend.Release(context.WithoutCancel(ctx), key, lease.owner)
		if err != nil {
			return nil, nil, errors.Wrap(err, "idempotency lookup")
		}
		return existing, nil, nil
	}
	return nil, lease, nil
}

func (i *Idempotency) Complete(ctx context.Context, lease *Lease, resp Response) error {
	if err := i.backend.Set(ctx, lease.Key, resp, i.ttl); err != nil {
		return errors.Wrap(err, "idempotency store")
	}
	return i.backend.Release(ctx, lease.Key, lease.owner)
}

func (i *Idempotency) Abort(ctx context.Context, lease *Lease) error {
	return i.backend.Release(ctx, lease.Key, lease.owner)
}

type memEntry struct {
	resp      *Response
	expiresAt time.Time
}

// MemoryBackend is an in-process Backend.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	locks   map[string]memLock
}

type memLock struct {
	owner string
	until time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]*memEntry), locks: make(map[string]memLock)}
}

func (m *MemoryBackend) Acquire(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[key]; ok && time.Now().Before(l.until) {
		return false, nil
	}
	m.locks[key] = memLock{owner: owner, until: time.Now().Add(ttl)}
	return true, nil
}

func (m *MemoryBackend) Release(_ context.Context, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[key]; ok && l.owner == owner {
		delete(m.locks, key)
	}
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	if !time.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, nil
	}
	resp := *e.resp
	return &resp, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, resp Response, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &memEntry{resp: &resp, expiresAt: time.Now().Add(ttl)}
	return nil
}
