package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/session"
)

const maxUpdateAttempts = 5

// SessionStore keeps booking sessions as JSON values that expire after ttl.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	return &SessionStore{client: cache.Client(), ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *SessionStore) Create(ctx context.Context, st *session.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	ok, err := s.client.SetNX(ctx, sessionKey(st.ID), data, s.ttl).Result()
	if err != nil {
		return errors.Wrap(err, "create session")
	}
	if !ok {
		return errors.Wrapf(domain.ErrConflict, "session %s exists", st.ID)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.State, error) {
	return s.load(ctx, s.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *SessionStore) load(ctx context.Context, g getter, id string) (*session.State, error) {
	data, err := g.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.Wrapf(domain.ErrSessionNotFound, "session %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load session")
	}
	var st session.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &st, nil
}

// Update retries the optimistic WATCH transaction when another writer wins.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(st *session.State) error) (*session.State, error) {
	key := sessionKey(id)
	var result *session.State
	txf := func(tx *redis.Tx) error {
		st, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		st.UpdatedAt = time.Now()
		data, err := json.Marshal(st)
		if err != nil {
			return errors.Wrap(err, "encode session")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = st
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, errors.Wrapf(domain.ErrConflict, "session %s: too many concurrent updates", id)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}
