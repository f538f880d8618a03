package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/abhigupta0507/NadiRakshak-Backend/internal/domain"
)

const defaultPrefix = "signup:pending"

// PendingSignupStore keeps unconfirmed registrations keyed by session id.
type PendingSignupStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewPendingSignupStore(rdb redis.UniversalClient, prefix string) *PendingSignupStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &PendingSignupStore{rdb: rdb, prefix: prefix}
}

func (s *PendingSignupStore) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

func (s *PendingSignupStore) Save(ctx context.Context, sessionID string, pending domain.PendingSignup, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("session id required")
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(sessionID), data, ttl).Err()
}

func (s *PendingSignupStore) Get(ctx context.Context, sessionID string) (*domain.PendingSignup, error) {
	if sessionID == "" {
		return nil, domain.ErrNoPendingSignup
	}
	data, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoPendingSignup
	}
	if err != nil {
		return nil, err
	}
	var pending domain.PendingSignup
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("decode pending signup: %w", err)
	}
	return &pending, nil
}

func (s *PendingSignupStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.key(sessionID)).Err()
}

// Connect opens a client and waits for the first PING to succeed.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second
	ping := func() error { return rdb.Ping(ctx).Err() }
	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx)); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
