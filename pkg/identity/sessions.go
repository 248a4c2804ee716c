package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore tracks live sessions in Redis keyed by token jti. Sign-out
// revokes the jti, so a structurally valid JWT is rejected once its session
// is gone.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, jti, userID string) error {
	return s.client.Set(ctx, sessionKeyPrefix+jti, userID, s.ttl).Err()
}

func (s *SessionStore) Active(ctx context.Context, jti string) (bool, error) {
	result, err := s.client.Exists(ctx, sessionKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("session lookup failed: %w", err)
	}
	return result > 0, nil
}

func (s *SessionStore) Revoke(ctx context.Context, jti string) error {
	return s.client.Del(ctx, sessionKeyPrefix+jti).Err()
}
