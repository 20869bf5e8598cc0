package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	coreredis "github.com/thev1ndu/xp/db/redis"
)

// RedisTokenStore implements providers.TokenStore using Redis.
// Tokens are stored without expiry, one key per username.
type RedisTokenStore struct {
	redis     *coreredis.Client
	keyPrefix string
	logger    zerolog.Logger
}

// NewRedisTokenStore creates a new Redis-backed token store
func NewRedisTokenStore(redisClient *coreredis.Client, keyPrefix string, logger zerolog.Logger) *RedisTokenStore {
	return &RedisTokenStore{
		redis:     redisClient,
		keyPrefix: keyPrefix,
		logger:    logger.With().Str("component", "token_store").Logger(),
	}
}

func (s *RedisTokenStore) tokenKey(username string) string {
	return s.keyPrefix + username
}

// Get returns the token stored for username
func (s *RedisTokenStore) Get(ctx context.Context, username string) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.tokenKey(username))
	if errors.Is(err, coreredis.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get token: %w", err)
	}
	return token, true, nil
}

// Put stores token for username, replacing any previous token
func (s *RedisTokenStore) Put(ctx context.Context, username, token string) error {
	if err := s.redis.Set(ctx, s.tokenKey(username), token, 0); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// CompareAndSwap stores new only if the current token equals old
func (s *RedisTokenStore) CompareAndSwap(ctx context.Context, username, old, new string) (bool, error) {
	swapped, err := s.redis.CompareAndSwap(ctx, s.tokenKey(username), old, new)
	if err != nil {
		return false, err
	}
	if !swapped {
		s.logger.Debug().Str("player", username).Msg("Token changed concurrently")
	}
	return swapped, nil
}
