package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRefreshTokenRevoked = errors.New("Token is invalid or expired")

// TokenStore keeps the ids of refresh tokens that may still be exchanged.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func refreshKey(jti string) string {
	return "refresh_token:" + jti
}

func (s *TokenStore) SaveRefresh(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKey(jti), userID, ttl).Err()
}

// CheckRefresh returns the user id stored for jti.
func (s *TokenStore) CheckRefresh(ctx context.Context, jti string) (uint, error) {
	val, err := s.client.Get(ctx, refreshKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrRefreshTokenRevoked
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrRefreshTokenRevoked
	}
	return uint(id), nil
}
