// Package redisotp keeps OTP challenges in Redis. The key TTL is the
// validity window, so expired challenges disappear on their own and
// no cleanup job is needed; a resend simply overwrites the key, which
// voids the previous code.
package redisotp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

type Store interface {
	// Put stores the challenge, superseding any prior one for the guest.
	Put(ctx context.Context, ch *domain.OTPChallenge, ttl time.Duration) error
	// Get returns the current challenge, or nil when none exists.
	Get(ctx context.Context, guestID string) (*domain.OTPChallenge, error)
	// Consume removes the challenge so the code is single use.
	Consume(ctx context.Context, guestID string) error
}

type RedisStore struct{ client *redis.Client }

func NewRedisStore(client *redis.Client) *RedisStore { return &RedisStore{client: client} }

func key(guestID string) string { return "otp:" + guestID }

func (s *RedisStore) Put(ctx context.Context, ch *domain.OTPChallenge, ttl time.Duration) error {
	payload, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("marshal otp challenge: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, key(ch.GuestID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, guestID string) (*domain.OTPChallenge, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	payload, err := s.client.Get(ctx, key(guestID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load otp challenge: %w", err)
	}

	var ch domain.OTPChallenge
	if err := json.Unmarshal(payload, &ch); err != nil {
		return nil, fmt.Errorf("unmarshal otp challenge: %w", err)
	}
	return &ch, nil
}

func (s *RedisStore) Consume(ctx context.Context, guestID string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, key(guestID)).Err(); err != nil {
		return fmt.Errorf("consume otp challenge: %w", err)
	}
	return nil
}
