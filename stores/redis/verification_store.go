// Package redis provides a redis-backed verification store. Codes live
// under a single key per email with a native TTL, so expired codes vanish
// without a cleanup job.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appertide/auth"
)

const verificationKeyPrefix = "auth:otp"

type verificationRecord struct {
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationStore implements auth.VerificationStore on a redis client
type VerificationStore struct {
	client *redis.Client
	prefix string
}

func NewVerificationStore(client *redis.Client) *VerificationStore {
	return &VerificationStore{client: client, prefix: verificationKeyPrefix}
}

func (s *VerificationStore) key(email string) string {
	return s.prefix + ":" + email
}

func (s *VerificationStore) CreateVerification(email, code string, expiry time.Duration) (*auth.Verification, error) {
	now := time.Now()
	record := verificationRecord{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	if err := s.client.Set(context.Background(), s.key(email), encoded, expiry).Err(); err != nil {
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}

	return &auth.Verification{
		Email:     email,
		Code:      record.Code,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *VerificationStore) GetVerification(email string) (*auth.Verification, error) {
	data, err := s.client.Get(context.Background(), s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrVerificationNotFound
		}
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}

	var record verificationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &auth.Verification{
		Email:     email,
		Code:      record.Code,
		Attempts:  record.Attempts,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *VerificationStore) DeleteVerification(email string) error {
	return s.client.Del(context.Background(), s.key(email)).Err()
}

func (s *VerificationStore) IncrementAttempts(email string) error {
	ctx := context.Background()
	key := s.key(email)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.ErrVerificationNotFound
		}
		return fmt.Errorf("redis unavailable: %w", err)
	}

	var record verificationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	record.Attempts++

	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	// keep the original TTL running
	return s.client.Set(ctx, key, encoded, redis.KeepTTL).Err()
}
