// Package redisstore keeps verification codes in Redis so they can live
// outside the account database. Keys expire on their own; the stored expiry
// is still checked by the caller so an expired code is reported as such.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"xuper/internal/domain"
	"xuper/internal/store"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "xuper:verification:"

// Keys outlive the code by this much so that a late attempt still sees the
// record and gets CodeExpired instead of CodeNotFound.
const expiredGrace = 15 * time.Minute

type VerificationStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ store.VerificationStore = (*VerificationStore)(nil)

func New(rdb redis.UniversalClient) *VerificationStore {
	return &VerificationStore{rdb: rdb, prefix: defaultPrefix}
}

// NewClient builds a client from a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

type record struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"codeHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *VerificationStore) key(email string) string { return s.prefix + email }

func (s *VerificationStore) Upsert(ctx context.Context, v *domain.VerificationCode) error {
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	payload, err := json.Marshal(record{
		Email:     v.Email,
		CodeHash:  v.CodeHash,
		ExpiresAt: v.ExpiresAt.UTC(),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	})
	if err != nil {
		return err
	}

	ttl := time.Until(v.ExpiresAt) + expiredGrace
	if ttl <= 0 {
		ttl = expiredGrace
	}
	return s.rdb.Set(ctx, s.key(v.Email), payload, ttl).Err()
}

func (s *VerificationStore) GetByEmail(ctx context.Context, email string) (*domain.VerificationCode, error) {
	raw, err := s.rdb.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrRecordNotFound
		}
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &domain.VerificationCode{
		Email:     rec.Email,
		CodeHash:  rec.CodeHash,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

func (s *VerificationStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, s.key(email)).Err()
}

// PurgeExpired drops records whose code has expired but whose key is still
// inside the grace window.
func (s *VerificationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return purged, err
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil || now.After(rec.ExpiresAt) {
			n, err := s.rdb.Del(ctx, key).Result()
			if err != nil {
				return purged, err
			}
			purged += n
		}
	}
	return purged, iter.Err()
}
