package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Code set kinds, part of the redis key.
const (
	CodeSetBackup   = "backup"
	CodeSetRecovery = "recovery"
)

var (
	ErrCodeSetBackend = errors.New("code set backend unavailable")
)

// CodeSetStore keeps a user's unused single-use code hashes in a redis SET.
// Consume is a single SREM, so two racing submissions of the same code resolve
// to exactly one winner without any read-check-write window.
type CodeSetStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewCodeSetStore(redisClient redis.UniversalClient, prefix string) *CodeSetStore {
	if prefix == "" {
		prefix = "acs"
	}
	return &CodeSetStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *CodeSetStore) key(kind, userID string) string {
	return s.prefix + ":" + kind + ":" + userID
}

// Replace atomically discards the previous set and installs the new hashes.
// An empty hash list clears the set.
func (s *CodeSetStore) Replace(
	ctx context.Context,
	kind, userID string,
	hashes [][32]byte,
	ttl time.Duration,
) error {
	key := s.key(kind, userID)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(hashes) == 0 {
			return nil
		}
		members := make([]interface{}, 0, len(hashes))
		for _, h := range hashes {
			members = append(members, string(h[:]))
		}
		pipe.SAdd(ctx, key, members...)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCodeSetBackend, err)
	}
	return nil
}

// Consume removes the hash from the set and reports whether it was present.
func (s *CodeSetStore) Consume(ctx context.Context, kind, userID string, hash [32]byte) (bool, error) {
	n, err := s.redis.SRem(ctx, s.key(kind, userID), string(hash[:])).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCodeSetBackend, err)
	}
	return n > 0, nil
}

// Remaining reports the number of unused codes.
func (s *CodeSetStore) Remaining(ctx context.Context, kind, userID string) (int, error) {
	n, err := s.redis.SCard(ctx, s.key(kind, userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCodeSetBackend, err)
	}
	return int(n), nil
}

// Clear drops the whole set.
func (s *CodeSetStore) Clear(ctx context.Context, kind, userID string) error {
	if err := s.redis.Del(ctx, s.key(kind, userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCodeSetBackend, err)
	}
	return nil
}
