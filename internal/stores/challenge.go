package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	challengeRecordVersion1 = 1
)

// Challenge method bytes as persisted in the record.
const (
	ChallengeMethodNone byte = 0
	ChallengeMethodSMS  byte = 1
	ChallengeMethodTOTP byte = 2
)

var (
	ErrChallengeNotFound = errors.New("login challenge not found")
	ErrChallengeExpired  = errors.New("login challenge expired")
	ErrChallengeBackend  = errors.New("login challenge backend unavailable")
)

type LoginChallenge struct {
	UserID    string
	Method    byte
	IssuedAt  int64
	ExpiresAt int64
}

// ChallengeStore keeps pending second-factor challenges keyed by their opaque
// token. Records are single-use: Delete reports whether the key still existed,
// which is how concurrent completions are serialized.
type ChallengeStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewChallengeStore(redisClient redis.UniversalClient, prefix string, now func() time.Time) *ChallengeStore {
	if prefix == "" {
		prefix = "alc"
	}
	if now == nil {
		now = time.Now
	}
	return &ChallengeStore{
		redis:  redisClient,
		prefix: prefix,
		now:    now,
	}
}

func (s *ChallengeStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *ChallengeStore) Save(
	ctx context.Context,
	token string,
	record *LoginChallenge,
	ttl time.Duration,
) error {
	encoded, err := encodeLoginChallenge(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return nil
}

func (s *ChallengeStore) Get(ctx context.Context, token string) (*LoginChallenge, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}

	record, err := decodeLoginChallenge(data)
	if err != nil {
		return nil, err
	}
	if s.now().Unix() > record.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(token)).Result()
		return nil, ErrChallengeExpired
	}
	return record, nil
}

// Delete removes the challenge and reports whether it was still present.
// Exactly one of two racing callers observes true.
func (s *ChallengeStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	return n > 0, nil
}

func encodeLoginChallenge(record *LoginChallenge) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(challengeRecordVersion1)
	buf.WriteByte(record.Method)

	if err := binary.Write(&buf, binary.BigEndian, record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.UserID) > 65535 {
		return nil, errors.New("login challenge user id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.UserID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.UserID)

	return buf.Bytes(), nil
}

func decodeLoginChallenge(data []byte) (*LoginChallenge, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != challengeRecordVersion1 {
		return nil, errors.New("invalid login challenge version")
	}

	method, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &LoginChallenge{Method: method}
	if err := binary.Read(reader, binary.BigEndian, &record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var userLen uint16
	if err := binary.Read(reader, binary.BigEndian, &userLen); err != nil {
		return nil, err
	}
	user := make([]byte, userLen)
	if _, err := io.ReadFull(reader, user); err != nil {
		return nil, err
	}
	record.UserID = string(user)

	return record, nil
}
