package stores

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	smsCodeRecordVersion1 = 1
)

// SMS code purposes. Setup and login codes live under separate keys so a
// number-confirmation code never collides with a login challenge code.
const (
	SMSPurposeSetup byte = 1
	SMSPurposeLogin byte = 2
)

var (
	ErrSMSCodeNotFound = errors.New("sms code not found")
	ErrSMSCodeMismatch = errors.New("sms code mismatch")
	ErrSMSCodeBackend  = errors.New("sms code backend unavailable")
)

type SMSCodeRecord struct {
	Purpose   byte
	ExpiresAt int64
	CodeHash  [32]byte
}

// SMSCodeStore keeps at most one live code per (user, purpose). Save
// overwrites unconditionally, which is how a fresh SendLoginCode supersedes
// any prior unconsumed code.
type SMSCodeStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewSMSCodeStore(redisClient redis.UniversalClient, prefix string, now func() time.Time) *SMSCodeStore {
	if prefix == "" {
		prefix = "asc"
	}
	if now == nil {
		now = time.Now
	}
	return &SMSCodeStore{
		redis:  redisClient,
		prefix: prefix,
		now:    now,
	}
}

func (s *SMSCodeStore) key(purpose byte, userID string) string {
	return s.prefix + ":" + strconv.Itoa(int(purpose)) + ":" + userID
}

func (s *SMSCodeStore) Save(
	ctx context.Context,
	userID string,
	record *SMSCodeRecord,
	ttl time.Duration,
) error {
	encoded, err := encodeSMSCodeRecord(record)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(record.Purpose, userID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSMSCodeBackend, err)
	}
	return nil
}

// Delete removes the live code, used to roll back a stored code when dispatch
// fails.
func (s *SMSCodeStore) Delete(ctx context.Context, purpose byte, userID string) error {
	if err := s.redis.Del(ctx, s.key(purpose, userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSMSCodeBackend, err)
	}
	return nil
}

// Consume verifies the submitted hash against the stored record inside a WATCH
// transaction. A match deletes the record; a mismatch leaves it in place so
// the user may retry until expiry or supersession.
func (s *SMSCodeStore) Consume(
	ctx context.Context,
	purpose byte,
	userID string,
	providedHash [32]byte,
) error {
	const maxRetries = 4
	key := s.key(purpose, userID)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeSMSCodeRecord(data)
			if err != nil {
				return err
			}
			if s.now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrSMSCodeNotFound
			}

			if subtle.ConstantTimeCompare(record.CodeHash[:], providedHash[:]) != 1 {
				return ErrSMSCodeMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return ErrSMSCodeNotFound
			case errors.Is(err, ErrSMSCodeNotFound), errors.Is(err, ErrSMSCodeMismatch):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrSMSCodeBackend, err)
			}
		}
		return nil
	}

	return ErrSMSCodeNotFound
}

func encodeSMSCodeRecord(record *SMSCodeRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(smsCodeRecordVersion1)
	buf.WriteByte(record.Purpose)

	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	buf.Write(record.CodeHash[:])

	return buf.Bytes(), nil
}

func decodeSMSCodeRecord(data []byte) (*SMSCodeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != smsCodeRecordVersion1 {
		return nil, errors.New("invalid sms code record version")
	}

	record := &SMSCodeRecord{}
	if record.Purpose, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(reader, record.CodeHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
