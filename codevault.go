package authcore

import (
	"context"

	"github.com/pawshelter/authcore/internal"
	"github.com/pawshelter/authcore/internal/stores"
)

// codeVault manages one kind of single-use code set (totp backup or account
// recovery). Plaintext codes exist only in the return value of generateBatch;
// storage holds user-bound hashes.
type codeVault struct {
	store *stores.CodeSetStore
	kind  string
	cfg   CodeSetConfig
}

func newCodeVault(store *stores.CodeSetStore, kind string, cfg CodeSetConfig) *codeVault {
	return &codeVault{
		store: store,
		kind:  kind,
		cfg:   cfg,
	}
}

// generateBatch replaces the previous set atomically and returns the new
// plaintext codes exactly once.
func (v *codeVault) generateBatch(ctx context.Context, userID string) ([]string, error) {
	hashes := make([][32]byte, 0, v.cfg.Count)
	codes := make([]string, 0, v.cfg.Count)

	for i := 0; i < v.cfg.Count; i++ {
		raw, err := internal.NewHumanCode(v.cfg.Length)
		if err != nil {
			return nil, ErrCodeSetUnavailable
		}
		canonical := internal.CanonicalizeCode(raw)
		hashes = append(hashes, internal.CodeHash(userID, canonical))
		codes = append(codes, internal.FormatHumanCode(raw))
	}

	if err := v.store.Replace(ctx, v.kind, userID, hashes, 0); err != nil {
		return nil, ErrCodeSetUnavailable
	}
	return codes, nil
}

// consume hashes the submission and removes a matching unused code. Exactly
// one of two racing calls with the same code returns true.
func (v *codeVault) consume(ctx context.Context, userID, code string) (bool, error) {
	canonical := internal.CanonicalizeCode(code)
	if canonical == "" {
		return false, nil
	}
	ok, err := v.store.Consume(ctx, v.kind, userID, internal.CodeHash(userID, canonical))
	if err != nil {
		return false, ErrCodeSetUnavailable
	}
	return ok, nil
}

func (v *codeVault) remaining(ctx context.Context, userID string) (int, error) {
	n, err := v.store.Remaining(ctx, v.kind, userID)
	if err != nil {
		return 0, ErrCodeSetUnavailable
	}
	return n, nil
}

func (v *codeVault) clear(ctx context.Context, userID string) error {
	if err := v.store.Clear(ctx, v.kind, userID); err != nil {
		return ErrCodeSetUnavailable
	}
	return nil
}
