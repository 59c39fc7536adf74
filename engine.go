package authcore

import (
	"context"
	"time"

	"github.com/pawshelter/authcore/internal/stores"
	"github.com/pawshelter/authcore/token"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config Config

	identity IdentityStore
	sms      SMSSender
	clock    Clock

	challenges    *stores.ChallengeStore
	smsCodes      *stores.SMSCodeStore
	backupCodes   *codeVault
	recoveryCodes *codeVault

	totp   *totpManager
	tokens *token.Manager

	audit   *auditDispatcher
	metrics *Metrics
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under buffer
// pressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) now() time.Time {
	return e.clock.Now()
}

// TwoFactorStatus reports the user's second-factor configuration and the
// remaining single-use codes of both kinds.
func (e *Engine) TwoFactorStatus(ctx context.Context, userID string) (*TwoFactorStatus, error) {
	if e == nil || e.identity == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, ErrUserNotFound
	}

	user, err := e.identity.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	backup, err := e.backupCodes.remaining(ctx, userID)
	if err != nil {
		return nil, err
	}
	recovery, err := e.recoveryCodes.remaining(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &TwoFactorStatus{
		TOTPEnabled:            user.TOTPEnabled,
		PhoneConfirmed:         user.PhoneConfirmed,
		SMSTwoFactor:           user.SMSTwoFactor,
		BackupCodesRemaining:   backup,
		RecoveryCodesRemaining: recovery,
	}, nil
}
