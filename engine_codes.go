package authcore

import "context"

// RegenerateBackupCodes discards the previous backup set and issues a fresh
// batch. A live totp code is required so a stolen session alone cannot rotate
// the codes.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, userID, totpCode string) ([]string, error) {
	if e == nil || e.identity == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, ErrUserNotFound
	}

	if err := e.verifyActiveTOTP(ctx, userID, totpCode); err != nil {
		return nil, err
	}

	codes, err := e.backupCodes.generateBatch(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricBackupCodesRegenerated)
	e.emitAudit(ctx, auditEventBackupCodesGenerated, true, userID, MethodBackupCode, nil, nil)
	return codes, nil
}

// BackupCodesRemaining reports the unused backup code count.
func (e *Engine) BackupCodesRemaining(ctx context.Context, userID string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	return e.backupCodes.remaining(ctx, userID)
}

// GenerateRecoveryCodes issues (or re-issues) the account recovery set,
// atomically invalidating any previous batch. The plaintext codes are
// returned exactly once.
func (e *Engine) GenerateRecoveryCodes(ctx context.Context, userID string) ([]string, error) {
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

	codes, err := e.recoveryCodes.generateBatch(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventRecoveryCodesIssued, true, userID, MethodRecoveryCode, nil, nil)
	return codes, nil
}

// VerifyRecoveryCode consumes one account recovery code.
func (e *Engine) VerifyRecoveryCode(ctx context.Context, userID, code string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	ok, err := e.consumeRecoveryCode(ctx, userID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}
	return nil
}

// RecoveryCodesRemaining reports the unused recovery code count.
func (e *Engine) RecoveryCodesRemaining(ctx context.Context, userID string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	return e.recoveryCodes.remaining(ctx, userID)
}

func (e *Engine) consumeBackupCode(ctx context.Context, userID, code string) (bool, error) {
	remaining, err := e.backupCodes.remaining(ctx, userID)
	if err != nil {
		return false, err
	}
	if remaining == 0 {
		return false, ErrCodesNotConfigured
	}

	ok, err := e.backupCodes.consume(ctx, userID, code)
	if err != nil {
		return false, err
	}
	if !ok {
		e.metricInc(MetricBackupCodeFailed)
		e.emitAudit(ctx, auditEventBackupCodeFailed, false, userID, MethodBackupCode, ErrCodeInvalid, nil)
		return false, nil
	}

	e.metricInc(MetricBackupCodeUsed)
	e.emitAudit(ctx, auditEventBackupCodeUsed, true, userID, MethodBackupCode, nil, nil)
	return true, nil
}

func (e *Engine) consumeRecoveryCode(ctx context.Context, userID, code string) (bool, error) {
	ok, err := e.recoveryCodes.consume(ctx, userID, code)
	if err != nil {
		return false, err
	}
	if !ok {
		e.metricInc(MetricRecoveryCodeFailed)
		e.emitAudit(ctx, auditEventRecoveryCodeFailed, false, userID, MethodRecoveryCode, ErrCodeInvalid, nil)
		return false, nil
	}

	e.metricInc(MetricRecoveryCodeUsed)
	e.emitAudit(ctx, auditEventRecoveryCodeUsed, true, userID, MethodRecoveryCode, nil, nil)
	return true, nil
}
