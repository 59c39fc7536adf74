package authcore

import "context"

// BeginTOTPSetup generates a fresh shared secret for the user and stores it
// pending. The user is not totp-enabled until ConfirmTOTPSetup succeeds; a
// repeated call replaces the pending secret.
func (e *Engine) BeginTOTPSetup(ctx context.Context, userID string) (*TOTPSetup, error) {
	if e == nil || e.identity == nil || e.totp == nil {
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
	if user.TOTPEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	account := user.Email
	if account == "" {
		account = user.ID
	}
	key, err := e.totp.generate(account)
	if err != nil {
		return nil, err
	}

	if err := e.identity.SavePendingTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventTOTPSetupRequested, true, userID, MethodTOTP, nil, nil)
	return &TOTPSetup{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
	}, nil
}

// ConfirmTOTPSetup verifies the first code against the pending secret. On
// success the secret is promoted, the user becomes totp-enabled, and the
// initial backup code batch is generated and returned; the plaintext codes
// cannot be retrieved again. On failure the pending secret is retained so
// the user may retry.
func (e *Engine) ConfirmTOTPSetup(ctx context.Context, userID, code string) ([]string, error) {
	if e == nil || e.identity == nil || e.totp == nil {
		return nil, ErrEngineNotReady
	}
	if userID == "" {
		return nil, ErrUserNotFound
	}

	record, err := e.identity.GetTOTPSecret(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.Secret == "" {
		return nil, ErrSetupNotStarted
	}
	if record.Confirmed {
		return nil, ErrTOTPAlreadyEnabled
	}

	if !e.totp.verify(code, record.Secret) {
		e.metricInc(MetricTOTPFailure)
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, MethodTOTP, ErrCodeInvalid, nil)
		return nil, ErrCodeInvalid
	}

	if err := e.identity.EnableTOTP(ctx, userID); err != nil {
		return nil, err
	}

	codes, err := e.backupCodes.generateBatch(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricTOTPEnabled)
	e.emitAudit(ctx, auditEventTOTPEnabled, true, userID, MethodTOTP, nil, nil)
	e.emitAudit(ctx, auditEventBackupCodesGenerated, true, userID, MethodBackupCode, nil, nil)
	return codes, nil
}

// VerifyTOTP checks a code against the user's active secret; used at login
// and for sensitive re-authentication.
func (e *Engine) VerifyTOTP(ctx context.Context, userID, code string) error {
	if e == nil || e.identity == nil || e.totp == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}
	return e.verifyActiveTOTP(ctx, userID, code)
}

// DisableTOTP clears the flag and stored secret and invalidates every
// outstanding backup code.
func (e *Engine) DisableTOTP(ctx context.Context, userID string) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	if err := e.identity.DisableTOTP(ctx, userID); err != nil {
		return err
	}
	if err := e.backupCodes.clear(ctx, userID); err != nil {
		return err
	}

	e.metricInc(MetricTOTPDisabled)
	e.emitAudit(ctx, auditEventTOTPDisabled, true, userID, MethodTOTP, nil, nil)
	return nil
}

// VerifyTOTPBackupCode consumes a single backup code in place of a live totp
// code.
func (e *Engine) VerifyTOTPBackupCode(ctx context.Context, userID, code string) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	ok, err := e.consumeBackupCode(ctx, userID, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}
	return nil
}

func (e *Engine) verifyActiveTOTP(ctx context.Context, userID, code string) error {
	record, err := e.identity.GetTOTPSecret(ctx, userID)
	if err != nil {
		return err
	}
	if record == nil || !record.Confirmed || record.Secret == "" {
		return ErrTOTPNotConfigured
	}

	if !e.totp.verify(code, record.Secret) {
		e.metricInc(MetricTOTPFailure)
		e.emitAudit(ctx, auditEventTOTPFailure, false, userID, MethodTOTP, ErrCodeInvalid, nil)
		return ErrCodeInvalid
	}
	return nil
}
