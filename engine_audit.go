package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventLoginEmailUnverified  = "login_email_unverified"
	auditEventTwoFactorRequired     = "two_factor_required"
	auditEventTwoFactorSuccess      = "two_factor_success"
	auditEventTwoFactorFailure      = "two_factor_failure"
	auditEventChallengeReplay       = "challenge_replay"
	auditEventRefreshSuccess        = "refresh_success"
	auditEventRefreshInvalid        = "refresh_invalid"
	auditEventLogout                = "logout"
	auditEventTOTPSetupRequested    = "totp_setup_requested"
	auditEventTOTPEnabled           = "totp_enabled"
	auditEventTOTPDisabled          = "totp_disabled"
	auditEventTOTPFailure           = "totp_failure"
	auditEventSMSSetupRequested     = "sms_setup_requested"
	auditEventSMSSetupConfirmed     = "sms_setup_confirmed"
	auditEventSMSDisabled           = "sms_disabled"
	auditEventSMSCodeSent           = "sms_code_sent"
	auditEventSMSDispatchFailed     = "sms_dispatch_failed"
	auditEventBackupCodesGenerated  = "backup_codes_generated"
	auditEventBackupCodeUsed        = "backup_code_used"
	auditEventBackupCodeFailed      = "backup_code_failed"
	auditEventRecoveryCodesIssued   = "recovery_codes_issued"
	auditEventRecoveryCodeUsed      = "recovery_code_used"
	auditEventRecoveryCodeFailed    = "recovery_code_failed"
	auditEventSecondFactorsDisabled = "second_factors_disabled"
)

// AuditErrorCode defines a public type used by authcore APIs.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrEmailUnverified    AuditErrorCode = "email_unverified"
	auditErrAccountLocked      AuditErrorCode = "account_locked"
	auditErrChallengeInvalid   AuditErrorCode = "challenge_invalid"
	auditErrCodeInvalid        AuditErrorCode = "code_invalid"
	auditErrSetupNotStarted    AuditErrorCode = "setup_not_started"
	auditErrDispatchFailed     AuditErrorCode = "dispatch_failed"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	method SecondFactorMethod,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if method != "" && method != MethodNone {
		event.Method = string(method)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrEmailNotVerified):
		return auditErrEmailUnverified
	case errors.Is(err, ErrAccountLockedOut):
		return auditErrAccountLocked
	case errors.Is(err, ErrChallengeInvalid):
		return auditErrChallengeInvalid
	case errors.Is(err, ErrCodeInvalid):
		return auditErrCodeInvalid
	case errors.Is(err, ErrSetupNotStarted),
		errors.Is(err, ErrTOTPNotConfigured),
		errors.Is(err, ErrTOTPAlreadyEnabled),
		errors.Is(err, ErrPhoneNotSet),
		errors.Is(err, ErrPhoneNotConfirmed),
		errors.Is(err, ErrCodesNotConfigured):
		return auditErrSetupNotStarted
	case errors.Is(err, ErrSMSDispatchFailed):
		return auditErrDispatchFailed
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrChallengeUnavailable),
		errors.Is(err, ErrSMSCodeUnavailable),
		errors.Is(err, ErrCodeSetUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
