package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawshelter/authcore/internal"
	"github.com/pawshelter/authcore/internal/stores"
)

// BeginSMSSetup records an unconfirmed phone number for the user. The number
// is not trusted until a code dispatched to it is confirmed.
func (e *Engine) BeginSMSSetup(ctx context.Context, userID, phoneE164 string) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}
	if phoneE164 == "" {
		return ErrPhoneNotSet
	}

	if err := e.identity.SetPhoneNumber(ctx, userID, phoneE164); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventSMSSetupRequested, true, userID, MethodSMS, nil, nil)
	return nil
}

// SendSMSSetupCode dispatches a confirmation code to the pending phone
// number.
func (e *Engine) SendSMSSetupCode(ctx context.Context, userID string) error {
	if e == nil || e.identity == nil || e.sms == nil || e.smsCodes == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	user, err := e.identity.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.PhoneNumber == "" {
		return ErrSetupNotStarted
	}

	return e.dispatchCode(ctx, user, stores.SMSPurposeSetup)
}

// ConfirmSMSSetup verifies the setup code and flips the phone-confirmed flag.
func (e *Engine) ConfirmSMSSetup(ctx context.Context, userID, code string) error {
	if e == nil || e.identity == nil || e.smsCodes == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	if err := e.consumeSMSCode(ctx, stores.SMSPurposeSetup, userID, code); err != nil {
		e.emitAudit(ctx, auditEventTwoFactorFailure, false, userID, MethodSMS, err, nil)
		return err
	}

	if err := e.identity.ConfirmPhone(ctx, userID); err != nil {
		return err
	}
	if err := e.identity.SetSMSTwoFactor(ctx, userID, true); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventSMSSetupConfirmed, true, userID, MethodSMS, nil, nil)
	return nil
}

// SendLoginCode generates a fresh 6-digit code for a pending sms login
// challenge. Storing the new code supersedes any prior unconsumed one; the
// returned error reflects dispatch, not delivery.
func (e *Engine) SendLoginCode(ctx context.Context, userID string) error {
	if e == nil || e.identity == nil || e.sms == nil || e.smsCodes == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	user, err := e.identity.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.PhoneConfirmed || user.PhoneNumber == "" {
		return ErrPhoneNotConfirmed
	}

	return e.dispatchCode(ctx, user, stores.SMSPurposeLogin)
}

// VerifySMSLoginCode consumes the live login code for the user. A match is
// single-use; a mismatch leaves the code in place until expiry or the next
// SendLoginCode.
func (e *Engine) VerifySMSLoginCode(ctx context.Context, userID, code string) error {
	if e == nil || e.smsCodes == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}
	return e.verifySMSLoginCode(ctx, userID, code)
}

// DisableSMS clears the SMS second-factor flag. Phone confirmation is kept;
// the number stays usable for future re-enablement.
func (e *Engine) DisableSMS(ctx context.Context, userID string) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	if err := e.identity.SetSMSTwoFactor(ctx, userID, false); err != nil {
		return err
	}
	if err := e.smsCodes.Delete(ctx, stores.SMSPurposeLogin, userID); err != nil {
		return ErrSMSCodeUnavailable
	}

	e.emitAudit(ctx, auditEventSMSDisabled, true, userID, MethodSMS, nil, nil)
	return nil
}

// dispatchCode stores the hashed code first and rolls the record back when
// the transport fails, so a failed dispatch never leaves a verifiable code
// behind.
func (e *Engine) dispatchCode(ctx context.Context, user *User, purpose byte) error {
	code, err := internal.NewNumericCode(e.config.SMS.CodeDigits)
	if err != nil {
		return ErrSMSCodeUnavailable
	}

	record := &stores.SMSCodeRecord{
		Purpose:   purpose,
		ExpiresAt: e.now().Add(e.config.SMS.CodeTTL).Unix(),
		CodeHash:  internal.HashBytes([]byte(code)),
	}
	if err := e.smsCodes.Save(ctx, user.ID, record, e.config.SMS.CodeTTL); err != nil {
		return ErrSMSCodeUnavailable
	}

	body := fmt.Sprintf(e.config.SMS.MessageTemplate, code)
	if err := e.sms.Send(ctx, user.PhoneNumber, body); err != nil {
		_ = e.smsCodes.Delete(ctx, purpose, user.ID)
		e.metricInc(MetricSMSDispatchFailed)
		e.emitAudit(ctx, auditEventSMSDispatchFailed, false, user.ID, MethodSMS, ErrSMSDispatchFailed, nil)
		return ErrSMSDispatchFailed
	}

	e.metricInc(MetricSMSCodeSent)
	e.emitAudit(ctx, auditEventSMSCodeSent, true, user.ID, MethodSMS, nil, nil)
	return nil
}

func (e *Engine) verifySMSLoginCode(ctx context.Context, userID, code string) error {
	return e.consumeSMSCode(ctx, stores.SMSPurposeLogin, userID, code)
}

func (e *Engine) consumeSMSCode(ctx context.Context, purpose byte, userID, code string) error {
	if code == "" {
		return ErrCodeInvalid
	}

	err := e.smsCodes.Consume(ctx, purpose, userID, internal.HashBytes([]byte(code)))
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrSMSCodeNotFound), errors.Is(err, stores.ErrSMSCodeMismatch):
			return ErrCodeInvalid
		default:
			return ErrSMSCodeUnavailable
		}
	}
	return nil
}
