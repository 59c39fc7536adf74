package authcore

import (
	"context"
	"errors"

	"github.com/pawshelter/authcore/internal"
	"github.com/pawshelter/authcore/internal/stores"
)

// BeginLogin verifies credentials and decides whether the login completes
// immediately or requires a second factor.
//
// A challenge token with a single 5-minute TTL (Challenge.TTL) is minted on
// every credential-valid login, whether or not a second factor will consume
// it. The second-factor decision is a table on (phoneConfirmed, totpEnabled):
// totpEnabled selects totp regardless of the phone flag, a confirmed phone
// alone selects sms, and neither completes the login directly. No combination
// requires both factors.
func (e *Engine) BeginLogin(ctx context.Context, email, password string) (*LoginOutcome, error) {
	if e == nil || e.identity == nil || e.challenges == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.identity.FindByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", MethodNone, err, nil)
		return nil, err
	}
	if user == nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", MethodNone, ErrEmailNotRegistered, nil)
		return nil, ErrEmailNotRegistered
	}

	if !user.EmailVerified {
		e.emitAudit(ctx, auditEventLoginEmailUnverified, false, user.ID, MethodNone, ErrEmailNotVerified, nil)
		return &LoginOutcome{
			Status: LoginEmailNotVerified,
			User:   user,
		}, nil
	}

	ok, err := e.identity.VerifyPassword(ctx, user.ID, password)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, MethodNone, err, nil)
		return nil, err
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, MethodNone, ErrPasswordMismatch, nil)
		return nil, ErrPasswordMismatch
	}

	method := decideSecondFactor(user)

	challengeToken, err := e.mintChallenge(ctx, user.ID, method)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, method, err, nil)
		return nil, err
	}

	if method == MethodNone {
		finalized, err := e.finalizeLogin(ctx, user)
		if err != nil {
			return nil, err
		}
		finalized.ChallengeToken = challengeToken
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, MethodNone, nil, nil)
		return finalized, nil
	}

	outcome := &LoginOutcome{
		Status:         LoginTwoFactorRequired,
		User:           user,
		ChallengeToken: challengeToken,
		Method:         method,
	}
	if method == MethodSMS {
		outcome.MaskedPhone = maskPhone(user.PhoneNumber)
	}

	e.metricInc(MetricTwoFactorRequired)
	e.emitAudit(ctx, auditEventTwoFactorRequired, true, user.ID, method, nil, nil)
	return outcome, nil
}

// CompleteLogin consumes a pending challenge with a code for the method the
// challenge was minted for (totp or sms). A wrong code preserves the
// challenge so the user may retry until it expires; a correct code deletes it
// first, so a replayed token fails even with a correct code.
func (e *Engine) CompleteLogin(ctx context.Context, challengeToken, code string) (*LoginOutcome, error) {
	if e == nil || e.identity == nil || e.challenges == nil {
		return nil, ErrEngineNotReady
	}

	challenge, err := e.getChallenge(ctx, challengeToken)
	if err != nil {
		return nil, err
	}

	method := methodFromByte(challenge.Method)
	switch method {
	case MethodTOTP, MethodSMS:
	default:
		// A no-factor challenge has nothing to verify against.
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditEventTwoFactorFailure, false, challenge.UserID, method, ErrChallengeInvalid, nil)
		return nil, ErrChallengeInvalid
	}

	return e.completeChallenge(ctx, challengeToken, challenge, method, code)
}

// CompleteLoginWith consumes a pending challenge with an explicitly chosen
// method: a totp backup code in place of a live totp code, or an account
// recovery code in place of either configured factor.
func (e *Engine) CompleteLoginWith(ctx context.Context, challengeToken, code string, method SecondFactorMethod) (*LoginOutcome, error) {
	if e == nil || e.identity == nil || e.challenges == nil {
		return nil, ErrEngineNotReady
	}

	challenge, err := e.getChallenge(ctx, challengeToken)
	if err != nil {
		return nil, err
	}

	challengeMethod := methodFromByte(challenge.Method)
	switch method {
	case MethodTOTP, MethodSMS:
		if method != challengeMethod {
			e.metricInc(MetricTwoFactorFailure)
			e.emitAudit(ctx, auditEventTwoFactorFailure, false, challenge.UserID, method, ErrChallengeInvalid, nil)
			return nil, ErrChallengeInvalid
		}
	case MethodBackupCode:
		// Backup codes substitute only for a live totp code.
		if challengeMethod != MethodTOTP {
			e.metricInc(MetricTwoFactorFailure)
			e.emitAudit(ctx, auditEventTwoFactorFailure, false, challenge.UserID, method, ErrChallengeInvalid, nil)
			return nil, ErrChallengeInvalid
		}
	case MethodRecoveryCode:
		if challengeMethod == MethodNone {
			e.metricInc(MetricTwoFactorFailure)
			e.emitAudit(ctx, auditEventTwoFactorFailure, false, challenge.UserID, method, ErrChallengeInvalid, nil)
			return nil, ErrChallengeInvalid
		}
	default:
		return nil, ErrChallengeInvalid
	}

	return e.completeChallenge(ctx, challengeToken, challenge, method, code)
}

func (e *Engine) getChallenge(ctx context.Context, challengeToken string) (*stores.LoginChallenge, error) {
	if challengeToken == "" {
		return nil, ErrChallengeInvalid
	}

	challenge, err := e.challenges.Get(ctx, challengeToken)
	if err != nil {
		switch {
		case errors.Is(err, stores.ErrChallengeNotFound):
			e.metricInc(MetricTwoFactorFailure)
			return nil, ErrChallengeInvalid
		case errors.Is(err, stores.ErrChallengeExpired):
			e.metricInc(MetricChallengeExpired)
			return nil, ErrChallengeExpired
		default:
			return nil, ErrChallengeUnavailable
		}
	}
	return challenge, nil
}

func (e *Engine) completeChallenge(
	ctx context.Context,
	challengeToken string,
	challenge *stores.LoginChallenge,
	method SecondFactorMethod,
	code string,
) (*LoginOutcome, error) {
	if err := e.verifySecondFactor(ctx, challenge.UserID, method, code); err != nil {
		e.metricInc(MetricTwoFactorFailure)
		e.emitAudit(ctx, auditEventTwoFactorFailure, false, challenge.UserID, method, err, nil)
		return nil, err
	}

	// Single-use: the delete is the serialization point. Of two racing
	// completions, only the one that observed the delete proceeds to tokens.
	deleted, err := e.challenges.Delete(ctx, challengeToken)
	if err != nil {
		return nil, ErrChallengeUnavailable
	}
	if !deleted {
		e.metricInc(MetricChallengeReplay)
		e.emitAudit(ctx, auditEventChallengeReplay, false, challenge.UserID, method, ErrChallengeInvalid, nil)
		return nil, ErrChallengeInvalid
	}

	user, err := e.identity.FindByID(ctx, challenge.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	outcome, err := e.finalizeLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricTwoFactorSuccess)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventTwoFactorSuccess, true, user.ID, method, nil, nil)
	return outcome, nil
}

func (e *Engine) verifySecondFactor(ctx context.Context, userID string, method SecondFactorMethod, code string) error {
	switch method {
	case MethodTOTP:
		return e.verifyActiveTOTP(ctx, userID, code)
	case MethodSMS:
		return e.verifySMSLoginCode(ctx, userID, code)
	case MethodBackupCode:
		ok, err := e.consumeBackupCode(ctx, userID, code)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCodeInvalid
		}
		return nil
	case MethodRecoveryCode:
		ok, err := e.consumeRecoveryCode(ctx, userID, code)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCodeInvalid
		}
		return nil
	default:
		return ErrChallengeInvalid
	}
}

func (e *Engine) finalizeLogin(ctx context.Context, user *User) (*LoginOutcome, error) {
	if err := e.identity.SetLastLogin(ctx, user.ID, e.now()); err != nil {
		return nil, err
	}

	roles, err := e.identity.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	access, err := e.tokens.CreateAccess(user.ID, roles)
	if err != nil {
		return nil, err
	}
	refresh, err := e.tokens.CreateRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutcome{
		Status: LoginSuccess,
		User:   user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
		},
	}, nil
}

func (e *Engine) mintChallenge(ctx context.Context, userID string, method SecondFactorMethod) (string, error) {
	challengeToken, err := internal.NewChallengeToken()
	if err != nil {
		return "", ErrChallengeUnavailable
	}

	now := e.now()
	record := &stores.LoginChallenge{
		UserID:    userID,
		Method:    methodToByte(method),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(e.config.Challenge.TTL).Unix(),
	}
	if err := e.challenges.Save(ctx, challengeToken, record, e.config.Challenge.TTL); err != nil {
		return "", ErrChallengeUnavailable
	}
	return challengeToken, nil
}

func decideSecondFactor(user *User) SecondFactorMethod {
	switch {
	case user.TOTPEnabled:
		return MethodTOTP
	case user.PhoneConfirmed:
		return MethodSMS
	default:
		return MethodNone
	}
}

func methodToByte(method SecondFactorMethod) byte {
	switch method {
	case MethodSMS:
		return stores.ChallengeMethodSMS
	case MethodTOTP:
		return stores.ChallengeMethodTOTP
	default:
		return stores.ChallengeMethodNone
	}
}

func methodFromByte(b byte) SecondFactorMethod {
	switch b {
	case stores.ChallengeMethodSMS:
		return MethodSMS
	case stores.ChallengeMethodTOTP:
		return MethodTOTP
	default:
		return MethodNone
	}
}

const phoneMaskRun = "*******"

// maskPhone keeps the first 4 characters and last 2 digits with a fixed
// 7-asterisk run between them. Numbers shorter than 7 characters are returned
// unmasked.
func maskPhone(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:4] + phoneMaskRun + phone[len(phone)-2:]
}
