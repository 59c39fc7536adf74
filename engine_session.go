package authcore

import (
	"context"
	"errors"
	"net/http"

	"github.com/pawshelter/authcore/token"
)

// AccessClaims defines a public type used by authcore APIs.
type AccessClaims struct {
	UserID string
	Roles  []string
}

// ValidateAccessToken verifies signature and expiry and returns the decoded
// claims, or ErrTokenInvalid/ErrTokenExpired. It never panics on untrusted
// input.
func (e *Engine) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccess(tokenStr)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return &AccessClaims{
		UserID: claims.Subject,
		Roles:  claims.Roles,
	}, nil
}

// ValidateRefreshToken verifies a refresh token and returns its subject.
func (e *Engine) ValidateRefreshToken(tokenStr string) (string, error) {
	if e == nil || e.tokens == nil {
		return "", ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(tokenStr)
	if err != nil {
		return "", mapTokenError(err)
	}
	return claims.Subject, nil
}

// Refresh exchanges a valid refresh token for a fresh access/refresh pair.
// Rotation on every exchange is the only mitigation against a stolen refresh
// token in this stateless design.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.identity == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", MethodNone, ErrTokenInvalid, nil)
		return nil, mapTokenError(err)
	}

	user, err := e.identity.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.Subject, MethodNone, ErrUserNotFound, nil)
		return nil, ErrUserNotFound
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

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.ID, MethodNone, nil, nil)
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Logout clears the session cookies on the outbound response. With stateless
// tokens this plus the short access TTL is the whole revocation story.
func (e *Engine) Logout(ctx context.Context, userID string, w http.ResponseWriter) {
	if e == nil {
		return
	}
	e.ClearSessionCookies(w)
	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, MethodNone, nil, nil)
}

// DisableAllSecondFactors turns off totp and sms, discards both code sets,
// and clears the session cookies.
func (e *Engine) DisableAllSecondFactors(ctx context.Context, userID string, w http.ResponseWriter) error {
	if e == nil || e.identity == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return ErrUserNotFound
	}

	if err := e.DisableTOTP(ctx, userID); err != nil && !errors.Is(err, ErrTOTPNotConfigured) {
		return err
	}
	if err := e.DisableSMS(ctx, userID); err != nil {
		return err
	}
	if err := e.recoveryCodes.clear(ctx, userID); err != nil {
		return err
	}

	if w != nil {
		e.ClearSessionCookies(w)
	}

	e.emitAudit(ctx, auditEventSecondFactorsDisabled, true, userID, MethodNone, nil, nil)
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrInvalid):
		return ErrTokenInvalid
	default:
		return err
	}
}
