package authcore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func loginDirect(t *testing.T, engine *Engine) TokenPair {
	t.Helper()
	outcome, err := engine.BeginLogin(context.Background(), "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("BeginLogin failed: %v", err)
	}
	if outcome.Status != LoginSuccess {
		t.Fatalf("expected direct success, got %v", outcome.Status)
	}
	return outcome.Tokens
}

func TestValidateAccessTokenRoundTrip(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)

	claims, err := engine.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("expected subject u1, got %s", claims.UserID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "user" {
		t.Fatalf("unexpected roles: %v", claims.Roles)
	}
}

func TestValidateAccessTokenExpires(t *testing.T) {
	engine, identity, _, clock, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)
	clock.Advance(16 * time.Minute)

	_, err := engine.ValidateAccessToken(pair.AccessToken)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatal("expected expiry to match ErrTokenInvalid")
	}
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := engine.ValidateAccessToken(tok); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", tok, err)
		}
	}
}

func TestRefreshIssuesNewPair(t *testing.T) {
	engine, identity, _, clock, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)
	clock.Advance(time.Minute)

	fresh, err := engine.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Fatal("expected a full pair from refresh")
	}
	if fresh.AccessToken == pair.AccessToken {
		t.Fatal("expected a newly issued access token")
	}

	claims, err := engine.ValidateAccessToken(fresh.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("expected subject u1, got %s", claims.UserID)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)

	if _, err := engine.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token in refresh slot, got %v", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	engine, identity, _, clock, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)
	clock.Advance(7*24*time.Hour + time.Minute)

	if _, err := engine.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshUnknownSubject(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)

	identity.mu.Lock()
	delete(identity.users, "u1")
	identity.mu.Unlock()

	if _, err := engine.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestWriteSessionCookies(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	pair := loginDirect(t, engine)

	rec := httptest.NewRecorder()
	engine.WriteSessionCookies(rec, pair)

	access := findCookie(t, rec, "access_token")
	if access.Value != pair.AccessToken || !access.HttpOnly || access.MaxAge != int((15*time.Minute).Seconds()) {
		t.Fatalf("unexpected access cookie: %+v", access)
	}
	refresh := findCookie(t, rec, "refresh_token")
	if refresh.Value != pair.RefreshToken || refresh.MaxAge != int((7*24*time.Hour).Seconds()) {
		t.Fatalf("unexpected refresh cookie: %+v", refresh)
	}
}

func TestLogoutClearsCookies(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	rec := httptest.NewRecorder()
	engine.Logout(context.Background(), "u1", rec)

	for _, name := range []string{"access_token", "refresh_token"} {
		c := findCookie(t, rec, name)
		if c.Value != "" || c.MaxAge >= 0 {
			t.Fatalf("expected expired %s cookie, got %+v", name, c)
		}
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected one logout, got %d", snap.Counters[MetricLogout])
	}
}

func TestDisableAllSecondFactors(t *testing.T) {
	engine, identity, sms, clock, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)
	_ = sms

	enableTOTP(t, engine, clock, "u1")
	if err := engine.BeginSMSSetup(context.Background(), "u1", "+380501234567"); err != nil {
		t.Fatalf("BeginSMSSetup failed: %v", err)
	}
	if err := engine.SendSMSSetupCode(context.Background(), "u1"); err != nil {
		t.Fatalf("SendSMSSetupCode failed: %v", err)
	}
	if err := engine.ConfirmSMSSetup(context.Background(), "u1", sms.lastCode(t)); err != nil {
		t.Fatalf("ConfirmSMSSetup failed: %v", err)
	}
	if _, err := engine.GenerateRecoveryCodes(context.Background(), "u1"); err != nil {
		t.Fatalf("GenerateRecoveryCodes failed: %v", err)
	}

	rec := httptest.NewRecorder()
	if err := engine.DisableAllSecondFactors(context.Background(), "u1", rec); err != nil {
		t.Fatalf("DisableAllSecondFactors failed: %v", err)
	}

	u := identity.get("u1")
	if u.TOTPEnabled || u.SMSTwoFactor {
		t.Fatalf("expected both factors disabled, got %+v", u)
	}

	status, err := engine.TwoFactorStatus(context.Background(), "u1")
	if err != nil {
		t.Fatalf("TwoFactorStatus failed: %v", err)
	}
	if status.TOTPEnabled || status.SMSTwoFactor {
		t.Fatalf("expected disabled status, got %+v", status)
	}
	if status.BackupCodesRemaining != 0 || status.RecoveryCodesRemaining != 0 {
		t.Fatalf("expected empty code sets, got %+v", status)
	}

	findCookie(t, rec, "access_token")
	findCookie(t, rec, "refresh_token")
}

func TestTwoFactorStatusReflectsConfiguration(t *testing.T) {
	engine, identity, _, clock, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)
	enableTOTP(t, engine, clock, "u1")

	status, err := engine.TwoFactorStatus(context.Background(), "u1")
	if err != nil {
		t.Fatalf("TwoFactorStatus failed: %v", err)
	}
	if !status.TOTPEnabled {
		t.Fatal("expected totp enabled in status")
	}
	if status.BackupCodesRemaining != loginTestConfig().BackupCodes.Count {
		t.Fatalf("expected full backup set, got %d", status.BackupCodesRemaining)
	}
}
