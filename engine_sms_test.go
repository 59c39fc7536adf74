package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSMSSetupFlow(t *testing.T) {
	engine, identity, sms, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	if err := engine.BeginSMSSetup(context.Background(), "u1", "+380501234567"); err != nil {
		t.Fatalf("BeginSMSSetup failed: %v", err)
	}
	if u := identity.get("u1"); u.PhoneNumber != "+380501234567" || u.PhoneConfirmed {
		t.Fatalf("expected pending unconfirmed phone, got %+v", u)
	}

	if err := engine.SendSMSSetupCode(context.Background(), "u1"); err != nil {
		t.Fatalf("SendSMSSetupCode failed: %v", err)
	}
	if err := engine.ConfirmSMSSetup(context.Background(), "u1", sms.lastCode(t)); err != nil {
		t.Fatalf("ConfirmSMSSetup failed: %v", err)
	}

	u := identity.get("u1")
	if !u.PhoneConfirmed || !u.SMSTwoFactor {
		t.Fatalf("expected confirmed phone with sms enabled, got %+v", u)
	}
}

func TestSendSMSSetupCodeWithoutPhone(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedPlainUser(identity)

	if err := engine.SendSMSSetupCode(context.Background(), "u1"); !errors.Is(err, ErrSetupNotStarted) {
		t.Fatalf("expected ErrSetupNotStarted, got %v", err)
	}
}

func TestSendLoginCodeRequiresConfirmedPhone(t *testing.T) {
	engine, identity, _, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	identity.add(User{
		ID:            "u1",
		Email:         "alice@example.com",
		EmailVerified: true,
		PhoneNumber:   "+380501234567",
	}, "correct-password-123")

	if err := engine.SendLoginCode(context.Background(), "u1"); !errors.Is(err, ErrPhoneNotConfirmed) {
		t.Fatalf("expected ErrPhoneNotConfirmed, got %v", err)
	}
}

func TestSendLoginCodeSupersedesPrevious(t *testing.T) {
	engine, identity, sms, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedSMSUser(identity)

	if err := engine.SendLoginCode(context.Background(), "u2"); err != nil {
		t.Fatalf("SendLoginCode failed: %v", err)
	}
	first := sms.lastCode(t)

	if err := engine.SendLoginCode(context.Background(), "u2"); err != nil {
		t.Fatalf("SendLoginCode failed: %v", err)
	}
	second := sms.lastCode(t)

	if first != second {
		if err := engine.VerifySMSLoginCode(context.Background(), "u2", first); !errors.Is(err, ErrCodeInvalid) {
			t.Fatalf("expected superseded code to be rejected, got %v", err)
		}
	}
	if err := engine.VerifySMSLoginCode(context.Background(), "u2", second); err != nil {
		t.Fatalf("expected latest code to verify, got %v", err)
	}
}

func TestSMSLoginCodeSingleUse(t *testing.T) {
	engine, identity, sms, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedSMSUser(identity)

	if err := engine.SendLoginCode(context.Background(), "u2"); err != nil {
		t.Fatalf("SendLoginCode failed: %v", err)
	}
	code := sms.lastCode(t)

	if err := engine.VerifySMSLoginCode(context.Background(), "u2", code); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	if err := engine.VerifySMSLoginCode(context.Background(), "u2", code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid on reuse, got %v", err)
	}
}

func TestSMSLoginCodeExpires(t *testing.T) {
	engine, identity, sms, clock, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedSMSUser(identity)

	if err := engine.SendLoginCode(context.Background(), "u2"); err != nil {
		t.Fatalf("SendLoginCode failed: %v", err)
	}
	code := sms.lastCode(t)

	clock.Advance(5*time.Minute + time.Second)

	if err := engine.VerifySMSLoginCode(context.Background(), "u2", code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid for expired code, got %v", err)
	}
}

func TestSendLoginCodeDispatchFailureLeavesNoCode(t *testing.T) {
	engine, identity, sms, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedSMSUser(identity)

	sms.fail = true
	if err := engine.SendLoginCode(context.Background(), "u2"); !errors.Is(err, ErrSMSDispatchFailed) {
		t.Fatalf("expected ErrSMSDispatchFailed, got %v", err)
	}
	sms.fail = false

	// The stored record was rolled back, so nothing can verify.
	if err := engine.VerifySMSLoginCode(context.Background(), "u2", "000000"); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid after failed dispatch, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSMSDispatchFailed] != 1 {
		t.Fatalf("expected one dispatch failure, got %d", snap.Counters[MetricSMSDispatchFailed])
	}
}

func TestDisableSMSKeepsPhoneConfirmation(t *testing.T) {
	engine, identity, sms, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedSMSUser(identity)

	if err := engine.SendLoginCode(context.Background(), "u2"); err != nil {
		t.Fatalf("SendLoginCode failed: %v", err)
	}
	code := sms.lastCode(t)

	if err := engine.DisableSMS(context.Background(), "u2"); err != nil {
		t.Fatalf("DisableSMS failed: %v", err)
	}

	u := identity.get("u2")
	if u.SMSTwoFactor {
		t.Fatal("expected sms second factor disabled")
	}
	if !u.PhoneConfirmed || u.PhoneNumber == "" {
		t.Fatal("expected phone confirmation to survive disable")
	}

	// The outstanding login code is discarded with the factor.
	if err := engine.VerifySMSLoginCode(context.Background(), "u2", code); !errors.Is(err, ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid after disable, got %v", err)
	}
}

func TestSMSCodeHasConfiguredDigits(t *testing.T) {
	engine, identity, sms, _, done := newLoginTestEngine(t, loginTestConfig())
	defer done()
	seedSMSUser(identity)

	if err := engine.SendLoginCode(context.Background(), "u2"); err != nil {
		t.Fatalf("SendLoginCode failed: %v", err)
	}
	code := sms.lastCode(t)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric code, got %q", code)
		}
	}
}
