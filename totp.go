package authcore

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

type totpManager struct {
	cfg TOTPConfig
	now func() time.Time
}

func newTOTPManager(cfg TOTPConfig, now func() time.Time) *totpManager {
	if now == nil {
		now = time.Now
	}
	return &totpManager{
		cfg: cfg,
		now: now,
	}
}

// generate mints a fresh shared secret and provisioning key for the account.
// The secret is returned base32-encoded inside the key; callers render the
// otpauth:// URL as a QR image themselves.
func (t *totpManager) generate(accountName string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      t.cfg.Issuer,
		AccountName: accountName,
		Period:      uint(t.cfg.Period / time.Second),
		SecretSize:  t.cfg.SecretSize,
		Digits:      otp.Digits(t.cfg.Digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
}

// verify checks the submitted code against the secret at the injected clock's
// current step, tolerating the configured skew on either side.
func (t *totpManager) verify(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, t.now().UTC(), totp.ValidateOpts{
		Period:    uint(t.cfg.Period / time.Second),
		Skew:      t.cfg.Skew,
		Digits:    otp.Digits(t.cfg.Digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
