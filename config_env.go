package authcore

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	AccessTTL     time.Duration `env:"AUTHCORE_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"AUTHCORE_REFRESH_TTL" envDefault:"168h"`
	SigningMethod string        `env:"AUTHCORE_SIGNING_METHOD" envDefault:"ed25519"`
	PrivateKey    string        `env:"AUTHCORE_PRIVATE_KEY"`
	PublicKey     string        `env:"AUTHCORE_PUBLIC_KEY"`
	TokenIssuer   string        `env:"AUTHCORE_TOKEN_ISSUER"`

	ChallengeTTL time.Duration `env:"AUTHCORE_CHALLENGE_TTL" envDefault:"5m"`

	TOTPIssuer string `env:"AUTHCORE_TOTP_ISSUER" envDefault:"authcore"`

	SMSCodeTTL time.Duration `env:"AUTHCORE_SMS_CODE_TTL" envDefault:"5m"`

	CookieDomain string `env:"AUTHCORE_COOKIE_DOMAIN"`
	CookieSecure bool   `env:"AUTHCORE_COOKIE_SECURE" envDefault:"true"`

	AuditEnabled   bool `env:"AUTHCORE_AUDIT_ENABLED" envDefault:"false"`
	MetricsEnabled bool `env:"AUTHCORE_METRICS_ENABLED" envDefault:"false"`
}

// ConfigFromEnv builds a Config from AUTHCORE_* environment variables on top
// of the package defaults. Signing keys may be raw PEM or standard base64 of
// the raw key bytes.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg := defaultConfig()
	cfg.Tokens.AccessTTL = ec.AccessTTL
	cfg.Tokens.RefreshTTL = ec.RefreshTTL
	cfg.Tokens.SigningMethod = ec.SigningMethod
	cfg.Tokens.Issuer = ec.TokenIssuer
	cfg.Challenge.TTL = ec.ChallengeTTL
	cfg.TOTP.Issuer = ec.TOTPIssuer
	cfg.SMS.CodeTTL = ec.SMSCodeTTL
	cfg.Cookies.Domain = ec.CookieDomain
	cfg.Cookies.Secure = ec.CookieSecure
	cfg.Audit.Enabled = ec.AuditEnabled
	cfg.Metrics.Enabled = ec.MetricsEnabled

	var err error
	if cfg.Tokens.PrivateKey, err = decodeKeyMaterial(ec.PrivateKey); err != nil {
		return Config{}, fmt.Errorf("AUTHCORE_PRIVATE_KEY: %w", err)
	}
	if cfg.Tokens.PublicKey, err = decodeKeyMaterial(ec.PublicKey); err != nil {
		return Config{}, fmt.Errorf("AUTHCORE_PUBLIC_KEY: %w", err)
	}

	return cfg, nil
}

func decodeKeyMaterial(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	// PEM passes through untouched.
	if len(s) > 10 && s[:10] == "-----BEGIN" {
		return []byte(s), nil
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
