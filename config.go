package authcore

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Tokens        TokensConfig
	Challenge     ChallengeConfig
	TOTP          TOTPConfig
	SMS           SMSConfig
	BackupCodes   CodeSetConfig
	RecoveryCodes CodeSetConfig
	Redis         RedisConfig
	Cookies       CookiesConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

/*
====================================
TOKENS CONFIG
====================================
*/

// TokensConfig defines a public type used by authcore APIs.
//
// TokensConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokensConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig defines a public type used by authcore APIs.
//
// ChallengeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChallengeConfig struct {
	TTL time.Duration
}

/*
====================================
TOTP CONFIG
====================================
*/

// TOTPConfig defines a public type used by authcore APIs.
//
// TOTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPConfig struct {
	Issuer     string
	Digits     int
	Period     time.Duration
	Skew       uint
	SecretSize uint // bytes; 20 is 160 bits
}

/*
====================================
SMS CONFIG
====================================
*/

// SMSConfig defines a public type used by authcore APIs.
//
// SMSConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SMSConfig struct {
	CodeDigits      int
	CodeTTL         time.Duration
	MessageTemplate string // must contain a single %s for the code
}

// CodeSetConfig defines a public type used by authcore APIs.
//
// CodeSetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodeSetConfig struct {
	Count  int
	Length int
}

/*
====================================
REDIS CONFIG
====================================
*/

// RedisConfig defines a public type used by authcore APIs.
//
// RedisConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisConfig struct {
	ChallengePrefix string
	SMSCodePrefix   string
	CodeSetPrefix   string
}

/*
====================================
COOKIES CONFIG
====================================
*/

// CookiesConfig defines a public type used by authcore APIs.
//
// CookiesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookiesConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	SameSite    http.SameSite
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the package defaults. Signing key material is not
// included and must be supplied before Validate passes.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Tokens: TokensConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "ed25519",
		},
		Challenge: ChallengeConfig{
			TTL: 5 * time.Minute,
		},
		TOTP: TOTPConfig{
			Issuer:     "authcore",
			Digits:     6,
			Period:     30 * time.Second,
			Skew:       1,
			SecretSize: 20,
		},
		SMS: SMSConfig{
			CodeDigits:      6,
			CodeTTL:         5 * time.Minute,
			MessageTemplate: "Your verification code is %s",
		},
		BackupCodes: CodeSetConfig{
			Count:  10,
			Length: 10,
		},
		RecoveryCodes: CodeSetConfig{
			Count:  8,
			Length: 12,
		},
		Redis: RedisConfig{
			ChallengePrefix: "alc",
			SMSCodePrefix:   "asc",
			CodeSetPrefix:   "acs",
		},
		Cookies: CookiesConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			Path:        "/",
			Secure:      true,
			SameSite:    http.SameSiteStrictMode,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Tokens.PrivateKey = cloneBytes(cfg.Tokens.PrivateKey)
	out.Tokens.PublicKey = cloneBytes(cfg.Tokens.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Tokens
	if c.Tokens.AccessTTL <= 0 {
		return errors.New("Tokens AccessTTL must be > 0")
	}
	if c.Tokens.RefreshTTL <= 0 {
		return errors.New("Tokens RefreshTTL must be > 0")
	}
	if c.Tokens.RefreshTTL <= c.Tokens.AccessTTL {
		return errors.New("Tokens RefreshTTL must exceed AccessTTL")
	}
	if c.Tokens.SigningMethod != "ed25519" && c.Tokens.SigningMethod != "hs256" {
		return errors.New("unsupported token signing method")
	}
	if c.Tokens.SigningMethod == "ed25519" && len(c.Tokens.PrivateKey) == 0 {
		return errors.New("ed25519 requires PrivateKey")
	}
	if c.Tokens.SigningMethod == "ed25519" && len(c.Tokens.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Tokens.SigningMethod == "hs256" && len(c.Tokens.PrivateKey) == 0 {
		return errors.New("hs256 requires PrivateKey")
	}
	if c.Tokens.Leeway < 0 || c.Tokens.Leeway > 2*time.Minute {
		return errors.New("Tokens Leeway must be between 0 and 2m")
	}

	// Challenge
	if c.Challenge.TTL <= 0 {
		return errors.New("Challenge TTL must be > 0")
	}
	if c.Challenge.TTL > time.Hour {
		return errors.New("Challenge TTL must be <= 1h")
	}

	// TOTP
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 8 {
		return errors.New("TOTP Digits must be between 6 and 8")
	}
	if c.TOTP.Period < 15*time.Second {
		return errors.New("TOTP Period must be >= 15s")
	}
	if c.TOTP.Skew > 2 {
		return errors.New("TOTP Skew must be <= 2")
	}
	if c.TOTP.SecretSize < 20 {
		return errors.New("TOTP SecretSize must be >= 20 bytes")
	}
	if c.TOTP.Issuer == "" {
		return errors.New("TOTP Issuer is required")
	}

	// SMS
	if c.SMS.CodeDigits < 4 || c.SMS.CodeDigits > 10 {
		return errors.New("SMS CodeDigits must be between 4 and 10")
	}
	if c.SMS.CodeTTL <= 0 {
		return errors.New("SMS CodeTTL must be > 0")
	}
	if c.SMS.CodeTTL > 15*time.Minute {
		return errors.New("SMS CodeTTL must be <= 15m")
	}
	if c.SMS.MessageTemplate == "" {
		return errors.New("SMS MessageTemplate is required")
	}

	// Code sets
	if c.BackupCodes.Count <= 0 || c.BackupCodes.Count > 64 {
		return errors.New("BackupCodes Count must be between 1 and 64")
	}
	if c.BackupCodes.Length < 8 {
		return errors.New("BackupCodes Length must be >= 8")
	}
	if c.RecoveryCodes.Count <= 0 || c.RecoveryCodes.Count > 64 {
		return errors.New("RecoveryCodes Count must be between 1 and 64")
	}
	if c.RecoveryCodes.Length < 8 {
		return errors.New("RecoveryCodes Length must be >= 8")
	}

	// Cookies
	if c.Cookies.AccessName == "" || c.Cookies.RefreshName == "" {
		return errors.New("Cookies AccessName and RefreshName are required")
	}
	if c.Cookies.AccessName == c.Cookies.RefreshName {
		return errors.New("Cookies AccessName and RefreshName must differ")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
