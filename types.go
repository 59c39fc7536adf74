package authcore

import (
	"context"
	"time"
)

// User defines a public type used by authcore APIs.
//
// User instances are snapshots of the identity store's security profile; the
// engine reads them at the start of an operation and never caches them across
// calls.
type User struct {
	ID             string
	Email          string
	EmailVerified  bool
	PhoneNumber    string
	PhoneConfirmed bool
	SMSTwoFactor   bool
	TOTPEnabled    bool
	LastLoginAt    time.Time
}

// TOTPSecret defines a public type used by authcore APIs.
//
// Confirmed is false while the secret is pending, between setup begin and the
// first successful code confirmation.
type TOTPSecret struct {
	Secret    string // base32, no padding
	Confirmed bool
}

// IdentityStore is the identity backend the engine verifies credentials
// against. Password hashing and lockout policy live behind this interface;
// VerifyPassword surfaces ErrAccountLockedOut when the store enforces one.
//
// Implementations must be safe for concurrent use.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, userID string) (*User, error)
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
	GetRoles(ctx context.Context, userID string) ([]string, error)
	SetLastLogin(ctx context.Context, userID string, at time.Time) error

	SavePendingTOTPSecret(ctx context.Context, userID, secret string) error
	GetTOTPSecret(ctx context.Context, userID string) (*TOTPSecret, error)
	EnableTOTP(ctx context.Context, userID string) error
	DisableTOTP(ctx context.Context, userID string) error

	SetPhoneNumber(ctx context.Context, userID, phone string) error
	ConfirmPhone(ctx context.Context, userID string) error
	SetSMSTwoFactor(ctx context.Context, userID string, enabled bool) error
}

// SMSSender dispatches a single message to an E.164 phone number. The engine
// only requires at-least-one-attempt semantics; delivery retries belong to the
// transport.
type SMSSender interface {
	Send(ctx context.Context, toE164, body string) error
}

// SecondFactorMethod defines a public type used by authcore APIs.
type SecondFactorMethod string

const (
	// MethodNone is an exported constant or variable used by the authentication engine.
	MethodNone SecondFactorMethod = "none"
	// MethodTOTP is an exported constant or variable used by the authentication engine.
	MethodTOTP SecondFactorMethod = "totp"
	// MethodSMS is an exported constant or variable used by the authentication engine.
	MethodSMS SecondFactorMethod = "sms"
	// MethodBackupCode is an exported constant or variable used by the authentication engine.
	MethodBackupCode SecondFactorMethod = "backup_code"
	// MethodRecoveryCode is an exported constant or variable used by the authentication engine.
	MethodRecoveryCode SecondFactorMethod = "recovery_code"
)

// LoginStatus defines a public type used by authcore APIs.
type LoginStatus int

const (
	// LoginSuccess is an exported constant or variable used by the authentication engine.
	LoginSuccess LoginStatus = iota
	// LoginTwoFactorRequired is an exported constant or variable used by the authentication engine.
	LoginTwoFactorRequired
	// LoginEmailNotVerified is an exported constant or variable used by the authentication engine.
	LoginEmailNotVerified
)

// TokenPair defines a public type used by authcore APIs.
//
// Neither token is stored server-side; the access token is stateless-verifiable
// and the refresh token carries only the subject.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginOutcome defines a public type used by authcore APIs.
//
// Tokens are populated only when Status is LoginSuccess. ChallengeToken is
// set on every credential-valid login; Method and MaskedPhone only when
// Status is LoginTwoFactorRequired, MaskedPhone only for the sms method.
type LoginOutcome struct {
	Status         LoginStatus
	User           *User
	Tokens         TokenPair
	ChallengeToken string
	Method         SecondFactorMethod
	MaskedPhone    string
}

// TOTPSetup defines a public type used by authcore APIs.
type TOTPSetup struct {
	Secret          string
	ProvisioningURI string
}

// TwoFactorStatus defines a public type used by authcore APIs.
type TwoFactorStatus struct {
	TOTPEnabled            bool
	PhoneConfirmed         bool
	SMSTwoFactor           bool
	BackupCodesRemaining   int
	RecoveryCodesRemaining int
}
