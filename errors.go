package authcore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotRegistered matches ErrInvalidCredentials under errors.Is so callers
	// that do not want to reveal account existence can collapse both failures.
	ErrEmailNotRegistered = fmt.Errorf("email not registered: %w", ErrInvalidCredentials)
	// ErrPasswordMismatch matches ErrInvalidCredentials under errors.Is.
	ErrPasswordMismatch = fmt.Errorf("password mismatch: %w", ErrInvalidCredentials)
	// ErrEmailNotVerified is an exported constant or variable used by the authentication engine.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrAccountLockedOut is surfaced when the identity store reports a lockout; the
	// engine never generates it on its own.
	ErrAccountLockedOut = errors.New("account locked out")
	// ErrChallengeInvalid is an exported constant or variable used by the authentication engine.
	ErrChallengeInvalid = errors.New("login challenge invalid")
	// ErrChallengeExpired matches ErrChallengeInvalid under errors.Is.
	ErrChallengeExpired = fmt.Errorf("login challenge expired: %w", ErrChallengeInvalid)
	// ErrChallengeUnavailable is an exported constant or variable used by the authentication engine.
	ErrChallengeUnavailable = errors.New("login challenge backend unavailable")
	// ErrCodeInvalid is an exported constant or variable used by the authentication engine.
	ErrCodeInvalid = errors.New("invalid verification code")
	// ErrTOTPNotConfigured is an exported constant or variable used by the authentication engine.
	ErrTOTPNotConfigured = errors.New("totp not configured")
	// ErrTOTPAlreadyEnabled is an exported constant or variable used by the authentication engine.
	ErrTOTPAlreadyEnabled = errors.New("totp already enabled")
	// ErrSetupNotStarted is an exported constant or variable used by the authentication engine.
	ErrSetupNotStarted = errors.New("second factor setup not started")
	// ErrPhoneNotSet is an exported constant or variable used by the authentication engine.
	ErrPhoneNotSet = errors.New("phone number not set")
	// ErrPhoneNotConfirmed is an exported constant or variable used by the authentication engine.
	ErrPhoneNotConfirmed = errors.New("phone number not confirmed")
	// ErrSMSDispatchFailed is an exported constant or variable used by the authentication engine.
	ErrSMSDispatchFailed = errors.New("sms dispatch failed")
	// ErrSMSCodeUnavailable is an exported constant or variable used by the authentication engine.
	ErrSMSCodeUnavailable = errors.New("sms code backend unavailable")
	// ErrCodeSetUnavailable is an exported constant or variable used by the authentication engine.
	ErrCodeSetUnavailable = errors.New("code set backend unavailable")
	// ErrCodesNotConfigured is an exported constant or variable used by the authentication engine.
	ErrCodesNotConfigured = errors.New("single-use codes not configured")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired matches ErrTokenInvalid under errors.Is.
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrTokenInvalid)
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
