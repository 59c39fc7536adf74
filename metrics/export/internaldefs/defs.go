// Package internaldefs exposes stable metric name definitions shared by
// exporter implementations.
//
// Counter definitions live here so that both the Prometheus and OTel
// exporters share identical metric names. Changes to definitions in this
// package affect all exporters simultaneously.
//
// # What this package must NOT do
//
//   - Perform I/O.
package internaldefs

import (
	authcore "github.com/pawshelter/authcore"
)

// CounterDef names one engine counter for export.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in a stable export order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Completed logins, direct or after a second factor."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed credential checks."},
	{ID: authcore.MetricTwoFactorRequired, Name: "authcore_two_factor_required_total", Help: "Logins answered with a second-factor challenge."},
	{ID: authcore.MetricTwoFactorSuccess, Name: "authcore_two_factor_success_total", Help: "Successful second-factor completions."},
	{ID: authcore.MetricTwoFactorFailure, Name: "authcore_two_factor_failure_total", Help: "Failed second-factor completions."},
	{ID: authcore.MetricChallengeReplay, Name: "authcore_challenge_replay_total", Help: "Completions that lost the single-use race on a challenge token."},
	{ID: authcore.MetricChallengeExpired, Name: "authcore_challenge_expired_total", Help: "Completions against an expired challenge."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful token refreshes."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Rejected token refreshes."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Logout operations."},
	{ID: authcore.MetricTOTPEnabled, Name: "authcore_totp_enabled_total", Help: "Completed totp enrollments."},
	{ID: authcore.MetricTOTPDisabled, Name: "authcore_totp_disabled_total", Help: "Totp disable operations."},
	{ID: authcore.MetricTOTPFailure, Name: "authcore_totp_failure_total", Help: "Failed totp verifications."},
	{ID: authcore.MetricSMSCodeSent, Name: "authcore_sms_code_sent_total", Help: "Dispatched SMS codes."},
	{ID: authcore.MetricSMSDispatchFailed, Name: "authcore_sms_dispatch_failed_total", Help: "SMS dispatch failures."},
	{ID: authcore.MetricBackupCodeUsed, Name: "authcore_backup_code_used_total", Help: "Consumed totp backup codes."},
	{ID: authcore.MetricBackupCodeFailed, Name: "authcore_backup_code_failed_total", Help: "Rejected totp backup codes."},
	{ID: authcore.MetricBackupCodesRegenerated, Name: "authcore_backup_codes_regenerated_total", Help: "Backup code batch regenerations."},
	{ID: authcore.MetricRecoveryCodeUsed, Name: "authcore_recovery_code_used_total", Help: "Consumed account recovery codes."},
	{ID: authcore.MetricRecoveryCodeFailed, Name: "authcore_recovery_code_failed_total", Help: "Rejected account recovery codes."},
}
