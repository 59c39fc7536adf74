// Package authcore implements a multi-factor authentication and
// session-issuance core: the login decision state machine, TOTP and SMS
// second factors, single-use backup/recovery code sets, and stateless JWT
// access/refresh token issuance.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginOutcome, TokenPair, MetricsSnapshot, etc.). Transient
// state — pending challenges, live SMS codes, unused code sets — lives in
// Redis behind internal/stores. Durable identity state (users, password
// hashes, confirmation flags, lockout policy) lives behind the caller's
// [IdentityStore]; SMS delivery behind [SMSSender].
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its
//     public API.
//   - Hash passwords, count lockouts, or persist user records.
//   - Store issued tokens server-side; revocation is cookie clearing plus the
//     short access TTL.
package authcore
