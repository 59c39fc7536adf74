// Package stores provides Redis-backed, short-lived record stores for the
// authentication core: login challenges, SMS one-time codes, and single-use
// code sets (TOTP backup and account recovery).
//
// # Design
//
// Challenge and SMS records are versioned, binary-encoded values with a TTL.
// The SMS Consume path uses a WATCH/MULTI optimistic transaction with
// automatic retry on contention and constant-time secret comparison. Code
// sets live in Redis SETs so consumption is a single SREM with no
// read-check-write window. Every artifact is single-use: consumed on success,
// evicted on expiry.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control for transient
// records. It does NOT generate tokens or codes, hash submissions, or make
// authentication decisions; those belong to the engine.
//
// # What this package must NOT do
//
//   - Import authcore or any sibling internal package.
//   - Log or expose plaintext secrets.
//   - Use non-constant-time comparisons for secret matching.
package stores
