// Package internal contains helper utilities that are intentionally private to
// authcore, including secure random generation and code canonicalization.
//
// # Sub-packages
//
//   - stores — Redis-backed stores for challenges, SMS codes, and code sets
//
// # What this package must NOT do
//
//   - Export types that appear in the public authcore API.
//   - Be imported by any package outside the authcore module.
package internal
