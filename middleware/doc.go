// Package middleware exposes HTTP middleware adapters built on top of
// authcore.Engine token validation.
//
// # Guards
//
//   - [RequireAccess] — verifies the access token from the Authorization
//     header or the session cookie and injects the claims into the request
//     context.
//   - [RequireRole] — RequireAccess plus a role membership check.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.ValidateAccessToken.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Make authorization decisions beyond pass/reject.
package middleware
