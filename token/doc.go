// Package token manages access and refresh token issuance and verification
// using configured signing keys and strict validation semantics.
package token
