package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// CodeAlphabet excludes 0/O/1/I so issued codes survive being read aloud or
// retyped.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const challengeTokenRawSize = 24

// NewChallengeToken returns an opaque 192-bit token, base64url without
// padding.
func NewChallengeToken() (string, error) {
	var raw [challengeTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// NewNumericCode returns a uniformly random decimal code of the given width.
func NewNumericCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid code digits")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	code := b.String()
	if len(code) != digits {
		return "", fmt.Errorf("invalid code generation length")
	}
	return code, nil
}

// NewHumanCode returns a random code over CodeAlphabet.
func NewHumanCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid code length")
	}

	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(int64(len(CodeAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// FormatHumanCode inserts a hyphen at the midpoint for display.
func FormatHumanCode(code string) string {
	n := len(code)
	if n < 8 {
		return code
	}
	mid := n / 2
	return code[:mid] + "-" + code[mid:]
}

// CanonicalizeCode strips the formatting a user may echo back.
func CanonicalizeCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// CodeHash binds a code hash to its owner so identical codes issued to two
// users never collide in storage.
func CodeHash(userID, canonicalCode string) [32]byte {
	data := make([]byte, 0, len(userID)+1+len(canonicalCode))
	data = append(data, userID...)
	data = append(data, 0)
	data = append(data, canonicalCode...)
	return sha256.Sum256(data)
}

// HashBytes is sha256 over an arbitrary secret, used for the stored SMS code
// digest.
func HashBytes(secret []byte) [32]byte {
	return sha256.Sum256(secret)
}
