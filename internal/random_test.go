package internal

import (
	"strings"
	"testing"
)

func TestNewChallengeTokenShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := NewChallengeToken()
		if err != nil {
			t.Fatalf("NewChallengeToken failed: %v", err)
		}
		if len(tok) != 32 { // 24 raw bytes, base64url, no padding
			t.Fatalf("unexpected token length %d: %q", len(tok), tok)
		}
		if strings.ContainsAny(tok, "+/=") {
			t.Fatalf("expected url-safe unpadded encoding, got %q", tok)
		}
		if seen[tok] {
			t.Fatalf("duplicate token: %q", tok)
		}
		seen[tok] = true
	}
}

func TestNewNumericCode(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := NewNumericCode(digits)
		if err != nil {
			t.Fatalf("NewNumericCode(%d) failed: %v", digits, err)
		}
		if len(code) != digits {
			t.Fatalf("expected %d digits, got %q", digits, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected decimal digits, got %q", code)
			}
		}
	}

	for _, digits := range []int{0, 3, 11} {
		if _, err := NewNumericCode(digits); err == nil {
			t.Fatalf("expected error for %d digits", digits)
		}
	}
}

func TestNewHumanCodeUsesAlphabet(t *testing.T) {
	code, err := NewHumanCode(12)
	if err != nil {
		t.Fatalf("NewHumanCode failed: %v", err)
	}
	if len(code) != 12 {
		t.Fatalf("expected 12 characters, got %q", code)
	}
	for _, r := range code {
		if !strings.ContainsRune(CodeAlphabet, r) {
			t.Fatalf("character %q outside alphabet in %q", r, code)
		}
	}

	if _, err := NewHumanCode(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestFormatHumanCode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"ABCDEFGH", "ABCD-EFGH"},
		{"ABCDEFGHJK", "ABCDE-FGHJK"},
		{"ABCDEFG", "ABCDEFG"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FormatHumanCode(tc.in); got != tc.want {
			t.Fatalf("FormatHumanCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeCode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"abcd-efgh", "ABCDEFGH"},
		{"  AB CD ", "ABCD"},
		{"a-b c-d", "ABCD"},
		{"- - ", ""},
	}
	for _, tc := range cases {
		if got := CanonicalizeCode(tc.in); got != tc.want {
			t.Fatalf("CanonicalizeCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeRoundTripsFormat(t *testing.T) {
	raw, err := NewHumanCode(10)
	if err != nil {
		t.Fatalf("NewHumanCode failed: %v", err)
	}
	if CanonicalizeCode(FormatHumanCode(raw)) != raw {
		t.Fatal("expected canonicalize to undo display formatting")
	}
}

func TestCodeHashBindsUser(t *testing.T) {
	a := CodeHash("u1", "ABCDEFGH")
	b := CodeHash("u2", "ABCDEFGH")
	if a == b {
		t.Fatal("expected identical codes for different users to hash differently")
	}
	if a != CodeHash("u1", "ABCDEFGH") {
		t.Fatal("expected deterministic hashing")
	}
	// The separator keeps user/code boundaries unambiguous.
	if CodeHash("u1A", "BC") == CodeHash("u1", "ABC") {
		t.Fatal("expected boundary-shifted inputs to hash differently")
	}
}
