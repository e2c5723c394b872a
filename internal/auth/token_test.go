package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gamelog/apiserver/types"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestNewTokenCodecRejectsBadConfig(t *testing.T) {
	if _, err := NewTokenCodec("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenCodec("   ", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
	if _, err := NewTokenCodec(testSecret, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	cases := []struct {
		subject string
		role    types.Role
	}{
		{"u1", types.RoleStandard},
		{"b2c7a1de-9f74-4c58-8a3d-2f1f4ac0e9b1", types.RoleAdministrator},
		{"some-opaque-subject", types.RoleStandard},
	}

	for _, tc := range cases {
		token, err := codec.Issue(tc.subject, tc.role)
		if err != nil {
			t.Fatalf("issue(%q): %v", tc.subject, err)
		}

		subject, role, err := codec.Validate(token)
		if err != nil {
			t.Fatalf("validate(%q): %v", tc.subject, err)
		}
		if subject != tc.subject {
			t.Errorf("subject = %q, want %q", subject, tc.subject)
		}
		if role != tc.role {
			t.Errorf("role = %q, want %q", role, tc.role)
		}
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	// A codec with a negative TTL issues tokens that are already expired.
	expired := &TokenCodec{secret: []byte(testSecret), ttl: -time.Hour}

	token, err := expired.Issue("u1", types.RoleStandard)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	codec := newTestCodec(t)
	if _, _, err := codec.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsTamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue("u1", types.RoleStandard)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, _, err := codec.Validate(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewTokenCodec("another-secret-that-is-long-enough", time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	token, err := other.Issue("u1", types.RoleStandard)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, _, err := codec.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestValidateRejectsMalformedInput(t *testing.T) {
	codec := newTestCodec(t)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d", "not.a.jwt"} {
		if _, _, err := codec.Validate(input); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("validate(%q): expected ErrInvalidToken, got %v", input, err)
		}
	}
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue("", types.RoleStandard)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, _, err := codec.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}
