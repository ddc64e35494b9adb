package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/servicedesk/internal/domain"
)

const testSecret = "test-signing-secret"

func mintToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() Claims {
	return Claims{
		Name: "Carlos",
		Role: domain.RoleAgent,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5a1a4f86-2a86-4f2b-9d8e-6f3d1c0a0002",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseToken(t *testing.T) {
	tm := NewTokenManager(testSecret)

	claims, err := tm.ParseToken(mintToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "5a1a4f86-2a86-4f2b-9d8e-6f3d1c0a0002" {
		t.Errorf("subject = %q", claims.Subject)
	}
	if claims.Role != domain.RoleAgent {
		t.Errorf("role = %q, want agent", claims.Role)
	}
}

func TestParseToken_Rejections(t *testing.T) {
	tm := NewTokenManager(testSecret)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noSubject := validClaims()
	noSubject.Subject = ""

	badRole := validClaims()
	badRole.Role = "superadmin"

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", mintToken(t, "some-other-secret", validClaims())},
		{"expired", mintToken(t, testSecret, expired)},
		{"missing subject", mintToken(t, testSecret, noSubject)},
		{"unknown role", mintToken(t, testSecret, badRole)},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.ParseToken(tt.token); err == nil {
				t.Error("expected parse failure, got nil")
			}
		})
	}
}
