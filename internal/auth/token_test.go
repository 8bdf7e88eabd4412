package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	issued, err := IssueToken(secret, Claims{
		Sub:  "usr_1",
		Name: "Dana",
		Role: "manager",
		JTI:  "jti_1",
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := ParseToken(secret, issued)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Sub != "usr_1" || claims.Role != "manager" || claims.JTI != "jti_1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.Iat == 0 {
		t.Error("expected iat to be stamped on issue")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issued, err := IssueToken([]byte("secret-a"), Claims{Sub: "usr_1", JTI: "jti_1", Exp: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ParseToken([]byte("secret-b"), issued); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	issued, err := IssueToken(secret, Claims{Sub: "usr_1", JTI: "jti_1", Exp: time.Now().Add(-time.Minute).Unix()})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := ParseToken(secret, issued); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTokenMalformed(t *testing.T) {
	for _, token := range []string{"", "nodots", "a.b.c", "!!!.???"} {
		if _, err := ParseToken([]byte("secret"), token); err != ErrInvalidToken {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
