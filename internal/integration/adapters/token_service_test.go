package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(context.Background(), userID, "ana@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != userID || claims.Email != "ana@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if time.Until(claims.ExpiresAt) > time.Hour || time.Until(claims.ExpiresAt) < 50*time.Minute {
		t.Errorf("unexpected expiry %s", claims.ExpiresAt)
	}
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	userID := uuid.New()

	sign := func(claims CustomClaims, secret string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("failed to sign: %v", err)
		}
		return token
	}
	valid := func() CustomClaims {
		now := time.Now()
		return CustomClaims{
			UserID:    userID.String(),
			Email:     "ana@example.com",
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
				Issuer:    tokenIssuer,
			},
		}
	}

	tests := []struct {
		name  string
		token func() string
	}{
		{"wrong secret", func() string { return sign(valid(), "other-secret") }},
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign(c, "test-secret")
		}},
		{"refresh token type", func() string {
			c := valid()
			c.TokenType = "refresh"
			return sign(c, "test-secret")
		}},
		{"foreign issuer", func() string {
			c := valid()
			c.Issuer = "someone-else"
			return sign(c, "test-secret")
		}},
		{"bad user id", func() string {
			c := valid()
			c.UserID = "not-a-uuid"
			return sign(c, "test-secret")
		}},
		{"garbage", func() string { return "not.a.token" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateAccessToken(context.Background(), tt.token()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
