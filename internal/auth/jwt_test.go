package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-for-testing-purposes", 15*time.Minute)
}

func TestJWTService_GenerateSessionToken(t *testing.T) {
	service := newTestJWTService()

	token, claims, err := service.GenerateSessionToken("admin@example.com", RoleAdmin)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
	assert.True(t, claims.ExpiresAt.Before(time.Now().Add(16*time.Minute)))
}

func TestJWTService_ValidateSessionToken_Valid(t *testing.T) {
	service := newTestJWTService()
	token, issued, err := service.GenerateSessionToken("admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := service.ValidateSessionToken(token)

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin@example.com", claims.Subject)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestJWTService_EachSessionHasOwnID(t *testing.T) {
	service := newTestJWTService()

	_, a, err := service.GenerateSessionToken("admin@example.com", RoleAdmin)
	require.NoError(t, err)
	_, b, err := service.GenerateSessionToken("admin@example.com", RoleAdmin)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWTService_ValidateSessionToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret", -time.Minute)
	token, _, err := service.GenerateSessionToken("admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := service.ValidateSessionToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateSessionToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateSessionToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateSessionToken_WrongSignature(t *testing.T) {
	issuer := NewJWTService("secret-key-1", 15*time.Minute)
	verifier := NewJWTService("secret-key-2", 15*time.Minute)

	token, _, err := issuer.GenerateSessionToken("admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := verifier.ValidateSessionToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateSessionToken_WrongAlgorithm(t *testing.T) {
	service := newTestJWTService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Email: "admin@example.com",
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "forged",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.ValidateSessionToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_RejectsTokenWithoutSessionID(t *testing.T) {
	service := newTestJWTService()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "admin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := token.SignedString([]byte("test-secret-key-for-testing-purposes"))
	require.NoError(t, err)

	_, err = service.ValidateSessionToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
