package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_IssueAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 7 * 24 * time.Hour
	maker := NewMaker(secretKey, tokenTTL)

	tests := []struct {
		name    string
		userUID string
		email   string
	}{
		{
			name:    "regular user",
			userUID: "550e8400-e29b-41d4-a716-446655440000",
			email:   "user@example.com",
		},
		{
			name:    "email with plus",
			userUID: "a3f1c880-0000-41d4-a716-446655440001",
			email:   "user+tag@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.IssueToken(tt.userUID, tt.email)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userUID, claims.UserUID)
			assert.Equal(t, tt.email, claims.Email)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewMaker(secretKey, 15*time.Minute)

	validToken, err := maker.IssueToken("uid-1", "user@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "expired token",
			token: createExpiredToken(t, secretKey),
		},
		{
			name:  "wrong secret key",
			token: createTokenWithWrongSecret(t),
		},
		{
			name:  "tampered token",
			token: validToken + "tampered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

// Подмена любого одиночного байта полезной нагрузки ломает подпись.
func TestMaker_ParseToken_SingleByteFlip(t *testing.T) {
	maker := NewMaker("test_secret_key", 15*time.Minute)

	token, err := maker.IssueToken("uid-1", "user@example.com")
	require.NoError(t, err)

	raw := []byte(token)
	for i := 0; i < len(raw); i += 7 {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if string(mutated) == token {
			continue
		}

		claims, err := maker.ParseToken(string(mutated))
		assert.Error(t, err, "byte %d flipped, token must not verify", i)
		assert.Nil(t, claims)
	}
}

func TestMaker_DifferentSecretKeys(t *testing.T) {
	maker1 := NewMaker("first_secret_key", 15*time.Minute)
	maker2 := NewMaker("different_secret_key", 15*time.Minute)

	token, err := maker1.IssueToken("uid-1", "user@example.com")
	require.NoError(t, err)

	claims, err := maker2.ParseToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker1.ParseToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestMaker_TokenExpiration(t *testing.T) {
	maker := NewMaker("test_secret_key", 100*time.Millisecond)

	token, err := maker.IssueToken("uid-1", "user@example.com")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)

	time.Sleep(150 * time.Millisecond)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func createExpiredToken(t *testing.T, secretKey string) string {
	maker := NewMaker(secretKey, -time.Hour)
	token, err := maker.IssueToken("uid-1", "user@example.com")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewMaker("wrong_secret_key", 15*time.Minute)
	token, err := wrongMaker.IssueToken("uid-1", "user@example.com")
	require.NoError(t, err)
	return token
}
