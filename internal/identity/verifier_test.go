package identity

import (
	"context"
	"testing"
	"time"

	"gighub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-at-least-32-characters!!"
	testIssuer   = "gighub-identity"
	testAudience = "gighub"
)

func TestJWTVerifier_VerifyValidToken(t *testing.T) {
	token, err := NewToken(testSecret, testIssuer, testAudience, Identity{
		ExternalID:  "firebase|abc",
		Email:       "ana@example.com",
		DisplayName: "Ana",
		AvatarURL:   "https://cdn.example.com/ana.png",
		Claims:      map[string]any{"customRole": "admin"},
	}, time.Hour)
	require.NoError(t, err)

	v := NewJWTVerifier(testSecret, testIssuer, testAudience)
	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "firebase|abc", id.ExternalID)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.Equal(t, "Ana", id.DisplayName)
	assert.Equal(t, "https://cdn.example.com/ana.png", id.AvatarURL)
	assert.Equal(t, "admin", id.Claims["customRole"])
}

func TestJWTVerifier_Rejects(t *testing.T) {
	good := Identity{ExternalID: "sub-1", Email: "a@b.co"}

	wrongSecret, err := NewToken("another-secret-another-secret-1234", testIssuer, testAudience, good, time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := NewToken(testSecret, "someone-else", testAudience, good, time.Hour)
	require.NoError(t, err)
	wrongAudience, err := NewToken(testSecret, testIssuer, "other-app", good, time.Hour)
	require.NoError(t, err)
	expired, err := NewToken(testSecret, testIssuer, testAudience, good, -time.Minute)
	require.NoError(t, err)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noSubToken, err := noSub.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not-a-jwt",
		"wrong secret":   wrongSecret,
		"wrong issuer":   wrongIssuer,
		"wrong audience": wrongAudience,
		"expired":        expired,
		"no subject":     noSubToken,
	}

	v := NewJWTVerifier(testSecret, testIssuer, testAudience)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), token)
			assert.Nil(t, id)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeUnauthorized))
		})
	}
}

func TestNewTokenRequiresSubject(t *testing.T) {
	_, err := NewToken(testSecret, testIssuer, testAudience, Identity{}, time.Hour)
	assert.Error(t, err)
}
