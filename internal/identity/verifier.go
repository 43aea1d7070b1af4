// Package identity verifies bearer tokens issued by the external identity
// provider and turns them into an Identity.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gighub/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified subject of a bearer token.
type Identity struct {
	ExternalID  string
	Email       string
	DisplayName string
	AvatarURL   string
	Claims      map[string]any
}

// Verifier checks a bearer token and returns the identity it carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// tokenClaims is the ID token layout accepted by JWTVerifier.
type tokenClaims struct {
	Email   string         `json:"email"`
	Name    string         `json:"name"`
	Picture string         `json:"picture"`
	Custom  map[string]any `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HMAC-signed ID tokens.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTVerifier returns a verifier for tokens signed with secret. Empty issuer
// or audience disables that check.
func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Verify parses and validates token. Every failure is an UnauthorizedError.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.NewUnauthorizedError("missing token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, &models.AppError{
			Code:    models.CodeUnauthorized,
			Message: "invalid or expired token",
			Err:     err,
		}
	}
	if claims.Subject == "" {
		return nil, models.NewUnauthorizedError("token has no subject")
	}

	return &Identity{
		ExternalID:  claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
		Claims:      claims.Custom,
	}, nil
}

// NewToken signs an ID token for id. It is used by the seed tool and tests.
func NewToken(secret, issuer, audience string, id Identity, ttl time.Duration) (string, error) {
	if id.ExternalID == "" {
		return "", errors.New("identity has no external id")
	}
	now := time.Now()
	claims := tokenClaims{
		Email:   id.Email,
		Name:    id.DisplayName,
		Picture: id.AvatarURL,
		Custom:  id.Claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
