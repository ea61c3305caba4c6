package auth

import (
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "manufacturing"})
}

func signClaims(t *testing.T, claims *Claims, method jwt.SigningMethod, key interface{}) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService()
	input := TokenInput{TenantID: uuid.New(), UserID: uuid.New(), Username: "planner", Language: "es"}

	token, err := svc.GenerateAccessToken(input, 15*time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	tenantID, err := claims.TenantUUID()
	require.NoError(t, err)
	userID, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, tenantID)
	assert.Equal(t, input.UserID, userID)
	assert.Equal(t, "planner", claims.Username)
	assert.Equal(t, "es", claims.Language)
	assert.Equal(t, "manufacturing", claims.Issuer)
}

func TestJWTService_ValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now()
	valid := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "manufacturing",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
			TenantID: uuid.New().String(),
			UserID:   uuid.New().String(),
		}
	}

	expired, err := svc.GenerateAccessToken(TokenInput{TenantID: uuid.New(), UserID: uuid.New()}, -time.Minute)
	require.NoError(t, err)

	notYet := valid()
	notYet.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))

	noTenant := valid()
	noTenant.TenantID = ""

	noUser := valid()
	noUser.UserID = ""

	badTenant := valid()
	badTenant.TenantID = "acme"

	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
		{"not yet valid", signClaims(t, notYet, jwt.SigningMethodHS256, []byte(testSecret)), ErrTokenNotYetValid},
		{"wrong secret", signClaims(t, valid(), jwt.SigningMethodHS256, []byte("another-secret-key-of-32-characters")), ErrInvalidToken},
		{"unsigned", signClaims(t, valid(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType), ErrInvalidToken},
		{"other issuer", signClaims(t, otherIssuer, jwt.SigningMethodHS256, []byte(testSecret)), ErrInvalidToken},
		{"missing tenant", signClaims(t, noTenant, jwt.SigningMethodHS256, []byte(testSecret)), ErrMissingTenantID},
		{"missing user", signClaims(t, noUser, jwt.SigningMethodHS256, []byte(testSecret)), ErrMissingUserID},
		{"malformed tenant", signClaims(t, badTenant, jwt.SigningMethodHS256, []byte(testSecret)), ErrInvalidClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
