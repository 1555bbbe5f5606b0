//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)
	id := uuid.New()

	token, err := svc.GenerateToken(id, user.RoleOwner, time.Now())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "owner", claims.Role)
}

func TestService_Rejects(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour)
	id := uuid.New()

	tests := []struct {
		name  string
		token func(t *testing.T) string
		errIs error
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				tok, err := svc.GenerateToken(id, user.RoleClient, time.Now().Add(-2*time.Hour))
				require.NoError(t, err)
				return tok
			},
			errIs: jwt.ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := jwt.NewService("other", time.Hour).GenerateToken(id, user.RoleClient, time.Now())
				require.NoError(t, err)
				return tok
			},
			errIs: jwt.ErrInvalidToken,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				claims := jwt.Claims{
					UserID: id,
					Role:   "client",
					RegisteredClaims: gojwt.RegisteredClaims{
						Issuer:    "someone-else",
						ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}
				tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
				require.NoError(t, err)
				return tok
			},
			errIs: jwt.ErrInvalidToken,
		},
		{
			name:  "garbage",
			token: func(*testing.T) string { return "not-a-token" },
			errIs: jwt.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, jwt.ParseDuration("90m"))
	assert.Equal(t, 24*time.Hour, jwt.ParseDuration("soon"))
}
