package utils

import (
	"testing"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTKey("jwt-test-key")

	token, err := GenerateJWT("64f0c5e2a1b2c3d4e5f60718", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, "64f0c5e2a1b2c3d4e5f60718", claims.UserID)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.Equal(t, "estatehub", claims.Issuer)
}

func TestValidateJWTExpired(t *testing.T) {
	SetJWTKey("jwt-test-key")

	claims := &Claims{
		UserID: "64f0c5e2a1b2c3d4e5f60718",
		Role:   models.RoleUser,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("jwt-test-key"))
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateJWTWrongKey(t *testing.T) {
	SetJWTKey("jwt-test-key")
	token, err := GenerateJWT("64f0c5e2a1b2c3d4e5f60718", models.RoleUser)
	require.NoError(t, err)

	SetJWTKey("a-different-key")
	_, err = ValidateJWT(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateJWTGarbage(t *testing.T) {
	SetJWTKey("jwt-test-key")
	_, err := ValidateJWT("not.a.token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
