package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	principal := domain.Principal{UserID: "user-1", Role: domain.RoleCompany, CompanyID: "company-1"}

	token, err := GenerateJWT(principal, "secret", time.Hour, "ned-credits")
	require.NoError(t, err)

	claims, err := ParseAndValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, principal, claims.Principal())
	assert.Equal(t, "ned-credits", claims.Issuer)
}

func TestParseAndValidateJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT(domain.Principal{UserID: "u", Role: domain.RoleAdmin}, "secret", time.Hour, "iss")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseAndValidateJWT_Expired(t *testing.T) {
	token, err := GenerateJWT(domain.Principal{UserID: "u", Role: domain.RoleAdmin}, "secret", -time.Minute, "iss")
	require.NoError(t, err)

	_, err = ParseAndValidateJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
