package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pabg92/ned-project-bw-sub001/internal/core/domain"
)

// AccessClaims are the claims carried by access tokens. The subject is the user id.
type AccessClaims struct {
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the caller identity used by the authorization policy.
func (c *AccessClaims) Principal() domain.Principal {
	return domain.Principal{
		UserID:    c.Subject,
		Role:      domain.Role(c.Role),
		CompanyID: c.CompanyID,
	}
}

// GenerateJWT generates a new HS256 token for the given principal.
func GenerateJWT(principal domain.Principal, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role:      string(principal.Role),
		CompanyID: principal.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principal.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a token string, validates its signature and standard claims.
func ParseAndValidateJWT(tokenString string, secretKey string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	return claims, nil
}
