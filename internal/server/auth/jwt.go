package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/regisync/regisync/internal/shared"
)

// Claims carries the standard registered claims plus the authenticated
// admin's ID and role.
type Claims struct {
	jwt.RegisteredClaims
	AdminID string
	Role    string
}

func GenerateToken(adminID, role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		AdminID: adminID,
		Role:    role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetClaimsFromToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, shared.ErrInvalidToken
	}

	return claims, nil
}
