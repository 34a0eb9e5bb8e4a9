package auth

import (
	"errors"
	"os"
	"time"

	"facemark.io/infrastructure/logger"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateAdminToken issues the bearer token operators use for the
// administrative surface (enrollment, records, system reset).
func GenerateAdminToken(operator string, validity time.Duration) (*string, error) {
	now := time.Now()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":      os.Getenv("JWT_ISSUER"),
		"operator": operator,
		"role":     "admin",
		"iat":      now.Unix(),
		"exp":      now.Add(validity).Unix(),
	}).SignedString([]byte(os.Getenv("JWT_SIGNING_KEY")))
	if err != nil {
		return nil, err
	}
	return &tokenString, nil
}

func DecodeAuthToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return []byte(os.Getenv("JWT_SIGNING_KEY")), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("invalid token signature used")
		}
		logger.Error("error decoding jwt", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	if !token.Valid {
		err := errors.New("invalid token used")
		logger.Error(err.Error())
		return nil, err
	}
	return token, nil
}
