package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StaffSubject - единственный владелец токенов: сессия панели персонала
const StaffSubject = "staff"

// NewToken генерирует JWT-токен для subject с заданным временем жизни.
func NewToken(subject, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
