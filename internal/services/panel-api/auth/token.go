package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing = errors.New("token is missing")
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const Issuer = "netpanel"

// Issue signs an HS256 access token for subject.
func Issue(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseSubject validates token and returns its subject.
func ParseSubject(secret []byte, token string) (string, error) {
	if token == "" {
		return "", ErrTokenMissing
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenNotValidYet) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// CSRFToken derives the anti-forgery token bound to subject.
func CSRFToken(secret []byte, subject string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("csrf:" + subject))
	return hex.EncodeToString(mac.Sum(nil))
}

func validCSRF(secret []byte, subject, got string) bool {
	if got == "" {
		return false
	}
	return hmac.Equal([]byte(CSRFToken(secret, subject)), []byte(got))
}
