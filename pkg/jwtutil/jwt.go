package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNotConfigured = errors.New("jwt: signing configuration not provided")
	ErrExpired       = errors.New("jwt: token expired")
	ErrInvalid       = errors.New("jwt: invalid token")
)

// JWTConfig holds JWT configuration. Issuer is optional; when set, tokens
// from another issuer are rejected.
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
	Issuer          string
}

// UserClaims identifies an employee session
type UserClaims struct {
	EmpCode string `json:"emp_code"`
	Email   string `json:"email"`
	IsIT    bool   `json:"is_it"`
	jwt.RegisteredClaims
}

type JWTUtil struct {
	config *JWTConfig
	now    func() time.Time
}

func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{config: config, now: time.Now}
}

// GenerateToken signs an HS256 session token for the employee
func (j *JWTUtil) GenerateToken(empCode, email string, isIT bool) (string, error) {
	if j.config == nil || j.config.SigningKey == "" {
		return "", ErrNotConfigured
	}

	now := j.now()
	claims := UserClaims{
		EmpCode: empCode,
		Email:   email,
		IsIT:    isIT,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   empCode,
			Issuer:    j.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(j.config.ExpirationHours) * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.config.SigningKey))
}

// ValidateToken parses a session token. Expiry is reported as ErrExpired,
// every other failure wraps ErrInvalid.
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	if j.config == nil || j.config.SigningKey == "" {
		return nil, ErrNotConfigured
	}

	claims := &UserClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(j.config.SigningKey), nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if j.config.Issuer != "" && !claims.VerifyIssuer(j.config.Issuer, true) {
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalid, claims.Issuer)
	}
	if claims.EmpCode == "" {
		return nil, fmt.Errorf("%w: no employee code", ErrInvalid)
	}
	return claims, nil
}
