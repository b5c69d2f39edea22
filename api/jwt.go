package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"lookout/config"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT claims
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for username, valid for ttl
func IssueToken(cfg *config.Config, username string, roles []string, ttl time.Duration) (string, error) {
	if cfg.Auth.JWTSecret == "" {
		return "", errors.New("auth.jwt_secret is not set")
	}
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    cfg.Auth.JWTIssuer,
			Subject:   username,
			ID:        jti,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Auth.JWTSecret))
}

// validateJWT validates a JWT token and returns the claims
func validateJWT(tokenString string, cfg *config.Config) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Auth.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Auth.JWTIssuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.Auth.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Username == "" {
		return nil, errors.New("token has no username")
	}
	return claims, nil
}

// generateJTI generates a unique JWT ID with 256-bit entropy
func generateJTI() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
