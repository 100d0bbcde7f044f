package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// AuthService verifies bearer tokens issued by the external identity
// provider. Sign-up and login happen there; only the shared HS256 secret is
// known here.
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// ValidateToken parses and validates a JWT, returning the identity it asserts.
// The subject is read from "sub", falling back to "user_id".
func (s *AuthService) ValidateToken(tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return models.Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		subject, _ = claims["user_id"].(string)
	}
	if subject == "" {
		return models.Identity{}, errors.New("invalid token: missing subject")
	}
	email, _ := claims["email"].(string)

	return models.Identity{Subject: subject, Email: email}, nil
}

// IssueToken signs a token for identity. It backs the development token
// command and tests; production tokens come from the identity provider.
func (s *AuthService) IssueToken(identity models.Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": identity.Subject,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	if identity.Email != "" {
		claims["email"] = identity.Email
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
