// Package auth provides the two authentication strategies used by the
// application: stateless signed tokens for API clients and server-side
// sessions for the admin UI.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"blogchef/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "blogchef-api"
	tokenAudience = "blogchef-client"

	// TokenTTL is the lifetime of an issued bearer token.
	TokenTTL = 7 * 24 * time.Hour
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens, wrong
	// issuer/audience, and tokens whose subject no longer exists.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token's exp claim has passed.
	ErrExpiredToken = errors.New("token expired")
)

// UserFinder is the narrow credential-store view the token service needs to
// reject tokens of deleted users.
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	UserID uint
	Name   string
	Email  string
}

// TokenService issues and verifies HS256-signed bearer tokens.
type TokenService struct {
	secret []byte
	users  UserFinder
}

// NewTokenService returns a TokenService signing with the given shared secret.
func NewTokenService(secret string, users UserFinder) *TokenService {
	return &TokenService{secret: []byte(secret), users: users}
}

// Issue produces a compact signed token for the given user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10), // Subject (user ID as string)
		"name":  user.Name,
		"email": user.Email,
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"exp":   now.Add(TokenTTL).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature, expiry, issuer, and audience, then
// cross-checks that the claimed subject still exists in the credential store.
// The existence check trades a store lookup for the ability to invalidate
// tokens of deleted users without a revocation list.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, ErrInvalidToken
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// A revoked/deleted user's tokens become unusable before expiry.
	user, err := s.users.GetByID(ctx, uint(userID))
	if err != nil || user == nil {
		return nil, ErrInvalidToken
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)

	return &Claims{
		UserID: uint(userID),
		Name:   name,
		Email:  email,
	}, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
