package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/storefront-be/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and wrong token types.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the JWT payload. UserID travels as the "userId" claim.
type Claims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies signed JWTs for authenticated users.
type TokenManager struct {
	secret        []byte
	refreshSecret []byte
	issuer        string
	ttl           time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager creates a manager with the provided secrets, issuer, and lifetimes.
func NewTokenManager(secret, refreshSecret, issuer string, ttl, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		ttl:           ttl,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Generate issues a signed access token for the provided user.
func (t *TokenManager) Generate(user models.User) (string, error) {
	return t.sign(user.ID, tokenTypeAccess, t.secret, t.ttl)
}

// GenerateRefresh issues a signed refresh token for the provided user.
func (t *TokenManager) GenerateRefresh(user models.User) (string, error) {
	return t.sign(user.ID, tokenTypeRefresh, t.refreshSecret, t.refreshTTL)
}

// Parse verifies an access token and returns its claims.
func (t *TokenManager) Parse(token string) (*Claims, error) {
	return t.parse(token, tokenTypeAccess, t.secret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (t *TokenManager) ParseRefresh(token string) (*Claims, error) {
	return t.parse(token, tokenTypeRefresh, t.refreshSecret)
}

func (t *TokenManager) sign(userID, tokenType string, secret []byte, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (t *TokenManager) parse(token, tokenType string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.TokenType != tokenType || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
