package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"chirp/internal/cache"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "chirp-api"
	Audience = "chirp-client"

	defaultTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
	// ErrRevocationUnavailable is returned by Revoke when no Redis client is configured.
	ErrRevocationUnavailable = errors.New("token revocation unavailable")
)

// Claims is the payload carried by a session token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// TokenManager mints HS256 tokens and checks them against the Redis
// revocation list. A nil Redis client disables revocation checks.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	rdb    redis.Cmdable
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, rdb *redis.Client) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	m := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	if rdb != nil {
		m.rdb = rdb
	}
	return m
}

// Issue signs a new token for the given user.
func (m *TokenManager) Issue(userID uint, username string) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse validates the signature, registered claims and revocation state.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	if claims.ID != "" && m.rdb != nil {
		n, err := m.rdb.Exists(ctx, cache.RevokedTokenKey(claims.ID)).Result()
		// Redis outages do not lock every session out.
		if err == nil && n > 0 {
			return nil, ErrRevokedToken
		}
	}
	return claims, nil
}

// Revoke records the token id until the token would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil {
		return ErrRevocationUnavailable
	}
	if claims == nil || claims.ID == "" {
		return ErrInvalidToken
	}
	expires := m.now()
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return m.rdb.Set(ctx, cache.RevokedTokenKey(claims.ID), "1", cache.RevocationTTL(expires, m.now())).Err()
}
