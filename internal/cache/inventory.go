package cache

import (
	"fmt"
	"time"
)

const (
	RateLimitKeyPrefix    = "rl:%s:%s"
	RevokedTokenKeyPrefix = "blacklist:%s"
)

// RevokedTokenFloor is the minimum TTL kept on a revocation entry so that a
// token expiring within the same second is still rejected.
const RevokedTokenFloor = time.Second

func RateLimitKey(resource, id string) string {
	return fmt.Sprintf(RateLimitKeyPrefix, resource, id)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

// RevocationTTL returns how long a revoked token id must be remembered.
func RevocationTTL(expiresAt, now time.Time) time.Duration {
	ttl := expiresAt.Sub(now)
	if ttl < RevokedTokenFloor {
		return RevokedTokenFloor
	}
	return ttl
}
