// Package middleware provides the Fiber middleware chain: authentication,
// rate limiting, request logging, tracing and metrics.
package middleware

import (
	"context"
	"errors"
	"strings"

	"chirp/internal/auth"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	// LocalUserID holds the authenticated user id as uint.
	LocalUserID = "userID"
	// LocalClaims holds the parsed *auth.Claims.
	LocalClaims = "claims"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func storeIdentity(c *fiber.Ctx, claims *auth.Claims) {
	userID, _ := claims.UserID()
	c.Locals(LocalUserID, userID)
	c.Locals(LocalClaims, claims)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// AuthRequired rejects requests without a valid, unrevoked bearer token.
func AuthRequired(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := tokens.Parse(c.UserContext(), tokenString)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, auth.ErrRevokedToken) {
				msg = "Token has been revoked"
			}
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(msg))
		}

		storeIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth records the caller's identity when a valid token is present
// and lets anonymous requests through untouched.
func OptionalAuth(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(c.UserContext(), tokenString); err == nil {
				storeIdentity(c, claims)
			}
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(LocalUserID).(uint); ok {
		return id
	}
	return 0
}

// ClaimsFrom returns the parsed token claims, if any.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}
