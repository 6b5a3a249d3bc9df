package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/macrosdb/internal/policy"
	"github.com/localnerve/macrosdb/internal/types"
)

const actorKey = "actor"

// TokenParser verifies an access token and returns the actor it was issued to
type TokenParser interface {
	ParseToken(token string) (policy.Actor, error)
}

// Authenticate requires a valid bearer token and stores the caller's Actor in the context
func Authenticate(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Authorization bearer token not found",
				Type:    "auth.token",
			}
		}

		actor, err := tokens.ParseToken(strings.TrimSpace(token))
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: err.Error(),
				Type:    "auth.token",
			}
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// RequireRole refuses callers whose role is not one of roles. It must run after Authenticate.
func RequireRole(roles ...policy.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := Actor(c)
		if !ok {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Not authenticated",
				Type:    "auth.token",
			}
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Role " + string(actor.Role) + " may not use this resource",
			Type:    "auth.role",
		}
	}
}

// Actor returns the authenticated caller stored by Authenticate
func Actor(c *fiber.Ctx) (policy.Actor, bool) {
	actor, ok := c.Locals(actorKey).(policy.Actor)
	return actor, ok
}
