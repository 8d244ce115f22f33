package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/mentorlink/mentorlink-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny    = "any"
	AuthRoleAdmin  = "admin"
	AuthRoleMentor = "mentor"
	AuthRoleMentee = "mentee"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with basic authentication/authorization guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser
	if !requireUser && role != AuthRoleAny {
		requireUser = true
	}

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role == AuthRoleAny {
			// Allow anonymous access when RequireUser=false; otherwise userID must exist.
			if !requireUser || userID != nil {
				return handler(c)
			}
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		if role == AuthRoleAdmin {
			if currentRole != AuthRoleAdmin {
				return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
			}
			return handler(c)
		}

		// Admins pass every role gate.
		if currentRole != role && currentRole != AuthRoleAdmin {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return handler(c)
	}
}
