package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tricommerce/internal/model"
	"tricommerce/internal/service"
	"tricommerce/pkg/jwt"
)

const claimsKey = "claims"

// RequireAuth validates the bearer token and stores its claims in Locals.
func RequireAuth(tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		if _, ok := model.ParseRole(claims.Role); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unknown role in token"})
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// Claims returns the claims stored by RequireAuth.
func Claims(c *fiber.Ctx) (*jwt.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*jwt.Claims)
	return claims, ok && claims != nil
}

// ActorFrom builds the service actor for the authenticated request.
func ActorFrom(c *fiber.Ctx) (service.Actor, bool) {
	claims, ok := Claims(c)
	if !ok || claims.SubjectID == uuid.Nil {
		return service.Actor{}, false
	}
	role, ok := model.ParseRole(claims.Role)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: claims.SubjectID, Role: role}, true
}

// RequirePrivilege checks if the authenticated account has the privilege.
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}
		if claims.HasPrivilege(requiredPrivilege) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireRole restricts a route group to one account type.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden for role " + string(actor.Role)})
	}
}
