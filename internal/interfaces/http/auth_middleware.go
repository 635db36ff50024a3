package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/millbooks/millbooks-api/internal/application/dto"
	"github.com/millbooks/millbooks-api/pkg/jwt"
)

// Locals keys for the request attribution set by AuthMiddleware.
const (
	LocalActorID = "actor_id"
	LocalMillID  = "mill_id"
	LocalRole    = "role"
)

// AuthMiddleware validates the Bearer token and attributes the request with
// ActorID and MillID in c.Locals. Every tenant-scoped route runs behind it.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header required"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "format: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "empty token"})
		}
		userID, millID, role, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "invalid or expired token"})
		}
		c.Locals(LocalActorID, userID)
		c.Locals(LocalMillID, millID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// GetActorID returns the acting user's id set by AuthMiddleware.
func GetActorID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalActorID).(string)
	return s
}

// GetMillID returns the tenant id set by AuthMiddleware.
func GetMillID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalMillID).(string)
	return s
}

// GetRole returns the role claim set by AuthMiddleware.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}

// RequireRole allows the request through only when the attributed role is one
// of the given roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "insufficient role"})
	}
}
