package middleware

import (
	"strings"

	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/domain"
	"rezo-marketplace/internal/pkg/jwt"
	"rezo-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the access token from cookie or Authorization header
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try the access token cookie first
		tokenString := c.Cookies("access_token")

		// 2. Fall back to the Authorization header
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenString == "" {
			return response.Unauthorized(c, "Authentication required")
		}

		// 3. Validate the token
		claims, err := jwt.ValidateAccessToken(tokenString, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Token expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// 4. Store claims in locals for downstream handlers
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware restricts access to the listed roles
func RoleMiddleware(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// AdminOnly restricts access to admin users
func AdminOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleAdmin))
}
