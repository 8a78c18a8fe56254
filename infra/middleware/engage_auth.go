package middleware

import (
	"fmt"
	"strings"
	"time"

	"engage_server/core/domain"
	"engage_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuth validates the HS256 tokens issued by the platform's identity
// service and puts the caller's authorization context on the request.
// Tokens carry the user id in "sub" plus "tenant_id" and "role" claims.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == "OPTIONS" {
			return c.Next()
		}

		var tokenString string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization"})
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
			}
			if secret == "" {
				return nil, fmt.Errorf("JWT secret not configured")
			}
			return []byte(secret), nil
		})
		if err != nil {
			logger.WithError(err).Warn("JWT validation failed")
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}
		if !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "invalid claims"})
		}

		if exp, ok := claims["exp"].(float64); ok {
			if time.Now().Unix() > int64(exp) {
				return c.Status(401).JSON(fiber.Map{
					"error": "token expired",
					"code":  "TOKEN_EXPIRED",
				})
			}
		}

		userIDStr, ok := claims["sub"].(string)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "missing user id in token"})
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid user id format"})
		}

		tenantIDStr, ok := claims["tenant_id"].(string)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "missing tenant id in token"})
		}
		tenantID, err := uuid.Parse(tenantIDStr)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid tenant id format"})
		}

		role := domain.RoleAgent
		if roleClaim, ok := claims["role"].(string); ok && roleClaim != "" {
			role = domain.Role(roleClaim)
		}

		c.Locals("auth_user", domain.AuthUser{
			ID:       userID,
			TenantID: tenantID,
			Role:     role,
		})

		return c.Next()
	}
}
