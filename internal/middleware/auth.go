package middleware

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims are the identity claims the engine needs from a bearer token.
// Timezone and currency are optional caller preferences; the subject is the
// owner id every predicate gets scoped by.
type AuthClaims struct {
	Timezone string `json:"timezone,omitempty"`
	Currency string `json:"currency,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth verifies bearer tokens and stores the caller identity in Locals
// (user_id, user_timezone, user_currency).
func JWTAuth(secret string, environment string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Never allow auth bypass in production. Startup already fatals on
		// this combination; if a request still reaches here, reject it
		// instead of taking down in-flight requests.
		if secret == "" {
			if environment == "production" {
				log.Printf("❌ [AUTH] JWT_SECRET not configured in production, rejecting request")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"error": fiber.Map{
						"code":    "InternalError",
						"message": "Authentication is not configured",
					},
				})
			}
			c.Locals("user_id", "dev-user")
			return c.Next()
		}

		token := extractBearerToken(c.Get("Authorization"))
		if token == "" {
			return unauthorized(c, "Missing or invalid authorization token")
		}

		claims := &AuthClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			log.Printf("❌ Auth failed: %v", err)
			return unauthorized(c, "Invalid or expired token")
		}
		if claims.Subject == "" {
			return unauthorized(c, "Token is missing a subject")
		}

		c.Locals("user_id", claims.Subject)
		c.Locals("user_timezone", claims.Timezone)
		c.Locals("user_currency", claims.Currency)
		return c.Next()
	}
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    "Unauthorized",
			"message": message,
		},
	})
}
