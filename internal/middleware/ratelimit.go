package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"ledgermind/internal/config"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limit (per IP) across all endpoints
	GlobalMax        int
	GlobalExpiration time.Duration

	// Intent endpoint limit (per user ID)
	IntentMax        int
	IntentExpiration time.Duration
}

// NewRateLimitConfig derives limiter settings from the loaded app config
func NewRateLimitConfig(cfg *config.Config) *RateLimitConfig {
	rl := &RateLimitConfig{
		GlobalMax:        cfg.GlobalRateLimit,
		GlobalExpiration: 1 * time.Minute,
		IntentMax:        cfg.UserRateLimit,
		IntentExpiration: 1 * time.Minute,
	}

	// Development mode: more lenient limits
	if cfg.Environment == "development" {
		rl.GlobalMax = 1000
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return rl
}

// GlobalRateLimiter creates a per-IP rate limiter for all API requests
func GlobalRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalMax,
		Expiration: config.GlobalExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please slow down.",
				"retry_after": int(config.GlobalExpiration.Seconds()),
			})
		},
	})
}

// IntentRateLimiter limits intent dispatches per authenticated user,
// falling back to IP for unauthenticated callers
func IntentRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.IntentMax,
		Expiration: config.IntentExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
				return "intent:" + userID
			}
			return "intent-ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			userID, _ := c.Locals("user_id").(string)
			log.Printf("⚠️  [RATE-LIMIT] Intent limit reached for user: %s", userID)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please wait before trying again.",
				"retry_after": int(config.IntentExpiration.Seconds()),
			})
		},
	})
}
