package middleware

import (
	"fmt"

	"engage_server/core/domain"
	"engage_server/pkg/apperr"
	"engage_server/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// TenantRateLimit limits authenticated requests per tenant using a
// Redis sliding window. Must run after JWTAuth. A nil limiter disables
// limiting entirely.
func TenantRateLimit(limiter *ratelimit.SlidingWindowLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		user, ok := c.Locals("auth_user").(domain.AuthUser)
		if !ok {
			return c.Next()
		}

		allowed, wait := limiter.Allow(c.UserContext(), user.TenantID.String())
		if !allowed {
			if wait > 0 {
				c.Set("Retry-After", fmt.Sprintf("%d", int(wait.Seconds())+1))
			}
			return apperr.New(apperr.CodeRateLimited, "rate limit exceeded", fiber.StatusTooManyRequests)
		}

		return c.Next()
	}
}
