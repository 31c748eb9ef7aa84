package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
)

// QueryTimeout bounds the request context that handlers pass to the fact
// store. A zero or negative d leaves the context unbounded.
func QueryTimeout(d time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.Context(), d)
		defer cancel()
		c.SetContext(ctx)

		return c.Next()
	}
}
