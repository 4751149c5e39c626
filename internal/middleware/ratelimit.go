package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/cache"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"go.uber.org/zap"
)

// LoginRateLimit throttles login attempts per client IP over a fixed window.
// A failing rate-limit store lets the request through: throttling is defense
// in depth, not a gate the whole login flow depends on.
func LoginRateLimit(store *cache.Store, window time.Duration, maxAttempts int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ratelimit:login:" + c.RealIP()

			count, err := store.IncrWindow(c.Request().Context(), key, window)
			if err != nil {
				logger.FromEcho(c).Warn("rate-limit store unavailable", zap.Error(err))
				return next(c)
			}
			if count > int64(maxAttempts) {
				return apperr.Authentication("too many login attempts, try again later")
			}

			return next(c)
		}
	}
}
