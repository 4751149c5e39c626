package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/auth"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/jwtutil"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware validates the Bearer token from the Authorization header
// against the request's resolved tenant domain.
func AuthMiddleware(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				prometheus.RecordAuthError("missing_token")
				return apperr.Authentication("missing authorization token")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				prometheus.RecordAuthError("invalid_auth_format")
				return apperr.Authentication("invalid authorization format, expected Bearer token")
			}

			claims, err := svc.VerifyAccess(TenantFromEcho(c), parts[1])
			if err != nil {
				log.Debug("token rejected", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return err
			}

			c.Set(claimsKey, claims)
			c.Set("user_id", claims.UserID)
			c.Set("user_role", claims.Role)

			return next(c)
		}
	}
}

// OptionalAuth parses the Bearer token when one is present but never
// rejects the request. Used for best-effort endpoints like logout.
func OptionalAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				if claims, err := svc.VerifyAccess(TenantFromEcho(c), parts[1]); err == nil {
					c.Set(claimsKey, claims)
					c.Set("user_id", claims.UserID)
					c.Set("user_role", claims.Role)
				}
			}
			return next(c)
		}
	}
}

// ClaimsFromEcho returns the verified claims set by AuthMiddleware, or nil.
func ClaimsFromEcho(c echo.Context) *jwtutil.Claims {
	if claims, ok := c.Get(claimsKey).(*jwtutil.Claims); ok {
		return claims
	}
	return nil
}

// RequireRole rejects requests whose verified role sits below the required
// role in the hierarchy.
func RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromEcho(c)
			if claims == nil {
				return apperr.Authentication("authentication required")
			}
			if !model.RoleAtLeast(claims.Role, required) {
				return apperr.Authorization("insufficient role")
			}
			return next(c)
		}
	}
}
