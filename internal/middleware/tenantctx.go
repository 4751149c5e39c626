package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"go.uber.org/zap"
)

const tenantContextKey = "tenant_context"

// TenantContextMiddleware resolves the request hostname into a tenant
// context and stores it on the echo context. Resolution never fails a
// request.
func TenantContextMiddleware(resolver *tenant.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tc := resolver.Resolve(
				c.Request().Context(),
				c.Request().Host,
				c.Request().Header.Get("Origin"),
			)
			c.Set(tenantContextKey, tc)

			if tc.IsPartner() {
				logger.FromEcho(c).Debug("request resolved to partner tenant",
					zap.String("hostname", tc.Hostname),
					zap.String("tenant_prefix", tc.TenantPrefix))
			}

			return next(c)
		}
	}
}

// TenantFromEcho returns the resolved tenant context for a request. Falls
// back to an anonymous root context when the middleware did not run.
func TenantFromEcho(c echo.Context) *tenant.Context {
	if tc, ok := c.Get(tenantContextKey).(*tenant.Context); ok {
		return tc
	}
	return &tenant.Context{Kind: tenant.KindRoot, Hostname: "localhost"}
}
