package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/auth"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"go.uber.org/zap"
)

const refreshCookieName = "refresh_token"

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	svc          *auth.Service
	refreshTTL   time.Duration
	isProduction bool
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(svc *auth.Service, refreshTTL time.Duration, isProduction bool) *AuthHandler {
	return &AuthHandler{svc: svc, refreshTTL: refreshTTL, isProduction: isProduction}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req auth.LoginInput
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	req.IP = c.RealIP()

	tc := middleware.TenantFromEcho(c)
	result, err := h.svc.Login(c.Request().Context(), tc, req)
	if err != nil {
		return err
	}

	// The refresh token also travels as an HTTP-only cookie in production.
	if h.isProduction {
		h.setRefreshCookie(c, result.Tokens.RefreshToken)
	}

	logger.FromEcho(c).Info("user logged in",
		zap.Uint("user_id", result.User.ID),
		zap.String("tenant_prefix", tc.TenantPrefix),
		zap.String("session", result.SessionID))

	return respond(c, http.StatusOK, "login successful", result)
}

// Refresh handles POST /auth/refresh. The token arrives in the body or the
// refresh cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	token := req.RefreshToken
	if token == "" {
		if cookie, err := c.Cookie(refreshCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return apperr.Validation("refresh token is required")
	}

	tc := middleware.TenantFromEcho(c)
	result, err := h.svc.Refresh(c.Request().Context(), tc, token)
	if err != nil {
		return err
	}

	if h.isProduction {
		h.setRefreshCookie(c, result.Tokens.RefreshToken)
	}

	return respond(c, http.StatusOK, "token refreshed", result)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return apperr.Authentication("authentication required")
	}

	user, err := h.svc.GetUser(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "profile", user)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if claims := middleware.ClaimsFromEcho(c); claims != nil {
		h.svc.Logout(c.Request().Context(), claims.SessionID)
		logger.FromEcho(c).Info("user logged out",
			zap.Uint("user_id", claims.UserID),
			zap.String("session", claims.SessionID))
	}

	h.clearRefreshCookie(c)
	return respond(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
