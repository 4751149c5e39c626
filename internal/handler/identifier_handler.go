package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
)

// IdentifierConfigHandler exposes the per-tenant identifier-format
// configuration endpoints.
type IdentifierConfigHandler struct {
	store *tenant.ConfigStore
}

// NewIdentifierConfigHandler creates the identifier-config handler.
func NewIdentifierConfigHandler(store *tenant.ConfigStore) *IdentifierConfigHandler {
	return &IdentifierConfigHandler{store: store}
}

// tenantPrefix resolves which tenant the caller administers: always the
// tenant carried in the verified claims.
func (h *IdentifierConfigHandler) tenantPrefix(c echo.Context) (string, error) {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return "", apperr.Authentication("authentication required")
	}
	return claims.TenantPrefix, nil
}

func (h *IdentifierConfigHandler) actor(c echo.Context) string {
	if claims := middleware.ClaimsFromEcho(c); claims != nil {
		return claims.Role
	}
	return "unknown"
}

// Get handles GET /api/identifier-config.
func (h *IdentifierConfigHandler) Get(c echo.Context) error {
	prefix, err := h.tenantPrefix(c)
	if err != nil {
		return err
	}

	cfg, err := h.store.GetTenantConfig(c.Request().Context(), prefix)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "identifier configuration", cfg)
}

type upsertConfigRequest struct {
	Entity      string                       `json:"entity"`
	Config      model.EntityIdentifierConfig `json:"config"`
	Description string                       `json:"description"`
}

// Upsert handles PUT /api/identifier-config.
func (h *IdentifierConfigHandler) Upsert(c echo.Context) error {
	prefix, err := h.tenantPrefix(c)
	if err != nil {
		return err
	}

	var req upsertConfigRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Entity == "" {
		return apperr.Validation("entity is required")
	}
	if req.Description == "" {
		req.Description = "updated " + req.Entity + " identifier config"
	}

	if err := h.store.Upsert(c.Request().Context(), prefix, req.Entity, req.Config, h.actor(c), req.Description); err != nil {
		return err
	}

	return h.Get(c)
}

// ApplyTemplate handles POST /api/identifier-config/template.
func (h *IdentifierConfigHandler) ApplyTemplate(c echo.Context) error {
	prefix, err := h.tenantPrefix(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := h.store.ApplyTemplate(c.Request().Context(), prefix, req.Name, h.actor(c)); err != nil {
		return err
	}

	return h.Get(c)
}

// Templates handles GET /api/identifier-config/templates.
func (h *IdentifierConfigHandler) Templates(c echo.Context) error {
	return respond(c, http.StatusOK, "configuration templates", tenant.TemplateNames())
}

// Validate handles POST /api/identifier-config/validate: checks a candidate
// configuration document without persisting it.
func (h *IdentifierConfigHandler) Validate(c echo.Context) error {
	var cfg model.TenantIdentifierConfig
	if err := c.Bind(&cfg); err != nil {
		return apperr.Validation("invalid request body")
	}

	if err := tenant.ValidateConfiguration(&cfg); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "configuration is valid", nil)
}

// Preview handles GET /api/identifier-config/preview?entity=User: renders a
// sample identifier without consuming a counter value.
func (h *IdentifierConfigHandler) Preview(c echo.Context) error {
	prefix, err := h.tenantPrefix(c)
	if err != nil {
		return err
	}

	entity := c.QueryParam("entity")
	if entity == "" {
		entity = tenant.EntityUser
	}

	cfg, err := h.store.Get(c.Request().Context(), prefix, entity)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "identifier preview", echo.Map{
		"entity": entity,
		"sample": tenant.FormatIdentifier(cfg, 1, time.Now()),
		"config": cfg,
	})
}
