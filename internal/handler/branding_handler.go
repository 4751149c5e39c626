package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/branding"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"gorm.io/gorm"
)

// BrandingHandler exposes the tenant-aware branding endpoints.
type BrandingHandler struct {
	svc    *branding.Service
	router *tenant.Router
}

// NewBrandingHandler creates the branding handler.
func NewBrandingHandler(svc *branding.Service, router *tenant.Router) *BrandingHandler {
	return &BrandingHandler{svc: svc, router: router}
}

// Config handles GET /api/branding/config.
func (h *BrandingHandler) Config(c echo.Context) error {
	tc := middleware.TenantFromEcho(c)
	b, err := h.svc.Resolve(c.Request().Context(), tc)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "branding configuration", b)
}

// Simple handles GET /api/branding/simple: just the name and color palette.
func (h *BrandingHandler) Simple(c echo.Context) error {
	tc := middleware.TenantFromEcho(c)
	b, err := h.svc.Resolve(c.Request().Context(), tc)
	if err != nil {
		return err
	}

	simple := echo.Map{"name": b.Name}
	if b.Metadata != nil {
		simple["colors"] = b.Metadata["colors"]
	}
	return respond(c, http.StatusOK, "branding palette", simple)
}

// CSS handles GET /api/branding/css: the variable sheet as text/css, cached
// for an hour on resolved partner tenants.
func (h *BrandingHandler) CSS(c echo.Context) error {
	tc := middleware.TenantFromEcho(c)
	b, err := h.svc.Resolve(c.Request().Context(), tc)
	if err != nil {
		return err
	}

	if tc.IsPartner() {
		c.Response().Header().Set("Cache-Control", "public, max-age=3600")
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", []byte(branding.GenerateCSS(b)))
}

// Fonts handles GET /api/branding/fonts.
func (h *BrandingHandler) Fonts(c echo.Context) error {
	fonts, err := h.svc.ListFonts(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "font catalog", fonts)
}

// Themes handles GET /api/branding/themes.
func (h *BrandingHandler) Themes(c echo.Context) error {
	themes, err := h.svc.ListThemes(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "theme catalog", themes)
}

// TenantInfo handles GET /api/branding/tenant-info. Besides the hostname
// classification it reports the shared catalog collections the tenant's
// references resolve to, via the router's alias layer.
func (h *BrandingHandler) TenantInfo(c echo.Context) error {
	tc := middleware.TenantFromEcho(c)

	info := echo.Map{
		"kind":           tc.Kind,
		"is_main_domain": tc.IsMainDomain,
		"hostname":       tc.Hostname,
	}
	if tc.IsPartner() {
		info["subdomain"] = tc.Subdomain
		info["custom_domain"] = tc.CustomDomain
		info["partner"] = echo.Map{
			"id":           tc.Partner.ID,
			"company_name": tc.Partner.CompanyName,
			"partner_type": tc.Partner.PartnerType,
		}
	}

	shared := echo.Map{}
	for _, entity := range []string{tenant.EntityPartner, tenant.EntityBranding, tenant.EntityTheme, tenant.EntityFont} {
		if table, ok := h.router.ResolveAlias(entity); ok {
			shared[entity] = table
		}
	}
	info["shared_collections"] = shared

	return respond(c, http.StatusOK, "tenant info", info)
}

// UpdatePartner handles PUT /api/branding/partner/:partnerId. Allowed for
// the partner's own account or a superadmin.
func (h *BrandingHandler) UpdatePartner(c echo.Context) error {
	partner, err := h.loadPartner(c)
	if err != nil {
		return err
	}

	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return apperr.Authentication("authentication required")
	}
	selfPartner := claims.PartnerID != nil && *claims.PartnerID == partner.ID
	if !selfPartner && claims.Role != model.RoleSuperadmin {
		return apperr.Authorization("not allowed to modify this partner's branding")
	}

	var req struct {
		Metadata model.JSONMap `json:"metadata"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Metadata == nil {
		return apperr.Validation("metadata is required")
	}

	b, err := h.svc.Update(c.Request().Context(), partner, req.Metadata)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "branding updated", b)
}

// ResetPartner handles POST /api/branding/partner/:partnerId/reset.
// Superadmin only.
func (h *BrandingHandler) ResetPartner(c echo.Context) error {
	partner, err := h.loadPartner(c)
	if err != nil {
		return err
	}

	if err := h.svc.Reset(c.Request().Context(), partner); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "branding reset to platform default", nil)
}

func (h *BrandingHandler) loadPartner(c echo.Context) (*model.Partner, error) {
	id, err := strconv.ParseUint(c.Param("partnerId"), 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid partner id")
	}

	handle, err := h.router.Handle(h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return nil, err
	}

	var partner model.Partner
	if err := handle.DB().WithContext(c.Request().Context()).First(&partner, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("partner not found")
		}
		return nil, apperr.Internal("failed to load partner", err)
	}
	return &partner, nil
}
