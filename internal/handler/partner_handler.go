package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PartnerHandler exposes partner onboarding and lifecycle endpoints.
type PartnerHandler struct {
	router     *tenant.Router
	generator  *tenant.Generator
	apexDomain string
	pageSize   int
}

// NewPartnerHandler creates the partner handler.
func NewPartnerHandler(router *tenant.Router, generator *tenant.Generator, apexDomain string, pageSize int) *PartnerHandler {
	return &PartnerHandler{router: router, generator: generator, apexDomain: apexDomain, pageSize: pageSize}
}

type createPartnerRequest struct {
	CompanyName     string  `json:"company_name"`
	OwnerName       string  `json:"owner_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Subdomain       *string `json:"subdomain,omitempty"`
	CustomDomain    *string `json:"custom_domain,omitempty"`
	PartnerType     string  `json:"partner_type"`
	RegistrationFee float64 `json:"registration_fee"`
	CustomPrefix    string  `json:"custom_prefix,omitempty"`
	ReferralCode    string  `json:"referral_code,omitempty"`
	IsRootTenant    bool    `json:"is_root_tenant,omitempty"`
}

// Create handles POST /api/partners.
func (h *PartnerHandler) Create(c echo.Context) error {
	prometheus.RecordPartnerOperation("create")
	ctx := c.Request().Context()

	var req createPartnerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	fee, ok := model.RegistrationFees[req.PartnerType]
	if !ok {
		return apperr.Validation("partner type must be COMMISSION or WHITE_LABEL")
	}
	if req.RegistrationFee != fee {
		return apperr.Validation("registration fee does not match the partner type")
	}

	if req.Subdomain != nil {
		if err := tenant.ValidateSubdomain(*req.Subdomain); err != nil {
			return err
		}
		normalized := strings.ToLower(strings.TrimSpace(*req.Subdomain))
		req.Subdomain = &normalized
	}
	if req.CustomDomain != nil {
		if err := tenant.ValidateCustomDomain(*req.CustomDomain, h.apexDomain); err != nil {
			return err
		}
		normalized := strings.ToLower(strings.TrimSpace(*req.CustomDomain))
		req.CustomDomain = &normalized
	}

	// Only a superadmin can onboard the platform's own tenant.
	if req.IsRootTenant {
		claims := middleware.ClaimsFromEcho(c)
		if claims == nil || claims.Role != model.RoleSuperadmin {
			return apperr.Authorization("only a superadmin may create a root tenant")
		}
	}

	partner := &model.Partner{
		CompanyName:     strings.TrimSpace(req.CompanyName),
		OwnerName:       strings.TrimSpace(req.OwnerName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		Subdomain:       req.Subdomain,
		CustomDomain:    req.CustomDomain,
		PartnerType:     req.PartnerType,
		RegistrationFee: req.RegistrationFee,
		PaidStatus:      model.PaidStatusPending,
		IsRootTenant:    req.IsRootTenant,
		ReferralCode:    strings.TrimSpace(req.ReferralCode),
	}

	// Root partners default onto the platform's app subdomain.
	if partner.IsRootTenant && partner.Subdomain == nil {
		app := "app"
		partner.Subdomain = &app
	}

	partner.GenerateReferralCode()
	if err := partner.GenerateTenantPrefix(req.CustomPrefix); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := partner.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}

	identifier, err := h.generator.Next(ctx, h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return err
	}
	partner.Identifier = identifier

	partners, err := h.router.Handle(h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := partners.DB().WithContext(ctx).Create(partner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("a partner with this email, phone, domain or prefix already exists")
		}
		return apperr.Internal("failed to create partner", err)
	}

	logger.FromEcho(c).Info("partner onboarded",
		zap.String("identifier", partner.Identifier),
		zap.String("tenant_prefix", partner.TenantPrefix))

	return respond(c, http.StatusCreated, "partner created", partner)
}

// List handles GET /api/partners with simple pagination.
func (h *PartnerHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size < 1 || size > 100 {
		size = h.pageSize
	}

	partners, err := h.router.Handle(h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return err
	}

	var rows []model.Partner
	var total int64
	if err := partners.DB().WithContext(ctx).Count(&total).Error; err != nil {
		return apperr.Internal("failed to count partners", err)
	}
	if err := partners.DB().WithContext(ctx).Order("id").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return apperr.Internal("failed to list partners", err)
	}

	return respond(c, http.StatusOK, "partners", echo.Map{
		"items": rows,
		"page":  page,
		"size":  size,
		"total": total,
	})
}

// Get handles GET /api/partners/:id.
func (h *PartnerHandler) Get(c echo.Context) error {
	partner, err := h.load(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "partner", partner)
}

type updatePartnerRequest struct {
	OwnerName    *string `json:"owner_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Subdomain    *string `json:"subdomain,omitempty"`
	CustomDomain *string `json:"custom_domain,omitempty"`
}

// Update handles PUT /api/partners/:id.
func (h *PartnerHandler) Update(c echo.Context) error {
	prometheus.RecordPartnerOperation("update")
	ctx := c.Request().Context()

	partner, err := h.load(c)
	if err != nil {
		return err
	}

	var req updatePartnerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	updates := map[string]interface{}{}
	if req.OwnerName != nil {
		updates["owner_name"] = strings.TrimSpace(*req.OwnerName)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Subdomain != nil {
		if err := tenant.ValidateSubdomain(*req.Subdomain); err != nil {
			return err
		}
		updates["subdomain"] = strings.ToLower(strings.TrimSpace(*req.Subdomain))
	}
	if req.CustomDomain != nil {
		if err := tenant.ValidateCustomDomain(*req.CustomDomain, h.apexDomain); err != nil {
			return err
		}
		updates["custom_domain"] = strings.ToLower(strings.TrimSpace(*req.CustomDomain))
	}
	if len(updates) == 0 {
		return apperr.Validation("no updatable fields provided")
	}

	partners, err := h.router.Handle(h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return err
	}
	if err := partners.DB().WithContext(ctx).Where("id = ?", partner.ID).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("another partner already uses one of these values")
		}
		return apperr.Internal("failed to update partner", err)
	}

	return h.Get(c)
}

// PaymentStatus handles POST /api/partners/:id/payment-status. The first
// transition to PAID activates the partner and opens the 365-day window;
// later transitions never move the dates.
func (h *PartnerHandler) PaymentStatus(c echo.Context) error {
	prometheus.RecordPartnerOperation("payment_status")
	ctx := c.Request().Context()

	partner, err := h.load(c)
	if err != nil {
		return err
	}

	var req struct {
		PaidStatus string `json:"paid_status"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	switch req.PaidStatus {
	case model.PaidStatusPending, model.PaidStatusPaid, model.PaidStatusFailed, model.PaidStatusRefunded:
	default:
		return apperr.Validation("paid_status must be PENDING, PAID, FAILED or REFUNDED")
	}

	partner.PaidStatus = req.PaidStatus
	if req.PaidStatus == model.PaidStatusPaid {
		partner.Activate(time.Now())
	}

	partners, err := h.router.Handle(h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"paid_status":       partner.PaidStatus,
		"is_active":         partner.IsActive,
		"registration_date": partner.RegistrationDate,
		"expiry_date":       partner.ExpiryDate,
	}
	if err := partners.DB().WithContext(ctx).Where("id = ?", partner.ID).Updates(updates).Error; err != nil {
		return apperr.Internal("failed to update payment status", err)
	}

	logger.FromEcho(c).Info("partner payment status updated",
		zap.Uint("partner_id", partner.ID),
		zap.String("paid_status", partner.PaidStatus))

	return respond(c, http.StatusOK, "payment status updated", partner)
}

func (h *PartnerHandler) load(c echo.Context) (*model.Partner, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, apperr.Validation("invalid partner id")
	}

	partners, err := h.router.Handle(h.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return nil, err
	}

	var partner model.Partner
	if err := partners.DB().WithContext(c.Request().Context()).First(&partner, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("partner not found")
		}
		return nil, apperr.Internal("failed to load partner", err)
	}
	return &partner, nil
}
