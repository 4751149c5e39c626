package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"gorm.io/gorm"
)

// PlanHandler exposes the tenant-scoped pricing catalog.
type PlanHandler struct {
	router    *tenant.Router
	generator *tenant.Generator
}

// NewPlanHandler creates the plan handler.
func NewPlanHandler(router *tenant.Router, generator *tenant.Generator) *PlanHandler {
	return &PlanHandler{router: router, generator: generator}
}

func (h *PlanHandler) prefix(c echo.Context) (string, error) {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return "", apperr.Authentication("authentication required")
	}
	return claims.TenantPrefix, nil
}

// ListPlanTypes handles GET /api/plan-types.
func (h *PlanHandler) ListPlanTypes(c echo.Context) error {
	prefix, err := h.prefix(c)
	if err != nil {
		return err
	}

	handle, err := h.router.Handle(prefix, tenant.EntityPlanType)
	if err != nil {
		return err
	}
	var rows []model.PlanType
	if err := handle.DB().WithContext(c.Request().Context()).Order("name").Find(&rows).Error; err != nil {
		return apperr.Internal("failed to list plan types", err)
	}
	return respond(c, http.StatusOK, "plan types", rows)
}

// CreatePlanType handles POST /api/plan-types.
func (h *PlanHandler) CreatePlanType(c echo.Context) error {
	prefix, err := h.prefix(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		BaseCost    float64 `json:"base_cost"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if req.BaseCost < 0 {
		return apperr.Validation("base cost must not be negative")
	}

	identifier, err := h.generator.Next(ctx, prefix, tenant.EntityPlanType)
	if err != nil {
		return err
	}

	planType := &model.PlanType{
		Identifier:  identifier,
		Name:        req.Name,
		Description: req.Description,
		BaseCost:    req.BaseCost,
	}

	handle, err := h.router.Handle(prefix, tenant.EntityPlanType)
	if err != nil {
		return err
	}
	if err := handle.DB().WithContext(ctx).Create(planType).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("a plan type with this name already exists")
		}
		return apperr.Internal("failed to create plan type", err)
	}

	return respond(c, http.StatusCreated, "plan type created", planType)
}

// ListPlans handles GET /api/plans.
func (h *PlanHandler) ListPlans(c echo.Context) error {
	prefix, err := h.prefix(c)
	if err != nil {
		return err
	}

	handle, err := h.router.Handle(prefix, tenant.EntityPlan)
	if err != nil {
		return err
	}
	var rows []model.Plan
	if err := handle.DB().WithContext(c.Request().Context()).Order("id").Find(&rows).Error; err != nil {
		return apperr.Internal("failed to list plans", err)
	}
	return respond(c, http.StatusOK, "plans", rows)
}

type planRequest struct {
	Name         string  `json:"name"`
	PlanTypeID   uint    `json:"plan_type_id"`
	SellingPrice float64 `json:"selling_price"`
}

// CreatePlan handles POST /api/plans. The selling price is checked against
// the plan type's base cost and the margin recomputed.
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	prefix, err := h.prefix(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Name == "" || req.PlanTypeID == 0 {
		return apperr.Validation("name and plan_type_id are required")
	}

	planType, err := h.loadPlanType(c, prefix, req.PlanTypeID)
	if err != nil {
		return err
	}

	identifier, err := h.generator.Next(ctx, prefix, tenant.EntityPlan)
	if err != nil {
		return err
	}

	plan := &model.Plan{
		Identifier:   identifier,
		Name:         req.Name,
		PlanTypeID:   planType.ID,
		SellingPrice: req.SellingPrice,
	}
	if err := plan.Reprice(planType.BaseCost); err != nil {
		return apperr.Validation(err.Error())
	}

	handle, err := h.router.Handle(prefix, tenant.EntityPlan)
	if err != nil {
		return err
	}
	if err := handle.DB().WithContext(ctx).Create(plan).Error; err != nil {
		return apperr.Internal("failed to create plan", err)
	}

	return respond(c, http.StatusCreated, "plan created", plan)
}

// UpdatePlan handles PUT /api/plans/:id.
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	prefix, err := h.prefix(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.Validation("invalid plan id")
	}

	handle, err := h.router.Handle(prefix, tenant.EntityPlan)
	if err != nil {
		return err
	}
	var plan model.Plan
	if err := handle.DB().WithContext(ctx).First(&plan, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("plan not found")
		}
		return apperr.Internal("failed to load plan", err)
	}

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.SellingPrice > 0 {
		plan.SellingPrice = req.SellingPrice
	}

	planType, err := h.loadPlanType(c, prefix, plan.PlanTypeID)
	if err != nil {
		return err
	}
	if err := plan.Reprice(planType.BaseCost); err != nil {
		return apperr.Validation(err.Error())
	}

	updates := map[string]interface{}{
		"name":          plan.Name,
		"selling_price": plan.SellingPrice,
		"margin":        plan.Margin,
	}
	if err := handle.DB().WithContext(ctx).Where("id = ?", plan.ID).Updates(updates).Error; err != nil {
		return apperr.Internal("failed to update plan", err)
	}

	return respond(c, http.StatusOK, "plan updated", plan)
}

func (h *PlanHandler) loadPlanType(c echo.Context, prefix string, id uint) (*model.PlanType, error) {
	handle, err := h.router.Handle(prefix, tenant.EntityPlanType)
	if err != nil {
		return nil, err
	}
	var planType model.PlanType
	if err := handle.DB().WithContext(c.Request().Context()).First(&planType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("plan type not found")
		}
		return nil, apperr.Internal("failed to load plan type", err)
	}
	return &planType, nil
}
