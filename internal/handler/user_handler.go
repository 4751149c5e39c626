package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/paritbhardwaj019/pathosaathi/internal/middleware"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserHandler manages tenant staff accounts.
type UserHandler struct {
	router    *tenant.Router
	generator *tenant.Generator
}

// NewUserHandler creates the user handler.
func NewUserHandler(router *tenant.Router, generator *tenant.Generator) *UserHandler {
	return &UserHandler{router: router, generator: generator}
}

type createUserRequest struct {
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Password  string  `json:"password"`
	Role      string  `json:"role"`
	LabID     *uint   `json:"lab_id,omitempty"`
	PartnerID *uint   `json:"partner_id,omitempty"`
}

// Create handles POST /api/users: onboards a staff account into the
// caller's tenant. The caller must outrank the role being created.
func (h *UserHandler) Create(c echo.Context) error {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return apperr.Authentication("authentication required")
	}
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}

	if !model.StaffRole(req.Role) {
		return apperr.Validation("unknown role")
	}
	if !model.RoleAtLeast(claims.Role, req.Role) {
		return apperr.Authorization("cannot create a user above your own role")
	}
	if claims.Role == req.Role && claims.Role != model.RoleSuperadmin {
		return apperr.Authorization("cannot create a user at your own role")
	}
	if req.Email == nil && req.Phone == nil {
		return apperr.Validation("email or phone is required")
	}
	if req.Password == "" {
		return apperr.Validation("password is required for staff roles")
	}

	// Partner-level and below accounts must reference their owning
	// partner; lab staff must reference their lab.
	if req.Role == model.RolePartner && req.PartnerID == nil {
		return apperr.Validation("partner_id is required for PARTNER users")
	}
	if (req.Role == model.RoleTech || req.Role == model.RoleReception || req.Role == model.RoleLabOwner) && req.LabID == nil {
		return apperr.Validation("lab_id is required for lab staff")
	}

	user := &model.User{
		Name:      strings.TrimSpace(req.Name),
		Role:      req.Role,
		LabID:     req.LabID,
		PartnerID: req.PartnerID,
		IsActive:  true,
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		user.Email = &email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		user.Phone = &phone
	}
	if err := user.SetPassword(req.Password); err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := user.Validate(); err != nil {
		return apperr.Validation(err.Error())
	}

	identifier, err := h.generator.Next(ctx, claims.TenantPrefix, tenant.EntityUser)
	if err != nil {
		return err
	}
	user.Identifier = identifier

	users, err := h.router.Handle(claims.TenantPrefix, tenant.EntityUser)
	if err != nil {
		return err
	}
	if err := users.DB().WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("a user with this email or phone already exists")
		}
		return apperr.Internal("failed to create user", err)
	}

	logger.FromEcho(c).Info("user created",
		zap.String("identifier", user.Identifier),
		zap.String("role", user.Role),
		zap.String("tenant_prefix", claims.TenantPrefix))

	return respond(c, http.StatusCreated, "user created", user)
}

// List handles GET /api/users for the caller's tenant.
func (h *UserHandler) List(c echo.Context) error {
	claims := middleware.ClaimsFromEcho(c)
	if claims == nil {
		return apperr.Authentication("authentication required")
	}

	users, err := h.router.Handle(claims.TenantPrefix, tenant.EntityUser)
	if err != nil {
		return err
	}
	var rows []model.User
	if err := users.DB().WithContext(c.Request().Context()).Order("id").Find(&rows).Error; err != nil {
		return apperr.Internal("failed to list users", err)
	}
	return respond(c, http.StatusOK, "users", rows)
}
