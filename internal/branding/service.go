package branding

import (
	"context"
	"errors"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Collections is the slice of the model router the branding service needs.
type Collections interface {
	Handle(prefix, entity string) (*tenant.Handle, error)
	RootPrefix() string
}

// Service resolves and maintains tenant branding.
type Service struct {
	router Collections
}

// NewService creates the branding service.
func NewService(router Collections) *Service {
	return &Service{router: router}
}

// DefaultBranding synthesizes the hardcoded platform branding used when no
// document exists anywhere.
func DefaultBranding() *model.Branding {
	return &model.Branding{
		Name:      "PathoSaathi Default",
		IsDefault: true,
		Metadata: model.JSONMap{
			"colors": map[string]interface{}{
				"primary":    "#1976d2",
				"secondary":  "#dc004e",
				"background": "#ffffff",
				"text":       "#212121",
			},
			"typography": map[string]interface{}{
				"fontFamily":        "Inter, sans-serif",
				"headingFontFamily": "Inter, sans-serif",
			},
			"layout": map[string]interface{}{
				"borderRadius": "8px",
				"spacingUnit":  "8px",
				"maxWidth":     "1200px",
			},
		},
	}
}

// Resolve returns the branding for a request's tenant: the context's own
// branding, else the partner's referenced branding, else the platform
// default document, else a synthesized default created on the fly.
func (s *Service) Resolve(ctx context.Context, tc *tenant.Context) (*model.Branding, error) {
	if tc.Branding != nil {
		return tc.Branding, nil
	}

	handle, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityBranding)
	if err != nil {
		return nil, err
	}

	if tc.Partner != nil && tc.Partner.BrandingID != nil {
		var b model.Branding
		err := handle.DB().WithContext(ctx).First(&b, *tc.Partner.BrandingID).Error
		if err == nil {
			return &b, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to load partner branding", err)
		}
	}

	var b model.Branding
	err = handle.DB().WithContext(ctx).Where("is_default = ?", true).First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to load default branding", err)
	}

	fallback := DefaultBranding()
	if err := handle.DB().WithContext(ctx).Create(fallback).Error; err != nil {
		// Serve the in-memory default even when persisting it failed.
		logger.FromContext(ctx).Warn("failed to persist default branding", zap.Error(err))
	}
	return fallback, nil
}

// Get loads a branding document by id.
func (s *Service) Get(ctx context.Context, id uint) (*model.Branding, error) {
	handle, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityBranding)
	if err != nil {
		return nil, err
	}
	var b model.Branding
	if err := handle.DB().WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("branding not found")
		}
		return nil, apperr.Internal("failed to load branding", err)
	}
	return &b, nil
}

// Update replaces a partner's branding metadata after validating its colors.
// Creates the partner's branding document when it has none yet.
func (s *Service) Update(ctx context.Context, partner *model.Partner, metadata model.JSONMap) (*model.Branding, error) {
	if err := ValidateMetadata(metadata); err != nil {
		return nil, err
	}

	handle, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityBranding)
	if err != nil {
		return nil, err
	}

	if partner.BrandingID != nil {
		var b model.Branding
		err := handle.DB().WithContext(ctx).First(&b, *partner.BrandingID).Error
		switch {
		case err == nil:
			b.Metadata = metadata
			if err := handle.DB().WithContext(ctx).Where("id = ?", b.ID).Updates(map[string]interface{}{"metadata": metadata}).Error; err != nil {
				return nil, apperr.Internal("failed to update branding", err)
			}
			return &b, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Dangling reference: fall through and create a fresh document.
		default:
			return nil, apperr.Internal("failed to load branding", err)
		}
	}

	b := &model.Branding{
		Name:     partner.CompanyName + " Branding",
		Metadata: metadata,
	}
	if err := handle.DB().WithContext(ctx).Create(b).Error; err != nil {
		return nil, apperr.Internal("failed to create branding", err)
	}

	partners, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return nil, err
	}
	if err := partners.DB().WithContext(ctx).Where("id = ?", partner.ID).Update("branding_id", b.ID).Error; err != nil {
		return nil, apperr.Internal("failed to attach branding to partner", err)
	}

	return b, nil
}

// Reset detaches a partner's branding so it falls back to the platform
// default. The branding document itself is left in place: its lifetime is
// independent of the partner.
func (s *Service) Reset(ctx context.Context, partner *model.Partner) error {
	partners, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityPartner)
	if err != nil {
		return err
	}
	if err := partners.DB().WithContext(ctx).Where("id = ?", partner.ID).Update("branding_id", nil).Error; err != nil {
		return apperr.Internal("failed to reset partner branding", err)
	}
	return nil
}

// ListFonts returns the platform font catalog.
func (s *Service) ListFonts(ctx context.Context) ([]model.Font, error) {
	handle, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityFont)
	if err != nil {
		return nil, err
	}
	var fonts []model.Font
	if err := handle.DB().WithContext(ctx).Order("name").Find(&fonts).Error; err != nil {
		return nil, apperr.Internal("failed to list fonts", err)
	}
	return fonts, nil
}

// ListThemes returns the platform theme catalog.
func (s *Service) ListThemes(ctx context.Context) ([]model.Theme, error) {
	handle, err := s.router.Handle(s.router.RootPrefix(), tenant.EntityTheme)
	if err != nil {
		return nil, err
	}
	var themes []model.Theme
	if err := handle.DB().WithContext(ctx).Order("name").Find(&themes).Error; err != nil {
		return nil, apperr.Internal("failed to list themes", err)
	}
	return themes, nil
}
