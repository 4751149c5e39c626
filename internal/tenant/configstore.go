package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"gorm.io/gorm"
)

// configCacheTTL bounds how stale a cached identifier config may get before
// the store re-reads it.
const configCacheTTL = 60 * time.Second

// Built-in configuration templates.
const (
	TemplateMedicalStandard = "MEDICAL_STANDARD"
	TemplateApolloStyle     = "APOLLO_STYLE"
	TemplateSimpleNumeric   = "SIMPLE_NUMERIC"
)

// templates holds per-entity config fragments bulk-applied by ApplyTemplate.
// Prefix is filled in from the tenant's global prefix at application time.
var templates = map[string]map[string]model.EntityIdentifierConfig{
	TemplateMedicalStandard: {
		EntityUser:      {Format: "USR_" + PlaceholderDate + "_" + PlaceholderCounter, Separator: "_", DateFormat: "YYYYMMDD", CounterLength: 4, ResetFrequency: model.ResetDaily},
		EntityPatient:   {Format: "PAT_" + PlaceholderDate + "_" + PlaceholderCounter, Separator: "_", DateFormat: "YYYYMMDD", CounterLength: 4, ResetFrequency: model.ResetDaily},
		EntityTest:      {Format: "TST_" + PlaceholderDate + "_" + PlaceholderCounter, Separator: "_", DateFormat: "YYYYMMDD", CounterLength: 4, ResetFrequency: model.ResetDaily},
		EntityTestOrder: {Format: "ORD_" + PlaceholderDate + "_" + PlaceholderTodaysEntry, Separator: "_", DateFormat: "YYYYMMDD", CounterLength: 4, ResetFrequency: model.ResetDaily},
	},
	TemplateApolloStyle: {
		EntityUser:      {Format: "USR-" + PlaceholderDate + "-" + PlaceholderCounter, Separator: "-", DateFormat: "DDMMYY", CounterLength: 6, ResetFrequency: model.ResetMonthly},
		EntityPatient:   {Format: "PAT-" + PlaceholderDate + "-" + PlaceholderCounter, Separator: "-", DateFormat: "DDMMYY", CounterLength: 6, ResetFrequency: model.ResetMonthly},
		EntityTest:      {Format: "TST-" + PlaceholderDate + "-" + PlaceholderCounter, Separator: "-", DateFormat: "DDMMYY", CounterLength: 6, ResetFrequency: model.ResetMonthly},
		EntityTestOrder: {Format: "ORD-" + PlaceholderDate + "-" + PlaceholderCounter, Separator: "-", DateFormat: "DDMMYY", CounterLength: 6, ResetFrequency: model.ResetMonthly},
	},
	TemplateSimpleNumeric: {
		EntityUser:      {Format: PlaceholderCounter, Separator: "_", CounterLength: 6, ResetFrequency: model.ResetNever},
		EntityPatient:   {Format: PlaceholderCounter, Separator: "_", CounterLength: 6, ResetFrequency: model.ResetNever},
		EntityTest:      {Format: PlaceholderCounter, Separator: "_", CounterLength: 6, ResetFrequency: model.ResetNever},
		EntityTestOrder: {Format: PlaceholderCounter, Separator: "_", CounterLength: 6, ResetFrequency: model.ResetNever},
	},
}

type cachedConfig struct {
	cfg     model.EntityIdentifierConfig
	expires time.Time
}

// ConfigStore serves per-tenant identifier-format configuration with
// built-in defaults, a short-lived read-through cache and a change history
// appended on every mutation.
type ConfigStore struct {
	router *Router
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cachedConfig
}

// NewConfigStore creates a configuration store over the model router.
func NewConfigStore(router *Router) *ConfigStore {
	return &ConfigStore{
		router: router,
		now:    time.Now,
		cache:  make(map[string]cachedConfig),
	}
}

func cacheKey(prefix, entity string) string {
	return prefix + "|" + entity
}

// Get returns the effective identifier config for a tenant and entity:
// the tenant's stored override when present, else the built-in default.
func (s *ConfigStore) Get(ctx context.Context, tenantPrefix, entity string) (model.EntityIdentifierConfig, error) {
	key := cacheKey(tenantPrefix, entity)

	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && s.now().Before(entry.expires) {
		s.mu.RUnlock()
		return entry.cfg, nil
	}
	s.mu.RUnlock()

	cfg := DefaultConfig(tenantPrefix, entity)

	row, err := s.load(ctx, tenantPrefix)
	if err == nil && row != nil {
		if row.GlobalPrefix != "" {
			cfg.Prefix = row.GlobalPrefix
		}
		if override, ok := row.Entities[entity]; ok {
			cfg = s.merge(cfg, override)
		}
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.EntityIdentifierConfig{}, apperr.Internal("failed to load identifier config", err)
	}

	cfg.ResetFrequency = NormalizeResetFrequency(cfg.ResetFrequency)

	s.mu.Lock()
	s.cache[key] = cachedConfig{cfg: cfg, expires: s.now().Add(configCacheTTL)}
	s.mu.Unlock()

	return cfg, nil
}

// merge overlays non-zero override fields on top of the default config.
func (s *ConfigStore) merge(base, override model.EntityIdentifierConfig) model.EntityIdentifierConfig {
	if override.Prefix != "" {
		base.Prefix = override.Prefix
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.Separator != "" {
		base.Separator = override.Separator
	}
	if override.DateFormat != "" {
		base.DateFormat = override.DateFormat
	}
	if override.CounterLength > 0 {
		base.CounterLength = override.CounterLength
	}
	if override.ResetFrequency != "" {
		base.ResetFrequency = override.ResetFrequency
	}
	return base
}

func (s *ConfigStore) load(ctx context.Context, tenantPrefix string) (*model.TenantIdentifierConfig, error) {
	handle, err := s.router.Handle(tenantPrefix, EntityIdentifierConfig)
	if err != nil {
		return nil, err
	}

	var row model.TenantIdentifierConfig
	if err := handle.DB().WithContext(ctx).Where("tenant_prefix = ?", tenantPrefix).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetTenantConfig returns the tenant's full stored configuration, creating a
// default row in memory (not persisted) when none exists yet.
func (s *ConfigStore) GetTenantConfig(ctx context.Context, tenantPrefix string) (*model.TenantIdentifierConfig, error) {
	row, err := s.load(ctx, tenantPrefix)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.TenantIdentifierConfig{
				TenantPrefix: tenantPrefix,
				GlobalPrefix: GlobalPrefixFrom(tenantPrefix),
				Entities:     model.EntityConfigMap{},
			}, nil
		}
		return nil, apperr.Internal("failed to load identifier config", err)
	}
	return row, nil
}

// Upsert stores one entity's identifier config override for a tenant,
// appending a history entry and invalidating the tenant's cached configs.
func (s *ConfigStore) Upsert(ctx context.Context, tenantPrefix, entity string, cfg model.EntityIdentifierConfig, actor, description string) error {
	if err := validateEntityConfig(entity, cfg); err != nil {
		return err
	}

	return s.mutate(ctx, tenantPrefix, actor, description, func(row *model.TenantIdentifierConfig) {
		row.Entities[entity] = cfg
	})
}

// ApplyTemplate bulk-replaces the tenant's entity configs with a built-in
// template.
func (s *ConfigStore) ApplyTemplate(ctx context.Context, tenantPrefix, name, actor string) error {
	tpl, ok := templates[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return apperr.Validation(fmt.Sprintf("unknown configuration template %q", name))
	}

	return s.mutate(ctx, tenantPrefix, actor, "applied template "+name, func(row *model.TenantIdentifierConfig) {
		for entity, cfg := range tpl {
			cfg.Prefix = row.GlobalPrefix
			row.Entities[entity] = cfg
		}
	})
}

func (s *ConfigStore) mutate(ctx context.Context, tenantPrefix, actor, description string, apply func(*model.TenantIdentifierConfig)) error {
	handle, err := s.router.Handle(tenantPrefix, EntityIdentifierConfig)
	if err != nil {
		return err
	}

	row, err := s.load(ctx, tenantPrefix)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Internal("failed to load identifier config", err)
		}
		row = &model.TenantIdentifierConfig{
			TenantPrefix: tenantPrefix,
			GlobalPrefix: GlobalPrefixFrom(tenantPrefix),
			Entities:     model.EntityConfigMap{},
		}
	}
	if row.Entities == nil {
		row.Entities = model.EntityConfigMap{}
	}

	apply(row)

	row.Version++
	row.History = append(row.History, model.ConfigHistoryEntry{
		Version:     row.Version,
		Description: description,
		Actor:       actor,
		Timestamp:   s.now(),
	})

	if err := handle.DB().WithContext(ctx).Save(row).Error; err != nil {
		return apperr.Internal("failed to save identifier config", err)
	}

	s.InvalidateTenant(tenantPrefix)
	return nil
}

// InvalidateTenant drops every cached config for a tenant.
func (s *ConfigStore) InvalidateTenant(tenantPrefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if strings.HasPrefix(key, tenantPrefix+"|") {
			delete(s.cache, key)
		}
	}
}

// ValidateConfiguration checks a tenant configuration document: global
// prefix present, every entity format carries a counter placeholder, counter
// lengths within [1,10].
func ValidateConfiguration(cfg *model.TenantIdentifierConfig) error {
	fields := map[string]string{}
	if strings.TrimSpace(cfg.GlobalPrefix) == "" {
		fields["globalPrefix"] = "global prefix is required"
	}
	for entity, ec := range cfg.Entities {
		if err := validateEntityConfig(entity, ec); err != nil {
			fields[entity] = err.Message
		}
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("invalid identifier configuration", fields)
	}
	return nil
}

func validateEntityConfig(entity string, cfg model.EntityIdentifierConfig) *apperr.Error {
	if !strings.Contains(cfg.Format, PlaceholderCounter) && !strings.Contains(cfg.Format, PlaceholderTodaysEntry) {
		return apperr.Validation(fmt.Sprintf("format for %s must contain %s or %s", entity, PlaceholderCounter, PlaceholderTodaysEntry))
	}
	if cfg.CounterLength < 1 || cfg.CounterLength > 10 {
		return apperr.Validation(fmt.Sprintf("counter length for %s must be between 1 and 10", entity))
	}
	return nil
}

// TemplateNames lists the built-in template names.
func TemplateNames() []string {
	return []string{TemplateMedicalStandard, TemplateApolloStyle, TemplateSimpleNumeric}
}
