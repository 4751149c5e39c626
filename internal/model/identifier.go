package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Reset frequencies for identifier counters.
const (
	ResetDaily   = "DAILY"
	ResetMonthly = "MONTHLY"
	ResetYearly  = "YEARLY"
	ResetNever   = "NEVER"
)

// IdentifierCounter is the per-tenant counter row behind sequential business
// identifiers. Rows live in the tenant's own counter collection and are only
// ever touched through an atomic upsert-increment, never read-modify-write.
// The composite unique index on (model_name, reset_key) is created per table
// by the model router, since index names must stay unique across tenants.
type IdentifierCounter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ModelName string    `json:"model_name" gorm:"type:varchar(60);not null"`
	ResetKey  string    `json:"reset_key" gorm:"type:varchar(20);not null"`
	Counter   int64     `json:"counter" gorm:"not null;default:0"`
	LastUsed  time.Time `json:"last_used"`
}

// EntityIdentifierConfig describes how one entity type's identifiers are
// formatted for a tenant.
type EntityIdentifierConfig struct {
	Prefix         string `json:"prefix"`
	Format         string `json:"format"`
	Separator      string `json:"separator"`
	DateFormat     string `json:"dateFormat"`
	CounterLength  int    `json:"counterLength"`
	ResetFrequency string `json:"resetFrequency"`
}

// EntityConfigMap maps entity type to its identifier config, persisted as
// jsonb.
type EntityConfigMap map[string]EntityIdentifierConfig

// Value implements driver.Valuer.
func (m EntityConfigMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *EntityConfigMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	data, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, m)
}

// ConfigHistoryEntry records one mutation of a tenant's identifier
// configuration.
type ConfigHistoryEntry struct {
	Version     int       `json:"version"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConfigHistory is the append-only change log, persisted as jsonb.
type ConfigHistory []ConfigHistoryEntry

// Value implements driver.Valuer.
func (h ConfigHistory) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan implements sql.Scanner.
func (h *ConfigHistory) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}
	data, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, h)
}

// TenantIdentifierConfig holds one tenant's identifier-formatting overrides.
// Global (root-routed) entity keyed by tenant prefix.
type TenantIdentifierConfig struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	TenantPrefix string          `json:"tenant_prefix" gorm:"type:varchar(25);uniqueIndex;not null"`
	GlobalPrefix string          `json:"global_prefix" gorm:"type:varchar(25);not null"`
	Entities     EntityConfigMap `json:"entities" gorm:"type:jsonb"`
	History      ConfigHistory   `json:"history" gorm:"type:jsonb"`
	Version      int             `json:"version" gorm:"default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb source type: %T", value)
	}
}
