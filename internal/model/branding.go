package model

import (
	"time"

	"gorm.io/gorm"
)

// Branding holds a tenant's visual configuration. Global (root-routed)
// catalog entity; partners reference rows by id and deleting a partner never
// cascades here.
type Branding struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Identifier string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	Name       string         `json:"name" gorm:"type:varchar(150);not null"`
	IsDefault  bool           `json:"is_default" gorm:"default:false"`
	// Metadata carries colors, typography, layout and customCSS sections.
	Metadata  JSONMap        `json:"metadata" gorm:"type:jsonb"`
	ThemeID   *uint          `json:"theme_id,omitempty" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Theme holds a named color scheme with font references.
type Theme struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Identifier      string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	Name            string         `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	PrimaryColor    string         `json:"primary_color" gorm:"type:varchar(7)"`
	SecondaryColor  string         `json:"secondary_color" gorm:"type:varchar(7)"`
	BackgroundColor string         `json:"background_color" gorm:"type:varchar(7)"`
	TextColor       string         `json:"text_color" gorm:"type:varchar(7)"`
	HeadingFontID   *uint          `json:"heading_font_id,omitempty" gorm:"index"`
	BodyFontID      *uint          `json:"body_font_id,omitempty" gorm:"index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// Font holds a display name and the external font resource it loads from.
type Font struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Identifier string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	Name       string         `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	URL        string         `json:"url" gorm:"type:varchar(500);not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
