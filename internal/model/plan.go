package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PlanType is the pricing-catalog base entry a Plan sells against.
type PlanType struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Identifier  string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	BaseCost    float64        `json:"base_cost" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// Plan is a sellable plan. SellingPrice must never drop below the plan
// type's base cost; Margin is recomputed on every save.
type Plan struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Identifier   string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null"`
	PlanTypeID   uint           `json:"plan_type_id" gorm:"index;not null"`
	SellingPrice float64        `json:"selling_price" gorm:"not null"`
	Margin       float64        `json:"margin" gorm:"not null"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// Reprice validates the selling price against the base cost and recomputes
// the margin.
func (p *Plan) Reprice(baseCost float64) error {
	if p.SellingPrice < baseCost {
		return fmt.Errorf("selling price %.2f below base cost %.2f", p.SellingPrice, baseCost)
	}
	p.Margin = p.SellingPrice - baseCost
	return nil
}
