package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Partner types
const (
	PartnerTypeCommission = "COMMISSION"
	PartnerTypeWhiteLabel = "WHITE_LABEL"
)

// Payment statuses
const (
	PaidStatusPending  = "PENDING"
	PaidStatusPaid     = "PAID"
	PaidStatusFailed   = "FAILED"
	PaidStatusRefunded = "REFUNDED"
)

// RegistrationFees maps partner type to the registration fee it must pay.
var RegistrationFees = map[string]float64{
	PartnerTypeCommission: 4999,
	PartnerTypeWhiteLabel: 49999,
}

// RegistrationValidity is the subscription window opened when a partner's
// payment first succeeds.
const RegistrationValidity = 365 * 24 * time.Hour

var tenantPrefixPattern = regexp.MustCompile(`^[A-Z0-9_]{3,25}$`)

// Partner represents a tenant owner onboarded onto the platform. Partners are
// a global (root-routed) entity: one catalog row regardless of which tenant's
// hostname the request came in on.
type Partner struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Identifier       string         `json:"identifier" gorm:"type:varchar(64);uniqueIndex"`
	CompanyName      string         `json:"company_name" gorm:"type:varchar(150);not null" validate:"required,min=2,max=150"`
	OwnerName        string         `json:"owner_name" gorm:"type:varchar(150);not null" validate:"required,min=2,max=150"`
	Email            string         `json:"email" gorm:"type:varchar(200);uniqueIndex;not null" validate:"required,email"`
	Phone            string         `json:"phone" gorm:"type:varchar(20);uniqueIndex;not null" validate:"required,min=8,max=20"`
	Subdomain        *string        `json:"subdomain,omitempty" gorm:"type:varchar(63);uniqueIndex"`
	CustomDomain     *string        `json:"custom_domain,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	PartnerType      string         `json:"partner_type" gorm:"type:varchar(20);not null" validate:"required,oneof=COMMISSION WHITE_LABEL"`
	RegistrationFee  float64        `json:"registration_fee" gorm:"not null"`
	PaidStatus       string         `json:"paid_status" gorm:"type:varchar(20);default:'PENDING'" validate:"oneof=PENDING PAID FAILED REFUNDED"`
	IsActive         bool           `json:"is_active" gorm:"default:false"`
	IsRootTenant     bool           `json:"is_root_tenant" gorm:"default:false"`
	ReferralCode     string         `json:"referral_code" gorm:"type:varchar(40);uniqueIndex"`
	EarningsBalance  float64        `json:"earnings_balance" gorm:"default:0"`
	TotalEarnings    float64        `json:"total_earnings" gorm:"default:0"`
	TotalWithdrawn   float64        `json:"total_withdrawn" gorm:"default:0"`
	TenantPrefix     string         `json:"tenant_prefix" gorm:"type:varchar(25);uniqueIndex;not null"`
	BrandingID       *uint          `json:"branding_id,omitempty" gorm:"index"`
	RegistrationDate *time.Time     `json:"registration_date,omitempty"`
	ExpiryDate       *time.Time     `json:"expiry_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// Validate runs struct-level validation.
func (p *Partner) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// Domain returns the hostname the partner is reachable on: the custom domain
// when configured, else the subdomain under the given apex, else empty.
func (p *Partner) Domain(apexDomain string) string {
	if p.CustomDomain != nil && *p.CustomDomain != "" {
		return strings.ToLower(*p.CustomDomain)
	}
	if p.Subdomain != nil && *p.Subdomain != "" {
		return strings.ToLower(*p.Subdomain) + "." + apexDomain
	}
	return ""
}

// Activate opens the registration window. Called on the first transition of
// PaidStatus to PAID; later transitions must not move the dates.
func (p *Partner) Activate(now time.Time) {
	if p.RegistrationDate != nil {
		return
	}
	p.IsActive = true
	p.RegistrationDate = &now
	expiry := now.Add(RegistrationValidity)
	p.ExpiryDate = &expiry
}

// GenerateReferralCode derives a referral code from the company name plus a
// random suffix. No-op when a code is already set.
func (p *Partner) GenerateReferralCode() {
	if p.ReferralCode != "" {
		return
	}
	name := cleanCompanyName(p.CompanyName)
	if len(name) > 8 {
		name = name[:8]
	}
	if name == "" {
		name = "PARTNER"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	p.ReferralCode = name + suffix
}

// GenerateTenantPrefix derives the deterministic collection namespace from
// the company name and partner code, unless an operator supplied a custom
// prefix. Returns an error when the result violates the prefix pattern.
func (p *Partner) GenerateTenantPrefix(customPrefix string) error {
	prefix := strings.ToUpper(strings.TrimSpace(customPrefix))
	if prefix == "" {
		name := cleanCompanyName(p.CompanyName)
		if len(name) > 12 {
			name = name[:12]
		}
		if name == "" {
			name = "PARTNER"
		}
		code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
		prefix = name + "_" + code
	}

	if !tenantPrefixPattern.MatchString(prefix) {
		return fmt.Errorf("tenant prefix %q must match %s", prefix, tenantPrefixPattern.String())
	}

	p.TenantPrefix = prefix
	return nil
}

// ValidTenantPrefix reports whether s is an acceptable tenant prefix.
func ValidTenantPrefix(s string) bool {
	return tenantPrefixPattern.MatchString(s)
}

// cleanCompanyName uppercases and strips everything outside [A-Z0-9].
func cleanCompanyName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
