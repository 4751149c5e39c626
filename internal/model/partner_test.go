package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartner_GenerateTenantPrefix(t *testing.T) {
	t.Parallel()

	p := &Partner{CompanyName: "Apollo Diagnostics Pvt. Ltd."}
	require.NoError(t, p.GenerateTenantPrefix(""))

	assert.True(t, ValidTenantPrefix(p.TenantPrefix), p.TenantPrefix)
	assert.True(t, strings.HasPrefix(p.TenantPrefix, "APOLLODIAGNO_"), p.TenantPrefix)

	// Same company, different random code: prefixes must not collide.
	q := &Partner{CompanyName: "Apollo Diagnostics Pvt. Ltd."}
	require.NoError(t, q.GenerateTenantPrefix(""))
	assert.NotEqual(t, p.TenantPrefix, q.TenantPrefix)
}

func TestPartner_GenerateTenantPrefix_Custom(t *testing.T) {
	t.Parallel()

	p := &Partner{CompanyName: "Apollo"}
	require.NoError(t, p.GenerateTenantPrefix("  apollo_main "))
	assert.Equal(t, "APOLLO_MAIN", p.TenantPrefix)

	assert.Error(t, (&Partner{}).GenerateTenantPrefix("has-hyphen"))
	assert.Error(t, (&Partner{}).GenerateTenantPrefix("ab"))
	assert.Error(t, (&Partner{}).GenerateTenantPrefix(strings.Repeat("A", 26)))
}

func TestPartner_GenerateTenantPrefix_EmptyName(t *testing.T) {
	t.Parallel()

	p := &Partner{CompanyName: "!!!"}
	require.NoError(t, p.GenerateTenantPrefix(""))
	assert.True(t, strings.HasPrefix(p.TenantPrefix, "PARTNER_"))
}

func TestValidTenantPrefix(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidTenantPrefix("PS_ROOT"))
	assert.True(t, ValidTenantPrefix("APOLLO_1A2B"))
	assert.False(t, ValidTenantPrefix("ps_root"))
	assert.False(t, ValidTenantPrefix("AB"))
	assert.False(t, ValidTenantPrefix("HAS SPACE"))
	assert.False(t, ValidTenantPrefix(""))
}

func TestPartner_GenerateReferralCode(t *testing.T) {
	t.Parallel()

	p := &Partner{CompanyName: "City Diagnostics"}
	p.GenerateReferralCode()
	require.NotEmpty(t, p.ReferralCode)
	assert.True(t, strings.HasPrefix(p.ReferralCode, "CITYDIAG"), p.ReferralCode)
	assert.Len(t, p.ReferralCode, 14)

	// Idempotent: a second call keeps the existing code.
	existing := p.ReferralCode
	p.GenerateReferralCode()
	assert.Equal(t, existing, p.ReferralCode)
}

func TestPartner_Activate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &Partner{}
	p.Activate(now)

	assert.True(t, p.IsActive)
	require.NotNil(t, p.RegistrationDate)
	require.NotNil(t, p.ExpiryDate)
	assert.Equal(t, now, *p.RegistrationDate)
	assert.Equal(t, now.Add(RegistrationValidity), *p.ExpiryDate)

	// A second PAID transition must not move the window.
	later := now.Add(48 * time.Hour)
	p.Activate(later)
	assert.Equal(t, now, *p.RegistrationDate)
	assert.Equal(t, now.Add(RegistrationValidity), *p.ExpiryDate)
}

func TestPartner_Domain(t *testing.T) {
	t.Parallel()

	apex := "pathosaathi.in"
	sub := "apollo"
	custom := "Labs.Apollo.COM"

	p := &Partner{Subdomain: &sub}
	assert.Equal(t, "apollo.pathosaathi.in", p.Domain(apex))

	// Custom domain wins over subdomain.
	p.CustomDomain = &custom
	assert.Equal(t, "labs.apollo.com", p.Domain(apex))

	assert.Equal(t, "", (&Partner{}).Domain(apex))
}

func TestPartner_Validate(t *testing.T) {
	t.Parallel()

	p := &Partner{
		CompanyName:  "Apollo Diagnostics",
		OwnerName:    "A Sharma",
		Email:        "owner@apollo.example",
		Phone:        "9876543210",
		PartnerType:  PartnerTypeWhiteLabel,
		PaidStatus:   PaidStatusPending,
		TenantPrefix: "APOLLO_1A2B",
	}
	assert.NoError(t, p.Validate())

	p.PartnerType = "FRANCHISE"
	assert.Error(t, p.Validate())
}

func TestRegistrationFees(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float64(4999), RegistrationFees[PartnerTypeCommission])
	assert.Equal(t, float64(49999), RegistrationFees[PartnerTypeWhiteLabel])
}
