package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_Reprice(t *testing.T) {
	t.Parallel()

	p := &Plan{SellingPrice: 1500}
	require.NoError(t, p.Reprice(1000))
	assert.Equal(t, float64(500), p.Margin)

	// Selling exactly at cost is allowed, margin zero.
	p.SellingPrice = 1000
	require.NoError(t, p.Reprice(1000))
	assert.Equal(t, float64(0), p.Margin)
}

func TestPlan_Reprice_BelowCost(t *testing.T) {
	t.Parallel()

	p := &Plan{SellingPrice: 999, Margin: 123}
	err := p.Reprice(1000)
	require.Error(t, err)
	// A failed reprice leaves the margin untouched.
	assert.Equal(t, float64(123), p.Margin)
}
