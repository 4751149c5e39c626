package tenant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubdomain(t *testing.T) {
	t.Parallel()

	valid := []string{"apollo", "lab-2", "x", "city-diagnostics", "  Apollo  "}
	for _, s := range valid {
		assert.NoError(t, ValidateSubdomain(s), s)
	}

	invalid := []string{
		"",
		"-apollo",
		"apollo-",
		"apo llo",
		"apollo_labs",
		strings.Repeat("a", 64),
		"www",
		"API",
		"mail",
	}
	for _, s := range invalid {
		assert.Error(t, ValidateSubdomain(s), s)
	}
}

func TestSetReservedSubdomains(t *testing.T) {
	// Mutates package state, so no t.Parallel.
	old := reservedSubdomains
	defer func() { reservedSubdomains = old }()

	SetReservedSubdomains([]string{"www", "  Portal ", "API", ""})

	assert.True(t, ReservedSubdomain("www"))
	assert.True(t, ReservedSubdomain("portal"))
	assert.True(t, ReservedSubdomain("API"))

	// The configured set replaces the defaults outright.
	assert.False(t, ReservedSubdomain("ftp"))
	assert.Error(t, ValidateSubdomain("portal"))
	assert.NoError(t, ValidateSubdomain("mail"))
}

func TestValidateCustomDomain(t *testing.T) {
	t.Parallel()

	apex := "pathosaathi.in"

	assert.NoError(t, ValidateCustomDomain("apollolabs.com", apex))
	assert.NoError(t, ValidateCustomDomain("diagnostics.apollo.co.in", apex))
	assert.NoError(t, ValidateCustomDomain("Labs.Example.COM", apex))

	invalid := []string{
		"",
		"not a domain",
		"single-label",
		"pathosaathi.in",
		"app.pathosaathi.in",
		"admin.pathosaathi.in",
	}
	for _, d := range invalid {
		assert.Error(t, ValidateCustomDomain(d, apex), d)
	}
}
