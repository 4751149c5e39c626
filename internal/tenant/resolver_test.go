package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		host   string
		origin string
		want   string
	}{
		{"plain host", "pathosaathi.in", "", "pathosaathi.in"},
		{"host with port", "apollo.pathosaathi.in:8080", "", "apollo.pathosaathi.in"},
		{"uppercase normalized", "Apollo.PathoSaathi.IN", "", "apollo.pathosaathi.in"},
		{"origin fallback", "", "https://apollo.pathosaathi.in", "apollo.pathosaathi.in"},
		{"origin with port", "", "http://localhost:3000", "localhost"},
		{"host wins over origin", "labs.example.com", "https://other.example.com", "labs.example.com"},
		{"nothing defaults to localhost", "", "", "localhost"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Hostname(tt.host, tt.origin))
		})
	}
}

func TestSubdomainLabel(t *testing.T) {
	t.Parallel()

	label, ok := subdomainLabel("apollo.pathosaathi.in")
	assert.True(t, ok)
	assert.Equal(t, "apollo", label)

	// Bare hostnames carry no partner label.
	_, ok = subdomainLabel("localhost")
	assert.False(t, ok)

	// Reserved labels never resolve to a partner.
	for _, host := range []string{"www.pathosaathi.in", "api.pathosaathi.in", "admin.pathosaathi.in"} {
		_, ok = subdomainLabel(host)
		assert.False(t, ok, host)
	}
}

func TestResolve_MainDomain(t *testing.T) {
	t.Parallel()

	// Main-domain classification never touches storage, so a router over a
	// nil database is safe here.
	router := NewRouter(nil, NewRegistry(), "PS_ROOT")
	resolver := NewResolver(router, ResolverConfig{
		ApexDomain:  "pathosaathi.in",
		MainDomains: []string{"pathosaathi.in", "www.pathosaathi.in", "app.pathosaathi.in", "localhost"},
	})

	for _, host := range []string{"pathosaathi.in", "App.Pathosaathi.IN", "localhost:8080"} {
		tc := resolver.Resolve(context.Background(), host, "")
		assert.Equal(t, KindRoot, tc.Kind, host)
		assert.True(t, tc.IsMainDomain, host)
		assert.Equal(t, "PS_ROOT", tc.TenantPrefix, host)
		assert.False(t, tc.IsPartner(), host)
	}
}
