package auth

import (
	"testing"
	"time"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/pkg/jwtutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return &Service{
		jwt: jwtutil.New(&jwtutil.Config{
			SigningKey: "test-key",
			Issuer:     "pathosaathi.in",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		}),
		platformDomain: "pathosaathi.in",
		now:            time.Now,
	}
}

func TestCheckDomainPolicy_RootUser(t *testing.T) {
	t.Parallel()

	s := testService()

	main := &tenant.Context{Kind: tenant.KindRoot, IsMainDomain: true, Hostname: "pathosaathi.in"}
	assert.NoError(t, s.checkDomainPolicy(main, true, ""))

	// Root users may not authenticate from a partner hostname.
	partner := &tenant.Context{Kind: tenant.KindPartner, Hostname: "apollo.pathosaathi.in"}
	err := s.checkDomainPolicy(partner, true, "apollo.pathosaathi.in")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.As(err).Kind)
}

func TestCheckDomainPolicy_PartnerUser(t *testing.T) {
	t.Parallel()

	s := testService()

	tc := &tenant.Context{Kind: tenant.KindPartner, Hostname: "apollo.pathosaathi.in"}
	assert.NoError(t, s.checkDomainPolicy(tc, false, "apollo.pathosaathi.in"))
	assert.NoError(t, s.checkDomainPolicy(tc, false, "Apollo.Pathosaathi.IN"))

	// Wrong partner domain is rejected.
	assert.Error(t, s.checkDomainPolicy(tc, false, "other.pathosaathi.in"))

	// Partner accounts without a configured domain fall back to the main
	// domain.
	main := &tenant.Context{Kind: tenant.KindRoot, IsMainDomain: true, Hostname: "pathosaathi.in"}
	assert.NoError(t, s.checkDomainPolicy(main, false, ""))
	assert.Error(t, s.checkDomainPolicy(tc, false, ""))
}

func TestIssue_Audience(t *testing.T) {
	t.Parallel()

	s := testService()
	user := &model.User{ID: 1, Role: model.RolePartner}

	// Partner tokens are bound to the partner domain.
	pair, err := s.issue(user, nil, false, "apollo.pathosaathi.in", "APOLLO_1A2B", "sess-1")
	require.NoError(t, err)
	claims, err := s.jwt.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"apollo.pathosaathi.in"}, []string(claims.Audience))
	assert.False(t, claims.IsRootUser)
	assert.Equal(t, "APOLLO_1A2B", claims.TenantPrefix)

	// Root tokens are bound to the platform apex even when a partner domain
	// exists.
	pair, err = s.issue(user, nil, true, "apollo.pathosaathi.in", "PS_ROOT", "sess-2")
	require.NoError(t, err)
	claims, err = s.jwt.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"pathosaathi.in"}, []string(claims.Audience))
	assert.True(t, claims.IsRootUser)
}

func TestVerifyAccess_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	s := testService()
	pair, err := s.issue(&model.User{ID: 1, Role: model.RoleSuperadmin}, nil, true, "", "PS_ROOT", "sess-1")
	require.NoError(t, err)

	tc := &tenant.Context{Kind: tenant.KindRoot, IsMainDomain: true, Hostname: "pathosaathi.in"}

	_, err = s.VerifyAccess(tc, pair.AccessToken)
	assert.NoError(t, err)

	// A refresh token must never pass as an access token.
	_, err = s.VerifyAccess(tc, pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.As(err).Kind)
}
