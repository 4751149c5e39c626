package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT(accessTTL time.Duration) *JWT {
	return New(&Config{
		SigningKey: "test-signing-key",
		Issuer:     "pathosaathi.in",
		AccessTTL:  accessTTL,
		RefreshTTL: 24 * time.Hour,
	})
}

func testSubject() Subject {
	partnerID := uint(7)
	return Subject{
		UserID:        42,
		Role:          "PARTNER",
		PartnerID:     &partnerID,
		PartnerDomain: "apollo.pathosaathi.in",
		TenantPrefix:  "APOLLO_1A2B",
		SessionID:     "sess-1",
		Audience:      "apollo.pathosaathi.in",
	}
}

func TestGeneratePair_RoundTrip(t *testing.T) {
	t.Parallel()

	j := testJWT(time.Hour)
	pair, err := j.GeneratePair(testSubject())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	access, err := j.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "PARTNER", access.Role)
	assert.Equal(t, "APOLLO_1A2B", access.TenantPrefix)
	assert.Equal(t, "sess-1", access.SessionID)
	assert.Equal(t, TokenTypeAccess, access.TokenType)
	require.NotNil(t, access.PartnerID)
	assert.Equal(t, uint(7), *access.PartnerID)

	refresh, err := j.Validate(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	// Both halves of the pair share the session id.
	assert.Equal(t, access.SessionID, refresh.SessionID)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	j := testJWT(-time.Minute)
	pair, err := j.GeneratePair(testSubject())
	require.NoError(t, err)

	_, err = j.Validate(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_WrongKey(t *testing.T) {
	t.Parallel()

	signer := testJWT(time.Hour)
	pair, err := signer.GeneratePair(testSubject())
	require.NoError(t, err)

	verifier := New(&Config{
		SigningKey: "a-different-key",
		Issuer:     "pathosaathi.in",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	_, err = verifier.Validate(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongIssuer(t *testing.T) {
	t.Parallel()

	signer := New(&Config{
		SigningKey: "test-signing-key",
		Issuer:     "evil.example.com",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	pair, err := signer.GeneratePair(testSubject())
	require.NoError(t, err)

	_, err = testJWT(time.Hour).Validate(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	t.Parallel()

	_, err := testJWT(time.Hour).Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAudience(t *testing.T) {
	t.Parallel()

	j := testJWT(time.Hour)
	pair, err := j.GeneratePair(testSubject())
	require.NoError(t, err)
	claims, err := j.Validate(pair.AccessToken)
	require.NoError(t, err)

	// Bound domain matches, case-insensitively.
	assert.NoError(t, j.VerifyAudience(claims, "apollo.pathosaathi.in"))
	assert.NoError(t, j.VerifyAudience(claims, "Apollo.PathoSaathi.IN"))

	// The platform apex is always accepted.
	assert.NoError(t, j.VerifyAudience(claims, "pathosaathi.in"))

	// Any other domain is rejected.
	assert.ErrorIs(t, j.VerifyAudience(claims, "other.pathosaathi.in"), ErrAudienceMismatch)
	assert.ErrorIs(t, j.VerifyAudience(claims, "apollolabs.com"), ErrAudienceMismatch)
}

func TestVerifyAudience_RootUserBypassesBinding(t *testing.T) {
	t.Parallel()

	j := testJWT(time.Hour)
	sub := testSubject()
	sub.IsRootUser = true
	sub.Audience = "pathosaathi.in"

	pair, err := j.GeneratePair(sub)
	require.NoError(t, err)
	claims, err := j.Validate(pair.AccessToken)
	require.NoError(t, err)

	assert.NoError(t, j.VerifyAudience(claims, "apollo.pathosaathi.in"))
	assert.NoError(t, j.VerifyAudience(claims, "anything.example.com"))
}
