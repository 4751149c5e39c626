package tenant

import (
	"testing"

	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PS_ROOT_User", TableName("PS_ROOT", EntityUser))
	assert.Equal(t, "APOLLO_1A2B_IdentifierCounter", TableName("APOLLO_1A2B", EntityIdentifierCounter))
}

func TestIndexName(t *testing.T) {
	t.Parallel()

	// Index names embed the table so they stay unique schema-wide.
	a := indexName("PS_ROOT_IdentifierCounter", []string{"model_name", "reset_key"})
	b := indexName("APOLLO_1A2B_IdentifierCounter", []string{"model_name", "reset_key"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "ux_ps_root_identifiercounter_model_name_reset_key", a)
}

func TestRouter_UnknownEntity(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil, NewRegistry(), "PS_ROOT")

	for _, entity := range []string{EntityLab, EntityPatient, EntityTest, EntityTestOrder, EntityLabSubscription, "Bogus"} {
		_, err := router.Handle("PS_ROOT", entity)
		require.Error(t, err, entity)
		assert.Equal(t, apperr.KindNotFound, apperr.As(err).Kind, entity)
	}
}

func TestRouter_InvalidPrefix(t *testing.T) {
	t.Parallel()

	router := NewRouter(nil, NewRegistry(), "PS_ROOT")

	_, err := router.Handle("bad prefix", EntityUser)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.As(err).Kind)
}

func TestRouter_ResolveAlias(t *testing.T) {
	t.Parallel()

	// Aliases exist from construction, before any collection is touched.
	router := NewRouter(nil, NewRegistry(), "PS_ROOT")

	for _, entity := range []string{EntityPartner, EntityBranding, EntityTheme, EntityFont, EntityIdentifierConfig} {
		table, ok := router.ResolveAlias(entity)
		require.True(t, ok, entity)
		assert.Equal(t, TableName("PS_ROOT", entity), table)
	}

	// Tenant-scoped entities have no single physical table, so they carry
	// no alias.
	for _, entity := range []string{EntityUser, EntityPlan, EntityIdentifierCounter, "Bogus"} {
		_, ok := router.ResolveAlias(entity)
		assert.False(t, ok, entity)
	}
}

func TestRouter_GlobalEntitiesRouteToRoot(t *testing.T) {
	t.Parallel()

	// Global routing rewrites the prefix before any validation, so an
	// arbitrary caller prefix still lands on the root collection name.
	assert.Equal(t, "PS_ROOT_Partner", TableName("PS_ROOT", EntityPartner))

	reg := NewRegistry()
	assert.True(t, reg.schemas[EntityPartner].global)
	assert.True(t, reg.schemas[EntityBranding].global)
	assert.True(t, reg.schemas[EntityIdentifierConfig].global)
	assert.False(t, reg.schemas[EntityUser].global)
	assert.False(t, reg.schemas[EntityIdentifierCounter].global)
}
