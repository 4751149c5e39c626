package tenant

import (
	"testing"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfiguration(t *testing.T) {
	t.Parallel()

	cfg := &model.TenantIdentifierConfig{
		GlobalPrefix: "PS",
		Entities: model.EntityConfigMap{
			EntityUser: {Format: "USR_" + PlaceholderCounter, Separator: "_", CounterLength: 4},
		},
	}
	assert.NoError(t, ValidateConfiguration(cfg))
}

func TestValidateConfiguration_Errors(t *testing.T) {
	t.Parallel()

	cfg := &model.TenantIdentifierConfig{
		Entities: model.EntityConfigMap{
			EntityUser:    {Format: "no-counter-here", CounterLength: 4},
			EntityPatient: {Format: PlaceholderCounter, CounterLength: 11},
		},
	}

	err := ValidateConfiguration(cfg)
	require.Error(t, err)

	ae := apperr.As(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "globalPrefix")
	assert.Contains(t, ae.Fields, EntityUser)
	assert.Contains(t, ae.Fields, EntityPatient)
}

func TestTemplates_AllValid(t *testing.T) {
	t.Parallel()

	// Every shipped template must pass its own validation once the tenant
	// prefix fills in.
	for _, name := range TemplateNames() {
		tpl, ok := templates[name]
		require.True(t, ok, name)
		for entity, ec := range tpl {
			ec.Prefix = "PS"
			assert.Nil(t, validateEntityConfig(entity, ec), "%s/%s", name, entity)
		}
	}
}

func TestConfigStore_Merge(t *testing.T) {
	t.Parallel()

	s := NewConfigStore(nil)
	base := DefaultConfig("PS_ROOT", EntityUser)

	got := s.merge(base, model.EntityIdentifierConfig{
		Format:         "U-" + PlaceholderCounter,
		CounterLength:  6,
		ResetFrequency: model.ResetNever,
	})

	// Overridden fields win, untouched fields keep the default.
	assert.Equal(t, "U-"+PlaceholderCounter, got.Format)
	assert.Equal(t, 6, got.CounterLength)
	assert.Equal(t, model.ResetNever, got.ResetFrequency)
	assert.Equal(t, base.Prefix, got.Prefix)
	assert.Equal(t, base.Separator, got.Separator)
	assert.Equal(t, base.DateFormat, got.DateFormat)
}

func TestConfigStore_InvalidateTenant(t *testing.T) {
	t.Parallel()

	s := NewConfigStore(nil)
	s.cache[cacheKey("APOLLO_1A2B", EntityUser)] = cachedConfig{}
	s.cache[cacheKey("APOLLO_1A2B", EntityPatient)] = cachedConfig{}
	s.cache[cacheKey("OTHER_9Z8Y", EntityUser)] = cachedConfig{}

	s.InvalidateTenant("APOLLO_1A2B")

	assert.Len(t, s.cache, 1)
	assert.Contains(t, s.cache, cacheKey("OTHER_9Z8Y", EntityUser))
}
