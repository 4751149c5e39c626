package branding

import (
	"strings"
	"testing"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetadata() model.JSONMap {
	return model.JSONMap{
		"colors": map[string]interface{}{
			"primary":    "#1976d2",
			"secondary":  "#424242",
			"background": "#fafafa",
			"text":       "#212121",
		},
	}
}

func TestValidateMetadata(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateMetadata(validMetadata()))

	// Short hex form is accepted.
	m := validMetadata()
	m["colors"].(map[string]interface{})["primary"] = "#abc"
	assert.NoError(t, ValidateMetadata(m))

	// Optional recognized colors are validated when present.
	m = validMetadata()
	m["colors"].(map[string]interface{})["accent"] = "#ff5722"
	assert.NoError(t, ValidateMetadata(m))
}

func TestValidateMetadata_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(model.JSONMap)
		badField string
	}{
		{"missing required", func(m model.JSONMap) {
			delete(m["colors"].(map[string]interface{}), "text")
		}, "text"},
		{"not a hex color", func(m model.JSONMap) {
			m["colors"].(map[string]interface{})["primary"] = "blue"
		}, "primary"},
		{"bad optional color", func(m model.JSONMap) {
			m["colors"].(map[string]interface{})["accent"] = "#12345"
		}, "accent"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := validMetadata()
			tt.mutate(m)
			err := ValidateMetadata(m)
			require.Error(t, err)
			assert.Contains(t, apperr.As(err).Fields, tt.badField)
		})
	}

	// An empty document is missing all four required colors.
	err := ValidateMetadata(model.JSONMap{})
	require.Error(t, err)
	assert.Len(t, apperr.As(err).Fields, 4)
}

func TestGenerateCSS(t *testing.T) {
	t.Parallel()

	b := &model.Branding{Metadata: model.JSONMap{
		"colors": map[string]interface{}{
			"primary":    "#1976d2",
			"background": "#fafafa",
		},
		"typography": map[string]interface{}{
			"fontFamily":   "Roboto, sans-serif",
			"baseFontSize": "16px",
		},
		"layout": map[string]interface{}{
			"borderRadius": "8px",
		},
	}}

	css := GenerateCSS(b)

	assert.True(t, strings.HasPrefix(css, ":root {\n"))
	assert.Contains(t, css, "  --color-primary: #1976d2;\n")
	assert.Contains(t, css, "  --color-background: #fafafa;\n")
	assert.Contains(t, css, "  --font-family: Roboto, sans-serif;\n")
	assert.Contains(t, css, "  --font-size-base: 16px;\n")
	assert.Contains(t, css, "  --border-radius: 8px;\n")

	// Absent keys are omitted, never emitted empty.
	assert.NotContains(t, css, "--color-secondary")
	assert.NotContains(t, css, "--font-heading")
	assert.NotContains(t, css, ": ;")

	// Unrecognized keys never leak into the sheet.
	b.Metadata["colors"].(map[string]interface{})["sidebar"] = "#000000"
	assert.NotContains(t, GenerateCSS(b), "sidebar")
}

func TestGenerateCSS_ColorOrder(t *testing.T) {
	t.Parallel()

	b := &model.Branding{Metadata: validMetadata()}
	css := GenerateCSS(b)

	// Colors come out in the declared order regardless of map iteration.
	primary := strings.Index(css, "--color-primary")
	secondary := strings.Index(css, "--color-secondary")
	background := strings.Index(css, "--color-background")
	text := strings.Index(css, "--color-text")
	assert.True(t, primary < secondary && secondary < background && background < text)
}

func TestGenerateCSS_CustomCSSAppended(t *testing.T) {
	t.Parallel()

	b := &model.Branding{Metadata: model.JSONMap{
		"colors":    map[string]interface{}{"primary": "#1976d2"},
		"customCSS": ".navbar { display: none; }",
	}}

	css := GenerateCSS(b)
	assert.True(t, strings.HasSuffix(css, ".navbar { display: none; }\n"))
	// The custom block sits outside :root.
	assert.Greater(t, strings.Index(css, ".navbar"), strings.Index(css, "}\n"))
}

func TestGenerateCSS_DefaultBranding(t *testing.T) {
	t.Parallel()

	b := DefaultBranding()
	require.NoError(t, ValidateMetadata(b.Metadata))

	css := GenerateCSS(b)
	assert.Contains(t, css, "--color-primary")
	assert.Contains(t, css, "--color-text")
}
