package branding

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
)

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// requiredColors must be present and valid in every branding document.
var requiredColors = []string{"primary", "secondary", "background", "text"}

// recognizedColors is the fixed set of color keys emitted into CSS, in
// output order.
var recognizedColors = []string{
	"primary", "secondary", "accent", "background", "surface", "text",
	"muted", "success", "warning", "error", "info",
}

// recognizedFonts maps typography keys to their CSS variable names.
var recognizedFonts = []struct{ key, variable string }{
	{"fontFamily", "--font-family"},
	{"headingFontFamily", "--font-heading"},
	{"baseFontSize", "--font-size-base"},
}

// recognizedLayout maps layout keys to their CSS variable names.
var recognizedLayout = []struct{ key, variable string }{
	{"borderRadius", "--border-radius"},
	{"spacingUnit", "--spacing-unit"},
	{"maxWidth", "--max-width"},
}

// ValidateMetadata checks the branding metadata's colors section: required
// keys present and hex-valid, optional recognized keys hex-valid when set.
func ValidateMetadata(metadata model.JSONMap) error {
	colors := section(metadata, "colors")
	fields := map[string]string{}

	for _, key := range requiredColors {
		value, ok := stringValue(colors, key)
		if !ok {
			fields[key] = "color is required"
			continue
		}
		if !hexColorPattern.MatchString(value) {
			fields[key] = "must be a hex color like #1976d2"
		}
	}
	for _, key := range recognizedColors {
		if _, required := fields[key]; required {
			continue
		}
		if value, ok := stringValue(colors, key); ok && !hexColorPattern.MatchString(value) {
			fields[key] = "must be a hex color like #1976d2"
		}
	}

	if len(fields) > 0 {
		return apperr.ValidationFields("invalid branding colors", fields)
	}
	return nil
}

// GenerateCSS renders the branding as a :root CSS variable sheet, appending
// any raw customCSS verbatim.
func GenerateCSS(b *model.Branding) string {
	prometheus.BrandingCSSCounter.Inc()

	colors := section(b.Metadata, "colors")
	typography := section(b.Metadata, "typography")
	layout := section(b.Metadata, "layout")

	var sb strings.Builder
	sb.WriteString(":root {\n")

	for _, key := range recognizedColors {
		if value, ok := stringValue(colors, key); ok {
			fmt.Fprintf(&sb, "  --color-%s: %s;\n", key, value)
		}
	}
	for _, f := range recognizedFonts {
		if value, ok := stringValue(typography, f.key); ok {
			fmt.Fprintf(&sb, "  %s: %s;\n", f.variable, value)
		}
	}
	for _, l := range recognizedLayout {
		if value, ok := stringValue(layout, l.key); ok {
			fmt.Fprintf(&sb, "  %s: %s;\n", l.variable, value)
		}
	}

	sb.WriteString("}\n")

	if custom, ok := stringValue(b.Metadata, "customCSS"); ok && custom != "" {
		sb.WriteString("\n")
		sb.WriteString(custom)
		sb.WriteString("\n")
	}

	return sb.String()
}

func section(metadata model.JSONMap, name string) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	if m, ok := metadata[name].(map[string]interface{}); ok {
		return m
	}
	return nil
}

func stringValue(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
