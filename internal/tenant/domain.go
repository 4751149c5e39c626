package tenant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
)

var (
	subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	domainPattern    = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
)

// reservedSubdomains are labels partners may never claim. The default set is
// replaced from configuration at startup.
var reservedSubdomains = map[string]bool{
	"www": true, "app": true, "admin": true, "api": true,
	"ftp": true, "mail": true, "smtp": true, "pop": true, "imap": true,
}

// SetReservedSubdomains replaces the reserved label set. Called once during
// startup, before the server accepts traffic.
func SetReservedSubdomains(labels []string) {
	m := make(map[string]bool, len(labels))
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label != "" {
			m[label] = true
		}
	}
	reservedSubdomains = m
}

// ReservedSubdomain reports whether the label is reserved for the platform.
func ReservedSubdomain(label string) bool {
	return reservedSubdomains[strings.ToLower(label)]
}

// ValidateSubdomain checks a partner subdomain label: 1-63 chars, lowercase
// alphanumeric plus hyphen, no edge hyphens, not a reserved word.
func ValidateSubdomain(label string) error {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || len(label) > 63 {
		return apperr.Validation("subdomain must be 1-63 characters")
	}
	if !subdomainPattern.MatchString(label) {
		return apperr.Validation("subdomain may only contain lowercase letters, digits and inner hyphens")
	}
	if ReservedSubdomain(label) {
		return apperr.Validation(fmt.Sprintf("subdomain %q is reserved", label))
	}
	return nil
}

// ValidateCustomDomain checks a partner custom domain against the basic
// domain grammar and the platform's own hostnames.
func ValidateCustomDomain(domain, apexDomain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !domainPattern.MatchString(domain) {
		return apperr.Validation("custom domain is not a valid domain name")
	}
	forbidden := []string{apexDomain, "app." + apexDomain, "admin." + apexDomain}
	for _, f := range forbidden {
		if domain == f {
			return apperr.Validation(fmt.Sprintf("custom domain %q belongs to the platform", domain))
		}
	}
	return nil
}
