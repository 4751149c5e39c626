package tenant

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/logger"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResolverConfig holds the hostnames the platform itself answers on.
type ResolverConfig struct {
	ApexDomain  string
	MainDomains []string
}

// Resolver classifies inbound hostnames into root or partner traffic.
// Resolution is never a hard dependency: any failure degrades to a root
// classification so platform traffic keeps flowing.
type Resolver struct {
	router *Router
	cfg    ResolverConfig
}

// NewResolver creates a tenant resolver.
func NewResolver(router *Router, cfg ResolverConfig) *Resolver {
	return &Resolver{router: router, cfg: cfg}
}

// Hostname extracts the request hostname from the Host header, falling back
// to the Origin header, then to localhost. Ports are stripped and the result
// is lowercased.
func Hostname(host, origin string) string {
	h := strings.TrimSpace(host)
	if h == "" && origin != "" {
		if u, err := url.Parse(origin); err == nil {
			h = u.Host
		}
	}
	if h == "" {
		h = "localhost"
	}
	if stripped, _, err := net.SplitHostPort(h); err == nil {
		h = stripped
	}
	return strings.ToLower(h)
}

// Resolve classifies the hostname and attaches partner and branding context
// for partner traffic.
func (r *Resolver) Resolve(ctx context.Context, host, origin string) *Context {
	hostname := Hostname(host, origin)

	tc := &Context{
		Kind:         KindRoot,
		Hostname:     hostname,
		TenantPrefix: r.router.RootPrefix(),
	}

	for _, d := range r.cfg.MainDomains {
		if hostname == strings.ToLower(d) {
			tc.IsMainDomain = true
			prometheus.RecordTenantResolution("root_main")
			return tc
		}
	}

	partner, err := r.lookupPartner(ctx, hostname)
	if err != nil {
		// Degrade to root rather than failing the request.
		logger.FromContext(ctx).Warn("tenant resolution failed, serving as root",
			zap.String("hostname", hostname), zap.Error(err))
		prometheus.RecordTenantResolution("root_fallback")
		return tc
	}
	if partner == nil {
		prometheus.RecordTenantResolution("root_fallback")
		return tc
	}

	tc.Kind = KindPartner
	tc.Partner = partner
	tc.TenantPrefix = partner.TenantPrefix
	if partner.Subdomain != nil {
		tc.Subdomain = *partner.Subdomain
	}
	if partner.CustomDomain != nil {
		tc.CustomDomain = *partner.CustomDomain
	}
	if partner.BrandingID != nil {
		if branding, err := r.loadBranding(ctx, *partner.BrandingID); err == nil {
			tc.Branding = branding
		}
	}

	prometheus.RecordTenantResolution("partner")
	return tc
}

// lookupPartner tries, in order: exact custom-domain match, then the
// leftmost hostname label against partner subdomains. First hit wins.
func (r *Resolver) lookupPartner(ctx context.Context, hostname string) (*model.Partner, error) {
	handle, err := r.router.Handle(r.router.RootPrefix(), EntityPartner)
	if err != nil {
		return nil, err
	}

	var partner model.Partner
	err = handle.DB().WithContext(ctx).Where("custom_domain = ?", hostname).First(&partner).Error
	if err == nil {
		return &partner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	label, ok := subdomainLabel(hostname)
	if !ok {
		return nil, nil
	}

	err = handle.DB().WithContext(ctx).Where("subdomain = ?", label).First(&partner).Error
	if err == nil {
		return &partner, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return nil, nil
}

func (r *Resolver) loadBranding(ctx context.Context, id uint) (*model.Branding, error) {
	handle, err := r.router.Handle(r.router.RootPrefix(), EntityBranding)
	if err != nil {
		return nil, err
	}
	var branding model.Branding
	if err := handle.DB().WithContext(ctx).First(&branding, id).Error; err != nil {
		return nil, err
	}
	return &branding, nil
}

// subdomainLabel extracts the leftmost hostname label when it can plausibly
// identify a partner: the hostname must have at least one dot and the label
// must not be reserved.
func subdomainLabel(hostname string) (string, bool) {
	i := strings.Index(hostname, ".")
	if i <= 0 {
		return "", false
	}
	label := hostname[:i]
	if ReservedSubdomain(label) {
		return "", false
	}
	return label, true
}
