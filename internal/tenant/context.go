package tenant

import "github.com/paritbhardwaj019/pathosaathi/internal/model"

// Kind classifies a resolved request as platform or partner traffic.
type Kind string

const (
	KindRoot    Kind = "ROOT"
	KindPartner Kind = "PARTNER"
)

// Context is the request-scoped tenant classification produced by the
// Resolver. It is created once per request and never mutated afterwards.
type Context struct {
	Kind         Kind
	IsMainDomain bool
	Hostname     string
	Subdomain    string
	CustomDomain string
	TenantPrefix string
	Partner      *model.Partner
	Branding     *model.Branding
}

// IsPartner reports whether the request was classified as partner traffic.
func (c *Context) IsPartner() bool {
	return c.Kind == KindPartner
}

// Domain returns the hostname token audiences are checked against.
func (c *Context) Domain() string {
	return c.Hostname
}
