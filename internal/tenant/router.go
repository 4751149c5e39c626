package tenant

import (
	"fmt"
	"strings"
	"sync"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"gorm.io/gorm"
)

// Logical entity names routed by the model router.
const (
	EntityUser              = "User"
	EntityPartner           = "Partner"
	EntityLab               = "Lab"
	EntityPatient           = "Patient"
	EntityTest              = "Test"
	EntityTestOrder         = "TestOrder"
	EntityLabSubscription   = "LabSubscription"
	EntityPlan              = "Plan"
	EntityPlanType          = "PlanType"
	EntityTheme             = "Theme"
	EntityBranding          = "Branding"
	EntityFont              = "Font"
	EntityIdentifierCounter = "IdentifierCounter"
	EntityIdentifierConfig  = "TenantIdentifierConfig"
)

// schema describes how one logical entity maps onto storage.
type schema struct {
	// prototype is the model struct AutoMigrate runs against.
	prototype interface{}
	// global entities always route to the root tenant's collection.
	global bool
	// uniqueColumns lists composite unique indexes created per table,
	// for cases a struct tag cannot express without cross-tenant index
	// name collisions.
	uniqueColumns [][]string
}

// Registry maps logical entity names to schema descriptors. Entities the
// platform knows about but has no schema for yet (patient and test
// workflows) are deliberately absent and fail fast on routing.
type Registry struct {
	schemas map[string]schema
}

// NewRegistry builds the registry with every implemented entity.
func NewRegistry() *Registry {
	return &Registry{schemas: map[string]schema{
		EntityUser:              {prototype: &model.User{}},
		EntityPartner:           {prototype: &model.Partner{}, global: true},
		EntityPlan:              {prototype: &model.Plan{}},
		EntityPlanType:          {prototype: &model.PlanType{}},
		EntityTheme:             {prototype: &model.Theme{}, global: true},
		EntityBranding:          {prototype: &model.Branding{}, global: true},
		EntityFont:              {prototype: &model.Font{}, global: true},
		EntityIdentifierConfig:  {prototype: &model.TenantIdentifierConfig{}, global: true},
		EntityIdentifierCounter: {prototype: &model.IdentifierCounter{}, uniqueColumns: [][]string{{"model_name", "reset_key"}}},
	}}
}

// Handle is a storage handle bound to one tenant's collection for one
// entity.
type Handle struct {
	Entity string
	Table  string
	Conn   *gorm.DB
}

// DB returns a query builder scoped to the handle's table.
func (h *Handle) DB() *gorm.DB {
	return h.Conn.Table(h.Table)
}

// Router resolves (tenant prefix, entity) pairs to storage handles,
// creating the backing table on first use. Handles are cached process-wide;
// a duplicate creation race is a harmless no-op.
type Router struct {
	db         *gorm.DB
	registry   *Registry
	rootPrefix string

	mu      sync.Mutex
	handles map[string]*Handle
	// aliases maps a logical entity name to the physical table serving
	// cross-entity reference resolution for global entities.
	aliases map[string]string
}

// NewRouter creates a router over the given database. Global entities are
// registered under their bare logical name immediately: alias resolution is a
// fact of the registry, not of which tables have been touched yet.
func NewRouter(db *gorm.DB, registry *Registry, rootPrefix string) *Router {
	aliases := make(map[string]string)
	for entity, sch := range registry.schemas {
		if sch.global {
			aliases[entity] = TableName(rootPrefix, entity)
		}
	}
	return &Router{
		db:         db,
		registry:   registry,
		rootPrefix: rootPrefix,
		handles:    make(map[string]*Handle),
		aliases:    aliases,
	}
}

// TableName derives the physical collection name for a tenant and entity.
func TableName(prefix, entity string) string {
	return prefix + "_" + entity
}

// Handle returns (creating if needed) the storage handle for the given
// tenant prefix and entity. Global entities route to the root prefix
// regardless of the caller's tenant.
func (r *Router) Handle(prefix, entity string) (*Handle, error) {
	sch, ok := r.registry.schemas[entity]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("entity %s is not implemented", entity))
	}

	if sch.global {
		prefix = r.rootPrefix
	}
	if !model.ValidTenantPrefix(prefix) {
		return nil, apperr.Validation(fmt.Sprintf("invalid tenant prefix %q", prefix))
	}

	table := TableName(prefix, entity)

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[table]; ok {
		return h, nil
	}

	if err := r.db.Table(table).AutoMigrate(sch.prototype); err != nil {
		return nil, apperr.Internal("failed to create tenant collection", err)
	}
	for _, cols := range sch.uniqueColumns {
		stmt := fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS %q ON %q (%s)`,
			indexName(table, cols), table, quoteColumns(cols),
		)
		if err := r.db.Exec(stmt).Error; err != nil {
			return nil, apperr.Internal("failed to index tenant collection", err)
		}
	}

	h := &Handle{Entity: entity, Table: table, Conn: r.db}
	r.handles[table] = h

	return h, nil
}

// ResolveAlias returns the physical table registered under a bare logical
// entity name. Only global entities carry an alias: they are reachable by
// logical name from any tenant, so references to them resolve identically
// regardless of the caller's prefix.
func (r *Router) ResolveAlias(entity string) (string, bool) {
	table, ok := r.aliases[entity]
	return table, ok
}

// RootPrefix returns the platform tenant's prefix.
func (r *Router) RootPrefix() string {
	return r.rootPrefix
}

func indexName(table string, cols []string) string {
	return "ux_" + strings.ToLower(table) + "_" + strings.Join(cols, "_")
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}
