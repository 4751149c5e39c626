package tenant

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/paritbhardwaj019/pathosaathi/prometheus"
	"gorm.io/gorm"
)

// Placeholders recognized in identifier format templates.
const (
	PlaceholderDate        = "{DATE_FORMAT}"
	PlaceholderCounter     = "{COUNTER}"
	PlaceholderTodaysEntry = "{TODAYS_ENTRY}"
)

// entityCodes are the default identifier codes per entity type.
var entityCodes = map[string]string{
	EntityUser:            "USR",
	EntityPartner:         "PTR",
	EntityLab:             "LAB",
	EntityPatient:         "PAT",
	EntityTest:            "TST",
	EntityTestOrder:       "ORD",
	EntityLabSubscription: "SUB",
	EntityPlan:            "PLN",
	EntityPlanType:        "PLT",
	EntityTheme:           "THM",
	EntityBranding:        "BRD",
	EntityFont:            "FNT",
}

// GlobalPrefixFrom derives a tenant's default identifier prefix from its
// collection prefix: the segment before the first underscore (PS_ROOT -> PS,
// APOLLO_1A2B -> APOLLO).
func GlobalPrefixFrom(tenantPrefix string) string {
	if i := strings.Index(tenantPrefix, "_"); i > 0 {
		return tenantPrefix[:i]
	}
	return tenantPrefix
}

// DefaultConfig returns the built-in identifier config for an entity type.
// Unknown entity types fall back to the User defaults.
func DefaultConfig(tenantPrefix, entity string) model.EntityIdentifierConfig {
	code, ok := entityCodes[entity]
	if !ok {
		code = entityCodes[EntityUser]
	}
	return model.EntityIdentifierConfig{
		Prefix:         GlobalPrefixFrom(tenantPrefix),
		Format:         code + "_" + PlaceholderDate + "_" + PlaceholderCounter,
		Separator:      "_",
		DateFormat:     "YYMMDD",
		CounterLength:  4,
		ResetFrequency: model.ResetDaily,
	}
}

// NormalizeResetFrequency maps any custom/unparseable frequency onto a
// supported one, defaulting to daily.
func NormalizeResetFrequency(freq string) string {
	switch strings.ToUpper(strings.TrimSpace(freq)) {
	case model.ResetMonthly:
		return model.ResetMonthly
	case model.ResetYearly:
		return model.ResetYearly
	case model.ResetNever:
		return model.ResetNever
	default:
		return model.ResetDaily
	}
}

// ResetKey derives the counter-partition key for a reset frequency at the
// given time.
func ResetKey(freq string, t time.Time) string {
	switch NormalizeResetFrequency(freq) {
	case model.ResetMonthly:
		return t.Format("2006-01")
	case model.ResetYearly:
		return t.Format("2006")
	case model.ResetNever:
		return "GLOBAL"
	default:
		return t.Format("2006-01-02")
	}
}

// FormatDate renders t using the template tokens YYYY, YY, MM, DD.
func FormatDate(layout string, t time.Time) string {
	if layout == "" {
		layout = "YYMMDD"
	}
	r := strings.NewReplacer(
		"YYYY", t.Format("2006"),
		"YY", t.Format("06"),
		"MM", t.Format("01"),
		"DD", t.Format("02"),
	)
	return r.Replace(layout)
}

// FormatIdentifier renders a full identifier from a config, counter value
// and timestamp.
func FormatIdentifier(cfg model.EntityIdentifierConfig, counter int64, t time.Time) string {
	padded := fmt.Sprintf("%0*d", cfg.CounterLength, counter)
	body := strings.NewReplacer(
		PlaceholderDate, FormatDate(cfg.DateFormat, t),
		PlaceholderCounter, padded,
		PlaceholderTodaysEntry, padded,
	).Replace(cfg.Format)
	return cfg.Prefix + cfg.Separator + body
}

// ExtractCounter recovers the counter value from an identifier produced with
// the same config. Returns false when the identifier does not match.
func ExtractCounter(cfg model.EntityIdentifierConfig, identifier string, t time.Time) (int64, bool) {
	pattern := regexp.QuoteMeta(cfg.Prefix + cfg.Separator + cfg.Format)
	pattern = strings.ReplaceAll(pattern, regexp.QuoteMeta(PlaceholderDate), regexp.QuoteMeta(FormatDate(cfg.DateFormat, t)))
	counterGroup := `(\d+)`
	pattern = strings.ReplaceAll(pattern, regexp.QuoteMeta(PlaceholderCounter), counterGroup)
	pattern = strings.ReplaceAll(pattern, regexp.QuoteMeta(PlaceholderTodaysEntry), counterGroup)

	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return 0, false
	}
	m := re.FindStringSubmatch(identifier)
	if m == nil || len(m) < 2 {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Generator produces tenant-scoped sequential business identifiers.
type Generator struct {
	db     *gorm.DB
	router *Router
	store  *ConfigStore
	now    func() time.Time
}

// NewGenerator creates an identifier generator.
func NewGenerator(db *gorm.DB, router *Router, store *ConfigStore) *Generator {
	return &Generator{db: db, router: router, store: store, now: time.Now}
}

// Next returns the next identifier for a tenant and entity type. The counter
// increment is a single atomic upsert so concurrent callers can never
// observe the same value.
func (g *Generator) Next(ctx context.Context, tenantPrefix, entity string) (string, error) {
	cfg, err := g.store.Get(ctx, tenantPrefix, entity)
	if err != nil {
		return "", err
	}

	now := g.now()
	resetKey := ResetKey(cfg.ResetFrequency, now)

	handle, err := g.router.Handle(tenantPrefix, EntityIdentifierCounter)
	if err != nil {
		return "", err
	}

	var counter int64
	stmt := fmt.Sprintf(
		`INSERT INTO %q (model_name, reset_key, counter, last_used) VALUES (?, ?, 1, ?)
		 ON CONFLICT (model_name, reset_key)
		 DO UPDATE SET counter = %q.counter + 1, last_used = EXCLUDED.last_used
		 RETURNING counter`,
		handle.Table, handle.Table,
	)
	if err := g.db.WithContext(ctx).Raw(stmt, entity, resetKey, now).Scan(&counter).Error; err != nil {
		return "", apperr.Internal("failed to increment identifier counter", err)
	}

	prometheus.RecordIdentifier(entity)
	return FormatIdentifier(cfg, counter, now), nil
}
