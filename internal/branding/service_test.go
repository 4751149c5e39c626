package branding

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/paritbhardwaj019/pathosaathi/internal/model"
	"github.com/paritbhardwaj019/pathosaathi/internal/tenant"
	"github.com/paritbhardwaj019/pathosaathi/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeCollections routes every entity to a root-prefixed table over one
// mocked connection, sidestepping table creation.
type fakeCollections struct {
	gdb *gorm.DB
}

func (f *fakeCollections) Handle(prefix, entity string) (*tenant.Handle, error) {
	return &tenant.Handle{Entity: entity, Table: tenant.TableName("PS_ROOT", entity), Conn: f.gdb}, nil
}

func (f *fakeCollections) RootPrefix() string { return "PS_ROOT" }

func mockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewService(&fakeCollections{gdb: gdb}), mock
}

func TestService_ListThemes(t *testing.T) {
	svc, mock := mockService(t)

	rows := sqlmock.NewRows([]string{"id", "name", "primary_color"}).
		AddRow(1, "Midnight", "#1a237e").
		AddRow(2, "Sunrise", "#ff7043")
	mock.ExpectQuery(`SELECT \* FROM "PS_ROOT_Theme"`).WillReturnRows(rows)

	themes, err := svc.ListThemes(context.Background())
	require.NoError(t, err)
	require.Len(t, themes, 2)
	assert.Equal(t, "Midnight", themes[0].Name)
	assert.Equal(t, "Sunrise", themes[1].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_LoadFailureDoesNotCreate(t *testing.T) {
	svc, mock := mockService(t)

	bid := uint(11)
	partner := &model.Partner{ID: 7, CompanyName: "Apollo Diagnostics", BrandingID: &bid}

	// A transient read failure must surface as-is, never be mistaken for a
	// missing document and answered with a duplicate insert.
	mock.ExpectQuery(`SELECT \* FROM "PS_ROOT_Branding"`).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.Update(context.Background(), partner, validMetadata())
	require.Error(t, err)
	ae := apperr.As(err)
	assert.Equal(t, apperr.KindInternal, ae.Kind)
	assert.Equal(t, "failed to load branding", ae.Message)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_DanglingReferenceCreates(t *testing.T) {
	svc, mock := mockService(t)

	bid := uint(11)
	partner := &model.Partner{ID: 7, CompanyName: "Apollo Diagnostics", BrandingID: &bid}

	// The referenced document is gone, so a fresh one is created and
	// attached to the partner.
	mock.ExpectQuery(`SELECT \* FROM "PS_ROOT_Branding"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "PS_ROOT_Branding"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(`UPDATE "PS_ROOT_Partner"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	b, err := svc.Update(context.Background(), partner, validMetadata())
	require.NoError(t, err)
	assert.Equal(t, uint(3), b.ID)
	assert.Equal(t, "Apollo Diagnostics Branding", b.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}
