package registries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/marketflow-backend/pkg/db"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

const session = "sess-registry"

func newRegistryService(t *testing.T) Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Registry{}))

	svc, err := NewService(NewRepository(db), pkgdb.Wrap(db))
	require.NoError(t, err)
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestCreateOpensActiveRegistry(t *testing.T) {
	svc := newRegistryService(t)
	registry, err := svc.Create(context.Background(), session, CreateInput{Name: " Ada & Charles ", EventDate: "2026-09-12"})
	require.NoError(t, err)

	assert.Equal(t, "Ada & Charles", registry.Name)
	assert.Equal(t, enums.RegistryTypeWedding, registry.Type)
	assert.Equal(t, enums.RegistryStatusActive, registry.Status)
	assert.Zero(t, registry.ItemCount)
	assert.True(t, registry.EventDate.Equal(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newRegistryService(t)
	ctx := context.Background()

	cases := []CreateInput{
		{Name: "   ", EventDate: "2026-09-12"},
		{Name: "Baby", Type: "graduation", EventDate: "2026-09-12"},
		{Name: "Baby", Type: enums.RegistryTypeBaby, EventDate: "09/12/2026"},
		{Name: "Baby", Type: enums.RegistryTypeBaby},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, session, input)
		requireCode(t, err, pkgerrors.CodeValidation)
	}

	_, err := svc.Create(ctx, "", CreateInput{Name: "x", EventDate: "2026-09-12"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestUpdateMergesFields(t *testing.T) {
	svc := newRegistryService(t)
	ctx := context.Background()
	registry, err := svc.Create(ctx, session, CreateInput{Name: "Holidays", Type: enums.RegistryTypeHoliday, EventDate: "2026-12-20"})
	require.NoError(t, err)

	closed := enums.RegistryStatusClosed
	date := "2026-12-24"
	updated, err := svc.Update(ctx, session, registry.ID, UpdateInput{Status: &closed, EventDate: &date})
	require.NoError(t, err)
	assert.Equal(t, "Holidays", updated.Name)
	assert.Equal(t, enums.RegistryStatusClosed, updated.Status)
	assert.True(t, updated.EventDate.Equal(time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)))

	bogus := enums.RegistryStatus("archived")
	_, err = svc.Update(ctx, session, registry.ID, UpdateInput{Status: &bogus})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(ctx, "other", registry.ID, UpdateInput{Status: &closed})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestRegistriesAreSessionScoped(t *testing.T) {
	svc := newRegistryService(t)
	ctx := context.Background()
	registry, err := svc.Create(ctx, session, CreateInput{Name: "Birthday", Type: enums.RegistryTypeBirthday, EventDate: "2026-07-01"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "other", registry.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	requireCode(t, svc.Delete(ctx, "other", registry.ID), pkgerrors.CodeNotFound)

	empty, err := svc.List(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, svc.Delete(ctx, session, registry.ID))
	mine, err := svc.List(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
