package tickets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/angelmondragon/marketflow-backend/pkg/db"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

const session = "sess-support"

func newTicketService(t *testing.T) Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.SupportTicket{}))

	svc, err := NewService(NewRepository(db), pkgdb.Wrap(db))
	require.NoError(t, err)
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestCreateOpensTicketWithDefaults(t *testing.T) {
	svc := newTicketService(t)
	ticket, err := svc.Create(context.Background(), session, CreateInput{
		Subject:     "  Missing package ",
		Description: "Tracking says delivered but nothing arrived.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Missing package", ticket.Subject)
	assert.Equal(t, enums.TicketCategoryGeneral, ticket.Category)
	assert.Equal(t, enums.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, enums.TicketStatusOpen, ticket.Status)
	assert.NotZero(t, ticket.ID)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTicketService(t)
	ctx := context.Background()

	cases := map[string]CreateInput{
		"missing subject":   {Description: "help"},
		"blank description": {Subject: "Refund", Description: "   "},
		"unknown category":  {Subject: "Refund", Description: "help", Category: "billing"},
		"unknown priority":  {Subject: "Refund", Description: "help", Priority: "critical"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, session, input)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}

	_, err := svc.Create(ctx, "", CreateInput{Subject: "Refund", Description: "help"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestUpdateMovesTicketThroughStatuses(t *testing.T) {
	svc := newTicketService(t)
	ctx := context.Background()
	ticket, err := svc.Create(ctx, session, CreateInput{
		Subject:     "Damaged item",
		Category:    enums.TicketCategoryRefund,
		Description: "The screen arrived cracked.",
	})
	require.NoError(t, err)

	pending := enums.TicketStatusPending
	urgent := enums.TicketPriorityUrgent
	updated, err := svc.Update(ctx, session, ticket.ID, UpdateInput{Status: &pending, Priority: &urgent})
	require.NoError(t, err)
	assert.Equal(t, enums.TicketStatusPending, updated.Status)
	assert.Equal(t, enums.TicketPriorityUrgent, updated.Priority)
	assert.Equal(t, enums.TicketCategoryRefund, updated.Category)
	assert.Equal(t, "Damaged item", updated.Subject)

	bogus := enums.TicketStatus("escalated")
	_, err = svc.Update(ctx, session, ticket.ID, UpdateInput{Status: &bogus})
	requireCode(t, err, pkgerrors.CodeValidation)

	closed := enums.TicketStatusClosed
	_, err = svc.Update(ctx, "other", ticket.ID, UpdateInput{Status: &closed})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestListAndDeleteAreSessionScoped(t *testing.T) {
	svc := newTicketService(t)
	ctx := context.Background()
	mine, err := svc.Create(ctx, session, CreateInput{Subject: "A", Description: "first"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "other", CreateInput{Subject: "B", Description: "second"})
	require.NoError(t, err)

	list, err := svc.List(ctx, session)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	requireCode(t, svc.Delete(ctx, "other", mine.ID), pkgerrors.CodeNotFound)
	require.NoError(t, svc.Delete(ctx, session, mine.ID))

	list, err = svc.List(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, list)
}
