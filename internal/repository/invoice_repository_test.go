package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "github.com/askhat/rentflow/internal/db"
	"github.com/askhat/rentflow/internal/model"
	"github.com/askhat/rentflow/internal/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(appdb.Models...))
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, tenantID, contractID uuid.UUID, year, month int, status model.InvoiceStatus) model.Invoice {
	t.Helper()
	invoice := model.Invoice{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ContractID:   contractID,
		OccupantID:   uuid.New(),
		InvoiceDate:  time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		BillingMonth: month,
		BillingYear:  year,
		TotalAmount:  decimal.RequireFromString("1000.00"),
		AmountPaid:   decimal.Zero,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&invoice).Error)
	return invoice
}

func TestFindForPeriod(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewInvoiceRepository(db)
	tenantID := uuid.New()
	contractID := uuid.New()

	found, err := repo.FindForPeriod(context.Background(), contractID, 2026, 7)
	require.NoError(t, err)
	assert.Nil(t, found)

	invoice := seedInvoice(t, db, tenantID, contractID, 2026, 7, model.InvoiceStatusUnpaid)

	found, err = repo.FindForPeriod(context.Background(), contractID, 2026, 7)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, invoice.ID, found.ID)

	// Other periods and other contracts do not match.
	found, err = repo.FindForPeriod(context.Background(), contractID, 2026, 8)
	require.NoError(t, err)
	assert.Nil(t, found)
	found, err = repo.FindForPeriod(context.Background(), uuid.New(), 2026, 7)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindForPeriod_IgnoresVoid(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewInvoiceRepository(db)
	contractID := uuid.New()

	seedInvoice(t, db, uuid.New(), contractID, 2026, 7, model.InvoiceStatusVoid)

	found, err := repo.FindForPeriod(context.Background(), contractID, 2026, 7)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCountOtherInUnitPeriod(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewInvoiceRepository(db)
	tenantID := uuid.New()
	unitID := uuid.New()

	contractA := model.Contract{ID: uuid.New(), TenantID: tenantID, UnitID: unitID, OccupantID: uuid.New(), Status: model.ContractStatusActive, RentAmount: decimal.Zero}
	contractB := model.Contract{ID: uuid.New(), TenantID: tenantID, UnitID: unitID, OccupantID: uuid.New(), Status: model.ContractStatusActive, RentAmount: decimal.Zero}
	require.NoError(t, db.Create(&contractA).Error)
	require.NoError(t, db.Create(&contractB).Error)

	invoiceA := seedInvoice(t, db, tenantID, contractA.ID, 2026, 7, model.InvoiceStatusUnpaid)
	invoiceB := seedInvoice(t, db, tenantID, contractB.ID, 2026, 7, model.InvoiceStatusUnpaid)

	count, err := repo.CountOtherInUnitPeriod(context.Background(), unitID, 2026, 7, invoiceA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Voiding the roommate's invoice releases the shared state.
	require.NoError(t, repo.MarkVoid(context.Background(), invoiceB.ID))
	count, err = repo.CountOtherInUnitPeriod(context.Background(), unitID, 2026, 7, invoiceA.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountOtherItemsForAddOn(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewInvoiceRepository(db)
	tenantID := uuid.New()
	addOnID := uuid.New()

	invoiceA := seedInvoice(t, db, tenantID, uuid.New(), 2026, 7, model.InvoiceStatusUnpaid)
	invoiceB := seedInvoice(t, db, tenantID, uuid.New(), 2026, 8, model.InvoiceStatusUnpaid)

	for _, invoiceID := range []uuid.UUID{invoiceA.ID, invoiceB.ID} {
		item := model.InvoiceItem{
			ID:              uuid.New(),
			TenantID:        tenantID,
			InvoiceID:       invoiceID,
			ItemType:        model.ItemTypeAddOn,
			Description:     "Key deposit",
			Amount:          decimal.RequireFromString("120.00"),
			ContractAddOnID: &addOnID,
		}
		require.NoError(t, db.Create(&item).Error)
	}

	count, err := repo.CountOtherItemsForAddOn(context.Background(), addOnID, invoiceA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkVoid(context.Background(), invoiceB.ID))
	count, err = repo.CountOtherItemsForAddOn(context.Background(), addOnID, invoiceA.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetInvoice_LoadsItemsInOrder(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewInvoiceRepository(db)
	tenantID := uuid.New()

	invoice := seedInvoice(t, db, tenantID, uuid.New(), 2026, 7, model.InvoiceStatusUnpaid)
	for i, description := range []string{"Base rent", "Water", "Late fee"} {
		item := model.InvoiceItem{
			ID:          uuid.New(),
			TenantID:    tenantID,
			InvoiceID:   invoice.ID,
			ItemType:    model.ItemTypeRent,
			Description: description,
			Amount:      decimal.RequireFromString("10.00"),
			Position:    i,
		}
		require.NoError(t, db.Create(&item).Error)
	}

	loaded, err := repo.GetInvoice(context.Background(), tenantID, invoice.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 3)
	assert.Equal(t, "Base rent", loaded.Items[0].Description)
	assert.Equal(t, "Late fee", loaded.Items[2].Description)
}
