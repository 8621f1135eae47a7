package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/config"
	appdb "github.com/askhat/rentflow/internal/db"
	"github.com/askhat/rentflow/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(appdb.Models...))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Billing: config.BillingConfig{
			DueDays:     5,
			MoveInGrace: true,
		},
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// fixture seeds one tenant with one building and one unit and grows from
// there per test.
type fixture struct {
	db       *gorm.DB
	tenant   model.Tenant
	building model.Building
	unit     model.Unit
}

func newFixture(t *testing.T, mode model.MeteredBillingMode) *fixture {
	t.Helper()
	db := setupDB(t)

	f := &fixture{db: db}
	f.tenant = model.Tenant{ID: uuid.New(), Name: "Aruzhan Estates", SubscriptionStatus: "ACTIVE", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&f.tenant).Error)

	f.building = model.Building{ID: uuid.New(), TenantID: f.tenant.ID, Name: "Riverside Block A", Address: "12 Abay Ave"}
	require.NoError(t, db.Create(&f.building).Error)

	f.unit = model.Unit{
		ID:                 uuid.New(),
		TenantID:           f.tenant.ID,
		BuildingID:         f.building.ID,
		UnitNumber:         "101",
		MaxOccupancy:       3,
		DefaultRate:        dec("1000.00"),
		Status:             model.UnitStatusOccupied,
		MeteredBillingMode: mode,
	}
	require.NoError(t, db.Create(&f.unit).Error)
	return f
}

func (f *fixture) addOccupant(t *testing.T, first, last string) model.Occupant {
	t.Helper()
	occupant := model.Occupant{
		ID:        uuid.New(),
		TenantID:  f.tenant.ID,
		FirstName: first,
		LastName:  last,
		Email:     first + "@example.com",
	}
	require.NoError(t, f.db.Create(&occupant).Error)
	return occupant
}

func (f *fixture) addContract(t *testing.T, occupant model.Occupant, rent string, billingDay int, start time.Time) model.Contract {
	t.Helper()
	contract := model.Contract{
		ID:         uuid.New(),
		TenantID:   f.tenant.ID,
		OccupantID: occupant.ID,
		UnitID:     f.unit.ID,
		Status:     model.ContractStatusActive,
		StartDate:  start,
		RentAmount: dec(rent),
		BillingDay: billingDay,
	}
	require.NoError(t, f.db.Create(&contract).Error)
	return contract
}

func (f *fixture) addService(t *testing.T, name, price string, metered bool) model.UnitService {
	t.Helper()
	svc := model.UnitService{
		ID:           uuid.New(),
		TenantID:     f.tenant.ID,
		UnitID:       f.unit.ID,
		Name:         name,
		MonthlyPrice: dec(price),
		IsMetered:    metered,
	}
	require.NoError(t, f.db.Create(&svc).Error)
	return svc
}

func (f *fixture) addReading(t *testing.T, svc model.UnitService, previous, current float64, readingDate time.Time) model.MeterReading {
	t.Helper()
	reading := model.MeterReading{
		ID:            uuid.New(),
		TenantID:      f.tenant.ID,
		UnitServiceID: svc.ID,
		PreviousValue: previous,
		CurrentValue:  current,
		ReadingDate:   readingDate,
	}
	require.NoError(t, f.db.Create(&reading).Error)
	return reading
}

func (f *fixture) addChargeDefinition(t *testing.T, name string, chargeType model.ChargeType, amount string) model.ChargeDefinition {
	t.Helper()
	def := model.ChargeDefinition{
		ID:            uuid.New(),
		TenantID:      f.tenant.ID,
		Name:          name,
		ChargeType:    chargeType,
		DefaultAmount: dec(amount),
	}
	require.NoError(t, f.db.Create(&def).Error)
	return def
}

func (f *fixture) addAddOn(t *testing.T, contract model.Contract, def model.ChargeDefinition, amount string) model.ContractAddOn {
	t.Helper()
	addOn := model.ContractAddOn{
		ID:                 uuid.New(),
		TenantID:           f.tenant.ID,
		ContractID:         contract.ID,
		ChargeDefinitionID: def.ID,
		AgreedAmount:       dec(amount),
	}
	require.NoError(t, f.db.Create(&addOn).Error)
	return addOn
}

func (f *fixture) addIncludedService(t *testing.T, contract model.Contract, svc model.UnitService, override *decimal.Decimal) model.ContractIncludedService {
	t.Helper()
	included := model.ContractIncludedService{
		ID:             uuid.New(),
		TenantID:       f.tenant.ID,
		ContractID:     contract.ID,
		UnitServiceID:  svc.ID,
		OverrideAmount: override,
	}
	require.NoError(t, f.db.Create(&included).Error)
	return included
}

func (f *fixture) reloadReading(t *testing.T, id uuid.UUID) model.MeterReading {
	t.Helper()
	var reading model.MeterReading
	require.NoError(t, f.db.First(&reading, "id = ?", id).Error)
	return reading
}

func (f *fixture) reloadAddOn(t *testing.T, id uuid.UUID) model.ContractAddOn {
	t.Helper()
	var addOn model.ContractAddOn
	require.NoError(t, f.db.First(&addOn, "id = ?", id).Error)
	return addOn
}

func (f *fixture) reloadInvoice(t *testing.T, id uuid.UUID) model.Invoice {
	t.Helper()
	var invoice model.Invoice
	require.NoError(t, f.db.First(&invoice, "id = ?", id).Error)
	return invoice
}

func itemAmounts(invoice model.Invoice) map[model.InvoiceItemType][]string {
	byType := make(map[model.InvoiceItemType][]string)
	for _, item := range invoice.Items {
		byType[item.ItemType] = append(byType[item.ItemType], item.Amount.StringFixed(2))
	}
	return byType
}

func itemSum(invoice model.Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, item := range invoice.Items {
		total = total.Add(item.Amount)
	}
	return total
}
