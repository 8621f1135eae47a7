package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/model"
)

// Models is every persisted entity, in dependency order. Tests reuse it to
// build throwaway schemas.
var Models = []interface{}{
	&model.Tenant{},
	&model.Building{},
	&model.Occupant{},
	&model.Unit{},
	&model.UnitService{},
	&model.MeterReading{},
	&model.ChargeDefinition{},
	&model.Contract{},
	&model.ContractAddOn{},
	&model.ContractIncludedService{},
	&model.Invoice{},
	&model.InvoiceItem{},
}

// Postgres-only statements run after AutoMigrate. The partial unique index
// on the invoice period is the serialization guard against two concurrent
// billing runs producing duplicate invoices for one contract/month: the
// second writer fails the index and is treated as "already billed".
var migrationStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_contract_period
		ON invoices (contract_id, billing_year, billing_month)
		WHERE status <> 'VOID';`,
	`CREATE INDEX IF NOT EXISTS idx_meter_readings_unbilled
		ON meter_readings (unit_service_id, reading_date)
		WHERE is_billed = FALSE;`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_tenant_status ON invoices (tenant_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_tenant_status ON contracts (tenant_id, status);`,
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
