package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetContract(ctx context.Context, tenantID, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) ListActiveContracts(ctx context.Context, tenantID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, model.ContractStatusActive).
		Order("start_date, id").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

// ListActiveContractsOnUnit returns the unit's active contracts ordered by
// start date then id, so the first element is the primary occupant for
// SINGLE_OCCUPANT metered billing.
func (r *ContractRepository) ListActiveContractsOnUnit(ctx context.Context, unitID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("unit_id = ? AND status = ?", unitID, model.ContractStatusActive).
		Order("start_date, id").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) ListAddOns(ctx context.Context, contractID uuid.UUID) ([]model.ContractAddOn, error) {
	var addOns []model.ContractAddOn
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("id").
		Find(&addOns).Error
	if err != nil {
		return nil, err
	}
	return addOns, nil
}

func (r *ContractRepository) GetChargeDefinition(ctx context.Context, id uuid.UUID) (*model.ChargeDefinition, error) {
	var def model.ChargeDefinition
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&def).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *ContractRepository) ListIncludedServices(ctx context.Context, contractID uuid.UUID) ([]model.ContractIncludedService, error) {
	var included []model.ContractIncludedService
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("id").
		Find(&included).Error
	if err != nil {
		return nil, err
	}
	return included, nil
}

func (r *ContractRepository) GetAddOn(ctx context.Context, id uuid.UUID) (*model.ContractAddOn, error) {
	var addOn model.ContractAddOn
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&addOn).Error; err != nil {
		return nil, err
	}
	return &addOn, nil
}

func (r *ContractRepository) SetAddOnProcessed(ctx context.Context, id uuid.UUID, processed bool) error {
	return r.db.WithContext(ctx).
		Model(&model.ContractAddOn{}).
		Where("id = ?", id).
		Update("is_processed", processed).Error
}

func (r *ContractRepository) GetOccupant(ctx context.Context, id uuid.UUID) (*model.Occupant, error) {
	var occupant model.Occupant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&occupant).Error; err != nil {
		return nil, err
	}
	return &occupant, nil
}
