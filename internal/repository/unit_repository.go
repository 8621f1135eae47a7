package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/model"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *UnitRepository) GetBuilding(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	var building model.Building
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&building).Error; err != nil {
		return nil, err
	}
	return &building, nil
}

func (r *UnitRepository) GetTenant(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *UnitRepository) ListUnitServices(ctx context.Context, unitID uuid.UUID) ([]model.UnitService, error) {
	var services []model.UnitService
	err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("name, id").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *UnitRepository) GetUnitService(ctx context.Context, id uuid.UUID) (*model.UnitService, error) {
	var service model.UnitService
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}
