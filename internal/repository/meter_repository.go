package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/askhat/rentflow/internal/model"
)

type MeterRepository struct {
	db *gorm.DB
}

func NewMeterRepository(db *gorm.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// LatestUnbilledReading returns the most recent reading for the service that
// has not produced an invoice line yet, or nil when there is none.
func (r *MeterRepository) LatestUnbilledReading(ctx context.Context, unitServiceID uuid.UUID) (*model.MeterReading, error) {
	var reading model.MeterReading
	err := r.db.WithContext(ctx).
		Where("unit_service_id = ? AND is_billed = ?", unitServiceID, false).
		Order("reading_date DESC, id DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// LatestBilledReading is the reversal counterpart: the reading whose flag a
// void must clear.
func (r *MeterRepository) LatestBilledReading(ctx context.Context, unitServiceID uuid.UUID) (*model.MeterReading, error) {
	var reading model.MeterReading
	err := r.db.WithContext(ctx).
		Where("unit_service_id = ? AND is_billed = ?", unitServiceID, true).
		Order("reading_date DESC, id DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *MeterRepository) SetReadingsBilled(ctx context.Context, ids []uuid.UUID, billed bool) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.MeterReading{}).
		Where("id IN ?", ids).
		Update("is_billed", billed).Error
}

// ListPendingMeters lists metered services on occupied units that have no
// unbilled reading. Units whose every active contract started on or after
// graceCutoff are skipped: a new occupant had no opportunity to submit a
// reading yet.
func (r *MeterRepository) ListPendingMeters(ctx context.Context, tenantID uuid.UUID, graceCutoff time.Time) ([]model.PendingMeter, error) {
	var pending []model.PendingMeter
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			us.id AS unit_service_id,
			us.name AS service_name,
			u.id AS unit_id,
			u.unit_number AS unit_number
		FROM unit_services us
		JOIN units u ON u.id = us.unit_id
		WHERE us.tenant_id = ?
			AND us.is_metered = ?
			AND EXISTS (
				SELECT 1 FROM contracts c
				WHERE c.unit_id = u.id
					AND c.status = ?
					AND c.start_date < ?
			)
			AND NOT EXISTS (
				SELECT 1 FROM meter_readings mr
				WHERE mr.unit_service_id = us.id
					AND mr.is_billed = ?
			)
		ORDER BY u.unit_number, us.name
	`, tenantID, true, model.ContractStatusActive, graceCutoff, false).Scan(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}
