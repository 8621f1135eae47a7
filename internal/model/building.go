package model

import "github.com/google/uuid"

type Building struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;index"`
	Name       string
	Address    string
	IsArchived bool
}
