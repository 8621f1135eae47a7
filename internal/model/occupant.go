package model

import "github.com/google/uuid"

type Occupant struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid;index"`
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	IsArchived bool
}

func (o Occupant) FullName() string {
	return o.FirstName + " " + o.LastName
}
