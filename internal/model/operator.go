package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Operator is a warehouse picker. CodigoOperario is what the PDA sends (e.g. OP001).
type Operator struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CodigoOperario string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	Nombre         string    `gorm:"type:varchar(100);not null"`
	Activo         bool      `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Operator) TableName() string { return "operators" }

func (o *Operator) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
