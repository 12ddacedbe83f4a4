package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tipos de movimiento de stock.
const (
	MovimientoAjusteManual = "ajuste_manual"
	MovimientoReposicion   = "reposicion"
)

// MovimientoStock registra cada cambio de stock en una ubicación.
// Se crea al ajustar manualmente o al completar una reposición.
type MovimientoStock struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	LocationID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Tipo          string     `gorm:"type:varchar(30);not null"`
	Cantidad      int        `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int        `gorm:"not null"`
	StockNuevo    int        `gorm:"not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"` // solicitud de reposición, si aplica
	CreatedAt     time.Time

	Location *ProductLocation `gorm:"foreignKey:LocationID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }

func (m *MovimientoStock) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
