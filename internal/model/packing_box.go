package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BoxStatus is the lifecycle of a packing box. A box only takes lines while OPEN.
type BoxStatus string

const (
	BoxOpen   BoxStatus = "OPEN"
	BoxClosed BoxStatus = "CLOSED"
)

// PackingBox is one physical carton filled for an order. Boxes are numbered
// 1..n per order and at most one of them is OPEN at a time.
type PackingBox struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:ux_packing_boxes_order_numero,priority:1;uniqueIndex:ux_packing_boxes_open_order,where:estado = 'OPEN'"`
	NumeroCaja    int              `gorm:"not null;uniqueIndex:ux_packing_boxes_order_numero,priority:2"`
	CodigoCaja    string           `gorm:"type:varchar(80);uniqueIndex;not null"`
	Estado        BoxStatus        `gorm:"type:varchar(20);not null;index"`
	OperatorID    *uuid.UUID       `gorm:"type:uuid"`
	TotalItems    int              `gorm:"not null;default:0"`
	PesoKg        *decimal.Decimal `gorm:"type:numeric(8,3)"`
	Dimensiones   *string          `gorm:"type:varchar(50)"`
	Notas         *string
	FechaApertura time.Time `gorm:"not null"`
	FechaCierre   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Operator *Operator `gorm:"foreignKey:OperatorID"`
}

func (PackingBox) TableName() string { return "packing_boxes" }

func (b *PackingBox) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Estado == "" {
		b.Estado = BoxOpen
	}
	if b.FechaApertura.IsZero() {
		b.FechaApertura = time.Now()
	}
	return nil
}

// BoxCode builds the printed label of box n of an order: ORD-{numero}-BOX-001.
func BoxCode(numeroOrden string, n int) string {
	return fmt.Sprintf("ORD-%s-BOX-%03d", numeroOrden, n)
}

// CanOpenBox reports whether boxes may be opened for an order in status s.
// Packing starts while picking is still running.
func (s OrderStatus) CanOpenBox() bool {
	return s == StatusInPicking || s == StatusPicked
}

// Close seals the box. Notes given at close time are appended to the existing ones.
func (b *PackingBox) Close(at time.Time, notas *string) {
	b.Estado = BoxClosed
	b.FechaCierre = &at
	if notas == nil || *notas == "" {
		return
	}
	if b.Notas == nil || *b.Notas == "" {
		n := *notas
		b.Notas = &n
		return
	}
	n := *b.Notas + " | Cierre: " + *notas
	b.Notas = &n
}
