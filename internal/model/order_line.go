package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineState is derived from the served/requested quantities and never set by hand.
type LineState string

const (
	LinePending   LineState = "PENDING"
	LinePartial   LineState = "PARTIAL"
	LineCompleted LineState = "COMPLETED"
)

// DeriveLineState maps quantities to a state. The mapping is monotone in
// servida, so a line whose served count only grows never regresses. A line
// requesting nothing is already served.
func DeriveLineState(servida, solicitada int) LineState {
	switch {
	case servida >= solicitada:
		return LineCompleted
	case servida <= 0:
		return LinePending
	default:
		return LinePartial
	}
}

// OrderLine is one product request within an order.
// ProductReferenceID and ProductLocationID are nullable: historical orders
// may reference products or slots that no longer resolve.
type OrderLine struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductReferenceID *uuid.UUID `gorm:"type:uuid;index"`
	ProductLocationID  *uuid.UUID `gorm:"type:uuid;index"`
	EAN                string     `gorm:"type:varchar(50);index"`
	// Snapshot of the imported line, shown when the product no longer resolves.
	NombreProducto     string     `gorm:"type:varchar(200)"`
	UbicacionHistorica *string    `gorm:"type:varchar(50)"`
	CantidadSolicitada int        `gorm:"not null"`
	CantidadServida    int        `gorm:"not null;default:0"`
	Estado             LineState  `gorm:"type:varchar(20);not null"`
	PackingBoxID       *uuid.UUID `gorm:"type:uuid;index"`
	FechaEmpacado      *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	ProductReference *ProductReference `gorm:"foreignKey:ProductReferenceID"`
	ProductLocation  *ProductLocation  `gorm:"foreignKey:ProductLocationID"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (l *OrderLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.Estado = l.State()
	return nil
}

func (l *OrderLine) State() LineState {
	return DeriveLineState(l.CantidadServida, l.CantidadSolicitada)
}

func (l *OrderLine) Pendiente() int {
	if p := l.CantidadSolicitada - l.CantidadServida; p > 0 {
		return p
	}
	return 0
}

// Product resolves the line's product: the direct reference first, then the
// product owning the bound location. Nil means unbound.
func (l *OrderLine) Product() *ProductReference {
	if l.ProductReference != nil {
		return l.ProductReference
	}
	if l.ProductLocation != nil {
		return l.ProductLocation.Product
	}
	return nil
}

// DisplayName prefers the resolved product and falls back to the import snapshot.
func (l *OrderLine) DisplayName() string {
	if p := l.Product(); p != nil {
		return p.DisplayName()
	}
	if l.NombreProducto != "" {
		return l.NombreProducto
	}
	return "Producto desconocido"
}
