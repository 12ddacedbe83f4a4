package model

import (
	"errors"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNoOperator = errors.New("la orden no tiene operario asignado")

// Order is a fulfillment unit imported from the external order system.
// Orders are never deleted; cancellation is a status.
//
// TotalItems and ItemsCompletados cache the number of lines and the number of
// COMPLETED lines. They are recomputed from Lines on every mutation, never
// incremented blindly.
type Order struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"`
	NumeroOrden      string        `gorm:"type:varchar(50);uniqueIndex;not null"`
	CodigoCliente    string        `gorm:"type:varchar(50);index"`
	NombreCliente    string        `gorm:"type:varchar(200)"`
	Estado           OrderStatus   `gorm:"column:estado;type:varchar(20);not null;index"`
	OperatorID       *uuid.UUID    `gorm:"type:uuid;index"`
	Prioridad        OrderPriority `gorm:"type:varchar(10);not null;index"`
	TotalItems       int           `gorm:"not null;default:0"`
	ItemsCompletados int           `gorm:"not null;default:0"`
	TotalCajas       int           `gorm:"not null;default:0"`
	CajaActivaID     *uuid.UUID    `gorm:"type:uuid"`
	Notas            *string

	FechaImportacion   time.Time `gorm:"not null;index"`
	FechaAsignacion    *time.Time
	FechaInicioPicking *time.Time
	FechaFinPicking    *time.Time
	FechaPacking       *time.Time
	FechaListo         *time.Time
	FechaEnvio         *time.Time
	FechaCancelacion   *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Operator *Operator  `gorm:"foreignKey:OperatorID"`
	Lines    []OrderLine `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Estado == 0 {
		o.Estado = StatusPending
	}
	if o.Prioridad == "" {
		o.Prioridad = PriorityNormal
	}
	if o.FechaImportacion.IsZero() {
		o.FechaImportacion = time.Now()
	}
	return nil
}

// RecountItems refreshes the cached counters from the loaded lines.
func (o *Order) RecountItems() {
	completed := 0
	for i := range o.Lines {
		if o.Lines[i].State() == LineCompleted {
			completed++
		}
	}
	o.TotalItems = len(o.Lines)
	o.ItemsCompletados = completed
}

// ProgressPct is items_completados / total_items * 100 rounded to two
// decimals, 0 when the order has no lines.
func (o *Order) ProgressPct() decimal.Decimal {
	return Percentage(o.ItemsCompletados, o.TotalItems)
}

// IsComplete reports whether every line has been fully served.
func (o *Order) IsComplete() bool {
	return o.TotalItems > 0 && o.ItemsCompletados == o.TotalItems
}

// IsAssignedTo reports whether operatorID owns the order.
func (o *Order) IsAssignedTo(operatorID uuid.UUID) bool {
	return o.OperatorID != nil && *o.OperatorID == operatorID
}

// FindLine returns the line with the given id, or nil.
func (o *Order) FindLine(id uuid.UUID) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == id {
			return &o.Lines[i]
		}
	}
	return nil
}

// Transition moves the order to next and stamps the matching timestamp.
func (o *Order) Transition(next OrderStatus, at time.Time) error {
	if !o.Estado.CanTransitionTo(next) {
		return apierror.InvalidTransition(o.Estado.String(), next.String())
	}
	if next == StatusInPicking && o.OperatorID == nil {
		return apierror.InvalidTransition(o.Estado.String(), next.String()).
			Wrap(errNoOperator)
	}

	ts := at
	switch next {
	case StatusAssigned:
		o.FechaAsignacion = &ts
	case StatusInPicking:
		o.FechaInicioPicking = &ts
	case StatusPicked:
		o.FechaFinPicking = &ts
	case StatusPacking:
		o.FechaPacking = &ts
	case StatusReady:
		o.FechaListo = &ts
	case StatusShipped:
		o.FechaEnvio = &ts
	case StatusCancelled:
		o.FechaCancelacion = &ts
	}
	o.Estado = next
	return nil
}

// Percentage computes part/total*100 rounded to two decimals; 0 when total is 0.
func Percentage(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
