package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Acciones registradas en el historial de órdenes.
const (
	AccionAssignOperator = "ASSIGN_OPERATOR"
	AccionStatusChange   = "STATUS_CHANGE"
	AccionCancel         = "CANCEL"
	AccionPickingDone    = "PICKING_COMPLETED"
	AccionBoxOpened      = "BOX_OPENED"
	AccionBoxClosed      = "BOX_CLOSED"
)

// OrderHistory registra cada acción sobre una orden.
// Los registros son inmutables; nunca se eliminan ni modifican.
type OrderHistory struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	Accion         string       `gorm:"type:varchar(30);not null"`
	EstadoAnterior *OrderStatus `gorm:"type:varchar(20)"`
	EstadoNuevo    OrderStatus  `gorm:"type:varchar(20);not null"`
	OperatorID     *uuid.UUID   `gorm:"type:uuid"`
	Notas          *string
	Fecha          time.Time `gorm:"not null;index"`

	Operator *Operator `gorm:"foreignKey:OperatorID"`
}

func (OrderHistory) TableName() string { return "order_history" }

func (h *OrderHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Fecha.IsZero() {
		h.Fecha = time.Now()
	}
	return nil
}
