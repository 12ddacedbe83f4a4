// Package picking is the warehouse picking engine: scan tracking, stock
// validation, route building and the scan gate. It works on an in-memory
// Order graph and never touches storage.
package picking

import (
	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
)

// OrderProgress is the order-level part of a scan result.
type OrderProgress struct {
	TotalItems       int     `json:"total_items"`
	ItemsCompletados int     `json:"items_completados"`
	ProgresoPct      float64 `json:"progreso_pct"`
}

// ScanResult is the outcome of a successful RecordScan.
type ScanResult struct {
	LineID             uuid.UUID       `json:"line_id"`
	CantidadActual     int             `json:"cantidad_actual"`
	CantidadSolicitada int             `json:"cantidad_solicitada"`
	CantidadPendiente  int             `json:"cantidad_pendiente"`
	ProgresoLineaPct   float64         `json:"progreso_linea_pct"`
	EstadoLinea        model.LineState `json:"estado_linea"`
	ProgresoOrden      OrderProgress   `json:"progreso_orden"`

	// LineCompleted is set when this scan moved the line into COMPLETED.
	LineCompleted bool `json:"-"`
	// OrderCompleted is set when this scan completed the last open line.
	OrderCompleted bool `json:"-"`
}

// RecordScan adds delta units to the served quantity of lineID and refreshes
// the order counters from its lines. On error nothing is mutated.
func RecordScan(order *model.Order, lineID uuid.UUID, delta int) (*ScanResult, error) {
	if order == nil {
		return nil, apierror.OrderNotFound("")
	}
	line := order.FindLine(lineID)
	if line == nil {
		return nil, apierror.LineNotFound(lineID.String())
	}
	if delta < 1 {
		return nil, apierror.InvalidQuantity(delta)
	}
	if line.CantidadServida+delta > line.CantidadSolicitada {
		return nil, apierror.MaxQuantityReached(line.CantidadSolicitada)
	}

	before := line.State()
	wasComplete := order.IsComplete()

	line.CantidadServida += delta
	line.Estado = line.State()
	order.RecountItems()

	return &ScanResult{
		LineID:             line.ID,
		CantidadActual:     line.CantidadServida,
		CantidadSolicitada: line.CantidadSolicitada,
		CantidadPendiente:  line.Pendiente(),
		ProgresoLineaPct:   model.Percentage(line.CantidadServida, line.CantidadSolicitada).InexactFloat64(),
		EstadoLinea:        line.Estado,
		ProgresoOrden:      progressOf(order),
		LineCompleted:      before != model.LineCompleted && line.Estado == model.LineCompleted,
		OrderCompleted:     !wasComplete && order.IsComplete(),
	}, nil
}

func progressOf(order *model.Order) OrderProgress {
	return OrderProgress{
		TotalItems:       order.TotalItems,
		ItemsCompletados: order.ItemsCompletados,
		ProgresoPct:      order.ProgressPct().InexactFloat64(),
	}
}
