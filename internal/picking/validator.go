package picking

import (
	"fmt"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
)

// Classification is the fulfillability verdict for a single line.
type Classification string

const (
	ClassOK                Classification = "OK"
	ClassInsufficientStock Classification = "INSUFFICIENT_STOCK"
	ClassNoLocation        Classification = "NO_LOCATION"
	ClassInactiveLocation  Classification = "INACTIVE_LOCATION"
	ClassInactiveProduct   Classification = "INACTIVE_PRODUCT"
)

type LineValidation struct {
	OrderLineID        uuid.UUID      `json:"order_line_id"`
	Producto           string         `json:"producto"`
	Classification     Classification `json:"classification"`
	Detail             string         `json:"detail"`
	Ubicacion          string         `json:"ubicacion,omitempty"`
	CantidadSolicitada int            `json:"cantidad_solicitada"`
	StockDisponible    int            `json:"stock_disponible"`
}

type ValidationSummary struct {
	OK                int `json:"ok"`
	InsufficientStock int `json:"insufficient_stock"`
	NoLocation        int `json:"no_location"`
	InactiveProduct   int `json:"inactive_product"`
	InactiveLocation  int `json:"inactive_location"`
}

func (s *ValidationSummary) add(c Classification) {
	switch c {
	case ClassOK:
		s.OK++
	case ClassInsufficientStock:
		s.InsufficientStock++
	case ClassNoLocation:
		s.NoLocation++
	case ClassInactiveProduct:
		s.InactiveProduct++
	case ClassInactiveLocation:
		s.InactiveLocation++
	}
}

type ValidationResult struct {
	CanComplete bool              `json:"can_complete"`
	Lines       []LineValidation  `json:"lines"`
	Summary     ValidationSummary `json:"summary"`
}

// ValidateOrder classifies every line of the order. It reads stock as loaded
// and mutates nothing, so a stale snapshot only yields a stale verdict.
func ValidateOrder(order *model.Order) *ValidationResult {
	res := &ValidationResult{Lines: make([]LineValidation, 0, len(order.Lines))}
	for i := range order.Lines {
		lv := classifyLine(&order.Lines[i])
		res.Summary.add(lv.Classification)
		res.Lines = append(res.Lines, lv)
	}
	res.CanComplete = res.Summary.OK == len(res.Lines)
	return res
}

// classifyLine checks NO_LOCATION, INACTIVE_PRODUCT, INACTIVE_LOCATION and
// INSUFFICIENT_STOCK in that order; the first match wins.
func classifyLine(line *model.OrderLine) LineValidation {
	lv := LineValidation{
		OrderLineID:        line.ID,
		Producto:           line.DisplayName(),
		CantidadSolicitada: line.CantidadSolicitada,
	}

	loc := line.ProductLocation
	if loc == nil {
		lv.Classification = ClassNoLocation
		lv.Detail = "La línea no tiene ubicación asignada"
		return lv
	}
	lv.Ubicacion = loc.CodigoUbicacion
	lv.StockDisponible = loc.StockActual

	switch product := line.Product(); {
	case product != nil && !product.Activo:
		lv.Classification = ClassInactiveProduct
		lv.Detail = fmt.Sprintf("El producto %s está inactivo", product.Referencia)
	case !loc.Activa:
		lv.Classification = ClassInactiveLocation
		lv.Detail = fmt.Sprintf("La ubicación %s está inactiva", loc.CodigoUbicacion)
	case loc.StockActual < line.CantidadSolicitada:
		lv.Classification = ClassInsufficientStock
		lv.Detail = fmt.Sprintf("Stock insuficiente en %s: disponible %d, solicitado %d",
			loc.CodigoUbicacion, loc.StockActual, line.CantidadSolicitada)
	default:
		lv.Classification = ClassOK
		lv.Detail = "Stock suficiente"
	}
	return lv
}
