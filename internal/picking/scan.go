package picking

import (
	"strings"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
)

type ProductInfo struct {
	Nombre     string `json:"nombre"`
	Referencia string `json:"referencia,omitempty"`
	Color      string `json:"color,omitempty"`
	Talla      string `json:"talla,omitempty"`
	EAN        string `json:"ean"`
}

// LocationCheck compares the slot the operator reports against the line's
// bound location. Coincide is nil when there was nothing to compare.
type LocationCheck struct {
	Esperada  string `json:"ubicacion_esperada,omitempty"`
	Escaneada string `json:"ubicacion_escaneada,omitempty"`
	Coincide  *bool  `json:"coincide"`
	Aviso     string `json:"aviso,omitempty"`
}

// ScanConfirmation is the ScanResult joined with display data.
type ScanConfirmation struct {
	OrderID     uuid.UUID     `json:"order_id"`
	NumeroOrden string        `json:"numero_orden"`
	Producto    ProductInfo   `json:"producto"`
	Ubicacion   LocationCheck `json:"ubicacion"`
	*ScanResult
}

// Scan is the gate in front of RecordScan. order is nil when the caller could
// not resolve it. It holds no state: the "session" is the order being
// IN_PICKING for this operator.
func Scan(order *model.Order, operatorID uuid.UUID, ean, locationHint string) (*ScanConfirmation, error) {
	if order == nil {
		return nil, apierror.OrderNotFound("")
	}
	// An order nobody owns yet is rejected for its status, not its owner.
	if order.OperatorID != nil && !order.IsAssignedTo(operatorID) {
		return nil, apierror.OrderNotAssigned()
	}
	if !order.Estado.AcceptsScans() {
		return nil, apierror.OrderWrongStatus(order.Estado.String(), order.Estado.IsTerminal(), model.StatusInPicking.String())
	}
	if !order.IsAssignedTo(operatorID) {
		return nil, apierror.OrderNotAssigned()
	}
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return nil, apierror.MissingEAN()
	}

	line, err := selectLine(order, ean)
	if err != nil {
		return nil, err
	}

	res, err := RecordScan(order, line.ID, 1)
	if err != nil {
		return nil, err
	}

	return &ScanConfirmation{
		OrderID:     order.ID,
		NumeroOrden: order.NumeroOrden,
		Producto:    productInfo(line),
		Ubicacion:   checkLocation(line, locationHint),
		ScanResult:  res,
	}, nil
}

// selectLine picks the first open line carrying ean. Several lines may share
// an EAN (same product requested twice); they fill in line order.
func selectLine(order *model.Order, ean string) (*model.OrderLine, error) {
	var firstMatch *model.OrderLine
	for i := range order.Lines {
		l := &order.Lines[i]
		if l.EAN != ean {
			continue
		}
		if l.State() != model.LineCompleted {
			return l, nil
		}
		if firstMatch == nil {
			firstMatch = l
		}
	}
	if firstMatch != nil {
		return nil, apierror.MaxQuantityReached(firstMatch.CantidadSolicitada)
	}
	return nil, apierror.EanNotInOrder(ean)
}

func productInfo(line *model.OrderLine) ProductInfo {
	info := ProductInfo{Nombre: line.DisplayName(), EAN: line.EAN}
	if p := line.Product(); p != nil {
		info.Nombre = p.NombreProducto
		info.Referencia = p.Referencia
		info.Color = p.Color
		info.Talla = p.Talla
	}
	return info
}

func checkLocation(line *model.OrderLine, hint string) LocationCheck {
	hint = strings.TrimSpace(hint)
	check := LocationCheck{Escaneada: hint}

	if line.ProductLocation == nil {
		if line.UbicacionHistorica != nil {
			check.Esperada = *line.UbicacionHistorica
		}
		if hint != "" {
			check.Aviso = "La línea no tiene ubicación asignada; no se puede verificar"
		}
		return check
	}

	check.Esperada = line.ProductLocation.CodigoUbicacion
	if hint == "" {
		return check
	}
	match := strings.EqualFold(hint, check.Esperada)
	check.Coincide = &match
	if !match {
		check.Aviso = "Ubicación distinta a la esperada: " + check.Esperada
	}
	return check
}
