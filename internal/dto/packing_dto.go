package dto

import "github.com/shopspring/decimal"

type AbrirCajaRequest struct {
	Notas *string `json:"notas" validate:"omitempty,max=500"`
}

// ActualizarCajaRequest changes the physical details of a box; nil fields
// are left as they are.
type ActualizarCajaRequest struct {
	PesoKg      *decimal.Decimal `json:"peso_kg"`
	Dimensiones *string          `json:"dimensiones" validate:"omitempty,max=50"`
	Notas       *string          `json:"notas"       validate:"omitempty,max=500"`
}

type CerrarCajaRequest struct {
	PesoKg      *decimal.Decimal `json:"peso_kg"`
	Dimensiones *string          `json:"dimensiones" validate:"omitempty,max=50"`
	Notas       *string          `json:"notas"       validate:"omitempty,max=500"`
}

type EmpacarLineaRequest struct {
	OrderLineID string `json:"order_line_id" validate:"required,uuid"`
}

type CajaFilter struct {
	Estado string `form:"estado" validate:"omitempty,oneof=OPEN CLOSED open closed"`
}

type CajaResponse struct {
	ID            string           `json:"id"`
	OrderID       string           `json:"order_id"`
	NumeroCaja    int              `json:"numero_caja"`
	CodigoCaja    string           `json:"codigo_caja"`
	Estado        string           `json:"estado"`
	Operario      *OperatorSummary `json:"operario"`
	TotalItems    int              `json:"total_items"`
	PesoKg        *decimal.Decimal `json:"peso_kg"`
	Dimensiones   *string          `json:"dimensiones"`
	Notas         *string          `json:"notas"`
	FechaApertura string           `json:"fecha_apertura"`
	FechaCierre   *string          `json:"fecha_cierre"`
}

type CajaDetalleResponse struct {
	CajaResponse
	Items []OrderLineResponse `json:"items"`
}
