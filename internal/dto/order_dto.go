package dto

import (
	"github.com/codefren/s4t-koroshi-sms-backend/internal/picking"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AssignOperatorRequest struct {
	OperatorID string  `json:"operator_id" validate:"required,uuid"`
	Notas      *string `json:"notas"       validate:"omitempty,max=500"`
}

type ChangeStatusRequest struct {
	Estado string  `json:"estado" validate:"required,oneof=PENDING ASSIGNED IN_PICKING PICKED PACKING READY SHIPPED CANCELLED"`
	Notas  *string `json:"notas"  validate:"omitempty,max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type OrderFilter struct {
	Estado     string `form:"estado"      validate:"omitempty,oneof=PENDING ASSIGNED IN_PICKING PICKED PACKING READY SHIPPED CANCELLED"`
	Prioridad  string `form:"prioridad"   validate:"omitempty,oneof=NORMAL HIGH URGENT"`
	OperatorID string `form:"operator_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OperatorSummary struct {
	ID             string `json:"id"`
	CodigoOperario string `json:"codigo_operario"`
	Nombre         string `json:"nombre"`
}

type OrderSummaryResponse struct {
	ID               string           `json:"id"`
	NumeroOrden      string           `json:"numero_orden"`
	CodigoCliente    string           `json:"codigo_cliente"`
	NombreCliente    string           `json:"nombre_cliente"`
	Estado           string           `json:"estado"`
	EstadoNombre     string           `json:"estado_nombre"`
	Prioridad        string           `json:"prioridad"`
	TotalItems       int              `json:"total_items"`
	ItemsCompletados int              `json:"items_completados"`
	ProgresoPct      float64          `json:"progreso_pct"`
	Operario         *OperatorSummary `json:"operario"`
	FechaImportacion string           `json:"fecha_importacion"`
}

type OrderLineResponse struct {
	ID                 string  `json:"id"`
	EAN                string  `json:"ean"`
	Producto           string  `json:"producto"`
	Referencia         *string `json:"referencia"`
	Color              *string `json:"color"`
	Talla              *string `json:"talla"`
	Ubicacion          *string `json:"ubicacion"`
	UbicacionHistorica *string `json:"ubicacion_historica"`
	StockDisponible    *int    `json:"stock_disponible"`
	CantidadSolicitada int     `json:"cantidad_solicitada"`
	CantidadServida    int     `json:"cantidad_servida"`
	CantidadPendiente  int     `json:"cantidad_pendiente"`
	Estado             string  `json:"estado"`
	PackingBoxID       *string `json:"packing_box_id"`
	FechaEmpacado      *string `json:"fecha_empacado"`
}

type OrderDetailResponse struct {
	OrderSummaryResponse
	Notas              *string             `json:"notas"`
	FechaAsignacion    *string             `json:"fecha_asignacion"`
	FechaInicioPicking *string             `json:"fecha_inicio_picking"`
	FechaFinPicking    *string             `json:"fecha_fin_picking"`
	FechaPacking       *string             `json:"fecha_packing"`
	FechaListo         *string             `json:"fecha_listo"`
	FechaEnvio         *string             `json:"fecha_envio"`
	FechaCancelacion   *string             `json:"fecha_cancelacion"`
	TotalCajas         int                 `json:"total_cajas"`
	CajaActivaID       *string             `json:"caja_activa_id"`
	Lineas             []OrderLineResponse `json:"lineas"`
}

type OrderListResponse struct {
	Data       []OrderSummaryResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

type OrderHistoryResponse struct {
	ID             string           `json:"id"`
	Accion         string           `json:"accion"`
	EstadoAnterior *string          `json:"estado_anterior"`
	EstadoNuevo    string           `json:"estado_nuevo"`
	Operario       *OperatorSummary `json:"operario"`
	Notas          *string          `json:"notas"`
	Fecha          string           `json:"fecha"`
}

// PickingRouteResponse wraps the optimizer output with the order identity.
type PickingRouteResponse struct {
	OrderID     string `json:"order_id"`
	NumeroOrden string `json:"numero_orden"`
	*picking.Route
}

// StockValidationResponse wraps the validator output with the order identity.
type StockValidationResponse struct {
	OrderID     string `json:"order_id"`
	NumeroOrden string `json:"numero_orden"`
	*picking.ValidationResult
}
