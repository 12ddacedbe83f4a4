package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Motivo string `json:"motivo" validate:"required,min=3,max=200"`
}

type CrearReposicionRequest struct {
	LocationID         string  `json:"location_id"         validate:"required,uuid"`
	CantidadSolicitada int     `json:"cantidad_solicitada" validate:"required,min=1"`
	OrderID            *string `json:"order_id"            validate:"omitempty,uuid"`
	SolicitanteID      *string `json:"solicitante_id"      validate:"omitempty,uuid"`
	Notas              *string `json:"notas"               validate:"omitempty,max=500"`
}

type IniciarReposicionRequest struct {
	EjecutorID string `json:"ejecutor_id" validate:"required,uuid"`
}

type CompletarReposicionRequest struct {
	// CantidadRepuesta defaults to the requested quantity when omitted.
	CantidadRepuesta *int    `json:"cantidad_repuesta" validate:"omitempty,min=1"`
	Notas            *string `json:"notas"             validate:"omitempty,max=500"`
}

type RechazarReposicionRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
}

type ReposicionFilter struct {
	Estado string `form:"estado" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED REJECTED"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type MovimientoFilter struct {
	LocationID string `form:"location_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=ajuste_manual reposicion"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AlertaStockResponse struct {
	LocationID      string `json:"location_id"`
	ProductID       string `json:"product_id"`
	Producto        string `json:"producto"`
	CodigoUbicacion string `json:"codigo_ubicacion"`
	StockActual     int    `json:"stock_actual"`
	StockMinimo     int    `json:"stock_minimo"`
	Faltante        int    `json:"faltante"`
}

type ReposicionResponse struct {
	ID                 string  `json:"id"`
	LocationID         string  `json:"location_id"`
	CodigoUbicacion    string  `json:"codigo_ubicacion"`
	ProductID          string  `json:"product_id"`
	Producto           string  `json:"producto"`
	OrderID            *string `json:"order_id"`
	CantidadSolicitada int     `json:"cantidad_solicitada"`
	Estado             string  `json:"estado"`
	SolicitanteID      *string `json:"solicitante_id"`
	EjecutorID         *string `json:"ejecutor_id"`
	Notas              *string `json:"notas"`
	FechaSolicitud     string  `json:"fecha_solicitud"`
	FechaInicio        *string `json:"fecha_inicio"`
	FechaFin           *string `json:"fecha_fin"`
}

type MovimientoStockResponse struct {
	ID            string  `json:"id"`
	LocationID    string  `json:"location_id"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	ReferenciaID  *string `json:"referencia_id"`
	CreatedAt     string  `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}

type ReposicionListResponse struct {
	Data  []ReposicionResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
