package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Referencia       string  `json:"referencia"        validate:"required,hexadecimal,max=50"`
	NombreProducto   string  `json:"nombre_producto"   validate:"required,min=2,max=200"`
	ColorID          string  `json:"color_id"          validate:"required,max=20"`
	Color            string  `json:"color"             validate:"required,max=50"`
	DescripcionColor *string `json:"descripcion_color" validate:"omitempty,max=100"`
	Talla            string  `json:"talla"             validate:"required,max=20"`
	PosicionTalla    int     `json:"posicion_talla"    validate:"min=0"`
	EAN              *string `json:"ean"               validate:"omitempty,numeric,min=8,max=18"`
	SKU              *string `json:"sku"               validate:"omitempty,max=50"`
	Temporada        *string `json:"temporada"         validate:"omitempty,max=20"`
}

type CrearUbicacionRequest struct {
	Pasillo     string `json:"pasillo"      validate:"required,alphanum,max=10"`
	Lado        string `json:"lado"         validate:"required"`
	Ubicacion   string `json:"ubicacion"    validate:"required,alphanum,max=10"`
	Altura      int    `json:"altura"       validate:"required,min=1,max=10"`
	Prioridad   int    `json:"prioridad"    validate:"omitempty,min=1,max=5"`
	StockActual int    `json:"stock_actual" validate:"min=0"`
	StockMinimo int    `json:"stock_minimo" validate:"min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre    string `form:"nombre"`
	Temporada string `form:"temporada"`
	// Activo: "false" = inactivos, "all" = todos, anything else = activos
	Activo string `form:"activo"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UbicacionResponse struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	CodigoUbicacion string `json:"codigo_ubicacion"`
	Pasillo         string `json:"pasillo"`
	Lado            string `json:"lado"`
	Ubicacion       string `json:"ubicacion"`
	Altura          int    `json:"altura"`
	Prioridad       int    `json:"prioridad"`
	StockActual     int    `json:"stock_actual"`
	StockMinimo     int    `json:"stock_minimo"`
	BajoMinimo      bool   `json:"bajo_minimo"`
	Activa          bool   `json:"activa"`
}

type ProductoResponse struct {
	ID               string              `json:"id"`
	Referencia       string              `json:"referencia"`
	NombreProducto   string              `json:"nombre_producto"`
	ColorID          string              `json:"color_id"`
	Color            string              `json:"color"`
	DescripcionColor *string             `json:"descripcion_color"`
	Talla            string              `json:"talla"`
	PosicionTalla    int                 `json:"posicion_talla"`
	EAN              *string             `json:"ean"`
	SKU              *string             `json:"sku"`
	Temporada        *string             `json:"temporada"`
	Activo           bool                `json:"activo"`
	StockTotal       int                 `json:"stock_total"`
	Ubicaciones      []UbicacionResponse `json:"ubicaciones,omitempty"`
}

// ResumenStockResponse is the quick stock overview of one product.
type ResumenStockResponse struct {
	ProductID             string             `json:"product_id"`
	NombreProducto        string             `json:"nombre_producto"`
	SKU                   string             `json:"sku"`
	StockTotal            int                `json:"stock_total"`
	TotalUbicaciones      int                `json:"total_ubicaciones"`
	UbicacionesBajoMinimo int                `json:"ubicaciones_bajo_minimo"`
	Estado                string             `json:"estado"`
	NecesitaReposicion    bool               `json:"necesita_reposicion"`
	Ubicaciones           []ResumenUbicacion `json:"ubicaciones"`
}

type ResumenUbicacion struct {
	CodigoUbicacion    string `json:"codigo_ubicacion"`
	StockActual        int    `json:"stock_actual"`
	NecesitaReposicion bool   `json:"necesita_reposicion"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ConsultaEANResponse is the PDA lookup by barcode. Cached in Redis.
type ConsultaEANResponse struct {
	ProductID   string              `json:"product_id"`
	Referencia  string              `json:"referencia"`
	Nombre      string              `json:"nombre"`
	Color       string              `json:"color"`
	Talla       string              `json:"talla"`
	EAN         string              `json:"ean"`
	StockTotal  int                 `json:"stock_total"`
	Ubicaciones []UbicacionResponse `json:"ubicaciones"`
}
