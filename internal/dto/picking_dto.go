package dto

import "encoding/json"

// ScanRequest is the HTTP scan body and the data of a scan_product message.
// Either OrderID or NumeroOrden identifies the order.
type ScanRequest struct {
	OperatorCode string `json:"codigo_operario,omitempty"`
	OrderID      string `json:"order_id"     validate:"omitempty,uuid"`
	NumeroOrden  string `json:"numero_orden" validate:"omitempty,max=50"`
	EAN          string `json:"ean"          validate:"omitempty,max=50"`
	Ubicacion    string `json:"ubicacion"    validate:"omitempty,max=50"`
}

// ─── WebSocket envelopes ─────────────────────────────────────────────────────

const (
	ActionConnected     = "connected"
	ActionScanProduct   = "scan_product"
	ActionScanConfirmed = "scan_confirmed"
	ActionScanError     = "scan_error"
	ActionError         = "error"
)

type WSInbound struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type WSOutbound struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

type WSConnected struct {
	OperatorID     string `json:"operator_id"`
	CodigoOperario string `json:"codigo_operario"`
	Nombre         string `json:"nombre"`
	Mensaje        string `json:"mensaje"`
}
