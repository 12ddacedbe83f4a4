package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func callJSON(t *testing.T, srv *httptest.Server, method, path string, body any, wantStatus int) map[string]any {
	t.Helper()
	status, raw := call(t, srv, method, path, body)
	require.Equal(t, wantStatus, status, "%s %s: %s", method, path, raw)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return out
}

func mustUUID(t *testing.T, v any) uuid.UUID {
	t.Helper()
	s, _ := v.(string)
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

// ── Flow ─────────────────────────────────────────────────────────────────────
// Orders arrive through the import pipeline, so the order itself is inserted
// through the repository; everything else goes through the HTTP surface.

type warehouse struct {
	operatorID  uuid.UUID
	orderID     uuid.UUID
	numeroOrden string
	locAisleA   uuid.UUID
}

func runWarehouseFlow(t *testing.T, srv *httptest.Server, db *gorm.DB) warehouse {
	t.Helper()
	var w warehouse

	op := callJSON(t, srv, http.MethodPost, "/api/v1/operarios",
		map[string]any{"codigo_operario": "op001", "nombre": "Ana Torres"}, http.StatusCreated)
	assert.Equal(t, "OP001", op["codigo_operario"])
	w.operatorID = mustUUID(t, op["id"])

	camiseta := callJSON(t, srv, http.MethodPost, "/api/v1/productos", map[string]any{
		"referencia": "A1B2C3", "nombre_producto": "Camiseta basica", "color_id": "01",
		"color": "Blanco", "talla": "M", "ean": "8400000000011",
	}, http.StatusCreated)
	chino := callJSON(t, srv, http.MethodPost, "/api/v1/productos", map[string]any{
		"referencia": "B7F001", "nombre_producto": "Pantalon chino", "color_id": "07",
		"color": "Beige", "talla": "42", "ean": "8400000000035",
	}, http.StatusCreated)

	locB := callJSON(t, srv, http.MethodPost, "/api/v1/productos/"+camiseta["id"].(string)+"/ubicaciones", map[string]any{
		"pasillo": "B", "lado": "izquierda", "ubicacion": "05", "altura": 1, "prioridad": 1,
		"stock_actual": 10, "stock_minimo": 2,
	}, http.StatusCreated)
	assert.Equal(t, "B-IZQUIERDA-05-1", locB["codigo_ubicacion"])
	locA := callJSON(t, srv, http.MethodPost, "/api/v1/productos/"+chino["id"].(string)+"/ubicaciones", map[string]any{
		"pasillo": "A", "lado": "DERECHA", "ubicacion": "01", "altura": 2, "prioridad": 2,
		"stock_actual": 1, "stock_minimo": 2,
	}, http.StatusCreated)
	w.locAisleA = mustUUID(t, locA["id"])

	// Import the order.
	camisetaID, chinoID := mustUUID(t, camiseta["id"]), mustUUID(t, chino["id"])
	locBID := mustUUID(t, locB["id"])
	order := &model.Order{
		NumeroOrden:   "ORD-5001",
		CodigoCliente: "CLI01",
		NombreCliente: "Tienda Centro",
		Lines: []model.OrderLine{
			{ProductReferenceID: &camisetaID, ProductLocationID: &locBID, EAN: "8400000000011", NombreProducto: "Camiseta basica", CantidadSolicitada: 2},
			{ProductReferenceID: &chinoID, ProductLocationID: &w.locAisleA, EAN: "8400000000035", NombreProducto: "Pantalon chino", CantidadSolicitada: 1},
		},
	}
	order.RecountItems()
	require.NoError(t, repository.NewOrderRepository(db).Create(t.Context(), order))
	w.orderID, w.numeroOrden = order.ID, order.NumeroOrden
	orderPath := "/api/v1/orders/" + order.ID.String()

	// Feasibility and route.
	val := callJSON(t, srv, http.MethodGet, orderPath+"/stock-validation", nil, http.StatusOK)
	assert.Equal(t, true, val["can_complete"])
	assert.Equal(t, "ORD-5001", val["numero_orden"])

	route := callJSON(t, srv, http.MethodPost, orderPath+"/optimize-picking-route", nil, http.StatusOK)
	assert.EqualValues(t, 2, route["total_stops"])
	assert.Equal(t, []any{"A", "B"}, route["aisles_to_visit"])
	stops := route["picking_route"].([]any)
	assert.Equal(t, "A-DERECHA-01-2", stops[0].(map[string]any)["ubicacion"])

	// Lifecycle up to picking.
	callJSON(t, srv, http.MethodPut, orderPath+"/assign", map[string]any{"operator_id": w.operatorID.String()}, http.StatusOK)
	inPicking := callJSON(t, srv, http.MethodPut, orderPath+"/status", map[string]any{"estado": "IN_PICKING"}, http.StatusOK)
	assert.Equal(t, "IN_PICKING", inPicking["estado"])

	// Two units of the camiseta over HTTP, then an over-pick.
	scan := map[string]any{"codigo_operario": "OP001", "numero_orden": "ORD-5001", "ean": "8400000000011", "ubicacion": "b-izquierda-05-1"}
	first := callJSON(t, srv, http.MethodPost, "/api/v1/picking/scan", scan, http.StatusOK)
	assert.Equal(t, "PARTIAL", first["estado_linea"])
	assert.Equal(t, true, first["ubicacion"].(map[string]any)["coincide"])
	second := callJSON(t, srv, http.MethodPost, "/api/v1/picking/scan", scan, http.StatusOK)
	assert.Equal(t, "COMPLETED", second["estado_linea"])
	over := callJSON(t, srv, http.MethodPost, "/api/v1/picking/scan", scan, http.StatusConflict)
	assert.Equal(t, "MAX_QUANTITY_REACHED", over["error_code"])

	detail := callJSON(t, srv, http.MethodGet, orderPath, nil, http.StatusOK)
	assert.EqualValues(t, 1, detail["items_completados"])
	assert.EqualValues(t, 2, detail["total_items"])

	status, raw := call(t, srv, http.MethodGet, orderPath+"/history", nil)
	require.Equal(t, http.StatusOK, status)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(raw, &history))
	assert.Len(t, history, 2, "assignment and status change")

	// Packing runs alongside picking.
	box := callJSON(t, srv, http.MethodPost, orderPath+"/boxes", nil, http.StatusCreated)
	assert.Equal(t, "ORD-ORD-5001-BOX-001", box["codigo_caja"])
	again := callJSON(t, srv, http.MethodPost, orderPath+"/boxes", nil, http.StatusConflict)
	assert.Equal(t, "BOX_ALREADY_OPEN", again["error_code"])
	lineID := detail["lineas"].([]any)[0].(map[string]any)["id"]
	packed := callJSON(t, srv, http.MethodPost, "/api/v1/packing-boxes/"+box["id"].(string)+"/lines",
		map[string]any{"order_line_id": lineID}, http.StatusOK)
	assert.EqualValues(t, 1, packed["total_items"])
	closed := callJSON(t, srv, http.MethodPut, "/api/v1/packing-boxes/ORD-ORD-5001-BOX-001/close",
		map[string]any{"peso_kg": "1.25", "dimensiones": "30x20x10"}, http.StatusOK)
	assert.Equal(t, "CLOSED", closed["estado"])
	boxDetail := callJSON(t, srv, http.MethodGet, "/api/v1/packing-boxes/"+box["id"].(string), nil, http.StatusOK)
	assert.Len(t, boxDetail["items"], 1)
	detail = callJSON(t, srv, http.MethodGet, orderPath, nil, http.StatusOK)
	assert.EqualValues(t, 1, detail["total_cajas"])
	assert.Nil(t, detail["caja_activa_id"])

	status, pdf := call(t, srv, http.MethodGet, orderPath+"/picking-sheet.pdf", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	// Stock: the aisle A slot is below its minimum until replenished.
	status, raw = call(t, srv, http.MethodGet, "/api/v1/inventario/alertas", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "A-DERECHA-01-2")

	rep := callJSON(t, srv, http.MethodPost, "/api/v1/reposiciones", map[string]any{
		"location_id": w.locAisleA.String(), "cantidad_solicitada": 4,
	}, http.StatusCreated)
	assert.Equal(t, "PENDING", rep["estado"])
	repPath := "/api/v1/reposiciones/" + rep["id"].(string)
	callJSON(t, srv, http.MethodPut, repPath+"/iniciar", map[string]any{"ejecutor_id": w.operatorID.String()}, http.StatusOK)
	done := callJSON(t, srv, http.MethodPut, repPath+"/completar", map[string]any{}, http.StatusOK)
	assert.Equal(t, "COMPLETED", done["estado"])

	movs := callJSON(t, srv, http.MethodGet, "/api/v1/inventario/movimientos?location_id="+w.locAisleA.String(), nil, http.StatusOK)
	assert.EqualValues(t, 1, movs["total"])

	adj := callJSON(t, srv, http.MethodPatch, "/api/v1/ubicaciones/"+w.locAisleA.String()+"/stock",
		map[string]any{"delta": -2, "motivo": "recuento"}, http.StatusOK)
	assert.EqualValues(t, 3, adj["stock_actual"])

	ean := callJSON(t, srv, http.MethodGet, "/api/v1/ean/8400000000035", nil, http.StatusOK)
	assert.EqualValues(t, 3, ean["stock_total"])

	status, raw = call(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(string(raw), `koroshi_sms_picking_scans_total{channel="http",result="MAX_QUANTITY_REACHED"} 1`), "scan outcomes are exported")

	return w
}
