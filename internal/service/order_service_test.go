package service

import (
	"os"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db    *gorm.DB
	svc   OrderService
	repos repos
	m     *metrics.Metrics
	op    *model.Operator
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	r := newRepos(db)
	m := metrics.New()
	return &orderFixture{
		db:    db,
		svc:   NewOrderService(r.orders, r.operators, r.history, nil, nil, m, t.TempDir()),
		repos: r,
		m:     m,
		op:    seedOperator(t, db, "OP001", true),
	}
}

// ── AssignOperator ───────────────────────────────────────────────────────────

func TestAssignOperator_PendingBecomesAssigned(t *testing.T) {
	f := newOrderFixture(t)
	ctx := t.Context()
	order := seedOrder(t, f.db, "ORD-1", model.StatusPending, nil)
	notas := "turno mañana"

	resp, err := f.svc.AssignOperator(ctx, order.ID, dto.AssignOperatorRequest{OperatorID: f.op.ID.String(), Notas: &notas})
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Estado)
	require.NotNil(t, resp.Operario)
	assert.Equal(t, "OP001", resp.Operario.CodigoOperario)
	assert.NotNil(t, resp.FechaAsignacion)

	hist, err := f.svc.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, model.AccionAssignOperator, hist[0].Accion)
	require.NotNil(t, hist[0].EstadoAnterior)
	assert.Equal(t, "PENDING", *hist[0].EstadoAnterior)
	assert.Equal(t, "ASSIGNED", hist[0].EstadoNuevo)
	assert.Equal(t, &notas, hist[0].Notas)
}

func TestAssignOperator_ReassignKeepsStatus(t *testing.T) {
	f := newOrderFixture(t)
	other := seedOperator(t, f.db, "OP002", true)
	order := seedOrder(t, f.db, "ORD-1", model.StatusAssigned, f.op)

	resp, err := f.svc.AssignOperator(t.Context(), order.ID, dto.AssignOperatorRequest{OperatorID: other.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Estado)
	assert.Equal(t, "OP002", resp.Operario.CodigoOperario)
}

func TestAssignOperator_Rejections(t *testing.T) {
	f := newOrderFixture(t)
	ctx := t.Context()
	inactive := seedOperator(t, f.db, "OP009", false)
	pending := seedOrder(t, f.db, "ORD-1", model.StatusPending, nil)
	picking := seedOrder(t, f.db, "ORD-2", model.StatusInPicking, f.op)
	shipped := seedOrder(t, f.db, "ORD-3", model.StatusShipped, f.op)

	_, err := f.svc.AssignOperator(ctx, pending.ID, dto.AssignOperatorRequest{OperatorID: inactive.ID.String()})
	requireCode(t, err, apierror.CodeOperatorInactive)

	_, err = f.svc.AssignOperator(ctx, pending.ID, dto.AssignOperatorRequest{OperatorID: uuid.NewString()})
	requireCode(t, err, apierror.CodeOperatorNotFound)

	_, err = f.svc.AssignOperator(ctx, uuid.New(), dto.AssignOperatorRequest{OperatorID: f.op.ID.String()})
	requireCode(t, err, apierror.CodeOrderNotFound)

	apiErr := requireCodeOf(t, f.svc, picking.ID, f.op.ID)
	assert.True(t, apiErr.CanRetry)

	apiErr = requireCodeOf(t, f.svc, shipped.ID, f.op.ID)
	assert.False(t, apiErr.CanRetry, "a shipped order never becomes assignable")

	stored, err := f.repos.orders.FindByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Estado)
	assert.Nil(t, stored.OperatorID)
}

func requireCodeOf(t *testing.T, svc OrderService, orderID, operatorID uuid.UUID) *apierror.Error {
	t.Helper()
	_, err := svc.AssignOperator(t.Context(), orderID, dto.AssignOperatorRequest{OperatorID: operatorID.String()})
	return requireCode(t, err, apierror.CodeOrderWrongStatus)
}

// ── ChangeStatus ─────────────────────────────────────────────────────────────

func TestChangeStatus_ForwardAndCancel(t *testing.T) {
	f := newOrderFixture(t)
	ctx := t.Context()
	order := seedOrder(t, f.db, "ORD-1", model.StatusAssigned, f.op)

	resp, err := f.svc.ChangeStatus(ctx, order.ID, dto.ChangeStatusRequest{Estado: "IN_PICKING"})
	require.NoError(t, err)
	assert.Equal(t, "IN_PICKING", resp.Estado)
	assert.NotNil(t, resp.FechaInicioPicking)

	_, err = f.svc.ChangeStatus(ctx, order.ID, dto.ChangeStatusRequest{Estado: "READY"})
	requireCode(t, err, apierror.CodeInvalidTransition)

	resp, err = f.svc.ChangeStatus(ctx, order.ID, dto.ChangeStatusRequest{Estado: "CANCELLED"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Estado)
	assert.NotNil(t, resp.FechaCancelacion)

	_, err = f.svc.ChangeStatus(ctx, order.ID, dto.ChangeStatusRequest{Estado: "PICKED"})
	requireCode(t, err, apierror.CodeInvalidTransition)

	hist, err := f.svc.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	acciones := []string{hist[0].Accion, hist[1].Accion}
	assert.ElementsMatch(t, []string{model.AccionStatusChange, model.AccionCancel}, acciones)
}

func TestChangeStatus_InPickingRequiresOperator(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f.db, "ORD-1", model.StatusAssigned, nil)

	_, err := f.svc.ChangeStatus(t.Context(), order.ID, dto.ChangeStatusRequest{Estado: "IN_PICKING"})
	requireCode(t, err, apierror.CodeInvalidTransition)
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	f := newOrderFixture(t)
	order := seedOrder(t, f.db, "ORD-1", model.StatusPending, nil)

	_, err := f.svc.ChangeStatus(t.Context(), order.ID, dto.ChangeStatusRequest{Estado: "LOST"})
	requireCode(t, err, apierror.CodeInvalidRequest)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func TestListAndDetail(t *testing.T) {
	f := newOrderFixture(t)
	ctx := t.Context()
	p := seedProduct(t, f.db, "AA01", "8400000000011")
	loc := seedLocation(t, f.db, p, locSpec{pasillo: "A", ubicacion: "01", stock: 4})
	seedOrder(t, f.db, "ORD-1", model.StatusPending, nil, lineFor(p, loc, 3))
	seedOrder(t, f.db, "ORD-2", model.StatusAssigned, f.op)
	seedOrder(t, f.db, "ORD-3", model.StatusPending, nil)

	list, err := f.svc.List(ctx, dto.OrderFilter{Estado: "PENDING"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
	assert.Equal(t, 1, list.TotalPages)

	list, err = f.svc.List(ctx, dto.OrderFilter{OperatorID: f.op.ID.String()})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "ORD-2", list.Data[0].NumeroOrden)

	id, err := f.repos.orders.FindIDByNumero(ctx, "ORD-1")
	require.NoError(t, err)
	detail, err := f.svc.Detail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.TotalItems)
	require.Len(t, detail.Lineas, 1)
	line := detail.Lineas[0]
	assert.Equal(t, 3, line.CantidadPendiente)
	require.NotNil(t, line.Ubicacion)
	assert.Equal(t, "A-IZQUIERDA-01-1", *line.Ubicacion)
	require.NotNil(t, line.StockDisponible)
	assert.Equal(t, 4, *line.StockDisponible)

	_, err = f.svc.Detail(ctx, uuid.New())
	requireCode(t, err, apierror.CodeOrderNotFound)
	_, err = f.svc.History(ctx, uuid.New())
	requireCode(t, err, apierror.CodeOrderNotFound)
}

// ── Route, validation and sheet ──────────────────────────────────────────────

func TestOptimizeRouteAndValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := t.Context()
	p1 := seedProduct(t, f.db, "AA01", "8400000000011")
	p2 := seedProduct(t, f.db, "BB02", "8400000000028")
	p3 := seedProduct(t, f.db, "CC03", "8400000000035")
	locB := seedLocation(t, f.db, p1, locSpec{pasillo: "B", ubicacion: "03", stock: 10})
	locA := seedLocation(t, f.db, p2, locSpec{pasillo: "A", ubicacion: "07", stock: 1})
	order := seedOrder(t, f.db, "ORD-9", model.StatusPending, nil,
		lineFor(p1, locB, 2),
		lineFor(p2, locA, 5),
		lineFor(p3, nil, 1),
	)

	route, err := f.svc.OptimizeRoute(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), route.OrderID)
	assert.Equal(t, "ORD-9", route.NumeroOrden)
	assert.Equal(t, 2, route.TotalStops)
	assert.Equal(t, []string{"A", "B"}, route.AislesToVisit)
	require.Len(t, route.PickingRoute, 2)
	assert.Equal(t, "A-IZQUIERDA-07-1", route.PickingRoute[0].Ubicacion)
	assert.Equal(t, 1, route.Warnings.LinesWithoutLocation)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.RoutesBuilt))

	val, err := f.svc.StockValidation(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", val.NumeroOrden)
	assert.False(t, val.CanComplete)
	assert.Equal(t, 1, val.Summary.OK)
	assert.Equal(t, 1, val.Summary.InsufficientStock)
	assert.Equal(t, 1, val.Summary.NoLocation)

	path, err := f.svc.PickingSheet(ctx, order.ID)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = f.svc.OptimizeRoute(ctx, uuid.New())
	requireCode(t, err, apierror.CodeOrderNotFound)
}
