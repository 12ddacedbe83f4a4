package service

import (
	"sync"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pickingFixture struct {
	db     *gorm.DB
	svc    PickingService
	repos  repos
	m      *metrics.Metrics
	op     *model.Operator
	order  *model.Order
	camisa *model.ProductReference
	pantal *model.ProductReference
}

// newPickingFixture seeds an IN_PICKING order owned by OP001 with two lines:
// 2 × camisa at A-IZQUIERDA-01-1 and 1 × pantalón at B-IZQUIERDA-02-1.
func newPickingFixture(t *testing.T) *pickingFixture {
	t.Helper()
	db := newTestDB(t)
	r := newRepos(db)
	m := metrics.New()

	op := seedOperator(t, db, "OP001", true)
	camisa := seedProduct(t, db, "A1B2", "8400000000011")
	pantal := seedProduct(t, db, "C3D4", "8400000000028")
	locA := seedLocation(t, db, camisa, locSpec{pasillo: "A", ubicacion: "01", stock: 10})
	locB := seedLocation(t, db, pantal, locSpec{pasillo: "B", ubicacion: "02", stock: 10})
	order := seedOrder(t, db, "ORD-1001", model.StatusInPicking, op,
		lineFor(camisa, locA, 2),
		lineFor(pantal, locB, 1),
	)

	return &pickingFixture{
		db:     db,
		svc:    NewPickingService(r.orders, r.operators, r.history, nil, nil, m, ""),
		repos:  r,
		m:      m,
		op:     op,
		order:  order,
		camisa: camisa,
		pantal: pantal,
	}
}

func (f *pickingFixture) scan(t *testing.T, ean string) error {
	t.Helper()
	_, err := f.svc.Scan(t.Context(), f.op, dto.ScanRequest{NumeroOrden: f.order.NumeroOrden, EAN: ean}, ChannelHTTP)
	return err
}

// ── ResolveOperator ──────────────────────────────────────────────────────────

func TestResolveOperator(t *testing.T) {
	f := newPickingFixture(t)
	seedOperator(t, f.db, "OP009", false)

	op, err := f.svc.ResolveOperator(t.Context(), " op001 ")
	require.NoError(t, err)
	assert.Equal(t, f.op.ID, op.ID)

	_, err = f.svc.ResolveOperator(t.Context(), "OP404")
	requireCode(t, err, apierror.CodeOperatorNotFound)

	_, err = f.svc.ResolveOperator(t.Context(), "OP009")
	requireCode(t, err, apierror.CodeOperatorInactive)
}

// ── Scan ─────────────────────────────────────────────────────────────────────

func TestScan_PersistsProgressAndCompletesOrder(t *testing.T) {
	f := newPickingFixture(t)
	ctx := t.Context()

	conf, err := f.svc.Scan(ctx, f.op, dto.ScanRequest{
		NumeroOrden: "ORD-1001",
		EAN:         "8400000000011",
		Ubicacion:   "a-izquierda-01-1",
	}, ChannelHTTP)
	require.NoError(t, err)
	assert.Equal(t, 1, conf.CantidadActual)
	assert.Equal(t, model.LinePartial, conf.EstadoLinea)
	require.NotNil(t, conf.Ubicacion.Coincide)
	assert.True(t, *conf.Ubicacion.Coincide)
	assert.False(t, conf.OrderCompleted)

	require.NoError(t, f.scan(t, "8400000000011"))

	// Scanning by order_id hits the same order.
	conf, err = f.svc.Scan(ctx, f.op, dto.ScanRequest{
		OrderID: f.order.ID.String(),
		EAN:     "8400000000028",
	}, ChannelWebSocket)
	require.NoError(t, err)
	assert.True(t, conf.OrderCompleted)
	assert.Equal(t, 2, conf.ProgresoOrden.ItemsCompletados)
	assert.Equal(t, 100.0, conf.ProgresoOrden.ProgresoPct)

	stored, err := f.repos.orders.FindGraph(ctx, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalItems)
	assert.Equal(t, 2, stored.ItemsCompletados)
	assert.Equal(t, model.StatusInPicking, stored.Estado, "completion does not move the status")
	for _, l := range stored.Lines {
		assert.Equal(t, l.CantidadSolicitada, l.CantidadServida)
		assert.Equal(t, model.LineCompleted, l.Estado)
	}

	hist, err := f.repos.history.ListByOrder(ctx, f.order.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, model.AccionPickingDone, hist[0].Accion)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.m.ScansTotal.WithLabelValues(ChannelHTTP, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.ScansTotal.WithLabelValues(ChannelWebSocket, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.OrdersCompleted))
}

func TestScan_OverPickRejectedAndNothingPersisted(t *testing.T) {
	f := newPickingFixture(t)
	require.NoError(t, f.scan(t, "8400000000028"))

	err := f.scan(t, "8400000000028")
	requireCode(t, err, apierror.CodeMaxQuantityReached)

	stored, err := f.repos.orders.FindGraph(t.Context(), f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ItemsCompletados)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.m.ScansTotal.WithLabelValues(ChannelHTTP, apierror.CodeMaxQuantityReached)))
}

func TestScan_Rejections(t *testing.T) {
	f := newPickingFixture(t)
	ctx := t.Context()
	other := seedOperator(t, f.db, "OP002", true)
	pending := seedOrder(t, f.db, "ORD-2002", model.StatusPending, f.op, lineFor(f.camisa, nil, 1))

	cases := []struct {
		name string
		op   *model.Operator
		req  dto.ScanRequest
		code string
	}{
		{"sin orden", f.op, dto.ScanRequest{EAN: "8400000000011"}, apierror.CodeMissingOrderNumber},
		{"orden desconocida", f.op, dto.ScanRequest{NumeroOrden: "ORD-404", EAN: "8400000000011"}, apierror.CodeOrderNotFound},
		{"order_id inválido", f.op, dto.ScanRequest{OrderID: "no-uuid", EAN: "8400000000011"}, apierror.CodeInvalidRequest},
		{"otro operario", other, dto.ScanRequest{NumeroOrden: "ORD-1001", EAN: "8400000000011"}, apierror.CodeOrderNotAssigned},
		{"orden pendiente", f.op, dto.ScanRequest{NumeroOrden: pending.NumeroOrden, EAN: "8400000000011"}, apierror.CodeOrderWrongStatus},
		{"sin ean", f.op, dto.ScanRequest{NumeroOrden: "ORD-1001"}, apierror.CodeMissingEAN},
		{"ean ajeno", f.op, dto.ScanRequest{NumeroOrden: "ORD-1001", EAN: "0000000000000"}, apierror.CodeEanNotInOrder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Scan(ctx, tc.op, tc.req, ChannelHTTP)
			requireCode(t, err, tc.code)
		})
	}

	stored, err := f.repos.orders.FindGraph(ctx, f.order.ID)
	require.NoError(t, err)
	for _, l := range stored.Lines {
		assert.Zero(t, l.CantidadServida)
	}
}

func TestScan_ConcurrentScansNeverOverPick(t *testing.T) {
	db := newTestDB(t)
	r := newRepos(db)
	op := seedOperator(t, db, "OP001", true)
	p := seedProduct(t, db, "FF01", "8400000000035")
	order := seedOrder(t, db, "ORD-3003", model.StatusInPicking, op, lineFor(p, nil, 20))
	svc := NewPickingService(r.orders, r.operators, r.history, nil, nil, nil, "")

	const scans = 30
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Scan(t.Context(), op, dto.ScanRequest{NumeroOrden: "ORD-3003", EAN: "8400000000035"}, ChannelWebSocket)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			if apierror.CodeOf(err) == apierror.CodeMaxQuantityReached {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, ok)
	assert.Equal(t, scans-20, rejected)

	stored, err := r.orders.FindGraph(t.Context(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Lines[0].CantidadServida)
	assert.Equal(t, 1, stored.ItemsCompletados)
}
