package service

import (
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type packingFixture struct {
	db    *gorm.DB
	svc   PackingService
	repos repos
	op    *model.Operator
	p     *model.ProductReference
	loc   *model.ProductLocation
}

func newPackingFixture(t *testing.T) *packingFixture {
	t.Helper()
	db := newTestDB(t)
	r := newRepos(db)
	p := seedProduct(t, db, "REF-1", "8400000000011")
	return &packingFixture{
		db:    db,
		svc:   NewPackingService(r.orders, r.boxes, r.history, nil),
		repos: r,
		op:    seedOperator(t, db, "OP001", true),
		p:     p,
		loc:   seedLocation(t, db, p, locSpec{pasillo: "A", ubicacion: "01", stock: 10}),
	}
}

func (f *packingFixture) order(t *testing.T, numero string, estado model.OrderStatus, lines int) *model.Order {
	t.Helper()
	ls := make([]model.OrderLine, 0, lines)
	for range lines {
		ls = append(ls, lineFor(f.p, f.loc, 1))
	}
	return seedOrder(t, f.db, numero, estado, f.op, ls...)
}

func (f *packingFixture) reload(t *testing.T, id uuid.UUID) *model.Order {
	t.Helper()
	o, err := f.repos.orders.FindByID(t.Context(), id)
	require.NoError(t, err)
	return o
}

// ── AbrirCaja ────────────────────────────────────────────────────────────────

func TestAbrirCaja_StatusGate(t *testing.T) {
	f := newPackingFixture(t)

	for _, estado := range []model.OrderStatus{model.StatusPending, model.StatusAssigned, model.StatusPacking, model.StatusShipped, model.StatusCancelled} {
		o := f.order(t, "G-"+estado.String(), estado, 1)
		_, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
		requireCode(t, err, apierror.CodeOrderWrongStatus)
	}
	for _, estado := range []model.OrderStatus{model.StatusInPicking, model.StatusPicked} {
		o := f.order(t, "G-"+estado.String(), estado, 1)
		box, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
		require.NoError(t, err, estado.String())
		assert.Equal(t, "OPEN", box.Estado)
	}

	_, err := f.svc.AbrirCaja(t.Context(), uuid.New(), dto.AbrirCajaRequest{})
	requireCode(t, err, apierror.CodeOrderNotFound)
}

func TestAbrirCaja_OneOpenBoxAndSequentialCodes(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1001", model.StatusInPicking, 2)
	notas := "  frágil  "

	first, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{Notas: &notas})
	require.NoError(t, err)
	assert.Equal(t, 1, first.NumeroCaja)
	assert.Equal(t, "ORD-1001-BOX-001", first.CodigoCaja)
	require.NotNil(t, first.Operario)
	assert.Equal(t, "OP001", first.Operario.CodigoOperario)
	require.NotNil(t, first.Notas)
	assert.Equal(t, "frágil", *first.Notas)

	_, err = f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	requireCode(t, err, apierror.CodeBoxAlreadyOpen)

	got := f.reload(t, o.ID)
	assert.Equal(t, 1, got.TotalCajas)
	require.NotNil(t, got.CajaActivaID)
	assert.Equal(t, first.ID, got.CajaActivaID.String())

	_, err = f.svc.CerrarCaja(t.Context(), first.CodigoCaja, dto.CerrarCajaRequest{})
	require.NoError(t, err)
	assert.Nil(t, f.reload(t, o.ID).CajaActivaID)

	second, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.NumeroCaja)
	assert.Equal(t, "ORD-1001-BOX-002", second.CodigoCaja)

	got = f.reload(t, o.ID)
	assert.Equal(t, 2, got.TotalCajas)
	require.NotNil(t, got.CajaActivaID)
	assert.Equal(t, second.ID, got.CajaActivaID.String())

	list, err := f.svc.ListarCajas(t.Context(), o.ID, dto.CajaFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"CLOSED", "OPEN"}, []string{list[0].Estado, list[1].Estado})

	open, err := f.svc.ListarCajas(t.Context(), o.ID, dto.CajaFilter{Estado: "open"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	_, err = f.svc.ListarCajas(t.Context(), uuid.New(), dto.CajaFilter{})
	requireCode(t, err, apierror.CodeOrderNotFound)
}

func TestPacking_WritesHistory(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1002", model.StatusPicked, 1)

	box, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)
	_, err = f.svc.EmpacarLinea(t.Context(), uuid.MustParse(box.ID), dto.EmpacarLineaRequest{OrderLineID: o.Lines[0].ID.String()})
	require.NoError(t, err)
	_, err = f.svc.CerrarCaja(t.Context(), box.CodigoCaja, dto.CerrarCajaRequest{})
	require.NoError(t, err)

	rows, err := f.repos.history.ListByOrder(t.Context(), o.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, model.AccionBoxOpened, rows[0].Accion)
	assert.Equal(t, model.StatusPicked, rows[0].EstadoNuevo)
	require.NotNil(t, rows[0].Notas)
	assert.Equal(t, "Caja #1 abierta. Código: ORD-1002-BOX-001", *rows[0].Notas)

	assert.Equal(t, model.AccionBoxClosed, rows[1].Accion)
	require.NotNil(t, rows[1].Notas)
	assert.Equal(t, "Caja #1 cerrada. 1 items empacados.", *rows[1].Notas)
}

// ── EmpacarLinea ─────────────────────────────────────────────────────────────

func TestEmpacarLinea_Counts(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1003", model.StatusInPicking, 2)
	other := f.order(t, "1004", model.StatusInPicking, 1)
	l1, l2 := o.Lines[0].ID.String(), o.Lines[1].ID.String()

	box, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)
	boxID := uuid.MustParse(box.ID)

	resp, err := f.svc.EmpacarLinea(t.Context(), boxID, dto.EmpacarLineaRequest{OrderLineID: l1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalItems)

	// Packing the same line twice is a no-op.
	resp, err = f.svc.EmpacarLinea(t.Context(), boxID, dto.EmpacarLineaRequest{OrderLineID: l1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalItems)

	resp, err = f.svc.EmpacarLinea(t.Context(), boxID, dto.EmpacarLineaRequest{OrderLineID: l2})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalItems)

	_, err = f.svc.EmpacarLinea(t.Context(), boxID, dto.EmpacarLineaRequest{OrderLineID: other.Lines[0].ID.String()})
	requireCode(t, err, apierror.CodeLineNotFound)

	_, err = f.svc.EmpacarLinea(t.Context(), uuid.New(), dto.EmpacarLineaRequest{OrderLineID: l1})
	requireCode(t, err, apierror.CodeBoxNotFound)

	_, err = f.svc.EmpacarLinea(t.Context(), boxID, dto.EmpacarLineaRequest{OrderLineID: "not-a-uuid"})
	requireCode(t, err, apierror.CodeInvalidRequest)

	detail, err := f.svc.DetalleCaja(t.Context(), boxID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	for _, it := range detail.Items {
		require.NotNil(t, it.PackingBoxID)
		assert.Equal(t, box.ID, *it.PackingBoxID)
		assert.NotNil(t, it.FechaEmpacado)
	}
}

func TestEmpacarLinea_ClosedBoxesStaySealed(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1005", model.StatusInPicking, 2)
	l1 := o.Lines[0].ID.String()

	first, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)
	_, err = f.svc.EmpacarLinea(t.Context(), uuid.MustParse(first.ID), dto.EmpacarLineaRequest{OrderLineID: l1})
	require.NoError(t, err)
	_, err = f.svc.CerrarCaja(t.Context(), first.CodigoCaja, dto.CerrarCajaRequest{})
	require.NoError(t, err)

	// A closed box takes nothing more.
	_, err = f.svc.EmpacarLinea(t.Context(), uuid.MustParse(first.ID), dto.EmpacarLineaRequest{OrderLineID: o.Lines[1].ID.String()})
	requireCode(t, err, apierror.CodeBoxNotOpen)

	// Nor gives anything back.
	second, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)
	_, err = f.svc.EmpacarLinea(t.Context(), uuid.MustParse(second.ID), dto.EmpacarLineaRequest{OrderLineID: l1})
	requireCode(t, err, apierror.CodeBoxNotOpen)

	sealed, err := f.svc.DetalleCaja(t.Context(), uuid.MustParse(first.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, sealed.TotalItems)
	require.Len(t, sealed.Items, 1)
}

// ── CerrarCaja / ActualizarCaja ──────────────────────────────────────────────

func TestCerrarCaja(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1007", model.StatusInPicking, 1)
	notas := "Cliente VIP"

	box, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{Notas: &notas})
	require.NoError(t, err)

	peso := decimal.RequireFromString("2.350")
	dims := "40x30x20"
	cierre := "precinto rojo"
	closed, err := f.svc.CerrarCaja(t.Context(), " "+box.CodigoCaja+" ", dto.CerrarCajaRequest{
		PesoKg: &peso, Dimensiones: &dims, Notas: &cierre,
	})
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", closed.Estado)
	require.NotNil(t, closed.FechaCierre)
	require.NotNil(t, closed.PesoKg)
	assert.True(t, peso.Equal(*closed.PesoKg))
	assert.Equal(t, "40x30x20", *closed.Dimensiones)
	assert.Equal(t, "Cliente VIP | Cierre: precinto rojo", *closed.Notas)

	_, err = f.svc.CerrarCaja(t.Context(), box.CodigoCaja, dto.CerrarCajaRequest{})
	requireCode(t, err, apierror.CodeBoxNotOpen)

	_, err = f.svc.CerrarCaja(t.Context(), "ORD-1007-BOX-099", dto.CerrarCajaRequest{})
	requireCode(t, err, apierror.CodeBoxNotFound)
}

func TestCerrarCaja_RejectsNegativeWeight(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1008", model.StatusInPicking, 1)
	box, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)

	peso := decimal.NewFromInt(-1)
	_, err = f.svc.CerrarCaja(t.Context(), box.CodigoCaja, dto.CerrarCajaRequest{PesoKg: &peso})
	requireCode(t, err, apierror.CodeInvalidRequest)

	stored, err := f.repos.boxes.FindByCodigo(t.Context(), box.CodigoCaja)
	require.NoError(t, err)
	assert.Equal(t, model.BoxOpen, stored.Estado)
}

func TestActualizarCaja(t *testing.T) {
	f := newPackingFixture(t)
	o := f.order(t, "1009", model.StatusPicked, 1)
	box, err := f.svc.AbrirCaja(t.Context(), o.ID, dto.AbrirCajaRequest{})
	require.NoError(t, err)
	boxID := uuid.MustParse(box.ID)

	peso := decimal.RequireFromString("1.5")
	dims := " 30x20x10 "
	resp, err := f.svc.ActualizarCaja(t.Context(), boxID, dto.ActualizarCajaRequest{PesoKg: &peso, Dimensiones: &dims})
	require.NoError(t, err)
	assert.Equal(t, "30x20x10", *resp.Dimensiones)
	assert.Equal(t, "OPEN", resp.Estado)

	// Details stay editable after close.
	_, err = f.svc.CerrarCaja(t.Context(), box.CodigoCaja, dto.CerrarCajaRequest{})
	require.NoError(t, err)
	empty := ""
	resp, err = f.svc.ActualizarCaja(t.Context(), boxID, dto.ActualizarCajaRequest{Dimensiones: &empty})
	require.NoError(t, err)
	assert.Nil(t, resp.Dimensiones)
	assert.Equal(t, "CLOSED", resp.Estado)

	stored, err := f.repos.boxes.FindByID(t.Context(), boxID)
	require.NoError(t, err)
	require.NotNil(t, stored.PesoKg)
	assert.True(t, peso.Equal(*stored.PesoKg))
	assert.Nil(t, stored.Dimensiones)

	neg := decimal.NewFromInt(-2)
	_, err = f.svc.ActualizarCaja(t.Context(), boxID, dto.ActualizarCajaRequest{PesoKg: &neg})
	requireCode(t, err, apierror.CodeInvalidRequest)

	_, err = f.svc.ActualizarCaja(t.Context(), uuid.New(), dto.ActualizarCajaRequest{})
	requireCode(t, err, apierror.CodeBoxNotFound)
	_, err = f.svc.DetalleCaja(t.Context(), uuid.New())
	requireCode(t, err, apierror.CodeBoxNotFound)
}
