package service

import (
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(t *testing.T) (ProductService, repos) {
	t.Helper()
	r := newRepos(newTestDB(t))
	// A nil cache client disables caching; lookups go straight to the DB.
	return NewProductService(r.products, nil), r
}

func crearProductoReq(ref, ean string) dto.CrearProductoRequest {
	return dto.CrearProductoRequest{
		Referencia:     ref,
		NombreProducto: "Camiseta básica",
		ColorID:        "001",
		Color:          "Blanco",
		Talla:          "M",
		PosicionTalla:  3,
		EAN:            &ean,
	}
}

func TestCrearProducto(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := t.Context()

	p, err := svc.Crear(ctx, crearProductoReq("a1b2", "8400000000011"))
	require.NoError(t, err)
	assert.Equal(t, "A1B2", p.Referencia)
	assert.True(t, p.Activo)
	assert.Zero(t, p.StockTotal)

	_, err = svc.Crear(ctx, crearProductoReq("A1B2", "8400000000099"))
	requireCode(t, err, apierror.CodeDuplicateEntity)

	_, err = svc.Crear(ctx, crearProductoReq("FFFF", "8400000000011"))
	requireCode(t, err, apierror.CodeDuplicateEntity)

	list, err := svc.Listar(ctx, dto.ProductoFilter{Nombre: "básica"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestUbicaciones(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := t.Context()
	p, err := svc.Crear(ctx, crearProductoReq("A1B2", "8400000000011"))
	require.NoError(t, err)
	productID := uuid.MustParse(p.ID)

	loc, err := svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "A", Lado: "izquierda", Ubicacion: "12", Altura: 2, StockActual: 8, StockMinimo: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "A-IZQUIERDA-12-2", loc.CodigoUbicacion)
	assert.Equal(t, 3, loc.Prioridad, "prioridad defaults to 3")
	assert.True(t, loc.Activa)

	_, err = svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "A", Lado: "IZQUIERDA", Ubicacion: "12", Altura: 2,
	})
	requireCode(t, err, apierror.CodeDuplicateLocation)

	_, err = svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "A", Lado: "ARRIBA", Ubicacion: "12", Altura: 2,
	})
	requireCode(t, err, apierror.CodeInvalidLocation)

	_, err = svc.CrearUbicacion(ctx, uuid.New(), dto.CrearUbicacionRequest{
		Pasillo: "A", Lado: "DERECHA", Ubicacion: "01", Altura: 1,
	})
	requireCode(t, err, apierror.CodeProductNotFound)

	second, err := svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "C", Lado: "DERECHA", Ubicacion: "03", Altura: 1, Prioridad: 1, StockActual: 5,
	})
	require.NoError(t, err)

	ean, err := svc.ConsultarEAN(ctx, "8400000000011")
	require.NoError(t, err)
	assert.Equal(t, 13, ean.StockTotal)
	require.Len(t, ean.Ubicaciones, 2)
	assert.Equal(t, second.CodigoUbicacion, ean.Ubicaciones[0].CodigoUbicacion, "highest priority first")

	// Deactivated slots drop out of the lookup.
	require.NoError(t, svc.DesactivarUbicacion(ctx, uuid.MustParse(loc.ID)))
	ean, err = svc.ConsultarEAN(ctx, "8400000000011")
	require.NoError(t, err)
	assert.Equal(t, 5, ean.StockTotal)
	require.Len(t, ean.Ubicaciones, 1)

	all, err := svc.ListarUbicaciones(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = svc.DesactivarUbicacion(ctx, uuid.New())
	requireCode(t, err, apierror.CodeLocationNotFound)
}

func TestConsultarEAN_Errors(t *testing.T) {
	svc, _ := newProductService(t)

	_, err := svc.ConsultarEAN(t.Context(), "  ")
	requireCode(t, err, apierror.CodeMissingEAN)

	_, err = svc.ConsultarEAN(t.Context(), "0000000000000")
	requireCode(t, err, apierror.CodeProductNotFound)
}

func TestResumenStock(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := t.Context()
	p, err := svc.Crear(ctx, crearProductoReq("A1B2", "8400000000011"))
	require.NoError(t, err)
	productID := uuid.MustParse(p.ID)

	empty, err := svc.ResumenStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, model.StockStatusOut, empty.Estado)
	assert.Empty(t, empty.Ubicaciones)
	assert.False(t, empty.NecesitaReposicion)

	low, err := svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "A", Lado: "IZQUIERDA", Ubicacion: "01", Altura: 1, StockActual: 2, StockMinimo: 5,
	})
	require.NoError(t, err)
	_, err = svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "B", Lado: "DERECHA", Ubicacion: "02", Altura: 1, StockActual: 5, StockMinimo: 5,
	})
	require.NoError(t, err)
	gone, err := svc.CrearUbicacion(ctx, productID, dto.CrearUbicacionRequest{
		Pasillo: "C", Lado: "DERECHA", Ubicacion: "03", Altura: 1, StockActual: 0, StockMinimo: 9,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DesactivarUbicacion(ctx, uuid.MustParse(gone.ID)))

	resumen, err := svc.ResumenStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, "A1B2", resumen.SKU, "falls back to the reference without a SKU")
	assert.Equal(t, 7, resumen.StockTotal)
	assert.Equal(t, model.StockStatusLow, resumen.Estado)
	assert.Equal(t, 2, resumen.TotalUbicaciones, "inactive locations are ignored")
	assert.Equal(t, 1, resumen.UbicacionesBajoMinimo, "a slot at its minimum does not need restock")
	assert.True(t, resumen.NecesitaReposicion)
	for _, u := range resumen.Ubicaciones {
		assert.Equal(t, u.CodigoUbicacion == low.CodigoUbicacion, u.NecesitaReposicion, u.CodigoUbicacion)
	}

	_, err = svc.ResumenStock(ctx, uuid.New())
	requireCode(t, err, apierror.CodeProductNotFound)
}
