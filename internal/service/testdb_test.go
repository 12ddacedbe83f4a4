package service

import (
	"fmt"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with every model
// migrated. One connection keeps writers serialized the way postgres row
// locks would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type repos struct {
	orders      repository.OrderRepository
	operators   repository.OperatorRepository
	history     repository.OrderHistoryRepository
	products    repository.ProductRepository
	movimientos repository.MovimientoStockRepository
	reposicion  repository.ReposicionRepository
	boxes       repository.PackingBoxRepository
}

func newRepos(db *gorm.DB) repos {
	return repos{
		orders:      repository.NewOrderRepository(db),
		operators:   repository.NewOperatorRepository(db),
		history:     repository.NewOrderHistoryRepository(db),
		products:    repository.NewProductRepository(db),
		movimientos: repository.NewMovimientoStockRepository(db),
		reposicion:  repository.NewReposicionRepository(db),
		boxes:       repository.NewPackingBoxRepository(db),
	}
}

// ── seeders ──────────────────────────────────────────────────────────────────

func seedOperator(t *testing.T, db *gorm.DB, codigo string, activo bool) *model.Operator {
	t.Helper()
	op := &model.Operator{CodigoOperario: codigo, Nombre: "Operario " + codigo, Activo: activo}
	require.NoError(t, db.Create(op).Error)
	return op
}

func seedProduct(t *testing.T, db *gorm.DB, referencia, ean string) *model.ProductReference {
	t.Helper()
	p := &model.ProductReference{
		Referencia:     referencia,
		NombreProducto: "Camiseta " + referencia,
		ColorID:        "001",
		Color:          "Azul",
		Talla:          "M",
		EAN:            &ean,
		Activo:         true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

type locSpec struct {
	pasillo   string
	ubicacion string
	altura    int
	prioridad int
	stock     int
	minimo    int
}

func seedLocation(t *testing.T, db *gorm.DB, p *model.ProductReference, s locSpec) *model.ProductLocation {
	t.Helper()
	if s.prioridad == 0 {
		s.prioridad = 3
	}
	if s.altura == 0 {
		s.altura = 1
	}
	loc, err := model.NewProductLocation(model.LocationSpec{
		ProductID:   p.ID,
		Pasillo:     s.pasillo,
		Lado:        "IZQUIERDA",
		Ubicacion:   s.ubicacion,
		Altura:      s.altura,
		Prioridad:   s.prioridad,
		StockActual: s.stock,
		StockMinimo: s.minimo,
	})
	require.NoError(t, err)
	require.NoError(t, db.Omit("Product").Create(loc).Error)
	loc.Product = p
	return loc
}

func lineFor(p *model.ProductReference, loc *model.ProductLocation, qty int) model.OrderLine {
	l := model.OrderLine{CantidadSolicitada: qty, NombreProducto: "snapshot"}
	if p != nil {
		l.ProductReferenceID = &p.ID
		l.EAN = *p.EAN
	}
	if loc != nil {
		l.ProductLocationID = &loc.ID
	}
	return l
}

func seedOrder(t *testing.T, db *gorm.DB, numero string, estado model.OrderStatus, op *model.Operator, lines ...model.OrderLine) *model.Order {
	t.Helper()
	o := &model.Order{
		NumeroOrden:   numero,
		CodigoCliente: "C001",
		NombreCliente: "Tienda Centro",
		Estado:        estado,
		Lines:         lines,
	}
	if op != nil {
		o.OperatorID = &op.ID
	}
	o.RecountItems()
	require.NoError(t, repository.NewOrderRepository(db).Create(t.Context(), o))
	return o
}

func requireCode(t *testing.T, err error, code string) *apierror.Error {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := apierror.As(err)
	require.True(t, ok, "expected *apierror.Error, got %T: %v", err, err)
	require.Equal(t, code, apiErr.Code, apiErr.Message)
	return apiErr
}
