// cmd/seed loads a small demo warehouse: operators, products with picking
// locations in three aisles, and a few PENDING orders. Re-running it skips
// anything that already exists.
//
// Uso: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/config"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type seedProduct struct {
	ref, nombre, color, talla, ean string
	locs                           []model.LocationSpec
}

var operators = []model.Operator{
	{CodigoOperario: "OP001", Nombre: "Ana Torres", Activo: true},
	{CodigoOperario: "OP002", Nombre: "Luis Pardo", Activo: true},
	{CodigoOperario: "OP003", Nombre: "Marta Gil", Activo: false},
}

var products = []seedProduct{
	{ref: "A1B2C3", nombre: "Camiseta basica", color: "Blanco", talla: "M", ean: "8400000000011",
		locs: []model.LocationSpec{{Pasillo: "A", Lado: "IZQUIERDA", Ubicacion: "01", Altura: 1, Prioridad: 1, StockActual: 40, StockMinimo: 10}}},
	{ref: "A1B2C4", nombre: "Camiseta basica", color: "Blanco", talla: "L", ean: "8400000000028",
		locs: []model.LocationSpec{{Pasillo: "A", Lado: "DERECHA", Ubicacion: "02", Altura: 2, Prioridad: 2, StockActual: 4, StockMinimo: 10}}},
	{ref: "B7F001", nombre: "Pantalon chino", color: "Beige", talla: "42", ean: "8400000000035",
		locs: []model.LocationSpec{
			{Pasillo: "B", Lado: "IZQUIERDA", Ubicacion: "05", Altura: 1, Prioridad: 1, StockActual: 12, StockMinimo: 5},
			{Pasillo: "C", Lado: "DERECHA", Ubicacion: "11", Altura: 3, Prioridad: 3, StockActual: 30, StockMinimo: 0},
		}},
	{ref: "C0FFEE", nombre: "Sudadera capucha", color: "Gris", talla: "S", ean: "8400000000042",
		locs: []model.LocationSpec{{Pasillo: "C", Lado: "IZQUIERDA", Ubicacion: "03", Altura: 2, Prioridad: 2, StockActual: 0, StockMinimo: 3}}},
}

type seedOrder struct {
	numero, cliente string
	prioridad       model.OrderPriority
	lines           []seedLine
}

type seedLine struct {
	ean string
	qty int
}

var orders = []seedOrder{
	{numero: "ORD-0001", cliente: "Tienda Centro", prioridad: model.PriorityNormal,
		lines: []seedLine{{"8400000000011", 3}, {"8400000000035", 1}}},
	{numero: "ORD-0002", cliente: "Tienda Norte", prioridad: model.PriorityHigh,
		lines: []seedLine{{"8400000000028", 6}, {"8400000000042", 2}, {"8400000000011", 1}}},
	{numero: "ORD-0003", cliente: "Outlet Sur", prioridad: model.PriorityUrgent,
		lines: []seedLine{{"8400000000035", 2}}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("demo warehouse ready")
}

func seed(ctx context.Context, db *gorm.DB) error {
	opRepo := repository.NewOperatorRepository(db)
	prodRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	for i := range operators {
		op := operators[i]
		if _, err := opRepo.FindByCodigo(ctx, op.CodigoOperario); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("operator %s: %w", op.CodigoOperario, err)
		}
		if err := opRepo.Create(ctx, &op); err != nil {
			return fmt.Errorf("operator %s: %w", op.CodigoOperario, err)
		}
		log.Info().Str("codigo", op.CodigoOperario).Msg("operator created")
	}

	byEAN := make(map[string]*model.ProductReference)
	for _, sp := range products {
		_, err := prodRepo.FindByReferencia(ctx, sp.ref)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := createProduct(ctx, prodRepo, sp); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("product %s: %w", sp.ref, err)
		}
		// FindByEAN preloads the active locations by priority.
		p, err := prodRepo.FindByEAN(ctx, sp.ean)
		if err != nil {
			return fmt.Errorf("product %s: %w", sp.ref, err)
		}
		byEAN[sp.ean] = p
	}

	for _, so := range orders {
		if _, err := orderRepo.FindIDByNumero(ctx, so.numero); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", so.numero, err)
		}
		o := &model.Order{
			NumeroOrden:   so.numero,
			CodigoCliente: so.cliente[:6],
			NombreCliente: so.cliente,
			Prioridad:     so.prioridad,
		}
		for _, sl := range so.lines {
			p := byEAN[sl.ean]
			line := model.OrderLine{
				ProductReferenceID: &p.ID,
				EAN:                sl.ean,
				NombreProducto:     p.NombreProducto,
				CantidadSolicitada: sl.qty,
			}
			if len(p.Locations) > 0 {
				line.ProductLocationID = &p.Locations[0].ID
			}
			o.Lines = append(o.Lines, line)
		}
		o.RecountItems()
		if err := orderRepo.Create(ctx, o); err != nil {
			return fmt.Errorf("order %s: %w", so.numero, err)
		}
		log.Info().Str("numero", so.numero).Int("lines", len(o.Lines)).Msg("order created")
	}
	return nil
}

func createProduct(ctx context.Context, repo repository.ProductRepository, sp seedProduct) error {
	ean := sp.ean
	p := &model.ProductReference{
		Referencia: sp.ref, NombreProducto: sp.nombre, ColorID: sp.ref[:2],
		Color: sp.color, Talla: sp.talla, EAN: &ean, Activo: true,
	}
	if err := repo.Create(ctx, p); err != nil {
		return fmt.Errorf("product %s: %w", sp.ref, err)
	}
	for _, spec := range sp.locs {
		spec.ProductID = p.ID
		loc, err := model.NewProductLocation(spec)
		if err != nil {
			return fmt.Errorf("location for %s: %w", sp.ref, err)
		}
		if err := repo.CreateLocation(ctx, loc); err != nil {
			return fmt.Errorf("location %s: %w", loc.CodigoUbicacion, err)
		}
	}
	log.Info().Str("referencia", sp.ref).Int("locations", len(sp.locs)).Msg("product created")
	return nil
}
