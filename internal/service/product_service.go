package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProductService covers the product catalog and its shelf locations.
type ProductService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	// ConsultarEAN is the PDA barcode lookup; answers are cached in Redis.
	ConsultarEAN(ctx context.Context, ean string) (*dto.ConsultaEANResponse, error)

	CrearUbicacion(ctx context.Context, productID uuid.UUID, req dto.CrearUbicacionRequest) (*dto.UbicacionResponse, error)
	ListarUbicaciones(ctx context.Context, productID uuid.UUID) ([]dto.UbicacionResponse, error)
	DesactivarUbicacion(ctx context.Context, locationID uuid.UUID) error
	// ResumenStock totals active locations and flags those below their minimum.
	ResumenStock(ctx context.Context, productID uuid.UUID) (*dto.ResumenStockResponse, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache *infra.JSONCache
}

func NewProductService(repo repository.ProductRepository, cache *infra.JSONCache) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	referencia := strings.ToUpper(strings.TrimSpace(req.Referencia))
	if _, err := s.repo.FindByReferencia(ctx, referencia); err == nil {
		return nil, apierror.DuplicateEntity("Ya existe un producto con referencia %s", referencia)
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("find product: %w", err)
	}

	p := &model.ProductReference{
		Referencia:       referencia,
		NombreProducto:   strings.TrimSpace(req.NombreProducto),
		ColorID:          req.ColorID,
		Color:            req.Color,
		DescripcionColor: req.DescripcionColor,
		Talla:            req.Talla,
		PosicionTalla:    req.PosicionTalla,
		EAN:              req.EAN,
		SKU:              req.SKU,
		Temporada:        req.Temporada,
		Activo:           true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return nil, apierror.DuplicateEntity("Referencia o EAN ya registrado")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.invalidateEAN(ctx, p)
	return productToResponse(p, true), nil
}

func (s *productService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apierror.ProductNotFound(id.String()), "find product")
	}
	return productToResponse(p, true), nil
}

func (s *productService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productToResponse(&productos[i], false))
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// ── ConsultarEAN ─────────────────────────────────────────────────────────────
// Read-through: Redis first, DB on miss. Cache failures only log.

func (s *productService) ConsultarEAN(ctx context.Context, ean string) (*dto.ConsultaEANResponse, error) {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return nil, apierror.MissingEAN()
	}

	var cached dto.ConsultaEANResponse
	if ok, err := s.cache.Get(ctx, ean, &cached); err != nil {
		log.Warn().Err(err).Str("ean", ean).Msg("ean cache read failed")
	} else if ok {
		return &cached, nil
	}

	p, err := s.repo.FindByEAN(ctx, ean)
	if err != nil {
		return nil, orNotFound(err, apierror.ProductNotFound(ean), "find by ean")
	}
	resp := &dto.ConsultaEANResponse{
		ProductID:   p.ID.String(),
		Referencia:  p.Referencia,
		Nombre:      p.NombreProducto,
		Color:       p.Color,
		Talla:       p.Talla,
		EAN:         ean,
		StockTotal:  p.StockTotal(),
		Ubicaciones: locationsToResponse(p.Locations),
	}
	if err := s.cache.Set(ctx, ean, resp); err != nil {
		log.Warn().Err(err).Str("ean", ean).Msg("ean cache write failed")
	}
	return resp, nil
}

// ── Locations ────────────────────────────────────────────────────────────────

func (s *productService) CrearUbicacion(ctx context.Context, productID uuid.UUID, req dto.CrearUbicacionRequest) (*dto.UbicacionResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, orNotFound(err, apierror.ProductNotFound(productID.String()), "find product")
	}

	prioridad := req.Prioridad
	if prioridad == 0 {
		prioridad = 3
	}
	loc, err := model.NewProductLocation(model.LocationSpec{
		ProductID:   p.ID,
		Pasillo:     req.Pasillo,
		Lado:        req.Lado,
		Ubicacion:   req.Ubicacion,
		Altura:      req.Altura,
		Prioridad:   prioridad,
		StockActual: req.StockActual,
		StockMinimo: req.StockMinimo,
	})
	if err != nil {
		return nil, err
	}
	if err := model.CheckDuplicateLocation(p.Locations, loc); err != nil {
		return nil, err
	}
	if err := s.repo.CreateLocation(ctx, loc); err != nil {
		if isUniqueViolation(err) {
			return nil, apierror.DuplicateLocation(loc.CodigoUbicacion)
		}
		return nil, fmt.Errorf("create location: %w", err)
	}
	s.invalidateEAN(ctx, p)

	resp := locationToResponse(loc)
	return &resp, nil
}

func (s *productService) ListarUbicaciones(ctx context.Context, productID uuid.UUID) ([]dto.UbicacionResponse, error) {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		return nil, orNotFound(err, apierror.ProductNotFound(productID.String()), "find product")
	}
	locs, err := s.repo.ListLocations(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locationsToResponse(locs), nil
}

func (s *productService) DesactivarUbicacion(ctx context.Context, locationID uuid.UUID) error {
	loc, err := s.repo.FindLocationByID(ctx, locationID)
	if err != nil {
		return orNotFound(err, apierror.LocationNotFound(locationID.String()), "find location")
	}
	if err := s.repo.DeactivateLocation(ctx, locationID); err != nil {
		return orNotFound(err, apierror.LocationNotFound(locationID.String()), "deactivate location")
	}
	s.invalidateEAN(ctx, loc.Product)
	return nil
}

func (s *productService) invalidateEAN(ctx context.Context, p *model.ProductReference) {
	invalidateEAN(ctx, s.cache, p)
}

func invalidateEAN(ctx context.Context, cache *infra.JSONCache, p *model.ProductReference) {
	if p == nil || p.EAN == nil || *p.EAN == "" {
		return
	}
	if err := cache.Delete(ctx, *p.EAN); err != nil {
		log.Warn().Err(err).Str("ean", *p.EAN).Msg("ean cache invalidation failed")
	}
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func productToResponse(p *model.ProductReference, withLocations bool) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:               p.ID.String(),
		Referencia:       p.Referencia,
		NombreProducto:   p.NombreProducto,
		ColorID:          p.ColorID,
		Color:            p.Color,
		DescripcionColor: p.DescripcionColor,
		Talla:            p.Talla,
		PosicionTalla:    p.PosicionTalla,
		EAN:              p.EAN,
		SKU:              p.SKU,
		Temporada:        p.Temporada,
		Activo:           p.Activo,
		StockTotal:       p.StockTotal(),
	}
	if withLocations {
		resp.Ubicaciones = locationsToResponse(p.Locations)
	}
	return resp
}

func (s *productService) ResumenStock(ctx context.Context, productID uuid.UUID) (*dto.ResumenStockResponse, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, orNotFound(err, apierror.ProductNotFound(productID.String()), "find product")
	}

	sku := p.Referencia
	if p.SKU != nil && *p.SKU != "" {
		sku = *p.SKU
	}
	resp := &dto.ResumenStockResponse{
		ProductID:      p.ID.String(),
		NombreProducto: p.NombreProducto,
		SKU:            sku,
		StockTotal:     p.StockTotal(),
		Estado:         p.StockStatus(),
		Ubicaciones:    []dto.ResumenUbicacion{},
	}
	for i := range p.Locations {
		l := &p.Locations[i]
		if !l.Activa {
			continue
		}
		resp.TotalUbicaciones++
		if l.BajoMinimo() {
			resp.UbicacionesBajoMinimo++
		}
		resp.Ubicaciones = append(resp.Ubicaciones, dto.ResumenUbicacion{
			CodigoUbicacion:    l.CodigoUbicacion,
			StockActual:        l.StockActual,
			NecesitaReposicion: l.BajoMinimo(),
		})
	}
	resp.NecesitaReposicion = resp.UbicacionesBajoMinimo > 0
	return resp, nil
}

func locationToResponse(l *model.ProductLocation) dto.UbicacionResponse {
	return dto.UbicacionResponse{
		ID:              l.ID.String(),
		ProductID:       l.ProductID.String(),
		CodigoUbicacion: l.CodigoUbicacion,
		Pasillo:         l.Pasillo,
		Lado:            l.Lado.String(),
		Ubicacion:       l.Ubicacion,
		Altura:          l.Altura,
		Prioridad:       l.Prioridad,
		StockActual:     l.StockActual,
		StockMinimo:     l.StockMinimo,
		BajoMinimo:      l.BajoMinimo(),
		Activa:          l.Activa,
	}
}

func locationsToResponse(locs []model.ProductLocation) []dto.UbicacionResponse {
	out := make([]dto.UbicacionResponse, 0, len(locs))
	for i := range locs {
		out = append(out, locationToResponse(&locs[i]))
	}
	return out
}
