package service

import (
	"context"
	"fmt"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Replenishment origins, used as a metrics label.
const (
	OrigenManual = "manual"
	OrigenCron   = "cron"
)

// InventarioService owns location stock: manual adjustments, low-stock
// alerts, the movement ledger and replenishment requests.
type InventarioService interface {
	AjustarStock(ctx context.Context, locationID uuid.UUID, req dto.AjustarStockRequest) (*dto.UbicacionResponse, error)
	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)

	CrearReposicion(ctx context.Context, req dto.CrearReposicionRequest) (*dto.ReposicionResponse, error)
	// CrearReposicionAutomatica is called by the stock-alert worker. It is a
	// no-op (created=false) when the location is no longer low or already
	// has an open request.
	CrearReposicionAutomatica(ctx context.Context, locationID uuid.UUID) (*dto.ReposicionResponse, bool, error)
	ListarReposiciones(ctx context.Context, filter dto.ReposicionFilter) (*dto.ReposicionListResponse, error)
	IniciarReposicion(ctx context.Context, id uuid.UUID, req dto.IniciarReposicionRequest) (*dto.ReposicionResponse, error)
	CompletarReposicion(ctx context.Context, id uuid.UUID, req dto.CompletarReposicionRequest) (*dto.ReposicionResponse, error)
	RechazarReposicion(ctx context.Context, id uuid.UUID, req dto.RechazarReposicionRequest) (*dto.ReposicionResponse, error)
}

type inventarioService struct {
	products    repository.ProductRepository
	movimientos repository.MovimientoStockRepository
	reposicion  repository.ReposicionRepository
	operators   repository.OperatorRepository
	cache       *infra.JSONCache
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewInventarioService(
	products repository.ProductRepository,
	movimientos repository.MovimientoStockRepository,
	reposicion repository.ReposicionRepository,
	operators repository.OperatorRepository,
	cache *infra.JSONCache,
	m *metrics.Metrics,
) InventarioService {
	return &inventarioService{
		products:    products,
		movimientos: movimientos,
		reposicion:  reposicion,
		operators:   operators,
		cache:       cache,
		metrics:     m,
		now:         time.Now,
	}
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (s *inventarioService) AjustarStock(ctx context.Context, locationID uuid.UUID, req dto.AjustarStockRequest) (*dto.UbicacionResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.InvalidQuantity(req.Delta)
	}

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		loc, err := s.products.FindLocationForUpdateTx(tx, locationID)
		if err != nil {
			return orNotFound(err, apierror.LocationNotFound(locationID.String()), "lock location")
		}
		return s.applyStockTx(tx, loc, req.Delta, model.MovimientoAjusteManual, req.Motivo, nil)
	})
	if txErr != nil {
		return nil, txErr
	}

	loc, err := s.products.FindLocationByID(ctx, locationID)
	if err != nil {
		return nil, orNotFound(err, apierror.LocationNotFound(locationID.String()), "reload location")
	}
	invalidateEAN(ctx, s.cache, loc.Product)
	resp := locationToResponse(loc)
	return &resp, nil
}

// applyStockTx moves loc's stock by delta and appends the ledger row.
func (s *inventarioService) applyStockTx(tx *gorm.DB, loc *model.ProductLocation, delta int, tipo, motivo string, ref *uuid.UUID) error {
	nuevo := loc.StockActual + delta
	if nuevo < 0 {
		return apierror.InvalidQuantity(delta).
			Wrap(fmt.Errorf("stock %d de %s quedaría negativo", loc.StockActual, loc.CodigoUbicacion))
	}
	if err := s.products.SetLocationStockTx(tx, loc.ID, nuevo); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	mov := &model.MovimientoStock{
		LocationID:    loc.ID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: loc.StockActual,
		StockNuevo:    nuevo,
		Motivo:        motivo,
		ReferenciaID:  ref,
	}
	if err := s.movimientos.CreateTx(tx, mov); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}
	loc.StockActual = nuevo
	return nil
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	locs, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	out := make([]dto.AlertaStockResponse, 0, len(locs))
	for i := range locs {
		l := &locs[i]
		producto := ""
		if l.Product != nil {
			producto = l.Product.DisplayName()
		}
		faltante := l.StockMinimo - l.StockActual
		if faltante < 0 {
			faltante = 0
		}
		out = append(out, dto.AlertaStockResponse{
			LocationID:      l.ID.String(),
			ProductID:       l.ProductID.String(),
			Producto:        producto,
			CodigoUbicacion: l.CodigoUbicacion,
			StockActual:     l.StockActual,
			StockMinimo:     l.StockMinimo,
			Faltante:        faltante,
		})
	}
	return out, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	f := repository.MovimientoStockFilter{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.LocationID != "" {
		id, err := parseUUID(filter.LocationID, "location_id")
		if err != nil {
			return nil, err
		}
		f.LocationID = &id
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 100
	}
	rows, total, err := s.movimientos.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	data := make([]dto.MovimientoStockResponse, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		data = append(data, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			LocationID:    m.LocationID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			ReferenciaID:  uuidPtrString(m.ReferenciaID),
			CreatedAt:     fmtTime(m.CreatedAt),
		})
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// ── Replenishment ────────────────────────────────────────────────────────────
// PENDING → IN_PROGRESS → COMPLETED, or PENDING/IN_PROGRESS → REJECTED.
// At most one open request per location.

func (s *inventarioService) CrearReposicion(ctx context.Context, req dto.CrearReposicionRequest) (*dto.ReposicionResponse, error) {
	locationID, err := parseUUID(req.LocationID, "location_id")
	if err != nil {
		return nil, err
	}
	loc, err := s.products.FindLocationByID(ctx, locationID)
	if err != nil {
		return nil, orNotFound(err, apierror.LocationNotFound(req.LocationID), "find location")
	}
	if !loc.Activa {
		return nil, apierror.InvalidLocation("La ubicación %s está inactiva", loc.CodigoUbicacion)
	}
	open, err := s.reposicion.HasOpenForLocation(ctx, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("check open requests: %w", err)
	}
	if open {
		return nil, apierror.DuplicateEntity("Ya existe una solicitud abierta para %s", loc.CodigoUbicacion)
	}

	sol := &model.SolicitudReposicion{
		LocationID:         loc.ID,
		ProductID:          loc.ProductID,
		CantidadSolicitada: req.CantidadSolicitada,
		Estado:             model.ReposicionPending,
		Notas:              req.Notas,
		FechaSolicitud:     s.now(),
	}
	if req.OrderID != nil {
		id, err := parseUUID(*req.OrderID, "order_id")
		if err != nil {
			return nil, err
		}
		sol.OrderID = &id
	}
	if req.SolicitanteID != nil {
		id, err := parseUUID(*req.SolicitanteID, "solicitante_id")
		if err != nil {
			return nil, err
		}
		sol.SolicitanteID = &id
	}
	if err := s.reposicion.Create(ctx, sol); err != nil {
		if isUniqueViolation(err) {
			return nil, apierror.DuplicateEntity("Ya existe una solicitud abierta para %s", loc.CodigoUbicacion)
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.metrics.RecordReplenishmentCreated(OrigenManual)

	sol.Location, sol.Product = loc, loc.Product
	return reposicionToResponse(sol), nil
}

// CantidadReposicion refills a location up to twice its minimum.
func CantidadReposicion(loc *model.ProductLocation) int {
	q := 2*loc.StockMinimo - loc.StockActual
	if q < 1 {
		q = 1
	}
	return q
}

func (s *inventarioService) CrearReposicionAutomatica(ctx context.Context, locationID uuid.UUID) (*dto.ReposicionResponse, bool, error) {
	loc, err := s.products.FindLocationByID(ctx, locationID)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find location: %w", err)
	}
	if !loc.Activa || !loc.BajoMinimo() {
		return nil, false, nil
	}
	open, err := s.reposicion.HasOpenForLocation(ctx, loc.ID)
	if err != nil {
		return nil, false, fmt.Errorf("check open requests: %w", err)
	}
	if open {
		return nil, false, nil
	}

	notas := fmt.Sprintf("Automática: stock %d < mínimo %d", loc.StockActual, loc.StockMinimo)
	sol := &model.SolicitudReposicion{
		LocationID:         loc.ID,
		ProductID:          loc.ProductID,
		CantidadSolicitada: CantidadReposicion(loc),
		Estado:             model.ReposicionPending,
		Notas:              &notas,
		FechaSolicitud:     s.now(),
	}
	if err := s.reposicion.Create(ctx, sol); err != nil {
		// Another worker won the race on the open-request index.
		if isUniqueViolation(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	s.metrics.RecordReplenishmentCreated(OrigenCron)

	sol.Location, sol.Product = loc, loc.Product
	return reposicionToResponse(sol), true, nil
}

func (s *inventarioService) ListarReposiciones(ctx context.Context, filter dto.ReposicionFilter) (*dto.ReposicionListResponse, error) {
	f := repository.ReposicionFilter{Estado: filter.Estado, Page: filter.Page, Limit: filter.Limit}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	rows, total, err := s.reposicion.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	data := make([]dto.ReposicionResponse, 0, len(rows))
	for i := range rows {
		data = append(data, *reposicionToResponse(&rows[i]))
	}
	return &dto.ReposicionListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *inventarioService) IniciarReposicion(ctx context.Context, id uuid.UUID, req dto.IniciarReposicionRequest) (*dto.ReposicionResponse, error) {
	ejecutorID, err := parseUUID(req.EjecutorID, "ejecutor_id")
	if err != nil {
		return nil, err
	}
	op, err := s.operators.FindByID(ctx, ejecutorID)
	if err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(req.EjecutorID), "find operator")
	}
	if !op.Activo {
		return nil, apierror.OperatorInactive(op.Nombre)
	}

	return s.updateRequest(ctx, id, func(tx *gorm.DB, sol *model.SolicitudReposicion) error {
		if sol.Estado != model.ReposicionPending {
			return apierror.InvalidRequestState(string(sol.Estado), string(model.ReposicionPending))
		}
		now := s.now()
		sol.Estado = model.ReposicionInProgress
		sol.EjecutorID = &op.ID
		sol.FechaInicio = &now
		return nil
	})
}

func (s *inventarioService) CompletarReposicion(ctx context.Context, id uuid.UUID, req dto.CompletarReposicionRequest) (*dto.ReposicionResponse, error) {
	resp, err := s.updateRequest(ctx, id, func(tx *gorm.DB, sol *model.SolicitudReposicion) error {
		if sol.Estado != model.ReposicionInProgress {
			return apierror.InvalidRequestState(string(sol.Estado), string(model.ReposicionInProgress))
		}
		cantidad := sol.CantidadSolicitada
		if req.CantidadRepuesta != nil {
			cantidad = *req.CantidadRepuesta
		}
		if cantidad < 1 {
			return apierror.InvalidQuantity(cantidad)
		}

		loc, err := s.products.FindLocationForUpdateTx(tx, sol.LocationID)
		if err != nil {
			return orNotFound(err, apierror.LocationNotFound(sol.LocationID.String()), "lock location")
		}
		ref := sol.ID
		motivo := fmt.Sprintf("Reposición %s", sol.ID)
		if err := s.applyStockTx(tx, loc, cantidad, model.MovimientoReposicion, motivo, &ref); err != nil {
			return err
		}

		now := s.now()
		sol.Estado = model.ReposicionCompleted
		sol.FechaFin = &now
		if req.Notas != nil {
			sol.Notas = req.Notas
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if loc, err := s.products.FindLocationByID(ctx, uuid.MustParse(resp.LocationID)); err == nil {
		invalidateEAN(ctx, s.cache, loc.Product)
	}
	log.Info().Str("solicitud_id", resp.ID).Str("ubicacion", resp.CodigoUbicacion).Msg("replenishment completed")
	return resp, nil
}

func (s *inventarioService) RechazarReposicion(ctx context.Context, id uuid.UUID, req dto.RechazarReposicionRequest) (*dto.ReposicionResponse, error) {
	return s.updateRequest(ctx, id, func(tx *gorm.DB, sol *model.SolicitudReposicion) error {
		if !sol.Estado.IsOpen() {
			return apierror.InvalidRequestState(string(sol.Estado), "PENDING o IN_PROGRESS")
		}
		now := s.now()
		motivo := req.Motivo
		sol.Estado = model.ReposicionRejected
		sol.FechaFin = &now
		sol.Notas = &motivo
		return nil
	})
}

// updateRequest locks the request, lets mutate change it and persists it,
// all in one transaction, then reloads it with its associations.
func (s *inventarioService) updateRequest(ctx context.Context, id uuid.UUID, mutate func(tx *gorm.DB, sol *model.SolicitudReposicion) error) (*dto.ReposicionResponse, error) {
	txErr := runTx(ctx, s.reposicion.DB(), func(tx *gorm.DB) error {
		sol, err := s.reposicion.FindForUpdateTx(tx, id)
		if err != nil {
			return orNotFound(err, apierror.RequestNotFound(id.String()), "lock request")
		}
		if err := mutate(tx, sol); err != nil {
			return err
		}
		if err := s.reposicion.UpdateTx(tx, sol); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	sol, err := s.reposicion.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apierror.RequestNotFound(id.String()), "reload request")
	}
	return reposicionToResponse(sol), nil
}

func reposicionToResponse(s *model.SolicitudReposicion) *dto.ReposicionResponse {
	resp := &dto.ReposicionResponse{
		ID:                 s.ID.String(),
		LocationID:         s.LocationID.String(),
		ProductID:          s.ProductID.String(),
		OrderID:            uuidPtrString(s.OrderID),
		CantidadSolicitada: s.CantidadSolicitada,
		Estado:             string(s.Estado),
		SolicitanteID:      uuidPtrString(s.SolicitanteID),
		EjecutorID:         uuidPtrString(s.EjecutorID),
		Notas:              s.Notas,
		FechaSolicitud:     fmtTime(s.FechaSolicitud),
		FechaInicio:        fmtTimePtr(s.FechaInicio),
		FechaFin:           fmtTimePtr(s.FechaFin),
	}
	if s.Location != nil {
		resp.CodigoUbicacion = s.Location.CodigoUbicacion
	}
	if s.Product != nil {
		resp.Producto = s.Product.DisplayName()
	}
	return resp
}
