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
	"github.com/codefren/s4t-koroshi-sms-backend/internal/picking"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrderService interface {
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Detail(ctx context.Context, id uuid.UUID) (*dto.OrderDetailResponse, error)
	AssignOperator(ctx context.Context, id uuid.UUID, req dto.AssignOperatorRequest) (*dto.OrderDetailResponse, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req dto.ChangeStatusRequest) (*dto.OrderDetailResponse, error)
	History(ctx context.Context, id uuid.UUID) ([]dto.OrderHistoryResponse, error)
	OptimizeRoute(ctx context.Context, id uuid.UUID) (*dto.PickingRouteResponse, error)
	StockValidation(ctx context.Context, id uuid.UUID) (*dto.StockValidationResponse, error)
	// PickingSheet renders the route to a PDF and returns its path.
	PickingSheet(ctx context.Context, id uuid.UUID) (string, error)
}

type orderService struct {
	repo       repository.OrderRepository
	operators  repository.OperatorRepository
	history    repository.OrderHistoryRepository
	optimizer  *picking.RouteOptimizer
	locks      *picking.OrderLocks
	metrics    *metrics.Metrics
	pdfStorage string
	now        func() time.Time
}

func NewOrderService(
	repo repository.OrderRepository,
	operators repository.OperatorRepository,
	history repository.OrderHistoryRepository,
	optimizer *picking.RouteOptimizer,
	locks *picking.OrderLocks,
	m *metrics.Metrics,
	pdfStorage string,
) OrderService {
	if optimizer == nil {
		optimizer = picking.NewRouteOptimizer(nil)
	}
	if locks == nil {
		locks = picking.NewOrderLocks()
	}
	return &orderService{
		repo:       repo,
		operators:  operators,
		history:    history,
		optimizer:  optimizer,
		locks:      locks,
		metrics:    m,
		pdfStorage: pdfStorage,
		now:        time.Now,
	}
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	data := make([]dto.OrderSummaryResponse, 0, len(orders))
	for i := range orders {
		data = append(data, orderToSummary(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *orderService) Detail(ctx context.Context, id uuid.UUID) (*dto.OrderDetailResponse, error) {
	order, err := s.loadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderToDetail(order), nil
}

func (s *orderService) History(ctx context.Context, id uuid.UUID) ([]dto.OrderHistoryResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, orNotFound(err, apierror.OrderNotFound(id.String()), "find order")
	}
	rows, err := s.history.ListByOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]dto.OrderHistoryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, historyToResponse(&rows[i]))
	}
	return out, nil
}

// ── Picking projections ──────────────────────────────────────────────────────

func (s *orderService) OptimizeRoute(ctx context.Context, id uuid.UUID) (*dto.PickingRouteResponse, error) {
	order, err := s.loadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	route := s.optimizer.BuildRoute(order)
	s.metrics.RecordRoute(route.TotalStops)
	return &dto.PickingRouteResponse{
		OrderID:     order.ID.String(),
		NumeroOrden: order.NumeroOrden,
		Route:       route,
	}, nil
}

func (s *orderService) StockValidation(ctx context.Context, id uuid.UUID) (*dto.StockValidationResponse, error) {
	order, err := s.loadGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.StockValidationResponse{
		OrderID:          order.ID.String(),
		NumeroOrden:      order.NumeroOrden,
		ValidationResult: picking.ValidateOrder(order),
	}, nil
}

func (s *orderService) PickingSheet(ctx context.Context, id uuid.UUID) (string, error) {
	order, err := s.loadGraph(ctx, id)
	if err != nil {
		return "", err
	}
	route := s.optimizer.BuildRoute(order)
	path, err := infra.GeneratePickingSheetPDF(order, route, s.pdfStorage)
	if err != nil {
		return "", fmt.Errorf("picking sheet %s: %w", order.NumeroOrden, err)
	}
	return path, nil
}

// ── AssignOperator ───────────────────────────────────────────────────────────
// The operator must exist and be active; the order must be PENDING or
// ASSIGNED. PENDING moves to ASSIGNED, ASSIGNED keeps its status and just
// changes hands. Either way an ASSIGN_OPERATOR history row is written.

func (s *orderService) AssignOperator(ctx context.Context, id uuid.UUID, req dto.AssignOperatorRequest) (*dto.OrderDetailResponse, error) {
	operatorID, err := parseUUID(req.OperatorID, "operator_id")
	if err != nil {
		return nil, err
	}
	op, err := s.operators.FindByID(ctx, operatorID)
	if err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(req.OperatorID), "find operator")
	}
	if !op.Activo {
		return nil, apierror.OperatorInactive(op.Nombre)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var order *model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		o, err := s.repo.FindGraphForUpdateTx(tx, id)
		if err != nil {
			return orNotFound(err, apierror.OrderNotFound(id.String()), "lock order")
		}
		from := o.Estado
		if from != model.StatusPending && from != model.StatusAssigned {
			return apierror.OrderWrongStatus(from.String(), from.IsTerminal(), "PENDING o ASSIGNED")
		}

		now := s.now()
		o.OperatorID = &op.ID
		o.Operator = op
		if from == model.StatusPending {
			if err := o.Transition(model.StatusAssigned, now); err != nil {
				return err
			}
		} else {
			o.FechaAsignacion = &now
		}
		if err := s.repo.UpdateHeaderTx(tx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := s.history.CreateTx(tx, &model.OrderHistory{
			OrderID:        o.ID,
			Accion:         model.AccionAssignOperator,
			EstadoAnterior: &from,
			EstadoNuevo:    o.Estado,
			OperatorID:     &op.ID,
			Notas:          req.Notas,
			Fecha:          now,
		}); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("order", order.NumeroOrden).
		Str("operator", op.CodigoOperario).
		Msg("order assigned")
	return orderToDetail(order), nil
}

// ── ChangeStatus ─────────────────────────────────────────────────────────────

func (s *orderService) ChangeStatus(ctx context.Context, id uuid.UUID, req dto.ChangeStatusRequest) (*dto.OrderDetailResponse, error) {
	next, err := model.ParseOrderStatus(req.Estado)
	if err != nil {
		return nil, apierror.InvalidRequest("Estado desconocido: %s", req.Estado).Wrap(err)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var order *model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		o, err := s.repo.FindGraphForUpdateTx(tx, id)
		if err != nil {
			return orNotFound(err, apierror.OrderNotFound(id.String()), "lock order")
		}
		from := o.Estado
		now := s.now()
		if err := o.Transition(next, now); err != nil {
			return err
		}
		if err := s.repo.UpdateHeaderTx(tx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		accion := model.AccionStatusChange
		if next == model.StatusCancelled {
			accion = model.AccionCancel
		}
		if err := s.history.CreateTx(tx, &model.OrderHistory{
			OrderID:        o.ID,
			Accion:         accion,
			EstadoAnterior: &from,
			EstadoNuevo:    next,
			OperatorID:     o.OperatorID,
			Notas:          req.Notas,
			Fecha:          now,
		}); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		order = o
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("order", order.NumeroOrden).
		Str("estado", order.Estado.String()).
		Msg("order status changed")
	return orderToDetail(order), nil
}

func (s *orderService) loadGraph(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.repo.FindGraph(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apierror.OrderNotFound(id.String()), "load order")
	}
	return order, nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func operatorSummary(op *model.Operator) *dto.OperatorSummary {
	if op == nil {
		return nil
	}
	return &dto.OperatorSummary{ID: op.ID.String(), CodigoOperario: op.CodigoOperario, Nombre: op.Nombre}
}

func orderToSummary(o *model.Order) dto.OrderSummaryResponse {
	return dto.OrderSummaryResponse{
		ID:               o.ID.String(),
		NumeroOrden:      o.NumeroOrden,
		CodigoCliente:    o.CodigoCliente,
		NombreCliente:    o.NombreCliente,
		Estado:           o.Estado.String(),
		EstadoNombre:     o.Estado.Nombre(),
		Prioridad:        string(o.Prioridad),
		TotalItems:       o.TotalItems,
		ItemsCompletados: o.ItemsCompletados,
		ProgresoPct:      o.ProgressPct().InexactFloat64(),
		Operario:         operatorSummary(o.Operator),
		FechaImportacion: fmtTime(o.FechaImportacion),
	}
}

func orderToDetail(o *model.Order) *dto.OrderDetailResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		lines = append(lines, lineToResponse(&o.Lines[i]))
	}
	return &dto.OrderDetailResponse{
		OrderSummaryResponse: orderToSummary(o),
		Notas:                o.Notas,
		FechaAsignacion:      fmtTimePtr(o.FechaAsignacion),
		FechaInicioPicking:   fmtTimePtr(o.FechaInicioPicking),
		FechaFinPicking:      fmtTimePtr(o.FechaFinPicking),
		FechaPacking:         fmtTimePtr(o.FechaPacking),
		FechaListo:           fmtTimePtr(o.FechaListo),
		FechaEnvio:           fmtTimePtr(o.FechaEnvio),
		FechaCancelacion:     fmtTimePtr(o.FechaCancelacion),
		TotalCajas:           o.TotalCajas,
		CajaActivaID:         uuidPtrString(o.CajaActivaID),
		Lineas:               lines,
	}
}

func lineToResponse(l *model.OrderLine) dto.OrderLineResponse {
	resp := dto.OrderLineResponse{
		ID:                 l.ID.String(),
		EAN:                l.EAN,
		Producto:           l.DisplayName(),
		UbicacionHistorica: l.UbicacionHistorica,
		CantidadSolicitada: l.CantidadSolicitada,
		CantidadServida:    l.CantidadServida,
		CantidadPendiente:  l.Pendiente(),
		Estado:             string(l.State()),
		PackingBoxID:       uuidPtrString(l.PackingBoxID),
		FechaEmpacado:      fmtTimePtr(l.FechaEmpacado),
	}
	if p := l.Product(); p != nil {
		resp.Referencia = strPtr(p.Referencia)
		resp.Color = strPtr(p.Color)
		resp.Talla = strPtr(p.Talla)
	}
	if loc := l.ProductLocation; loc != nil {
		resp.Ubicacion = strPtr(loc.CodigoUbicacion)
		stock := loc.StockActual
		resp.StockDisponible = &stock
	}
	return resp
}

func historyToResponse(h *model.OrderHistory) dto.OrderHistoryResponse {
	var anterior *string
	if h.EstadoAnterior != nil {
		anterior = strPtr(h.EstadoAnterior.String())
	}
	return dto.OrderHistoryResponse{
		ID:             h.ID.String(),
		Accion:         h.Accion,
		EstadoAnterior: anterior,
		EstadoNuevo:    h.EstadoNuevo.String(),
		Operario:       operatorSummary(h.Operator),
		Notas:          h.Notas,
		Fecha:          fmtTime(h.Fecha),
	}
}
