package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/picking"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Scan channels, used as a metrics label.
const (
	ChannelHTTP      = "http"
	ChannelWebSocket = "ws"
)

// PickingService is the transactional shell around picking.Scan. The HTTP
// endpoint and the operator WebSocket both go through it.
type PickingService interface {
	// ResolveOperator finds an operator by PDA code and checks it is active.
	ResolveOperator(ctx context.Context, codigo string) (*model.Operator, error)
	Scan(ctx context.Context, operator *model.Operator, req dto.ScanRequest, channel string) (*picking.ScanConfirmation, error)
}

type pickingService struct {
	orders          repository.OrderRepository
	operators       repository.OperatorRepository
	history         repository.OrderHistoryRepository
	locks           *picking.OrderLocks
	dispatcher      *worker.Dispatcher
	metrics         *metrics.Metrics
	supervisorEmail string
	now             func() time.Time
}

func NewPickingService(
	orders repository.OrderRepository,
	operators repository.OperatorRepository,
	history repository.OrderHistoryRepository,
	locks *picking.OrderLocks,
	dispatcher *worker.Dispatcher,
	m *metrics.Metrics,
	supervisorEmail string,
) PickingService {
	if locks == nil {
		locks = picking.NewOrderLocks()
	}
	return &pickingService{
		orders:          orders,
		operators:       operators,
		history:         history,
		locks:           locks,
		dispatcher:      dispatcher,
		metrics:         m,
		supervisorEmail: supervisorEmail,
		now:             time.Now,
	}
}

func (s *pickingService) ResolveOperator(ctx context.Context, codigo string) (*model.Operator, error) {
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	op, err := s.operators.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(codigo), "find operator")
	}
	if !op.Activo {
		return nil, apierror.OperatorInactive(op.Nombre)
	}
	return op, nil
}

// ── Scan ─────────────────────────────────────────────────────────────────────
//  1. Resolve the order id (order_id wins over numero_orden)
//  2. Take the per-order lock, then the row lock inside the transaction
//  3. Run the scan gate on the freshly loaded graph
//  4. Persist the touched line and the recomputed header counters
//  5. (async) notify the supervisor when the order just completed

func (s *pickingService) Scan(ctx context.Context, operator *model.Operator, req dto.ScanRequest, channel string) (*picking.ScanConfirmation, error) {
	conf, err := s.scan(ctx, operator, req)

	result := "OK"
	if err != nil {
		result = apierror.CodeOf(err)
	}
	s.metrics.RecordScan(channel, result)

	var ev *zerolog.Event
	if err != nil {
		ev = log.Warn().Err(err)
	} else {
		ev = log.Info()
	}
	ev.Str("channel", channel).
		Str("operator", operator.CodigoOperario).
		Str("order", firstNonEmpty(req.OrderID, req.NumeroOrden)).
		Str("ean", req.EAN).
		Str("result", result).
		Msg("scan")

	if err != nil {
		return nil, err
	}
	if conf.OrderCompleted {
		s.onOrderCompleted(ctx, operator, conf)
	}
	return conf, nil
}

func (s *pickingService) scan(ctx context.Context, operator *model.Operator, req dto.ScanRequest) (*picking.ScanConfirmation, error) {
	orderID, err := s.resolveOrderID(ctx, req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	var conf *picking.ScanConfirmation
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindGraphForUpdateTx(tx, orderID)
		if err != nil {
			return orNotFound(err, apierror.OrderNotFound(orderID.String()), "lock order")
		}

		c, err := picking.Scan(order, operator.ID, req.EAN, req.Ubicacion)
		if err != nil {
			return err
		}

		line := order.FindLine(c.LineID)
		if err := s.orders.UpdateLineProgressTx(tx, line); err != nil {
			return fmt.Errorf("update line: %w", err)
		}
		if err := s.orders.UpdateHeaderTx(tx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if c.OrderCompleted {
			estado := order.Estado
			if err := s.history.CreateTx(tx, &model.OrderHistory{
				OrderID:        order.ID,
				Accion:         model.AccionPickingDone,
				EstadoAnterior: &estado,
				EstadoNuevo:    estado,
				OperatorID:     &operator.ID,
				Fecha:          s.now(),
			}); err != nil {
				return fmt.Errorf("write history: %w", err)
			}
		}
		conf = c
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return conf, nil
}

func (s *pickingService) resolveOrderID(ctx context.Context, req dto.ScanRequest) (uuid.UUID, error) {
	if strings.TrimSpace(req.OrderID) != "" {
		return parseUUID(req.OrderID, "order_id")
	}
	numero := strings.TrimSpace(req.NumeroOrden)
	if numero == "" {
		return uuid.Nil, apierror.MissingOrderNumber()
	}
	id, err := s.orders.FindIDByNumero(ctx, numero)
	if err != nil {
		return uuid.Nil, orNotFound(err, apierror.OrderNotFound(numero), "find order")
	}
	return id, nil
}

func (s *pickingService) onOrderCompleted(ctx context.Context, operator *model.Operator, conf *picking.ScanConfirmation) {
	s.metrics.RecordOrderCompleted()
	log.Info().
		Str("order", conf.NumeroOrden).
		Str("operator", operator.CodigoOperario).
		Msg("order picking completed")

	if s.dispatcher == nil || s.supervisorEmail == "" {
		return
	}
	// Best-effort: never fail a committed scan over a notification.
	_ = s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: s.supervisorEmail,
		Subject: "Orden " + conf.NumeroOrden + " lista para revisión",
		Body: fmt.Sprintf("El operario %s (%s) completó el picking de la orden %s: %d/%d líneas.",
			operator.Nombre, operator.CodigoOperario, conf.NumeroOrden,
			conf.ProgresoOrden.ItemsCompletados, conf.ProgresoOrden.TotalItems),
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
