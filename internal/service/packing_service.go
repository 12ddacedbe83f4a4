package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/picking"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PackingService manages the cartons an order is packed into.
type PackingService interface {
	AbrirCaja(ctx context.Context, orderID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	ListarCajas(ctx context.Context, orderID uuid.UUID, filter dto.CajaFilter) ([]dto.CajaResponse, error)
	DetalleCaja(ctx context.Context, boxID uuid.UUID) (*dto.CajaDetalleResponse, error)
	ActualizarCaja(ctx context.Context, boxID uuid.UUID, req dto.ActualizarCajaRequest) (*dto.CajaResponse, error)
	// CerrarCaja closes a box by its printed code, as scanned from the label.
	CerrarCaja(ctx context.Context, codigo string, req dto.CerrarCajaRequest) (*dto.CajaResponse, error)
	EmpacarLinea(ctx context.Context, boxID uuid.UUID, req dto.EmpacarLineaRequest) (*dto.CajaResponse, error)
}

type packingService struct {
	orders  repository.OrderRepository
	boxes   repository.PackingBoxRepository
	history repository.OrderHistoryRepository
	locks   *picking.OrderLocks
	now     func() time.Time
}

// NewPackingService shares locks with the order and picking services so box
// changes serialize with scans on the same order.
func NewPackingService(
	orders repository.OrderRepository,
	boxes repository.PackingBoxRepository,
	history repository.OrderHistoryRepository,
	locks *picking.OrderLocks,
) PackingService {
	if locks == nil {
		locks = picking.NewOrderLocks()
	}
	return &packingService{orders: orders, boxes: boxes, history: history, locks: locks, now: time.Now}
}

// ── AbrirCaja ────────────────────────────────────────────────────────────────
// The order must be IN_PICKING or PICKED and have no OPEN box. The new box
// takes the next number, the order's operator and becomes the active box.

func (s *packingService) AbrirCaja(ctx context.Context, orderID uuid.UUID, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	var box *model.PackingBox
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.orders.FindGraphForUpdateTx(tx, orderID)
		if err != nil {
			return orNotFound(err, apierror.OrderNotFound(orderID.String()), "lock order")
		}
		if !o.Estado.CanOpenBox() {
			return apierror.OrderWrongStatus(o.Estado.String(), o.Estado.IsTerminal(), "IN_PICKING o PICKED")
		}
		open, err := s.boxes.FindOpenByOrderTx(tx, o.ID)
		if err == nil {
			return apierror.BoxAlreadyOpen(open.CodigoCaja)
		}
		if !isNotFound(err) {
			return fmt.Errorf("find open box: %w", err)
		}
		count, err := s.boxes.CountByOrderTx(tx, o.ID)
		if err != nil {
			return fmt.Errorf("count boxes: %w", err)
		}

		now := s.now()
		numero := int(count) + 1
		b := &model.PackingBox{
			OrderID:       o.ID,
			NumeroCaja:    numero,
			CodigoCaja:    model.BoxCode(o.NumeroOrden, numero),
			Estado:        model.BoxOpen,
			OperatorID:    o.OperatorID,
			Notas:         trimmedOrNil(req.Notas),
			FechaApertura: now,
		}
		if err := s.boxes.CreateTx(tx, b); err != nil {
			if isUniqueViolation(err) {
				return apierror.BoxAlreadyOpen(b.CodigoCaja).Wrap(err)
			}
			return fmt.Errorf("create box: %w", err)
		}

		o.TotalCajas = numero
		o.CajaActivaID = &b.ID
		if err := s.orders.UpdateHeaderTx(tx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if err := s.history.CreateTx(tx, &model.OrderHistory{
			OrderID:     o.ID,
			Accion:      model.AccionBoxOpened,
			EstadoNuevo: o.Estado,
			OperatorID:  o.OperatorID,
			Notas:       strPtr(fmt.Sprintf("Caja #%d abierta. Código: %s", numero, b.CodigoCaja)),
			Fecha:       now,
		}); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		b.Operator = o.Operator
		box = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("box", box.CodigoCaja).Msg("packing box opened")
	return boxToResponse(box), nil
}

// ── CerrarCaja ───────────────────────────────────────────────────────────────
// Only OPEN boxes close. Closing clears the order's active box when it is
// this one and writes a BOX_CLOSED history row.

func (s *packingService) CerrarCaja(ctx context.Context, codigo string, req dto.CerrarCajaRequest) (*dto.CajaResponse, error) {
	codigo = strings.TrimSpace(codigo)
	if err := checkPeso(req.PesoKg); err != nil {
		return nil, err
	}
	found, err := s.boxes.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, orNotFound(err, apierror.BoxNotFound(codigo), "find box")
	}

	unlock := s.locks.Lock(found.OrderID)
	defer unlock()

	var box *model.PackingBox
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		b, err := s.boxes.FindForUpdateTx(tx, found.ID)
		if err != nil {
			return orNotFound(err, apierror.BoxNotFound(codigo), "lock box")
		}
		if b.Estado != model.BoxOpen {
			return apierror.BoxNotOpen(b.CodigoCaja, string(b.Estado))
		}
		o, err := s.orders.FindGraphForUpdateTx(tx, b.OrderID)
		if err != nil {
			return orNotFound(err, apierror.OrderNotFound(b.OrderID.String()), "lock order")
		}

		now := s.now()
		b.Close(now, trimmedOrNil(req.Notas))
		if req.PesoKg != nil {
			b.PesoKg = req.PesoKg
		}
		if d := trimmedOrNil(req.Dimensiones); d != nil {
			b.Dimensiones = d
		}
		if err := s.boxes.UpdateTx(tx, b); err != nil {
			return fmt.Errorf("update box: %w", err)
		}

		if o.CajaActivaID != nil && *o.CajaActivaID == b.ID {
			o.CajaActivaID = nil
			if err := s.orders.UpdateHeaderTx(tx, o); err != nil {
				return fmt.Errorf("update order: %w", err)
			}
		}
		if err := s.history.CreateTx(tx, &model.OrderHistory{
			OrderID:     o.ID,
			Accion:      model.AccionBoxClosed,
			EstadoNuevo: o.Estado,
			OperatorID:  o.OperatorID,
			Notas:       strPtr(fmt.Sprintf("Caja #%d cerrada. %d items empacados.", b.NumeroCaja, b.TotalItems)),
			Fecha:       now,
		}); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		b.Operator = found.Operator
		box = b
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("box", box.CodigoCaja).Int("items", box.TotalItems).Msg("packing box closed")
	return boxToResponse(box), nil
}

// ── EmpacarLinea ─────────────────────────────────────────────────────────────
// Puts an order line into the OPEN box of its order. Lines already sealed in
// a closed box are not moved.

func (s *packingService) EmpacarLinea(ctx context.Context, boxID uuid.UUID, req dto.EmpacarLineaRequest) (*dto.CajaResponse, error) {
	lineID, err := parseUUID(req.OrderLineID, "order_line_id")
	if err != nil {
		return nil, err
	}
	found, err := s.boxes.FindByID(ctx, boxID)
	if err != nil {
		return nil, orNotFound(err, apierror.BoxNotFound(boxID.String()), "find box")
	}

	unlock := s.locks.Lock(found.OrderID)
	defer unlock()

	var box *model.PackingBox
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		b, err := s.boxes.FindForUpdateTx(tx, boxID)
		if err != nil {
			return orNotFound(err, apierror.BoxNotFound(boxID.String()), "lock box")
		}
		if b.Estado != model.BoxOpen {
			return apierror.BoxNotOpen(b.CodigoCaja, string(b.Estado))
		}
		o, err := s.orders.FindGraphForUpdateTx(tx, b.OrderID)
		if err != nil {
			return orNotFound(err, apierror.OrderNotFound(b.OrderID.String()), "lock order")
		}
		line := o.FindLine(lineID)
		if line == nil {
			return apierror.LineNotFound(lineID.String())
		}
		box = b
		if line.PackingBoxID != nil && *line.PackingBoxID == b.ID {
			return nil
		}

		// Only one box per order is OPEN, so a line packed elsewhere sits in a
		// closed box and stays there.
		if line.PackingBoxID != nil {
			prev, err := s.boxes.FindForUpdateTx(tx, *line.PackingBoxID)
			if err != nil && !isNotFound(err) {
				return fmt.Errorf("find previous box: %w", err)
			}
			if err == nil {
				return apierror.BoxNotOpen(prev.CodigoCaja, string(prev.Estado))
			}
		}

		now := s.now()
		line.PackingBoxID = &b.ID
		line.FechaEmpacado = &now
		if err := s.boxes.AssignLineTx(tx, line); err != nil {
			return fmt.Errorf("assign line: %w", err)
		}
		b.TotalItems++
		if err := s.boxes.UpdateTx(tx, b); err != nil {
			return fmt.Errorf("update box: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	box.Operator = found.Operator
	return boxToResponse(box), nil
}

// ── Queries and details ──────────────────────────────────────────────────────

func (s *packingService) ListarCajas(ctx context.Context, orderID uuid.UUID, filter dto.CajaFilter) ([]dto.CajaResponse, error) {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, orNotFound(err, apierror.OrderNotFound(orderID.String()), "find order")
	}
	boxes, err := s.boxes.ListByOrder(ctx, orderID, strings.ToUpper(filter.Estado))
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	out := make([]dto.CajaResponse, 0, len(boxes))
	for i := range boxes {
		out = append(out, *boxToResponse(&boxes[i]))
	}
	return out, nil
}

func (s *packingService) DetalleCaja(ctx context.Context, boxID uuid.UUID) (*dto.CajaDetalleResponse, error) {
	b, err := s.boxes.FindByID(ctx, boxID)
	if err != nil {
		return nil, orNotFound(err, apierror.BoxNotFound(boxID.String()), "find box")
	}
	lines, err := s.boxes.ListLines(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("list box lines: %w", err)
	}
	items := make([]dto.OrderLineResponse, 0, len(lines))
	for i := range lines {
		items = append(items, lineToResponse(&lines[i]))
	}
	return &dto.CajaDetalleResponse{CajaResponse: *boxToResponse(b), Items: items}, nil
}

// ActualizarCaja edits weight, dimensions and notes. Status, number and
// order are fixed; closing has its own operation.
func (s *packingService) ActualizarCaja(ctx context.Context, boxID uuid.UUID, req dto.ActualizarCajaRequest) (*dto.CajaResponse, error) {
	if err := checkPeso(req.PesoKg); err != nil {
		return nil, err
	}
	b, err := s.boxes.FindByID(ctx, boxID)
	if err != nil {
		return nil, orNotFound(err, apierror.BoxNotFound(boxID.String()), "find box")
	}
	if req.PesoKg != nil {
		b.PesoKg = req.PesoKg
	}
	if req.Dimensiones != nil {
		b.Dimensiones = trimmedOrNil(req.Dimensiones)
	}
	if req.Notas != nil {
		b.Notas = trimmedOrNil(req.Notas)
	}
	if err := s.boxes.UpdateDetails(ctx, b); err != nil {
		return nil, fmt.Errorf("update box: %w", err)
	}
	return boxToResponse(b), nil
}

func checkPeso(peso *decimal.Decimal) error {
	if peso != nil && peso.IsNegative() {
		return apierror.InvalidRequest("peso_kg no puede ser negativo: %s", peso.String())
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func boxToResponse(b *model.PackingBox) *dto.CajaResponse {
	return &dto.CajaResponse{
		ID:            b.ID.String(),
		OrderID:       b.OrderID.String(),
		NumeroCaja:    b.NumeroCaja,
		CodigoCaja:    b.CodigoCaja,
		Estado:        string(b.Estado),
		Operario:      operatorSummary(b.Operator),
		TotalItems:    b.TotalItems,
		PesoKg:        b.PesoKg,
		Dimensiones:   b.Dimensiones,
		Notas:         b.Notas,
		FechaApertura: fmtTime(b.FechaApertura),
		FechaCierre:   fmtTimePtr(b.FechaCierre),
	}
}
