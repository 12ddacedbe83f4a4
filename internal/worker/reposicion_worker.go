package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReposicionJobPayload asks the worker to open a replenishment request for
// one low-stock location.
type ReposicionJobPayload struct {
	LocationID string `json:"location_id"`
}

// ReplenishmentCreator opens a PENDING request for a location unless one is
// already open. created is false when an open request already existed or
// the location is no longer below its minimum.
type ReplenishmentCreator interface {
	CrearReposicionAutomatica(ctx context.Context, locationID uuid.UUID) (req *dto.ReposicionResponse, created bool, err error)
}

type emailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

type ReposicionWorker struct {
	creator         ReplenishmentCreator
	emails          emailEnqueuer
	supervisorEmail string
}

func NewReposicionWorker(creator ReplenishmentCreator, emails emailEnqueuer, supervisorEmail string) *ReposicionWorker {
	return &ReposicionWorker{creator: creator, emails: emails, supervisorEmail: supervisorEmail}
}

func (w *ReposicionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReposicionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reposicion_worker: invalid payload")
		return nil
	}
	locationID, err := uuid.Parse(payload.LocationID)
	if err != nil {
		log.Error().Str("location_id", payload.LocationID).Msg("reposicion_worker: invalid location_id")
		return nil
	}
	return w.handleLocation(ctx, locationID)
}

func (w *ReposicionWorker) handleLocation(ctx context.Context, locationID uuid.UUID) error {
	req, created, err := w.creator.CrearReposicionAutomatica(ctx, locationID)
	if err != nil {
		return fmt.Errorf("reposicion_worker: %w", err)
	}
	if !created {
		return nil
	}

	log.Info().
		Str("solicitud_id", req.ID).
		Str("ubicacion", req.CodigoUbicacion).
		Int("cantidad", req.CantidadSolicitada).
		Msg("reposicion_worker: replenishment request opened")

	if w.supervisorEmail == "" || w.emails == nil {
		return nil
	}
	// Best-effort: the request exists even if the notification is lost.
	if err := w.emails.EnqueueEmail(ctx, lowStockEmail(w.supervisorEmail, req)); err != nil {
		log.Warn().Err(err).Str("solicitud_id", req.ID).Msg("reposicion_worker: could not enqueue supervisor email")
	}
	return nil
}

func lowStockEmail(to string, req *dto.ReposicionResponse) EmailJobPayload {
	var b strings.Builder
	fmt.Fprintf(&b, "Se abrió una solicitud de reposición.\n\n")
	fmt.Fprintf(&b, "Ubicación: %s\n", req.CodigoUbicacion)
	fmt.Fprintf(&b, "Producto:  %s\n", req.Producto)
	fmt.Fprintf(&b, "Cantidad:  %d\n", req.CantidadSolicitada)
	fmt.Fprintf(&b, "Solicitud: %s\n", req.ID)
	return EmailJobPayload{
		ToEmail: to,
		Subject: "Stock bajo en " + req.CodigoUbicacion,
		Body:    b.String(),
	}
}
