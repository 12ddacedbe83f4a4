package worker

// email_worker.go
// Processes supervisor notifications from QueueEmail (low stock, order
// completed). Delivery goes through the circuit breaker so a dead SMTP relay
// fails fast instead of holding every worker for the dial timeout.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	AttachPath string `json:"attach_path,omitempty"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(to, subject, body, attachPath string) error
}

type EmailWorker struct {
	mailer Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends one email. Payloads without a recipient are dropped.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	send := func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, payload.AttachPath)
	}
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
