package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const timeLayout = time.RFC3339

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// isUniqueViolation matches both postgres (23505) and sqlite unique errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

// orNotFound maps gorm's not-found to the typed error nf; anything else is
// returned wrapped with op.
func orNotFound(err error, nf *apierror.Error, op string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return nf
	}
	if _, ok := apierror.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func parseUUID(s, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, apierror.InvalidRequest("%s inválido: %q", field, s).Wrap(err)
	}
	return id, nil
}

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func strPtr(s string) *string { return &s }
