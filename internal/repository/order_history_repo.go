package repository

import (
	"context"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderHistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.OrderHistory) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderHistory, error)
}

type orderHistoryRepository struct{ db *gorm.DB }

func NewOrderHistoryRepository(db *gorm.DB) OrderHistoryRepository {
	return &orderHistoryRepository{db: db}
}

func (r *orderHistoryRepository) CreateTx(tx *gorm.DB, h *model.OrderHistory) error {
	return tx.Create(h).Error
}

// ListByOrder returns the audit trail oldest-first (append-only table, so
// this reflects natural insert order).
func (r *orderHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderHistory, error) {
	var rows []model.OrderHistory
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("order_id = ?", orderID).
		Order("fecha ASC").
		Find(&rows).Error
	return rows, err
}
