package repository

import (
	"context"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PackingBoxRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.PackingBox, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.PackingBox, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID, estado string) ([]model.PackingBox, error)
	// ListLines returns the order lines packed into the box.
	ListLines(ctx context.Context, boxID uuid.UUID) ([]model.OrderLine, error)
	UpdateDetails(ctx context.Context, b *model.PackingBox) error

	// Used inside transactions; callers must pass the tx instance
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PackingBox, error)
	FindOpenByOrderTx(tx *gorm.DB, orderID uuid.UUID) (*model.PackingBox, error)
	CountByOrderTx(tx *gorm.DB, orderID uuid.UUID) (int64, error)
	CreateTx(tx *gorm.DB, b *model.PackingBox) error
	UpdateTx(tx *gorm.DB, b *model.PackingBox) error
	AssignLineTx(tx *gorm.DB, line *model.OrderLine) error
}

type packingBoxRepo struct{ db *gorm.DB }

func NewPackingBoxRepository(db *gorm.DB) PackingBoxRepository { return &packingBoxRepo{db: db} }

func (r *packingBoxRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PackingBox, error) {
	var b model.PackingBox
	err := r.db.WithContext(ctx).Preload("Operator").Where("id = ?", id).First(&b).Error
	return &b, err
}

func (r *packingBoxRepo) FindByCodigo(ctx context.Context, codigo string) (*model.PackingBox, error) {
	var b model.PackingBox
	err := r.db.WithContext(ctx).Preload("Operator").Where("codigo_caja = ?", codigo).First(&b).Error
	return &b, err
}

func (r *packingBoxRepo) ListByOrder(ctx context.Context, orderID uuid.UUID, estado string) ([]model.PackingBox, error) {
	var boxes []model.PackingBox
	q := r.db.WithContext(ctx).Preload("Operator").Where("order_id = ?", orderID)
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Order("numero_caja ASC").Find(&boxes).Error
	return boxes, err
}

func (r *packingBoxRepo) ListLines(ctx context.Context, boxID uuid.UUID) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.db.WithContext(ctx).
		Preload("ProductReference").
		Preload("ProductLocation").
		Preload("ProductLocation.Product").
		Where("packing_box_id = ?", boxID).
		Order("fecha_empacado ASC, id ASC").
		Find(&lines).Error
	return lines, err
}

// UpdateDetails writes weight, dimensions and notes. Status changes go
// through UpdateTx under the order lock.
func (r *packingBoxRepo) UpdateDetails(ctx context.Context, b *model.PackingBox) error {
	return r.db.WithContext(ctx).Model(b).
		Select("peso_kg", "dimensiones", "notas", "updated_at").
		Updates(b).Error
}

func (r *packingBoxRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PackingBox, error) {
	var b model.PackingBox
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&b).Error
	return &b, err
}

func (r *packingBoxRepo) FindOpenByOrderTx(tx *gorm.DB, orderID uuid.UUID) (*model.PackingBox, error) {
	var b model.PackingBox
	err := tx.Where("order_id = ? AND estado = ?", orderID, model.BoxOpen).First(&b).Error
	return &b, err
}

func (r *packingBoxRepo) CountByOrderTx(tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	var n int64
	err := tx.Model(&model.PackingBox{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, err
}

func (r *packingBoxRepo) CreateTx(tx *gorm.DB, b *model.PackingBox) error {
	return tx.Omit(clause.Associations).Create(b).Error
}

func (r *packingBoxRepo) UpdateTx(tx *gorm.DB, b *model.PackingBox) error {
	return tx.Model(b).Select(
		"estado", "total_items", "peso_kg", "dimensiones", "notas", "fecha_cierre", "updated_at",
	).Updates(b).Error
}

func (r *packingBoxRepo) AssignLineTx(tx *gorm.DB, line *model.OrderLine) error {
	return tx.Model(line).Select("packing_box_id", "fecha_empacado", "updated_at").Updates(line).Error
}
