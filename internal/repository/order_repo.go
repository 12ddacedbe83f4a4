package repository

import (
	"context"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository loads and persists orders. The *Graph methods return the
// full Order → Lines → (ProductReference, ProductLocation → Product) graph
// the picking engine works on.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindIDByNumero(ctx context.Context, numero string) (uuid.UUID, error)
	FindGraph(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)

	// Used inside transactions; callers must pass the tx instance
	FindGraphForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	UpdateHeaderTx(tx *gorm.DB, o *model.Order) error
	UpdateLineProgressTx(tx *gorm.DB, line *model.OrderLine) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func preloadGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Operator").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_lines.created_at ASC, order_lines.id ASC")
		}).
		Preload("Lines.ProductReference").
		Preload("Lines.ProductLocation").
		Preload("Lines.ProductLocation.Product")
}

// Create inserts the order and its lines. Referenced products, locations and
// the operator must already exist; they are never upserted from here.
func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return err
		}
		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
			if err := tx.Omit(clause.Associations).Create(&o.Lines[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Operator").Where("id = ?", id).First(&o).Error
	return &o, err
}

func (r *orderRepo) FindIDByNumero(ctx context.Context, numero string) (uuid.UUID, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Select("id").Where("numero_orden = ?", numero).First(&o).Error
	return o.ID, err
}

func (r *orderRepo) FindGraph(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := preloadGraph(r.db.WithContext(ctx)).Where("id = ?", id).First(&o).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Prioridad != "" {
		q = q.Where("prioridad = ?", filter.Prioridad)
	}
	if filter.OperatorID != "" {
		q = q.Where("operator_id = ?", filter.OperatorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 20, 100)
	offset := (page - 1) * limit
	err := q.Preload("Operator").
		Order("fecha_importacion DESC, numero_orden ASC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, total, err
}

// FindGraphForUpdateTx row-locks the order before loading its graph. The
// lock is a no-op on SQLite, which serializes writers on its own.
func (r *orderRepo) FindGraphForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var locked model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").Where("id = ?", id).First(&locked).Error; err != nil {
		return nil, err
	}
	var o model.Order
	err := preloadGraph(tx).Where("id = ?", id).First(&o).Error
	return &o, err
}

func (r *orderRepo) UpdateHeaderTx(tx *gorm.DB, o *model.Order) error {
	return tx.Model(o).Select(
		"estado", "operator_id", "total_items", "items_completados", "total_cajas", "caja_activa_id", "notas",
		"fecha_asignacion", "fecha_inicio_picking", "fecha_fin_picking", "fecha_packing",
		"fecha_listo", "fecha_envio", "fecha_cancelacion", "updated_at",
	).Updates(o).Error
}

func (r *orderRepo) UpdateLineProgressTx(tx *gorm.DB, line *model.OrderLine) error {
	return tx.Model(line).Select("cantidad_servida", "estado", "updated_at").Updates(line).Error
}

func (r *orderRepo) DB() *gorm.DB { return r.db }
