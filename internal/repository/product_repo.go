package repository

import (
	"context"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for the catalog and its
// shelf locations. Services depend on this interface, not on the concrete
// GORM implementation, enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.ProductReference) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductReference, error)
	FindByEAN(ctx context.Context, ean string) (*model.ProductReference, error)
	FindByReferencia(ctx context.Context, referencia string) (*model.ProductReference, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.ProductReference, int64, error)

	// Locations
	CreateLocation(ctx context.Context, loc *model.ProductLocation) error
	FindLocationByID(ctx context.Context, id uuid.UUID) (*model.ProductLocation, error)
	ListLocations(ctx context.Context, productID uuid.UUID) ([]model.ProductLocation, error)
	DeactivateLocation(ctx context.Context, id uuid.UUID) error
	ListLowStock(ctx context.Context) ([]model.ProductLocation, error)

	// Used inside transactions; callers must pass the tx instance
	FindLocationForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductLocation, error)
	SetLocationStockTx(tx *gorm.DB, id uuid.UUID, stock int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func activeLocationsFirst(db *gorm.DB) *gorm.DB {
	return db.Order("activa DESC, prioridad ASC, altura ASC, codigo_ubicacion ASC")
}

func (r *productRepo) Create(ctx context.Context, p *model.ProductReference) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductReference, error) {
	var p model.ProductReference
	err := r.db.WithContext(ctx).
		Preload("Locations", activeLocationsFirst).
		Where("id = ?", id).
		First(&p).Error
	return &p, err
}

func (r *productRepo) FindByEAN(ctx context.Context, ean string) (*model.ProductReference, error) {
	var p model.ProductReference
	err := r.db.WithContext(ctx).
		Preload("Locations", func(db *gorm.DB) *gorm.DB {
			return activeLocationsFirst(db.Where("activa = ?", true))
		}).
		Where("ean = ? AND activo = ?", ean, true).
		First(&p).Error
	return &p, err
}

func (r *productRepo) FindByReferencia(ctx context.Context, referencia string) (*model.ProductReference, error) {
	var p model.ProductReference
	err := r.db.WithContext(ctx).Where("referencia = ?", referencia).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.ProductReference, int64, error) {
	var productos []model.ProductReference
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductReference{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = ?", false)
	case "all":
		// no filter
	default:
		q = q.Where("activo = ?", true)
	}

	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre_producto) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}
	if filter.Temporada != "" {
		q = q.Where("temporada = ?", filter.Temporada)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 20, 100)
	offset := (page - 1) * limit
	err := q.Preload("Locations", "activa = ?", true).
		Order("nombre_producto ASC, posicion_talla ASC").
		Limit(limit).Offset(offset).
		Find(&productos).Error
	return productos, total, err
}

func (r *productRepo) CreateLocation(ctx context.Context, loc *model.ProductLocation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(loc).Error
}

func (r *productRepo) FindLocationByID(ctx context.Context, id uuid.UUID) (*model.ProductLocation, error) {
	var loc model.ProductLocation
	err := r.db.WithContext(ctx).Preload("Product").Where("id = ?", id).First(&loc).Error
	return &loc, err
}

func (r *productRepo) ListLocations(ctx context.Context, productID uuid.UUID) ([]model.ProductLocation, error) {
	var locs []model.ProductLocation
	err := activeLocationsFirst(r.db.WithContext(ctx).Where("product_id = ?", productID)).Find(&locs).Error
	return locs, err
}

func (r *productRepo) DeactivateLocation(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.ProductLocation{}).Where("id = ?", id).Update("activa", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListLowStock returns active locations below their minimum.
func (r *productRepo) ListLowStock(ctx context.Context) ([]model.ProductLocation, error) {
	var locs []model.ProductLocation
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("activa = ? AND stock_actual < stock_minimo", true).
		Order("pasillo ASC, codigo_ubicacion ASC").
		Find(&locs).Error
	return locs, err
}

func (r *productRepo) FindLocationForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductLocation, error) {
	var loc model.ProductLocation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&loc).Error
	return &loc, err
}

func (r *productRepo) SetLocationStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.ProductLocation{}).Where("id = ?", id).Update("stock_actual", stock).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
