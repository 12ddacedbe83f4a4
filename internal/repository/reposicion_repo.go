package repository

import (
	"context"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReposicionFilter struct {
	Estado string
	Page   int
	Limit  int
}

type ReposicionRepository interface {
	Create(ctx context.Context, s *model.SolicitudReposicion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SolicitudReposicion, error)
	List(ctx context.Context, filter ReposicionFilter) ([]model.SolicitudReposicion, int64, error)
	// HasOpenForLocation reports whether a PENDING or IN_PROGRESS request exists.
	HasOpenForLocation(ctx context.Context, locationID uuid.UUID) (bool, error)

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SolicitudReposicion, error)
	UpdateTx(tx *gorm.DB, s *model.SolicitudReposicion) error

	DB() *gorm.DB
}

type reposicionRepo struct{ db *gorm.DB }

func NewReposicionRepository(db *gorm.DB) ReposicionRepository { return &reposicionRepo{db: db} }

func (r *reposicionRepo) Create(ctx context.Context, s *model.SolicitudReposicion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *reposicionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SolicitudReposicion, error) {
	var s model.SolicitudReposicion
	err := r.db.WithContext(ctx).Preload("Location").Preload("Product").Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *reposicionRepo) List(ctx context.Context, filter ReposicionFilter) ([]model.SolicitudReposicion, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SolicitudReposicion{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)
	var rows []model.SolicitudReposicion
	err := q.Preload("Location").Preload("Product").
		Order("fecha_solicitud DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *reposicionRepo) HasOpenForLocation(ctx context.Context, locationID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SolicitudReposicion{}).
		Where("location_id = ? AND estado IN ?", locationID,
			[]model.EstadoReposicion{model.ReposicionPending, model.ReposicionInProgress}).
		Count(&n).Error
	return n > 0, err
}

func (r *reposicionRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SolicitudReposicion, error) {
	var s model.SolicitudReposicion
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *reposicionRepo) UpdateTx(tx *gorm.DB, s *model.SolicitudReposicion) error {
	return tx.Model(s).Select(
		"estado", "ejecutor_id", "notas", "fecha_inicio", "fecha_fin", "updated_at",
	).Updates(s).Error
}

func (r *reposicionRepo) DB() *gorm.DB { return r.db }
