package repository

import (
	"context"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OperatorRepository interface {
	Create(ctx context.Context, o *model.Operator) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Operator, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Operator, error)
	List(ctx context.Context, soloActivos bool) ([]model.Operator, error)
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	Update(ctx context.Context, o *model.Operator) error
}

type operatorRepo struct{ db *gorm.DB }

func NewOperatorRepository(db *gorm.DB) OperatorRepository { return &operatorRepo{db: db} }

func (r *operatorRepo) Create(ctx context.Context, o *model.Operator) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *operatorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	var o model.Operator
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error
	return &o, err
}

// FindByCodigo matches the PDA operator code case-sensitively; codes are
// stored upper-case.
func (r *operatorRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Operator, error) {
	var o model.Operator
	err := r.db.WithContext(ctx).Where("codigo_operario = ?", codigo).First(&o).Error
	return &o, err
}

func (r *operatorRepo) List(ctx context.Context, soloActivos bool) ([]model.Operator, error) {
	var ops []model.Operator
	q := r.db.WithContext(ctx)
	if soloActivos {
		q = q.Where("activo = ?", true)
	}
	err := q.Order("codigo_operario ASC").Find(&ops).Error
	return ops, err
}

func (r *operatorRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Operator{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Update writes the editable fields (nombre, activo). The code is immutable.
func (r *operatorRepo) Update(ctx context.Context, o *model.Operator) error {
	res := r.db.WithContext(ctx).Model(o).Select("nombre", "activo", "updated_at").Updates(o)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
