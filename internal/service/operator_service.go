package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"

	"github.com/google/uuid"
)

type OperatorService interface {
	Crear(ctx context.Context, req dto.CrearOperarioRequest) (*dto.OperarioResponse, error)
	Listar(ctx context.Context, incluirInactivos bool) ([]dto.OperarioResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.OperarioResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOperarioRequest) (*dto.OperarioResponse, error)
	// AlternarEstado flips the active flag and returns the new state.
	AlternarEstado(ctx context.Context, id uuid.UUID) (*dto.OperarioResponse, error)
}

type operatorService struct {
	repo repository.OperatorRepository
}

func NewOperatorService(repo repository.OperatorRepository) OperatorService {
	return &operatorService{repo: repo}
}

// Crear stores the PDA code upper-cased so lookups are case-insensitive.
func (s *operatorService) Crear(ctx context.Context, req dto.CrearOperarioRequest) (*dto.OperarioResponse, error) {
	codigo := strings.ToUpper(strings.TrimSpace(req.CodigoOperario))
	if _, err := s.repo.FindByCodigo(ctx, codigo); err == nil {
		return nil, apierror.DuplicateEntity("El código de operario %s ya existe", codigo)
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("find operator: %w", err)
	}

	op := &model.Operator{
		CodigoOperario: codigo,
		Nombre:         strings.TrimSpace(req.Nombre),
		Activo:         true,
	}
	if err := s.repo.Create(ctx, op); err != nil {
		if isUniqueViolation(err) {
			return nil, apierror.DuplicateEntity("El código de operario %s ya existe", codigo)
		}
		return nil, fmt.Errorf("create operator: %w", err)
	}
	return operatorToResponse(op), nil
}

func (s *operatorService) Listar(ctx context.Context, incluirInactivos bool) ([]dto.OperarioResponse, error) {
	ops, err := s.repo.List(ctx, !incluirInactivos)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	out := make([]dto.OperarioResponse, 0, len(ops))
	for i := range ops {
		out = append(out, *operatorToResponse(&ops[i]))
	}
	return out, nil
}

func (s *operatorService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.OperarioResponse, error) {
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	op, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(codigo), "find operator")
	}
	return operatorToResponse(op), nil
}

func (s *operatorService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActivo(ctx, id, false); err != nil {
		return orNotFound(err, apierror.OperatorNotFound(id.String()), "deactivate operator")
	}
	return nil
}

func (s *operatorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOperarioRequest) (*dto.OperarioResponse, error) {
	op, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(id.String()), "find operator")
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if len([]rune(nombre)) < 2 {
			return nil, apierror.InvalidRequest("nombre debe tener al menos 2 caracteres")
		}
		op.Nombre = nombre
	}
	if req.Activo != nil {
		op.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, op); err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(id.String()), "update operator")
	}
	return operatorToResponse(op), nil
}

func (s *operatorService) AlternarEstado(ctx context.Context, id uuid.UUID) (*dto.OperarioResponse, error) {
	op, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apierror.OperatorNotFound(id.String()), "find operator")
	}
	activo := !op.Activo
	return s.Actualizar(ctx, id, dto.ActualizarOperarioRequest{Activo: &activo})
}

func operatorToResponse(op *model.Operator) *dto.OperarioResponse {
	return &dto.OperarioResponse{
		ID:             op.ID.String(),
		CodigoOperario: op.CodigoOperario,
		Nombre:         op.Nombre,
		Activo:         op.Activo,
		CreatedAt:      fmtTime(op.CreatedAt),
	}
}
