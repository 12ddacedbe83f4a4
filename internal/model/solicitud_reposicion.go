package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EstadoReposicion is the lifecycle of a replenishment request.
type EstadoReposicion string

const (
	ReposicionPending    EstadoReposicion = "PENDING"
	ReposicionInProgress EstadoReposicion = "IN_PROGRESS"
	ReposicionCompleted  EstadoReposicion = "COMPLETED"
	ReposicionRejected   EstadoReposicion = "REJECTED"
)

// IsOpen reports whether the request still awaits execution.
func (e EstadoReposicion) IsOpen() bool {
	return e == ReposicionPending || e == ReposicionInProgress
}

// SolicitudReposicion asks for a picking location to be refilled.
// Requests raised by the stock-alert cron have no requester.
type SolicitudReposicion struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	LocationID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	OrderID            *uuid.UUID       `gorm:"type:uuid;index"`
	CantidadSolicitada int              `gorm:"not null"`
	Estado             EstadoReposicion `gorm:"type:varchar(20);not null;index"`
	SolicitanteID      *uuid.UUID       `gorm:"type:uuid"`
	EjecutorID         *uuid.UUID       `gorm:"type:uuid"`
	Notas              *string
	FechaSolicitud     time.Time `gorm:"not null"`
	FechaInicio        *time.Time
	FechaFin           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Location *ProductLocation  `gorm:"foreignKey:LocationID"`
	Product  *ProductReference `gorm:"foreignKey:ProductID"`
}

func (SolicitudReposicion) TableName() string { return "solicitudes_reposicion" }

func (s *SolicitudReposicion) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Estado == "" {
		s.Estado = ReposicionPending
	}
	if s.FechaSolicitud.IsZero() {
		s.FechaSolicitud = time.Now()
	}
	return nil
}
