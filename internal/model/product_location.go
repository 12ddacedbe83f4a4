package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AlturaMin    = 1
	AlturaMax    = 10
	PrioridadMin = 1
	PrioridadMax = 5
)

// Segments of a location code are separated by "-", so aisle and slot must
// not contain it or the code would not parse back.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ProductLocation is a physical shelf slot stocking one product.
// CodigoUbicacion is derived from the slot tuple and never edited directly.
type ProductLocation struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Pasillo         string    `gorm:"type:varchar(10);not null;index"`
	Lado            Lado      `gorm:"type:varchar(10);not null"`
	Ubicacion       string    `gorm:"type:varchar(10);not null"`
	Altura          int       `gorm:"not null"`
	StockActual     int       `gorm:"not null;default:0"`
	StockMinimo     int       `gorm:"not null;default:0"`
	Prioridad       int       `gorm:"not null;default:3"`
	Activa          bool      `gorm:"not null"`
	CodigoUbicacion string    `gorm:"type:varchar(50);not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Product *ProductReference `gorm:"foreignKey:ProductID"`
}

func (ProductLocation) TableName() string { return "product_locations" }

func (l *ProductLocation) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CodigoUbicacion == "" {
		l.CodigoUbicacion = BuildLocationCode(l.Pasillo, l.Lado, l.Ubicacion, l.Altura)
	}
	return nil
}

// LocationSpec is the raw input for a new shelf slot.
type LocationSpec struct {
	ProductID   uuid.UUID
	Pasillo     string
	Lado        string
	Ubicacion   string
	Altura      int
	Prioridad   int
	StockActual int
	StockMinimo int
}

// NewProductLocation validates spec and builds an active location with its code.
func NewProductLocation(spec LocationSpec) (*ProductLocation, error) {
	pasillo := strings.TrimSpace(spec.Pasillo)
	ubicacion := strings.TrimSpace(spec.Ubicacion)

	if !segmentPattern.MatchString(pasillo) {
		return nil, apierror.InvalidLocation("Pasillo inválido %q: debe ser alfanumérico", spec.Pasillo)
	}
	lado, err := ParseLado(spec.Lado)
	if err != nil {
		return nil, apierror.InvalidLocation("Lado inválido %q: debe ser IZQUIERDA o DERECHA", spec.Lado)
	}
	if !segmentPattern.MatchString(ubicacion) {
		return nil, apierror.InvalidLocation("Ubicación inválida %q: debe ser alfanumérica", spec.Ubicacion)
	}
	if spec.Altura < AlturaMin || spec.Altura > AlturaMax {
		return nil, apierror.InvalidLocation("Altura %d fuera de rango (%d-%d)", spec.Altura, AlturaMin, AlturaMax)
	}
	if spec.Prioridad < PrioridadMin || spec.Prioridad > PrioridadMax {
		return nil, apierror.InvalidLocation("Prioridad %d fuera de rango (%d-%d)", spec.Prioridad, PrioridadMin, PrioridadMax)
	}
	if spec.StockActual < 0 || spec.StockMinimo < 0 {
		return nil, apierror.InvalidLocation("El stock y el stock mínimo no pueden ser negativos")
	}

	return &ProductLocation{
		ProductID:       spec.ProductID,
		Pasillo:         pasillo,
		Lado:            lado,
		Ubicacion:       ubicacion,
		Altura:          spec.Altura,
		StockActual:     spec.StockActual,
		StockMinimo:     spec.StockMinimo,
		Prioridad:       spec.Prioridad,
		Activa:          true,
		CodigoUbicacion: BuildLocationCode(pasillo, lado, ubicacion, spec.Altura),
	}, nil
}

// BuildLocationCode composes the canonical {pasillo}-{lado}-{ubicacion}-{altura} code.
func BuildLocationCode(pasillo string, lado Lado, ubicacion string, altura int) string {
	return fmt.Sprintf("%s-%s-%s-%d", pasillo, lado, ubicacion, altura)
}

// LocationCode is the parsed form of a canonical location code.
type LocationCode struct {
	Pasillo   string
	Lado      Lado
	Ubicacion string
	Altura    int
}

func (c LocationCode) String() string {
	return BuildLocationCode(c.Pasillo, c.Lado, c.Ubicacion, c.Altura)
}

// ParseLocationCode is the inverse of BuildLocationCode.
func ParseLocationCode(code string) (LocationCode, error) {
	parts := strings.Split(strings.TrimSpace(code), "-")
	if len(parts) != 4 {
		return LocationCode{}, apierror.InvalidLocation("Código de ubicación %q: se esperan 4 segmentos", code)
	}
	if !segmentPattern.MatchString(parts[0]) || !segmentPattern.MatchString(parts[2]) {
		return LocationCode{}, apierror.InvalidLocation("Código de ubicación %q: segmentos no alfanuméricos", code)
	}
	lado, err := ParseLado(parts[1])
	if err != nil {
		return LocationCode{}, apierror.InvalidLocation("Código de ubicación %q: %s", code, err.Error())
	}
	altura, err := strconv.Atoi(parts[3])
	if err != nil || altura < AlturaMin || altura > AlturaMax {
		return LocationCode{}, apierror.InvalidLocation("Código de ubicación %q: altura inválida", code)
	}
	return LocationCode{Pasillo: parts[0], Lado: lado, Ubicacion: parts[2], Altura: altura}, nil
}

// SameSlot reports whether both locations occupy the same physical tuple.
func (l *ProductLocation) SameSlot(o *ProductLocation) bool {
	return l.Pasillo == o.Pasillo && l.Lado == o.Lado && l.Ubicacion == o.Ubicacion && l.Altura == o.Altura
}

// BajoMinimo reports whether the slot has fallen below its minimum. A slot
// sitting exactly at its minimum, or with no minimum set, is not flagged.
func (l *ProductLocation) BajoMinimo() bool { return l.StockActual < l.StockMinimo }

// CheckDuplicateLocation enforces that no two active locations of the same
// product share the (pasillo, lado, ubicacion, altura) tuple.
func CheckDuplicateLocation(existing []ProductLocation, candidate *ProductLocation) error {
	if !candidate.Activa {
		return nil
	}
	for i := range existing {
		e := &existing[i]
		if e.ID == candidate.ID || !e.Activa || e.ProductID != candidate.ProductID {
			continue
		}
		if e.SameSlot(candidate) {
			return apierror.DuplicateLocation(candidate.CodigoUbicacion)
		}
	}
	return nil
}
