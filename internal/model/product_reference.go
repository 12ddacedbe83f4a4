package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductReference is a catalog entry. Order lines reference it but never own it.
// Referencia is the stable hexadecimal identifier coming from the catalog.
type ProductReference struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Referencia       string    `gorm:"uniqueIndex;not null"`
	NombreProducto   string    `gorm:"index;not null"`
	ColorID          string    `gorm:"not null"`
	Color            string    `gorm:"not null"`
	DescripcionColor *string
	Talla            string `gorm:"not null"`
	// PosicionTalla orders sizes (XS < S < M ...) independently of their labels.
	PosicionTalla int     `gorm:"not null;default:0"`
	EAN           *string `gorm:"uniqueIndex"`
	SKU           *string `gorm:"index"`
	Temporada     *string
	Activo        bool `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Locations []ProductLocation `gorm:"foreignKey:ProductID"`
}

func (ProductReference) TableName() string { return "product_references" }

func (p *ProductReference) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DisplayName joins name, color and size the way the PDA shows it.
func (p *ProductReference) DisplayName() string {
	parts := []string{p.NombreProducto}
	if p.Color != "" {
		parts = append(parts, p.Color)
	}
	if p.Talla != "" {
		parts = append(parts, p.Talla)
	}
	return strings.Join(parts, " ")
}

// StockTotal sums stock over the active locations that are loaded.
func (p *ProductReference) StockTotal() int {
	total := 0
	for _, l := range p.Locations {
		if l.Activa {
			total += l.StockActual
		}
	}
	return total
}

// Stock status of a product as shown on the catalog dashboards.
const (
	StockStatusOut    = "out-of-stock"
	StockStatusLow    = "low-stock"
	StockStatusActive = "active"

	// LowStockTotal is the total below which a product counts as low on stock.
	LowStockTotal = 50
)

// StockStatus classifies the product by its total active stock.
func (p *ProductReference) StockStatus() string {
	switch total := p.StockTotal(); {
	case total == 0:
		return StockStatusOut
	case total < LowStockTotal:
		return StockStatusLow
	default:
		return StockStatusActive
	}
}
