package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalog entry. Price is fixed-point decimal end to end; it is
// never parsed into a float anywhere in the codebase.
type Book struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Title         string          `gorm:"not null;index" json:"title"`
	Author        string          `gorm:"not null;index" json:"author"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	PDFURL        string          `json:"pdf_url"`
	CoverImageURL string          `json:"cover_image_url"`
	Category      string          `gorm:"index" json:"category"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
