package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. New orders always start out pending; the remaining
// values are driven by fulfilment, not by the checkout path.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is an immutable record of a completed checkout. UserID is a plain
// column with no foreign key so order history outlives account deletion,
// and OrderItem snapshots title-independent purchase data so later catalog
// edits never touch it.
type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Reference   string          `gorm:"uniqueIndex;not null" json:"reference"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      string          `gorm:"not null;default:pending" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order. PriceAtPurchase is the unit price
// captured at checkout; BookID is kept only as a pointer for display and
// carries no foreign key, so books referenced here can still be deleted.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"index;not null" json:"order_id"`
	BookID          uint            `gorm:"not null" json:"book_id"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`

	// Book is attached by the read path when the catalog row still
	// exists. It is display-only and never persisted.
	Book *Book `gorm:"-" json:"book,omitempty"`
}

// LineTotal is quantity times the captured unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
