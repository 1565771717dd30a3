package models

import "time"

// Cart is the single mutable basket a user owns. One row per user; it is
// created lazily on first read or write and survives being emptied.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// CartItem is one line of a cart. The composite unique index makes
// "one line per book per cart" a database invariant, not just an
// application-level check.
type CartItem struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CartID   uint      `gorm:"uniqueIndex:idx_cart_book;not null" json:"cart_id"`
	BookID   uint      `gorm:"uniqueIndex:idx_cart_book;not null" json:"book_id"`
	Quantity int       `gorm:"not null" json:"quantity"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`
	Book     *Book     `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT" json:"book,omitempty"`
}
