package models

import "time"

// Favorite marks a book on a user's wishlist. The composite unique index
// rejects duplicate favorites at the database level.
type Favorite struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	UserID  uint      `gorm:"uniqueIndex:idx_user_book;not null" json:"user_id"`
	BookID  uint      `gorm:"uniqueIndex:idx_user_book;not null" json:"book_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
	Book    *Book     `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT" json:"book,omitempty"`
}
