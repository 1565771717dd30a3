// Package pricing computes cart money. It is pure: no database, no
// handlers, just decimal arithmetic over already-loaded cart lines, so the
// same numbers back both the cart view and checkout.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Samy440/ebookstore/models"
)

// Line is one cart line with its extended total.
type Line struct {
	Item      models.CartItem
	LineTotal decimal.Decimal
}

// Totals is the priced view of a cart. Stale lines, where the book has
// been removed or deactivated since it was added, contribute nothing to
// GrandTotal or ItemCount and are reported by book id instead.
type Totals struct {
	Lines      []Line
	GrandTotal decimal.Decimal
	ItemCount  int
	Stale      []uint
}

// ComputeTotals prices the given cart lines. Each line total is unit
// price times quantity; GrandTotal is the sum over live lines and
// ItemCount the sum of their quantities. Items must be loaded with their
// Book association; a nil or inactive book marks the line stale.
func ComputeTotals(items []models.CartItem) Totals {
	t := Totals{GrandTotal: decimal.Zero}
	for _, item := range items {
		if item.Book == nil || !item.Book.IsActive {
			t.Stale = append(t.Stale, item.BookID)
			continue
		}
		lineTotal := item.Book.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		t.Lines = append(t.Lines, Line{Item: item, LineTotal: lineTotal})
		t.GrandTotal = t.GrandTotal.Add(lineTotal)
		t.ItemCount += item.Quantity
	}
	return t
}
