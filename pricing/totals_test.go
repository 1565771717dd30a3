package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Samy440/ebookstore/models"
)

func book(id uint, price string, active bool) *models.Book {
	return &models.Book{ID: id, Title: "b", Author: "a", Price: decimal.RequireFromString(price), IsActive: active}
}

func TestComputeTotals(t *testing.T) {
	items := []models.CartItem{
		{BookID: 1, Quantity: 2, Book: book(1, "9.99", true)},
		{BookID: 2, Quantity: 1, Book: book(2, "4.50", true)},
	}

	got := ComputeTotals(items)

	if want := decimal.RequireFromString("24.48"); !got.GrandTotal.Equal(want) {
		t.Fatalf("grand total = %s, want %s", got.GrandTotal, want)
	}
	if got.ItemCount != 3 {
		t.Fatalf("item count = %d, want 3", got.ItemCount)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(got.Lines))
	}
	if want := decimal.RequireFromString("19.98"); !got.Lines[0].LineTotal.Equal(want) {
		t.Fatalf("first line total = %s, want %s", got.Lines[0].LineTotal, want)
	}
	if len(got.Stale) != 0 {
		t.Fatalf("unexpected stale lines: %v", got.Stale)
	}
}

func TestComputeTotalsExcludesStaleLines(t *testing.T) {
	items := []models.CartItem{
		{BookID: 1, Quantity: 2, Book: book(1, "9.99", true)},
		{BookID: 2, Quantity: 5, Book: nil},                   // book row gone
		{BookID: 3, Quantity: 1, Book: book(3, "99.00", false)}, // deactivated
	}

	got := ComputeTotals(items)

	if want := decimal.RequireFromString("19.98"); !got.GrandTotal.Equal(want) {
		t.Fatalf("grand total = %s, want %s", got.GrandTotal, want)
	}
	if got.ItemCount != 2 {
		t.Fatalf("item count = %d, want 2", got.ItemCount)
	}
	if len(got.Stale) != 2 || got.Stale[0] != 2 || got.Stale[1] != 3 {
		t.Fatalf("stale = %v, want [2 3]", got.Stale)
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	got := ComputeTotals(nil)
	if !got.GrandTotal.Equal(decimal.Zero) {
		t.Fatalf("empty cart grand total = %s, want 0", got.GrandTotal)
	}
	if got.ItemCount != 0 || len(got.Lines) != 0 {
		t.Fatalf("empty cart produced lines: %+v", got)
	}
}

// Decimal arithmetic must not inherit float rounding. 0.1+0.2 style sums
// come out exact.
func TestComputeTotalsExactDecimal(t *testing.T) {
	items := []models.CartItem{
		{BookID: 1, Quantity: 1, Book: book(1, "0.10", true)},
		{BookID: 2, Quantity: 1, Book: book(2, "0.20", true)},
	}
	got := ComputeTotals(items)
	if want := decimal.RequireFromString("0.30"); !got.GrandTotal.Equal(want) {
		t.Fatalf("grand total = %s, want exactly %s", got.GrandTotal, want)
	}
}
