package cartControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/locks"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
	"github.com/Samy440/ebookstore/pricing"
)

// Sentinel errors for the cart write paths. Handlers translate them to
// status codes; everything else is a 500.
var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrBookNotFound    = errors.New("book not found or unavailable")
)

// -------- Request Structs --------

type UpsertItemRequest struct {
	BookID   uint `json:"book_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// -------- Views --------

type LineView struct {
	Book      *models.Book    `json:"book"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}

type CartView struct {
	Items        []LineView      `json:"items"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	ItemCount    int             `json:"item_count"`
	StaleBookIDs []uint          `json:"stale_book_ids,omitempty"`
}

func buildView(totals pricing.Totals) CartView {
	view := CartView{
		Items:        make([]LineView, 0, len(totals.Lines)),
		GrandTotal:   totals.GrandTotal,
		ItemCount:    totals.ItemCount,
		StaleBookIDs: totals.Stale,
	}
	for _, line := range totals.Lines {
		view.Items = append(view.Items, LineView{
			Book:      line.Item.Book,
			Quantity:  line.Item.Quantity,
			LineTotal: line.LineTotal,
			AddedAt:   line.Item.AddedAt,
		})
	}
	return view
}

// -------- Core Logic --------

// GetOrCreateCart returns the user's cart row, creating it on first
// touch. A lost race against a concurrent first touch falls back to
// reading the winner's row.
func GetOrCreateCart(db *gorm.DB, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if createErr := db.Create(&cart).Error; createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				err = db.Where("user_id = ?", userID).First(&cart).Error
				return cart, err
			}
			return cart, fmt.Errorf("create cart: %w", createErr)
		}
		return cart, nil
	}
	if err != nil {
		return cart, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// LoadCartItems returns the cart's lines with their books attached, in
// insertion order so the view is stable across reads.
func LoadCartItems(db *gorm.DB, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.Preload("Book").Where("cart_id = ?", cartID).Order("id").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	return items, nil
}

// UpsertLine sets the quantity for one book in the user's cart. The
// quantity overwrites rather than increments, so retrying the same
// request is harmless. Inactive and missing books are rejected alike.
func UpsertLine(db *gorm.DB, userID, bookID uint, quantity int) (models.CartItem, bool, error) {
	var item models.CartItem
	if quantity < 1 {
		return item, false, ErrInvalidQuantity
	}

	unlock := locks.LockUser(userID)
	defer unlock()

	var book models.Book
	if err := db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, false, ErrBookNotFound
		}
		return item, false, fmt.Errorf("load book: %w", err)
	}
	if !book.IsActive {
		return item, false, ErrBookNotFound
	}

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return item, false, err
	}

	err = db.Where("cart_id = ? AND book_id = ?", cart.ID, bookID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{
			CartID:   cart.ID,
			BookID:   bookID,
			Quantity: quantity,
			AddedAt:  time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return item, false, fmt.Errorf("create cart line: %w", err)
		}
		item.Book = &book
		return item, true, nil
	}
	if err != nil {
		return item, false, fmt.Errorf("load cart line: %w", err)
	}

	item.Quantity = quantity
	if err := db.Save(&item).Error; err != nil {
		return item, false, fmt.Errorf("update cart line: %w", err)
	}
	item.Book = &book
	return item, false, nil
}

// RemoveLine deletes one book's line from the user's cart. Removing a
// line that is not there succeeds; the end state is the same either way.
func RemoveLine(db *gorm.DB, userID, bookID uint) error {
	unlock := locks.LockUser(userID)
	defer unlock()

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return err
	}
	if err := db.Where("cart_id = ? AND book_id = ?", cart.ID, bookID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

// ClearCart removes every line. Clearing an already-empty cart succeeds.
func ClearCart(db *gorm.DB, userID uint) error {
	unlock := locks.LockUser(userID)
	defer unlock()

	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// LoadCart prices the user's cart for display. Stale lines stay in the
// database but are excluded from the totals and called out by book id.
func LoadCart(db *gorm.DB, userID uint) (pricing.Totals, error) {
	cart, err := GetOrCreateCart(db, userID)
	if err != nil {
		return pricing.Totals{}, err
	}
	items, err := LoadCartItems(db, cart.ID)
	if err != nil {
		return pricing.Totals{}, err
	}
	return pricing.ComputeTotals(items), nil
}

// -------- Handlers --------

// POST /cart/items
func UpsertCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		var req UpsertItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}

		item, created, err := UpsertLine(db, identity.UserID, req.BookID, req.Quantity)
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, item)
	}
}

// PATCH /cart/items/:book_id
//
// Same overwrite semantics as the POST; the book id just comes from the
// path instead of the body.
func UpdateCartItemQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		bookID, ok := parseID(c.Param("book_id"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "book_id must be a positive integer"})
			return
		}
		var req UpdateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}

		item, _, err := UpsertLine(db, identity.UserID, bookID, req.Quantity)
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /cart/items/:book_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		bookID, ok := parseID(c.Param("book_id"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "book_id must be a positive integer"})
			return
		}

		if err := RemoveLine(db, identity.UserID, bookID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete cart line"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart line removed"})
	}
}

// DELETE /cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		if err := ClearCart(db, identity.UserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}

// GET /cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		totals, err := LoadCart(db, identity.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, buildView(totals))
	}
}

// GET /admin/users/:user_id/cart
func GetAnyUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		userID, ok := parseID(c.Param("user_id"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a positive integer"})
			return
		}

		// Resolve the account first so viewing a typo'd id cannot
		// lazily create a cart for a user that does not exist.
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch user"})
			return
		}

		totals, err := LoadCart(db, user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, buildView(totals))
	}
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
