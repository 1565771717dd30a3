package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	cartControllers "github.com/Samy440/ebookstore/controllers/cart"
	"github.com/Samy440/ebookstore/events"
	"github.com/Samy440/ebookstore/locks"
	"github.com/Samy440/ebookstore/metrics"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
	"github.com/Samy440/ebookstore/pricing"
)

// Sentinel errors for checkout. Both leave the cart exactly as it was.
var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrStaleCart = errors.New("cart contains books that are no longer available")
)

// -------- Helpers --------

// Generate unique order reference
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// attachBooks fills the display-only Book pointer on order items whose
// book still exists in the catalog. Items for since-deleted books keep a
// nil Book; the captured price and quantity are already on the item.
func attachBooks(db *gorm.DB, orders []models.Order) error {
	ids := make([]uint, 0)
	seen := make(map[uint]bool)
	for _, order := range orders {
		for _, item := range order.Items {
			if !seen[item.BookID] {
				seen[item.BookID] = true
				ids = append(ids, item.BookID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var books []models.Book
	if err := db.Where("id IN ?", ids).Find(&books).Error; err != nil {
		return fmt.Errorf("load order books: %w", err)
	}
	byID := make(map[uint]*models.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}
	for oi := range orders {
		for ii := range orders[oi].Items {
			orders[oi].Items[ii].Book = byID[orders[oi].Items[ii].BookID]
		}
	}
	return nil
}

// -------- Core Logic --------

// PlaceOrder turns the user's cart into an order atomically: price every
// line against the current catalog, snapshot unit prices, create the
// order with its items and empty the cart, all in one transaction. Any
// failure rolls the whole thing back, so there is no state where an
// order exists alongside a full cart or a cart was emptied for nothing.
//
// The per-user lock serializes this against concurrent checkouts and
// cart edits for the same user; two simultaneous checkouts produce one
// order and one empty cart, never two orders.
func PlaceOrder(db *gorm.DB, userID uint) (models.Order, error) {
	unlock := locks.LockUser(userID)
	defer unlock()

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := cartControllers.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		items, err := cartControllers.LoadCartItems(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		totals := pricing.ComputeTotals(items)
		if len(totals.Stale) > 0 {
			return ErrStaleCart
		}

		orderItems := make([]models.OrderItem, 0, len(totals.Lines))
		for _, line := range totals.Lines {
			orderItems = append(orderItems, models.OrderItem{
				BookID:          line.Item.BookID,
				Quantity:        line.Item.Quantity,
				PriceAtPurchase: line.Item.Book.Price,
			})
		}

		order = models.Order{
			Reference:   generateOrderRef(),
			UserID:      userID,
			TotalAmount: totals.GrandTotal,
			Status:      models.OrderStatusPending,
			Items:       orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// OrdersForUser lists a user's orders, newest first, with catalog data
// attached where it still exists.
func OrdersForUser(db *gorm.DB, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if err := attachBooks(db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// -------- Handlers --------

// POST /orders
func PlaceOrderHandler(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		order, err := PlaceOrder(db, identity.UserID)
		switch {
		case errors.Is(err, ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrStaleCart):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error().Err(err).Uint("user_id", identity.UserID).Msg("checkout failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed, cart left intact"})
			return
		}

		log.Info().
			Uint("user_id", order.UserID).
			Str("reference", order.Reference).
			Str("total", order.TotalAmount.String()).
			Int("lines", len(order.Items)).
			Msg("order placed")
		metrics.OrdersPlaced.Inc()
		amount, _ := order.TotalAmount.Float64()
		metrics.OrderAmount.Observe(amount)
		pub.OrderCreated(order)
		broadcastNewOrder(order)

		// Attach is best effort; the order itself is already committed.
		if err := attachBooks(db, []models.Order{order}); err != nil {
			log.Warn().Err(err).Str("reference", order.Reference).Msg("could not attach books to order response")
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		orders, err := OrdersForUser(db, identity.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:order_id  (accepts numeric id or order reference)
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		raw := c.Param("order_id")

		var order models.Order
		var err error
		if id, convErr := strconv.ParseUint(raw, 10, 32); convErr == nil {
			err = db.Preload("Items").First(&order, uint(id)).Error
		} else {
			err = db.Preload("Items").Where("reference = ?", raw).First(&order).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
			return
		}

		// Existence is not secret between users; access is. A stranger's
		// order id answers 403, never an empty 200 or a fake 404.
		if err := authz.Authorize(identity, authz.SelfOnly, order.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		if err := attachBooks(db, []models.Order{order}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC, id DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
			return
		}
		if err := attachBooks(db, orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/users/:user_id/orders
func GetOrdersForUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		userID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
		if err != nil || userID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a positive integer"})
			return
		}

		// No user-existence check: order history outlives account
		// deletion, so a vanished user id is still a valid query.
		orders, loadErr := OrdersForUser(db, uint(userID))
		if loadErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
