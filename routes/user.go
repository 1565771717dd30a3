package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/Samy440/ebookstore/controllers/cart"
	favoriteControllers "github.com/Samy440/ebookstore/controllers/favorite"
	orderControllers "github.com/Samy440/ebookstore/controllers/order"
	userControllers "github.com/Samy440/ebookstore/controllers/user"
	"github.com/Samy440/ebookstore/events"
	"github.com/Samy440/ebookstore/middleware"
)

// SetupUserRoutes registers the owner-scoped endpoints. Everything here
// requires a valid token and operates on the caller's own data.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher) {
	protected := r.Group("/")
	protected.Use(middleware.ValidateToken(db))
	{
		// ──────────────── Account ────────────────
		protected.GET("/users/me", userControllers.GetMe(db))
		protected.PATCH("/users/me", userControllers.UpdateMe(db))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := protected.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(db))
			cartGroup.POST("/items", cartControllers.UpsertCartItem(db))
			cartGroup.PATCH("/items/:book_id", cartControllers.UpdateCartItemQuantity(db))
			cartGroup.DELETE("/items/:book_id", cartControllers.DeleteCartItem(db))
			cartGroup.DELETE("", cartControllers.ClearUserCart(db))
		}

		// ──────────────── Favorites ────────────────
		favGroup := protected.Group("/favorites")
		{
			favGroup.GET("", favoriteControllers.ListFavoritesHandler(db))
			favGroup.POST("", favoriteControllers.AddFavoriteHandler(db))
			favGroup.DELETE("/:book_id", favoriteControllers.RemoveFavoriteHandler(db))
		}

		// ──────────────── Orders ────────────────
		orderGroup := protected.Group("/orders")
		{
			orderGroup.POST("", orderControllers.PlaceOrderHandler(db, pub))
			orderGroup.GET("", orderControllers.GetUserOrdersHandler(db))
			orderGroup.GET("/:order_id", orderControllers.GetOrderByIDHandler(db))
		}
	}
}
