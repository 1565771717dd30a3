package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	bookControllers "github.com/Samy440/ebookstore/controllers/book"
	cartControllers "github.com/Samy440/ebookstore/controllers/cart"
	orderControllers "github.com/Samy440/ebookstore/controllers/order"
	userControllers "github.com/Samy440/ebookstore/controllers/user"
	"github.com/Samy440/ebookstore/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. The group only
// authenticates; each handler asks the access guard for the admin
// capability so a denial is an explicit 403, not a missing route.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken(db))
	{
		// ─────────── Account Management ───────────
		userAdmin := adminGroup.Group("/users")
		{
			userAdmin.GET("", userControllers.GetAllUsers(db))
			userAdmin.GET("/:user_id", userControllers.GetUserByID(db))
			userAdmin.PATCH("/:user_id", userControllers.UpdateUser(db))
			userAdmin.DELETE("/:user_id", userControllers.DeleteUser(db))
			userAdmin.GET("/:user_id/cart", cartControllers.GetAnyUserCart(db))
			userAdmin.GET("/:user_id/orders", orderControllers.GetOrdersForUserHandler(db))
		}

		// ─────────── Order Oversight ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(db))
			orderAdmin.GET("/feed", orderControllers.OrderFeedHandler)
		}

		// ─────────── Catalog Tooling ───────────
		bookAdmin := adminGroup.Group("/books")
		{
			bookAdmin.GET("/export", bookControllers.ExportBooksToExcel(db))
			bookAdmin.POST("/import", bookControllers.ImportBooksFromExcel(db))
		}
	}
}
