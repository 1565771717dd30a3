package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	bookControllers "github.com/Samy440/ebookstore/controllers/book"
	"github.com/Samy440/ebookstore/middleware"
)

// SetupCatalogRoutes registers the "/books/*" endpoints. Reads are open
// to anonymous callers; a presented token is still resolved so admins
// can see deactivated titles. Writes require a token and the admin role.
func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB) {
	browse := r.Group("/books")
	browse.Use(middleware.OptionalAuth(db))
	{
		browse.GET("", bookControllers.GetBooks(db))
		browse.GET("/:id", bookControllers.GetBookByID(db))
	}

	manage := r.Group("/books")
	manage.Use(middleware.ValidateToken(db))
	{
		manage.POST("", bookControllers.CreateBook(db))
		manage.PUT("/:id", bookControllers.UpdateBook(db))
		manage.PATCH("/:id", bookControllers.UpdateBook(db))
		manage.DELETE("/:id", bookControllers.DeleteBook(db))
	}
}
