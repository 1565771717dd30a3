package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/events"
)

// SetupRoutes is the single entry-point that wires up the Auth, Catalog,
// User and Admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher) {
	// 1️⃣ Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// 2️⃣ Catalog routes (public reads, admin-gated writes)
	SetupCatalogRoutes(r, db)

	// 3️⃣ User routes (JWT-protected, owner-scoped)
	SetupUserRoutes(r, db, pub)

	// 4️⃣ Admin routes (JWT-protected, admin role enforced per handler)
	SetupAdminRoutes(r, db)
}
