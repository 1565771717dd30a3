package bookControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

// Sortable columns, whitelisted so the order clause is never built from
// raw client input.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"author":     "author",
	"price":      "price",
}

// GET /books
//
// GetBooks lists the catalog with optional search, category filter and
// skip/limit paging. Anonymous and standard callers see active books
// only; an admin passing include_inactive=true sees everything.
func GetBooks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
		if err != nil || skip < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "skip must be a non-negative integer"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit < 1 || limit > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}

		sortBy, ok := sortColumns[c.DefaultQuery("sort_by", "created_at")]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort_by"})
			return
		}
		sortOrder := strings.ToLower(c.DefaultQuery("order", "desc"))
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		query := db.Model(&models.Book{})

		identity := middleware.CurrentIdentity(c)
		if !(identity.IsAdmin() && c.Query("include_inactive") == "true") {
			query = query.Where("is_active = ?", true)
		}

		if search := c.Query("search"); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.Where(
				"LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(description) LIKE ?",
				pattern, pattern, pattern,
			)
		}
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var books []models.Book
		if err := query.
			Order(sortBy + " " + sortOrder).
			Offset(skip).
			Limit(limit).
			Find(&books).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch books"})
			return
		}
		c.JSON(http.StatusOK, books)
	}
}
