package bookControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

// UpdateBookRequest carries only the fields present in the request body;
// nil pointers mean "leave as is". Catalog edits never rewrite existing
// order items, which keep the price captured at purchase time.
type UpdateBookRequest struct {
	Title         *string          `json:"title"`
	Author        *string          `json:"author"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	PDFURL        *string          `json:"pdf_url"`
	CoverImageURL *string          `json:"cover_image_url"`
	Category      *string          `json:"category"`
	IsActive      *bool            `json:"is_active"`
}

// PATCH /books/:id
func UpdateBook(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
			return
		}

		var book models.Book
		if err := db.First(&book, uint(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve book"})
			return
		}

		var req UpdateBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		if req.Price != nil && req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}

		if req.Title != nil {
			book.Title = *req.Title
		}
		if req.Author != nil {
			book.Author = *req.Author
		}
		if req.Description != nil {
			book.Description = *req.Description
		}
		if req.Price != nil {
			book.Price = *req.Price
		}
		if req.PDFURL != nil {
			book.PDFURL = *req.PDFURL
		}
		if req.CoverImageURL != nil {
			book.CoverImageURL = *req.CoverImageURL
		}
		if req.Category != nil {
			book.Category = *req.Category
		}
		if req.IsActive != nil {
			book.IsActive = *req.IsActive
		}

		if err := db.Save(&book).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update book"})
			return
		}
		c.JSON(http.StatusOK, book)
	}
}
