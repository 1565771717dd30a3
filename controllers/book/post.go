package bookControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

type CreateBookRequest struct {
	Title         string          `json:"title" binding:"required"`
	Author        string          `json:"author" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	PDFURL        string          `json:"pdf_url"`
	CoverImageURL string          `json:"cover_image_url"`
	Category      string          `json:"category"`
}

// POST /books
func CreateBook(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		var req CreateBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}
		if req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
			return
		}

		book := models.Book{
			Title:         req.Title,
			Author:        req.Author,
			Description:   req.Description,
			Price:         req.Price,
			PDFURL:        req.PDFURL,
			CoverImageURL: req.CoverImageURL,
			Category:      req.Category,
			IsActive:      true,
		}
		if err := db.Create(&book).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create book"})
			return
		}

		log.Info().Uint("book_id", book.ID).Str("title", book.Title).Uint("admin_id", identity.UserID).Msg("book created")
		c.JSON(http.StatusCreated, book)
	}
}
