package favoriteControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

var (
	ErrBookNotFound    = errors.New("book not found or unavailable")
	ErrAlreadyFavorite = errors.New("book is already in favorites")
	ErrNotFavorite     = errors.New("book is not in favorites")
)

// -------- Request Structs --------

type AddFavoriteRequest struct {
	BookID uint `json:"book_id" binding:"required"`
}

// -------- Core Logic --------

// AddFavorite marks a book for the user. Duplicates are rejected up
// front and, should two requests race past the check, again by the
// unique index.
func AddFavorite(db *gorm.DB, userID, bookID uint) (models.Favorite, error) {
	var fav models.Favorite

	var book models.Book
	if err := db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fav, ErrBookNotFound
		}
		return fav, fmt.Errorf("load book: %w", err)
	}
	if !book.IsActive {
		return fav, ErrBookNotFound
	}

	err := db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&fav).Error
	if err == nil {
		return fav, ErrAlreadyFavorite
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fav, fmt.Errorf("load favorite: %w", err)
	}

	fav = models.Favorite{UserID: userID, BookID: bookID}
	if err := db.Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fav, ErrAlreadyFavorite
		}
		return fav, fmt.Errorf("create favorite: %w", err)
	}
	fav.Book = &book
	return fav, nil
}

// RemoveFavorite unmarks a book. Unlike cart lines, removing a favorite
// that is not there is an error; the client's view is out of date.
func RemoveFavorite(db *gorm.DB, userID, bookID uint) error {
	result := db.Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&models.Favorite{})
	if result.Error != nil {
		return fmt.Errorf("delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFavorite
	}
	return nil
}

// ListFavorites returns the user's favorites with books attached, in the
// order they were added.
func ListFavorites(db *gorm.DB, userID uint) ([]models.Favorite, error) {
	var favs []models.Favorite
	err := db.Preload("Book").Where("user_id = ?", userID).Order("id").Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return favs, nil
}

// -------- Handlers --------

// POST /favorites
func AddFavoriteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		var req AddFavoriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
			return
		}

		fav, err := AddFavorite(db, identity.UserID, req.BookID)
		switch {
		case errors.Is(err, ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrAlreadyFavorite):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
			return
		}
		c.JSON(http.StatusCreated, fav)
	}
}

// GET /favorites
func ListFavoritesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		favs, err := ListFavorites(db, identity.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load favorites"})
			return
		}
		c.JSON(http.StatusOK, favs)
	}
}

// DELETE /favorites/:book_id
func RemoveFavoriteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.SelfOnly, identity.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		bookID, err := strconv.ParseUint(c.Param("book_id"), 10, 32)
		if err != nil || bookID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "book_id must be a positive integer"})
			return
		}

		removeErr := RemoveFavorite(db, identity.UserID, uint(bookID))
		switch {
		case errors.Is(removeErr, ErrNotFavorite):
			c.JSON(http.StatusNotFound, gin.H{"error": removeErr.Error()})
			return
		case removeErr != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "favorite removed"})
	}
}
