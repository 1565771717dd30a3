package bookControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

// DELETE /books/:id
//
// Hard deletion is only allowed for books no cart or favorite still
// references; otherwise the right tool is deactivation, which keeps
// those references resolvable. Order items never block deletion because
// they carry their own price snapshot and no foreign key.
func DeleteBook(db *gorm.DB) gin.HandlerFunc {
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

		txErr := db.Transaction(func(tx *gorm.DB) error {
			var cartRefs, favRefs int64
			if err := tx.Model(&models.CartItem{}).Where("book_id = ?", book.ID).Count(&cartRefs).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Favorite{}).Where("book_id = ?", book.ID).Count(&favRefs).Error; err != nil {
				return err
			}
			if cartRefs > 0 || favRefs > 0 {
				return errBookReferenced
			}
			return tx.Delete(&book).Error
		})
		if errors.Is(txErr, errBookReferenced) {
			c.JSON(http.StatusConflict, gin.H{"error": errBookReferenced.Error()})
			return
		}
		if txErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete book"})
			return
		}

		log.Info().Uint("book_id", book.ID).Uint("admin_id", identity.UserID).Msg("book deleted")
		c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
	}
}

var errBookReferenced = errors.New("book is still in carts or favorites; deactivate it instead")
