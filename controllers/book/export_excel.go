package bookControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

// GET /admin/books/export
//
// ExportBooksToExcel dumps the whole catalog, inactive titles included,
// as a spreadsheet download. Prices are written as strings so the cells
// round-trip through ImportBooksFromExcel without float drift.
func ExportBooksToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		var books []models.Book
		if err := db.Order("id").Find(&books).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch books"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Books")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create sheet"})
			return
		}

		headers := []string{
			"ID", "Title", "Author", "Description", "Price",
			"PDFURL", "CoverImageURL", "Category", "IsActive",
			"CreatedAt", "UpdatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, b := range books {
			row := sheet.AddRow()
			row.AddCell().SetValue(b.ID)
			row.AddCell().SetValue(b.Title)
			row.AddCell().SetValue(b.Author)
			row.AddCell().SetValue(b.Description)
			row.AddCell().SetValue(b.Price.String())
			row.AddCell().SetValue(b.PDFURL)
			row.AddCell().SetValue(b.CoverImageURL)
			row.AddCell().SetValue(b.Category)
			row.AddCell().SetValue(strconv.FormatBool(b.IsActive))
			row.AddCell().SetValue(b.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(b.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=books.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write spreadsheet"})
			return
		}
	}
}
