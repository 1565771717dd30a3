package bookControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/authz"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
)

// POST /admin/books/import
//
// ImportBooksFromExcel bulk-loads catalog rows from a spreadsheet in the
// layout ExportBooksToExcel produces. Rows with an existing ID update
// that book, rows without one create a new book, and malformed rows are
// skipped and counted rather than failing the whole upload.
func ImportBooksFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.CurrentIdentity(c)
		if err := authz.Authorize(identity, authz.AdminOnly, 0); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "spreadsheet file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open spreadsheet"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, fileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse spreadsheet"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "spreadsheet is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		created, updated, skipped := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			title := get(1)
			author := get(2)
			description := get(3)
			price, priceErr := decimal.NewFromString(get(4))
			pdfURL := get(5)
			coverURL := get(6)
			category := get(7)
			isActive := parseActiveCell(get(8))

			if title == "" || author == "" || priceErr != nil || price.IsNegative() {
				skipped++
				continue
			}

			if idStr != "" {
				if id, err := strconv.Atoi(idStr); err == nil {
					var existing models.Book
					if err := db.First(&existing, id).Error; err == nil {
						existing.Title = title
						existing.Author = author
						existing.Description = description
						existing.Price = price
						existing.PDFURL = pdfURL
						existing.CoverImageURL = coverURL
						existing.Category = category
						existing.IsActive = isActive
						if err := db.Save(&existing).Error; err == nil {
							updated++
						} else {
							skipped++
						}
						continue
					}
				}
			}

			book := models.Book{
				Title:         title,
				Author:        author,
				Description:   description,
				Price:         price,
				PDFURL:        pdfURL,
				CoverImageURL: coverURL,
				Category:      category,
				IsActive:      isActive,
			}
			if err := db.Create(&book).Error; err == nil {
				created++
			} else {
				skipped++
			}
		}

		log.Info().Int("created", created).Int("updated", updated).Int("skipped", skipped).
			Uint("admin_id", identity.UserID).Msg("book import completed")
		c.JSON(http.StatusOK, gin.H{
			"message":       "import completed",
			"created_count": created,
			"updated_count": updated,
			"skipped_count": skipped,
		})
	}
}

// parseActiveCell reads the IsActive column. Spreadsheets arrive both
// exported and hand-edited, so "false", "0" and "no" all deactivate; an
// empty cell defaults to active.
func parseActiveCell(raw string) bool {
	switch strings.ToLower(raw) {
	case "false", "0", "no":
		return false
	default:
		return true
	}
}
