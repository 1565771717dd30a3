// Command importbooks seeds the catalog from a spreadsheet without going
// through the HTTP API, for first deployments and local fixtures. The
// column layout matches the admin export: ID, Title, Author, Description,
// Price, PDFURL, CoverImageURL, Category, IsActive.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/config"
	"github.com/Samy440/ebookstore/models"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	path := flag.String("file", "books.xlsx", "spreadsheet to import")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := db.AutoMigrate(&models.Book{}); err != nil {
		log.Fatal().Err(err).Msg("automigrate failed")
	}

	xlFile, err := xlsx.OpenFile(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("failed to open spreadsheet")
	}
	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		log.Fatal().Str("file", *path).Msg("spreadsheet is empty or missing header row")
	}

	sheet := xlFile.Sheets[0]
	created, skipped := 0, 0

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]

		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		title := get(1)
		author := get(2)
		price, priceErr := decimal.NewFromString(get(4))
		if title == "" || author == "" || priceErr != nil || price.IsNegative() {
			log.Warn().Int("row", i+1).Msg("skipping malformed row")
			skipped++
			continue
		}

		book := models.Book{
			Title:         title,
			Author:        author,
			Description:   get(3),
			Price:         price,
			PDFURL:        get(5),
			CoverImageURL: get(6),
			Category:      get(7),
			IsActive:      parseActiveCell(get(8)),
		}
		if err := db.Create(&book).Error; err != nil {
			log.Warn().Err(err).Int("row", i+1).Msg("skipping row")
			skipped++
			continue
		}
		created++
	}

	log.Info().Int("created", created).Int("skipped", skipped).Msg("import finished")
}

// parseActiveCell mirrors the admin import: "false", "0" and "no"
// deactivate, anything else (including an empty cell) stays active.
func parseActiveCell(raw string) bool {
	switch strings.ToLower(raw) {
	case "false", "0", "no":
		return false
	default:
		return true
	}
}
