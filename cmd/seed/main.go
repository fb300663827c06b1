package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/foodgram-go/backend/config"
	"github.com/foodgram-go/backend/internal/database"
	"github.com/foodgram-go/backend/internal/models"
)

// seedFile mirrors the fixture format: reference ingredients plus the
// tag palette.
type seedFile struct {
	Ingredients []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	} `json:"ingredients"`
	Tags []struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	} `json:"tags"`
}

func main() {
	path := flag.String("file", "data/seed.json", "path to the seed fixture")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("Failed to read seed file %s: %v", *path, err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	if err := load(db, seed); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d ingredients and %d tags", len(seed.Ingredients), len(seed.Tags))
}

func load(db *gorm.DB, seed seedFile) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range seed.Ingredients {
			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", entry.Name, entry.MeasurementUnit).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			ingredient := models.Ingredient{
				Name:            entry.Name,
				MeasurementUnit: entry.MeasurementUnit,
			}
			if err := tx.Create(&ingredient).Error; err != nil {
				return err
			}
		}

		for _, entry := range seed.Tags {
			if !models.HexColorPattern.MatchString(entry.Color) {
				log.Printf("Skipping tag %q: invalid color %q", entry.Name, entry.Color)
				continue
			}
			var count int64
			if err := tx.Model(&models.Tag{}).Where("slug = ?", entry.Slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			tag := models.Tag{
				Name:  entry.Name,
				Color: entry.Color,
				Slug:  entry.Slug,
			}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
