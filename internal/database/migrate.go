package database

import (
	"gorm.io/gorm"

	"github.com/foodgram-go/backend/internal/models"
)

// Migrate creates or updates the schema for every application model.
// Uniqueness and check constraints are part of the model definitions,
// so they land in the database here, not only in application code.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
	)
}
