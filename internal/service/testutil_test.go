package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram-go/backend/internal/database"
	"github.com/foodgram-go/backend/internal/models"
)

// newTestDB opens a fresh in-memory SQLite database with the full
// schema. Each test gets its own named shared-cache database so the
// connection pool sees one store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

func createTag(t *testing.T, db *gorm.DB, name, color, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

// seedRecipe persists a minimal valid recipe with its own author and a
// single ingredient line.
func seedRecipe(t *testing.T, db *gorm.DB, svc *RecipeService, name string) *models.Recipe {
	t.Helper()
	author := createUser(t, db, name+"-author")
	ingredient := createIngredient(t, db, name+"-base", "g")
	recipe, err := svc.Create(context.Background(), author.ID, RecipeInput{
		Name:        name,
		Text:        "cook it",
		CookingTime: 10,
		Ingredients: []IngredientLine{{IngredientID: ingredient.ID, Amount: 1}},
	})
	require.NoError(t, err)
	return recipe
}

func newUUID() uuid.UUID {
	return uuid.New()
}
