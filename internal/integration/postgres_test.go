package integration

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram-go/backend/internal/database"
	"github.com/foodgram-go/backend/internal/models"
	"github.com/foodgram-go/backend/internal/service"
)

// setupPostgres starts a disposable PostgreSQL container and migrates
// the full schema into it. Tests that need real database constraint
// enforcement run against this instead of SQLite.
func setupPostgres(t *testing.T) *gorm.DB {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postpass",
				"POSTGRES_DB":       "foodgram_test",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start container")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=postgres password=postpass dbname=foodgram_test sslmode=disable",
		host, mappedPort.Port())

	var db *gorm.DB
	for attempt := 0; attempt < 10; attempt++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to connect to database")

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

func TestPostgresSchemaConstraints(t *testing.T) {
	db := setupPostgres(t)

	user := createUser(t, db, "constrained")
	other := createUser(t, db, "other")

	t.Run("recipe cooking time check", func(t *testing.T) {
		recipe := models.Recipe{
			Name:        "instant",
			Text:        "none",
			CookingTime: 0,
			AuthorID:    user.ID,
		}
		assert.Error(t, db.Create(&recipe).Error)
	})

	t.Run("self follow check", func(t *testing.T) {
		follow := models.Follow{UserID: user.ID, FollowingID: user.ID}
		assert.Error(t, db.Create(&follow).Error)
	})

	t.Run("duplicate follow unique index", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Follow{UserID: user.ID, FollowingID: other.ID}).Error)
		assert.Error(t, db.Create(&models.Follow{UserID: user.ID, FollowingID: other.ID}).Error)
	})

	t.Run("duplicate email unique index", func(t *testing.T) {
		dup := models.User{
			Email:        user.Email,
			Username:     "someone-else",
			FirstName:    "Dup",
			LastName:     "User",
			PasswordHash: "irrelevant",
		}
		assert.Error(t, db.Create(&dup).Error)
	})
}

func TestPostgresRecipeRoundTrip(t *testing.T) {
	db := setupPostgres(t)
	svc := service.NewRecipeService(db)
	ctx := context.Background()

	author := createUser(t, db, "pgauthor")
	shopper := createUser(t, db, "pgshopper")

	salt := models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&salt).Error)
	tag := models.Tag{Name: "dinner", Color: "#8775D2", Slug: "dinner"}
	require.NoError(t, db.Create(&tag).Error)

	recipe, err := svc.Create(ctx, author.ID, service.RecipeInput{
		Name:        "borscht",
		Text:        "simmer",
		CookingTime: 90,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: []service.IngredientLine{{IngredientID: salt.ID, Amount: 10}},
	})
	require.NoError(t, err)

	// Favorite toggle conflicts behave identically on postgres.
	_, err = svc.Favorite(ctx, shopper.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.Favorite(ctx, shopper.ID, recipe.ID)
	assert.True(t, service.IsConflict(err))

	_, err = svc.AddToCart(ctx, shopper.ID, recipe.ID)
	require.NoError(t, err)

	content, err := svc.ShoppingList(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salt 10 g", string(content))
}
