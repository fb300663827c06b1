package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram-go/backend/internal/database"
	"github.com/foodgram-go/backend/internal/models"
	"github.com/foodgram-go/backend/internal/service"
)

// testEnv bundles the router with the services behind it so tests can
// arrange state directly and then exercise the HTTP surface.
type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *service.AuthService
	users   *service.UserService
	recipes *service.RecipeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		db:      db,
		auth:    service.NewAuthService(db, nil, "test-secret-key-16ch"),
		users:   service.NewUserService(db),
		recipes: service.NewRecipeService(db),
	}

	router := gin.New()
	group := router.Group("/api")
	NewAuthHandler(env.auth).RegisterRoutes(group)
	NewUserHandler(env.users, env.auth).RegisterRoutes(group)
	NewRecipeHandler(env.recipes, env.users, env.auth).RegisterRoutes(group)
	NewTagHandler(db).RegisterRoutes(group)
	NewIngredientHandler(db).RegisterRoutes(group)
	env.router = router
	return env
}

// signUp registers a user through the service layer and returns the
// user plus a valid bearer token.
func (e *testEnv) signUp(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	ctx := context.Background()
	user, err := e.auth.Register(ctx, service.RegisterInput{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	token, err := e.auth.Login(ctx, user.Email, "supersecret")
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) seedIngredient(t *testing.T, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, e.db.Create(&ingredient).Error)
	return ingredient
}

func (e *testEnv) seedTag(t *testing.T, name, color, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, e.db.Create(&tag).Error)
	return tag
}

// request performs an HTTP request against the router. A non-nil body
// is JSON encoded; an empty token leaves the request anonymous.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
