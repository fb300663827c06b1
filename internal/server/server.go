package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram-go/backend/config"
	"github.com/foodgram-go/backend/internal/api"
	"github.com/foodgram-go/backend/internal/middleware"
	"github.com/foodgram-go/backend/internal/service"
)

// Server wires the HTTP layer to the services.
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New builds the router and handler graph.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db)

	router := gin.Default()
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	v1 := router.Group("/api")
	api.NewAuthHandler(authService).RegisterRoutes(v1)
	api.NewUserHandler(userService, authService).RegisterRoutes(v1)
	api.NewRecipeHandler(recipeService, userService, authService).RegisterRoutes(v1)
	api.NewTagHandler(db).RegisterRoutes(v1)
	api.NewIngredientHandler(db).RegisterRoutes(v1)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		router: router,
		db:     db,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the listener fails or the server is shut down.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
