package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-go/backend/internal/middleware"
	"github.com/foodgram-go/backend/internal/service"
	"github.com/foodgram-go/backend/internal/types"
)

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(nil, nil, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(user, ann))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c)
	users, total, err := h.userService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(optionalUserID(c), nil, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.UserResponse, 0, len(users))
	for i := range users {
		results = append(results, userResponse(&users[i], ann))
	}
	c.JSON(http.StatusOK, types.PageResponse{Count: total, Results: results})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(optionalUserID(c), nil, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user, ann))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ann, err := loadAnnotations(nil, nil, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user, ann))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := h.authService.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	target, err := h.userService.Subscribe(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	recipes, err := h.userService.RecipesByAuthor(c.Request.Context(), target.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	ann, err := loadAnnotations(&userID, nil, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscriptionResponse(target, recipes, ann))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), userID, targetID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	page, limit := pageParams(c)
	followed, total, err := h.userService.Subscriptions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(&userID, nil, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.SubscriptionResponse, 0, len(followed))
	for i := range followed {
		recipes, err := h.userService.RecipesByAuthor(c.Request.Context(), followed[i].ID)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, subscriptionResponse(&followed[i], recipes, ann))
	}
	c.JSON(http.StatusOK, types.PageResponse{Count: total, Results: results})
}
