package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-go/backend/internal/middleware"
	"github.com/foodgram-go/backend/internal/models"
	"github.com/foodgram-go/backend/internal/service"
	"github.com/foodgram-go/backend/internal/types"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	userService   *service.UserService
	authService   *service.AuthService
}

func NewRecipeHandler(recipeService *service.RecipeService, userService *service.UserService, authService *service.AuthService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		userService:   userService,
		authService:   authService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := optionalUserID(c)

	var filter service.RecipeFilter
	var err error
	filter.IsFavorited, err = service.ParseTriState(c.Query("is_favorited"))
	if err != nil {
		respondError(c, err)
		return
	}
	filter.IsInShoppingCart, err = service.ParseTriState(c.Query("is_in_shopping_cart"))
	if err != nil {
		respondError(c, err)
		return
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"author": "invalid author id"}})
			return
		}
		filter.AuthorID = &authorID
	}
	filter.TagSlugs = c.QueryArray("tags")

	page, limit := pageParams(c)
	recipes, total, err := h.recipeService.List(c.Request.Context(), userID, filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(userID, h.recipeService, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, recipeResponse(&recipes[i], ann))
	}
	c.JSON(http.StatusOK, types.PageResponse{Count: total, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(optionalUserID(c), h.recipeService, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(recipe, ann))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, recipeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(&userID, h.recipeService, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipeResponse(recipe, ann))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, recipeInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	ann, err := loadAnnotations(&userID, h.recipeService, h.userService)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipeResponse(recipe, ann))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.toggleOn(c, h.recipeService.Favorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.toggleOff(c, h.recipeService.Unfavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.toggleOn(c, h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.toggleOff(c, h.recipeService.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}

	content, err := h.recipeService.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}

func (h *RecipeHandler) toggleOn(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := add(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, basicRecipeResponse(recipe))
}

func (h *RecipeHandler) toggleOff(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"errors": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func recipeInput(req types.RecipeRequest) service.RecipeInput {
	lines := make([]service.IngredientLine, 0, len(req.Ingredients))
	for _, line := range req.Ingredients {
		lines = append(lines, service.IngredientLine{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: lines,
	}
}
