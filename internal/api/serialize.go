package api

import (
	"github.com/google/uuid"

	"github.com/foodgram-go/backend/internal/models"
	"github.com/foodgram-go/backend/internal/service"
	"github.com/foodgram-go/backend/internal/types"
)

// annotations holds the per-request membership sets used to render the
// is_favorited / is_in_shopping_cart / is_subscribed flags. All three
// are empty for anonymous callers.
type annotations struct {
	favorites map[uuid.UUID]bool
	cart      map[uuid.UUID]bool
	following map[uuid.UUID]bool
}

func loadAnnotations(userID *uuid.UUID, recipes *service.RecipeService, users *service.UserService) (*annotations, error) {
	ann := &annotations{
		favorites: map[uuid.UUID]bool{},
		cart:      map[uuid.UUID]bool{},
		following: map[uuid.UUID]bool{},
	}
	if userID == nil {
		return ann, nil
	}

	if recipes != nil {
		favIDs, err := recipes.FavoriteRecipeIDs(*userID)
		if err != nil {
			return nil, err
		}
		for _, id := range favIDs {
			ann.favorites[id] = true
		}
		cartIDs, err := recipes.CartRecipeIDs(*userID)
		if err != nil {
			return nil, err
		}
		for _, id := range cartIDs {
			ann.cart[id] = true
		}
	}
	if users != nil {
		followingIDs, err := users.FollowingIDs(*userID)
		if err != nil {
			return nil, err
		}
		for _, id := range followingIDs {
			ann.following[id] = true
		}
	}
	return ann, nil
}

func userResponse(user *models.User, ann *annotations) types.UserResponse {
	return types.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: ann.following[user.ID],
	}
}

func tagResponse(tag models.Tag) types.TagResponse {
	return types.TagResponse{
		ID:    tag.ID,
		Name:  tag.Name,
		Color: tag.Color,
		Slug:  tag.Slug,
	}
}

func ingredientResponse(ingredient models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

func basicRecipeResponse(recipe *models.Recipe) types.BasicRecipeResponse {
	return types.BasicRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func recipeResponse(recipe *models.Recipe, ann *annotations) types.RecipeResponse {
	tags := make([]types.TagResponse, 0, len(recipe.Tags))
	for _, tag := range recipe.Tags {
		tags = append(tags, tagResponse(tag))
	}

	lines := make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		lines = append(lines, types.RecipeIngredientResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return types.RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           userResponse(&recipe.Author, ann),
		Ingredients:      lines,
		IsFavorited:      ann.favorites[recipe.ID],
		IsInShoppingCart: ann.cart[recipe.ID],
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func subscriptionResponse(user *models.User, recipes []models.Recipe, ann *annotations) types.SubscriptionResponse {
	shorts := make([]types.BasicRecipeResponse, 0, len(recipes))
	for i := range recipes {
		shorts = append(shorts, basicRecipeResponse(&recipes[i]))
	}
	return types.SubscriptionResponse{
		UserResponse: userResponse(user, ann),
		Recipes:      shorts,
		RecipesCount: len(recipes),
	}
}
