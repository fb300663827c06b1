package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-go/backend/internal/models"
)

// RecipeService handles recipe CRUD, the favorite / shopping cart
// toggles and the shopping list download.
type RecipeService struct {
	db        *gorm.DB
	favorites *LinkStore[models.Favorite]
	cart      *LinkStore[models.ShoppingCartItem]
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		db: db,
		favorites: NewLinkStore(db, "recipe_id", func(userID, recipeID uuid.UUID) models.Favorite {
			return models.Favorite{UserID: userID, RecipeID: recipeID}
		}),
		cart: NewLinkStore(db, "recipe_id", func(userID, recipeID uuid.UUID) models.ShoppingCartItem {
			return models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
		}),
	}
}

// IngredientLine is one (ingredient, amount) entry of a create or
// update payload. Line order is preserved in storage.
type IngredientLine struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput carries the validated fields of a recipe write. The
// author always comes from the authenticated request, never from the
// payload.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientLine
}

func (s *RecipeService) validateInput(in *RecipeInput) ([]models.Tag, error) {
	if in.CookingTime < 1 {
		return nil, &ValidationError{Field: "cooking_time", Message: "must be at least 1"}
	}
	if len(in.Ingredients) == 0 {
		return nil, &ValidationError{Field: "ingredients", Message: "at least one ingredient is required"}
	}

	// Duplicate ingredient lines would double-count in the shopping
	// list aggregation, so they are rejected rather than stored.
	seen := make(map[uuid.UUID]bool, len(in.Ingredients))
	for _, line := range in.Ingredients {
		if line.Amount < 1 {
			return nil, &ValidationError{Field: "ingredients", Message: "amount must be at least 1"}
		}
		if seen[line.IngredientID] {
			return nil, &ValidationError{Field: "ingredients", Message: "duplicate ingredient " + line.IngredientID.String()}
		}
		seen[line.IngredientID] = true
	}

	for _, line := range in.Ingredients {
		var count int64
		if err := s.db.Model(&models.Ingredient{}).Where("id = ?", line.IngredientID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &NotFoundError{Resource: "ingredient " + line.IngredientID.String()}
		}
	}

	tagIDs := dedupeIDs(in.TagIDs)
	var tags []models.Tag
	if len(tagIDs) > 0 {
		if err := s.db.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return nil, err
		}
	}
	if len(tags) != len(tagIDs) {
		return nil, &ValidationError{Field: "tags", Message: "unknown tag ids: " + strings.Join(missingTagIDs(tagIDs, tags), ", ")}
	}
	return tags, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func missingTagIDs(want []uuid.UUID, got []models.Tag) []string {
	found := make(map[uuid.UUID]bool, len(got))
	for _, tag := range got {
		found[tag.ID] = true
	}
	var missing []string
	for _, id := range want {
		if !found[id] {
			missing = append(missing, id.String())
		}
	}
	sort.Strings(missing)
	return missing
}

// Create validates and persists a new recipe with its tag set and
// ordered ingredient line items.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	tags, err := s.validateInput(&in)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        in.Name,
		Text:        in.Text,
		Image:       in.Image,
		CookingTime: in.CookingTime,
		AuthorID:    authorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		return createLineItems(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

// Update rewrites a recipe owned by userID: scalar fields, the full
// tag set and the full line item set are replaced.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "recipe"}
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	tags, err := s.validateInput(&in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.Image != "" {
			updates["image"] = in.Image
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createLineItems(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID)
}

func createLineItems(tx *gorm.DB, recipeID uuid.UUID, lines []IngredientLine) error {
	for i, line := range lines {
		item := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
			Position:     i,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get loads a recipe with its author, tags and line items.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "recipe"}
		}
		return nil, err
	}
	return &recipe, nil
}

// Delete removes a recipe owned by userID together with its line items
// and link rows.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &NotFoundError{Resource: "recipe"}
		}
		return err
	}
	if recipe.AuthorID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingCartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// List returns recipes in publish order with the filters applied, plus
// the total count before pagination. userID is nil for anonymous
// callers.
func (s *RecipeService) List(ctx context.Context, userID *uuid.UUID, filter RecipeFilter, page, limit int) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		sub := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", sub)
	}

	var err error
	query, err = applyLinkFilter(query, filter.IsFavorited, userID, s.favorites.TargetIDs)
	if err != nil {
		return nil, 0, err
	}
	query, err = applyLinkFilter(query, filter.IsInShoppingCart, userID, s.cart.TargetIDs)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
		if page > 1 {
			query = query.Offset((page - 1) * limit)
		}
	}

	var recipes []models.Recipe
	err = query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// Favorite links the recipe to the user's favorites. Adding an already
// favorited recipe is a conflict.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.requireRecipe(recipeID)
	if err != nil {
		return nil, err
	}
	_, created, err := s.favorites.Add(userID, recipeID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, &ConflictError{Message: "recipe is already in favorites"}
	}
	return recipe, nil
}

// Unfavorite removes the favorite link. Removing an absent link is a
// conflict.
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.requireRecipe(recipeID); err != nil {
		return err
	}
	removed, err := s.favorites.Remove(userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return &ConflictError{Message: "recipe is not in favorites"}
	}
	return nil
}

// AddToCart queues the recipe for the shopping list download.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.requireRecipe(recipeID)
	if err != nil {
		return nil, err
	}
	_, created, err := s.cart.Add(userID, recipeID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, &ConflictError{Message: "recipe is already in the shopping cart"}
	}
	return recipe, nil
}

// RemoveFromCart drops the recipe from the user's shopping cart.
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.requireRecipe(recipeID); err != nil {
		return err
	}
	removed, err := s.cart.Remove(userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return &ConflictError{Message: "recipe is not in the shopping cart"}
	}
	return nil
}

// ShoppingList aggregates the ingredients of every recipe in the
// user's cart into the downloadable report. An empty cart is NotFound.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	ids, err := s.cart.TargetIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, &NotFoundError{Resource: "shopping cart recipes"}
	}

	var recipes []models.Recipe
	err = s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Order("created_at").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return RenderShoppingList(AggregateIngredients(recipes)), nil
}

// FavoriteRecipeIDs returns the recipes the user has favorited, for
// response annotation.
func (s *RecipeService) FavoriteRecipeIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return s.favorites.TargetIDs(userID)
}

// CartRecipeIDs returns the recipes in the user's shopping cart.
func (s *RecipeService) CartRecipeIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return s.cart.TargetIDs(userID)
}

func (s *RecipeService) requireRecipe(id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: fmt.Sprintf("recipe %s", id)}
		}
		return nil, err
	}
	return &recipe, nil
}
