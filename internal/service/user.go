package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-go/backend/internal/models"
)

// UserService handles user lookups and the follow/subscription toggle.
type UserService struct {
	db      *gorm.DB
	follows *LinkStore[models.Follow]
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		db: db,
		follows: NewLinkStore(db, "following_id", func(userID, followingID uuid.UUID) models.Follow {
			return models.Follow{UserID: userID, FollowingID: followingID}
		}),
	}
}

// Get returns the user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	return &user, nil
}

// List returns users in registration order plus the total count.
func (s *UserService) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

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

	var users []models.User
	if err := query.Order("created_at").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Subscribe follows targetID on behalf of userID. Self-subscription is
// rejected before any state is touched; a duplicate is a conflict.
func (s *UserService) Subscribe(ctx context.Context, userID, targetID uuid.UUID) (*models.User, error) {
	if userID == targetID {
		return nil, ErrSelfFollow
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	_, created, err := s.follows.Add(userID, targetID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, &ConflictError{Message: "you are already subscribed to this user"}
	}
	return target, nil
}

// Unsubscribe removes the follow link. Removing an absent subscription
// is a conflict.
func (s *UserService) Unsubscribe(ctx context.Context, userID, targetID uuid.UUID) error {
	if _, err := s.Get(ctx, targetID); err != nil {
		return err
	}
	removed, err := s.follows.Remove(userID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return &ConflictError{Message: "you are not subscribed to this user"}
	}
	return nil
}

// Subscriptions returns the users userID follows, in follow order,
// plus the total count.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	ids, err := s.follows.TargetIDs(userID)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, 0, nil
	}

	query := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", ids)

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

	var users []models.User
	if err := query.Order("created_at").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FollowingIDs returns the ids of users userID follows, for the
// is_subscribed annotation.
func (s *UserService) FollowingIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return s.follows.TargetIDs(userID)
}

// RecipesByAuthor returns the author's recipes in publish order, used
// by the subscriptions listing.
func (s *UserService) RecipesByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}
