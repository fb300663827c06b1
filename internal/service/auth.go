package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram-go/backend/internal/models"
	"github.com/foodgram-go/backend/internal/types"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const tokenLifetime = 24 * time.Hour

// usernameBlacklist holds reserved usernames that collide with routes.
var usernameBlacklist = map[string]bool{
	"me": true,
}

// AuthService issues and validates JWT bearer tokens and manages user
// credentials. The Redis client backs the logout denylist and may be
// nil, in which case logout is a no-op check.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if usernameBlacklist[in.Username] {
		return nil, &ValidationError{Field: "username", Message: "this username is not allowed"}
	}
	if len(in.Password) < 8 {
		return nil, &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ? OR username = ?", in.Email, in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: "a user with this email or username already exists"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(user.ID, user.Username)
}

// Logout denylists the token in Redis for its remaining lifetime so it
// can no longer authenticate requests.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.redis == nil {
		return nil
	}
	remaining := tokenLifetime
	if token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{}); err == nil {
		if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
			remaining = time.Until(exp.Time)
		}
	}
	if remaining <= 0 {
		return nil
	}
	return s.redis.Set(ctx, denylistKey(tokenString), "1", remaining).Err()
}

// SetPassword replaces the user's password after verifying the current
// one.
func (s *AuthService) SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &NotFoundError{Resource: "user"}
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return &ValidationError{Field: "current_password", Message: "current password is incorrect"}
	}
	if len(next) < 8 {
		return &ValidationError{Field: "new_password", Message: "must be at least 8 characters"}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Update("password_hash", string(hashed)).Error
}

func (s *AuthService) generateToken(userID uuid.UUID, username string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"username": username,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken verifies signature, expiry and the logout denylist.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	if s.redis != nil {
		exists, err := s.redis.Exists(context.Background(), denylistKey(tokenString)).Result()
		if err == nil && exists > 0 {
			return nil, errors.New("token has been revoked")
		}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	username, _ := claims["username"].(string)
	return &types.TokenClaims{UserID: userID, Username: username}, nil
}

func denylistKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return "auth:denylist:" + hex.EncodeToString(sum[:])
}
