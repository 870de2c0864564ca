package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/models"
)

const denylistKeyPrefix = "token_denylist:"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates an AuthService. redisClient may be nil, in which
// case logout denylisting is disabled (unit tests, local dev without Redis).
func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a user account. Username and email collisions are
// reported individually so the client can name the taken field.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.EqualFold(in.Username, "me") {
		return nil, ErrReservedUsername
	}
	if !usernamePattern.MatchString(in.Username) {
		return nil, ErrInvalidUsername
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
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
		Role:         models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(&user)
}

// Logout denylists the token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, denylistKeyPrefix+tokenString, "1", s.tokenTTL).Err()
}

// SetPassword changes the user's password after verifying the current one.
func (s *AuthService) SetPassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken implements middleware.TokenValidator.
func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	if s.redis != nil {
		if n, err := s.redis.Exists(context.Background(), denylistKeyPrefix+tokenString).Result(); err == nil && n > 0 {
			return nil, errors.New("token has been revoked")
		}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
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

	role, _ := claims["role"].(string)

	return &middleware.TokenClaims{
		UserID: userID,
		Role:   role,
	}, nil
}
