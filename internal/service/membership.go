package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

// MembershipService owns the per-user favorite and shopping-cart sets.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// AddFavorite inserts the (user, recipe) favorite pair. Returns the recipe
// so handlers can respond with its light representation.
func (s *MembershipService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.add(ctx, userID, recipeID, &models.FavoriteEntry{UserID: userID, RecipeID: recipeID}, &models.FavoriteEntry{})
}

func (s *MembershipService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, userID, recipeID, &models.FavoriteEntry{})
}

// AddToCart queues the recipe for purchase.
func (s *MembershipService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	return s.add(ctx, userID, recipeID, &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}, &models.ShoppingCartEntry{})
}

func (s *MembershipService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, userID, recipeID, &models.ShoppingCartEntry{})
}

func (s *MembershipService) add(ctx context.Context, userID, recipeID uuid.UUID, entry, model interface{}) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyInList
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *MembershipService) remove(ctx context.Context, userID, recipeID uuid.UUID, model interface{}) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotInList
	}
	return nil
}

// MembershipFlags reports which of the given recipes are favorited and
// carted by the viewer, in two queries regardless of page size.
func (s *MembershipService) MembershipFlags(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (favorited, inCart map[uuid.UUID]bool, err error) {
	favorited = make(map[uuid.UUID]bool)
	inCart = make(map[uuid.UUID]bool)
	if len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favs []models.FavoriteEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&favs).Error; err != nil {
		return nil, nil, err
	}
	for _, f := range favs {
		favorited[f.RecipeID] = true
	}

	var carts []models.ShoppingCartEntry
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&carts).Error; err != nil {
		return nil, nil, err
	}
	for _, ce := range carts {
		inCart[ce.RecipeID] = true
	}

	return favorited, inCart, nil
}
