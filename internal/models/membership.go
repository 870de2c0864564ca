package models

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteEntry records that a user favorited a recipe. Membership only,
// no payload; the pair is unique.
type FavoriteEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe;index" json:"recipe_id"`
}

func (FavoriteEntry) TableName() string {
	return "favorite_entries"
}

// ShoppingCartEntry records that a recipe is queued for purchase by a user.
type ShoppingCartEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe;index" json:"recipe_id"`
}

func (ShoppingCartEntry) TableName() string {
	return "shopping_cart_entries"
}
