package database

import (
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

// Migrate brings the schema up to date for every entity the app owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.FavoriteEntry{},
		&models.ShoppingCartEntry{},
	)
}
