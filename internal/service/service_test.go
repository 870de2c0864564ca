package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/testdb"
)

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func createTestTag(t *testing.T, db *gorm.DB, name, slug, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// createTestRecipe publishes a recipe through the service so tag links and
// ingredient rows go through the same path production code uses.
func createTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tagIDs []uint, ingredients []IngredientAmount) *models.Recipe {
	t.Helper()
	recipe, err := NewRecipeService(db).Create(context.Background(), author, &RecipeInput{
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s.", name),
		ImageURL:    "/media/recipes/" + uuid.NewString() + ".png",
		CookingTime: 30,
		TagIDs:      tagIDs,
		Ingredients: ingredients,
	})
	require.NoError(t, err)
	return recipe
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testdb.Open(t)
}
