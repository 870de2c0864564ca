package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

func TestFavoriteAddRemove(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "dinner", "#E26C2D")
	salt := createTestIngredient(t, db, "Salt", "g")
	recipe := createTestRecipe(t, db, author, "Soup", []uint{tag.ID}, []IngredientAmount{
		{ID: salt.ID, Amount: 5},
	})

	got, err := svc.AddFavorite(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)
	assert.Equal(t, recipe.Name, got.Name)

	// Adding twice is a conflict, and the list is left unchanged.
	_, err = svc.AddFavorite(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyInList)

	var count int64
	require.NoError(t, db.Model(&models.FavoriteEntry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.RemoveFavorite(ctx, user.ID, recipe.ID))
	require.NoError(t, db.Model(&models.FavoriteEntry{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Removing what is not there is a conflict too.
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, user.ID, recipe.ID), ErrNotInList)
}

func TestFavoriteUnknownRecipe(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)

	user := createTestUser(t, db, "reader")

	_, err := svc.AddFavorite(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartAddRemove(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "dinner", "#E26C2D")
	salt := createTestIngredient(t, db, "Salt", "g")
	recipe := createTestRecipe(t, db, author, "Soup", []uint{tag.ID}, []IngredientAmount{
		{ID: salt.ID, Amount: 5},
	})

	_, err := svc.AddToCart(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyInList)

	require.NoError(t, svc.RemoveFromCart(ctx, user.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, user.ID, recipe.ID), ErrNotInList)
}

func TestMembershipListsIndependent(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "reader")
	author := createTestUser(t, db, "author")
	tag := createTestTag(t, db, "Dinner", "dinner", "#E26C2D")
	salt := createTestIngredient(t, db, "Salt", "g")
	recipe := createTestRecipe(t, db, author, "Soup", []uint{tag.ID}, []IngredientAmount{
		{ID: salt.ID, Amount: 5},
	})

	_, err := svc.AddFavorite(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	// Favoriting does not put the recipe in the cart.
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, user.ID, recipe.ID), ErrNotInList)

	_, err = svc.AddToCart(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	favorited, inCart, err := svc.MembershipFlags(ctx, user.ID, []uuid.UUID{recipe.ID})
	require.NoError(t, err)
	assert.True(t, favorited[recipe.ID])
	assert.True(t, inCart[recipe.ID])
}

func TestMembershipFlagsScopedToUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewMembershipService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	tag := createTestTag(t, db, "Dinner", "dinner", "#E26C2D")
	salt := createTestIngredient(t, db, "Salt", "g")
	recipe := createTestRecipe(t, db, alice, "Soup", []uint{tag.ID}, []IngredientAmount{
		{ID: salt.ID, Amount: 5},
	})

	_, err := svc.AddFavorite(ctx, alice.ID, recipe.ID)
	require.NoError(t, err)

	favorited, inCart, err := svc.MembershipFlags(ctx, bob.ID, []uuid.UUID{recipe.ID})
	require.NoError(t, err)
	assert.False(t, favorited[recipe.ID])
	assert.False(t, inCart[recipe.ID])
}
