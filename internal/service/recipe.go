package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

// RecipeService handles recipe reads and the transactional write path.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount pairs an ingredient id with the required quantity.
type IngredientAmount struct {
	ID     uint
	Amount int
}

type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	TagIDs      []uint
	Ingredients []IngredientAmount
}

// RecipeFilter narrows List. ViewerID scopes the membership filters; an
// anonymous viewer makes them no-ops.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	ViewerID         *uuid.UUID
}

// Create persists the recipe, its tag links and one ingredient row per
// distinct ingredient as a single all-or-nothing transaction.
func (s *RecipeService) Create(ctx context.Context, author *models.User, in *RecipeInput) (*models.Recipe, error) {
	ingredients, err := s.resolveIngredients(ctx, in.Ingredients)
	if err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ?", author.ID, in.Name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrRecipeNameTaken
	}

	recipe := models.Recipe{
		Name:        in.Name,
		AuthorID:    author.ID,
		Text:        in.Text,
		ImageURL:    in.ImageURL,
		CookingTime: in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		return createIngredientRows(tx, recipe.ID, ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Update replaces the recipe's fields plus its full tag and ingredient sets
// (clear-then-reinsert) in one transaction. Only the author or an admin may
// update.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, actor *models.User, in *RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if recipe.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	ingredients, err := s.resolveIngredients(ctx, in.Ingredients)
	if err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	if in.Name != recipe.Name {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ? AND name = ? AND id <> ?", recipe.AuthorID, in.Name, recipe.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrRecipeNameTaken
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.ImageURL != "" {
			updates["image_url"] = in.ImageURL
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
		return createIngredientRows(tx, recipe.ID, ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID)
}

// Delete removes the recipe; membership rows and ingredient links go with it.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID, actor *models.User) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return err
	}
	if recipe.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.FavoriteEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// Get loads a recipe with its tags, ingredient rows and author.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Preload("Author").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns a page of recipes, newest first, plus the total count of the
// filtered set.
func (s *RecipeService) List(ctx context.Context, f RecipeFilter, limit, offset int) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs),
		)
	}
	if f.IsFavorited && f.ViewerID != nil {
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Model(&models.FavoriteEntry{}).Select("recipe_id").Where("user_id = ?", *f.ViewerID),
		)
	}
	if f.IsInShoppingCart && f.ViewerID != nil {
		query = query.Where(
			"recipes.id IN (?)",
			s.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", *f.ViewerID),
		)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := query.
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Preload("Author").
		Order("recipes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	return recipes, count, nil
}

// ByAuthor returns the author's recipes, newest first, capped when limit > 0.
func (s *RecipeService) ByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// resolveIngredients validates amounts, collapses duplicate ids (last one
// wins) and confirms every id exists.
func (s *RecipeService) resolveIngredients(ctx context.Context, in []IngredientAmount) ([]IngredientAmount, error) {
	byID := make(map[uint]int, len(in))
	order := make([]uint, 0, len(in))
	for _, ia := range in {
		if ia.Amount < models.MinIngredientAmount || ia.Amount > models.MaxIngredientAmount {
			return nil, ErrAmountOutOfRange
		}
		if _, seen := byID[ia.ID]; !seen {
			order = append(order, ia.ID)
		}
		byID[ia.ID] = ia.Amount
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", order).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count != int64(len(order)) {
		return nil, ErrUnknownIngredient
	}

	resolved := make([]IngredientAmount, 0, len(order))
	for _, id := range order {
		resolved = append(resolved, IngredientAmount{ID: id, Amount: byID[id]})
	}
	return resolved, nil
}

func (s *RecipeService) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	distinct := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", distinct).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(distinct) {
		return nil, ErrUnknownTag
	}
	return tags, nil
}

func createIngredientRows(tx *gorm.DB, recipeID uuid.UUID, ingredients []IngredientAmount) error {
	if len(ingredients) == 0 {
		return nil
	}
	rows := make([]models.RecipeIngredient, 0, len(ingredients))
	for _, ia := range ingredients {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ia.ID,
			Amount:       ia.Amount,
		})
	}
	return tx.Create(&rows).Error
}
