package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinCookingTime = 1
	MaxCookingTime = 1440

	MinIngredientAmount = 1
	MaxIngredientAmount = 1000
)

type Recipe struct {
	ID          uuid.UUID          `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Name        string             `gorm:"size:200;not null;uniqueIndex:idx_author_name" json:"name"`
	AuthorID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_author_name;index" json:"author_id"`
	Author      User               `gorm:"foreignKey:AuthorID" json:"-"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	ImageURL    string             `gorm:"size:255" json:"image"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeIngredient links a recipe to an ingredient with a required amount.
type RecipeIngredient struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	RecipeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
	Amount       int        `gorm:"not null" json:"amount"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
