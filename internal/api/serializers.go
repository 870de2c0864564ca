package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/service"
)

// Operation identifies the request kind a recipe payload belongs to. The
// representation for each kind is selected explicitly here rather than
// implied by the route.
type Operation int

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
)

type ingredientAmountRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=1000"`
}

type recipeWriteRequest struct {
	Name        string                    `json:"name" binding:"required,max=200"`
	Text        string                    `json:"text" binding:"required"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1,max=1440"`
	Tags        []uint                    `json:"tags" binding:"required,min=1"`
	Ingredients []ingredientAmountRequest `json:"ingredients" binding:"required,min=1,dive"`
}

// bindRecipeInput binds the write schema for the given operation. Reads
// have no input schema; create requires an image, update may omit it to
// keep the stored one.
func bindRecipeInput(c *gin.Context, op Operation) (*recipeWriteRequest, error) {
	switch op {
	case OpCreate, OpUpdate:
		var req recipeWriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		if op == OpCreate && req.Image == "" {
			return nil, fmt.Errorf("image is required")
		}
		return &req, nil
	default:
		return nil, nil
	}
}

func (r *recipeWriteRequest) toServiceInput(imageURL string) *service.RecipeInput {
	ingredients := make([]service.IngredientAmount, 0, len(r.Ingredients))
	for _, ia := range r.Ingredients {
		ingredients = append(ingredients, service.IngredientAmount{ID: ia.ID, Amount: ia.Amount})
	}
	return &service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		ImageURL:    imageURL,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: ingredients,
	}
}

type tagResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func newTagResponse(t models.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

type userResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func newUserResponse(u *models.User, isSubscribed bool) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

type recipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// recipeFlags carries the per-viewer booleans computed in batch for a page.
type recipeFlags struct {
	favorited  map[uuid.UUID]bool
	inCart     map[uuid.UUID]bool
	subscribed map[uuid.UUID]bool
}

func newRecipeResponse(r *models.Recipe, flags recipeFlags) recipeResponse {
	tags := make([]tagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, newTagResponse(t))
	}

	ingredients := make([]recipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, recipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	return recipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           newUserResponse(&r.Author, flags.subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      flags.favorited[r.ID],
		IsInShoppingCart: flags.inCart[r.ID],
		Name:             r.Name,
		Image:            r.ImageURL,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

// recipeLightResponse is the abbreviated view used in membership and
// subscription contexts.
type recipeLightResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func newRecipeLightResponse(r *models.Recipe) recipeLightResponse {
	return recipeLightResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

type subscriptionResponse struct {
	userResponse
	Recipes      []recipeLightResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func newSubscriptionResponse(u *models.User, recipes []models.Recipe, count int64, isSubscribed bool) subscriptionResponse {
	light := make([]recipeLightResponse, 0, len(recipes))
	for i := range recipes {
		light = append(light, newRecipeLightResponse(&recipes[i]))
	}
	return subscriptionResponse{
		userResponse: newUserResponse(u, isSubscribed),
		Recipes:      light,
		RecipesCount: count,
	}
}
