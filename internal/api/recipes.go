package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/service"
)

type RecipeHandler struct {
	db          *gorm.DB
	auth        *service.AuthService
	recipes     *service.RecipeService
	memberships *service.MembershipService
	follows     *service.FollowService
	shopping    *service.ShoppingListService
	images      *service.ImageService
	writeLimit  *middleware.RateLimiter
}

func NewRecipeHandler(
	db *gorm.DB,
	auth *service.AuthService,
	recipes *service.RecipeService,
	memberships *service.MembershipService,
	follows *service.FollowService,
	shopping *service.ShoppingListService,
	images *service.ImageService,
	writeLimit *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		db:          db,
		auth:        auth,
		recipes:     recipes,
		memberships: memberships,
		follows:     follows,
		shopping:    shopping,
		images:      images,
		writeLimit:  writeLimit,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	authRequired := middleware.AuthMiddleware(h.auth)
	limited := h.writeLimit.RateLimitMiddleware()

	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListRecipes)
		recipes.POST("", authRequired, limited, h.CreateRecipe)
		recipes.GET("/download_shopping_cart", authRequired, h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetRecipe)
		recipes.PATCH("/:id", authRequired, limited, h.UpdateRecipe)
		recipes.DELETE("/:id", authRequired, limited, h.DeleteRecipe)
		recipes.POST("/:id/favorite", authRequired, h.AddFavorite)
		recipes.DELETE("/:id/favorite", authRequired, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", authRequired, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", authRequired, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params := pageParamsFrom(c)

	filter := service.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      c.Query("is_favorited") == "1" || c.Query("is_favorited") == "true",
		IsInShoppingCart: c.Query("is_in_shopping_cart") == "1" || c.Query("is_in_shopping_cart") == "true",
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if viewerID, ok := middleware.UserID(c); ok {
		filter.ViewerID = &viewerID
	}

	recipes, count, err := h.recipes.List(c.Request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	flags, err := h.flagsFor(c, recipes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	results := make([]recipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, newRecipeResponse(&recipes[i], flags))
	}
	c.JSON(http.StatusOK, newPageResponse(c, count, params, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	flags, err := h.flagsFor(c, []models.Recipe{*recipe})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(recipe, flags))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	req, err := bindRecipeInput(c, OpCreate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	imageURL, err := h.images.StoreRecipeImage(c.Request.Context(), req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), actor, req.toServiceInput(imageURL))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	flags, err := h.flagsFor(c, []models.Recipe{*recipe})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeResponse(recipe, flags))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	req, err := bindRecipeInput(c, OpUpdate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	imageURL, err := h.images.StoreRecipeImage(c.Request.Context(), req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), id, actor, req.toServiceInput(imageURL))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	flags, err := h.flagsFor(c, []models.Recipe{*recipe})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(recipe, flags))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id, actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.memberships.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.memberships.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addMembership(c, h.memberships.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeMembership(c, h.memberships.RemoveFromCart)
}

// DownloadShoppingCart streams the aggregated shopping list as a PDF
// attachment. An empty cart still yields a valid document.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	data, err := h.shopping.BuildDocument(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

type membershipAdd func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)

type membershipRemove func(ctx context.Context, userID, recipeID uuid.UUID) error

func (h *RecipeHandler) addMembership(c *gin.Context, add membershipAdd) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	userID, _ := middleware.UserID(c)
	recipe, err := add(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeLightResponse(recipe))
}

func (h *RecipeHandler) removeMembership(c *gin.Context, remove membershipRemove) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	userID, _ := middleware.UserID(c)
	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// actor loads the authenticated user for permission checks.
func (h *RecipeHandler) actor(c *gin.Context) (*models.User, error) {
	userID, _ := middleware.UserID(c)
	return h.auth.GetUser(c.Request.Context(), userID)
}

// flagsFor computes the viewer-relative booleans for a page of recipes.
func (h *RecipeHandler) flagsFor(c *gin.Context, recipes []models.Recipe) (recipeFlags, error) {
	flags := recipeFlags{
		favorited:  map[uuid.UUID]bool{},
		inCart:     map[uuid.UUID]bool{},
		subscribed: map[uuid.UUID]bool{},
	}

	viewerID, ok := middleware.UserID(c)
	if !ok || len(recipes) == 0 {
		return flags, nil
	}

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for i := range recipes {
		recipeIDs = append(recipeIDs, recipes[i].ID)
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	favorited, inCart, err := h.memberships.MembershipFlags(c.Request.Context(), viewerID, recipeIDs)
	if err != nil {
		return flags, err
	}
	subscribed, err := h.follows.Following(c.Request.Context(), viewerID, authorIDs)
	if err != nil {
		return flags, err
	}

	flags.favorited = favorited
	flags.inCart = inCart
	flags.subscribed = subscribed
	return flags, nil
}
