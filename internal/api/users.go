package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/service"
)

type UserHandler struct {
	db      *gorm.DB
	auth    *service.AuthService
	follows *service.FollowService
	recipes *service.RecipeService
}

func NewUserHandler(db *gorm.DB, auth *service.AuthService, follows *service.FollowService, recipes *service.RecipeService) *UserHandler {
	return &UserHandler{
		db:      db,
		auth:    auth,
		follows: follows,
		recipes: recipes,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.POST("/set_password", middleware.AuthMiddleware(h.auth), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/token/login", h.Login)
		auth.POST("/token/logout", middleware.AuthMiddleware(h.auth), h.Logout)
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=50,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type registerResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (h *UserHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user, false))
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.auth.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	params := pageParamsFrom(c)

	var count int64
	if err := h.db.Model(&models.User{}).Count(&count).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	var users []models.User
	if err := h.db.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&users).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	subscribed := map[uuid.UUID]bool{}
	if viewerID, ok := middleware.UserID(c); ok {
		ids := make([]uuid.UUID, 0, len(users))
		for i := range users {
			ids = append(ids, users[i].ID)
		}
		var err error
		subscribed, err = h.follows.Following(c.Request.Context(), viewerID, ids)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}

	results := make([]userResponse, 0, len(users))
	for i := range users {
		results = append(results, newUserResponse(&users[i], subscribed[users[i].ID]))
	}
	c.JSON(http.StatusOK, newPageResponse(c, count, params, results))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	isSubscribed := false
	if viewerID, ok := middleware.UserID(c); ok {
		isSubscribed, err = h.follows.IsFollowing(c.Request.Context(), viewerID, user.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, newUserResponse(user, isSubscribed))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	followedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	userID, _ := middleware.UserID(c)
	followed, err := h.follows.Follow(c.Request.Context(), userID, followedID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	recipes, count, err := h.recipes.ByAuthor(c.Request.Context(), followed.ID, recipesLimitFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSubscriptionResponse(followed, recipes, count, true))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	followedID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.follows.Unfollow(c.Request.Context(), userID, followedID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	params := pageParamsFrom(c)

	users, count, err := h.follows.Subscriptions(c.Request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cap := recipesLimitFrom(c)
	results := make([]subscriptionResponse, 0, len(users))
	for i := range users {
		recipes, recipeCount, err := h.recipes.ByAuthor(c.Request.Context(), users[i].ID, cap)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		results = append(results, newSubscriptionResponse(&users[i], recipes, recipeCount, true))
	}
	c.JSON(http.StatusOK, newPageResponse(c, count, params, results))
}

// recipesLimitFrom reads the optional cap on recipes embedded in
// subscription responses; 0 means no cap.
func recipesLimitFrom(c *gin.Context) int {
	if v, err := strconv.Atoi(c.Query("recipes_limit")); err == nil && v > 0 {
		return v
	}
	return 0
}
