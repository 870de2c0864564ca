package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/middleware"
	"github.com/platebook/backend/internal/models"
	"github.com/platebook/backend/internal/service"
	"github.com/platebook/backend/internal/testdb"
)

// setupTestAPI wires the full handler stack against an in-memory database,
// with Redis and S3 absent the way local development runs.
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testdb.Open(t)

	auth := service.NewAuthService(db, nil, "test-secret")
	recipes := service.NewRecipeService(db)
	memberships := service.NewMembershipService(db)
	follows := service.NewFollowService(db)
	shopping := service.NewShoppingListService(db)
	images := service.NewImageService(nil, t.TempDir())
	writeLimit := middleware.NewRecipeWriteRateLimiter(nil)

	router := gin.New()
	group := router.Group("/api")
	NewUserHandler(db, auth, follows, recipes).RegisterRoutes(group)
	NewRecipeHandler(db, auth, recipes, memberships, follows, shopping, images, writeLimit).RegisterRoutes(group)
	NewCatalogHandler(db).RegisterRoutes(group)
	return router, db
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// registerAndLogin creates an account over the API and returns its token.
func registerAndLogin(t *testing.T, router *gin.Engine, username string) string {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/api/users", "", gin.H{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, ok := decodeBody(t, w)["auth_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func seedTag(t *testing.T, db *gorm.DB, name, slug, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

func userIDByUsername(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()
	var user models.User
	require.NoError(t, db.First(&user, "username = ?", username).Error)
	return user.ID.String()
}

func recipePayload(name string, tagIDs []uint, ingredientID uint, amount int) gin.H {
	ingredients := make([]gin.H, 0, 1)
	ingredients = append(ingredients, gin.H{"id": ingredientID, "amount": amount})
	return gin.H{
		"name":         name,
		"text":         fmt.Sprintf("How to cook %s.", name),
		"image":        "data:image/png;base64,aW1hZ2UgYnl0ZXM=",
		"cooking_time": 25,
		"tags":         tagIDs,
		"ingredients":  ingredients,
	}
}
