package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

// CatalogHandler serves the read-only tag and ingredient reference data.
type CatalogHandler struct {
	db *gorm.DB
}

func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
	}

	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
	}
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	var tags []models.Tag
	if err := h.db.Order("name").Find(&tags).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	results := make([]tagResponse, 0, len(tags))
	for _, t := range tags {
		results = append(results, newTagResponse(t))
	}
	c.JSON(http.StatusOK, results)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var tag models.Tag
	if err := h.db.First(&tag, "id = ?", id).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(tag))
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	query := h.db.Order("name")
	if prefix := c.Query("name"); prefix != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", prefix+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}

	var ingredient models.Ingredient
	if err := h.db.First(&ingredient, "id = ?", id).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
