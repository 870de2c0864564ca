package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"github.com/platebook/backend/internal/models"
)

const (
	shoppingListTitle = "Your shopping list:"

	headerFontSize = 18.0
	bodyFontSize   = 12.0
	lineHeight     = 8.0
	pageMargin     = 20.0
)

// ShoppingListService aggregates a user's queued recipe ingredients and
// renders them into a downloadable document.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// ShoppingListLine is one aggregated group: an ingredient with the summed
// amount across every recipe in the user's cart.
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// Aggregate joins the user's cart entries to their recipes' ingredient rows,
// groups by (name, unit), sums the amounts and orders by name. Read-only;
// an empty cart yields an empty slice.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListLine, error) {
	var lines []ShoppingListLine
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// RenderPDF writes the aggregated lines as an A4 PDF: a header, then one
// bullet per group. Page breaks continue with the same font and style. The
// creation date is pinned so identical input renders identical bytes.
func (s *ShoppingListService) RenderPDF(w io.Writer, lines []ShoppingListLine) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetTitle("Shopping list", true)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", headerFontSize)
	pdf.CellFormat(0, lineHeight+4, tr(shoppingListTitle), "", 1, "L", false, 0, "")
	pdf.Ln(lineHeight / 2)

	pdf.SetFont("Helvetica", "", bodyFontSize)
	for _, line := range lines {
		text := fmt.Sprintf("• %s - %d %s", line.Name, line.Total, line.MeasurementUnit)
		pdf.CellFormat(0, lineHeight, tr(text), "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

// BuildDocument runs the full pipeline: aggregate, then render.
func (s *ShoppingListService) BuildDocument(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	lines, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.RenderPDF(&buf, lines); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
