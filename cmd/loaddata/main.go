// Command loaddata imports the ingredient and tag catalogs from CSV files.
// Ingredient rows are "name,measurement_unit"; tag rows are
// "name,color,slug". Rows already present are skipped.
package main

import (
	"encoding/csv"
	"flag"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platebook/backend/config"
	"github.com/platebook/backend/internal/database"
	"github.com/platebook/backend/internal/models"
)

var validate = validator.New()

type ingredientRow struct {
	Name            string `validate:"required,max=200"`
	MeasurementUnit string `validate:"required,max=200"`
}

type tagRow struct {
	Name  string `validate:"required,max=200"`
	Color string `validate:"required,hexcolor"`
	Slug  string `validate:"required,max=200,slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "path to ingredients CSV")
	tagsPath := flag.String("tags", "data/tags.csv", "path to tags CSV")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				return false
			}
		}
		return true
	})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if n, err := loadIngredients(db, *ingredientsPath); err != nil {
		log.Fatal().Err(err).Str("file", *ingredientsPath).Msg("ingredient import failed")
	} else {
		log.Info().Int("rows", n).Msg("ingredients imported")
	}

	if n, err := loadTags(db, *tagsPath); err != nil {
		log.Fatal().Err(err).Str("file", *tagsPath).Msg("tag import failed")
	} else {
		log.Info().Int("rows", n).Msg("tags imported")
	}
}

func loadIngredients(db *gorm.DB, path string) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	rows := make([]models.Ingredient, 0, len(records))
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		row := ingredientRow{Name: rec[0], MeasurementUnit: rec[1]}
		if err := validate.Struct(row); err != nil {
			log.Warn().Err(err).Strs("record", rec).Msg("skipping invalid ingredient row")
			continue
		}
		rows = append(rows, models.Ingredient{Name: row.Name, MeasurementUnit: row.MeasurementUnit})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return len(rows), err
}

func loadTags(db *gorm.DB, path string) (int, error) {
	records, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	rows := make([]models.Tag, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		row := tagRow{Name: rec[0], Color: rec[1], Slug: rec[2]}
		if err := validate.Struct(row); err != nil {
			log.Warn().Err(err).Strs("record", rec).Msg("skipping invalid tag row")
			continue
		}
		rows = append(rows, models.Tag{Name: row.Name, Color: row.Color, Slug: row.Slug})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return len(rows), err
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
