package models

// Tag is static reference data attached to recipes.
type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color string `gorm:"size:7;uniqueIndex;not null" json:"color"`
	Slug  string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

// Ingredient is catalog data; the same name may appear with several units.
type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:200;not null;uniqueIndex:idx_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_name_unit" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
