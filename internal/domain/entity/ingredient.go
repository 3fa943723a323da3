package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a raw stock item consumed through recipes. Stock is mutated
// only by sale commit and refund; it carries three decimal places because
// recipe quantities are fractional (0.25 kg of flour per unit sold).
type Ingredient struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name       string          `gorm:"size:255;unique;not null" json:"name"`
	Unit       string          `gorm:"size:50;not null" json:"unit"`
	Stock      decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock"`
	StockAlert decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"stock_alert"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new ingredient
func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Ingredient model
func (Ingredient) TableName() string {
	return "ingredients"
}

// Recipe maps one product to the ingredients consumed per unit sold
type Recipe struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;unique;not null" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []RecipeItem `gorm:"foreignKey:RecipeID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new recipe
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Recipe model
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeItem is one ingredient requirement per single unit of product
type RecipeItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RecipeID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"recipe_id"`
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index" json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"quantity"`
	SortOrder    int             `gorm:"default:0" json:"sort_order"`

	// Relationships
	Ingredient Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

// BeforeCreate generates a UUID before creating a new recipe item
func (ri *RecipeItem) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RecipeItem model
func (RecipeItem) TableName() string {
	return "recipe_items"
}
