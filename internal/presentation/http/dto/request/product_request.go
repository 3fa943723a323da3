package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	Name          string          `json:"name" binding:"required,min=2,max=255"`
	Code          string          `json:"code" binding:"required,min=1,max=100"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Quantity      int             `json:"quantity" binding:"min=0"`
	QuantityAlert int             `json:"quantity_alert" binding:"min=0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	Name          *string          `json:"name,omitempty" binding:"omitempty,min=2,max=255"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	TaxRate       *decimal.Decimal `json:"tax_rate,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	QuantityAlert *int             `json:"quantity_alert,omitempty"`
	Active        *bool            `json:"active,omitempty"`
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=255"`
	SortOrder int    `json:"sort_order"`
}
