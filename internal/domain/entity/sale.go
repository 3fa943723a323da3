package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale is a committed register transaction. Monetary fields are immutable
// once committed; only the status flips afterwards (refund/void).
// Invariant: Total = Subtotal - Discount + Tax + ServiceCharge + Tip.
type Sale struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	SaleNumber string     `gorm:"size:50;unique;not null" json:"sale_number"`
	CashierID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	ShiftID    *uuid.UUID `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	TableID    *uuid.UUID `gorm:"type:uuid;index" json:"table_id,omitempty"`
	WaiterID   *uuid.UUID `gorm:"type:uuid" json:"waiter_id,omitempty"`

	Status    enum.SaleStatus `gorm:"default:1;index" json:"status"`
	OrderType string          `gorm:"size:30;default:'counter'" json:"order_type"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	ServiceCharge decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"service_charge"`
	Tip           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tip"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	// PaymentMethod is the legacy single-method field. Sales written by this
	// codebase always carry payment rows as well; older rows may have only
	// this field, and reconciliation honors both.
	PaymentMethod enum.PaymentMethod `gorm:"default:0" json:"payment_method"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Cashier  User          `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Shift    *Shift        `gorm:"foreignKey:ShiftID" json:"-"`
	Table    *DiningTable  `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Items    []SaleItem    `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	Payments []SalePayment `gorm:"foreignKey:SaleID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one product line within a sale, owned exclusively by it
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	Discount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt time.Time       `json:"created_at"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// SalePayment is one payment-method/amount pair attached to a sale.
// The amounts of a sale's payment rows always sum to the sale's total.
type SalePayment struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"sale_id"`
	Method    enum.PaymentMethod `gorm:"not null" json:"method"`
	Amount    decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reference *string            `gorm:"size:255" json:"reference,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new sale payment
func (sp *SalePayment) BeforeCreate(tx *gorm.DB) error {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SalePayment model
func (SalePayment) TableName() string {
	return "sale_payments"
}

// Refund records a whole-sale refund with its reason and approver
type Refund struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason       string          `gorm:"type:text" json:"reason"`
	ApprovedByID uuid.UUID       `gorm:"type:uuid;not null" json:"approved_by_id"`
	CreatedAt    time.Time       `json:"created_at"`

	// Relationships
	ApprovedBy User `gorm:"foreignKey:ApprovedByID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new refund
func (r *Refund) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Refund model
func (Refund) TableName() string {
	return "refunds"
}
