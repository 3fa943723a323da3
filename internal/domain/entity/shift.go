package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Shift is a cashier's bounded accounting session between opening and
// closing the cash drawer. At most one open shift may exist per cashier;
// a partial unique index on (cashier_id) for open rows enforces this at
// the storage layer. Once closed, a shift is immutable except for notes.
type Shift struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	ShiftNumber string           `gorm:"size:50;unique;not null" json:"shift_number"`
	CashierID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"cashier_id"`
	Status      enum.ShiftStatus `gorm:"default:0;index" json:"status"`

	StartingCash decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"starting_cash"`
	EndingCash   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"ending_cash"`
	ExpectedCash decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"expected_cash"`
	Discrepancy  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discrepancy"`

	CashSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cash_sales"`
	CardSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"card_sales"`
	MobileSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"mobile_sales"`
	SplitSales  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"split_sales"`

	TotalSales          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_sales"`
	TotalTips           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_tips"`
	TotalServiceCharges decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_service_charges"`
	TotalDiscounts      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_discounts"`
	TotalTax            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_tax"`
	TotalTransactions   int             `gorm:"default:0" json:"total_transactions"`
	RefundCount         int             `gorm:"default:0" json:"refund_count"`
	VoidCount           int             `gorm:"default:0" json:"void_count"`

	AutoOpened bool `gorm:"default:false" json:"auto_opened"`
	AutoClosed bool `gorm:"default:false" json:"auto_closed"`

	OpenedAt   time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	ClosedByID *uuid.UUID `gorm:"type:uuid" json:"closed_by_id,omitempty"`
	Notes      *string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Cashier User   `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	Sales   []Sale `gorm:"foreignKey:ShiftID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new shift
func (s *Shift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Shift model
func (Shift) TableName() string {
	return "shifts"
}

// IsOpen reports whether the shift still accepts sales
func (s *Shift) IsOpen() bool {
	return s.Status == enum.ShiftStatusOpen
}
