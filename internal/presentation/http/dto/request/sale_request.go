package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one product line of a sale being committed
type SaleItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
}

// SalePaymentRequest is one payment-method/amount pair tendered for a sale
type SalePaymentRequest struct {
	Method    string          `json:"method" binding:"required,oneof=CASH CARD MOBILE_WALLET"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reference *string         `json:"reference,omitempty"`
}

// CommitSaleRequest represents a sale commit request
type CommitSaleRequest struct {
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	WaiterID   *uuid.UUID `json:"waiter_id,omitempty"`
	OrderType  string     `json:"order_type" binding:"omitempty,oneof=counter dine_in takeaway delivery"`

	Items []SaleItemRequest `json:"items" binding:"required,min=1,dive"`

	// Either a payments list or a single payment_method
	Payments      []SalePaymentRequest `json:"payments,omitempty" binding:"omitempty,dive"`
	PaymentMethod string               `json:"payment_method" binding:"omitempty,oneof=CASH CARD MOBILE_WALLET"`

	Discount      decimal.Decimal `json:"discount"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Tip           decimal.Decimal `json:"tip"`
}

// RefundSaleRequest represents a sale refund request
type RefundSaleRequest struct {
	Reason  string      `json:"reason" binding:"required,min=3"`
	ItemIDs []uuid.UUID `json:"item_ids,omitempty"`
}
