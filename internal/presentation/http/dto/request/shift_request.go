package request

import "github.com/shopspring/decimal"

// OpenShiftRequest represents a shift open request
type OpenShiftRequest struct {
	StartingCash decimal.Decimal `json:"starting_cash"`
}

// CloseShiftRequest represents a shift close request
type CloseShiftRequest struct {
	EndingCash decimal.Decimal `json:"ending_cash"`
	Notes      *string         `json:"notes,omitempty"`
}
