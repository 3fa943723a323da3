package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod represents how a sale (or part of one) was paid
type PaymentMethod int

const (
	PaymentMethodCash         PaymentMethod = 0
	PaymentMethodCard         PaymentMethod = 1
	PaymentMethodMobileWallet PaymentMethod = 2
	PaymentMethodSplit        PaymentMethod = 3
)

func (m PaymentMethod) String() string {
	return [...]string{"CASH", "CARD", "MOBILE_WALLET", "SPLIT"}[m]
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	switch str {
	case "CASH":
		*m = PaymentMethodCash
	case "CARD":
		*m = PaymentMethodCard
	case "MOBILE_WALLET":
		*m = PaymentMethodMobileWallet
	case "SPLIT":
		*m = PaymentMethodSplit
	}
	return nil
}

// ParsePaymentMethod converts a method string to its enum value
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch s {
	case "CASH":
		return PaymentMethodCash, true
	case "CARD":
		return PaymentMethodCard, true
	case "MOBILE_WALLET":
		return PaymentMethodMobileWallet, true
	case "SPLIT":
		return PaymentMethodSplit, true
	}
	return PaymentMethodCash, false
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
