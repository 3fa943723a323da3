package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// ShiftStatus represents whether a shift is open or closed
type ShiftStatus int

const (
	ShiftStatusOpen   ShiftStatus = 0
	ShiftStatusClosed ShiftStatus = 1
)

func (s ShiftStatus) String() string {
	return [...]string{"Open", "Closed"}[s]
}

func (s ShiftStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ShiftStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ShiftStatus(i)
		return nil
	}
	switch str {
	case "Open":
		*s = ShiftStatusOpen
	case "Closed":
		*s = ShiftStatusClosed
	}
	return nil
}

func (s ShiftStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ShiftStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ShiftStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ShiftStatus(v)
	case int:
		*s = ShiftStatus(v)
	}
	return nil
}

// ShiftMode controls whether shifts open implicitly and how they close.
type ShiftMode string

const (
	ShiftModeManual    ShiftMode = "manual"
	ShiftModeAutomatic ShiftMode = "automatic"
	ShiftModeHybrid    ShiftMode = "hybrid"
	ShiftModeOnDemand  ShiftMode = "on_demand"
)

// ParseShiftMode maps a configuration string to a ShiftMode, defaulting to manual.
func ParseShiftMode(s string) ShiftMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automatic":
		return ShiftModeAutomatic
	case "hybrid":
		return ShiftModeHybrid
	case "on_demand", "ondemand", "on-demand":
		return ShiftModeOnDemand
	default:
		return ShiftModeManual
	}
}
