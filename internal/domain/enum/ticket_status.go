package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TicketStatus represents the preparation state of a kitchen ticket
type TicketStatus int

const (
	TicketStatusNew        TicketStatus = 0
	TicketStatusInProgress TicketStatus = 1
	TicketStatusReady      TicketStatus = 2
	TicketStatusServed     TicketStatus = 3
	TicketStatusCancelled  TicketStatus = 4
)

func (s TicketStatus) String() string {
	return [...]string{"New", "InProgress", "Ready", "Served", "Cancelled"}[s]
}

func (s TicketStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TicketStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = TicketStatus(i)
		return nil
	}
	switch str {
	case "New":
		*s = TicketStatusNew
	case "InProgress":
		*s = TicketStatusInProgress
	case "Ready":
		*s = TicketStatusReady
	case "Served":
		*s = TicketStatusServed
	case "Cancelled":
		*s = TicketStatusCancelled
	}
	return nil
}

// ParseTicketStatus converts a status string to its enum value
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch s {
	case "New":
		return TicketStatusNew, true
	case "InProgress":
		return TicketStatusInProgress, true
	case "Ready":
		return TicketStatusReady, true
	case "Served":
		return TicketStatusServed, true
	case "Cancelled":
		return TicketStatusCancelled, true
	}
	return TicketStatusNew, false
}

func (s TicketStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *TicketStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TicketStatusNew
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = TicketStatus(v)
	case int:
		*s = TicketStatus(v)
	}
	return nil
}
