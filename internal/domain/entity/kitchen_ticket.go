package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/tillpoint/tillpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// KitchenTicket routes one sale item to one preparation station. Created by
// sale commit with status New; the kitchen display flow owns it afterwards.
type KitchenTicket struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SaleID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"sale_id"`
	SaleItemID uuid.UUID         `gorm:"type:uuid;not null;index" json:"sale_item_id"`
	StationID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"station_id"`
	Status     enum.TicketStatus `gorm:"default:0;index" json:"status"`
	Priority   int               `gorm:"default:0" json:"priority"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	// Relationships
	Station  KitchenStation `gorm:"foreignKey:StationID" json:"station,omitempty"`
	SaleItem SaleItem       `gorm:"foreignKey:SaleItemID" json:"sale_item,omitempty"`
}

// BeforeCreate generates a UUID before creating a new kitchen ticket
func (t *KitchenTicket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the KitchenTicket model
func (KitchenTicket) TableName() string {
	return "kitchen_tickets"
}
