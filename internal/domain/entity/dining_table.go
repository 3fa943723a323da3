package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Floor is a seating area grouping dining tables
type Floor struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:100;unique;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new floor
func (f *Floor) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Floor model
func (Floor) TableName() string {
	return "floors"
}

// DiningTable is a physical table a sale can be bound to
type DiningTable struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	FloorID   *uuid.UUID `gorm:"type:uuid;index" json:"floor_id,omitempty"`
	Number    int        `gorm:"not null" json:"number"`
	Seats     int        `gorm:"default:0" json:"seats"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relationships
	Floor *Floor `gorm:"foreignKey:FloorID" json:"floor,omitempty"`
}

// BeforeCreate generates a UUID before creating a new dining table
func (t *DiningTable) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DiningTable model
func (DiningTable) TableName() string {
	return "dining_tables"
}
