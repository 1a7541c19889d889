package model

import "time"

// Category classifies a notification.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryEmergency   Category = "emergency"
	CategoryMess        Category = "mess"
	CategoryMaintenance Category = "maintenance"
	CategoryEvents      Category = "events"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryGeneral, CategoryEmergency, CategoryMess, CategoryMaintenance, CategoryEvents}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority is the urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Notification is a warden broadcast scoped to a single hostel. It is never
// edited after creation.
type Notification struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	Title       string     `gorm:"size:256;not null" json:"title"`
	Message     string     `gorm:"type:text;not null" json:"message"`
	Category    Category   `gorm:"size:32;index;not null" json:"category"`
	Priority    Priority   `gorm:"size:16;index;not null" json:"priority"`
	HostelID    string     `gorm:"size:64;index;not null" json:"hostelId"`
	CreatedByID string     `gorm:"size:64;not null" json:"-"`
	CreatedAt   time.Time  `gorm:"index;not null" json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`

	// Associations
	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"createdBy"`
}
