package model

import "time"

// PushSubscription holds the information for a browser push subscription
// belonging to one user.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	UserID    string    `gorm:"size:64;index;not null"`
	HostelID  string    `gorm:"size:64;index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
