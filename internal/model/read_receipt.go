package model

import "time"

// ReadReceipt records that a user has read a notification. At most one exists
// per (user, notification) pair and receipts are never deleted.
type ReadReceipt struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	NotificationID string    `gorm:"size:64;not null;uniqueIndex:idx_read_receipt_pair,priority:2" json:"notificationId"`
	UserID         string    `gorm:"size:64;not null;uniqueIndex:idx_read_receipt_pair,priority:1" json:"userId"`
	ReadAt         time.Time `gorm:"not null" json:"readAt"`
}
