package model

import "time"

// Role is the authority level of an actor.
type Role string

const (
	RoleStudent Role = "student"
	RoleWarden  Role = "warden"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleWarden
}

// User is a student or warden living in or managing one hostel.
type User struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Email      string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Role       Role      `gorm:"size:16;not null" json:"role"`
	HostelID   string    `gorm:"index;size:64;not null" json:"hostelId"`
	RoomNumber string    `gorm:"size:32" json:"roomNumber,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

// IsWarden reports whether the user may broadcast notifications.
func (u User) IsWarden() bool {
	return u.Role == RoleWarden
}

// WithProfile returns a copy of u carrying the new name and email.
func (u User) WithProfile(name, email string, now time.Time) User {
	u.Name = name
	u.Email = email
	u.UpdatedAt = now
	return u
}
