package model

import "time"

// FeedbackCategory is the facility a piece of feedback is about.
type FeedbackCategory string

const (
	FeedbackMess       FeedbackCategory = "mess"
	FeedbackFacilities FeedbackCategory = "facilities"
)

// FeedbackCategories lists every feedback category.
var FeedbackCategories = []FeedbackCategory{FeedbackMess, FeedbackFacilities}

// Valid reports whether c is a known feedback category.
func (c FeedbackCategory) Valid() bool {
	return c == FeedbackMess || c == FeedbackFacilities
}

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a student rating of mess food or facilities. Response is set
// only once the feedback has been resolved.
type Feedback struct {
	ID        string           `gorm:"primaryKey;size:64" json:"id"`
	Category  FeedbackCategory `gorm:"size:32;not null" json:"category"`
	Rating    int              `gorm:"not null" json:"rating"`
	Comment   string           `gorm:"type:text;not null" json:"comment"`
	UserID    string           `gorm:"size:64;index;not null" json:"userId"`
	HostelID  string           `gorm:"size:64;index;not null" json:"hostelId"`
	Resolved  bool             `gorm:"not null;default:false" json:"resolved,omitempty"`
	Response  string           `gorm:"type:text" json:"response,omitempty"`
	CreatedAt time.Time        `gorm:"index;not null" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"not null" json:"updatedAt"`
}

// WithResolution returns a resolved copy of f carrying response.
func (f Feedback) WithResolution(response string, now time.Time) Feedback {
	f.Resolved = true
	f.Response = response
	f.UpdatedAt = now
	return f
}
