// Package datasource defines the persistence boundary consumed by the stores
// and its gorm, in-memory and HTTP implementations.
package datasource

import (
	"context"
	"time"

	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

// Operation names, used for error context and fault injection.
const (
	OpLoadNotifications         = "LoadNotifications"
	OpLoadReadReceipts          = "LoadReadReceipts"
	OpPersistNotification       = "PersistNotification"
	OpPersistReadReceipt        = "PersistReadReceipt"
	OpLoadFeedback              = "LoadFeedback"
	OpPersistFeedback           = "PersistFeedback"
	OpPersistFeedbackResolution = "PersistFeedbackResolution"
	OpFindUser                  = "FindUser"
	OpFindUserByEmail           = "FindUserByEmail"
	OpUpdateUser                = "UpdateUser"
)

// DataSource is the authoritative store behind the dashboard. Every method may
// fail with apperr.ErrUnavailable or apperr.ErrUnauthorized.
type DataSource interface {
	// LoadNotifications returns the hostel's notifications. Implementations
	// may push the category and priority constraints down; callers re-apply
	// the full filter regardless.
	LoadNotifications(ctx context.Context, hostelID string, f query.Filter) ([]model.Notification, error)
	LoadReadReceipts(ctx context.Context, userID string) ([]model.ReadReceipt, error)
	PersistNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	// PersistReadReceipt fails with apperr.ErrNotFound when the notification
	// does not exist, and returns the existing receipt if the pair is taken.
	PersistReadReceipt(ctx context.Context, r model.ReadReceipt) (model.ReadReceipt, error)
	LoadFeedback(ctx context.Context, hostelID string) ([]model.Feedback, error)
	PersistFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error)
	// PersistFeedbackResolution fails with apperr.ErrNotFound when the id is
	// unknown or belongs to another hostel.
	PersistFeedbackResolution(ctx context.Context, hostelID, id, response string, resolvedAt time.Time) (model.Feedback, error)
}

// UserDirectory resolves and updates actors.
type UserDirectory interface {
	FindUser(ctx context.Context, id string) (model.User, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
}

var (
	_ DataSource    = (*GormSource)(nil)
	_ UserDirectory = (*GormSource)(nil)
	_ DataSource    = (*MemorySource)(nil)
	_ UserDirectory = (*MemorySource)(nil)
	_ DataSource    = (*HTTPSource)(nil)
)
