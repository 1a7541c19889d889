package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

// GormSource implements DataSource and UserDirectory on a relational database.
type GormSource struct {
	db *gorm.DB
}

// NewGormSource creates a new GORM-backed data source.
func NewGormSource(db *gorm.DB) *GormSource {
	return &GormSource{db: db}
}

// DB exposes the underlying connection for components that share it.
func (s *GormSource) DB() *gorm.DB {
	return s.db
}

// fail converts a driver error into a domain error.
func fail(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("datasource."+op, "record not found")
	}
	return apperr.Unavailable("datasource."+op, err)
}

func (s *GormSource) LoadNotifications(ctx context.Context, hostelID string, f query.Filter) ([]model.Notification, error) {
	q := s.db.WithContext(ctx).Preload("CreatedBy").Where("hostel_id = ?", hostelID)
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}

	var notifications []model.Notification
	if err := q.Order("created_at DESC").Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, fail(OpLoadNotifications, fmt.Errorf("failed to load notifications for hostel %s: %w", hostelID, err))
	}
	return notifications, nil
}

func (s *GormSource) LoadReadReceipts(ctx context.Context, userID string) ([]model.ReadReceipt, error) {
	var receipts []model.ReadReceipt
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("read_at").Find(&receipts).Error; err != nil {
		return nil, fail(OpLoadReadReceipts, fmt.Errorf("failed to load read receipts for user %s: %w", userID, err))
	}
	return receipts, nil
}

func (s *GormSource) PersistNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&n).Error; err != nil {
		return model.Notification{}, fail(OpPersistNotification, fmt.Errorf("failed to create notification: %w", err))
	}
	return n, nil
}

// PersistReadReceipt inserts the receipt unless one already exists for the
// pair, and returns whichever row is stored.
func (s *GormSource) PersistReadReceipt(ctx context.Context, r model.ReadReceipt) (model.ReadReceipt, error) {
	var stored model.ReadReceipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Notification{}).Where("id = ?", r.NotificationID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperr.NotFound("datasource."+OpPersistReadReceipt, "notification %q not found", r.NotificationID)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "notification_id"}},
			DoNothing: true,
		}).Create(&r).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ? AND notification_id = ?", r.UserID, r.NotificationID).First(&stored).Error
	})
	if err != nil {
		return model.ReadReceipt{}, fail(OpPersistReadReceipt, err)
	}
	return stored, nil
}

func (s *GormSource) LoadFeedback(ctx context.Context, hostelID string) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := s.db.WithContext(ctx).Where("hostel_id = ?", hostelID).
		Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, fail(OpLoadFeedback, fmt.Errorf("failed to load feedback for hostel %s: %w", hostelID, err))
	}
	return items, nil
}

func (s *GormSource) PersistFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return model.Feedback{}, fail(OpPersistFeedback, fmt.Errorf("failed to create feedback: %w", err))
	}
	return f, nil
}

func (s *GormSource) PersistFeedbackResolution(ctx context.Context, hostelID, id, response string, resolvedAt time.Time) (model.Feedback, error) {
	var resolved model.Feedback
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Feedback
		if err := tx.First(&current, "id = ? AND hostel_id = ?", id, hostelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("datasource."+OpPersistFeedbackResolution, "feedback %q not found", id)
			}
			return err
		}

		resolved = current.WithResolution(response, resolvedAt)
		return tx.Model(&current).Updates(map[string]any{
			"resolved":   true,
			"response":   response,
			"updated_at": resolvedAt,
		}).Error
	})
	if err != nil {
		return model.Feedback{}, fail(OpPersistFeedbackResolution, err)
	}
	return resolved, nil
}

func (s *GormSource) FindUser(ctx context.Context, id string) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return model.User{}, fail(OpFindUser, err)
	}
	return u, nil
}

func (s *GormSource) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return model.User{}, fail(OpFindUserByEmail, err)
	}
	return u, nil
}

// UpdateUser writes the mutable profile fields (name, email) of u.
func (s *GormSource) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":       u.Name,
		"email":      u.Email,
		"updated_at": u.UpdatedAt,
	})
	if res.Error != nil {
		return model.User{}, fail(OpUpdateUser, fmt.Errorf("failed to update user %s: %w", u.ID, res.Error))
	}
	if res.RowsAffected == 0 {
		return model.User{}, apperr.NotFound("datasource."+OpUpdateUser, "user %q not found", u.ID)
	}
	return s.FindUser(ctx, u.ID)
}

// Seed inserts fx, skipping rows whose primary key already exists.
func (s *GormSource) Seed(ctx context.Context, fx Fixtures) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := clause.OnConflict{DoNothing: true}
		if len(fx.Users) > 0 {
			if err := tx.Clauses(ignore).Create(&fx.Users).Error; err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
		if len(fx.Notifications) > 0 {
			if err := tx.Clauses(ignore).Omit(clause.Associations).Create(&fx.Notifications).Error; err != nil {
				return fmt.Errorf("seed notifications: %w", err)
			}
		}
		if len(fx.Receipts) > 0 {
			if err := tx.Clauses(ignore).Create(&fx.Receipts).Error; err != nil {
				return fmt.Errorf("seed receipts: %w", err)
			}
		}
		if len(fx.Feedback) > 0 {
			if err := tx.Clauses(ignore).Create(&fx.Feedback).Error; err != nil {
				return fmt.Errorf("seed feedback: %w", err)
			}
		}
		return nil
	})
}
