package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/db"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

// newSeededSource opens a private in-memory SQLite database holding the demo fixtures.
func newSeededSource(t *testing.T) *GormSource {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	testDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))

	src := NewGormSource(testDB)
	require.NoError(t, src.Seed(context.Background(), DemoFixtures(now)))
	return src
}

func TestGormSource_LoadNotifications(t *testing.T) {
	src := newSeededSource(t)
	ctx := context.Background()

	all, err := src.LoadNotifications(ctx, "hostel-1", query.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID, all[4].ID})
	assert.Equal(t, "warden-1", all[0].CreatedBy.ID)

	high := model.PriorityHigh
	filtered, err := src.LoadNotifications(ctx, "hostel-1", query.Filter{Priority: &high})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "2", filtered[0].ID)
}

func TestGormSource_PersistNotification(t *testing.T) {
	src := newSeededSource(t)
	ctx := context.Background()

	n := model.Notification{
		ID: "6", Title: "Power cut", Message: "Block B tonight",
		Category: model.CategoryMaintenance, Priority: model.PriorityHigh,
		HostelID: "hostel-1", CreatedByID: "warden-1", CreatedAt: now,
	}
	_, err := src.PersistNotification(ctx, n)
	require.NoError(t, err)

	all, err := src.LoadNotifications(ctx, "hostel-1", query.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "6", all[0].ID)
	assert.Equal(t, "Jane Smith", all[0].CreatedBy.Name)
}

func TestGormSource_PersistReadReceipt(t *testing.T) {
	src := newSeededSource(t)
	ctx := context.Background()

	fresh, err := src.PersistReadReceipt(ctx, model.ReadReceipt{ID: "r-new", UserID: "student-1", NotificationID: "2", ReadAt: now})
	require.NoError(t, err)
	assert.Equal(t, "r-new", fresh.ID)

	again, err := src.PersistReadReceipt(ctx, model.ReadReceipt{ID: "r-dup", UserID: "student-1", NotificationID: "2", ReadAt: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "r-new", again.ID, "existing receipt wins")

	_, err = src.PersistReadReceipt(ctx, model.ReadReceipt{ID: "r-orphan", UserID: "student-1", NotificationID: "404", ReadAt: now})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	receipts, err := src.LoadReadReceipts(ctx, "student-1")
	require.NoError(t, err)
	assert.Len(t, receipts, 3)
}

func TestGormSource_Feedback(t *testing.T) {
	src := newSeededSource(t)
	ctx := context.Background()

	created, err := src.PersistFeedback(ctx, model.Feedback{
		ID: "3", Category: model.FeedbackMess, Rating: 2, Comment: "Too salty",
		UserID: "student-1", HostelID: "hostel-1", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.False(t, created.Resolved)

	items, err := src.LoadFeedback(ctx, "hostel-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "3", items[0].ID)

	resolved, err := src.PersistFeedbackResolution(ctx, "hostel-1", "3", "Chef informed", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "Chef informed", resolved.Response)

	resolved, err = src.PersistFeedbackResolution(ctx, "hostel-1", "3", "Menu changed", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Menu changed", resolved.Response)

	items, err = src.LoadFeedback(ctx, "hostel-1")
	require.NoError(t, err)
	assert.Equal(t, "Menu changed", items[0].Response)
	assert.True(t, items[0].Resolved)

	_, err = src.PersistFeedbackResolution(ctx, "hostel-1", "missing", "x", now)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestGormSource_FeedbackResolutionScopedToHostel(t *testing.T) {
	src := newSeededSource(t)
	ctx := context.Background()

	_, err := src.PersistFeedbackResolution(ctx, "hostel-2", "1", "hijacked", now)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	items, err := src.LoadFeedback(ctx, "hostel-1")
	require.NoError(t, err)
	for _, f := range items {
		if f.ID == "1" {
			assert.False(t, f.Resolved)
			assert.Empty(t, f.Response)
		}
	}
}

func TestGormSource_Users(t *testing.T) {
	src := newSeededSource(t)
	ctx := context.Background()

	u, err := src.FindUserByEmail(ctx, "Student@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "student-1", u.ID)

	u = u.WithProfile("Johnny Doe", "johnny@example.com", now)
	updated, err := src.UpdateUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", updated.Name)
	assert.Equal(t, "johnny@example.com", updated.Email)

	_, err = src.FindUserByEmail(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = src.UpdateUser(ctx, model.User{ID: "ghost", Name: "x", Email: "x@example.com", UpdatedAt: now})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
