package datasource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func TestMemorySource_LoadNotifications(t *testing.T) {
	src := NewMemorySource(DemoFixtures(now))
	ctx := context.Background()

	all, err := src.LoadNotifications(ctx, "hostel-1", query.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "5", all[0].ID, "newest first")
	assert.Equal(t, "Jane Smith", all[0].CreatedBy.Name)

	mess := model.CategoryMess
	filtered, err := src.LoadNotifications(ctx, "hostel-1", query.Filter{Category: &mess})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "3", filtered[0].ID)

	other, err := src.LoadNotifications(ctx, "hostel-2", query.Filter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemorySource_PersistReadReceipt(t *testing.T) {
	src := NewMemorySource(DemoFixtures(now))
	ctx := context.Background()

	existing, err := src.PersistReadReceipt(ctx, model.ReadReceipt{ID: "dup", UserID: "student-1", NotificationID: "1", ReadAt: now})
	require.NoError(t, err)
	assert.Equal(t, "read-1", existing.ID, "pair already taken")

	_, err = src.PersistReadReceipt(ctx, model.ReadReceipt{ID: "orphan", UserID: "student-1", NotificationID: "nope", ReadAt: now})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	receipts, err := src.LoadReadReceipts(ctx, "student-1")
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
}

func TestMemorySource_FeedbackResolution(t *testing.T) {
	src := NewMemorySource(DemoFixtures(now))
	ctx := context.Background()

	resolved, err := src.PersistFeedbackResolution(ctx, "hostel-1", "1", "Thanks!", now)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "Thanks!", resolved.Response)
	assert.Equal(t, now, resolved.UpdatedAt)

	_, err = src.PersistFeedbackResolution(ctx, "hostel-1", "missing", "x", now)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMemorySource_FeedbackResolutionScopedToHostel(t *testing.T) {
	src := NewMemorySource(DemoFixtures(now))
	ctx := context.Background()

	_, err := src.PersistFeedbackResolution(ctx, "hostel-2", "1", "x", now)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	items, err := src.LoadFeedback(ctx, "hostel-1")
	require.NoError(t, err)
	for _, f := range items {
		if f.ID == "1" {
			assert.False(t, f.Resolved)
		}
	}
}

func TestMemorySource_FailNext(t *testing.T) {
	src := NewMemorySource(DemoFixtures(now))
	ctx := context.Background()
	boom := apperr.Unavailable("test", errors.New("offline"))

	src.FailNext(OpLoadFeedback, boom)

	_, err := src.LoadFeedback(ctx, "hostel-1")
	assert.ErrorIs(t, err, apperr.ErrUnavailable)

	items, err := src.LoadFeedback(ctx, "hostel-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, src.Calls(OpLoadFeedback))
}

func TestMemorySource_Users(t *testing.T) {
	src := NewMemorySource(DemoFixtures(now))
	ctx := context.Background()

	u, err := src.FindUserByEmail(ctx, "WARDEN@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleWarden, u.Role)

	u.Name = "Jane Doe"
	u.Role = model.RoleStudent
	updated, err := src.UpdateUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.Equal(t, model.RoleWarden, updated.Role, "role is not mutable")

	_, err = src.FindUser(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
