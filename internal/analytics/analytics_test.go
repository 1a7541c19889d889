package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-dashboard-backend/internal/model"
)

var base = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestCompute_BreakdownAndEngagement(t *testing.T) {
	notifications := []model.Notification{
		{ID: "g1", Category: model.CategoryGeneral, Priority: model.PriorityMedium, CreatedAt: base},
		{ID: "g2", Category: model.CategoryGeneral, Priority: model.PriorityLow, CreatedAt: base},
		{ID: "e1", Category: model.CategoryEmergency, Priority: model.PriorityHigh, CreatedAt: base},
		{ID: "m1", Category: model.CategoryMess, Priority: model.PriorityMedium, CreatedAt: base},
	}
	receipts := []model.ReadReceipt{
		{ID: "r1", NotificationID: "g1", UserID: "student-1", ReadAt: base.Add(10 * time.Minute)},
		{ID: "r2", NotificationID: "e1", UserID: "student-1", ReadAt: base.Add(20 * time.Minute)},
	}

	snap := Compute(notifications, receipts)

	assert.Equal(t, 4, snap.TotalNotifications)
	assert.Equal(t, 2, snap.ReadCount)
	assert.Equal(t, 2, snap.UnreadCount)
	assert.Equal(t, 50, snap.ReadRate)
	assert.Equal(t, []model.CategoryCount{
		{Category: model.CategoryGeneral, Count: 2},
		{Category: model.CategoryEmergency, Count: 1},
		{Category: model.CategoryMess, Count: 1},
	}, snap.CategoryBreakdown)
	assert.Equal(t, []model.PriorityCount{
		{Priority: model.PriorityLow, Count: 1},
		{Priority: model.PriorityMedium, Count: 2},
		{Priority: model.PriorityHigh, Count: 1},
	}, snap.PriorityBreakdown)
	assert.Equal(t, []model.CategoryEngagement{
		{Category: model.CategoryGeneral, ReadPercentage: 50},
		{Category: model.CategoryEmergency, ReadPercentage: 100},
		{Category: model.CategoryMess, ReadPercentage: 0},
	}, snap.EngagementByCategory)

	require.NotNil(t, snap.Insights.MostEngaged)
	assert.Equal(t, model.CategoryEmergency, snap.Insights.MostEngaged.Category)
	assert.Equal(t, model.CategoryMess, snap.Insights.LeastEngaged.Category)
	assert.True(t, snap.Insights.NeedsAttention)
}

func TestCompute_EmptyCollections(t *testing.T) {
	snap := Compute(nil, nil)

	assert.Equal(t, 0, snap.TotalNotifications)
	assert.Equal(t, 0, snap.ReadRate)
	assert.Empty(t, snap.CategoryBreakdown)
	assert.Empty(t, snap.EngagementByCategory)
	assert.Empty(t, snap.ReadTimeTrend)
	assert.Nil(t, snap.Insights.MostEngaged)
	assert.False(t, snap.Insights.NeedsAttention)
}

func TestCompute_AbsentCategoriesAreOmitted(t *testing.T) {
	snap := Compute([]model.Notification{
		{ID: "x", Category: model.CategoryEvents, Priority: model.PriorityHigh, CreatedAt: base},
	}, nil)

	require.Len(t, snap.CategoryBreakdown, 1)
	assert.Equal(t, model.CategoryEvents, snap.CategoryBreakdown[0].Category)
	require.Len(t, snap.EngagementByCategory, 1)
	assert.Equal(t, 0, snap.EngagementByCategory[0].ReadPercentage)
}

func TestCompute_DuplicateAndOrphanReceipts(t *testing.T) {
	notifications := []model.Notification{
		{ID: "a", Category: model.CategoryGeneral, Priority: model.PriorityLow, CreatedAt: base},
		{ID: "b", Category: model.CategoryGeneral, Priority: model.PriorityLow, CreatedAt: base},
	}
	receipts := []model.ReadReceipt{
		{ID: "r1", NotificationID: "a", UserID: "u1", ReadAt: base},
		{ID: "r2", NotificationID: "a", UserID: "u2", ReadAt: base},
		{ID: "r3", NotificationID: "gone", UserID: "u1", ReadAt: base},
	}

	snap := Compute(notifications, receipts)

	assert.Equal(t, 1, snap.ReadCount)
	assert.Equal(t, 1, snap.UnreadCount)
	assert.Equal(t, 50, snap.EngagementByCategory[0].ReadPercentage)
}

func TestCompute_ReadTimeTrend(t *testing.T) {
	notifications := []model.Notification{
		{ID: "a", Category: model.CategoryGeneral, Priority: model.PriorityLow, CreatedAt: base},
		{ID: "b", Category: model.CategoryMess, Priority: model.PriorityLow, CreatedAt: base},
	}
	receipts := []model.ReadReceipt{
		{ID: "r1", NotificationID: "a", UserID: "u1", ReadAt: base.Add(24*time.Hour + 5*time.Minute)},
		{ID: "r2", NotificationID: "a", UserID: "u2", ReadAt: base.Add(4 * time.Minute)},
		{ID: "r3", NotificationID: "b", UserID: "u1", ReadAt: base.Add(7 * time.Minute)},
	}

	snap := Compute(notifications, receipts)

	assert.Equal(t, []model.ReadTimePoint{
		{Date: "2024-06-01", AvgReadTime: 6},
		{Date: "2024-06-02", AvgReadTime: 1445},
	}, snap.ReadTimeTrend)
}

func TestRoundPercent(t *testing.T) {
	testCases := []struct {
		part, whole, expected int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{5, 5, 100},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, RoundPercent(tc.part, tc.whole), "%d/%d", tc.part, tc.whole)
	}
}
