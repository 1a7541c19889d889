package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hostel-dashboard-backend/internal/model"
)

func ptr[T any](v T) *T { return &v }

func ids(ns []model.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func fixtures() []model.Notification {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.Notification{
		{ID: "1", Title: "Water Supply Interruption", Message: "Maintenance work tomorrow", Category: model.CategoryMaintenance, Priority: model.PriorityMedium, CreatedAt: base},
		{ID: "2", Title: "Fire Drill", Message: "All students must participate", Category: model.CategoryEmergency, Priority: model.PriorityHigh, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "3", Title: "Weekend Mess Menu", Message: "Pizza on Saturday", Category: model.CategoryMess, Priority: model.PriorityLow, CreatedAt: base.Add(4 * time.Hour)},
		{ID: "4", Title: "Mess closed", Message: "Kitchen deep clean", Category: model.CategoryMess, Priority: model.PriorityHigh, CreatedAt: base.Add(1 * time.Hour)},
		{ID: "5", Title: "Cultural Night", Message: "Register your PIZZA eating act", Category: model.CategoryEvents, Priority: model.PriorityMedium, CreatedAt: base.Add(3 * time.Hour)},
	}
}

func TestApply(t *testing.T) {
	readIDs := map[string]bool{"1": true, "3": true}
	isRead := func(id string) bool { return readIDs[id] }

	testCases := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{
			name:     "Empty filter returns everything newest first",
			filter:   Filter{},
			expected: []string{"3", "5", "2", "4", "1"},
		},
		{
			name:     "Category and priority are ANDed",
			filter:   Filter{Category: ptr(model.CategoryMess), Priority: ptr(model.PriorityHigh)},
			expected: []string{"4"},
		},
		{
			name:     "Category only",
			filter:   Filter{Category: ptr(model.CategoryMess)},
			expected: []string{"3", "4"},
		},
		{
			name:     "Search is case-insensitive across title and message",
			filter:   Filter{Search: "pizza"},
			expected: []string{"3", "5"},
		},
		{
			name:     "Search matches title",
			filter:   Filter{Search: "FIRE"},
			expected: []string{"2"},
		},
		{
			name:     "Read true",
			filter:   Filter{Read: ptr(true)},
			expected: []string{"3", "1"},
		},
		{
			name:     "Read false",
			filter:   Filter{Read: ptr(false)},
			expected: []string{"5", "2", "4"},
		},
		{
			name:     "All predicates combined",
			filter:   Filter{Category: ptr(model.CategoryMess), Search: "menu", Read: ptr(true)},
			expected: []string{"3"},
		},
		{
			name:     "No match",
			filter:   Filter{Priority: ptr(model.PriorityLow), Read: ptr(false)},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Apply(fixtures(), tc.filter, isRead)
			assert.Equal(t, tc.expected, ids(result))
		})
	}
}

func TestApplyIsDeterministicAndPure(t *testing.T) {
	input := fixtures()
	before := ids(input)

	first := Apply(input, Filter{}, nil)
	second := Apply(input, Filter{}, nil)

	assert.Equal(t, first, second)
	assert.Equal(t, before, ids(input), "input order must not change")
}

func TestApplyWithoutReadSetTreatsAllAsUnread(t *testing.T) {
	assert.Empty(t, Apply(fixtures(), Filter{Read: ptr(true)}, nil))
	assert.Len(t, Apply(fixtures(), Filter{Read: ptr(false)}, nil), 5)
}

func TestSortNewestFirstTieBreak(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ns := []model.Notification{{ID: "a", CreatedAt: at}, {ID: "c", CreatedAt: at}, {ID: "b", CreatedAt: at}}
	SortNewestFirst(ns)
	assert.Equal(t, []string{"c", "b", "a"}, ids(ns))
}

func TestFilterIsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.True(t, Filter{Search: "   "}.IsZero())
	assert.False(t, Filter{Read: ptr(false)}.IsZero())
}
