// Package query filters and orders notification collections.
package query

import (
	"sort"
	"strings"

	"hostel-dashboard-backend/internal/model"
)

// Filter narrows a notification collection. A nil or empty field places no
// constraint on that axis; all set fields must match.
type Filter struct {
	Category *model.Category `json:"category,omitempty"`
	Priority *model.Priority `json:"priority,omitempty"`
	Search   string          `json:"search,omitempty"`
	Read     *bool           `json:"read,omitempty"`
}

// IsZero reports whether f constrains nothing.
func (f Filter) IsZero() bool {
	return f.Category == nil && f.Priority == nil && strings.TrimSpace(f.Search) == "" && f.Read == nil
}

// Apply returns the notifications matching f, newest first. isRead answers the
// read-state predicate for the current user; when it is nil every notification
// counts as unread. The input slice is never modified.
func Apply(notifications []model.Notification, f Filter, isRead func(notificationID string) bool) []model.Notification {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	result := make([]model.Notification, 0, len(notifications))
	for _, n := range notifications {
		if f.Category != nil && n.Category != *f.Category {
			continue
		}
		if f.Priority != nil && n.Priority != *f.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(n.Title), search) &&
			!strings.Contains(strings.ToLower(n.Message), search) {
			continue
		}
		if f.Read != nil {
			read := isRead != nil && isRead(n.ID)
			if read != *f.Read {
				continue
			}
		}
		result = append(result, n)
	}

	SortNewestFirst(result)
	return result
}

// SortNewestFirst orders notifications by CreatedAt descending in place. Equal
// timestamps fall back to ID descending so the order is deterministic.
func SortNewestFirst(notifications []model.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		a, b := notifications[i], notifications[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}
