// Package analytics derives dashboard statistics from notifications and read
// receipts. Every call recomputes from scratch.
package analytics

import (
	"sort"

	"hostel-dashboard-backend/internal/model"
)

// needsAttentionBelow is the read percentage under which the least engaged
// category is flagged.
const needsAttentionBelow = 50

// RoundPercent returns round-half-up(100 * part / whole), or 0 when whole is 0.
func RoundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// Compute builds a snapshot of the given collections. Receipts that reference
// notifications outside the set are ignored.
func Compute(notifications []model.Notification, receipts []model.ReadReceipt) model.AnalyticsSnapshot {
	byID := make(map[string]model.Notification, len(notifications))
	for _, n := range notifications {
		byID[n.ID] = n
	}

	read := make(map[string]bool, len(receipts))
	for _, r := range receipts {
		if _, ok := byID[r.NotificationID]; ok {
			read[r.NotificationID] = true
		}
	}

	categoryTotal := make(map[model.Category]int)
	categoryRead := make(map[model.Category]int)
	priorityTotal := make(map[model.Priority]int)
	for _, n := range notifications {
		categoryTotal[n.Category]++
		priorityTotal[n.Priority]++
		if read[n.ID] {
			categoryRead[n.Category]++
		}
	}

	snap := model.AnalyticsSnapshot{
		TotalNotifications:   len(notifications),
		ReadCount:            len(read),
		UnreadCount:          len(notifications) - len(read),
		ReadRate:             RoundPercent(len(read), len(notifications)),
		CategoryBreakdown:    []model.CategoryCount{},
		PriorityBreakdown:    []model.PriorityCount{},
		EngagementByCategory: []model.CategoryEngagement{},
	}

	for _, c := range orderedCategories(categoryTotal) {
		total := categoryTotal[c]
		snap.CategoryBreakdown = append(snap.CategoryBreakdown, model.CategoryCount{Category: c, Count: total})
		snap.EngagementByCategory = append(snap.EngagementByCategory, model.CategoryEngagement{
			Category:       c,
			ReadPercentage: RoundPercent(categoryRead[c], total),
		})
	}
	for _, p := range orderedPriorities(priorityTotal) {
		snap.PriorityBreakdown = append(snap.PriorityBreakdown, model.PriorityCount{Priority: p, Count: priorityTotal[p]})
	}

	snap.ReadTimeTrend = readTimeTrend(byID, receipts)
	snap.Insights = insights(snap.EngagementByCategory)
	return snap
}

// orderedCategories returns the categories present in counts, known ones in
// display order followed by any unknown values sorted by name.
func orderedCategories(counts map[model.Category]int) []model.Category {
	out := make([]model.Category, 0, len(counts))
	for _, c := range model.Categories {
		if counts[c] > 0 {
			out = append(out, c)
		}
	}
	var extra []model.Category
	for c, n := range counts {
		if n > 0 && !c.Valid() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func orderedPriorities(counts map[model.Priority]int) []model.Priority {
	out := make([]model.Priority, 0, len(counts))
	for _, p := range model.Priorities {
		if counts[p] > 0 {
			out = append(out, p)
		}
	}
	var extra []model.Priority
	for p, n := range counts {
		if n > 0 && !p.Valid() {
			extra = append(extra, p)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// insights picks the best and worst engaged categories. Ties resolve to the
// earlier category in display order.
func insights(engagement []model.CategoryEngagement) model.Insights {
	if len(engagement) == 0 {
		return model.Insights{}
	}
	most, least := engagement[0], engagement[0]
	for _, e := range engagement[1:] {
		if e.ReadPercentage > most.ReadPercentage {
			most = e
		}
		if e.ReadPercentage < least.ReadPercentage {
			least = e
		}
	}
	return model.Insights{
		MostEngaged:    &most,
		LeastEngaged:   &least,
		NeedsAttention: least.ReadPercentage < needsAttentionBelow,
	}
}
