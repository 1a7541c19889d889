package analytics

import (
	"sort"

	"hostel-dashboard-backend/internal/model"
)

const dayLayout = "2006-01-02"

// readTimeTrend averages, per UTC day of ReadAt, the minutes between a
// notification being published and being read. Receipts for unknown
// notifications and receipts dated before their notification are skipped.
func readTimeTrend(byID map[string]model.Notification, receipts []model.ReadReceipt) []model.ReadTimePoint {
	type bucket struct {
		totalMinutes float64
		count        int
	}
	buckets := make(map[string]*bucket)

	for _, r := range receipts {
		n, ok := byID[r.NotificationID]
		if !ok || r.ReadAt.Before(n.CreatedAt) {
			continue
		}
		day := r.ReadAt.UTC().Format(dayLayout)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.totalMinutes += r.ReadAt.Sub(n.CreatedAt).Minutes()
		b.count++
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	trend := make([]model.ReadTimePoint, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		avg := b.totalMinutes / float64(b.count)
		trend = append(trend, model.ReadTimePoint{
			Date:        day,
			AvgReadTime: int(avg + 0.5),
		})
	}
	return trend
}
