package model

// CategoryCount is one bar of the category histogram.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// PriorityCount is one bar of the priority histogram.
type PriorityCount struct {
	Priority Priority `json:"priority"`
	Count    int      `json:"count"`
}

// CategoryEngagement is the share of a category's notifications that have been read.
type CategoryEngagement struct {
	Category       Category `json:"category"`
	ReadPercentage int      `json:"readPercentage"`
}

// ReadTimePoint is the average delay, in minutes, between publishing and
// reading for receipts recorded on Date (UTC, YYYY-MM-DD).
type ReadTimePoint struct {
	Date        string `json:"date"`
	AvgReadTime int    `json:"avgReadTime"`
}

// Insights summarizes the engagement table for the dashboard.
type Insights struct {
	MostEngaged    *CategoryEngagement `json:"mostEngaged,omitempty"`
	LeastEngaged   *CategoryEngagement `json:"leastEngaged,omitempty"`
	NeedsAttention bool                `json:"needsAttention"`
}

// AnalyticsSnapshot is derived from notifications and read receipts on demand
// and never stored.
type AnalyticsSnapshot struct {
	TotalNotifications   int                  `json:"totalNotifications"`
	ReadCount            int                  `json:"readCount"`
	UnreadCount          int                  `json:"unreadCount"`
	ReadRate             int                  `json:"readRate"`
	CategoryBreakdown    []CategoryCount      `json:"categoryBreakdown"`
	PriorityBreakdown    []PriorityCount      `json:"priorityBreakdown"`
	EngagementByCategory []CategoryEngagement `json:"engagementByCategory"`
	ReadTimeTrend        []ReadTimePoint      `json:"readTimeTrend"`
	Insights             Insights             `json:"insights"`
}
