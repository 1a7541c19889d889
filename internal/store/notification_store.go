package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostel-dashboard-backend/internal/analytics"
	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/datasource"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/pubsub"
	"hostel-dashboard-backend/internal/query"
	"hostel-dashboard-backend/internal/readstate"
)

// NotificationInput is the data a warden supplies when broadcasting. Category
// and priority default to general and medium.
type NotificationInput struct {
	Title     string         `json:"title" validate:"required"`
	Message   string         `json:"message" validate:"required"`
	Category  model.Category `json:"category" validate:"required,oneof=general emergency mess maintenance events"`
	Priority  model.Priority `json:"priority" validate:"required,oneof=low medium high"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

func (in NotificationInput) normalized() NotificationInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Category == "" {
		in.Category = model.CategoryGeneral
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	return in
}

// NotificationSnapshot is the read-only view published after every change.
type NotificationSnapshot struct {
	Notifications []model.Notification `json:"notifications"`
	ReadReceipts  []model.ReadReceipt  `json:"readReceipts"`
	IsLoading     bool                 `json:"isLoading"`
	HasMoreToLoad bool                 `json:"hasMoreToLoad"`
}

// NotificationOption configures a NotificationStore.
type NotificationOption func(*NotificationStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) NotificationOption {
	return func(s *NotificationStore) { s.setClock(now) }
}

// WithDispatcher hands every created notification to d.
func WithDispatcher(d Dispatcher) NotificationOption {
	return func(s *NotificationStore) { s.dispatcher = d }
}

// WithBroadcaster publishes snapshots through h instead of a private hub.
func WithBroadcaster(h *pubsub.Hub[NotificationSnapshot]) NotificationOption {
	return func(s *NotificationStore) { s.hub = h }
}

// NotificationStore owns the notification collection and read receipts of
// one actor. Overlapping fetches are not coalesced: whichever finishes last
// determines the published collection.
type NotificationStore struct {
	ds         datasource.DataSource
	actor      model.User
	tracker    *readstate.Tracker
	hub        *pubsub.Hub[NotificationSnapshot]
	dispatcher Dispatcher
	now        func() time.Time

	mu            sync.RWMutex
	notifications []model.Notification
	inflight      int
	hasMore       bool
	lastFilter    query.Filter
}

// NewNotificationStore creates an empty store for actor.
func NewNotificationStore(ds datasource.DataSource, actor model.User, opts ...NotificationOption) *NotificationStore {
	s := &NotificationStore{
		ds:            ds,
		actor:         actor,
		tracker:       readstate.NewTracker(nil),
		hub:           pubsub.NewHub[NotificationSnapshot](subscriberBuffer),
		now:           time.Now,
		notifications: []model.Notification{},
		hasMore:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *NotificationStore) setClock(now func() time.Time) {
	s.now = now
	s.tracker.SetClock(now)
}

// Actor returns the identity the store acts for.
func (s *NotificationStore) Actor() model.User {
	return s.actor
}

// Fetch reloads the hostel's notifications and the actor's receipts, applies
// f, and publishes the result. On failure the published collection is left
// as it was.
func (s *NotificationStore) Fetch(ctx context.Context, f query.Filter) ([]model.Notification, error) {
	s.setLoading(+1)

	all, err := s.ds.LoadNotifications(ctx, s.actor.HostelID, f)
	if err != nil {
		s.setLoading(-1)
		return nil, err
	}
	receipts, err := s.ds.LoadReadReceipts(ctx, s.actor.ID)
	if err != nil {
		s.setLoading(-1)
		return nil, err
	}

	s.tracker.Merge(receipts)
	filtered := query.Apply(all, f, s.tracker.ReadSet(s.actor.ID))

	s.mu.Lock()
	s.notifications = filtered
	s.lastFilter = f
	s.hasMore = false
	s.inflight--
	s.hub.Publish(s.snapshotLocked())
	s.mu.Unlock()

	return cloneNotifications(filtered), nil
}

// Create broadcasts a new notification. Only wardens may create; the
// notification is stamped with the actor and hostel and prepended to the
// published collection once persisted.
func (s *NotificationStore) Create(ctx context.Context, in NotificationInput) (model.Notification, error) {
	const op = "store.CreateNotification"

	if !s.actor.IsWarden() {
		return model.Notification{}, apperr.Forbidden(op, "only wardens can create notifications")
	}
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return model.Notification{}, validationError(op, err)
	}

	n := model.Notification{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Message:     in.Message,
		Category:    in.Category,
		Priority:    in.Priority,
		HostelID:    s.actor.HostelID,
		CreatedByID: s.actor.ID,
		CreatedBy:   s.actor,
		CreatedAt:   s.now(),
		ExpiresAt:   in.ExpiresAt,
	}

	stored, err := s.ds.PersistNotification(ctx, n)
	if err != nil {
		return model.Notification{}, err
	}
	if stored.CreatedBy.ID == "" {
		stored.CreatedBy = s.actor
	}

	s.mu.Lock()
	s.notifications = append([]model.Notification{stored}, s.notifications...)
	s.hub.Publish(s.snapshotLocked())
	s.mu.Unlock()

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(stored)
	}
	return stored, nil
}

// MarkAsRead records that the actor has read notificationID. Repeated calls
// return the original receipt. The notification must be in the published
// collection.
func (s *NotificationStore) MarkAsRead(ctx context.Context, notificationID string) (model.ReadReceipt, error) {
	s.mu.RLock()
	known := s.notifications
	s.mu.RUnlock()

	r, err := s.tracker.MarkRead(ctx, s.actor.ID, notificationID, known, s.ds.PersistReadReceipt)
	if err != nil {
		return model.ReadReceipt{}, err
	}

	s.mu.Lock()
	s.hub.Publish(s.snapshotLocked())
	s.mu.Unlock()
	return r, nil
}

// UnreadCount counts published notifications the actor has not read.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.UnreadCount(s.actor.ID, s.notifications)
}

// IsRead reports whether the actor has read notificationID.
func (s *NotificationStore) IsRead(notificationID string) bool {
	return s.tracker.IsRead(s.actor.ID, notificationID)
}

// Get looks a notification up in the published collection.
func (s *NotificationStore) Get(id string) (model.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// Analytics computes statistics over the hostel's whole collection. When the
// published collection is filtered, the unfiltered set is loaded without
// replacing what is published.
func (s *NotificationStore) Analytics(ctx context.Context) (model.AnalyticsSnapshot, error) {
	s.mu.RLock()
	loaded, filter, published := !s.hasMore, s.lastFilter, s.notifications
	s.mu.RUnlock()

	if loaded && filter.IsZero() {
		return analytics.Compute(published, s.tracker.Receipts()), nil
	}

	all, err := s.ds.LoadNotifications(ctx, s.actor.HostelID, query.Filter{})
	if err != nil {
		return model.AnalyticsSnapshot{}, err
	}
	return analytics.Compute(all, s.tracker.Receipts()), nil
}

// LastFilter returns the filter of the most recent successful fetch.
func (s *NotificationStore) LastFilter() query.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFilter
}

// Snapshot returns the current published state.
func (s *NotificationStore) Snapshot() NotificationSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe streams every snapshot published after the call until ctx is done.
func (s *NotificationStore) Subscribe(ctx context.Context) <-chan NotificationSnapshot {
	return s.hub.Subscribe(ctx)
}

// Close ends all subscriptions.
func (s *NotificationStore) Close() {
	s.hub.Close()
}

func (s *NotificationStore) setLoading(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight += delta
	s.hub.Publish(s.snapshotLocked())
}

// snapshotLocked must be called with s.mu held.
func (s *NotificationStore) snapshotLocked() NotificationSnapshot {
	return NotificationSnapshot{
		Notifications: cloneNotifications(s.notifications),
		ReadReceipts:  s.tracker.Receipts(),
		IsLoading:     s.inflight > 0,
		HasMoreToLoad: s.hasMore,
	}
}

func cloneNotifications(ns []model.Notification) []model.Notification {
	out := make([]model.Notification, len(ns))
	copy(out, ns)
	return out
}
