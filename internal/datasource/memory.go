package datasource

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

// MemorySource is an in-process DataSource and UserDirectory. It is safe for
// concurrent use and returns copies, never shared slices.
type MemorySource struct {
	mu            sync.Mutex
	users         map[string]model.User
	notifications map[string]model.Notification
	receipts      []model.ReadReceipt
	feedback      map[string]model.Feedback
	failures      map[string]error
	calls         map[string]int
}

// NewMemorySource creates a source holding fx.
func NewMemorySource(fx Fixtures) *MemorySource {
	m := &MemorySource{
		users:         make(map[string]model.User),
		notifications: make(map[string]model.Notification),
		feedback:      make(map[string]model.Feedback),
		failures:      make(map[string]error),
		calls:         make(map[string]int),
	}
	for _, u := range fx.Users {
		m.users[u.ID] = u
	}
	for _, n := range fx.Notifications {
		m.notifications[n.ID] = n
	}
	m.receipts = append(m.receipts, fx.Receipts...)
	for _, f := range fx.Feedback {
		m.feedback[f.ID] = f
	}
	return m
}

// FailNext makes the next call to op return err.
func (m *MemorySource) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// Calls reports how many times op has been invoked.
func (m *MemorySource) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// enter must be called with m.mu held.
func (m *MemorySource) enter(op string) error {
	m.calls[op]++
	if err, ok := m.failures[op]; ok {
		delete(m.failures, op)
		return err
	}
	return nil
}

func (m *MemorySource) LoadNotifications(ctx context.Context, hostelID string, f query.Filter) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpLoadNotifications); err != nil {
		return nil, err
	}

	out := make([]model.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		if n.HostelID != hostelID {
			continue
		}
		if f.Category != nil && n.Category != *f.Category {
			continue
		}
		if f.Priority != nil && n.Priority != *f.Priority {
			continue
		}
		if u, ok := m.users[n.CreatedByID]; ok {
			n.CreatedBy = u
		}
		out = append(out, n)
	}
	query.SortNewestFirst(out)
	return out, nil
}

func (m *MemorySource) LoadReadReceipts(ctx context.Context, userID string) ([]model.ReadReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpLoadReadReceipts); err != nil {
		return nil, err
	}

	out := make([]model.ReadReceipt, 0)
	for _, r := range m.receipts {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemorySource) PersistNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPersistNotification); err != nil {
		return model.Notification{}, err
	}

	m.notifications[n.ID] = n
	return n, nil
}

func (m *MemorySource) PersistReadReceipt(ctx context.Context, r model.ReadReceipt) (model.ReadReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPersistReadReceipt); err != nil {
		return model.ReadReceipt{}, err
	}

	if _, ok := m.notifications[r.NotificationID]; !ok {
		return model.ReadReceipt{}, apperr.NotFound("datasource."+OpPersistReadReceipt, "notification %q not found", r.NotificationID)
	}
	for _, existing := range m.receipts {
		if existing.UserID == r.UserID && existing.NotificationID == r.NotificationID {
			return existing, nil
		}
	}
	m.receipts = append(m.receipts, r)
	return r, nil
}

func (m *MemorySource) LoadFeedback(ctx context.Context, hostelID string) ([]model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpLoadFeedback); err != nil {
		return nil, err
	}

	out := make([]model.Feedback, 0, len(m.feedback))
	for _, f := range m.feedback {
		if f.HostelID == hostelID {
			out = append(out, f)
		}
	}
	sortFeedback(out)
	return out, nil
}

func (m *MemorySource) PersistFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPersistFeedback); err != nil {
		return model.Feedback{}, err
	}

	m.feedback[f.ID] = f
	return f, nil
}

func (m *MemorySource) PersistFeedbackResolution(ctx context.Context, hostelID, id, response string, resolvedAt time.Time) (model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpPersistFeedbackResolution); err != nil {
		return model.Feedback{}, err
	}

	f, ok := m.feedback[id]
	if !ok || f.HostelID != hostelID {
		return model.Feedback{}, apperr.NotFound("datasource."+OpPersistFeedbackResolution, "feedback %q not found", id)
	}
	f = f.WithResolution(response, resolvedAt)
	m.feedback[id] = f
	return f, nil
}

func (m *MemorySource) FindUser(ctx context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpFindUser); err != nil {
		return model.User{}, err
	}

	u, ok := m.users[id]
	if !ok {
		return model.User{}, apperr.NotFound("datasource."+OpFindUser, "user %q not found", id)
	}
	return u, nil
}

func (m *MemorySource) FindUserByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpFindUserByEmail); err != nil {
		return model.User{}, err
	}

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, apperr.NotFound("datasource."+OpFindUserByEmail, "no user with email %q", email)
}

func (m *MemorySource) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(OpUpdateUser); err != nil {
		return model.User{}, err
	}

	existing, ok := m.users[u.ID]
	if !ok {
		return model.User{}, apperr.NotFound("datasource."+OpUpdateUser, "user %q not found", u.ID)
	}
	updated := existing.WithProfile(u.Name, u.Email, u.UpdatedAt)
	m.users[u.ID] = updated
	return updated, nil
}

// sortFeedback orders feedback newest first, ties broken by ID descending.
func sortFeedback(items []model.Feedback) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
}
