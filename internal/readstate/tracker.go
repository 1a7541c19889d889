// Package readstate tracks which users have read which notifications.
package readstate

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
)

// PersistFunc stores a new receipt and returns the stored value. The stored
// value wins over the proposed one, so a backend that already holds a receipt
// for the pair may return it instead.
type PersistFunc func(ctx context.Context, r model.ReadReceipt) (model.ReadReceipt, error)

type pair struct {
	userID         string
	notificationID string
}

// Tracker holds at most one receipt per (user, notification). It is safe for
// concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	receipts map[pair]model.ReadReceipt
	now      func() time.Time
}

// NewTracker creates a tracker seeded with receipts. Duplicate pairs keep the
// earliest receipt.
func NewTracker(receipts []model.ReadReceipt) *Tracker {
	t := &Tracker{now: time.Now, receipts: make(map[pair]model.ReadReceipt, len(receipts))}
	t.Merge(receipts)
	return t
}

// SetClock overrides the time source used for new receipts.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Merge adds receipts to the set; existing receipts are never removed.
// Duplicate pairs keep the earliest receipt.
func (t *Tracker) Merge(receipts []model.ReadReceipt) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range receipts {
		key := pair{r.UserID, r.NotificationID}
		if existing, ok := t.receipts[key]; ok && !r.ReadAt.Before(existing.ReadAt) {
			continue
		}
		t.receipts[key] = r
	}
}

// IsRead reports whether userID has a receipt for notificationID.
func (t *Tracker) IsRead(userID, notificationID string) bool {
	_, ok := t.Receipt(userID, notificationID)
	return ok
}

// Receipt returns the receipt for the pair, if any.
func (t *Tracker) Receipt(userID, notificationID string) (model.ReadReceipt, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.receipts[pair{userID, notificationID}]
	return r, ok
}

// ReadSet returns a membership test for userID suitable for query.Apply.
func (t *Tracker) ReadSet(userID string) func(notificationID string) bool {
	return func(notificationID string) bool {
		return t.IsRead(userID, notificationID)
	}
}

// MarkRead records that userID has read notificationID. If a receipt already
// exists it is returned unchanged and persist is not called. The notification
// must be present in known. persist may be nil for purely in-memory use; it is
// called without holding the tracker lock.
func (t *Tracker) MarkRead(ctx context.Context, userID, notificationID string, known []model.Notification, persist PersistFunc) (model.ReadReceipt, error) {
	const op = "readstate.MarkRead"

	if existing, ok := t.Receipt(userID, notificationID); ok {
		return existing, nil
	}
	if !contains(known, notificationID) {
		return model.ReadReceipt{}, apperr.NotFound(op, "notification %q not found", notificationID)
	}

	t.mu.RLock()
	now := t.now()
	t.mu.RUnlock()

	r := model.ReadReceipt{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		UserID:         userID,
		ReadAt:         now,
	}
	if persist != nil {
		stored, err := persist(ctx, r)
		if err != nil {
			return model.ReadReceipt{}, err
		}
		r = stored
	}

	return t.record(r), nil
}

// record inserts r unless a receipt for the pair already exists, in which
// case the existing one is returned.
func (t *Tracker) record(r model.ReadReceipt) model.ReadReceipt {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := pair{r.UserID, r.NotificationID}
	if existing, ok := t.receipts[key]; ok {
		return existing
	}
	t.receipts[key] = r
	return r
}

// UnreadCount counts notifications in the set that userID has not read.
func (t *Tracker) UnreadCount(userID string, notifications []model.Notification) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, n := range notifications {
		if _, ok := t.receipts[pair{userID, n.ID}]; !ok {
			count++
		}
	}
	return count
}

// Receipts returns a copy of every receipt ordered by ReadAt, then ID.
func (t *Tracker) Receipts() []model.ReadReceipt {
	t.mu.RLock()
	out := make([]model.ReadReceipt, 0, len(t.receipts))
	for _, r := range t.receipts {
		out = append(out, r)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReadAt.Equal(out[j].ReadAt) {
			return out[i].ReadAt.Before(out[j].ReadAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func contains(notifications []model.Notification, id string) bool {
	for _, n := range notifications {
		if n.ID == id {
			return true
		}
	}
	return false
}
