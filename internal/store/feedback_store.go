package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/datasource"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/pubsub"
)

// FeedbackInput is the data a student supplies when rating a facility.
type FeedbackInput struct {
	Category model.FeedbackCategory `json:"category" validate:"required,oneof=mess facilities"`
	Rating   int                    `json:"rating" validate:"min=1,max=5"`
	Comment  string                 `json:"comment" validate:"required"`
}

type resolveInput struct {
	Response string `validate:"required"`
}

// FeedbackSnapshot is the read-only view published after every change.
type FeedbackSnapshot struct {
	Feedbacks []model.Feedback `json:"feedbacks"`
	IsLoading bool             `json:"isLoading"`
}

// FeedbackOption configures a FeedbackStore.
type FeedbackOption func(*FeedbackStore)

// WithFeedbackClock overrides the time source.
func WithFeedbackClock(now func() time.Time) FeedbackOption {
	return func(s *FeedbackStore) { s.now = now }
}

// FeedbackStore owns the feedback collection visible to one actor.
type FeedbackStore struct {
	ds    datasource.DataSource
	actor model.User
	hub   *pubsub.Hub[FeedbackSnapshot]
	now   func() time.Time

	mu       sync.RWMutex
	items    []model.Feedback
	inflight int
}

// NewFeedbackStore creates an empty store for actor.
func NewFeedbackStore(ds datasource.DataSource, actor model.User, opts ...FeedbackOption) *FeedbackStore {
	s := &FeedbackStore{
		ds:    ds,
		actor: actor,
		hub:   pubsub.NewHub[FeedbackSnapshot](subscriberBuffer),
		now:   time.Now,
		items: []model.Feedback{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch replaces the published collection with every item for the actor's hostel.
func (s *FeedbackStore) Fetch(ctx context.Context) ([]model.Feedback, error) {
	s.setLoading(+1)

	items, err := s.ds.LoadFeedback(ctx, s.actor.HostelID)
	if err != nil {
		s.setLoading(-1)
		return nil, err
	}

	s.mu.Lock()
	s.items = cloneFeedback(items)
	s.inflight--
	s.hub.Publish(s.snapshotLocked())
	s.mu.Unlock()

	return cloneFeedback(items), nil
}

// Create records a student's feedback and prepends it once persisted.
func (s *FeedbackStore) Create(ctx context.Context, in FeedbackInput) (model.Feedback, error) {
	const op = "store.CreateFeedback"

	if s.actor.Role != model.RoleStudent {
		return model.Feedback{}, apperr.Forbidden(op, "only students can submit feedback")
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validate.Struct(in); err != nil {
		return model.Feedback{}, validationError(op, err)
	}

	now := s.now()
	f := model.Feedback{
		ID:        uuid.NewString(),
		Category:  in.Category,
		Rating:    in.Rating,
		Comment:   in.Comment,
		UserID:    s.actor.ID,
		HostelID:  s.actor.HostelID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	stored, err := s.ds.PersistFeedback(ctx, f)
	if err != nil {
		return model.Feedback{}, err
	}

	s.mu.Lock()
	s.items = append([]model.Feedback{stored}, s.items...)
	s.hub.Publish(s.snapshotLocked())
	s.mu.Unlock()
	return stored, nil
}

// Resolve attaches a warden's response. Resolving again overwrites the
// previous response. Feedback from another hostel is reported as not found.
func (s *FeedbackStore) Resolve(ctx context.Context, id, response string) (model.Feedback, error) {
	const op = "store.ResolveFeedback"

	if !s.actor.IsWarden() {
		return model.Feedback{}, apperr.Forbidden(op, "only wardens can resolve feedback")
	}
	response = strings.TrimSpace(response)
	if err := validate.Struct(resolveInput{Response: response}); err != nil {
		return model.Feedback{}, validationError(op, err)
	}

	resolved, err := s.ds.PersistFeedbackResolution(ctx, s.actor.HostelID, id, response, s.now())
	if err != nil {
		return model.Feedback{}, err
	}

	s.mu.Lock()
	next := cloneFeedback(s.items)
	for i := range next {
		if next[i].ID == resolved.ID {
			next[i] = resolved
		}
	}
	s.items = next
	s.hub.Publish(s.snapshotLocked())
	s.mu.Unlock()
	return resolved, nil
}

// Get looks an item up in the published collection.
func (s *FeedbackStore) Get(id string) (model.Feedback, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.items {
		if f.ID == id {
			return f, true
		}
	}
	return model.Feedback{}, false
}

// Snapshot returns the current published state.
func (s *FeedbackStore) Snapshot() FeedbackSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe streams every snapshot published after the call until ctx is done.
func (s *FeedbackStore) Subscribe(ctx context.Context) <-chan FeedbackSnapshot {
	return s.hub.Subscribe(ctx)
}

// Close ends all subscriptions.
func (s *FeedbackStore) Close() {
	s.hub.Close()
}

func (s *FeedbackStore) setLoading(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight += delta
	s.hub.Publish(s.snapshotLocked())
}

func (s *FeedbackStore) snapshotLocked() FeedbackSnapshot {
	return FeedbackSnapshot{
		Feedbacks: cloneFeedback(s.items),
		IsLoading: s.inflight > 0,
	}
}

func cloneFeedback(items []model.Feedback) []model.Feedback {
	out := make([]model.Feedback, len(items))
	copy(out, items)
	return out
}
