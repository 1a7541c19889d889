// Package session keeps track of logged-in actors and the stores they own.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/datasource"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/store"
)

var validate = validator.New()

// Session is one authenticated actor together with its notification and
// feedback stores.
type Session struct {
	Token         string
	Notifications *store.NotificationStore
	Feedback      *store.FeedbackStore
	CreatedAt     time.Time

	mu   sync.RWMutex
	user model.User
}

// User returns the current profile of the session's actor.
func (s *Session) User() model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) close() {
	s.Notifications.Close()
	s.Feedback.Close()
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotificationOptions passes opts to every notification store the
// manager creates.
func WithNotificationOptions(opts ...store.NotificationOption) Option {
	return func(m *Manager) { m.notificationOpts = append(m.notificationOpts, opts...) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager issues bearer tokens and expires idle sessions.
type Manager struct {
	users            datasource.UserDirectory
	ds               datasource.DataSource
	sessions         *cache.Cache
	ttl              time.Duration
	now              func() time.Time
	notificationOpts []store.NotificationOption
}

// NewManager creates a manager whose sessions live for ttl.
func NewManager(users datasource.UserDirectory, ds datasource.DataSource, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		users:    users,
		ds:       ds,
		sessions: cache.New(ttl, ttl/2+time.Minute),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sessions.OnEvicted(func(_ string, v any) {
		v.(*Session).close()
	})
	return m
}

type loginInput struct {
	Email string `validate:"required,email"`
}

// Login opens a session for the user registered under email.
func (m *Manager) Login(ctx context.Context, email string) (*Session, error) {
	const op = "session.Login"

	email = strings.TrimSpace(email)
	if err := validate.Struct(loginInput{Email: email}); err != nil {
		return nil, apperr.Validation(op, "a valid email is required")
	}

	user, err := m.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized(op, "no account for %s", email)
		}
		return nil, err
	}

	notificationOpts := append([]store.NotificationOption{store.WithClock(m.now)}, m.notificationOpts...)
	s := &Session{
		Token:         uuid.NewString(),
		Notifications: store.NewNotificationStore(m.ds, user, notificationOpts...),
		Feedback:      store.NewFeedbackStore(m.ds, user, store.WithFeedbackClock(m.now)),
		CreatedAt:     m.now(),
		user:          user,
	}
	m.sessions.Set(s.Token, s, cache.DefaultExpiration)
	return s, nil
}

// Get resolves a bearer token.
func (m *Manager) Get(token string) (*Session, bool) {
	v, ok := m.sessions.Get(token)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Logout ends the session and closes its stores. Unknown tokens are ignored.
func (m *Manager) Logout(token string) {
	m.sessions.Delete(token)
}

type profileInput struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

// UpdateProfile changes the name and email of the session's actor. The
// stores keep the identity they were created with; only display fields
// change.
func (m *Manager) UpdateProfile(ctx context.Context, token, name, email string) (model.User, error) {
	const op = "session.UpdateProfile"

	s, ok := m.Get(token)
	if !ok {
		return model.User{}, apperr.Unauthorized(op, "session expired")
	}

	in := profileInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := validate.Struct(in); err != nil {
		return model.User{}, apperr.Validation(op, "name and a valid email are required")
	}

	updated, err := m.users.UpdateUser(ctx, s.User().WithProfile(in.Name, in.Email, m.now()))
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()
	return updated, nil
}

// Each calls fn for every live session.
func (m *Manager) Each(fn func(*Session)) {
	for _, item := range m.sessions.Items() {
		fn(item.Object.(*Session))
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}
