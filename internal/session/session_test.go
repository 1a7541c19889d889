package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/datasource"
	"hostel-dashboard-backend/internal/query"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newManager(t *testing.T, ttl time.Duration) (*Manager, *datasource.MemorySource) {
	t.Helper()
	src := datasource.NewMemorySource(datasource.DemoFixtures(now))
	return NewManager(src, src, ttl, WithClock(func() time.Time { return now })), src
}

func TestManager_LoginAndGet(t *testing.T) {
	m, _ := newManager(t, time.Hour)
	ctx := context.Background()

	s, err := m.Login(ctx, " Student@Example.com ")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "student-1", s.User().ID)
	assert.Equal(t, now, s.CreatedAt)

	got, ok := m.Get(s.Token)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Count())

	_, err = got.Notifications.Fetch(ctx, query.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Notifications.UnreadCount())
}

func TestManager_LoginRejected(t *testing.T) {
	m, src := newManager(t, time.Hour)
	ctx := context.Background()

	_, err := m.Login(ctx, "not-an-email")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = m.Login(ctx, "stranger@example.com")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	src.FailNext(datasource.OpFindUserByEmail, apperr.Unavailable("test", errors.New("down")))
	_, err = m.Login(ctx, "student@example.com")
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))

	assert.Zero(t, m.Count())
}

func TestManager_Logout(t *testing.T) {
	m, _ := newManager(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := m.Login(ctx, "warden@example.com")
	require.NoError(t, err)
	sub := s.Notifications.Subscribe(ctx)

	m.Logout(s.Token)
	_, ok := m.Get(s.Token)
	assert.False(t, ok)

	select {
	case _, open := <-sub:
		assert.False(t, open, "stores are closed on logout")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	m.Logout("unknown")
}

func TestManager_Expiry(t *testing.T) {
	m, _ := newManager(t, 50*time.Millisecond)

	s, err := m.Login(context.Background(), "student@example.com")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := m.Get(s.Token)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestManager_UpdateProfile(t *testing.T) {
	m, src := newManager(t, time.Hour)
	ctx := context.Background()

	s, err := m.Login(ctx, "student@example.com")
	require.NoError(t, err)

	u, err := m.UpdateProfile(ctx, s.Token, "Johnny Doe", "johnny@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", u.Name)
	assert.Equal(t, "Johnny Doe", s.User().Name)

	stored, err := src.FindUser(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, "johnny@example.com", stored.Email)

	_, err = m.UpdateProfile(ctx, s.Token, "", "johnny@example.com")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = m.UpdateProfile(ctx, s.Token, "Johnny", "nope")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = m.UpdateProfile(ctx, "bogus", "Johnny", "johnny@example.com")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestManager_Each(t *testing.T) {
	m, _ := newManager(t, time.Hour)
	ctx := context.Background()

	_, err := m.Login(ctx, "student@example.com")
	require.NoError(t, err)
	_, err = m.Login(ctx, "warden@example.com")
	require.NoError(t, err)

	roles := map[string]bool{}
	m.Each(func(s *Session) { roles[string(s.User().Role)] = true })
	assert.Equal(t, map[string]bool{"student": true, "warden": true}, roles)
}
