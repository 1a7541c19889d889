// Package refresh periodically reloads the stores of every live session so
// published snapshots pick up changes made by other actors.
package refresh

import (
	"context"
	"log"
	"time"

	"hostel-dashboard-backend/config"
	"hostel-dashboard-backend/internal/session"
)

// Sessions enumerates live sessions.
type Sessions interface {
	Each(fn func(*session.Session))
}

// Result summarises one refresh cycle.
type Result struct {
	Sessions int
	Failures int
}

// Service drives the refresh loop.
type Service struct {
	cfg      *config.RefreshConfig
	sessions Sessions
}

// NewService creates a refresher over sessions.
func NewService(cfg *config.RefreshConfig, sessions Sessions) *Service {
	return &Service{cfg: cfg, sessions: sessions}
}

// Run refreshes immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Refresher is disabled. Not starting.")
		return
	}
	log.Println("Starting refresher service...")

	s.RefreshOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Refresher service shutting down.")
			return
		case <-timer.C:
			s.RefreshOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// RefreshOnce re-fetches every session's notifications, using the filter of
// its last fetch, and its feedback. Errors are logged and do not stop the
// cycle.
func (s *Service) RefreshOnce(ctx context.Context) Result {
	var res Result

	var live []*session.Session
	s.sessions.Each(func(sess *session.Session) { live = append(live, sess) })

	for _, sess := range live {
		if ctx.Err() != nil {
			break
		}
		res.Sessions++
		user := sess.User()

		if _, err := sess.Notifications.Fetch(ctx, sess.Notifications.LastFilter()); err != nil {
			log.Printf("Error refreshing notifications for user %s: %v", user.ID, err)
			res.Failures++
		}
		if _, err := sess.Feedback.Fetch(ctx); err != nil {
			log.Printf("Error refreshing feedback for user %s: %v", user.ID, err)
			res.Failures++
		}
	}

	if res.Sessions > 0 {
		log.Printf("Refresh cycle finished: %d sessions, %d failures", res.Sessions, res.Failures)
	}
	return res
}
