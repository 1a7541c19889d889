package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hostel-dashboard-backend/internal/model"
)

// queueDepthPerWorker bounds how many notifications may wait for a free worker.
const queueDepthPerWorker = 16

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Payload is the JSON body delivered to the service worker.
type Payload struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Category model.Category `json:"category"`
	Priority model.Priority `json:"priority"`
}

// WorkerPool fans newly created notifications out to the push subscriptions
// of the notification's hostel.
type WorkerPool struct {
	size    int
	jobs    chan model.Notification
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.Notification, size*queueDepthPerWorker),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Push worker %d started", id)
	for {
		select {
		case n := <-wp.jobs:
			log.Printf("Push worker %d processing notification %s", id, n.ID)
			wp.sendNotificationsForHostel(ctx, n)
		case <-ctx.Done():
			log.Printf("Push worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues n for delivery. It never blocks the caller; when the
// queue is full the notification is logged and skipped.
func (wp *WorkerPool) Dispatch(n model.Notification) {
	select {
	case wp.jobs <- n:
	default:
		log.Printf("Push queue full, dropping notification %s", n.ID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.Notification {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForHostel(ctx context.Context, n model.Notification) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("hostel_id = ? AND user_id <> ?", n.HostelID, n.CreatedByID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for hostel %s: %v", n.HostelID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(Payload{ID: n.ID, Title: n.Title, Category: n.Category, Priority: n.Priority})
	if err != nil {
		log.Printf("Error encoding push payload for notification %s: %v", n.ID, err)
		return
	}

	log.Printf("Sending %d push messages for notification %s", len(subscriptions), n.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
