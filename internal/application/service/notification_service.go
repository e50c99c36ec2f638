package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/mrsl-intake/internal/application/dispatcher"
	"github.com/garyjia/mrsl-intake/internal/domain/event"
)

// DefaultFeedCapacity bounds the number of undelivered notifications kept
const DefaultFeedCapacity = 20

// Notification is a transient message for the user
type Notification struct {
	ID        string      `json:"id"`
	Level     event.Level `json:"level"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// NotificationService collects user-facing outcomes from session events
type NotificationService interface {
	// Drain returns pending notifications oldest first and forgets them
	Drain() []Notification

	// Latest returns the most recent notification, delivered or not
	Latest() (Notification, bool)
}

type notificationFeed struct {
	mu       sync.Mutex
	pending  []Notification
	latest   *Notification
	capacity int
}

// NewNotificationService subscribes a feed to the dispatcher
func NewNotificationService(events dispatcher.Dispatcher, capacity int) NotificationService {
	if capacity <= 0 {
		capacity = DefaultFeedCapacity
	}
	feed := &notificationFeed{capacity: capacity}
	events.SubscribeNamed(dispatcher.AllEvents, "notification-feed", feed.handle)
	return feed
}

func (f *notificationFeed) handle(_ context.Context, evt *event.Event) error {
	if !evt.Type.IsNotification() || evt.Message == "" {
		return nil
	}
	n := Notification{
		ID:        evt.ID,
		Level:     evt.Level,
		Message:   evt.Message,
		Timestamp: evt.Timestamp,
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, n)
	if len(f.pending) > f.capacity {
		f.pending = f.pending[len(f.pending)-f.capacity:]
	}
	f.latest = &n
	return nil
}

func (f *notificationFeed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.pending
	f.pending = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

func (f *notificationFeed) Latest() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.latest == nil {
		return Notification{}, false
	}
	return *f.latest, true
}
