package services

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/api"
	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/notifications"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
)

const notificationsCacheKey = "notifications"

// NotificationService lists notifications and keeps the unread counter
// seeded from the server's count.
type NotificationService interface {
	List(ctx context.Context) (*models.NotificationList, error)
	MarkRead(ctx context.Context, id int64) error
	Unread() int
}

type notificationService struct {
	api      api.Client
	queue    *offline.Queue
	counter  *notifications.Counter
	cacheTTL time.Duration
}

func NewNotificationService(client api.Client, queue *offline.Queue, counter *notifications.Counter, cacheTTL time.Duration) NotificationService {
	return &notificationService{api: client, queue: queue, counter: counter, cacheTTL: cacheTTL}
}

func (s *notificationService) List(ctx context.Context) (*models.NotificationList, error) {
	list, err := offline.WithOfflineSupport(ctx, s.queue, notificationsCacheKey,
		s.api.Notifications,
		offline.Options[*models.NotificationList]{Cache: true, CacheExpiry: s.cacheTTL})
	if err != nil {
		return nil, err
	}
	s.counter.Set(list.UnreadCount)
	return list, nil
}

// MarkRead marks a notification read on the server, queuing the change when
// offline. The counter follows the server's notification_read event.
func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	return s.queue.Submit(ctx, api.NotificationPath(id), http.MethodPatch, models.MarkReadRequest{IsRead: true}, nil)
}

func (s *notificationService) Unread() int {
	return s.counter.Unread()
}
