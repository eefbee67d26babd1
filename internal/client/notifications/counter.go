// Package notifications aggregates the unread-notification count from
// realtime events.
package notifications

import (
	"sync"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
)

// Subscriber is the part of the realtime channel the counter listens on.
type Subscriber interface {
	On(eventType string, h func(models.Event)) func()
}

// Counter owns the unread count. A new notification adds one, a read
// notification removes one (never below zero) and a clear resets it.
type Counter struct {
	mu        sync.Mutex
	unread    int
	listeners []func(int)
	unsub     []func()
}

func NewCounter() *Counter {
	return &Counter{}
}

// Attach subscribes the counter to s. Detach undoes it.
func (c *Counter) Attach(s Subscriber) {
	unsub := []func(){
		s.On(models.EventNotification, func(models.Event) { c.add(1) }),
		s.On(models.EventNotificationRead, func(models.Event) { c.add(-1) }),
		s.On(models.EventNotificationsCleared, func(models.Event) { c.Set(0) }),
	}
	c.mu.Lock()
	c.unsub = append(c.unsub, unsub...)
	c.mu.Unlock()
}

func (c *Counter) Detach() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	for _, fn := range unsub {
		fn()
	}
}

func (c *Counter) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Set seeds the count, typically from NotificationList.UnreadCount.
func (c *Counter) Set(n int) {
	c.update(func(int) int { return max(n, 0) })
}

// OnChange registers fn for every change of the count.
func (c *Counter) OnChange(fn func(unread int)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Counter) add(delta int) {
	c.update(func(n int) int { return max(n+delta, 0) })
}

func (c *Counter) update(f func(int) int) {
	c.mu.Lock()
	prev := c.unread
	c.unread = f(prev)
	n := c.unread
	listeners := append([]func(int){}, c.listeners...)
	c.mu.Unlock()

	if n == prev {
		return
	}
	for _, fn := range listeners {
		fn(n)
	}
}
