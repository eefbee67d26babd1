package notifications

import (
	"testing"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/realtime"
	"github.com/stretchr/testify/assert"
)

var _ Subscriber = (*realtime.Channel)(nil)

type fakeBus struct {
	handlers map[string][]func(models.Event)
	removed  int
}

func (b *fakeBus) On(eventType string, h func(models.Event)) func() {
	if b.handlers == nil {
		b.handlers = map[string][]func(models.Event){}
	}
	b.handlers[eventType] = append(b.handlers[eventType], h)
	i := len(b.handlers[eventType]) - 1
	return func() {
		b.handlers[eventType][i] = nil
		b.removed++
	}
}

func (b *fakeBus) emit(eventType string) {
	for _, h := range b.handlers[eventType] {
		if h != nil {
			h(models.Event{Type: eventType})
		}
	}
}

func TestCounter(t *testing.T) {
	bus := &fakeBus{}
	c := NewCounter()
	c.Attach(bus)

	var seen []int
	c.OnChange(func(n int) { seen = append(seen, n) })

	c.Set(2)
	bus.emit(models.EventNotification)
	bus.emit(models.EventNotificationRead)
	bus.emit(models.EventNotificationRead)
	bus.emit(models.EventNotificationRead)
	bus.emit(models.EventNotificationRead)
	assert.Equal(t, 0, c.Unread(), "never below zero")

	bus.emit(models.EventNotification)
	bus.emit(models.EventNotification)
	bus.emit(models.EventNotificationsCleared)
	assert.Equal(t, 0, c.Unread())

	assert.Equal(t, []int{2, 3, 2, 1, 0, 1, 2, 0}, seen)
}

func TestCounter_SetClampsNegative(t *testing.T) {
	c := NewCounter()
	c.Set(-4)
	assert.Equal(t, 0, c.Unread())
}

func TestCounter_Detach(t *testing.T) {
	bus := &fakeBus{}
	c := NewCounter()
	c.Attach(bus)
	c.Detach()
	assert.Equal(t, 3, bus.removed)

	bus.emit(models.EventNotification)
	assert.Equal(t, 0, c.Unread())
}
