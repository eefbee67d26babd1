package realtime

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/metrics"
)

// On registers h for eventType ("*" receives every event). The returned
// func removes exactly this registration; calling it again is a no-op.
func (c *Channel) On(eventType string, h Handler) func() {
	s := &subscription{fn: h}
	c.hmu.Lock()
	c.handlers[eventType] = append(c.handlers[eventType], s)
	c.hmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.hmu.Lock()
			defer c.hmu.Unlock()
			list := c.handlers[eventType]
			if i := slices.Index(list, s); i >= 0 {
				c.handlers[eventType] = slices.Delete(list, i, i+1)
			}
			if len(c.handlers[eventType]) == 0 {
				delete(c.handlers, eventType)
			}
		})
	}
}

// OnConnectionChange registers fn for connect (true) and disconnect (false)
// transitions.
func (c *Channel) OnConnectionChange(fn func(connected bool)) func() {
	l := &listener{fn: fn}
	c.hmu.Lock()
	c.listeners = append(c.listeners, l)
	c.hmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.hmu.Lock()
			defer c.hmu.Unlock()
			if i := slices.Index(c.listeners, l); i >= 0 {
				c.listeners = slices.Delete(c.listeners, i, i+1)
			}
		})
	}
}

func (c *Channel) dispatch(data []byte) {
	ctx := context.Background()

	var ev models.Event
	if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
		c.log.Warn(ctx, "dropping unreadable realtime frame", "error", err, "size", len(data))
		return
	}
	metrics.RealtimeFrames.WithLabelValues(ev.Type).Inc()

	c.hmu.RLock()
	subs := slices.Clone(c.handlers[ev.Type])
	if ev.Type != models.EventWildcard {
		subs = append(subs, c.handlers[models.EventWildcard]...)
	}
	c.hmu.RUnlock()

	for _, s := range subs {
		c.invoke(ctx, ev, s)
	}
}

func (c *Channel) invoke(ctx context.Context, ev models.Event, s *subscription) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(ctx, "realtime handler panicked", "type", ev.Type, "panic", r)
		}
	}()
	s.fn(ev)
}

func (c *Channel) notify(connected bool) {
	c.hmu.RLock()
	ls := slices.Clone(c.listeners)
	c.hmu.RUnlock()

	for _, l := range ls {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.log.Error(context.Background(), "connection listener panicked", "panic", r)
				}
			}()
			l.fn(connected)
		}()
	}
}
