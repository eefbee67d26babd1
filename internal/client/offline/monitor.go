package offline

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/logging"
)

const (
	DefaultCheckInterval = 3 * time.Second
	probeTimeout         = 3 * time.Second
)

// Pinger is a single reachability probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks whether the backend is reachable. It starts online.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	mu        sync.Mutex
	online    bool
	listeners []func(online bool)
	onOnline  func(ctx context.Context)
}

func NewMonitor(p Pinger, interval time.Duration, log logging.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Monitor{pinger: p, interval: interval, log: log, online: true}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnOnline sets the handler run once per offline to online transition,
// typically Queue.ProcessSyncQueue.
func (m *Monitor) OnOnline(fn func(ctx context.Context)) {
	m.mu.Lock()
	m.onOnline = fn
	m.mu.Unlock()
}

// OnChange adds a listener called on every transition.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// SetOnline records a reachability report. Repeated reports of the same
// state are ignored.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := append([]func(bool){}, m.listeners...)
	onOnline := m.onOnline
	m.mu.Unlock()

	if online {
		m.log.Info(ctx, "backend reachable, switched to online mode")
	} else {
		m.log.Warn(ctx, "backend unreachable, switched to offline mode")
	}
	for _, fn := range listeners {
		fn(online)
	}
	if online && onOnline != nil {
		onOnline(ctx)
	}
}

// Check probes once and records the outcome.
func (m *Monitor) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.pinger.Ping(pctx)
	cancel()
	if ctx.Err() != nil {
		return m.Online()
	}
	if err != nil {
		m.log.Debug(ctx, "reachability probe failed", "error", err)
	}
	m.SetOnline(ctx, err == nil)
	return err == nil
}

// Watch probes every interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
