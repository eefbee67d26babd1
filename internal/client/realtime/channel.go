package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/dmitrijs2005/marketclient/internal/metrics"
	"github.com/gorilla/websocket"
)

const (
	DefaultReconnectBaseDelay   = 3 * time.Second
	DefaultMaxReconnectAttempts = 5
	DefaultHeartbeatInterval    = 30 * time.Second
	DefaultHandshakeTimeout     = 10 * time.Second

	writeTimeout = 5 * time.Second
)

var (
	ErrNoToken      = errors.New("realtime: no auth token")
	ErrNotConnected = errors.New("realtime: not connected")
)

// TokenSource yields the current auth token, "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Handler receives one inbound event.
type Handler = func(ev models.Event)

type AppState int

const (
	AppForeground AppState = iota
	AppBackground
)

type Options struct {
	// URL of the notifications endpoint, e.g. wss://host/ws/notifications/.
	URL                  string
	Dialer               Dialer
	ReconnectBaseDelay   time.Duration
	MaxReconnectAttempts int
	HeartbeatInterval    time.Duration
	HandshakeTimeout     time.Duration
}

type stopper interface {
	Stop() bool
}

type subscription struct {
	fn Handler
}

type listener struct {
	fn func(connected bool)
}

type Channel struct {
	url         string
	dialer      Dialer
	tokens      TokenSource
	log         logging.Logger
	baseDelay   time.Duration
	maxAttempts int
	heartbeat   time.Duration
	handshake   time.Duration
	afterFunc   func(d time.Duration, f func()) stopper

	mu       sync.Mutex
	state    models.ConnectionState
	conn     Conn
	gen      uint64
	manual   bool
	attempts int
	timer    stopper
	hbStop   chan struct{}

	writeMu sync.Mutex

	hmu       sync.RWMutex
	handlers  map[string][]*subscription
	listeners []*listener
}

func New(opts Options, tokens TokenSource, log logging.Logger) (*Channel, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("realtime url %q: scheme must be ws or wss", opts.URL)
	}

	c := &Channel{
		url:         opts.URL,
		dialer:      opts.Dialer,
		tokens:      tokens,
		log:         log,
		baseDelay:   opts.ReconnectBaseDelay,
		maxAttempts: opts.MaxReconnectAttempts,
		heartbeat:   opts.HeartbeatInterval,
		handshake:   opts.HandshakeTimeout,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		handlers: make(map[string][]*subscription),
	}
	if c.dialer == nil {
		c.dialer = WebsocketDialer{}
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultReconnectBaseDelay
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxReconnectAttempts
	}
	if c.heartbeat <= 0 {
		c.heartbeat = DefaultHeartbeatInterval
	}
	if c.handshake <= 0 {
		c.handshake = DefaultHandshakeTimeout
	}
	return c, nil
}

func (c *Channel) State() models.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the channel and clears a previous Disconnect. It is a no-op
// while a connection is open or being opened.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.manual = false
	c.attempts = 0
	c.mu.Unlock()
	return c.connect(ctx)
}

// connect honours the manual flag; it backs both reconnect timers and
// foreground transitions.
func (c *Channel) connect(ctx context.Context) error {
	c.mu.Lock()
	if c.manual || c.state != models.StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.stopTimerLocked()
	c.state = models.StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	token, err := c.tokens.Token(ctx)
	if err == nil && token == "" {
		err = ErrNoToken
	}
	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state = models.StateDisconnected
		}
		c.mu.Unlock()
		return err
	}

	dctx, cancel := context.WithTimeout(ctx, c.handshake)
	conn, err := c.dialer.DialContext(dctx, c.endpoint(token), nil)
	cancel()
	if err != nil {
		c.log.Warn(ctx, "realtime connect failed", "error", err)
		c.closed(gen, nil)
		return err
	}

	c.mu.Lock()
	if c.gen != gen || c.manual {
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	c.conn = conn
	c.state = models.StateConnected
	c.attempts = 0
	c.hbStop = make(chan struct{})
	go c.heartbeatLoop(conn, c.hbStop)
	c.mu.Unlock()

	metrics.RealtimeConnected.Set(1)
	c.log.Info(ctx, "realtime connected")
	c.notify(true)

	go c.readLoop(gen, conn)
	return nil
}

func (c *Channel) endpoint(token string) string {
	u, _ := url.Parse(c.url)
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Disconnect closes the channel and keeps it closed until Connect.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.manual = true
	c.gen++
	c.stopTimerLocked()
	c.stopHeartbeatLocked()
	conn := c.conn
	c.conn = nil
	c.state = models.StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = conn.Close()
	}
	metrics.RealtimeConnected.Set(0)
	c.log.Info(context.Background(), "realtime disconnected")
	c.notify(false)
}

// AppStateChanged reacts to the host application moving between foreground
// and background. Coming to the foreground reconnects when a user is signed
// in and the channel is down.
func (c *Channel) AppStateChanged(ctx context.Context, s AppState) {
	if s != AppForeground || c.State() != models.StateDisconnected {
		return
	}
	token, err := c.tokens.Token(ctx)
	if err != nil || token == "" {
		return
	}
	if err := c.connect(ctx); err != nil {
		c.log.Debug(ctx, "foreground reconnect failed", "error", err)
	}
}

// Send writes one event frame.
func (c *Channel) Send(ctx context.Context, eventType string, data any) error {
	ev := models.Event{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", eventType, err)
		}
		ev.Data = raw
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return c.write(conn, ev, deadline)
}

func (c *Channel) write(conn Conn, ev models.Event, deadline time.Time) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(deadline)
	return conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Channel) readLoop(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.closed(gen, err)
			return
		}
		c.dispatch(data)
	}
}

// closed handles the end of connection attempt gen, whether the dial failed
// or an open connection dropped.
func (c *Channel) closed(gen uint64, cause error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.state = models.StateDisconnected
	c.stopHeartbeatLocked()

	var delay time.Duration
	if !c.manual && c.attempts < c.maxAttempts {
		c.attempts++
		delay = c.baseDelay * time.Duration(min(c.attempts, DefaultMaxReconnectAttempts))
		c.timer = c.afterFunc(delay, c.reconnect)
	}
	attempt := c.attempts
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	ctx := context.Background()
	metrics.RealtimeConnected.Set(0)
	if cause != nil {
		c.log.Warn(ctx, "realtime connection closed", "error", cause)
	}
	if delay > 0 {
		metrics.RealtimeReconnects.Inc()
		c.log.Info(ctx, "realtime reconnect scheduled", "attempt", attempt, "delay", delay)
	}
	c.notify(false)
}

func (c *Channel) reconnect() {
	c.mu.Lock()
	c.timer = nil
	c.mu.Unlock()
	_ = c.connect(context.Background())
}

func (c *Channel) heartbeatLoop(conn Conn, stop <-chan struct{}) {
	t := time.NewTicker(c.heartbeat)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := c.write(conn, models.Event{Type: models.EventPing}, time.Now().Add(writeTimeout)); err != nil {
				c.log.Debug(context.Background(), "heartbeat failed", "error", err)
			}
		}
	}
}

func (c *Channel) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Channel) stopHeartbeatLocked() {
	if c.hbStop != nil {
		close(c.hbStop)
		c.hbStop = nil
	}
}
