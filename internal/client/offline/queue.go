package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/repositories/kv"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/dmitrijs2005/marketclient/internal/metrics"
	"github.com/dmitrijs2005/marketclient/internal/timex"
	"github.com/google/uuid"
)

const (
	KeyQueue    = "@offline_queue"
	CachePrefix = "@cache_"

	DefaultMaxRetries = 3
	DefaultCacheTTL   = 24 * time.Hour
)

// Sender performs one backend call. *transport.Client satisfies it.
type Sender interface {
	Do(ctx context.Context, r transport.Request, out any) error
}

// Connectivity reports whether the backend is believed reachable.
type Connectivity interface {
	Online() bool
}

// DropHandler observes an action removed after its last failed replay.
type DropHandler func(req models.OutboundRequest, lastErr error)

type QueueOptions struct {
	MaxRetries int
	DefaultTTL time.Duration
	Clock      timex.Clock
}

// SyncResult summarizes one ProcessSyncQueue pass.
type SyncResult struct {
	Replayed int
	Failed   int
	Dropped  int
	Pending  int
}

type Queue struct {
	kv         kv.Repository
	sender     Sender
	conn       Connectivity
	clock      timex.Clock
	log        logging.Logger
	maxRetries int
	defaultTTL time.Duration

	mu      sync.Mutex
	items   []models.OutboundRequest
	loaded  bool
	syncing bool
	onDrop  DropHandler
}

// NewQueue builds a queue over repo. A nil conn is treated as always online.
func NewQueue(repo kv.Repository, sender Sender, conn Connectivity, opts QueueOptions, log logging.Logger) *Queue {
	q := &Queue{
		kv:         repo,
		sender:     sender,
		conn:       conn,
		clock:      opts.Clock,
		log:        log,
		maxRetries: opts.MaxRetries,
		defaultTTL: opts.DefaultTTL,
	}
	if q.clock == nil {
		q.clock = timex.RealClock{}
	}
	if q.maxRetries <= 0 {
		q.maxRetries = DefaultMaxRetries
	}
	if q.defaultTTL <= 0 {
		q.defaultTTL = DefaultCacheTTL
	}
	return q
}

// OnDrop replaces the drop handler.
func (q *Queue) OnDrop(fn DropHandler) {
	q.mu.Lock()
	q.onDrop = fn
	q.mu.Unlock()
}

func (q *Queue) online() bool {
	return q.conn == nil || q.conn.Online()
}

// QueueAction appends a call to the queue and persists the whole queue
// before returning.
func (q *Queue) QueueAction(ctx context.Context, endpoint, method string, payload any) (models.OutboundRequest, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return models.OutboundRequest{}, fmt.Errorf("encode queued payload: %w", err)
	}
	return q.enqueue(ctx, endpoint, method, raw)
}

func (q *Queue) enqueue(ctx context.Context, endpoint, method string, raw json.RawMessage) (models.OutboundRequest, error) {
	req := models.OutboundRequest{
		ID:         uuid.NewString(),
		Endpoint:   endpoint,
		Method:     method,
		Payload:    raw,
		EnqueuedAt: q.clock.Now().UTC(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.loadLocked(ctx); err != nil {
		return models.OutboundRequest{}, err
	}
	q.items = append(q.items, req)
	if err := q.persistLocked(ctx); err != nil {
		q.items = q.items[:len(q.items)-1]
		return models.OutboundRequest{}, err
	}

	metrics.QueueEnqueued.Inc()
	q.log.Info(ctx, "action queued", "id", req.ID, "method", method, "endpoint", endpoint)
	return req, nil
}

// Pending returns a copy of the queued actions in replay order.
func (q *Queue) Pending(ctx context.Context) ([]models.OutboundRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.loadLocked(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(q.items), nil
}

// ProcessSyncQueue replays queued actions in enqueue order. It does nothing
// when offline, when the queue is empty or when another pass is running.
// A failed replay increments the action's RetryCount; at MaxRetries the
// action is dropped. Actions queued during a pass wait for the next one.
func (q *Queue) ProcessSyncQueue(ctx context.Context) (res SyncResult, err error) {
	if !q.online() {
		return res, nil
	}

	q.mu.Lock()
	if q.syncing {
		q.mu.Unlock()
		return res, nil
	}
	if err := q.loadLocked(ctx); err != nil {
		q.mu.Unlock()
		return res, err
	}
	if len(q.items) == 0 {
		q.mu.Unlock()
		return res, nil
	}
	q.syncing = true
	batch := slices.Clone(q.items)
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.syncing = false
		res.Pending = len(q.items)
		q.mu.Unlock()
	}()

	for _, item := range batch {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		sendErr := q.sender.Do(ctx, replayRequest(item), nil)
		if sendErr != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}

		dropped, err := q.settle(ctx, item, sendErr)
		switch {
		case sendErr == nil:
			res.Replayed++
			metrics.QueueReplayed.Inc()
			q.log.Info(ctx, "queued action replayed", "id", item.ID, "endpoint", item.Endpoint)
		case dropped != nil:
			res.Dropped++
			q.drop(ctx, *dropped, sendErr)
		default:
			res.Failed++
			q.log.Warn(ctx, "queued action replay failed", "id", item.ID, "endpoint", item.Endpoint, "error", sendErr)
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// settle applies one replay outcome to the live queue and persists it.
// It returns the dropped action when the failure exhausted its retries.
func (q *Queue) settle(ctx context.Context, item models.OutboundRequest, sendErr error) (*models.OutboundRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.items, func(r models.OutboundRequest) bool { return r.ID == item.ID })
	if i < 0 {
		return nil, nil
	}

	var dropped *models.OutboundRequest
	if sendErr == nil {
		q.items = slices.Delete(q.items, i, i+1)
	} else {
		q.items[i].RetryCount++
		if q.items[i].RetryCount >= q.maxRetries {
			d := q.items[i]
			dropped = &d
			q.items = slices.Delete(q.items, i, i+1)
		}
	}
	return dropped, q.persistLocked(ctx)
}

func (q *Queue) drop(ctx context.Context, req models.OutboundRequest, lastErr error) {
	metrics.QueueDropped.Inc()
	q.log.Warn(ctx, "queued action dropped after max retries",
		"id", req.ID, "method", req.Method, "endpoint", req.Endpoint, "retries", req.RetryCount, "error", lastErr)

	q.mu.Lock()
	fn := q.onDrop
	q.mu.Unlock()
	if fn != nil {
		fn(req, lastErr)
	}
}

// Submit sends a mutating call now, or queues it when there is no
// connection. A queued call returns an error matching ErrQueued.
func (q *Queue) Submit(ctx context.Context, endpoint, method string, payload any, out any) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	if !q.online() {
		if _, err := q.enqueue(ctx, endpoint, method, raw); err != nil {
			return err
		}
		return ErrQueued
	}

	err = q.sender.Do(ctx, transport.Request{Method: method, Path: endpoint, Body: raw, RequireAuth: true}, out)
	if err == nil || !errors.Is(err, transport.ErrUnavailable) {
		return err
	}
	if _, qerr := q.enqueue(ctx, endpoint, method, raw); qerr != nil {
		return errors.Join(err, qerr)
	}
	return fmt.Errorf("%w: %w", ErrQueued, err)
}

func (q *Queue) loadLocked(ctx context.Context) error {
	if q.loaded {
		return nil
	}
	raw, err := q.kv.Get(ctx, KeyQueue)
	if err != nil {
		return fmt.Errorf("load offline queue: %w", err)
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &q.items); err != nil {
			// A corrupt queue cannot be replayed safely; start over.
			q.log.Error(ctx, "discarding unreadable offline queue", "error", err)
			q.items = nil
		}
	}
	q.loaded = true
	metrics.QueueDepth.Set(float64(len(q.items)))
	return nil
}

func (q *Queue) persistLocked(ctx context.Context) error {
	items := q.items
	if items == nil {
		items = []models.OutboundRequest{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode offline queue: %w", err)
	}
	if err := q.kv.Set(ctx, KeyQueue, raw); err != nil {
		return fmt.Errorf("persist offline queue: %w", err)
	}
	metrics.QueueDepth.Set(float64(len(q.items)))
	return nil
}

func replayRequest(r models.OutboundRequest) transport.Request {
	req := transport.Request{Method: r.Method, Path: r.Endpoint, RequireAuth: true}
	if len(r.Payload) > 0 {
		req.Body = r.Payload
	}
	return req
}

func marshalPayload(v any) (json.RawMessage, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	}
	return json.Marshal(v)
}
