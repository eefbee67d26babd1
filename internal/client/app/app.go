// Package app is the composition root of the client core. It builds every
// component from a Config once and owns their lifetime; hosts talk to the
// exported fields and the session helpers below.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/marketclient/internal/client/api"
	"github.com/dmitrijs2005/marketclient/internal/client/config"
	"github.com/dmitrijs2005/marketclient/internal/client/credentials"
	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/notifications"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
	"github.com/dmitrijs2005/marketclient/internal/client/realtime"
	"github.com/dmitrijs2005/marketclient/internal/client/repositories"
	"github.com/dmitrijs2005/marketclient/internal/client/repositories/kv"
	"github.com/dmitrijs2005/marketclient/internal/client/services"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
	"github.com/dmitrijs2005/marketclient/internal/filex"
	"github.com/dmitrijs2005/marketclient/internal/logging"
)

// Deps overrides platform collaborators. Zero values select the real ones:
// the OS keyring, net/http and gorilla/websocket.
type Deps struct {
	Secrets credentials.SecretStore
	HTTP    transport.Doer
	Dialer  realtime.Dialer
}

type App struct {
	Config *config.Config

	Credentials   *credentials.Store
	Transport     *transport.Client
	API           api.Client
	Monitor       *offline.Monitor
	Queue         *offline.Queue
	Realtime      *realtime.Channel
	Unread        *notifications.Counter
	Auth          services.AuthService
	Jobs          services.JobService
	Notifications services.NotificationService
	Profiles      services.ProfileService

	db  *sql.DB
	log logging.Logger

	mu            sync.Mutex
	onAuthExpired []func()
}

func New(ctx context.Context, cfg *config.Config, log logging.Logger, deps Deps) (*App, error) {
	path, err := filex.EnsureParentDir(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	db, err := repositories.InitDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	repo := kv.NewSQLiteRepository(db)

	a := &App{Config: cfg, db: db, log: log}
	if err := a.wire(cfg, repo, deps); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(cfg *config.Config, repo kv.Repository, deps Deps) error {
	secrets := deps.Secrets
	if secrets == nil {
		secrets = credentials.Keyring{}
	}
	a.Credentials = credentials.NewStore(secrets, repo, cfg.KeyringService, a.log.With("component", "credentials"))

	tc, err := transport.New(transport.Options{
		BaseURL: cfg.BaseURL(),
		Timeout: cfg.RequestTimeout,
		Policy:  transport.DefaultPolicy{BaseDelay: cfg.RetryBaseDelay, MaxRetries: cfg.MaxRetries},
		HTTP:    deps.HTTP,
	}, a.Credentials, a.log.With("component", "transport"))
	if err != nil {
		return err
	}
	a.Transport = tc
	a.API = api.NewClient(tc)

	a.Monitor = offline.NewMonitor(tc, cfg.OnlineCheckInterval, a.log.With("component", "monitor"))
	a.Queue = offline.NewQueue(repo, tc, a.Monitor, offline.QueueOptions{
		MaxRetries: cfg.MaxQueueRetries,
		DefaultTTL: cfg.CacheTTL,
	}, a.log.With("component", "offline"))
	a.Monitor.OnOnline(a.resume)

	rtURL, err := cfg.RealtimeURL()
	if err != nil {
		return err
	}
	a.Realtime, err = realtime.New(realtime.Options{
		URL:                  rtURL,
		Dialer:               deps.Dialer,
		ReconnectBaseDelay:   cfg.ReconnectBaseDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		HeartbeatInterval:    cfg.HeartbeatInterval,
	}, a.Credentials, a.log.With("component", "realtime"))
	if err != nil {
		return err
	}

	a.Unread = notifications.NewCounter()
	a.Unread.Attach(a.Realtime)

	a.Auth = services.NewAuthService(a.API, a.Credentials, a.log.With("component", "auth"))
	a.Jobs = services.NewJobService(a.API, a.Queue, cfg.CacheTTL)
	a.Notifications = services.NewNotificationService(a.API, a.Queue, a.Unread, cfg.CacheTTL)
	a.Profiles = services.NewProfileService(a.API, a.Queue, cfg.CacheTTL)

	tc.OnAuthExpired(a.authExpired)
	return nil
}

// OnAuthExpired adds fn to the handlers run after the server rejected the
// stored session. Handlers run on the goroutine that made the request.
func (a *App) OnAuthExpired(fn func()) {
	a.mu.Lock()
	a.onAuthExpired = append(a.onAuthExpired, fn)
	a.mu.Unlock()
}

func (a *App) authExpired() {
	ctx := context.Background()
	a.log.Warn(ctx, "session expired")
	a.Realtime.Disconnect()
	a.Unread.Set(0)
	// Cache keys are not scoped per user.
	if err := a.Queue.ClearCache(ctx); err != nil {
		a.log.Error(ctx, "cache not cleared after session expiry", "error", err)
	}

	a.mu.Lock()
	handlers := append([]func(){}, a.onAuthExpired...)
	a.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

// Start brings up background work: connectivity probing until ctx is done,
// and the realtime channel when a session is already stored. Actions queued
// by an earlier run are replayed as soon as the first probe succeeds.
func (a *App) Start(ctx context.Context) {
	go func() {
		if a.Monitor.Check(ctx) {
			a.sync(ctx)
		}
		a.Monitor.Watch(ctx)
	}()
	if a.Credentials.IsAuthenticated(ctx) {
		a.connectRealtime(ctx)
	}
}

// Login authenticates and opens the realtime channel.
func (a *App) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := a.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.connectRealtime(ctx)
	return u, nil
}

func (a *App) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	u, err := a.Auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	a.connectRealtime(ctx)
	return u, nil
}

// Logout closes the realtime channel, ends the session and drops cached
// responses that belonged to it.
func (a *App) Logout(ctx context.Context) error {
	a.Realtime.Disconnect()
	a.Unread.Set(0)
	err := a.Auth.Logout(ctx)
	if cerr := a.Queue.ClearCache(ctx); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func (a *App) connectRealtime(ctx context.Context) {
	if err := a.Realtime.Connect(ctx); err != nil {
		a.log.Warn(ctx, "realtime channel not connected", "error", err)
	}
}

// resume runs when connectivity returns: queued actions are replayed and a
// dropped realtime channel is reopened unless the user closed it.
func (a *App) resume(ctx context.Context) {
	a.sync(ctx)
	a.Realtime.AppStateChanged(ctx, realtime.AppForeground)
}

func (a *App) sync(ctx context.Context) {
	res, err := a.Queue.ProcessSyncQueue(ctx)
	if err != nil {
		a.log.Error(ctx, "offline queue sync failed", "error", err)
		return
	}
	if res.Replayed+res.Failed+res.Dropped > 0 {
		a.log.Info(ctx, "offline queue synced",
			"replayed", res.Replayed, "failed", res.Failed, "dropped", res.Dropped, "pending", res.Pending)
	}
}

// Close stops the realtime channel and closes the database.
func (a *App) Close() error {
	a.Realtime.Disconnect()
	a.Unread.Detach()
	return a.db.Close()
}
