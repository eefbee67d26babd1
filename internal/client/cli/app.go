package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"

	"github.com/dmitrijs2005/marketclient/internal/client/app"
	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
	"github.com/dmitrijs2005/marketclient/internal/client/services"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// session is the part of the client core that changes who is signed in.
// *app.App satisfies it.
type session interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
}

type syncQueue interface {
	ProcessSyncQueue(ctx context.Context) (offline.SyncResult, error)
	Pending(ctx context.Context) ([]models.OutboundRequest, error)
}

type App struct {
	session       session
	auth          services.AuthService
	jobs          services.JobService
	notifications services.NotificationService
	profiles      services.ProfileService
	queue         syncQueue
	start         func(ctx context.Context)
	realtime      func() models.ConnectionState

	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	userName string
	Mode     Mode
}

// NewApp wraps an assembled client core. Connectivity changes reported by
// the core are reflected in the prompt.
func NewApp(core *app.App) *App {
	a := &App{
		session:       core,
		auth:          core.Auth,
		jobs:          core.Jobs,
		notifications: core.Notifications,
		profiles:      core.Profiles,
		queue:         core.Queue,
		start:         core.Start,
		realtime:      core.Realtime.State,
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
		Mode:          ModeOnline,
	}
	core.Monitor.OnChange(func(online bool) {
		if online {
			a.setMode(ModeOnline)
		} else {
			a.setMode(ModeOffline)
		}
	})
	core.Unread.OnChange(func(n int) {
		log.Printf("Unread notifications: %d\n", n)
	})
	core.OnAuthExpired(func() {
		a.setUser("")
		log.Printf("Session expired, please log in again")
	})
	return a
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

func (a *App) user() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName
}

func (a *App) isLoggedIn() bool {
	return a.user() != ""
}

// Run restores a stored session, if any, and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	if u, err := a.auth.CurrentUser(ctx); err == nil && u != nil && a.auth.IsAuthenticated(ctx) {
		a.setUser(u.Email)
	}
	if a.start != nil {
		a.start(ctx)
	}
	a.Root(ctx)
}
