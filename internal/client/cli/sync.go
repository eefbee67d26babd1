package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
)

// Sync replays the offline queue now instead of waiting for reconnect.
func (a *App) Sync(ctx context.Context) error {
	if a.mode() == ModeOffline {
		printlnFn("Still offline, queued actions will be sent when the connection is back")
		return nil
	}
	res, err := a.queue.ProcessSyncQueue(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Sent %d, failed %d, dropped %d, pending %d", res.Replayed, res.Failed, res.Dropped, res.Pending))
	return nil
}

func (a *App) Queue(ctx context.Context) error {
	pending, err := a.queue.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		printlnFn("Offline queue is empty")
		return nil
	}
	for _, r := range pending {
		printlnFn(fmt.Sprintf("%s %-6s %-30s queued %s, retries %d",
			r.ID[:min(8, len(r.ID))], r.Method, r.Endpoint, r.EnqueuedAt.Format("2006-01-02 15:04"), r.RetryCount))
	}
	return nil
}

// Status summarizes connectivity, the realtime channel and local state.
func (a *App) Status(ctx context.Context) error {
	pending, err := a.queue.Pending(ctx)
	if err != nil {
		return err
	}
	state := models.StateDisconnected
	if a.realtime != nil {
		state = a.realtime()
	}
	user := a.user()
	if user == "" {
		user = "not logged in"
	}
	printlnFn(fmt.Sprintf("User: %s", user))
	printlnFn(fmt.Sprintf("Mode: %s, realtime: %s", a.mode(), state))
	printlnFn(fmt.Sprintf("Queued actions: %d, unread notifications: %d", len(pending), a.notifications.Unread()))
	return nil
}
