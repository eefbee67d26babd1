package cli

import (
	"context"
	"fmt"
)

func (a *App) Notifications(ctx context.Context) error {
	list, err := a.notifications.List(ctx)
	if err != nil {
		return err
	}
	if len(list.Results) == 0 {
		printlnFn("No notifications")
		return nil
	}
	for _, n := range list.Results {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s #%-6d %s: %s", mark, n.ID, n.Title, n.Message))
	}
	return nil
}

func (a *App) Read(ctx context.Context, args []string) error {
	id, err := parseID(args, "read")
	if err != nil {
		return err
	}
	err = a.notifications.MarkRead(ctx, id)
	if queued(err) {
		return nil
	}
	return err
}

func (a *App) Unread(ctx context.Context) error {
	printlnFn(fmt.Sprintf("Unread notifications: %d", a.notifications.Unread()))
	return nil
}
