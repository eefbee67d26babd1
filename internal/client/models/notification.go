package models

import (
	"fmt"
	"time"
)

type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) Validate() error {
	if n.ID <= 0 {
		return invalid("notification id %d", n.ID)
	}
	return nil
}

type NotificationList struct {
	UnreadCount int            `json:"unread_count"`
	Results     []Notification `json:"results"`
}

func (l *NotificationList) Validate() error {
	if l.UnreadCount < 0 {
		return invalid("negative unread count")
	}
	for i := range l.Results {
		if err := l.Results[i].Validate(); err != nil {
			return fmt.Errorf("results[%d]: %w", i, err)
		}
	}
	return nil
}

// MarkReadRequest is the body of PATCH /notifications/{id}/.
type MarkReadRequest struct {
	IsRead bool `json:"is_read"`
}
