// Package notify is the per-user notification mailbox.
package notify

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// Center stores every user's notifications in one shared collection.
type Center struct {
	medium medium.Medium
	key    string
	clock  clock.Clock
	logger *zap.Logger
}

// New returns the notification center stored under ks.Key(schema.Notifications).
func New(m medium.Medium, ks schema.Keyspace, c clock.Clock, logger *zap.Logger) *Center {
	return &Center{
		medium: m,
		key:    ks.Key(schema.Notifications),
		clock:  clock.Or(c),
		logger: logging.OrNop(logger),
	}
}

// List returns userID's notifications, newest first.
func (c *Center) List(userID string) []schema.Notification {
	all := c.all()
	out := make([]schema.Notification, 0, len(all))
	for _, n := range all {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Unread counts userID's unread notifications.
func (c *Center) Unread(userID string) int {
	n := 0
	for _, item := range c.List(userID) {
		if !item.Read {
			n++
		}
	}
	return n
}

// Add prepends n. A missing id or timestamp is filled in.
func (c *Center) Add(n schema.Notification) (schema.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.clock.Now()
	}
	if n.Type == "" {
		n.Type = schema.NotificationSystem
	}
	if err := c.save(append([]schema.Notification{n}, c.all()...)); err != nil {
		return schema.Notification{}, err
	}
	return n, nil
}

// MarkRead flags the notification with id as read. The whole collection is rewritten,
// so a concurrent Add from another client may be lost.
func (c *Center) MarkRead(id string) error {
	all := c.all()
	for i := range all {
		if all[i].ID == id {
			all[i].Read = true
		}
	}
	return c.save(all)
}

func (c *Center) all() []schema.Notification {
	var all []schema.Notification
	if !medium.ReadJSON(c.medium, c.key, &all, c.logger) {
		return []schema.Notification{}
	}
	return all
}

func (c *Center) save(all []schema.Notification) error {
	if err := medium.WriteJSON(c.medium, c.key, all); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}
