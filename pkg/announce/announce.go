// Package announce manages the single global announcement and each client's acknowledgement of it.
package announce

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/audit"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/signal"
)

// Broadcaster publishes the announcement. Other clients learn about it through the change feed;
// this client through the hub.
type Broadcaster struct {
	medium medium.Medium
	keys   schema.Keyspace
	log    *audit.Log
	hub    *signal.Hub
	clock  clock.Clock
	logger *zap.Logger
}

// New returns a broadcaster over m. log and hub may be nil.
func New(m medium.Medium, ks schema.Keyspace, log *audit.Log, hub *signal.Hub, c clock.Clock, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		medium: m,
		keys:   ks,
		log:    log,
		hub:    hub,
		clock:  clock.Or(c),
		logger: logging.OrNop(logger),
	}
}

// Get returns the current announcement, if any.
func (b *Broadcaster) Get() (schema.Announcement, bool) {
	var a schema.Announcement
	ok := medium.ReadJSON(b.medium, b.keys.Key(schema.AnnouncementNS), &a, b.logger)
	return a, ok
}

// Set overwrites the announcement, signals this client and audits the publication.
// A missing id or timestamp is filled in.
func (b *Broadcaster) Set(a schema.Announcement) (schema.Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = b.clock.Now()
	}
	if err := medium.WriteJSON(b.medium, b.keys.Key(schema.AnnouncementNS), a); err != nil {
		return schema.Announcement{}, fmt.Errorf("save announcement: %w", err)
	}
	b.hub.Emit(signal.AnnouncementUpdated)

	if b.log != nil {
		author := schema.Identity{Username: a.CreatedBy, Name: "Admin", JobTitle: "Administrator"}
		if _, err := b.log.Record(schema.CategorySystem, schema.ActionCreate, "Global announcement",
			"Title: "+a.Title, author); err != nil {
			return a, fmt.Errorf("audit announcement: %w", err)
		}
	}
	return a, nil
}

// Clear removes the announcement and signals this client.
func (b *Broadcaster) Clear() error {
	if err := b.medium.Remove(b.keys.Key(schema.AnnouncementNS)); err != nil {
		return fmt.Errorf("clear announcement: %w", err)
	}
	b.hub.Emit(signal.AnnouncementUpdated)
	return nil
}

// Seen reports whether this medium has acknowledged the announcement with id.
func (b *Broadcaster) Seen(id string) bool {
	_, err := b.medium.Get(b.keys.SeenKey(id))
	if err != nil && !errors.Is(err, medium.ErrKeyNotFound) {
		b.logger.Warn("read seen flag failed", zap.String("announcement", id), zap.Error(err))
	}
	return err == nil
}

// Acknowledge marks the announcement with id as seen.
func (b *Broadcaster) Acknowledge(id string) error {
	if err := b.medium.Set(b.keys.SeenKey(id), "true"); err != nil {
		return fmt.Errorf("acknowledge announcement: %w", err)
	}
	return nil
}

// Visible returns the announcement to show: it exists, is active and has not been seen.
func (b *Broadcaster) Visible() (schema.Announcement, bool) {
	a, ok := b.Get()
	if !ok || !a.Active || b.Seen(a.ID) {
		return schema.Announcement{}, false
	}
	return a, true
}
