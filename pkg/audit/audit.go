// Package audit keeps the append-only activity log every store mutation writes to.
package audit

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// Log is the audit log collection. Entries are stored newest first and never edited;
// the only removal is Clear, used by the lifecycle scheduler.
type Log struct {
	medium medium.Medium
	key    string
	clock  clock.Clock
	logger *zap.Logger
}

// New returns the audit log stored under ks.Key(schema.Logs).
func New(m medium.Medium, ks schema.Keyspace, c clock.Clock, logger *zap.Logger) *Log {
	return &Log{
		medium: m,
		key:    ks.Key(schema.Logs),
		clock:  clock.Or(c),
		logger: logging.OrNop(logger),
	}
}

// Append prepends rec to the log.
func (l *Log) Append(rec schema.LogRecord) error {
	current := l.raw()
	return medium.WriteJSON(l.medium, l.key, append([]schema.LogRecord{rec}, current...))
}

// Record builds an entry stamped with the clock's time and author, then appends it.
// An empty author is recorded as the system.
func (l *Log) Record(category schema.Category, action schema.Action, description, details string, author schema.Identity) (schema.LogRecord, error) {
	author = author.OrSystem()
	rec := schema.LogRecord{
		ID:          uuid.NewString(),
		CreatedAt:   l.clock.Now(),
		Category:    category,
		Action:      action,
		Description: description,
		Details:     details,
		CreatedBy:   author.Username,
		AuthorName:  author.Name,
		AuthorRole:  author.JobTitle,
	}
	return rec, l.Append(rec)
}

// List returns every entry, newest first by CreatedAt. Ties keep storage order.
func (l *Log) List() []schema.LogRecord {
	logs := l.raw()
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	return logs
}

// Len returns the number of stored entries.
func (l *Log) Len() int {
	return len(l.raw())
}

// Clear empties the log.
func (l *Log) Clear() error {
	return medium.WriteJSON(l.medium, l.key, []schema.LogRecord{})
}

func (l *Log) raw() []schema.LogRecord {
	var logs []schema.LogRecord
	if !medium.ReadJSON(l.medium, l.key, &logs, l.logger) {
		return []schema.LogRecord{}
	}
	return logs
}
