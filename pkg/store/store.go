// Package store provides namespaced CRUD over the shared medium. Every mutation is audited.
package store

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/audit"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/signal"
)

var (
	// ErrMissingID is returned when a record without an id is added or updated.
	ErrMissingID = errors.New("record has no id")
	// ErrDuplicateID is returned when Add would put a second record with the same id in a collection.
	ErrDuplicateID = errors.New("record id already exists")
)

// Store is the record store. It trusts its caller: authorization is enforced by the calling module.
type Store struct {
	medium medium.Medium
	keys   schema.Keyspace
	log    *audit.Log
	hub    *signal.Hub
	logger *zap.Logger
}

// New returns a store writing through m and auditing to log. hub may be nil.
func New(m medium.Medium, ks schema.Keyspace, log *audit.Log, hub *signal.Hub, logger *zap.Logger) *Store {
	return &Store{
		medium: m,
		keys:   ks,
		log:    log,
		hub:    hub,
		logger: logging.OrNop(logger),
	}
}

// Keyspace returns the key mapping in use.
func (s *Store) Keyspace() schema.Keyspace { return s.keys }

// Get returns the collection, or an empty one when it is absent or unreadable.
func (s *Store) Get(ns schema.Namespace) []schema.Record {
	var records []schema.Record
	if !medium.ReadJSON(s.medium, s.keys.Key(ns), &records, s.logger) {
		return []schema.Record{}
	}
	return records
}

// Save replaces the whole collection. It is not audited.
func (s *Store) Save(ns schema.Namespace, records []schema.Record) error {
	if records == nil {
		records = []schema.Record{}
	}
	if err := medium.WriteJSON(s.medium, s.keys.Key(ns), records); err != nil {
		return fmt.Errorf("save %s: %w", ns, err)
	}
	return nil
}

// Add prepends r to the collection and audits it under the namespace's category.
func (s *Store) Add(ns schema.Namespace, r schema.Record) error {
	id := r.ID()
	if id == "" {
		return ErrMissingID
	}
	current := s.Get(ns)
	for _, existing := range current {
		if existing.ID() == id {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateID, id, ns)
		}
	}

	if err := s.Save(ns, append([]schema.Record{r}, current...)); err != nil {
		return err
	}

	d := describe(ns, r)
	return s.audit(d.category, schema.ActionCreate, d.description, d.details, r.Author())
}

// Update replaces the record with r's id in place. An unknown id is silently ignored.
func (s *Store) Update(ns schema.Namespace, r schema.Record) error {
	id := r.ID()
	if id == "" {
		return ErrMissingID
	}
	current := s.Get(ns)
	index := -1
	for i, existing := range current {
		if existing.ID() == id {
			index = i
			break
		}
	}
	if index == -1 {
		s.logger.Debug("update ignored, id not found", zap.String("namespace", string(ns)), zap.String("id", id))
		return nil
	}

	current[index] = r
	if err := s.Save(ns, current); err != nil {
		return err
	}
	return s.audit(schema.CategorySystem, schema.ActionUpdate, "Record updated",
		fmt.Sprintf("Item ID: %s updated in %s.", id, ns), r.Author())
}

// Delete removes the record with id. An unknown id is silently ignored and not audited.
func (s *Store) Delete(ns schema.Namespace, id string) error {
	current := s.Get(ns)
	kept := make([]schema.Record, 0, len(current))
	for _, existing := range current {
		if existing.ID() != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(current) {
		s.logger.Debug("delete ignored, id not found", zap.String("namespace", string(ns)), zap.String("id", id))
		return nil
	}

	if err := s.Save(ns, kept); err != nil {
		return err
	}
	return s.audit(schema.CategorySystem, schema.ActionDelete, "Record deleted",
		fmt.Sprintf("Item ID: %s removed from %s.", id, ns), schema.SystemIdentity)
}

func (s *Store) audit(category schema.Category, action schema.Action, description, details string, author schema.Identity) error {
	if s.log == nil {
		return nil
	}
	if _, err := s.log.Record(category, action, description, details, author); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}
