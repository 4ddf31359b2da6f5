package store

import (
	"fmt"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

// --- Generics Support ---

// Load returns a collection decoded into T. Records that do not fit T fail the whole load.
func Load[T any](s *Store, ns schema.Namespace) ([]T, error) {
	records := s.Get(ns)
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := medium.Convert[T](map[string]any(r))
		if err != nil {
			return nil, fmt.Errorf("decode %s record %s: %w", ns, r.ID(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Put replaces a collection with typed items. Like Save, it is not audited.
func Put[T any](s *Store, ns schema.Namespace, items []T) error {
	records := make([]schema.Record, 0, len(items))
	for _, item := range items {
		r, err := medium.Convert[schema.Record](item)
		if err != nil {
			return fmt.Errorf("encode %s item: %w", ns, err)
		}
		records = append(records, r)
	}
	return s.Save(ns, records)
}
