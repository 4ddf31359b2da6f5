package store

import (
	"fmt"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/signal"
)

// AppConfig returns the shared configuration, if one was saved.
func (s *Store) AppConfig() (schema.AppConfig, bool) {
	var cfg schema.AppConfig
	ok := medium.ReadJSON(s.medium, s.keys.Key(schema.AppConfigNS), &cfg, s.logger)
	return cfg, ok
}

// SaveAppConfig overwrites the configuration, audits it and signals this client,
// whose own write never reaches it through the change feed.
func (s *Store) SaveAppConfig(cfg schema.AppConfig, author schema.Identity) error {
	if err := medium.WriteJSON(s.medium, s.keys.Key(schema.AppConfigNS), cfg); err != nil {
		return fmt.Errorf("save app config: %w", err)
	}
	if err := s.audit(schema.CategorySystem, schema.ActionUpdate, "Layout changed",
		"Visual or menu settings were updated.", author); err != nil {
		return err
	}
	s.hub.Emit(signal.ConfigUpdated)
	return nil
}
