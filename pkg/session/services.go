// Package session assembles the dashboard services over one medium handle and runs a client's event loop.
package session

import (
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/announce"
	"github.com/celerix-dev/painel-store/pkg/audit"
	"github.com/celerix-dev/painel-store/pkg/lifecycle"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/notify"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/signal"
	"github.com/celerix-dev/painel-store/pkg/store"
	"github.com/celerix-dev/painel-store/pkg/syncbus"
)

// ServiceOptions tunes NewServices. Every field is optional.
type ServiceOptions struct {
	Keyspace schema.Keyspace
	Clock    clock.Clock
	Prompter syncbus.Prompter
	Reloader syncbus.Reloader
	Logger   *zap.Logger
}

// Services is every dashboard component bound to one medium handle and one signal hub.
// The HTTP API and the CLI use it directly; a Session wraps it with an event loop.
type Services struct {
	Medium        medium.Medium
	Keys          schema.Keyspace
	Clock         clock.Clock
	Hub           *signal.Hub
	Log           *audit.Log
	Store         *store.Store
	Scheduler     *lifecycle.Scheduler
	Notifications *notify.Center
	Announcements *announce.Broadcaster
	Reset         *syncbus.ResetGuard
}

// NewServices wires the components over m.
func NewServices(m medium.Medium, opts ServiceOptions) *Services {
	ks := opts.Keyspace
	if ks.Prefix == "" {
		ks = schema.DefaultKeyspace
	}
	c := clock.Or(opts.Clock)
	logger := logging.OrNop(opts.Logger)
	hub := signal.NewHub()
	log := audit.New(m, ks, c, logger.Named("audit"))

	return &Services{
		Medium:        m,
		Keys:          ks,
		Clock:         c,
		Hub:           hub,
		Log:           log,
		Store:         store.New(m, ks, log, hub, logger.Named("store")),
		Scheduler:     lifecycle.New(m, ks, log, c, logger.Named("lifecycle")),
		Notifications: notify.New(m, ks, c, logger.Named("notify")),
		Announcements: announce.New(m, ks, log, hub, c, logger.Named("announce")),
		Reset:         syncbus.NewResetGuard(m, ks, opts.Prompter, opts.Reloader, logger.Named("reset")),
	}
}
