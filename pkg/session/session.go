package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/announce"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/signal"
	"github.com/celerix-dev/painel-store/pkg/syncbus"
)

// DefaultHeartbeat is the polling interval used when Options.Heartbeat is zero.
const DefaultHeartbeat = 5 * time.Second

// ErrUnknownNotification is returned by OpenNotification for an id the user does not have.
var ErrUnknownNotification = errors.New("unknown notification")

// IdentityFunc returns the signed-in user, or false when nobody is signed in.
type IdentityFunc func() (schema.Identity, bool)

// StaticIdentity always reports id as signed in.
func StaticIdentity(id schema.Identity) IdentityFunc {
	return func() (schema.Identity, bool) { return id, true }
}

// Options configures a Session.
type Options struct {
	Heartbeat time.Duration
	Identity  IdentityFunc
	Logger    *zap.Logger
}

// State is what a client shows. Snapshots are copies.
type State struct {
	User           schema.Identity       `json:"user"`
	SignedIn       bool                  `json:"signedIn"`
	Notifications  []schema.Notification `json:"notifications"`
	Unread         int                   `json:"unread"`
	Announcement   *schema.Announcement  `json:"announcement,omitempty"`
	Config         *schema.AppConfig     `json:"config,omitempty"`
	ForbiddenColor announce.Color        `json:"forbiddenColor"`
	Online         bool                  `json:"online"`
}

// Session is one client: an identity, a medium handle and the loop that keeps its state current.
type Session struct {
	svc      *Services
	bus      *syncbus.Bus
	identity IdentityFunc
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	state    State
	onUpdate []func(State)
}

// New returns a session over svc whose change feed comes from w.
func New(svc *Services, w medium.Watcher, opts Options) *Session {
	logger := logging.OrNop(opts.Logger)
	s := &Session{
		svc:      svc,
		bus:      syncbus.New(w, logger.Named("bus")),
		identity: opts.Identity,
		interval: opts.Heartbeat,
		logger:   logger,
		state:    State{Online: true, Notifications: []schema.Notification{}},
	}
	if s.identity == nil {
		s.identity = func() (schema.Identity, bool) { return schema.Identity{}, false }
	}
	if s.interval <= 0 {
		s.interval = DefaultHeartbeat
	}

	ks := svc.Keys
	s.bus.OnExternalChange(ks.Key(schema.Notifications), func(medium.Change) { s.refreshNotifications() })
	s.bus.OnExternalChange(ks.Key(schema.AnnouncementNS), func(medium.Change) { s.refreshAnnouncement() })
	s.bus.OnExternalChange(ks.Key(schema.AppConfigNS), func(medium.Change) { s.refreshConfig() })
	s.bus.OnExternalChange(ks.Key(schema.GlobalResetSignal), func(medium.Change) { s.checkReset() })
	s.bus.OnTick(s.interval, s.heartbeat)
	return s
}

// Services returns the components the session runs on.
func (s *Session) Services() *Services { return s.svc }

// OnUpdate registers fn to receive a snapshot whenever the visible state changes.
// fn runs on the session loop.
func (s *Session) OnUpdate(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = append(s.onUpdate, fn)
}

// Run loads the initial state and keeps it current until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	hub := s.svc.Hub
	offAnnouncement := hub.On(signal.AnnouncementUpdated, func() { s.bus.Post(s.refreshAnnouncement) })
	defer offAnnouncement()
	offConfig := hub.On(signal.ConfigUpdated, func() { s.bus.Post(s.refreshConfig) })
	defer offConfig()

	s.bus.Post(s.start)
	return s.bus.Run(ctx)
}

func (s *Session) start() {
	now := s.svc.Clock.Now()
	s.checkReset()
	s.reconcile(now)
	s.refreshIdentity()
	s.refreshNotifications()
	s.refreshAnnouncement()
	s.refreshConfig()

	if _, err := s.svc.Announcements.PostMonthlyColorAlert(now); err != nil {
		s.logger.Warn("monthly color alert failed", zap.Error(err))
	}
	s.update(func(st *State) {
		st.ForbiddenColor = announce.ForbiddenColor(int(now.Month()) - 1)
	})
}

func (s *Session) heartbeat(time.Time) {
	s.refreshIdentity()
	s.refreshNotifications()
	s.refreshAnnouncement()
	s.reconcile(s.svc.Clock.Now())
	s.checkReset()
}

func (s *Session) reconcile(now time.Time) {
	if _, reset, err := s.svc.Scheduler.Reconcile(now); err != nil {
		s.logger.Warn("period reconcile failed", zap.Error(err))
	} else if reset {
		s.logger.Info("new period started")
	}
}

func (s *Session) checkReset() bool {
	reset, err := s.svc.Reset.Check()
	if err != nil {
		s.logger.Error("global reset check failed", zap.Error(err))
	}
	return reset
}

func (s *Session) refreshIdentity() {
	user, ok := s.identity()
	s.update(func(st *State) {
		st.User, st.SignedIn = user, ok
		if !ok {
			st.Notifications, st.Unread, st.Announcement = []schema.Notification{}, 0, nil
		}
	})
}

func (s *Session) refreshNotifications() {
	user, ok := s.currentUser()
	if !ok {
		return
	}
	list := s.svc.Notifications.List(user.Username)
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	s.update(func(st *State) {
		st.Notifications, st.Unread = list, unread
	})
}

func (s *Session) refreshAnnouncement() {
	if _, ok := s.currentUser(); !ok {
		return
	}
	var visible *schema.Announcement
	if a, ok := s.svc.Announcements.Visible(); ok {
		visible = &a
	}
	s.update(func(st *State) { st.Announcement = visible })
}

func (s *Session) refreshConfig() {
	var cfg *schema.AppConfig
	if c, ok := s.svc.Store.AppConfig(); ok {
		cfg = &c
	}
	s.update(func(st *State) { st.Config = cfg })
}

func (s *Session) currentUser() (schema.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User, s.state.SignedIn
}

// update applies fn to the state and notifies listeners if anything changed.
func (s *Session) update(fn func(*State)) {
	s.mu.Lock()
	before := cloneState(s.state)
	fn(&s.state)
	changed := !reflect.DeepEqual(before, s.state)
	snapshot := cloneState(s.state)
	listeners := append([]func(State){}, s.onUpdate...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(snapshot)
	}
}

// State returns a snapshot of the client state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// AcknowledgeAnnouncement hides the visible announcement on this medium.
func (s *Session) AcknowledgeAnnouncement() error {
	st := s.State()
	if st.Announcement == nil {
		return nil
	}
	if err := s.svc.Announcements.Acknowledge(st.Announcement.ID); err != nil {
		return err
	}
	s.bus.Post(s.refreshAnnouncement)
	return nil
}

// OpenNotification marks one of the user's notifications read and returns it,
// so the caller can navigate to its target module.
func (s *Session) OpenNotification(id string) (schema.Notification, error) {
	user, ok := s.currentUser()
	if !ok {
		return schema.Notification{}, ErrUnknownNotification
	}
	for _, n := range s.svc.Notifications.List(user.Username) {
		if n.ID != id {
			continue
		}
		if err := s.svc.Notifications.MarkRead(id); err != nil {
			return schema.Notification{}, err
		}
		s.bus.Post(s.refreshNotifications)
		n.Read = true
		return n, nil
	}
	return schema.Notification{}, ErrUnknownNotification
}

// SetOnline records connectivity. It is informational only; nothing is queued while offline.
func (s *Session) SetOnline(online bool) {
	s.bus.Post(func() {
		s.update(func(st *State) { st.Online = online })
	})
}

func cloneState(st State) State {
	out := st
	out.Notifications = append([]schema.Notification{}, st.Notifications...)
	if st.Announcement != nil {
		a := *st.Announcement
		out.Announcement = &a
	}
	if st.Config != nil {
		c := *st.Config
		out.Config = &c
	}
	return out
}
