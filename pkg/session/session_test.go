package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/pkg/announce"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/syncbus"
)

const waitFor = 2 * time.Second

var (
	ana = schema.Identity{Username: "ana", Name: "Ana Souza", JobTitle: "Engenheiro"}
	bia = schema.Identity{Username: "bia", Name: "Bia Lima", JobTitle: "Preposto"}
)

type tab struct {
	svc     *Services
	session *Session
	reloads atomic.Int32
	stop    func()
}

func openTab(t *testing.T, shared *medium.Shared, c clock.Clock, id IdentityFunc) *tab {
	t.Helper()
	m := shared.Tab()
	tb := &tab{}
	tb.svc = NewServices(m, ServiceOptions{
		Clock:    c,
		Reloader: syncbus.ReloaderFunc(func() { tb.reloads.Add(1) }),
	})
	tb.session = New(tb.svc, m, Options{Heartbeat: 10 * time.Millisecond, Identity: id})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tb.session.Run(ctx) }()
	tb.stop = func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Fatal("session did not stop")
		}
	}
	t.Cleanup(tb.stop)
	return tb
}

func TestSession_InitialLoad(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))

	seed := NewServices(shared.Tab(), ServiceOptions{Clock: c})
	_, err := seed.Notifications.Add(schema.Notification{UserID: "ana", Message: "welcome"})
	require.NoError(t, err)
	require.NoError(t, seed.Store.SaveAppConfig(schema.AppConfig{AppName: "Painel"}, ana))

	b := openTab(t, shared, c, StaticIdentity(ana))
	require.Eventually(t, func() bool {
		st := b.session.State()
		return st.SignedIn && st.Unread == 1 && st.Config != nil
	}, waitFor, 5*time.Millisecond)

	st := b.session.State()
	assert.Equal(t, "Painel", st.Config.AppName)
	assert.Equal(t, "Yellow", st.ForbiddenColor.Name)
	assert.True(t, st.Online)
	assert.Equal(t, "2-2024", b.svc.Scheduler.Watermark())
}

func TestSession_CrossTabNotification(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	a := NewServices(shared.Tab(), ServiceOptions{Clock: c})
	b := openTab(t, shared, c, StaticIdentity(bia))

	updates := make(chan State, 16)
	b.session.OnUpdate(func(st State) {
		select {
		case updates <- st:
		default:
		}
	})

	_, err := a.Notifications.Add(schema.Notification{ID: "n1", UserID: "bia", Message: "@bia check the DDS", Type: schema.NotificationMention})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return b.session.State().Unread == 1 }, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(updates) > 0 }, waitFor, 5*time.Millisecond)

	n, err := b.session.OpenNotification("n1")
	require.NoError(t, err)
	assert.True(t, n.Read)
	require.Eventually(t, func() bool { return b.session.State().Unread == 0 }, waitFor, 5*time.Millisecond)

	_, err = b.session.OpenNotification("missing")
	assert.ErrorIs(t, err, ErrUnknownNotification)
}

func TestSession_AnnouncementAcrossTabs(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	a := NewServices(shared.Tab(), ServiceOptions{Clock: c})
	b := openTab(t, shared, c, StaticIdentity(bia))

	_, err := a.Announcements.Set(schema.Announcement{ID: "a1", Title: "Drill", Active: true, CreatedBy: "admin"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st := b.session.State()
		return st.Announcement != nil && st.Announcement.ID == "a1"
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, b.session.AcknowledgeAnnouncement())
	require.Eventually(t, func() bool { return b.session.State().Announcement == nil }, waitFor, 5*time.Millisecond)
	assert.True(t, a.Announcements.Seen("a1"), "acknowledgement is stored in the shared medium")
}

func TestSession_SameTabSignals(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	b := openTab(t, shared, c, StaticIdentity(ana))

	_, err := b.svc.Announcements.Set(schema.Announcement{ID: "own", Title: "Mine", Active: true})
	require.NoError(t, err)
	require.NoError(t, b.svc.Store.SaveAppConfig(schema.AppConfig{AppName: "Renamed"}, ana))

	require.Eventually(t, func() bool {
		st := b.session.State()
		return st.Announcement != nil && st.Config != nil && st.Config.AppName == "Renamed"
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, b.svc.Announcements.Clear())
	require.Eventually(t, func() bool { return b.session.State().Announcement == nil }, waitFor, 5*time.Millisecond)
}

func TestSession_GlobalReset(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	admin := NewServices(shared.Tab(), ServiceOptions{Clock: c})
	b := openTab(t, shared, c, StaticIdentity(ana))

	require.NoError(t, admin.Store.AddReport(schema.Record{"id": "r1", "location": "Gate"}))

	token, err := admin.Reset.Issue("")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return b.reloads.Load() >= 1 }, waitFor, 5*time.Millisecond)
	assert.Empty(t, admin.Store.Reports())

	ack, err := admin.Medium.Get(admin.Keys.Key(schema.ResetAck))
	require.NoError(t, err)
	assert.Equal(t, token, ack)
}

func TestSession_HeartbeatCrossesMonth(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC))
	b := openTab(t, shared, c, StaticIdentity(ana))

	require.Eventually(t, func() bool { return b.svc.Scheduler.Watermark() == "0-2024" }, waitFor, 5*time.Millisecond)

	c.Set(time.Date(2024, time.February, 1, 0, 1, 0, 0, time.UTC))
	require.Eventually(t, func() bool {
		return b.svc.Scheduler.Watermark() == "1-2024" && b.svc.Log.Len() == 2
	}, waitFor, 5*time.Millisecond)
}

func TestSession_FirstOfMonthColorAlert(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.May, 1, 7, 0, 0, 0, time.UTC))
	b := openTab(t, shared, c, StaticIdentity(ana))

	require.Eventually(t, func() bool {
		st := b.session.State()
		return st.Announcement != nil && st.Announcement.Title == announce.ColorAlertTitle
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, "Red", b.session.State().ForbiddenColor.Name)
}

func TestSession_SignedOut(t *testing.T) {
	shared := medium.NewShared()
	c := clock.NewManual(time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC))
	seed := NewServices(shared.Tab(), ServiceOptions{Clock: c})
	_, err := seed.Notifications.Add(schema.Notification{UserID: "", Message: "orphan"})
	require.NoError(t, err)

	b := openTab(t, shared, c, nil)
	b.session.SetOnline(false)

	require.Eventually(t, func() bool { return !b.session.State().Online }, waitFor, 5*time.Millisecond)
	st := b.session.State()
	assert.False(t, st.SignedIn)
	assert.Empty(t, st.Notifications)
}
