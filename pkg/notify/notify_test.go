package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

func TestCenter_ListFiltersAndSorts(t *testing.T) {
	c := clock.NewManual(time.Date(2024, time.April, 1, 8, 0, 0, 0, time.UTC))
	center := New(medium.NewShared().Tab(), schema.DefaultKeyspace, c, nil)

	older, err := center.Add(schema.Notification{UserID: "ana", Message: "first"})
	require.NoError(t, err)
	c.Advance(time.Hour)
	_, err = center.Add(schema.Notification{UserID: "bia", Message: "not yours"})
	require.NoError(t, err)
	c.Advance(time.Hour)
	newer, err := center.Add(schema.Notification{UserID: "ana", Message: "second", Type: schema.NotificationMention})
	require.NoError(t, err)

	got := center.List("ana")
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
	assert.Equal(t, schema.NotificationSystem, got[1].Type)
	assert.Empty(t, center.List("nobody"))
}

func TestCenter_MarkRead(t *testing.T) {
	center := New(medium.NewShared().Tab(), schema.DefaultKeyspace, nil, nil)

	a, err := center.Add(schema.Notification{ID: "n1", UserID: "ana", Message: "a"})
	require.NoError(t, err)
	_, err = center.Add(schema.Notification{ID: "n2", UserID: "ana", Message: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, center.Unread("ana"))

	require.NoError(t, center.MarkRead(a.ID))
	assert.Equal(t, 1, center.Unread("ana"))

	require.NoError(t, center.MarkRead("missing"))
	assert.Equal(t, 1, center.Unread("ana"))
}

func TestCenter_SharedAcrossTabs(t *testing.T) {
	shared := medium.NewShared()
	writer := New(shared.Tab(), schema.DefaultKeyspace, nil, nil)
	reader := New(shared.Tab(), schema.DefaultKeyspace, nil, nil)

	_, err := writer.Add(schema.Notification{UserID: "ana", Message: "mention"})
	require.NoError(t, err)
	assert.Len(t, reader.List("ana"), 1)
}

func TestCenter_CorruptCollectionIsEmpty(t *testing.T) {
	m := medium.NewShared().Tab()
	require.NoError(t, m.Set(schema.DefaultKeyspace.Key(schema.Notifications), "[{"))
	center := New(m, schema.DefaultKeyspace, nil, nil)

	assert.Empty(t, center.List("ana"))
	_, err := center.Add(schema.Notification{UserID: "ana"})
	require.NoError(t, err)
	assert.Len(t, center.List("ana"), 1)
}
