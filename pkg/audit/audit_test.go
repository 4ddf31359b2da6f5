package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/painel-store/internal/clock"
	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

func newTestLog(t *testing.T) (*Log, *clock.Manual, medium.Medium) {
	t.Helper()
	m := medium.NewShared().Tab()
	c := clock.NewManual(time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC))
	return New(m, schema.DefaultKeyspace, c, nil), c, m
}

func TestLog_RecordStampsAuthorAndTime(t *testing.T) {
	l, c, _ := newTestLog(t)

	rec, err := l.Record(schema.CategoryReport, schema.ActionCreate, "New general report", "Location: Gate 3",
		schema.Identity{Username: "ana", Name: "Ana", JobTitle: "Engenheiro"})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.CreatedAt.Equal(c.Now()))
	assert.Equal(t, "ana", rec.CreatedBy)
	assert.Equal(t, "Engenheiro", rec.AuthorRole)

	sys, err := l.Record(schema.CategorySystem, schema.ActionSystem, "Reset", "", schema.Identity{})
	require.NoError(t, err)
	assert.Equal(t, schema.SystemIdentity.Username, sys.CreatedBy)
}

func TestLog_ListNewestFirstStable(t *testing.T) {
	l, c, _ := newTestLog(t)

	first, _ := l.Record(schema.CategoryOther, schema.ActionCreate, "first", "", schema.Identity{})
	// Same timestamp: storage order (newest prepended) breaks the tie
	second, _ := l.Record(schema.CategoryOther, schema.ActionCreate, "second", "", schema.Identity{})
	c.Advance(time.Minute)
	third, _ := l.Record(schema.CategoryOther, schema.ActionCreate, "third", "", schema.Identity{})

	// An older entry appended out of order still sorts by time
	old := schema.LogRecord{ID: "old", CreatedAt: c.Now().Add(-time.Hour), Description: "old"}
	require.NoError(t, l.Append(old))

	got := l.List()
	require.Len(t, got, 4)
	assert.Equal(t, []string{third.ID, second.ID, first.ID, "old"},
		[]string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestLog_Clear(t *testing.T) {
	l, _, _ := newTestLog(t)
	_, _ = l.Record(schema.CategoryOther, schema.ActionCreate, "x", "", schema.Identity{})
	require.Equal(t, 1, l.Len())

	require.NoError(t, l.Clear())
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.List())
}

func TestLog_CorruptValueIsEmpty(t *testing.T) {
	l, _, m := newTestLog(t)
	require.NoError(t, m.Set(schema.DefaultKeyspace.Key(schema.Logs), "not json"))

	assert.Empty(t, l.List())

	// Appending recovers the collection
	_, err := l.Record(schema.CategoryOther, schema.ActionCreate, "x", "", schema.Identity{})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
}
