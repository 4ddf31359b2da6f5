package syncbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

type fakeUI struct {
	warnings []string
	reloads  int
}

func (f *fakeUI) Warn(message string) { f.warnings = append(f.warnings, message) }
func (f *fakeUI) Reload()             { f.reloads++ }

func TestResetGuard_NoSignal(t *testing.T) {
	m := medium.NewShared().Tab()
	require.NoError(t, m.Set("painelSucena_reports", "[]"))
	ui := &fakeUI{}
	g := NewResetGuard(m, schema.DefaultKeyspace, ui, ui, nil)

	reset, err := g.Check()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Zero(t, ui.reloads)

	keys, _ := m.Keys()
	assert.Len(t, keys, 1)
}

func TestResetGuard_WipesOnMismatch(t *testing.T) {
	shared := medium.NewShared()
	admin, client := shared.Tab(), shared.Tab()
	ks := schema.DefaultKeyspace

	require.NoError(t, client.Set(ks.Key(schema.Reports), `[{"id":"r1"}]`))
	require.NoError(t, client.Set(ks.Key(schema.Logs), `[]`))

	token, err := NewResetGuard(admin, ks, nil, nil, nil).Issue("")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ui := &fakeUI{}
	g := NewResetGuard(client, ks, ui, ui, nil)
	reset, err := g.Check()
	require.NoError(t, err)
	assert.True(t, reset)
	assert.Equal(t, []string{ResetMessage}, ui.warnings)
	assert.Equal(t, 1, ui.reloads)

	keys, err := client.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ks.Key(schema.GlobalResetSignal), ks.Key(schema.ResetAck)}, keys)

	ack, err := client.Get(ks.Key(schema.ResetAck))
	require.NoError(t, err)
	assert.Equal(t, token, ack)

	// Acknowledged: the next check is a no-op
	reset, err = g.Check()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Equal(t, 1, ui.reloads)
}

func TestResetGuard_IssueKeepsGivenToken(t *testing.T) {
	m := medium.NewShared().Tab()
	g := NewResetGuard(m, schema.DefaultKeyspace, nil, nil, nil)

	token, err := g.Issue("2024-05-reset")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-reset", token)

	raw, err := m.Get(g.SignalKey())
	require.NoError(t, err)
	assert.Equal(t, "2024-05-reset", raw)
}

func TestResetGuard_FuncAdapters(t *testing.T) {
	m := medium.NewShared().Tab()
	var warned, reloaded bool
	g := NewResetGuard(m, schema.DefaultKeyspace,
		PrompterFunc(func(string) { warned = true }),
		ReloaderFunc(func() { reloaded = true }), nil)

	_, err := g.Issue("t1")
	require.NoError(t, err)
	reset, err := g.Check()
	require.NoError(t, err)
	assert.True(t, reset)
	assert.True(t, warned)
	assert.True(t, reloaded)
}

func TestResetGuard_EmptySignalIsIgnored(t *testing.T) {
	m := medium.NewShared().Tab()
	ks := schema.DefaultKeyspace
	require.NoError(t, m.Set(ks.Key(schema.Reports), `[{"id":"r1"}]`))
	require.NoError(t, m.Set(ks.Key(schema.GlobalResetSignal), ""))
	require.NoError(t, m.Set(ks.Key(schema.ResetAck), "earlier-token"))

	ui := &fakeUI{}
	reset, err := NewResetGuard(m, ks, ui, ui, nil).Check()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Zero(t, ui.reloads)

	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}
