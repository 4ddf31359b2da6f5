package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/celerix-dev/painel-store/pkg/medium"
	"github.com/celerix-dev/painel-store/pkg/schema"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "painel", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"get", "keys", "logs", "matrix", "announce", "clear-announcement", "notify", "reset", "copy", "watch"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	backend := cmd.PersistentFlags().Lookup("backend")
	require.NotNil(t, backend)
	assert.Equal(t, "file", backend.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "keys", "--backend", "memory", "--format", "xml")
	assert.Error(t, err)
}

func TestNotifyAndGet(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--data-dir", dir, "notify", "ana", "please sign the DDS", "--mention")
	require.NoError(t, err)
	assert.Contains(t, out, "sent to ana")

	out, err = execute(t, "--data-dir", dir, "--format", "json", "get", "notifications")
	require.NoError(t, err)
	var got []schema.Notification
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, schema.NotificationMention, got[0].Type)

	_, err = execute(t, "--data-dir", dir, "get", "reports")
	assert.Error(t, err, "empty namespace")
}

func TestAnnounceAndLogs(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--data-dir", dir, "announce", "--title", "Drill", "--message", "3pm")
	require.NoError(t, err)

	out, err := execute(t, "--data-dir", dir, "logs", "--category", "system")
	require.NoError(t, err)
	assert.Contains(t, out, "Global announcement")

	_, err = execute(t, "--data-dir", dir, "clear-announcement")
	require.NoError(t, err)
	_, err = execute(t, "--data-dir", dir, "get", "announcement")
	assert.Error(t, err)
}

func TestMatrixToggle(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "--data-dir", dir, "matrix", "--toggle", "preposto/p1")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] p1")

	_, err = execute(t, "--data-dir", dir, "matrix", "--toggle", "nonsense")
	assert.Error(t, err)
}

func TestResetAndCopy(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()

	out, err := execute(t, "--data-dir", src, "--format", "json", "reset", "--token", "tok-1")
	require.NoError(t, err)
	assert.Contains(t, out, "tok-1")

	out, err = execute(t, "--data-dir", src, "copy", "--to-backend", "sqlite", "--to-dir", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "copied 1 keys")

	db, err := medium.OpenSQLite(filepath.Join(dst, medium.SQLiteFileName), 0, nil)
	require.NoError(t, err)
	defer db.Close()
	raw, err := db.Get(schema.DefaultKeyspace.Key(schema.GlobalResetSignal))
	require.NoError(t, err)
	assert.Equal(t, "tok-1", raw)
}

func TestYAMLOutput(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "--data-dir", dir, "notify", "bia", "crane inspection due")
	require.NoError(t, err)

	out, err := execute(t, "--data-dir", dir, "--format", "yaml", "get", "notifications")
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "crane inspection due", got[0]["message"])
}
