package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyspace(t *testing.T) {
	ks := DefaultKeyspace

	assert.Equal(t, "painelSucena_reports", ks.Key(Reports))
	assert.Equal(t, "painelSucena_seen:a1", ks.SeenKey("a1"))
	assert.Equal(t, "painelSucena_forbidden-color-alert:0:2024", ks.ForbiddenColorAlertKey(0, 2024))

	ns, ok := ks.Namespace("painelSucena_global-reset-signal")
	assert.True(t, ok)
	assert.Equal(t, GlobalResetSignal, ns)

	_, ok = ks.Namespace("otherApp_reports")
	assert.False(t, ok)

	custom := Keyspace{Prefix: "demo"}
	assert.Equal(t, "demo_logs", custom.Key(Logs))
	assert.Equal(t, "painelSucena_logs", Keyspace{}.Key(Logs))
}

func TestRecord(t *testing.T) {
	r := Record{"id": "r1", "count": 3}
	assert.Equal(t, "r1", r.ID())
	assert.Equal(t, "3", r.String("count"))
	assert.Equal(t, "", r.String("missing"))

	r.Stamp(Identity{Username: "ana", Name: "Ana", JobTitle: "Engenheiro"})
	assert.Equal(t, Identity{Username: "ana", Name: "Ana", JobTitle: "Engenheiro"}, r.Author())

	c := r.Clone()
	c["id"] = "r2"
	assert.Equal(t, "r1", r.ID())
}

func TestIdentity_OrSystem(t *testing.T) {
	assert.Equal(t, SystemIdentity, Identity{}.OrSystem())
	assert.Equal(t, "ana", Identity{Username: "ana"}.OrSystem().Username)
}

func TestCloneMatrix(t *testing.T) {
	roles := []MatrixRole{{ID: "r", Tasks: []MatrixTask{{ID: "t", Completed: true}}}}
	out := CloneMatrix(roles)
	out[0].Tasks[0].Completed = false
	assert.True(t, roles[0].Tasks[0].Completed)
}
