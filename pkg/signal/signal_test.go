package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_EmitAndCancel(t *testing.T) {
	h := NewHub()
	var announcements, configs int

	cancel := h.On(AnnouncementUpdated, func() { announcements++ })
	h.On(ConfigUpdated, func() { configs++ })

	h.Emit(AnnouncementUpdated)
	h.Emit(AnnouncementUpdated)
	h.Emit(ConfigUpdated)
	assert.Equal(t, 2, announcements)
	assert.Equal(t, 1, configs)

	cancel()
	cancel()
	h.Emit(AnnouncementUpdated)
	assert.Equal(t, 2, announcements)
}

func TestHub_NilAndZero(t *testing.T) {
	var nilHub *Hub
	nilHub.Emit(ConfigUpdated)

	var zero Hub
	fired := false
	zero.On(ConfigUpdated, func() { fired = true })
	zero.Emit(ConfigUpdated)
	assert.True(t, fired)
}
