// Package signal carries same-client notifications that the medium's change feed never delivers to the writer.
package signal

import "sync"

// Name identifies a same-client signal.
type Name string

const (
	// AnnouncementUpdated fires after the announcement is set or cleared.
	AnnouncementUpdated Name = "announcement-updated"
	// ConfigUpdated fires after the app configuration is saved.
	ConfigUpdated Name = "config-updated"
)

// Hub dispatches signals synchronously to the handlers registered for them.
// The zero value is ready to use.
type Hub struct {
	mu       sync.Mutex
	handlers map[Name]map[int]func()
	next     int
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// On registers fn for name and returns an idempotent cancel func.
func (h *Hub) On(name Name, fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[Name]map[int]func())
	}
	if h.handlers[name] == nil {
		h.handlers[name] = make(map[int]func())
	}
	h.next++
	id := h.next
	h.handlers[name][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers[name], id)
			h.mu.Unlock()
		})
	}
}

// Emit runs every handler for name on the caller's goroutine. A nil hub drops the signal.
func (h *Hub) Emit(name Name) {
	if h == nil {
		return
	}
	h.mu.Lock()
	fns := make([]func(), 0, len(h.handlers[name]))
	for _, fn := range h.handlers[name] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
