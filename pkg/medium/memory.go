package medium

import (
	"sort"
	"sync"
)

// Shared is an in-memory medium shared by several tabs.
type Shared struct {
	mu   sync.RWMutex
	data map[string]string
	tabs map[int]*Tab
	next int
}

// NewShared creates an empty shared medium.
func NewShared() *Shared {
	return &Shared{
		data: make(map[string]string),
		tabs: make(map[int]*Tab),
	}
}

// Tab opens a new handle. Writes through the tab are observed by every other tab's watchers.
func (s *Shared) Tab() *Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	t := &Tab{shared: s, id: s.next, subs: make(map[int]func(Change))}
	s.tabs[t.id] = t
	return t
}

// Snapshot returns a copy of every key and value.
func (s *Shared) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// fanOut delivers changes to every tab except the origin.
// It must be called without holding s.mu.
func (s *Shared) fanOut(origin int, changes []Change) {
	s.mu.RLock()
	var targets []*Tab
	for id, t := range s.tabs {
		if id != origin {
			targets = append(targets, t)
		}
	}
	s.mu.RUnlock()

	for _, t := range targets {
		for _, fn := range t.subscribers() {
			for _, c := range changes {
				fn(c)
			}
		}
	}
}

// Tab is one handle onto a Shared medium.
type Tab struct {
	shared *Shared
	id     int

	mu      sync.Mutex
	subs    map[int]func(Change)
	nextSub int
	closed  bool
}

func (t *Tab) Get(key string) (string, error) {
	if t.isClosed() {
		return "", ErrClosed
	}
	t.shared.mu.RLock()
	defer t.shared.mu.RUnlock()

	val, ok := t.shared.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (t *Tab) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if t.isClosed() {
		return ErrClosed
	}

	t.shared.mu.Lock()
	old, existed := t.shared.data[key]
	t.shared.data[key] = value
	t.shared.mu.Unlock()

	if existed && old == value {
		return nil
	}
	t.shared.fanOut(t.id, []Change{{Key: key, OldValue: old, NewValue: value}})
	return nil
}

func (t *Tab) Remove(key string) error {
	if t.isClosed() {
		return ErrClosed
	}

	t.shared.mu.Lock()
	old, existed := t.shared.data[key]
	delete(t.shared.data, key)
	t.shared.mu.Unlock()

	if existed {
		t.shared.fanOut(t.id, []Change{{Key: key, OldValue: old, Removed: true}})
	}
	return nil
}

func (t *Tab) Keys() ([]string, error) {
	if t.isClosed() {
		return nil, ErrClosed
	}
	t.shared.mu.RLock()
	defer t.shared.mu.RUnlock()

	keys := make([]string, 0, len(t.shared.data))
	for k := range t.shared.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (t *Tab) Clear() error {
	if t.isClosed() {
		return ErrClosed
	}

	t.shared.mu.Lock()
	changes := make([]Change, 0, len(t.shared.data))
	for k, v := range t.shared.data {
		changes = append(changes, Change{Key: k, OldValue: v, Removed: true})
	}
	t.shared.data = make(map[string]string)
	t.shared.mu.Unlock()

	t.shared.fanOut(t.id, changes)
	return nil
}

// Watch subscribes fn to writes made by other tabs. fn runs on the writer's goroutine.
func (t *Tab) Watch(fn func(Change)) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	t.nextSub++
	id := t.nextSub
	t.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}, nil
}

// Close detaches the tab. The shared data is left intact.
func (t *Tab) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.subs = make(map[int]func(Change))
	t.mu.Unlock()

	t.shared.mu.Lock()
	delete(t.shared.tabs, t.id)
	t.shared.mu.Unlock()
	return nil
}

func (t *Tab) subscribers() []func(Change) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]func(Change), 0, len(t.subs))
	for _, fn := range t.subs {
		out = append(out, fn)
	}
	return out
}

func (t *Tab) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
