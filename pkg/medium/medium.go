// Package medium is the shared, string-keyed persistent medium every dashboard client reads and writes.
//
// A medium behaves like a browser origin's local storage: whole-value overwrite, last writer wins,
// and change notifications that reach every handle except the one that made the write.
package medium

import "errors"

var (
	// ErrKeyNotFound is returned by Get when the key holds no value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrClosed is returned by operations on a closed medium.
	ErrClosed = errors.New("medium closed")
	// ErrEmptyKey is returned when a write names no key.
	ErrEmptyKey = errors.New("empty key")
)

// --- Functional Interfaces ---

// Reader reads single values.
type Reader interface {
	Get(key string) (string, error)
}

// Writer overwrites or removes single values.
type Writer interface {
	Set(key, value string) error
	Remove(key string) error
}

// Enumerator lists the keys currently holding a value.
type Enumerator interface {
	Keys() ([]string, error)
}

// Clearer wipes every key of the medium, not only this application's.
type Clearer interface {
	Clear() error
}

// Medium combines the functional interfaces.
type Medium interface {
	Reader
	Writer
	Enumerator
	Clearer
}

// Change describes a write observed through another handle.
type Change struct {
	Key      string
	OldValue string
	NewValue string
	// Removed is set when the key no longer holds a value.
	Removed bool
}

// Watcher delivers changes made through other handles of the same medium.
// The returned cancel func is idempotent.
type Watcher interface {
	Watch(fn func(Change)) (cancel func(), err error)
}

// Durable is a medium that can be watched and must be closed.
type Durable interface {
	Medium
	Watcher
	Close() error
}

func validKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
