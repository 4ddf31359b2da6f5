package medium

import (
	"github.com/celerix-dev/painel-store/internal/vault"
)

// Sealed wraps a medium so values are AES-GCM encrypted at rest. Keys stay readable.
type Sealed struct {
	inner Medium
	key   []byte
}

// Seal wraps m with a 32-byte key.
func Seal(m Medium, key []byte) *Sealed {
	return &Sealed{inner: m, key: key}
}

func (s *Sealed) Get(key string) (string, error) {
	raw, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	return vault.Open(raw, s.key)
}

// Set skips the write when the stored value already opens to value.
// Each seal draws a fresh nonce, so the inner medium cannot detect that itself.
func (s *Sealed) Set(key, value string) error {
	if raw, err := s.inner.Get(key); err == nil {
		if old, err := vault.Open(raw, s.key); err == nil && old == value {
			return nil
		}
	}
	sealed, err := vault.Seal(value, s.key)
	if err != nil {
		return err
	}
	return s.inner.Set(key, sealed)
}

func (s *Sealed) Remove(key string) error { return s.inner.Remove(key) }

func (s *Sealed) Keys() ([]string, error) { return s.inner.Keys() }

func (s *Sealed) Clear() error { return s.inner.Clear() }

// Watch forwards the inner medium's changes with values opened.
// Values that fail to open are forwarded empty.
func (s *Sealed) Watch(fn func(Change)) (func(), error) {
	w, ok := s.inner.(Watcher)
	if !ok {
		return func() {}, nil
	}
	return w.Watch(func(c Change) {
		c.OldValue = s.openOrEmpty(c.OldValue)
		c.NewValue = s.openOrEmpty(c.NewValue)
		fn(c)
	})
}

// Close closes the inner medium when it is closable.
func (s *Sealed) Close() error {
	if c, ok := s.inner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (s *Sealed) openOrEmpty(v string) string {
	if v == "" {
		return ""
	}
	out, err := vault.Open(v, s.key)
	if err != nil {
		return ""
	}
	return out
}
