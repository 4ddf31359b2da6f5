package medium

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/internal/logging"
)

// FileName is the document every File medium in a directory shares.
const FileName = "medium.json"

// LockName is the advisory lock serializing writers across processes.
const LockName = "medium.lock"

// File is a medium persisted as one JSON document. Several processes may open the same directory;
// reads see the last renamed document and writes hold LockName across read-modify-write.
type File struct {
	dir    string
	path   string
	logger *zap.Logger

	mu   sync.Mutex // Protects concurrent writes from this process
	lock *flock.Flock

	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	subs     map[int]func(Change)
	nextSub  int
	lastSeen map[string]string
	stopCh   chan struct{}
	doneCh   chan struct{}
	closed   bool
}

// OpenFile opens (creating if needed) the medium stored in dir.
func OpenFile(dir string, logger *zap.Logger) (*File, error) {
	// Ensure the data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f := &File{
		dir:    dir,
		path:   filepath.Join(dir, FileName),
		lock:   flock.New(filepath.Join(dir, LockName)),
		logger: logging.OrNop(logger),
		subs:   make(map[int]func(Change)),
	}
	return f, nil
}

// Path returns the document location.
func (f *File) Path() string { return f.path }

// load reads the whole document. A missing file is an empty medium;
// an unreadable document is logged and also treated as empty.
func (f *File) load() (map[string]string, error) {
	content, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read medium: %w", err)
	}
	if len(content) == 0 {
		return make(map[string]string), nil
	}

	data := make(map[string]string)
	if err := json.Unmarshal(content, &data); err != nil {
		f.logger.Warn("medium document is corrupt, treating as empty",
			zap.String("path", f.path), zap.Error(err))
		return make(map[string]string), nil
	}
	return data, nil
}

// save writes the document atomically: temp file first, then rename.
// A crash leaves either the old document or the new one, never a torn one.
func (f *File) save(data map[string]string) error {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "medium-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp medium: %w", err)
	}
	tempPath := tmp.Name()
	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write medium: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("write medium: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("write medium: %w", err)
	}
	if err := os.Rename(tempPath, f.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace medium: %w", err)
	}
	return nil
}

func (f *File) Get(key string) (string, error) {
	if f.isClosed() {
		return "", ErrClosed
	}
	data, err := f.load()
	if err != nil {
		return "", err
	}
	val, ok := data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (f *File) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	return f.mutate(func(data map[string]string) []string {
		data[key] = value
		return []string{key}
	})
}

func (f *File) Remove(key string) error {
	return f.mutate(func(data map[string]string) []string {
		if _, ok := data[key]; !ok {
			return nil
		}
		delete(data, key)
		return []string{key}
	})
}

func (f *File) Keys() ([]string, error) {
	if f.isClosed() {
		return nil, ErrClosed
	}
	data, err := f.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *File) Clear() error {
	return f.mutate(func(data map[string]string) []string {
		touched := make([]string, 0, len(data))
		for k := range data {
			touched = append(touched, k)
			delete(data, k)
		}
		return touched
	})
}

// mutate runs a read-modify-write cycle under the process mutex and the directory lock, and records the touched keys as already seen,
// so this process's watcher does not report its own writes.
func (f *File) mutate(apply func(map[string]string) []string) error {
	if f.isClosed() {
		return ErrClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock medium: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	data, err := f.load()
	if err != nil {
		return err
	}
	touched := apply(data)
	if len(touched) == 0 {
		return nil
	}

	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if err := f.save(data); err != nil {
		return err
	}
	if f.lastSeen != nil {
		for _, k := range touched {
			if v, ok := data[k]; ok {
				f.lastSeen[k] = v
			} else {
				delete(f.lastSeen, k)
			}
		}
	}
	return nil
}

// Watch subscribes fn to changes written by other processes (or other File handles).
// The first subscription starts an fsnotify watch on the directory.
func (f *File) Watch(fn func(Change)) (func(), error) {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if f.closed {
		return nil, ErrClosed
	}

	if f.watcher == nil {
		if err := f.startLocked(); err != nil {
			return nil, err
		}
	}

	f.nextSub++
	id := f.nextSub
	f.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.watchMu.Lock()
			delete(f.subs, id)
			f.watchMu.Unlock()
		})
	}, nil
}

func (f *File) startLocked() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: the document is replaced by rename, which drops file-level watches.
	if err := w.Add(f.dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", f.dir, err)
	}

	baseline, err := f.load()
	if err != nil {
		_ = w.Close()
		return err
	}

	f.watcher = w
	f.lastSeen = baseline
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	go f.run(w, f.stopCh, f.doneCh)

	f.logger.Debug("watching medium", zap.String("path", f.path))
	return nil
}

func (f *File) run(w *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			f.reconcile()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Error("medium watcher error", zap.Error(err))
		}
	}
}

// reconcile diffs the document against the last state this handle observed and fans out the difference.
func (f *File) reconcile() {
	f.watchMu.Lock()
	current, err := f.load()
	if err != nil {
		f.watchMu.Unlock()
		f.logger.Warn("reload medium failed", zap.Error(err))
		return
	}
	changes := diff(f.lastSeen, current)
	f.lastSeen = current
	subs := make([]func(Change), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.watchMu.Unlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
}

// Close stops the watcher, if any, and waits for its goroutine.
func (f *File) Close() error {
	f.watchMu.Lock()
	if f.closed {
		f.watchMu.Unlock()
		return nil
	}
	f.closed = true
	w, stopCh, doneCh := f.watcher, f.stopCh, f.doneCh
	f.watcher = nil
	f.watchMu.Unlock()

	f.mu.Lock()
	_ = f.lock.Close()
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stopCh)
	<-doneCh
	return w.Close()
}

func (f *File) isClosed() bool {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	return f.closed
}

// diff lists the keys whose value differs between before and after, sorted by key.
func diff(before, after map[string]string) []Change {
	var changes []Change
	for k, v := range after {
		if old, ok := before[k]; !ok || old != v {
			changes = append(changes, Change{Key: k, OldValue: before[k], NewValue: v})
		}
	}
	for k, old := range before {
		if _, ok := after[k]; !ok {
			changes = append(changes, Change{Key: k, OldValue: old, Removed: true})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}
