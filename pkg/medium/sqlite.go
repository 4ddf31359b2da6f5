package medium

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/celerix-dev/painel-store/internal/logging"
)

//go:embed schema.sql
var sqliteSchema string

// changeRetention bounds how long change rows are kept for slow pollers.
const changeRetention = 10 * time.Minute

// SQLite is a medium backed by a SQLite database shared by several processes.
// Every write appends a row to kv_changes tagged with this handle's origin; Watch polls for foreign rows.
type SQLite struct {
	db     *sql.DB
	origin string
	poll   time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	subs    map[int]func(Change)
	nextSub int
	cancel  context.CancelFunc
	doneCh  chan struct{}
	closed  bool
}

// OpenSQLite opens the database at path and applies the schema.
func OpenSQLite(path string, poll time.Duration, logger *zap.Logger) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{
		db:     db,
		origin: uuid.NewString(),
		poll:   poll,
		logger: logging.OrNop(logger),
		subs:   make(map[int]func(Change)),
	}, nil
}

func (s *SQLite) Get(key string) (string, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	var val string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

func (s *SQLite) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	return s.tx(func(tx *sql.Tx, now int64) error {
		old, existed, err := lookup(tx, key)
		if err != nil {
			return err
		}
		if existed && old == value {
			return nil
		}
		if _, err := tx.Exec(`
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, now); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return s.recordChange(tx, now, key, old, value, false)
	})
}

func (s *SQLite) Remove(key string) error {
	return s.tx(func(tx *sql.Tx, now int64) error {
		old, existed, err := lookup(tx, key)
		if err != nil || !existed {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
		return s.recordChange(tx, now, key, old, "", true)
	})
}

func (s *SQLite) Keys() ([]string, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLite) Clear() error {
	return s.tx(func(tx *sql.Tx, now int64) error {
		rows, err := tx.Query(`SELECT key, value FROM kv`)
		if err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		var removed []Change
		for rows.Next() {
			var c Change
			if err := rows.Scan(&c.Key, &c.OldValue); err != nil {
				rows.Close()
				return err
			}
			removed = append(removed, c)
		}
		rows.Close()

		if _, err := tx.Exec(`DELETE FROM kv`); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		for _, c := range removed {
			if err := s.recordChange(tx, now, c.Key, c.OldValue, "", true); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLite) tx(fn func(tx *sql.Tx, now int64) error) error {
	if s.isClosed() {
		return ErrClosed
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx, time.Now().UTC().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLite) recordChange(tx *sql.Tx, now int64, key, old, value string, removed bool) error {
	_, err := tx.Exec(`
INSERT INTO kv_changes (key, old_value, new_value, removed, origin, changed_at)
VALUES (?, ?, ?, ?, ?, ?)
`, key, old, value, removed, s.origin, now)
	if err != nil {
		return fmt.Errorf("record change: %w", err)
	}
	return nil
}

func lookup(tx *sql.Tx, key string) (string, bool, error) {
	var val string
	err := tx.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", key, err)
	}
	return val, true, nil
}

// Watch subscribes fn to changes committed by other handles. The first subscription starts the poller.
func (s *SQLite) Watch(fn func(Change)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	if s.cancel == nil {
		var cursor int64
		if err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM kv_changes`).Scan(&cursor); err != nil {
			return nil, fmt.Errorf("read change cursor: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.doneCh = make(chan struct{})
		go s.pollLoop(ctx, cursor, s.doneCh)
	}

	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *SQLite) pollLoop(ctx context.Context, cursor int64, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			next, err := s.pollOnce(ctx, cursor)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("poll medium changes failed", zap.Error(err))
				}
				continue
			}
			cursor = next
		}
	}
}

func (s *SQLite) pollOnce(ctx context.Context, cursor int64) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT seq, key, old_value, new_value, removed, origin
FROM kv_changes
WHERE seq > ?
ORDER BY seq ASC
`, cursor)
	if err != nil {
		return cursor, err
	}

	var changes []Change
	for rows.Next() {
		var (
			seq    int64
			c      Change
			origin string
		)
		if err := rows.Scan(&seq, &c.Key, &c.OldValue, &c.NewValue, &c.Removed, &origin); err != nil {
			rows.Close()
			return cursor, err
		}
		cursor = seq
		if origin != s.origin {
			changes = append(changes, c)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return cursor, err
	}

	cutoff := time.Now().Add(-changeRetention).UTC().UnixMilli()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_changes WHERE changed_at < ?`, cutoff); err != nil {
		s.logger.Debug("prune change log failed", zap.Error(err))
	}

	if len(changes) == 0 {
		return cursor, nil
	}
	s.mu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
	return cursor, nil
}

// Close stops the poller and releases the connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, doneCh := s.cancel, s.doneCh
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-doneCh
	}
	return s.db.Close()
}

func (s *SQLite) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
