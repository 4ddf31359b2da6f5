package medium

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend      string // "memory", "file" or "sqlite"
	DataDir      string
	PollInterval time.Duration
	VaultKey     []byte // optional, 32 bytes
	Logger       *zap.Logger
}

// SQLiteFileName is the database file used by the sqlite backend inside DataDir.
const SQLiteFileName = "medium.db"

// Open initializes the medium described by opts.
// It returns the Durable interface, so callers don't care which backend is in use.
func Open(opts Options) (Durable, error) {
	var m Durable
	switch opts.Backend {
	case "memory":
		m = NewShared().Tab()
	case "", "file":
		f, err := OpenFile(opts.DataDir, opts.Logger)
		if err != nil {
			return nil, err
		}
		m = f
	case "sqlite":
		s, err := OpenSQLite(filepath.Join(opts.DataDir, SQLiteFileName), opts.PollInterval, opts.Logger)
		if err != nil {
			return nil, err
		}
		m = s
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}

	if len(opts.VaultKey) > 0 {
		return Seal(m, opts.VaultKey), nil
	}
	return m, nil
}
