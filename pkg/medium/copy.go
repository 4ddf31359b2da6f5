package medium

import (
	"errors"
	"fmt"
)

// Copy writes every key of src into dst. Keys already in dst that src lacks are left alone.
// This works for:
// - file -> sqlite (moving a deployment onto the shared database)
// - sqlite -> file (offline backup)
func Copy(src Medium, dst Writer) (int, error) {
	list, err := src.Keys()
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}

	copied := 0
	for _, k := range list {
		val, err := src.Get(k)
		if errors.Is(err, ErrKeyNotFound) {
			// Removed between listing and reading
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("failed to read key %s: %w", k, err)
		}
		if err := dst.Set(k, val); err != nil {
			return copied, fmt.Errorf("failed to set key %s in destination: %w", k, err)
		}
		copied++
	}
	return copied, nil
}
