package medium

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// ReadJSON decodes the value at key into target.
// Missing and corrupt values both report false; corrupt ones are logged.
func ReadJSON(r Reader, key string, target any, logger *zap.Logger) bool {
	raw, err := r.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}
	if err != nil {
		if logger != nil {
			logger.Warn("read failed, treating as absent", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if raw == "" || raw == "null" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		if logger != nil {
			logger.Warn("corrupt value, treating as absent", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// WriteJSON encodes v and overwrites key. Write failures are returned to the caller.
func WriteJSON(w Writer, key string, v any) error {
	bytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.Set(key, string(bytes))
}

// Convert re-shapes v into T through a JSON round trip.
// If v already is a T it is returned as is.
func Convert[T any](v any) (T, error) {
	var target T
	if t, ok := v.(T); ok {
		return t, nil
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(bytes, &target)
	return target, err
}
