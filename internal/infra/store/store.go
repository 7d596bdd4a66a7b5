// Package store provides the key-value stores used to persist DJ state.
package store

import (
	"context"
	"regexp"

	"github.com/cockroachdb/errors"

	"github.com/osa030/vibebox/internal/infra/config"
)

// ErrInvalidKey is returned for keys that are empty or not file-name safe.
var ErrInvalidKey = errors.New("invalid store key")

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store is a string-keyed blob store. Implementations are safe for concurrent use.
type Store interface {
	// Load returns the value stored under key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Save stores data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error
	// Close releases resources held by the store.
	Close() error
}

// New creates the store selected by cfg.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(), nil
	case "file", "":
		return NewFile(cfg.Path)
	case "sqlite":
		return NewSQLite(cfg.Path)
	default:
		return nil, errors.Newf("unsupported store type: %s", cfg.Type)
	}
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || !keyPattern.MatchString(key) {
		return errors.Wrapf(ErrInvalidKey, "key %q", key)
	}
	return nil
}
