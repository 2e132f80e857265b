package repository

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	openGroup singleflight.Group
	openMu    sync.Mutex
	opened    = map[string]*Store{}
)

// Open returns the process-wide store for cfg.Path. Concurrent callers share one in-flight
// initialization and then the same handle. A failed initialization is not remembered.
// The initialization ignores cancellation of ctx since other callers may be waiting on it.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	key, err := filepath.Abs(cfg.Path)
	if err != nil {
		key = filepath.Clean(cfg.Path)
	}
	if s := lookup(key); s != nil {
		return s, nil
	}
	v, err, shared := openGroup.Do(key, func() (any, error) {
		if s := lookup(key); s != nil {
			return s, nil
		}
		s, err := New(context.WithoutCancel(ctx), cfg, logger)
		if err != nil {
			return nil, err
		}
		s.onClose = func() {
			openMu.Lock()
			if opened[key] == s {
				delete(opened, key)
			}
			openMu.Unlock()
		}
		openMu.Lock()
		opened[key] = s
		openMu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Joined in-flight store initialization", slog.String("path", key))
	}
	return v.(*Store), nil
}

func lookup(key string) *Store {
	openMu.Lock()
	defer openMu.Unlock()
	return opened[key]
}
