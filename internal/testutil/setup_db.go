package testutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"financeflow/internal/repository"

	"github.com/stretchr/testify/require"
)

var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// StoreConfig returns a config for a fresh database file under t.TempDir(). Background
// workers are off; tests that need them set the intervals.
func StoreConfig(t *testing.T) repository.Config {
	t.Helper()
	return repository.Config{
		Path:        filepath.Join(t.TempDir(), "financeflow.db"),
		BusyTimeout: 5 * time.Second,
	}
}

// SetupTestStore opens an independent store in a temp dir and returns it with its teardown.
func SetupTestStore(t *testing.T) (*repository.Store, func()) {
	t.Helper()
	store, err := repository.New(context.Background(), StoreConfig(t), Logger)
	require.NoError(t, err)
	return store, func() {
		store.Close()
	}
}
