// Package testutil provides shared test helpers for building in-memory
// note services.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/starford/quire/internal/encryption"
	"github.com/starford/quire/internal/noteservice"
	"github.com/starford/quire/internal/notestore"
	"github.com/starford/quire/internal/persistence"
	"github.com/starford/quire/internal/storage"
)

// FastParams are Argon2 costs low enough for unit tests.
func FastParams() encryption.Params {
	return encryption.Params{Time: 1, MemoryKiB: 64, Threads: 1}
}

// QuietLogger discards all output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestService creates a note service over an empty in-memory slot and
// returns both.
func TestService(t *testing.T, opts ...noteservice.Option) (*noteservice.Service, *storage.MemorySlot) {
	t.Helper()
	slot := storage.NewMemorySlot("test-notes")
	logger := QuietLogger()
	store := notestore.New(persistence.New(slot, logger), notestore.WithLogger(logger))
	opts = append([]noteservice.Option{noteservice.WithLogger(logger)}, opts...)
	return noteservice.New(store, encryption.NewService(FastParams()), opts...), slot
}
