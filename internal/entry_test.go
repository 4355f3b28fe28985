package internal

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/quire/internal/noteservice"
)

func testConfig(t *testing.T, driver string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Encryption.Time = 1
	cfg.Encryption.MemoryKiB = 64
	cfg.Encryption.Threads = 1
	cfg.Storage.Driver = driver
	cfg.Storage.Path = t.TempDir()
	if driver == DriverSQLite {
		cfg.Storage.Path = filepath.Join(cfg.Storage.Path, "notes.db")
		cfg.Storage.Watch = false
	}
	return cfg
}

func openApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	a, err := Open(WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestOpen_RequiresConfig(t *testing.T) {
	if _, err := Open(WithLogOutput(io.Discard)); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestOpen_PersistsAcrossRestarts(t *testing.T) {
	for _, driver := range []string{DriverFile, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			ctx := context.Background()

			first := openApp(t, cfg)
			created, err := first.Service.CreateNote(ctx, noteservice.Draft{Title: "kept", Content: "<p>body</p>"})
			if err != nil {
				t.Fatalf("CreateNote: %v", err)
			}
			if err := first.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			second := openApp(t, cfg)
			got, err := second.Service.GetNote(ctx, created.ID)
			if err != nil {
				t.Fatalf("GetNote after reopen: %v", err)
			}
			if got.Title != "kept" || got.Content != "<p>body</p>" {
				t.Errorf("reopened note = %+v", got)
			}
		})
	}
}

func TestWatch_ReloadsExternalWrites(t *testing.T) {
	cfg := testConfig(t, DriverFile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watched := openApp(t, cfg)
	reloaded := make(chan struct{}, 1)
	watched.Service.SetEventCallback(func(kind, _ string) {
		if kind == noteservice.EventReloaded {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	})
	done := make(chan error, 1)
	go func() { done <- watched.watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	writer := openApp(t, cfg)
	created, err := writer.Service.CreateNote(context.Background(), noteservice.Draft{Title: "from elsewhere"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after external write")
	}
	if _, err := watched.Service.GetNote(context.Background(), created.ID); err != nil {
		t.Errorf("external note not visible: %v", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned %v", err)
	}
}
