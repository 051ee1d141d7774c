package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreCurrent(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9191"
`)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := store.Current().Server.ListenAddress; got != "127.0.0.1:9191" {
		t.Fatalf("ListenAddress = %q", got)
	}
}

func TestStoreInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  logging:
    level: shouty
`)

	if _, err := NewStore(path); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestStoreReloadsOnChange(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9191"
`)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Watch(ctx) //nolint:errcheck

	// Give the watcher a moment to install.
	time.Sleep(100 * time.Millisecond)

	update := []byte(`
server:
  listen_address: "127.0.0.1:9292"
`)
	if err := os.WriteFile(path, update, 0o600); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		return store.Current().Server.ListenAddress == "127.0.0.1:9292"
	}, "reload did not pick up new listen address")
}

func TestStoreKeepsPreviousOnBadReload(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:9191"
`)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Watch(ctx) //nolint:errcheck

	time.Sleep(100 * time.Millisecond)

	// Break the file, then fix it with a different address. The broken
	// intermediate state must never be observable.
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatalf("failed to write broken config: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	if got := store.Current().Server.ListenAddress; got != "127.0.0.1:9191" {
		t.Fatalf("broken reload replaced config: ListenAddress = %q", got)
	}

	fixed := []byte(`
server:
  listen_address: "127.0.0.1:9393"
`)
	if err := os.WriteFile(path, fixed, 0o600); err != nil {
		t.Fatalf("failed to fix config: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		return store.Current().Server.ListenAddress == "127.0.0.1:9393"
	}, "watcher did not recover after a bad reload")
}

func TestStoreIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(`
server:
  listen_address: "127.0.0.1:9191"
`), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Watch(ctx) //nolint:errcheck

	time.Sleep(100 * time.Millisecond)

	sibling := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(sibling, []byte("server:\n  listen_address: \"127.0.0.1:1\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write sibling: %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	if got := store.Current().Server.ListenAddress; got != "127.0.0.1:9191" {
		t.Fatalf("sibling write changed config: ListenAddress = %q", got)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}
