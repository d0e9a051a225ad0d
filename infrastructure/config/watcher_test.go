package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	domainconfig "github.com/felixgeelhaar/checkwise/domain/config"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkwise.yaml")
	writeConfig(t, path, "logging:\n  level: info\n")

	changes := make(chan *domainconfig.Config, 1)
	w, err := NewWatcher(path, nil, func(cfg *domainconfig.Config) {
		select {
		case changes <- cfg:
		default:
		}
	}, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "logging:\n  level: debug\n")

	select {
	case cfg := <-changes:
		if cfg.Logging.Level != "debug" {
			t.Errorf("reloaded Logging.Level = %q, want debug", cfg.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_InvalidReloadReportsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkwise.yaml")
	writeConfig(t, path, "logging:\n  level: info\n")

	reloadErrs := make(chan error, 1)
	w, err := NewWatcher(path, nil,
		func(*domainconfig.Config) { t.Error("onChange called for invalid config") },
		WithDebounce(50*time.Millisecond),
		WithOnError(func(err error) {
			select {
			case reloadErrs <- err:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "history:\n  backend: etcd\n")

	select {
	case <-reloadErrs:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
}

func TestWatcher_RequiresCallback(t *testing.T) {
	if _, err := NewWatcher("x.yaml", nil, nil); err == nil {
		t.Error("NewWatcher() accepted nil onChange")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkwise.yaml")
	writeConfig(t, path, "{}")

	w, err := NewWatcher(path, nil, func(*domainconfig.Config) {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Start(); err == nil {
		t.Error("Start() after Close() should fail")
	}
}
