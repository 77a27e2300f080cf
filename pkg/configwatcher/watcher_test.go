package configwatcher

import (
	"assessment_backend/internal/config"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	write := func(seconds int) {
		body := "engine:\n  store: memory\n  regrade_cooldown_seconds: " + strconv.Itoa(seconds) + "\n"
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(5)

	reloaded := make(chan *config.Config, 4)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(path, func(cfg *config.Config) { reloaded <- cfg }, stop)
	}()

	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(1500 * time.Millisecond)
	defer tick.Stop()
	write(30)

	for {
		select {
		case cfg := <-reloaded:
			if got := cfg.Engine.RegradeCooldown(); got != 30*time.Second {
				t.Fatalf("reloaded cooldown = %v, want 30s", got)
			}
			close(stop)
			if err := <-done; err != nil {
				t.Fatalf("watcher returned %v", err)
			}
			return
		case <-tick.C:
			// the first write can land before the watcher is registered
			write(30)
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)
	err := WatchConfig(filepath.Join(t.TempDir(), "missing", "config.yaml"), func(*config.Config) {}, stop)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
