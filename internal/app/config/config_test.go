package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghalamif/SensorFlow/internal/adapters/shm"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
poll:
  interval_ms: 250
segment:
  dir: /tmp/shm
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Poll.Interval() != 250*time.Millisecond {
		t.Fatalf("expected interval 250ms, got %s", cfg.Poll.Interval())
	}
	if cfg.Segment.Name != shm.DefaultName {
		t.Fatalf("expected default segment name, got %s", cfg.Segment.Name)
	}
	if cfg.Segment.Dir != "/tmp/shm" {
		t.Fatalf("expected configured dir, got %s", cfg.Segment.Dir)
	}
	if cfg.Metrics.Addr != ":9120" || !cfg.Metrics.On() {
		t.Fatalf("expected metrics enabled on :9120, got %+v", cfg.Metrics)
	}
	pol := cfg.Dispatch.Policy()
	if pol.QueueLen != 16 || pol.OnQueueFull != ports.DropOldest {
		t.Fatalf("unexpected dispatch policy %+v", pol)
	}
	if len(cfg.Producer.ProcessNames) != 3 {
		t.Fatalf("expected default producer names, got %v", cfg.Producer.ProcessNames)
	}
	if cfg.Layout.Policy().StrictVersion {
		t.Fatalf("strict version must default to off")
	}
}

func TestLoadSyncDispatchAndDisabledMetrics(t *testing.T) {
	path := writeConfig(t, `
dispatch:
  mode: sync
metrics:
  enabled: false
  addr: ""
layout:
  strict_version: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Dispatch.Policy().Queued() {
		t.Fatalf("sync mode must not queue")
	}
	if cfg.Metrics.On() {
		t.Fatalf("metrics should be disabled")
	}
	if !cfg.Layout.Policy().StrictVersion {
		t.Fatalf("strict version should be on")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative interval": "poll:\n  interval_ms: -5\n",
		"bad mode":          "dispatch:\n  mode: async\n",
		"bad policy":        "dispatch:\n  on_queue_full: block\n",
		"bad log format":    "log:\n  format: xml\n",
		"bad segment name":  "segment:\n  name: a/b\n",
		"malformed yaml":    "poll: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Poll.Interval() != DefaultInterval {
		t.Fatalf("expected default interval, got %s", cfg.Poll.Interval())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("Load must fail on a missing file")
	}
}
