package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.SegmentSize() != 2*1024*1024 {
		t.Fatalf("segment size = %d", cfg.SegmentSize())
	}
	if cfg.FeedInterval() != 250*time.Millisecond {
		t.Fatalf("feed interval = %v", cfg.FeedInterval())
	}
	if cfg.Kafka.Enabled {
		t.Fatal("kafka must default to disabled")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9090"
wal:
  dir: /tmp/wal
  segment_size_mb: 8
snapshot:
  interval_secs: 5
feed:
  depth: 10
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.WAL.SegmentSizeMB != 8 {
		t.Fatalf("segment size mb = %d", cfg.WAL.SegmentSizeMB)
	}
	if cfg.SnapshotInterval() != 5*time.Second {
		t.Fatalf("snapshot interval = %v", cfg.SnapshotInterval())
	}
	// Untouched keys keep their defaults.
	if cfg.Feed.IntervalMS != 250 {
		t.Fatalf("feed interval ms = %d", cfg.Feed.IntervalMS)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEPTHBOOK_ADDR", ":7070")
	t.Setenv("DEPTHBOOK_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("DEPTHBOOK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("kafka = %+v", cfg.Kafka)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty wal dir", func(c *Config) { c.WAL.Dir = "" }},
		{"zero segment size", func(c *Config) { c.WAL.SegmentSizeMB = 0 }},
		{"zero snapshot interval", func(c *Config) { c.Snapshot.IntervalSecs = 0 }},
		{"zero feed depth", func(c *Config) { c.Feed.Depth = 0 }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
