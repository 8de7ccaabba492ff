// Package config loads the server configuration from YAML with
// environment overrides for deploy-time values.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	WAL struct {
		Dir            string `yaml:"dir"`
		SegmentSizeMB  int64  `yaml:"segment_size_mb"`
		SegmentAgeSecs int    `yaml:"segment_age_secs"`
	} `yaml:"wal"`

	Snapshot struct {
		Dir          string `yaml:"dir"`
		IntervalSecs int    `yaml:"interval_secs"`
	} `yaml:"snapshot"`

	Outbox struct {
		Dir string `yaml:"dir"`
	} `yaml:"outbox"`

	Kafka struct {
		Enabled    bool     `yaml:"enabled"`
		Brokers    []string `yaml:"brokers"`
		EventTopic string   `yaml:"event_topic"`
		DepthTopic string   `yaml:"depth_topic"`
	} `yaml:"kafka"`

	Feed struct {
		IntervalMS int `yaml:"interval_ms"`
		Depth      int `yaml:"depth"`
	} `yaml:"feed"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.WAL.Dir = "./data/wal"
	cfg.WAL.SegmentSizeMB = 2
	cfg.WAL.SegmentAgeSecs = 60
	cfg.Snapshot.Dir = "./data/snapshot"
	cfg.Snapshot.IntervalSecs = 30
	cfg.Outbox.Dir = "./data/outbox"
	cfg.Kafka.EventTopic = "book.events"
	cfg.Kafka.DepthTopic = "book.depth"
	cfg.Feed.IntervalMS = 250
	cfg.Feed.Depth = 20
	cfg.Logging.Level = "info"
	return &cfg
}

// Load reads path, applies env overrides, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.WAL.Dir == "" {
		return fmt.Errorf("wal dir is required")
	}
	if c.WAL.SegmentSizeMB <= 0 {
		return fmt.Errorf("wal segment size must be positive")
	}
	if c.Snapshot.IntervalSecs <= 0 {
		return fmt.Errorf("snapshot interval must be positive")
	}
	if c.Feed.IntervalMS <= 0 {
		return fmt.Errorf("feed interval must be positive")
	}
	if c.Feed.Depth <= 0 {
		return fmt.Errorf("feed depth must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka enabled but no brokers configured")
	}
	return nil
}

func (c *Config) SegmentSize() int64 {
	return c.WAL.SegmentSizeMB * 1024 * 1024
}

func (c *Config) SegmentAge() time.Duration {
	return time.Duration(c.WAL.SegmentAgeSecs) * time.Second
}

func (c *Config) SnapshotInterval() time.Duration {
	return time.Duration(c.Snapshot.IntervalSecs) * time.Second
}

func (c *Config) FeedInterval() time.Duration {
	return time.Duration(c.Feed.IntervalMS) * time.Millisecond
}

func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("DEPTHBOOK_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if brokers := os.Getenv("DEPTHBOOK_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
		cfg.Kafka.Enabled = true
	}
	if level := os.Getenv("DEPTHBOOK_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
