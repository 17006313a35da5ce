package dbx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/syssam/dbx/dialect"
)

// Config holds the broker configuration for a single connection.
type Config struct {
	// Dialect is one of the dialect package constants.
	Dialect string `yaml:"dialect"`

	// DSN is the driver-specific data source name.
	DSN string `yaml:"dsn"`

	// MaxOpenConns caps the underlying pool. Zero means the driver default.
	MaxOpenConns int `yaml:"max_open_conns"`

	// SlowThreshold marks queries slower than this duration in the stats
	// driver. Zero disables slow-query tracking.
	SlowThreshold time.Duration `yaml:"slow_threshold"`

	// SchemaCacheTTL bounds how long cached table metadata is served.
	// Zero means entries never expire.
	SchemaCacheTTL time.Duration `yaml:"schema_cache_ttl"`

	// DisableSavepoints flattens nested transactions even on backends that
	// support savepoints. See the transaction manager for the implications.
	DisableSavepoints bool `yaml:"disable_savepoints"`
}

// Validate checks the configuration for use.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return NewConfigurationError("config", fmt.Errorf("dsn is required"))
	}
	switch c.Dialect {
	case dialect.MySQL, dialect.Postgres, dialect.Oracle, dialect.SQLite:
		return nil
	default:
		return NewConfigurationError("config", fmt.Errorf("unknown dialect %q", c.Dialect))
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigurationError("load config", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, NewConfigurationError("load config", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WatchConfig watches a configuration file and invokes onChange with the
// re-loaded configuration whenever it is rewritten. Invalid intermediate
// states are logged and skipped. The returned stop function releases the
// watcher.
func WatchConfig(path string, onChange func(*Config)) (stop func() error, err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewConfigurationError("watch config", err)
	}
	// Watch the directory: editors replace files rather than write in place.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, NewConfigurationError("watch config", err)
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				c, err := LoadConfig(path)
				if err != nil {
					slog.Warn("dbx: ignoring invalid config change", "path", path, "err", err)
					continue
				}
				onChange(c)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("dbx: config watcher error", "path", path, "err", err)
			}
		}
	}()
	return w.Close, nil
}
