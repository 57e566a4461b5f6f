package quick

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quickkv/quickkv/lib/kv"
	"github.com/quickkv/quickkv/lib/logging"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// defaultPath is used when no backing file location is configured.
	defaultPath = "db.qkv"

	// fileExt is the extension every backing file is normalized to.
	fileExt = ".qkv"

	// defaultSweepInterval is the default time between two background
	// expiration sweeps.
	defaultSweepInterval = 100 * time.Millisecond
)

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// LogConfig controls the engine's own logging. It is presentation-only and
// has no influence on the storage contract.
type LogConfig struct {
	Enabled bool   // log to stdout (default: off)
	Level   string // one of debug, info, warn, error (default: info)
}

// Config configures an engine instance during construction.
type Config struct {
	// Path is the file location of the backing record log. It is normalized
	// to the ".qkv" extension and missing parent directories are created.
	// Ignored by the memory runtime. Default: "db.qkv".
	Path string

	// Runtime selects disk-backed (cache + durable log) or memory-only
	// operation. Default: kv.RuntimeDisk.
	Runtime kv.Runtime

	// DefaultTTL is applied to writes that don't specify an explicit TTL.
	// Zero means entries never expire unless a TTL is given per write.
	DefaultTTL time.Duration

	// SweepInterval is the time between two background expiration sweeps.
	// Default: 100ms.
	SweepInterval time.Duration

	// Logging configures the engine logger.
	Logging LogConfig
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Path:          defaultPath,
		Runtime:       kv.RuntimeDisk,
		SweepInterval: defaultSweepInterval,
	}
}

// withDefaults fills in zero values and resolves the configured logger.
func (c Config) withDefaults() (Config, logging.ILogger, error) {
	if c.Path == "" {
		c.Path = defaultPath
	}
	if c.Runtime == "" {
		c.Runtime = kv.RuntimeDisk
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = defaultSweepInterval
	}

	log := logging.NewNopLogger()
	if c.Logging.Enabled {
		level := logging.LevelInfo
		if c.Logging.Level != "" {
			var err error
			level, err = logging.ParseLevel(c.Logging.Level)
			if err != nil {
				return c, nil, err
			}
		}
		log = logging.NewLogger("engine", level)
	}

	return c, log, nil
}

// --------------------------------------------------------------------------
// Path Handling
// --------------------------------------------------------------------------

// normalizePath makes a configured path usable as a backing file location:
// a directory path gets the default file name appended, a missing or foreign
// extension is normalized to ".qkv".
func normalizePath(path string) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/") {
		return path + defaultPath
	}

	base := filepath.Base(path)
	switch ext := filepath.Ext(base); {
	case ext == "":
		return path + fileExt
	case ext != fileExt:
		return strings.TrimSuffix(path, ext) + fileExt
	default:
		return path
	}
}

// preparePath normalizes the path and creates missing parent directories.
func preparePath(path string) (string, error) {
	normalized := normalizePath(path)

	if dir := filepath.Dir(normalized); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create parent directories for %s: %w", normalized, err)
		}
	}

	return normalized, nil
}
