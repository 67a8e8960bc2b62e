package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/skelgraph/pkg/cache"
	errs "github.com/matzehuels/skelgraph/pkg/errors"
	"github.com/matzehuels/skelgraph/pkg/server"
	"github.com/matzehuels/skelgraph/pkg/skeleton/simplify"
)

const configFileName = appName + ".toml"

// Config is the contents of skelgraph.toml.
type Config struct {
	Clean  simplify.Options `toml:"clean"`
	Join   JoinConfig       `toml:"join"`
	Export ExportConfig     `toml:"export"`
	Cache  cache.Config     `toml:"cache"`
	Server server.Config    `toml:"server"`
}

// JoinConfig holds the defaults for "edit join".
type JoinConfig struct {
	// Displacement is the arc length trimmed off each joined edge.
	Displacement float64 `toml:"displacement"`
}

// ExportConfig holds output defaults.
type ExportConfig struct {
	// Scale overrides the scale written on export. Zero keeps the input's.
	Scale float64 `toml:"scale"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Clean: simplify.Options{
			MinPoints:    3,
			PruneDegrees: []int{0},
		},
		Cache: cache.Config{Backend: cache.BackendFile},
	}
}

// Validate checks the option values.
func (c Config) Validate() error {
	if err := c.Clean.Validate(); err != nil {
		return err
	}
	if err := errs.ValidateThreshold("join.displacement", c.Join.Displacement); err != nil {
		return err
	}
	if c.Export.Scale != 0 {
		if err := errs.ValidateScale(c.Export.Scale); err != nil {
			return err
		}
	}
	if c.Cache.Namespace != "" {
		if err := errs.ValidateCacheKey(c.Cache.Namespace); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "cache.namespace")
		}
	}
	return nil
}

// loadConfig reads path over DefaultConfig. A missing file is not an error
// unless the path was given explicitly. Unknown keys are logged.
func loadConfig(path string, explicit bool, logger *log.Logger) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return DefaultConfig(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warn("unknown config keys", "file", path, "keys", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	logger.Debug("loaded config", "file", path)
	return cfg, nil
}

// configPath returns the default config file (~/.config/skelgraph/skelgraph.toml).
func configPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}
