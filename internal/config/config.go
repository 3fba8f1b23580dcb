// Package config provides configuration types, defaults, and loading for
// chkdeps.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/joshuapare/pkgdep/pkg/types"
)

// Store backends.
const (
	BackendRegistry = "registry"
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// EnvPrefix namespaces environment overrides: CHKDEPS_STORE_BACKEND etc.
const EnvPrefix = "CHKDEPS"

// LocalConfigFile is checked in the working directory before the user
// config directory.
const LocalConfigFile = ".chkdeps.yaml"

// Config is the resolved CLI configuration.
type Config struct {
	Store      StoreConfig   `mapstructure:"store"`
	RootPath   string        `mapstructure:"root_path"`
	IgnoreCase bool          `mapstructure:"ignore_case"`
	Log        LogConfig     `mapstructure:"log"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
}

// StoreConfig selects where the ledger lives.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	JSON    bool   `mapstructure:"json"`
	Dir     string `mapstructure:"dir"`
}

// MetricsConfig configures the metrics textfile.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// DefaultBackend is the native registry on Windows and a YAML file
// elsewhere.
func DefaultBackend() string {
	if runtime.GOOS == "windows" {
		return BackendRegistry
	}
	return BackendYAML
}

// Dir is the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chkdeps"
	}
	return filepath.Join(home, ".config", "chkdeps")
}

// DefaultStorePath is where file-backed stores live when store.path is
// unset.
func DefaultStorePath(backend string) string {
	switch backend {
	case BackendYAML:
		return filepath.Join(Dir(), "ledger.yaml")
	case BackendSQLite:
		return filepath.Join(Dir(), "ledger.db")
	default:
		return ""
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Store:      StoreConfig{Backend: DefaultBackend()},
		RootPath:   types.RootKeyPath,
		IgnoreCase: true,
		Log:        LogConfig{Level: "info"},
	}
}

// Load resolves configuration into v from defaults, the config file and
// the environment, in increasing precedence. Flags bound to v by the
// caller take precedence over all of them. cfgFile, when set, must
// exist. It returns the file actually read, or "" if none was.
func Load(v *viper.Viper, cfgFile string) (Config, string, error) {
	d := Defaults()
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("root_path", d.RootPath)
	v.SetDefault("ignore_case", d.IgnoreCase)
	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config lookup order:
	// 1. --config
	// 2. .chkdeps.yaml (current directory)
	// 3. ~/.config/chkdeps/config.yaml (user config)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(LocalConfigFile); err == nil {
		v.SetConfigFile(LocalConfigFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

// Validate checks the values that cannot be checked by type alone.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendRegistry, BackendYAML, BackendSQLite, BackendMemory:
	default:
		return &types.Error{Kind: types.ErrKindNotSupported, Msg: fmt.Sprintf("store backend %q", c.Store.Backend)}
	}
	if strings.TrimSpace(c.RootPath) == "" {
		return types.FormatError("root_path is empty", nil)
	}
	return nil
}

// StorePath is Store.Path or the backend's default location.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return DefaultStorePath(c.Store.Backend)
}
