// Package config loads weft runtime configuration from a TOML file and
// environment variables, exposing typed structs for all sections.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// DefaultSearchTool is the default discovery sentinel call name.
const DefaultSearchTool = "tool_search"

// Config is the runtime configuration loaded from defaults, config.toml, and
// environment variables.
type Config struct {
	// HomeDir is runtime-resolved from WEFT_HOME and not read from config.
	HomeDir string       `mapstructure:"-"`
	Expand  ExpandConfig `mapstructure:"expand"`
	Log     LogConfig    `mapstructure:"log"`
}

// ExpandConfig configures the expansion engine defaults used by the CLI.
type ExpandConfig struct {
	// AllowedTools seeds the tool allow-list. Empty means unrestricted.
	AllowedTools []string `mapstructure:"allowed_tools"`
	// SearchTool is the call name whose output can extend the allow-list.
	SearchTool string `mapstructure:"search_tool"`
}

// LogConfig controls process logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

var defaultConfig = Config{
	Expand: ExpandConfig{
		AllowedTools: nil,
		SearchTool:   DefaultSearchTool,
	},
	Log: LogConfig{
		Level: "warn",
	},
}

// homeDir returns the weft home directory. Uses the WEFT_HOME env var if set,
// otherwise ~/.weft.
func homeDir() (string, error) {
	if dir := os.Getenv("WEFT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".weft"), nil
}

// Load merges hardcoded defaults and config file values in that order. The
// config file is always at $WEFT_HOME/config.toml; a missing file is not an
// error.
func Load() (*Config, error) {
	home, err := homeDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filepath.Join(home, "config.toml"))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		expandEnvStringHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = decodeHook
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = home
	if cfg.Expand.SearchTool == "" {
		cfg.Expand.SearchTool = DefaultSearchTool
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("expand.allowed_tools", defaultConfig.Expand.AllowedTools)
	v.SetDefault("expand.search_tool", defaultConfig.Expand.SearchTool)
	v.SetDefault("log.level", defaultConfig.Log.Level)
}

// expandEnvStringHook expands $VAR references in string config values so
// secrets and paths can stay out of the file itself.
func expandEnvStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return os.ExpandEnv(value), nil
	}
}
