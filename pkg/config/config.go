// Package config loads vx settings from defaults, VX_* environment variables and an optional vx.toml.
package config

import (
	"path/filepath"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// FileName is the optional per-project settings file
const FileName = "vx.toml"

// Config describes all configuration options
type Config struct {
	Log struct {
		Level string `default:"info" usage:"Minimum log level (debug, info, warn, error)"`
		JSON  bool   `default:"false" usage:"Output JSONND instead of pretty console messages"`
		Trace bool   `default:"false" usage:"Include stack traces and raw event fields in console output"`
	}
	Pack struct {
		IgnoreDocs bool `default:"false" usage:"Also exclude README, README.md and LICENSE"`
		Progress   bool `default:"true" usage:"Show a progress bar while writing the archive"`
	}
	Web struct {
		PackageManager string `usage:"Force a package manager (npm, yarn or pnpm) instead of detecting it"`
		Install        bool   `default:"true" usage:"Install the web project's dependencies before building"`
		Script         string `default:"build" usage:"package.json script that builds the web UI"`
	}
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader that reads the vx.toml in projectRoot.
// Command line flags are owned by cobra so aconfig never looks at os.Args.
func Loader(projectRoot string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "VX",
		Files:     []string{filepath.Join(projectRoot, FileName)},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load reads and validates the configuration for the given project
func Load(projectRoot string) (*Config, error) {
	cfg, loader := Loader(projectRoot)
	err := loader.Load()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	switch cfg.Web.PackageManager {
	case "", "npm", "yarn", "pnpm":
		// valid
	default:
		return eris.Errorf(`Invalid value for web.package_manager: %s (must be one of npm, yarn or pnpm)`, cfg.Web.PackageManager)
	}

	if cfg.Web.Script == "" || strings.ContainsAny(cfg.Web.Script, "'\n") {
		return eris.Errorf(`Invalid value for web.script: %q`, cfg.Web.Script)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
