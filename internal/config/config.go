// Package config resolves server settings from defaults, an optional JSONC
// config file, environment variables and command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

const (
	// ConfigFileName is the project config file looked up in the working directory.
	ConfigFileName = "signalnoise.json"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Config holds all configuration options.
type Config struct {
	Port     string `json:"port"`
	DataPath string `json:"data_path"`
	Backend  string `json:"backend"`

	// Source is the config file that was loaded, empty if none.
	Source string `json:"-"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Port:     "8080",
		DataPath: "./data/tasks_data.json",
		Backend:  BackendFile,
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	Args    []string          // command-line arguments, without the program name
	Env     map[string]string // environment variables
	WorkDir string            // directory searched for ConfigFileName
	Output  io.Writer         // usage and flag errors; discarded if nil
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Config file (--config, or signalnoise.json in WorkDir if it exists)
// 3. Environment (PORT, DATA_PATH, STORAGE_BACKEND)
// 4. Flags
//
// A --help request is reported as flag.ErrHelp.
func Load(input LoadInput) (Config, error) {
	fs := flag.NewFlagSet("signalnoise", flag.ContinueOnError)
	if input.Output != nil {
		fs.SetOutput(input.Output)
	} else {
		fs.SetOutput(io.Discard)
	}

	configPath := fs.StringP("config", "c", "", "path to a JSONC config file")
	port := fs.StringP("port", "p", "", "port to listen on")
	dataPath := fs.String("data", "", "path of the task data file or database")
	backend := fs.String("backend", "", "storage backend: file or sqlite")

	if err := fs.Parse(input.Args); err != nil {
		return Config{}, err
	}

	cfg := Default()

	fileCfg, source, err := loadConfigFile(input.WorkDir, *configPath)
	if err != nil {
		return Config{}, err
	}
	cfg = merge(cfg, fileCfg)
	cfg.Source = source

	cfg = merge(cfg, Config{
		Port:     input.Env["PORT"],
		DataPath: input.Env["DATA_PATH"],
		Backend:  input.Env["STORAGE_BACKEND"],
	})

	cfg = merge(cfg, Config{
		Port:     *port,
		DataPath: *dataPath,
		Backend:  *backend,
	})

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	n, err := strconv.Atoi(c.Port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: port must be a number between 1 and 65535, got %q", ErrConfigInvalid, c.Port)
	}

	if c.DataPath == "" {
		return fmt.Errorf("%w: data_path cannot be empty", ErrConfigInvalid)
	}

	if c.Backend != BackendFile && c.Backend != BackendSQLite {
		return fmt.Errorf("%w: backend must be %q or %q, got %q", ErrConfigInvalid, BackendFile, BackendSQLite, c.Backend)
	}

	return nil
}

// loadConfigFile loads an explicit config file, which must exist, or the
// default project file, which may be absent.
func loadConfigFile(workDir, explicit string) (Config, string, error) {
	path := explicit
	mustExist := explicit != ""

	if !mustExist {
		path = filepath.Join(workDir, ConfigFileName)
	} else if !filepath.IsAbs(path) && workDir != "" {
		path = filepath.Join(workDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, explicit)
			}
			return Config{}, "", nil
		}
		return Config{}, "", fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, path, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Port != "" {
		base.Port = overlay.Port
	}

	if overlay.DataPath != "" {
		base.DataPath = overlay.DataPath
	}

	if overlay.Backend != "" {
		base.Backend = overlay.Backend
	}

	return base
}
