// Package config loads the tool's configuration. Precedence, lowest to
// highest: built-in defaults, the config file (TOML or YAML, selected by
// extension), environment variables, command-line flags (applied by the
// CLI layer).
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/errors"
	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/paths"
)

// Environment variable names. SIR_PASSWORD is read by the CLI layer only
// and never stored in a Config struct that might get logged.
const (
	EnvAccount  = "SIR_ACCOUNT"
	EnvUseQR    = "SIR_USE_QR"
	EnvPassword = "SIR_PASSWORD"
)

// Config is the tool's merged configuration.
type Config struct {
	// InstallPath overrides Steam install detection. Empty means detect.
	InstallPath string `toml:"install_path" yaml:"installPath"`

	// Account is the account name for the credentials flow.
	Account string `toml:"account" yaml:"account"`

	// UseQR selects the device-link flow instead of password login.
	UseQR bool `toml:"use_qr" yaml:"useQR"`

	// PlainOutput disables styled terminal output.
	PlainOutput bool `toml:"plain_output" yaml:"plainOutput"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{}
}

// Load reads the configuration. An explicit path must exist; with no
// path, the first of config.toml / config.yaml / config.yml in the
// tool's config dir is used, and absence of all three just yields the
// defaults.
func Load(explicitPath string) (Config, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		path = findConfigFile()
		if path == "" {
			cfg.applyEnv()
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "reading %s", path)
	}

	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, errors.ErrConfigParse, "parsing %s", path)
		}
	default:
		return cfg, errors.Newf(errors.ErrConfigLoad, "unsupported config format %q", filepath.Ext(path))
	}

	cfg.applyEnv()
	return cfg, nil
}

func findConfigFile() string {
	dir := paths.ConfigDir()
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAccount); v != "" {
		c.Account = v
	}
	if v := os.Getenv(EnvUseQR); v == "1" || v == "true" {
		c.UseQR = true
	}
}
