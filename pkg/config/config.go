// Package config loads server and client configuration from the
// environment via envconfig.
package config

import (
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// ServerConfig is the gsh-server process configuration, loaded from
// environment variables prefixed GSH_.
type ServerConfig struct {
	ListenAddr       string  `envconfig:"LISTEN_ADDR" default:":1122"`
	CertFile         string  `envconfig:"CERT_FILE" required:"true"`
	KeyFile          string  `envconfig:"KEY_FILE" required:"true"`
	MaxFPS           int     `envconfig:"MAX_FPS" default:"60"`
	ProtocolVersions []uint32 `envconfig:"PROTOCOL_VERSIONS" default:"1"`
	LogLevel         string  `envconfig:"LOG_LEVEL" default:"info"`
}

// ClientConfig is the gsh client process configuration.
type ClientConfig struct {
	Port      int    `envconfig:"PORT" default:"1122"`
	Insecure  bool   `envconfig:"INSECURE" default:"false"`
	IdentityDir string `envconfig:"IDENTITY_DIR"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadServerConfig reads a ServerConfig from the environment, prefixed
// GSH_ (e.g. GSH_LISTEN_ADDR).
func LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("gsh", &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// DefaultGshDir returns $HOME/.gsh, the default location for the
// known-hosts file and identity store.
func DefaultGshDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gsh"), nil
}

// LoadClientConfig reads a ClientConfig from the environment, prefixed
// GSH_.
func LoadClientConfig() (ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("gsh", &cfg); err != nil {
		return ClientConfig{}, err
	}
	if cfg.IdentityDir == "" {
		dir, err := DefaultGshDir()
		if err != nil {
			return ClientConfig{}, err
		}
		cfg.IdentityDir = dir
	}
	return cfg, nil
}
