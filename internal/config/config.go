// Package config loads the tool configuration: where the store lives, which
// binary cache and channel registry to talk to, and the default channel.
// Values come from ~/.config/shed/config.yaml, overridable per flag.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the shed tool configuration.
type Config struct {
	// StoreRoot is the local package store directory.
	StoreRoot string `koanf:"store_root"`

	// CacheDir holds synced channel catalogs and other local state.
	CacheDir string `koanf:"cache_dir"`

	// CacheURL is the binary cache serving narinfo and NAR archives.
	CacheURL string `koanf:"cache_url"`

	// ChannelURL is the registry serving channel catalogs.
	ChannelURL string `koanf:"channel_url"`

	// Channel is the default package set, used when a manifest does not
	// name one.
	Channel string `koanf:"channel"`

	// LogLevel sets the zerolog level ("debug", "info", ...).
	LogLevel string `koanf:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		StoreRoot:  defaultDataPath("store"),
		CacheDir:   defaultDataPath("cache"),
		CacheURL:   "https://cache.shed.sh",
		ChannelURL: "https://channels.shed.sh",
		Channel:    "stable",
		LogLevel:   "info",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "shed", "config.yaml")
	}
	return ""
}

// Load reads the config file at path on top of the defaults. An empty path
// means the default location; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(kfile.Provider(path), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultDataPath(sub string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "shed", sub)
	}
	return filepath.Join(home, ".local", "share", "shed", sub)
}
