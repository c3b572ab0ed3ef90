// Package lockfile reads and writes shell.lock: the reproducibility pins
// that tie a manifest to exact store artifacts. With an up-to-date lock,
// evaluating the same manifest twice yields byte-identical environments,
// with no catalog lookups at all.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the lockfile name, written next to the manifest.
const FileName = "shell.lock"

// ErrNotFound indicates no lockfile exists yet.
var ErrNotFound = errors.New("lockfile not found")

// Pin is one resolved package.
type Pin struct {
	NameVersion string   `yaml:"name_version"`
	StoreHash   string   `yaml:"store_hash"`
	Outputs     []string `yaml:"outputs,omitempty"`
}

// File is a parsed lockfile.
type File struct {
	Version  int            `yaml:"version"`
	Channel  string         `yaml:"channel"`
	Platform string         `yaml:"platform"`
	Packages map[string]Pin `yaml:"packages"`
}

// New returns an empty lockfile for one channel and platform.
func New(channel, platform string) *File {
	return &File{
		Version:  1,
		Channel:  channel,
		Platform: platform,
		Packages: make(map[string]Pin),
	}
}

// Load parses the lockfile at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading lockfile: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing lockfile %s: %w", path, err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported lockfile version %d in %s", f.Version, path)
	}
	if f.Packages == nil {
		f.Packages = make(map[string]Pin)
	}
	return &f, nil
}

// PathIn returns the lockfile path for a manifest directory.
func PathIn(dir string) string {
	return filepath.Join(dir, FileName)
}

// Pin returns the pin for a package, if present.
func (f *File) Pin(name string) (Pin, bool) {
	p, ok := f.Packages[name]
	return p, ok
}

// Set records a pin.
func (f *File) Set(name string, p Pin) {
	f.Packages[name] = p
}

// Write atomically replaces the lockfile at path. Map keys marshal in
// sorted order, so output is deterministic for a given set of pins.
func (f *File) Write(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing lockfile: %w", err)
	}
	return nil
}

// Matches reports whether the lock was produced for the given channel and
// platform. A mismatched lock must be regenerated, not partially reused.
func (f *File) Matches(channel, platform string) bool {
	return f.Channel == channel && f.Platform == platform
}
