// Package catalog reads channel catalogs: TOML files mapping canonical
// package names to the per-platform artifacts of one package set.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/shedtool/shed/pkg/platform"
)

var (
	// ErrPackageNotFound indicates the channel has no entry for the package.
	ErrPackageNotFound = errors.New("package not found in channel")

	// ErrPlatformNotSupported indicates the package exists but has no
	// artifact for the requested platform.
	ErrPlatformNotSupported = errors.New("package not available for platform")
)

// Artifact is one resolved package build for a single platform.
type Artifact struct {
	// StoreHash addresses the artifact in the binary cache and names its
	// store entry.
	StoreHash string `toml:"store_hash"`

	// NameVersion is the human-readable identity, e.g. "openssl-3.0.13".
	NameVersion string `toml:"name_version"`

	// Outputs lists the artifact outputs merged into the store entry
	// (e.g. out, dev, lib).
	Outputs []string `toml:"outputs"`
}

// Entry is one package in a channel catalog.
type Entry struct {
	Name        string              `toml:"name"`
	Description string              `toml:"description,omitempty"`
	Platforms   map[string]Artifact `toml:"platforms"`
}

// Catalog is a parsed channel catalog.
type Catalog struct {
	Version  int              `toml:"version"`
	Channel  string           `toml:"channel"`
	Packages map[string]Entry `toml:"packages"`
}

// Load parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("channel catalog not found at %s, run sync first", path)
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var c Catalog
	if err := decode(data, &c); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

func decode(data []byte, c *Catalog) error {
	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("parsing catalog: %w", err)
	}
	if c.Version != 1 {
		return fmt.Errorf("unsupported catalog version %d", c.Version)
	}
	return nil
}

// Path returns the local cache location for a channel's catalog.
func Path(cacheDir, channel string) string {
	return filepath.Join(cacheDir, "channels", channel+".toml")
}

// Lookup returns the catalog entry for a package.
func (c *Catalog) Lookup(name string) (*Entry, error) {
	entry, ok := c.Packages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (channel %s)", ErrPackageNotFound, name, c.Channel)
	}
	return &entry, nil
}

// Resolve returns the artifact for a package on the given platform.
func (c *Catalog) Resolve(name string, p platform.Platform) (*Artifact, error) {
	entry, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	artifact, ok := entry.Platforms[p.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s (channel %s)", ErrPlatformNotSupported, name, p, c.Channel)
	}
	if artifact.StoreHash == "" {
		return nil, fmt.Errorf("catalog entry %s has no store hash for %s", name, p)
	}
	return &artifact, nil
}

// Names returns all package names in the catalog, unsorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Packages))
	for name := range c.Packages {
		out = append(out, name)
	}
	return out
}
