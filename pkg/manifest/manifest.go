// Package manifest loads and validates the declarative shell manifest.
//
// A manifest describes the development environment of one project: which
// package set (channel) to resolve against, which packages must be present
// at build and run time, which tools are needed only to compile, and how
// environment variables are derived from the resolved package paths.
//
// Manifests are written as shell.yaml (YAML) or shell.json (JSONC; comments
// and trailing commas are stripped with github.com/tidwall/jsonc before
// parsing).
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileNames are the manifest file names probed by Find, in priority order.
var FileNames = []string{"shell.yaml", "shell.yml", "shell.json"}

// Manifest is the parsed shell manifest.
type Manifest struct {
	// Channel selects the package set to resolve against. Empty means the
	// configured default channel.
	Channel string `yaml:"channel" json:"channel"`

	// Packages are the build inputs: packages whose libraries, headers and
	// plugins are needed to build and run the project.
	Packages []string `yaml:"packages" json:"packages"`

	// Toolchain are the native build inputs: packages needed only while
	// compiling (compilers, pkg-config). Only their bin directories enter
	// PATH; they contribute nothing to library search paths.
	Toolchain []string `yaml:"toolchain" json:"toolchain"`

	// Env derives additional environment variables from resolved package
	// paths. Entries are evaluated in declaration order.
	Env EnvEntries `yaml:"env" json:"env"`

	// Hook is an optional shell fragment run after activation.
	Hook string `yaml:"hook" json:"hook"`

	// Dir is the directory the manifest was loaded from. Not serialized.
	Dir string `yaml:"-" json:"-"`
}

// EnvEntry is one name → value-template pair from the env section.
type EnvEntry struct {
	Name  string
	Value string
}

// EnvEntries preserves the declaration order of the env section, which a
// plain map would lose.
type EnvEntries []EnvEntry

// UnmarshalYAML decodes a YAML mapping node in document order.
func (e *EnvEntries) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("env must be a mapping")
	}
	entries := make(EnvEntries, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name, value string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("env key: %w", err)
		}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		entries = append(entries, EnvEntry{Name: name, Value: value})
	}
	*e = entries
	return nil
}

// MarshalYAML encodes the entries back into a mapping, preserving order.
func (e EnvEntries) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range e {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: entry.Value},
		)
	}
	return node, nil
}

// UnmarshalJSON walks the object tokens so entry order survives decoding.
func (e *EnvEntries) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("env must be an object")
	}
	var entries EnvEntries
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("env key must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		entries = append(entries, EnvEntry{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = entries
	return nil
}

// Load reads and parses a manifest file. The format is chosen by extension:
// .yaml/.yml parse as YAML, .json as JSONC.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest not found: %s", path)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	m.Dir = filepath.Dir(abs)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Find walks from startDir toward the filesystem root looking for a
// manifest file, and returns the first match.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no shell manifest found in %s or any parent directory", startDir)
		}
		dir = parent
	}
}

// Inputs returns all declared package names: build inputs followed by the
// toolchain.
func (m *Manifest) Inputs() []string {
	out := make([]string, 0, len(m.Packages)+len(m.Toolchain))
	out = append(out, m.Packages...)
	out = append(out, m.Toolchain...)
	return out
}

// Declares reports whether name appears in packages or toolchain.
func (m *Manifest) Declares(name string) bool {
	for _, p := range m.Packages {
		if p == name {
			return true
		}
	}
	for _, p := range m.Toolchain {
		if p == name {
			return true
		}
	}
	return false
}
