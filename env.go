// env.go
package shed

import (
	"fmt"

	"github.com/shedtool/shed/pkg/envdef"
	"github.com/shedtool/shed/pkg/manifest"
	"github.com/shedtool/shed/pkg/store"
)

// Environment derives the shell environment from a resolution whose
// packages have been realized. The result is deterministic for a given
// manifest, lockfile and store state, and is computed once per evaluation.
//
// Derived defaults:
//   - PATH: bin dirs of the toolchain, then of the packages (inheriting).
//   - LD_LIBRARY_PATH / DYLD_LIBRARY_PATH: lib dirs of the packages.
//   - PKG_CONFIG_PATH: pkgconfig dirs of every input.
//
// Manifest env entries evaluate in declaration order on top of these.
// Helper forms (libraryPath, pluginPath) merge into existing path lists;
// template entries are exclusive and conflict if they redefine a derived
// variable.
func (e *Evaluator) Environment(res *Resolved) (*envdef.Definition, error) {
	m := res.Manifest

	entries := make(map[string]store.Entry, len(res.Pins))
	for _, name := range m.Inputs() {
		entry, err := e.entry(res, name)
		if err != nil {
			return nil, err
		}
		entries[name] = entry
	}

	def := envdef.NewDefinition()

	var binDirs []string
	for _, name := range m.Toolchain {
		binDirs = append(binDirs, entries[name].BinDirs()...)
	}
	for _, name := range m.Packages {
		binDirs = append(binDirs, entries[name].BinDirs()...)
	}
	if len(binDirs) > 0 {
		if err := def.Add(envdef.NewPathList("PATH", binDirs...)); err != nil {
			return nil, err
		}
	}

	var libDirs []string
	for _, name := range m.Packages {
		libDirs = append(libDirs, entries[name].LibDirs()...)
	}
	if len(libDirs) > 0 {
		if err := def.Add(envdef.NewPathList(res.Platform.LibraryPathVariable(), libDirs...)); err != nil {
			return nil, err
		}
	}

	var pcDirs []string
	for _, name := range m.Inputs() {
		pcDirs = append(pcDirs, entries[name].PkgConfigDirs()...)
	}
	if len(pcDirs) > 0 {
		if err := def.Add(envdef.NewPathList("PKG_CONFIG_PATH", pcDirs...)); err != nil {
			return nil, err
		}
	}

	for _, entry := range m.Env {
		v, err := evalEnvEntry(entry, entries, def)
		if err != nil {
			return nil, &Error{Op: "environment", Err: fmt.Errorf("env %s: %w", entry.Name, err)}
		}
		if err := def.Add(v); err != nil {
			return nil, &Error{Op: "environment", Err: err}
		}
	}

	return def, nil
}

func evalEnvEntry(entry manifest.EnvEntry, entries map[string]store.Entry, def *envdef.Definition) (envdef.Variable, error) {
	expr, err := manifest.ParseExpr(entry.Value)
	if err != nil {
		return envdef.Variable{}, err
	}

	switch expr.Kind {
	case manifest.ExprLibraryPath:
		var dirs []string
		for _, name := range expr.Packages {
			dirs = append(dirs, entries[name].LibDirs()...)
		}
		return envdef.NewPathList(entry.Name, dirs...), nil

	case manifest.ExprPluginPath:
		var dirs []string
		for _, name := range expr.Packages {
			dirs = append(dirs, entries[name].PluginDirs(expr.Subdir)...)
		}
		return envdef.NewPathList(entry.Name, dirs...), nil

	default:
		value, err := expr.ExpandTemplate(
			func(name string) (string, bool) {
				e, ok := entries[name]
				return e.Path, ok
			},
			func(name string) (string, bool) {
				v, ok := def.Lookup(name)
				if !ok {
					return "", false
				}
				return v.Value(), true
			},
		)
		if err != nil {
			return envdef.Variable{}, err
		}
		return envdef.NewScalar(entry.Name, value), nil
	}
}
