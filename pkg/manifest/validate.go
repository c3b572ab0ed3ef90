// validate.go
package manifest

import (
	"fmt"
	"regexp"
)

var (
	pkgNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)
	envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	chanRe    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Validate checks the manifest for structural problems before any package
// resolution is attempted: malformed names, duplicate inputs, env templates
// referencing undeclared packages, and env entries referencing later (or
// their own) entries.
func (m *Manifest) Validate() error {
	if m.Channel != "" && !chanRe.MatchString(m.Channel) {
		return fmt.Errorf("invalid channel name %q", m.Channel)
	}

	if len(m.Packages) == 0 && len(m.Toolchain) == 0 {
		return fmt.Errorf("manifest declares no packages")
	}

	seen := make(map[string]bool)
	for _, name := range m.Inputs() {
		if !pkgNameRe.MatchString(name) {
			return fmt.Errorf("invalid package name %q", name)
		}
		if seen[name] {
			return fmt.Errorf("package %q declared more than once", name)
		}
		seen[name] = true
	}

	defined := make(map[string]bool)
	for _, entry := range m.Env {
		if !envNameRe.MatchString(entry.Name) {
			return fmt.Errorf("invalid environment variable name %q", entry.Name)
		}
		if defined[entry.Name] {
			return fmt.Errorf("environment variable %q defined more than once", entry.Name)
		}

		expr, err := ParseExpr(entry.Value)
		if err != nil {
			return fmt.Errorf("env %s: %w", entry.Name, err)
		}
		for _, ref := range expr.References() {
			if !m.Declares(ref) {
				return fmt.Errorf("env %s references undeclared package %q", entry.Name, ref)
			}
		}
		// Forward and self references cannot be satisfied by in-order
		// evaluation, which also rules out reference cycles.
		for _, ref := range expr.EnvRefs() {
			if !defined[ref] {
				return fmt.Errorf("env %s references %q before it is defined", entry.Name, ref)
			}
		}
		defined[entry.Name] = true
	}

	return nil
}
