// expr.go
package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// ExprKind classifies an env value template.
type ExprKind int

const (
	// ExprTemplate is a literal string with optional ${pkg:NAME} and
	// ${env:NAME} substitutions.
	ExprTemplate ExprKind = iota
	// ExprLibraryPath joins the lib directories of the named packages.
	ExprLibraryPath
	// ExprPluginPath joins the lib/<subdir> directories of the named
	// packages (media-framework plugin search paths).
	ExprPluginPath
)

// Expr is a parsed env value template.
type Expr struct {
	Kind     ExprKind
	Template string   // ExprTemplate only
	Subdir   string   // ExprPluginPath only
	Packages []string // helper arguments
}

var (
	helperRe = regexp.MustCompile(`^(libraryPath|pluginPath)\(([^)]*)\)$`)
	pkgRefRe = regexp.MustCompile(`\$\{pkg:([A-Za-z0-9][A-Za-z0-9._+-]*)\}`)
	envRefRe = regexp.MustCompile(`\$\{env:([A-Za-z_][A-Za-z0-9_]*)\}`)
	badRefRe = regexp.MustCompile(`\$\{(?:pkg|env):[^}]*\}|\$\{[^}]*\}`)
)

// ParseExpr parses an env value template. Helper forms must be the entire
// value; anything else is treated as a substitution template.
func ParseExpr(value string) (Expr, error) {
	if m := helperRe.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
		args := splitArgs(m[2])
		switch m[1] {
		case "libraryPath":
			if len(args) == 0 {
				return Expr{}, fmt.Errorf("libraryPath requires at least one package")
			}
			return Expr{Kind: ExprLibraryPath, Packages: args}, nil
		case "pluginPath":
			if len(args) < 2 {
				return Expr{}, fmt.Errorf("pluginPath requires a subdirectory and at least one package")
			}
			return Expr{Kind: ExprPluginPath, Subdir: args[0], Packages: args[1:]}, nil
		}
	}

	expr := Expr{Kind: ExprTemplate, Template: value}
	for _, m := range pkgRefRe.FindAllStringSubmatch(value, -1) {
		expr.Packages = append(expr.Packages, m[1])
	}

	// Reject ${...} forms the two reference kinds don't cover, so a typo
	// like ${pkg.openssl} fails at load time instead of leaking into the
	// rendered environment.
	for _, ref := range badRefRe.FindAllString(value, -1) {
		if !pkgRefRe.MatchString(ref) && !envRefRe.MatchString(ref) {
			return Expr{}, fmt.Errorf("unrecognized reference %s", ref)
		}
	}
	return expr, nil
}

// EnvRefs returns the names of earlier env entries referenced by a template.
func (e Expr) EnvRefs() []string {
	if e.Kind != ExprTemplate {
		return nil
	}
	var out []string
	for _, m := range envRefRe.FindAllStringSubmatch(e.Template, -1) {
		out = append(out, m[1])
	}
	return out
}

// References returns the package names the expression depends on.
func (e Expr) References() []string {
	return e.Packages
}

// ExpandTemplate substitutes ${pkg:NAME} and ${env:NAME} references using
// the provided lookup functions.
func (e Expr) ExpandTemplate(pkgRoot func(string) (string, bool), envValue func(string) (string, bool)) (string, error) {
	if e.Kind != ExprTemplate {
		return "", fmt.Errorf("not a template expression")
	}
	var expandErr error
	out := pkgRefRe.ReplaceAllStringFunc(e.Template, func(ref string) string {
		name := pkgRefRe.FindStringSubmatch(ref)[1]
		root, ok := pkgRoot(name)
		if !ok {
			expandErr = fmt.Errorf("unresolved package reference %s", ref)
			return ref
		}
		return root
	})
	out = envRefRe.ReplaceAllStringFunc(out, func(ref string) string {
		name := envRefRe.FindStringSubmatch(ref)[1]
		val, ok := envValue(name)
		if !ok {
			expandErr = fmt.Errorf("unresolved environment reference %s", ref)
			return ref
		}
		return val
	})
	return out, expandErr
}

func splitArgs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
