// render.go
package envdef

import (
	"fmt"
	"sort"
	"strings"
)

// Environ renders the definition against a base environment (typically
// os.Environ() parsed into a map). Inheriting variables pick up the base
// value after their own values; variables that end up empty are omitted so
// consumers never see a populated-but-blank entry.
func (d *Definition) Environ(base map[string]string) []string {
	out := make([]string, 0, len(d.vars))
	for _, v := range d.vars {
		val := d.renderValue(v, base)
		if val == "" {
			continue
		}
		out = append(out, v.Name+"="+val)
	}
	return out
}

// Apply merges the definition into a copy of the base environment map.
// Keys the definition does not touch pass through unchanged.
func (d *Definition) Apply(base map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(d.vars))
	for k, v := range base {
		out[k] = v
	}
	for _, v := range d.vars {
		val := d.renderValue(v, base)
		if val == "" {
			delete(out, v.Name)
			continue
		}
		out[v.Name] = val
	}
	return out
}

// ExportScript renders the definition as POSIX export statements, suitable
// for `eval "$(shed export)"`. Output is ordered and stable.
func (d *Definition) ExportScript(base map[string]string) string {
	var b strings.Builder
	for _, v := range d.vars {
		val := d.renderValue(v, base)
		if val == "" {
			continue
		}
		fmt.Fprintf(&b, "export %s=%s\n", v.Name, shellQuote(val))
	}
	return b.String()
}

func (d *Definition) renderValue(v Variable, base map[string]string) string {
	val := v.value()
	if !v.Inherit {
		return val
	}
	inherited, ok := base[v.Name]
	if !ok || inherited == "" {
		return val
	}
	if val == "" {
		return inherited
	}
	sep := v.Separator
	if sep == "" {
		sep = ":"
	}
	return val + sep + inherited
}

// shellQuote single-quotes a value for POSIX shells.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`!*?[](){}<>|&;~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// EnvironToMap parses KEY=VALUE pairs into a map. Later keys win, matching
// the semantics of os.Environ.
func EnvironToMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i > 0 {
			out[kv[:i]] = kv[i+1:]
		}
	}
	return out
}

// SortedNames returns the defined variable names in lexical order.
func (d *Definition) SortedNames() []string {
	names := make([]string, 0, len(d.vars))
	for _, v := range d.vars {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return names
}
