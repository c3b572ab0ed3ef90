// envdef.go
package envdef

import (
	"fmt"
	"strings"
)

// Join defines a strategy for combining two definitions of the same variable.
type Join int

const (
	// Prepend places new values ahead of existing ones.
	Prepend Join = iota
	// Append places new values after existing ones.
	Append
	// Exclusive requires the variable to have exactly one definition.
	Exclusive
)

// MarshalText marshals a join directive.
func (j Join) MarshalText() ([]byte, error) {
	switch j {
	case Append:
		return []byte("append"), nil
	case Exclusive:
		return []byte("exclusive"), nil
	default:
		return []byte("prepend"), nil
	}
}

// UnmarshalText unmarshals a join directive.
func (j *Join) UnmarshalText(text []byte) error {
	switch string(text) {
	case "prepend", "":
		*j = Prepend
	case "append":
		*j = Append
	case "exclusive":
		*j = Exclusive
	default:
		return fmt.Errorf("invalid join directive %q", string(text))
	}
	return nil
}

// Variable defines a single environment variable and the values that
// contribute to it.
type Variable struct {
	Name      string
	Values    []string
	Join      Join
	Inherit   bool
	Separator string
}

// NewPathList returns a path-list variable (prepend, inherit, ":" separator).
func NewPathList(name string, values ...string) Variable {
	return Variable{
		Name:      name,
		Values:    values,
		Join:      Prepend,
		Inherit:   true,
		Separator: ":",
	}
}

// NewScalar returns a single-valued variable that shadows any inherited value.
func NewScalar(name, value string) Variable {
	return Variable{
		Name:      name,
		Values:    []string{value},
		Join:      Exclusive,
		Inherit:   false,
		Separator: ":",
	}
}

// Merge combines two definitions of the same variable according to the join
// strategy of the second one.
func (v Variable) Merge(other Variable) (Variable, error) {
	if v.Name != other.Name {
		return Variable{}, fmt.Errorf("cannot merge variable %q with %q", v.Name, other.Name)
	}

	res := other
	switch other.Join {
	case Prepend:
		res.Values = appendUnique(other.Values, v.Values)
	case Append:
		res.Values = appendUnique(v.Values, other.Values)
	case Exclusive:
		return Variable{}, fmt.Errorf("conflicting definitions for exclusive variable %q", v.Name)
	}
	return res, nil
}

// ReplaceString replaces from with replacement in every value.
func (v Variable) ReplaceString(from, replacement string) Variable {
	values := make([]string, len(v.Values))
	for i, val := range v.Values {
		values[i] = strings.ReplaceAll(val, from, replacement)
	}
	res := v
	res.Values = values
	return res
}

// Value joins the variable's own values, without any inherited part.
func (v Variable) Value() string {
	return v.value()
}

// value joins the variable's own values, without any inherited part.
func (v Variable) value() string {
	sep := v.Separator
	if sep == "" {
		sep = ":"
	}
	parts := make([]string, 0, len(v.Values))
	for _, val := range v.Values {
		if val != "" {
			parts = append(parts, val)
		}
	}
	return strings.Join(parts, sep)
}

func appendUnique(head, tail []string) []string {
	seen := make(map[string]bool, len(head)+len(tail))
	out := make([]string, 0, len(head)+len(tail))
	for _, v := range head {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	for _, v := range tail {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Definition is an ordered collection of environment variables. Order is the
// order in which variables were added; merging preserves the position of the
// first definition.
type Definition struct {
	vars  []Variable
	index map[string]int
}

// NewDefinition returns an empty definition.
func NewDefinition() *Definition {
	return &Definition{index: make(map[string]int)}
}

// Add merges a variable into the definition.
func (d *Definition) Add(v Variable) error {
	if v.Name == "" {
		return fmt.Errorf("variable name is required")
	}
	if i, ok := d.index[v.Name]; ok {
		merged, err := d.vars[i].Merge(v)
		if err != nil {
			return err
		}
		d.vars[i] = merged
		return nil
	}
	d.index[v.Name] = len(d.vars)
	d.vars = append(d.vars, v)
	return nil
}

// Variables returns the variables in insertion order.
func (d *Definition) Variables() []Variable {
	out := make([]Variable, len(d.vars))
	copy(out, d.vars)
	return out
}

// Lookup returns the variable with the given name, if defined.
func (d *Definition) Lookup(name string) (Variable, bool) {
	i, ok := d.index[name]
	if !ok {
		return Variable{}, false
	}
	return d.vars[i], true
}

// ReplaceString replaces from with replacement in every variable value.
func (d *Definition) ReplaceString(from, replacement string) {
	for i, v := range d.vars {
		d.vars[i] = v.ReplaceString(from, replacement)
	}
}
