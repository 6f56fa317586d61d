package filter

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuickFilters maps short names to expression filter source text.
type QuickFilters map[string]string

// builtinQuick are the quick filters available without a definitions
// file. Each expands to an expression filter over raw attributes.
var builtinQuick = QuickFilters{
	"admin":         "adminCount == 1",
	"locked":        "lockoutTime >= 1",
	"neverloggedon": "not lastLogonTimestamp or lastLogonTimestamp == 0",
	"spn":           "servicePrincipalName",
}

// Builtin returns a copy of the built-in quick filter table.
func Builtin() QuickFilters {
	q := make(QuickFilters, len(builtinQuick))
	for name, src := range builtinQuick {
		q[name] = src
	}
	return q
}

// Resolve returns the expression source behind a quick filter name.
func (q QuickFilters) Resolve(name string) (string, error) {
	if src, ok := q[name]; ok {
		return src, nil
	}
	names := make([]string, 0, len(q))
	for n := range q {
		names = append(names, n)
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown quick filter %q (have: %s)", name, strings.Join(names, ", "))
}

// LoadQuickFilters reads a YAML file of name-to-expression pairs and
// merges it over the built-in table. File entries win on name clashes.
func LoadQuickFilters(path string) (QuickFilters, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quick filters: %w", err)
	}
	var defs map[string]string
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("quick filters %s: %w", path, err)
	}
	q := Builtin()
	for name, src := range defs {
		q[name] = src
	}
	return q, nil
}
