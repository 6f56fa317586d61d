// Package filter matches directory records against exact, regex and
// expression predicates combined under order-dependent OR/AND/NOT
// semantics, with class, category and account-type criteria layered on
// top as extra acceptance paths.
package filter

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"adsift/directory"
)

// ErrMalformed reports a filter string without a key=value separator.
var ErrMalformed = errors.New("malformed filter: missing '='")

// Predicate decides whether a record matches.
type Predicate interface {
	Match(*directory.Record) (bool, error)
}

// splitFilter cuts a key=value filter string on the first '='. Key and
// value may each be empty or "*" to mean "any".
func splitFilter(s string) (key, value string, err error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return strings.TrimSpace(k), v, nil
}

// resolveKeys expands a filter key to the fields it addresses: all of
// the record's keys for an empty or "*" key, the named key when the
// record has it, nothing otherwise.
func resolveKeys(r *directory.Record, key string) []string {
	if key == "" || key == "*" {
		return r.Keys()
	}
	if r.Has(key) {
		return []string{strings.ToLower(key)}
	}
	return nil
}

type exact struct {
	key   string
	value string
}

// NewExact builds an exact-match predicate from a key=value filter
// string. Matching compares the stored value's string form to the filter
// value case-insensitively; either side being empty or "*" matches any.
func NewExact(s string) (Predicate, error) {
	key, value, err := splitFilter(s)
	if err != nil {
		return nil, err
	}
	return exact{key: key, value: value}, nil
}

func (f exact) Match(r *directory.Record) (bool, error) {
	for _, k := range resolveKeys(r, f.key) {
		v, _ := r.Get(k)
		if matchAny(v.String(), f.value) || strings.EqualFold(v.String(), f.value) {
			return true, nil
		}
	}
	return false, nil
}

func matchAny(stored, want string) bool {
	return want == "" || want == "*" || stored == "" || stored == "*"
}

type regex struct {
	key string
	re  *regexp.Regexp // nil when the value is a wildcard
}

// NewRegex builds a regex predicate from a key=value filter string. The
// value compiles as a case-insensitive pattern anchored at the start of
// the field's string form; an invalid pattern is fatal here, before any
// record is read.
func NewRegex(s string) (Predicate, error) {
	key, value, err := splitFilter(s)
	if err != nil {
		return nil, err
	}
	if value == "" || value == "*" {
		return regex{key: key}, nil
	}
	re, err := regexp.Compile("(?i)^(?:" + value + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid filter pattern %q: %w", value, err)
	}
	return regex{key: key, re: re}, nil
}

func (f regex) Match(r *directory.Record) (bool, error) {
	for _, k := range resolveKeys(r, f.key) {
		v, _ := r.Get(k)
		if f.re == nil || f.re.MatchString(v.String()) {
			return true, nil
		}
	}
	return false, nil
}

// Set is a compiled filter: one ordered predicate list plus the class,
// category and account-type acceptance paths.
type Set struct {
	preds      []Predicate
	classes    []string // resolved; must equal the most specific class
	parents    []string // resolved; may appear anywhere in the enumeration
	categories []string // resolved base categories
	and        bool
	not        bool
}

// Empty reports whether the set carries no criteria at all.
func (s *Set) Empty() bool {
	return len(s.preds) == 0 && len(s.classes) == 0 &&
		len(s.parents) == 0 && len(s.categories) == 0
}

// Match combines the ordered predicates over r. In OR mode the first
// matching predicate decides; in AND mode the first failing predicate
// decides. The evaluation is strictly order-dependent: a later predicate
// cannot undo an earlier short-circuit. An empty predicate list matches
// in AND mode (every predicate matched, vacuously) and fails in OR mode
// (none did). Class, parent-class and category matches then force
// acceptance regardless of the predicate outcome, and the not flag
// negates the final result.
func (s *Set) Match(r *directory.Record) (bool, error) {
	matched := s.and
	for _, p := range s.preds {
		ok, err := p.Match(r)
		if err != nil {
			return false, err
		}
		if s.and {
			if !ok {
				matched = false
				break
			}
		} else if ok {
			matched = true
			break
		}
	}

	if !matched {
		matched = s.matchClass(r) || s.matchParent(r) || s.matchCategory(r)
	}
	if s.not {
		matched = !matched
	}
	return matched, nil
}

func (s *Set) matchClass(r *directory.Record) bool {
	if len(s.classes) == 0 {
		return false
	}
	v, ok := r.Get("objectclass")
	if !ok {
		return false
	}
	elems := v.Strings()
	if len(elems) == 0 {
		return false
	}
	last := elems[len(elems)-1]
	for _, c := range s.classes {
		if strings.EqualFold(c, last) {
			return true
		}
	}
	return false
}

func (s *Set) matchParent(r *directory.Record) bool {
	if len(s.parents) == 0 {
		return false
	}
	v, ok := r.Get("objectclass")
	if !ok {
		return false
	}
	for _, c := range s.parents {
		for _, e := range v.Strings() {
			if strings.EqualFold(c, e) {
				return true
			}
		}
	}
	return false
}

func (s *Set) matchCategory(r *directory.Record) bool {
	cat := r.BaseCategory()
	if cat == "" {
		return false
	}
	for _, c := range s.categories {
		if strings.EqualFold(c, cat) {
			return true
		}
	}
	return false
}

// Criteria collects raw filter inputs for compilation into a Set. The
// predicate list keeps the order exact, regex, expression, quick,
// account type.
type Criteria struct {
	Exact    []string // key=value, case-insensitive equality
	Regex    []string // key=value, value is a start-anchored pattern
	Expr     []string // boolean expressions over record fields
	Quick    []string // named prebuilt expressions
	Class    []string // object-class tokens, alias-resolved
	Parent   []string // parent-class tokens, alias-resolved
	Category []string // category tokens, alias-resolved
	Type     []string // account-type tokens, closed-set resolved

	And bool
	Not bool

	// QuickDefs overrides the built-in quick filter table.
	QuickDefs QuickFilters
}

// Compile resolves aliases and compiles every pattern and expression.
// All failures here are fatal before any record is read: malformed
// filter strings, invalid patterns, unparseable expressions and unknown
// account types.
func (c Criteria) Compile() (*Set, error) {
	s := &Set{and: c.And, not: c.Not}

	for _, f := range c.Exact {
		p, err := NewExact(f)
		if err != nil {
			return nil, err
		}
		s.preds = append(s.preds, p)
	}
	for _, f := range c.Regex {
		p, err := NewRegex(f)
		if err != nil {
			return nil, err
		}
		s.preds = append(s.preds, p)
	}
	for _, f := range c.Expr {
		p, err := NewExpr(f)
		if err != nil {
			return nil, err
		}
		s.preds = append(s.preds, p)
	}

	quick := c.QuickDefs
	if quick == nil {
		quick = Builtin()
	}
	for _, name := range c.Quick {
		src, err := quick.Resolve(name)
		if err != nil {
			return nil, err
		}
		p, err := NewExpr(src)
		if err != nil {
			return nil, err
		}
		s.preds = append(s.preds, p)
	}

	for _, t := range c.Type {
		resolved, err := directory.ResolveAccountType(t)
		if err != nil {
			return nil, err
		}
		p, err := NewExact("samaccounttype=" + resolved)
		if err != nil {
			return nil, err
		}
		s.preds = append(s.preds, p)
	}

	for _, t := range c.Class {
		s.classes = append(s.classes, directory.ResolveClass(t))
	}
	for _, t := range c.Parent {
		s.parents = append(s.parents, directory.ResolveClass(t))
	}
	for _, t := range c.Category {
		s.categories = append(s.categories, directory.ResolveCategory(t))
	}

	return s, nil
}

type filtered struct {
	src directory.Source
	set *Set
}

// Apply wraps src with s, yielding only matching records. The view is
// restartable exactly when src is.
func Apply(src directory.Source, s *Set) directory.Source {
	return filtered{src: src, set: s}
}

func (f filtered) Records() iter.Seq2[*directory.Record, error] {
	return func(yield func(*directory.Record, error) bool) {
		for r, err := range f.src.Records() {
			if err != nil {
				yield(nil, err)
				return
			}
			ok, err := f.set.Match(r)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (f filtered) Restartable() bool { return f.src.Restartable() }
