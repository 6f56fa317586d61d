package directory

import "strings"

// Record is an ordered field mapping with case-insensitive lookup. A key
// keeps the position of its first insert and the casing of its latest
// insert for display.
type Record struct {
	order   []string          // lowered keys, first-insert order
	display map[string]string // lowered key -> display casing
	values  map[string]Value
}

func NewRecord() *Record {
	return &Record{
		display: make(map[string]string),
		values:  make(map[string]Value),
	}
}

// Set stores v under key. Re-inserting an existing key replaces its value
// and display casing but keeps its original position.
func (r *Record) Set(key string, v Value) {
	k := strings.ToLower(key)
	if _, ok := r.values[k]; !ok {
		r.order = append(r.order, k)
	}
	r.display[k] = key
	r.values[k] = v
}

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[strings.ToLower(key)]
	return v, ok
}

func (r *Record) Has(key string) bool {
	_, ok := r.values[strings.ToLower(key)]
	return ok
}

// Keys returns the lowered field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DisplayKey returns the stored casing for a field name, or the argument
// unchanged when the field is absent.
func (r *Record) DisplayKey(key string) string {
	if d, ok := r.display[strings.ToLower(key)]; ok {
		return d
	}
	return key
}

func (r *Record) Len() int { return len(r.order) }

// DN returns the record's distinguished name from whichever of the dn or
// distinguishedName fields carries it.
func (r *Record) DN() string {
	if v, ok := r.Get("dn"); ok {
		return v.String()
	}
	if v, ok := r.Get("distinguishedname"); ok {
		return v.String()
	}
	return ""
}

// BaseCategory returns the derived x-baseCategory field, "" when absent.
func (r *Record) BaseCategory() string {
	v, ok := r.Get(BaseCategoryField)
	if !ok {
		return ""
	}
	return v.String()
}

// NormalizeDN canonicalizes a distinguished name for comparison.
// DN comparisons are always case-insensitive and trimmed.
func NormalizeDN(dn string) string {
	return strings.ToLower(strings.TrimSpace(dn))
}
