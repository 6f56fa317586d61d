// Package directory holds the canonical record model for directory
// enumeration dumps and the parsers that produce it from the two dump
// encodings (blank-line separated "key: value" blocks and JSON arrays
// of attribute records).
package directory

import "strings"

// ValueKind identifies the shape of a field value.
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindMulti
	KindBinary
)

// BinaryPlaceholder is the display text substituted for binary payloads
// unless base64 output is requested.
const BinaryPlaceholder = "(binary)"

// Value is a single field value: a scalar string, an ordered multi-value,
// or an opaque binary payload carried as base64 text. Binary payloads are
// never decoded back to raw bytes.
type Value struct {
	kind  ValueKind
	str   string   // scalar text, or base64 text for a binary payload
	elems []string // multi-value elements
}

func Scalar(s string) Value {
	return Value{kind: KindScalar, str: s}
}

func Multi(elems ...string) Value {
	return Value{kind: KindMulti, elems: elems}
}

func Binary(base64Text string) Value {
	return Value{kind: KindBinary, str: base64Text}
}

func (v Value) Kind() ValueKind { return v.kind }

// String returns the display form: scalar text, multi elements joined
// with ", ", or the opaque placeholder for binary payloads.
func (v Value) String() string {
	switch v.kind {
	case KindMulti:
		return strings.Join(v.elems, ", ")
	case KindBinary:
		return BinaryPlaceholder
	default:
		return v.str
	}
}

// Strings flattens the value into its element strings.
func (v Value) Strings() []string {
	switch v.kind {
	case KindMulti:
		out := make([]string, len(v.elems))
		copy(out, v.elems)
		return out
	case KindBinary:
		return []string{BinaryPlaceholder}
	default:
		return []string{v.str}
	}
}

// Base64 returns the payload text of a binary value, or "" for the other
// kinds.
func (v Value) Base64() string {
	if v.kind != KindBinary {
		return ""
	}
	return v.str
}

// Len is the element count: 1 for scalar and binary values.
func (v Value) Len() int {
	if v.kind == KindMulti {
		return len(v.elems)
	}
	return 1
}
