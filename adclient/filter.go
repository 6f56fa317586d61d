package adclient

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Canned server-side filters for the convenience dump flags.
const (
	AllObjects   = "(objectClass=*)"
	AllGroups    = "(objectClass=group)"
	AllUsers     = "(&(objectCategory=person)(objectClass=user))"
	AllComputers = "(objectClass=computer)"
)

// Filter builds an LDAP server-side filter string.
type Filter interface {
	String() string
}

type rawFilter string

func (f rawFilter) String() string { return string(f) }

// Raw wraps an already-formed filter string.
func Raw(s string) Filter { return rawFilter(s) }

type andFilter struct{ parts []Filter }

func And(filters ...Filter) Filter { return andFilter{parts: filters} }

func (f andFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(&" + strings.Join(parts, "") + ")"
}

type orFilter struct{ parts []Filter }

func Or(filters ...Filter) Filter { return orFilter{parts: filters} }

func (f orFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(|" + strings.Join(parts, "") + ")"
}

type notFilter struct{ part Filter }

func Not(f Filter) Filter { return notFilter{part: f} }

func (f notFilter) String() string { return "(!" + f.part.String() + ")" }

// Eq matches attr equal to value. The value is escaped per RFC 4515.
func Eq(attr, value string) Filter {
	return rawFilter("(" + attr + "=" + ldap.EscapeFilter(value) + ")")
}

// Present matches entries carrying attr at all.
func Present(attr string) Filter { return rawFilter("(" + attr + "=*)") }

// Ge matches attr greater than or equal to value.
func Ge(attr string, value int64) Filter {
	return rawFilter(fmt.Sprintf("(%s>=%d)", attr, value))
}
