package directory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAccountType reports an account-type token outside the closed
// set of recognized names.
var ErrUnknownAccountType = errors.New("unrecognized account type")

// Short-form tokens accepted in place of canonical objectClass names.
var classAliases = map[string]string{
	"u":    "user",
	"c":    "computer",
	"comp": "computer",
	"g":    "group",
	"grp":  "group",
	"p":    "person",
	"op":   "organizationalPerson",
	"ou":   "organizationalUnit",
	"gpo":  "groupPolicyContainer",
	"fsp":  "foreignSecurityPrincipal",
	"d":    "domainDNS",
	"t":    "trustedDomain",
	"pq":   "printQueue",
}

// Short-form tokens accepted in place of canonical objectCategory names.
var categoryAliases = map[string]string{
	"u":    "Person",
	"user": "Person",
	"p":    "Person",
	"c":    "Computer",
	"g":    "Group",
	"ou":   "Organizational-Unit",
	"gpo":  "Group-Policy-Container",
	"d":    "Domain-DNS",
	"fsp":  "Foreign-Security-Principal",
	"t":    "Trusted-Domain",
}

var accountTypeAliases = map[string]string{
	"u":        "USER_OBJECT",
	"user":     "USER_OBJECT",
	"g":        "GROUP_OBJECT",
	"group":    "GROUP_OBJECT",
	"m":        "MACHINE_ACCOUNT",
	"machine":  "MACHINE_ACCOUNT",
	"c":        "MACHINE_ACCOUNT",
	"computer": "MACHINE_ACCOUNT",
	"a":        "ALIAS_OBJECT",
	"alias":    "ALIAS_OBJECT",
}

// accountTypes is the closed set of account-type names accepted verbatim.
var accountTypes = map[string]bool{
	"USER_OBJECT":     true,
	"GROUP_OBJECT":    true,
	"MACHINE_ACCOUNT": true,
	"ALIAS_OBJECT":    true,
}

// ResolveClass maps a short-form object-class token to its canonical
// name. Unknown tokens pass through unchanged so canonical names can be
// supplied directly.
func ResolveClass(token string) string {
	if name, ok := classAliases[strings.ToLower(token)]; ok {
		return name
	}
	return token
}

// ResolveCategory maps a short-form category token to its canonical name,
// passing unknown tokens through unchanged.
func ResolveCategory(token string) string {
	if name, ok := categoryAliases[strings.ToLower(token)]; ok {
		return name
	}
	return token
}

// ResolveAccountType maps an account-type token to its canonical name.
// Unlike class and category resolution there is no pass-through: a token
// that is neither an alias nor one of the closed set of canonical names
// fails with ErrUnknownAccountType.
func ResolveAccountType(token string) (string, error) {
	if name, ok := accountTypeAliases[strings.ToLower(token)]; ok {
		return name, nil
	}
	upper := strings.ToUpper(token)
	if accountTypes[upper] {
		return upper, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAccountType, token)
}
