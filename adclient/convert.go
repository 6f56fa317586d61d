package adclient

import (
	"encoding/base64"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/go-objectsid"
	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"

	"adsift/directory"
)

// accountTypeNames maps samAccountType wire codes to the symbolic names
// the analyzer's closed-set matching understands.
var accountTypeNames = map[int64]string{
	0:          "DOMAIN_OBJECT",
	268435456:  "GROUP_OBJECT",
	268435457:  "NON_SECURITY_GROUP_OBJECT",
	536870912:  "ALIAS_OBJECT",
	536870913:  "NON_SECURITY_ALIAS_OBJECT",
	805306368:  "USER_OBJECT",
	805306369:  "MACHINE_ACCOUNT",
	805306370:  "TRUST_ACCOUNT",
	1073741824: "APP_BASIC_GROUP",
	1073741825: "APP_QUERY_GROUP",
}

// EntryRecord converts one LDAP search entry into a canonical record.
// objectSid values decode to S-1-... strings, objectGUID to RFC4122
// text, samAccountType codes to symbolic names. A single-valued
// attribute that is not valid UTF-8 becomes an opaque binary payload;
// non-UTF-8 elements of multi-values fall back to base64 text.
func EntryRecord(entry *ldap.Entry) *directory.Record {
	rec := directory.NewRecord()
	rec.Set("dn", directory.Scalar(entry.DN))
	for _, attr := range entry.Attributes {
		rec.Set(attr.Name, attrValue(attr))
	}
	return rec
}

func attrValue(attr *ldap.EntryAttribute) directory.Value {
	switch strings.ToLower(attr.Name) {
	case "objectsid", "sidhistory":
		out := make([]string, len(attr.ByteValues))
		for i, b := range attr.ByteValues {
			out[i] = sidString(b)
		}
		return stringsValue(out)
	case "objectguid":
		out := make([]string, len(attr.ByteValues))
		for i, b := range attr.ByteValues {
			out[i] = guidString(b)
		}
		return stringsValue(out)
	case "samaccounttype":
		out := make([]string, len(attr.Values))
		for i, s := range attr.Values {
			out[i] = accountTypeName(s)
		}
		return stringsValue(out)
	}
	if len(attr.ByteValues) == 1 && !utf8.Valid(attr.ByteValues[0]) {
		return directory.Binary(base64.StdEncoding.EncodeToString(attr.ByteValues[0]))
	}
	out := make([]string, len(attr.ByteValues))
	for i, b := range attr.ByteValues {
		if utf8.Valid(b) {
			out[i] = string(b)
		} else {
			out[i] = base64.StdEncoding.EncodeToString(b)
		}
	}
	return stringsValue(out)
}

// stringsValue folds a value list into the canonical shape: scalar when
// single, multi otherwise.
func stringsValue(elems []string) directory.Value {
	if len(elems) == 1 {
		return directory.Scalar(elems[0])
	}
	return directory.Multi(elems...)
}

// sidString renders a binary security identifier. Malformed payloads
// fall back to base64 instead of failing the dump.
func sidString(b []byte) string {
	if len(b) < 8 || len(b) < 8+4*int(b[1]) {
		return base64.StdEncoding.EncodeToString(b)
	}
	return objectsid.Decode(b).String()
}

// guidString converts a little-endian directory GUID to RFC4122 text.
// The first three groups are byte-swapped, the rest kept in order.
func guidString(b []byte) string {
	if len(b) != 16 {
		return base64.StdEncoding.EncodeToString(b)
	}
	rfc := make([]byte, 16)
	copy(rfc, b)
	rfc[0], rfc[1], rfc[2], rfc[3] = rfc[3], rfc[2], rfc[1], rfc[0]
	rfc[4], rfc[5] = rfc[5], rfc[4]
	rfc[6], rfc[7] = rfc[7], rfc[6]
	u, err := uuid.FromBytes(rfc)
	if err != nil {
		return base64.StdEncoding.EncodeToString(b)
	}
	return u.String()
}

// accountTypeName maps a samAccountType code to its symbolic name,
// leaving unknown codes untouched.
func accountTypeName(code string) string {
	n, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return code
	}
	if name, ok := accountTypeNames[n]; ok {
		return name
	}
	return code
}
