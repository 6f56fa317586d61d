package adclient_test

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsift/adclient"
	"adsift/directory"
)

// wellKnownSID is S-1-5-21-1-2-3-500 in wire form: revision 1, five
// little-endian subauthorities under authority 5.
var wellKnownSID = []byte{
	0x01, 0x05,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	0x15, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x00, 0x00,
	0x03, 0x00, 0x00, 0x00,
	0xF4, 0x01, 0x00, 0x00,
}

func TestEntryRecord(t *testing.T) {
	guid := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
	}
	entry := &ldap.Entry{
		DN: "CN=Alice,OU=Users,DC=corp,DC=local",
		Attributes: []*ldap.EntryAttribute{
			ldap.NewEntryAttribute("cn", []string{"Alice"}),
			ldap.NewEntryAttribute("objectClass", []string{"top", "person", "organizationalPerson", "user"}),
			ldap.NewEntryAttribute("sAMAccountType", []string{"805306368"}),
			{Name: "objectSid", ByteValues: [][]byte{wellKnownSID}},
			{Name: "objectGUID", ByteValues: [][]byte{guid}},
		},
	}

	rec := adclient.EntryRecord(entry)
	assert.Equal(t, "CN=Alice,OU=Users,DC=corp,DC=local", rec.DN())
	assert.Equal(t,
		[]string{"dn", "cn", "objectclass", "samaccounttype", "objectsid", "objectguid"},
		rec.Keys(), "attribute order of the entry kept")

	cn, _ := rec.Get("cn")
	assert.Equal(t, "Alice", cn.String())
	assert.Equal(t, directory.KindScalar, cn.Kind())

	classes, _ := rec.Get("objectclass")
	assert.Equal(t, directory.KindMulti, classes.Kind())
	assert.Equal(t, []string{"top", "person", "organizationalPerson", "user"}, classes.Strings())

	at, _ := rec.Get("samaccounttype")
	assert.Equal(t, "USER_OBJECT", at.String())

	sid, _ := rec.Get("objectsid")
	assert.Equal(t, "S-1-5-21-1-2-3-500", sid.String())

	g, _ := rec.Get("objectguid")
	assert.Equal(t, "04030201-0605-0807-090a-0b0c0d0e0f10", g.String())
}

func TestEntryRecordAccountTypeCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"805306368", "USER_OBJECT"},
		{"805306369", "MACHINE_ACCOUNT"},
		{"268435456", "GROUP_OBJECT"},
		{"536870912", "ALIAS_OBJECT"},
		{"805306370", "TRUST_ACCOUNT"},
		{"999", "999"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			entry := &ldap.Entry{
				DN:         "CN=X,DC=corp",
				Attributes: []*ldap.EntryAttribute{ldap.NewEntryAttribute("sAMAccountType", []string{tt.code})},
			}
			v, ok := adclient.EntryRecord(entry).Get("samaccounttype")
			require.True(t, ok)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestEntryRecordMalformedIdentifiers(t *testing.T) {
	entry := &ldap.Entry{
		DN: "CN=X,DC=corp",
		Attributes: []*ldap.EntryAttribute{
			{Name: "objectSid", ByteValues: [][]byte{{0x01, 0x02, 0x03}}},
			{Name: "objectGUID", ByteValues: [][]byte{{0x01, 0x02, 0x03}}},
		},
	}
	rec := adclient.EntryRecord(entry)

	sid, _ := rec.Get("objectsid")
	assert.Equal(t, "AQID", sid.String(), "short payloads fall back to base64")
	g, _ := rec.Get("objectguid")
	assert.Equal(t, "AQID", g.String())
}

func TestEntryRecordBinaryAttributes(t *testing.T) {
	invalid := []byte{0xFF, 0xFE}
	entry := &ldap.Entry{
		DN: "CN=X,DC=corp",
		Attributes: []*ldap.EntryAttribute{
			{Name: "userCertificate", Values: []string{string(invalid)}, ByteValues: [][]byte{invalid}},
			{
				Name:       "auditLog",
				Values:     []string{"ok", string(invalid)},
				ByteValues: [][]byte{[]byte("ok"), invalid},
			},
		},
	}
	rec := adclient.EntryRecord(entry)

	cert, _ := rec.Get("usercertificate")
	assert.Equal(t, directory.KindBinary, cert.Kind(), "single non-UTF-8 value stays an opaque payload")
	assert.Equal(t, "//4=", cert.Base64())

	audit, _ := rec.Get("auditlog")
	assert.Equal(t, directory.KindMulti, audit.Kind())
	assert.Equal(t, []string{"ok", "//4="}, audit.Strings(), "non-UTF-8 elements decay to base64 text")
}

func TestEntryRecordSIDHistory(t *testing.T) {
	entry := &ldap.Entry{
		DN: "CN=X,DC=corp",
		Attributes: []*ldap.EntryAttribute{
			{Name: "sIDHistory", ByteValues: [][]byte{wellKnownSID, wellKnownSID}},
		},
	}
	v, _ := adclient.EntryRecord(entry).Get("sidhistory")
	assert.Equal(t, []string{"S-1-5-21-1-2-3-500", "S-1-5-21-1-2-3-500"}, v.Strings())
}
