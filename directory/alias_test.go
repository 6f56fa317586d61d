package directory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsift/directory"
)

func TestResolveClass(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"u", "user"},
		{"U", "user"},
		{"c", "computer"},
		{"comp", "computer"},
		{"g", "group"},
		{"grp", "group"},
		{"p", "person"},
		{"op", "organizationalPerson"},
		{"ou", "organizationalUnit"},
		{"gpo", "groupPolicyContainer"},
		{"fsp", "foreignSecurityPrincipal"},
		{"d", "domainDNS"},
		{"t", "trustedDomain"},
		{"pq", "printQueue"},
		{"user", "user"},
		{"printQueue", "printQueue"},
		{"volume", "volume"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, directory.ResolveClass(tt.token), tt.token)
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"u", "Person"},
		{"user", "Person"},
		{"p", "Person"},
		{"c", "Computer"},
		{"g", "Group"},
		{"ou", "Organizational-Unit"},
		{"gpo", "Group-Policy-Container"},
		{"d", "Domain-DNS"},
		{"fsp", "Foreign-Security-Principal"},
		{"t", "Trusted-Domain"},
		{"Person", "Person"},
		{"Print-Queue", "Print-Queue"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, directory.ResolveCategory(tt.token), tt.token)
	}
}

func TestResolveAccountType(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "user alias", token: "u", want: "USER_OBJECT"},
		{name: "user word", token: "user", want: "USER_OBJECT"},
		{name: "group alias", token: "g", want: "GROUP_OBJECT"},
		{name: "group word", token: "group", want: "GROUP_OBJECT"},
		{name: "machine alias", token: "m", want: "MACHINE_ACCOUNT"},
		{name: "computer maps to machine", token: "computer", want: "MACHINE_ACCOUNT"},
		{name: "alias object", token: "a", want: "ALIAS_OBJECT"},
		{name: "canonical lowercased", token: "user_object", want: "USER_OBJECT"},
		{name: "canonical verbatim", token: "MACHINE_ACCOUNT", want: "MACHINE_ACCOUNT"},
		{name: "outside the closed set", token: "TRUST_ACCOUNT", wantErr: true},
		{name: "unknown token", token: "wizard", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := directory.ResolveAccountType(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, directory.ErrUnknownAccountType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
