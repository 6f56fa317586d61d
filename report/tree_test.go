package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsift/directory"
	"adsift/report"
)

// rec builds a record from alternating key/value pairs.
func rec(pairs ...string) *directory.Record {
	r := directory.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i], directory.Scalar(pairs[i+1]))
	}
	return r
}

func group(dn, name string, members ...string) *directory.Record {
	r := rec(
		"dn", dn,
		"name", name,
		"sAMAccountType", "GROUP_OBJECT",
		"objectCategory", "CN=Group,CN=Schema,CN=Configuration,DC=corp,DC=local",
	)
	switch len(members) {
	case 0:
	case 1:
		r.Set("member", directory.Scalar(members[0]))
	default:
		r.Set("member", directory.Multi(members...))
	}
	directory.Fixup(r, directory.ParseOptions{})
	return r
}

func nested(dn, name, parent string, members ...string) *directory.Record {
	r := group(dn, name, members...)
	r.Set("memberOf", directory.Scalar(parent))
	return r
}

func user(dn, name, parent string) *directory.Record {
	r := rec(
		"dn", dn,
		"name", name,
		"sAMAccountType", "USER_OBJECT",
		"objectCategory", "CN=Person,CN=Schema,CN=Configuration,DC=corp,DC=local",
		"memberOf", parent,
	)
	directory.Fixup(r, directory.ParseOptions{})
	return r
}

func TestTree(t *testing.T) {
	all := group("CN=All,OU=Groups,DC=corp", "All",
		"CN=Ops,OU=Groups,DC=corp", "CN=Ghost,OU=Groups,DC=corp")
	ops := nested("CN=Ops,OU=Groups,DC=corp", "Ops", "CN=All,OU=Groups,DC=corp",
		"CN=Alice,OU=Users,DC=corp")
	alice := user("CN=Alice,OU=Users,DC=corp", "Alice", "CN=Ops,OU=Groups,DC=corp")
	set := directory.NewRecordSet(all, ops, alice)

	roots := report.Tree(set, report.GroupCategory)
	require.Len(t, roots, 1, "members and users are not roots")

	root := roots[0]
	assert.Equal(t, "All", root.Label)
	require.Len(t, root.Children, 2)

	sub := root.Children[0]
	assert.Equal(t, "Ops", sub.Label)
	assert.False(t, sub.Missing)
	require.Len(t, sub.Children, 1)
	assert.Equal(t, "Alice", sub.Children[0].Label)

	ghost := root.Children[1]
	assert.True(t, ghost.Missing)
	assert.Equal(t, "CN=Ghost,OU=Groups,DC=corp", ghost.Label, "unresolved members keep their DN")
}

func TestTreeRootSelector(t *testing.T) {
	byType := rec("dn", "CN=A,DC=corp", "name", "A", "sAMAccountType", "GROUP_OBJECT")
	byCategory := rec("dn", "CN=B,DC=corp", "name", "B",
		"objectCategory", "CN=Group,CN=Schema,CN=Configuration,DC=corp")
	directory.Fixup(byCategory, directory.ParseOptions{})
	set := directory.NewRecordSet(byType, byCategory)

	roots := report.Tree(set, report.GroupCategory)
	require.Len(t, roots, 1)
	assert.Equal(t, "B", roots[0].Label)

	roots = report.Tree(set, report.GroupAccountType)
	require.Len(t, roots, 1)
	assert.Equal(t, "A", roots[0].Label)
}

func TestTreeSelfReference(t *testing.T) {
	g := group("CN=Loop,DC=corp", "Loop", "CN=Loop,DC=corp")
	roots := report.Tree(directory.NewRecordSet(g), report.GroupCategory)
	require.Len(t, roots, 1)
	assert.Empty(t, roots[0].Children, "a group listing itself is skipped")
}

func TestTreeCycleTerminates(t *testing.T) {
	a := group("CN=A,DC=corp", "A", "CN=B,DC=corp")
	b := nested("CN=B,DC=corp", "B", "CN=A,DC=corp", "CN=A,DC=corp")
	roots := report.Tree(directory.NewRecordSet(a, b), report.GroupCategory)

	require.Len(t, roots, 1)
	root := roots[0]
	require.Len(t, root.Children, 1)
	assert.Equal(t, "B", root.Children[0].Label)
	assert.Empty(t, root.Children[0].Children, "the back edge to an ancestor is dropped")
}

func TestTreeSharedChildRendersTwice(t *testing.T) {
	a := group("CN=A,DC=corp", "A", "CN=B,DC=corp", "CN=C,DC=corp")
	b := nested("CN=B,DC=corp", "B", "CN=A,DC=corp", "CN=D,DC=corp")
	c := nested("CN=C,DC=corp", "C", "CN=A,DC=corp", "CN=D,DC=corp")
	d := nested("CN=D,DC=corp", "D", "CN=B,DC=corp")
	roots := report.Tree(directory.NewRecordSet(a, b, c, d), report.GroupCategory)

	require.Len(t, roots, 1)
	root := roots[0]
	require.Len(t, root.Children, 2)
	require.Len(t, root.Children[0].Children, 1)
	require.Len(t, root.Children[1].Children, 1)
	assert.Equal(t, "D", root.Children[0].Children[0].Label)
	assert.Equal(t, "D", root.Children[1].Children[0].Label,
		"a diamond is not a cycle; the shared group shows under both parents")
}

func TestTreeDNMatchingIsInsensitive(t *testing.T) {
	a := group("CN=A,DC=corp", "A", "cn=b,dc=CORP ")
	b := nested("CN=B,DC=corp", "B", "CN=A,DC=corp")
	roots := report.Tree(directory.NewRecordSet(a, b), report.GroupCategory)

	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 1)
	assert.False(t, roots[0].Children[0].Missing)
	assert.Equal(t, "B", roots[0].Children[0].Label)
}

func TestTreeLabelFallsBack(t *testing.T) {
	g := rec("dn", "CN=NoName,DC=corp",
		"objectCategory", "CN=Group,CN=Schema,CN=Configuration,DC=corp")
	directory.Fixup(g, directory.ParseOptions{})
	g.Set("cn", directory.Scalar("NoName"))
	roots := report.Tree(directory.NewRecordSet(g), report.GroupCategory)
	require.Len(t, roots, 1)
	assert.Equal(t, "NoName", roots[0].Label, "cn stands in when name is absent")

	bare := rec("dn", "CN=Bare,DC=corp",
		"objectCategory", "CN=Group,CN=Schema,CN=Configuration,DC=corp")
	directory.Fixup(bare, directory.ParseOptions{})
	roots = report.Tree(directory.NewRecordSet(bare), report.GroupCategory)
	require.Len(t, roots, 1)
	assert.Equal(t, "CN=Bare,DC=corp", roots[0].Label, "DN is the last resort")
}
