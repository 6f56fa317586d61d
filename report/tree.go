package report

import (
	"strings"

	"adsift/directory"
)

// RootSelector chooses which records anchor a membership tree.
type RootSelector int

const (
	// GroupCategory anchors on records whose base category is Group.
	GroupCategory RootSelector = iota
	// GroupAccountType anchors on records whose samAccountType is
	// GROUP_OBJECT.
	GroupAccountType
)

// Node is one element of a reconstructed membership tree.
type Node struct {
	Label    string
	DN       string
	Missing  bool // member DN absent from the record set
	Children []*Node
}

// Tree rebuilds membership hierarchies by following member DNs. A root
// is a group record with no memberOf field, meaning no known parent.
// Each member DN resolves through a linear scan of the set; unresolved
// DNs become leaves marked Missing rather than errors. A member whose
// DN is already on the current ancestor path is skipped, so
// self-references and longer membership cycles terminate while a group
// shared by two parents still renders under both.
func Tree(set *directory.RecordSet, by RootSelector) []*Node {
	var roots []*Node
	for _, rec := range set.All() {
		if !treeRoot(rec, by) {
			continue
		}
		roots = append(roots, expand(set, rec, map[string]bool{}))
	}
	return roots
}

func treeRoot(r *directory.Record, by RootSelector) bool {
	if r.Has("memberof") {
		return false
	}
	switch by {
	case GroupAccountType:
		v, ok := r.Get("samaccounttype")
		return ok && strings.EqualFold(v.String(), "GROUP_OBJECT")
	default:
		return strings.EqualFold(r.BaseCategory(), "Group")
	}
}

func expand(set *directory.RecordSet, rec *directory.Record, path map[string]bool) *Node {
	dn := rec.DN()
	key := directory.NormalizeDN(dn)
	path[key] = true
	defer delete(path, key)

	n := &Node{Label: label(rec), DN: dn}
	members, ok := rec.Get("member")
	if !ok {
		return n
	}
	for _, mdn := range members.Strings() {
		if path[directory.NormalizeDN(mdn)] {
			continue
		}
		child := set.FindByDN(mdn)
		if child == nil {
			n.Children = append(n.Children, &Node{Label: mdn, DN: mdn, Missing: true})
			continue
		}
		n.Children = append(n.Children, expand(set, child, path))
	}
	return n
}

// label picks the display name for a record, falling back to its DN.
func label(r *directory.Record) string {
	for _, key := range []string{"name", "cn"} {
		if v, ok := r.Get(key); ok {
			return v.String()
		}
	}
	return r.DN()
}
