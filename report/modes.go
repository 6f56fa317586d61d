// Package report turns filtered record sets into the analyzer's output
// modes: plain listings, email lists, category tallies, membership
// trees, type-aware sorts and ranked wordlists.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"adsift/directory"
)

// Listing writes each record as "key: value" lines in field order with
// original key casing, records separated by a blank line. Works on
// single-pass sources.
func Listing(w io.Writer, src directory.Source) error {
	for r, err := range src.Records() {
		if err != nil {
			return err
		}
		for _, key := range r.Keys() {
			v, _ := r.Get(key)
			fmt.Fprintf(w, "%s: %s\n", r.DisplayKey(key), v.String())
		}
		fmt.Fprintln(w)
	}
	return nil
}

// Emails writes "Name <address>" for every user or person record that
// carries a mail field. Works on single-pass sources.
func Emails(w io.Writer, src directory.Source) error {
	for r, err := range src.Records() {
		if err != nil {
			return err
		}
		if !emailCandidate(r) {
			continue
		}
		mail, ok := r.Get("mail")
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s <%s>\n", label(r), mail.String())
	}
	return nil
}

func emailCandidate(r *directory.Record) bool {
	if v, ok := r.Get("samaccounttype"); ok && strings.EqualFold(v.String(), "USER_OBJECT") {
		return true
	}
	return strings.EqualFold(r.BaseCategory(), "Person")
}

// Tally writes per-category record counts, most frequent first with
// ties in name order. Records without a derived base category count
// under "(none)".
func Tally(w io.Writer, set *directory.RecordSet) {
	counts := make(map[string]int)
	for _, r := range set.All() {
		cat := r.BaseCategory()
		if cat == "" {
			cat = "(none)"
		}
		counts[cat]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.SliceStable(names, func(i, j int) bool { return counts[names[i]] > counts[names[j]] })
	for _, name := range names {
		fmt.Fprintf(w, "%6d  %s\n", counts[name], name)
	}
}

// RenderTree writes a membership tree with four-space indentation per
// level. Unresolved members carry a missing marker.
func RenderTree(w io.Writer, roots []*Node) {
	for _, n := range roots {
		renderNode(w, n, 0)
	}
}

func renderNode(w io.Writer, n *Node, depth int) {
	indent := strings.Repeat("    ", depth)
	if n.Missing {
		fmt.Fprintf(w, "%s%s [missing]\n", indent, n.Label)
		return
	}
	fmt.Fprintf(w, "%s%s\n", indent, n.Label)
	for _, c := range n.Children {
		renderNode(w, c, depth+1)
	}
}

// Words writes one token per line.
func Words(w io.Writer, words []string) {
	for _, word := range words {
		fmt.Fprintln(w, word)
	}
}
