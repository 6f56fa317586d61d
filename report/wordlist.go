package report

import (
	"sort"
	"strings"

	"adsift/directory"
)

// wordlistDelims are the progressive split passes applied after an
// initial whitespace split. Each pass re-splits every token produced by
// the previous one.
var wordlistDelims = []string{"/", "=", ".", ",", ";", ":", "-", "@", "#", "$", "&", "\\", "+"}

// Wordlist extracts a frequency-ranked token list from every value of
// every record. Values shaped like UID tokens ({...}) or security
// identifiers (S- prefix) are skipped whole. Tokens are lowercased and
// all-digit tokens dropped; the rest rank by descending frequency with
// ties in natural string order, deduplicated in rank order, then
// trimmed to the [minLen, maxLen] length window (maxLen <= 0 means no
// upper bound).
func Wordlist(set *directory.RecordSet, minLen, maxLen int) []string {
	var tokens []string
	for _, r := range set.All() {
		for _, key := range r.Keys() {
			v, _ := r.Get(key)
			for _, s := range v.Strings() {
				if skipScalar(s) {
					continue
				}
				tokens = append(tokens, strings.Fields(s)...)
			}
		}
	}
	for _, d := range wordlistDelims {
		split := make([]string, 0, len(tokens))
		for _, t := range tokens {
			split = append(split, strings.Split(t, d)...)
		}
		tokens = split
	}

	var words []string
	for _, t := range tokens {
		t = strings.ToLower(t)
		if t == "" || allDigits(t) {
			continue
		}
		words = append(words, t)
	}

	count := make(map[string]int, len(words))
	for _, w := range words {
		count[w]++
	}
	// Stable pre-sort establishes natural order, so the frequency sort
	// breaks ties deterministically.
	sort.Strings(words)
	sort.SliceStable(words, func(i, j int) bool { return count[words[i]] > count[words[j]] })

	seen := make(map[string]bool, len(count))
	out := make([]string, 0, len(count))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		if len(w) < minLen {
			continue
		}
		if maxLen > 0 && len(w) > maxLen {
			continue
		}
		out = append(out, w)
	}
	return out
}

func skipScalar(s string) bool {
	return strings.HasPrefix(s, "S-") ||
		(strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"))
}
