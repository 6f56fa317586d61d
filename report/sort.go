package report

import (
	"math"
	"sort"
	"strconv"

	"adsift/directory"
)

// SortRecords orders records by one field, descending. The column
// compares numerically only when every record carrying the field holds
// an all-digit value that fits in int64; a single exception anywhere
// demotes the whole column to lexicographic ordering, including for
// records whose own value looks numeric. Records missing the field get
// a sentinel key (math.MinInt64 numeric, empty string lexicographic)
// so they land together at the bottom either way. The sort is stable:
// equal keys keep dump order.
func SortRecords(set *directory.RecordSet, field string) []*directory.Record {
	type keyed struct {
		rec *directory.Record
		num int64
		lex string
	}

	numeric := true
	rows := make([]keyed, 0, set.Len())
	for _, r := range set.All() {
		k := keyed{rec: r, num: math.MinInt64}
		if v, ok := r.Get(field); ok {
			k.lex = v.String()
			if n, isNum := numericKey(k.lex); isNum {
				k.num = n
			} else {
				numeric = false
			}
		}
		rows = append(rows, k)
	}

	if numeric {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].num > rows[j].num })
	} else {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].lex > rows[j].lex })
	}

	out := make([]*directory.Record, len(rows))
	for i, k := range rows {
		out[i] = k.rec
	}
	return out
}

// numericKey parses s as a sort key. Only non-empty all-digit strings
// qualify; anything else, overflow included, demotes the column.
func numericKey(s string) (int64, bool) {
	if !allDigits(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
