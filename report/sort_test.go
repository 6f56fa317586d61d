package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adsift/directory"
	"adsift/report"
)

func names(recs []*directory.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		v, _ := r.Get("name")
		out[i] = v.String()
	}
	return out
}

func TestSortRecordsNumeric(t *testing.T) {
	set := directory.NewRecordSet(
		rec("name", "low", "logonCount", "5"),
		rec("name", "high", "logonCount", "12"),
		rec("name", "none"),
		rec("name", "mid", "logonCount", "7"),
	)
	sorted := report.SortRecords(set, "logonCount")
	assert.Equal(t, []string{"high", "mid", "low", "none"}, names(sorted),
		"descending, missing values at the bottom")
}

func TestSortRecordsTimestampPrecision(t *testing.T) {
	set := directory.NewRecordSet(
		rec("name", "older", "lastLogonTimestamp", "133497151620000000"),
		rec("name", "newer", "lastLogonTimestamp", "133497151620000001"),
	)
	sorted := report.SortRecords(set, "lastLogonTimestamp")
	assert.Equal(t, []string{"newer", "older"}, names(sorted),
		"18-digit values differing in the last digit still order correctly")
}

func TestSortRecordsDemotesMixedColumn(t *testing.T) {
	set := directory.NewRecordSet(
		rec("name", "a", "uac", "12"),
		rec("name", "b", "uac", "7a"),
		rec("name", "c"),
	)
	sorted := report.SortRecords(set, "uac")
	assert.Equal(t, []string{"b", "a", "c"}, names(sorted),
		"one non-numeric value makes the whole column lexicographic")
}

func TestSortRecordsOverflowDemotes(t *testing.T) {
	set := directory.NewRecordSet(
		rec("name", "huge", "serial", "99999999999999999999"),
		rec("name", "small", "serial", "8"),
	)
	sorted := report.SortRecords(set, "serial")
	assert.Equal(t, []string{"huge", "small"}, names(sorted),
		"a value past int64 forces string order, where '9...' > '8'")
}

func TestSortRecordsLexicographic(t *testing.T) {
	set := directory.NewRecordSet(
		rec("name", "upper", "title", "Banker"),
		rec("name", "lower", "title", "banker"),
		rec("name", "missing"),
	)
	sorted := report.SortRecords(set, "title")
	assert.Equal(t, []string{"lower", "upper", "missing"}, names(sorted),
		"raw byte order: lowercase sorts above uppercase descending")
}

func TestSortRecordsStableTies(t *testing.T) {
	set := directory.NewRecordSet(
		rec("name", "first", "logonCount", "3"),
		rec("name", "second", "logonCount", "3"),
		rec("name", "third", "logonCount", "3"),
	)
	sorted := report.SortRecords(set, "logonCount")
	assert.Equal(t, []string{"first", "second", "third"}, names(sorted),
		"equal keys keep dump order")
}

func TestSortRecordsEmptySet(t *testing.T) {
	sorted := report.SortRecords(directory.NewRecordSet(), "anything")
	require.Empty(t, sorted)
}
