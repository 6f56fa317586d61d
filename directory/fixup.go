package directory

import "strings"

// BaseCategoryField carries the leading objectCategory segment, derived
// during fixups.
const BaseCategoryField = "x-baseCategory"

// ParseOptions controls parsing and the post-parse fixups shared by both
// dump encodings.
type ParseOptions struct {
	// Complete makes truncated enumerations fatal instead of silently
	// stripping the marker.
	Complete bool
	// Binary renders binary payloads as their base64 text instead of the
	// opaque placeholder.
	Binary bool
}

// Fixup normalizes a freshly parsed record regardless of its source
// encoding: single-element multi-values flatten to scalars, binary
// payloads are replaced by the placeholder (or base64 text), and the
// x-baseCategory field is derived from objectCategory.
func Fixup(rec *Record, opts ParseOptions) {
	for _, k := range rec.Keys() {
		v, _ := rec.Get(k)
		switch v.Kind() {
		case KindMulti:
			if v.Len() == 1 {
				rec.Set(rec.DisplayKey(k), Scalar(v.Strings()[0]))
			}
		case KindBinary:
			if opts.Binary {
				rec.Set(rec.DisplayKey(k), Scalar(v.Base64()))
			} else {
				rec.Set(rec.DisplayKey(k), Scalar(BinaryPlaceholder))
			}
		}
	}

	if v, ok := rec.Get("objectcategory"); ok && !rec.Has(BaseCategoryField) {
		if cat := BaseCategory(v.String()); cat != "" {
			rec.Set(BaseCategoryField, Scalar(cat))
		}
	}
}

// BaseCategory extracts the leading category name from an objectCategory
// path: "CN=Person,CN=Schema,CN=Configuration,..." yields "Person". The
// trailing schema path is discarded.
func BaseCategory(path string) string {
	first := path
	if i := strings.Index(first, ","); i >= 0 {
		first = first[:i]
	}
	if i := strings.Index(first, "="); i >= 0 {
		first = first[i+1:]
	}
	return strings.TrimSpace(first)
}
