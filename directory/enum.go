package directory

import (
	"errors"
	"strings"
)

// ErrTruncatedEnum reports an enumeration whose trailing "..." marks it
// incomplete while the caller demanded completeness.
var ErrTruncatedEnum = errors.New("truncated enumeration")

// IsEnum reports whether a raw value carries the {a, b, c} shape.
func IsEnum(s string) bool {
	return strings.HasPrefix(s, "{")
}

// ParseEnum decomposes "{a, b, c}" into its ordered elements. A trailing
// item ending in "..." marks a truncated enumeration: the marker is
// stripped unless complete is set, in which case ErrTruncatedEnum is
// returned.
func ParseEnum(s string, complete bool) ([]string, error) {
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	elems := make([]string, 0, len(parts))
	for _, p := range parts {
		elems = append(elems, strings.TrimSpace(p))
	}

	last := elems[len(elems)-1]
	if strings.HasSuffix(last, "...") {
		if complete {
			return nil, ErrTruncatedEnum
		}
		trimmed := strings.TrimSpace(strings.TrimSuffix(last, "..."))
		if trimmed == "" {
			elems = elems[:len(elems)-1]
		} else {
			elems[len(elems)-1] = trimmed
		}
	}

	return elems, nil
}
