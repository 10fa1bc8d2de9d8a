package normalize

import (
	"strings"
	"time"
)

// iso8601Millis is the single textual timestamp representation used across
// the canonical schema: UTC with millisecond precision.
const iso8601Millis = "2006-01-02T15:04:05.000Z"

// layouts accepted for string timestamps. Naive layouts are interpreted as
// UTC.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToISO8601 coerces a timestamp of any supported shape to ISO-8601 UTC with
// millisecond precision. Numeric values are epoch seconds; they are
// distinguished from strings by type, never by content. Unparseable values
// normalize to "" rather than erroring.
func ToISO8601(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(iso8601Millis)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.UTC().Format(iso8601Millis)
	case string:
		return parseTimestampString(t)
	default:
		if f, ok := numberOf(v); ok {
			sec := int64(f)
			nsec := int64((f - float64(sec)) * float64(time.Second))
			return time.Unix(sec, nsec).UTC().Format(iso8601Millis)
		}
		return ""
	}
}

func parseTimestampString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC().Format(iso8601Millis)
		}
	}
	// Last resort: full RFC 3339 with offset.
	if d, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return d.UTC().Format(iso8601Millis)
	}
	return ""
}
