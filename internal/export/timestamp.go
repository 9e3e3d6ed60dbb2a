package export

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrTimestampFormat is returned for timestamps that are not
// "YYYY-MM-DD HH:MM:SS[.ffffff]+00:00".
var ErrTimestampFormat = errors.New("unexpected timestamp format")

const timestampLayout = "2006-01-02 15:04:05"

// stripTimestamp matches the optional microseconds and the UTC offset.
var stripTimestamp = regexp.MustCompile(`(\.\d{6})?\+00:00`)

// ParseTimestamp parses a messages.csv timestamp into a naive time with second
// precision. Microseconds are dropped, not rounded.
func ParseTimestamp(raw string) (time.Time, error) {
	cleaned := stripTimestamp.ReplaceAllString(raw, "")
	// time.Parse tolerates fractional seconds the layout does not name.
	if len(cleaned) != len(timestampLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, raw)
	}
	t, err := time.Parse(timestampLayout, cleaned)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, raw)
	}
	return t, nil
}
