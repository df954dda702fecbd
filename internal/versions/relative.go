package versions

import (
	"fmt"
	"time"
)

// RelativeTime describes how long before now the millisecond timestamp ts
// was: "just now", then minutes, hours and days, falling back to the
// calendar date after a week.
func RelativeTime(ts int64, now time.Time) string {
	diff := now.Sub(time.UnixMilli(ts))

	seconds := int(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case seconds < 60:
		return "just now"
	case minutes < 60:
		return plural(minutes, "min")
	case hours < 24:
		return plural(hours, "hour")
	case days < 7:
		return plural(days, "day")
	default:
		return time.UnixMilli(ts).In(now.Location()).Format(time.DateOnly)
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
