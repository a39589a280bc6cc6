package domain

import "time"

// DefaultWindowDays is the widest date range requested from AEMET at once.
const DefaultWindowDays = 15

// timestampLayout is the AEMET path format without its literal zone suffix.
const timestampLayout = "2006-01-02T15:04:05"

// Window is an inclusive date range fetched as one unit.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// PartitionYear splits [Jan 1, Dec 31] of year into consecutive windows of
// at most days days. The last window is truncated to Dec 31. Returns nil if
// days is not positive.
func PartitionYear(year, days int) []Window {
	if days <= 0 {
		return nil
	}

	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	windows := make([]Window, 0, 366/days+1)
	for start := first; !start.After(last); {
		end := start.AddDate(0, 0, days-1)
		if end.After(last) {
			end = last
		}
		windows = append(windows, Window{Start: start, End: end})
		start = end.AddDate(0, 0, 1)
	}
	return windows
}

// FormatTimestamp renders t the way the AEMET path expects, e.g.
// "2024-01-01T00:00:00UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout) + "UTC"
}
