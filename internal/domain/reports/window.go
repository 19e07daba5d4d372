package reports

import (
	"strings"
	"time"
)

// dateLayouts are the accepted request date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Window is the inclusive date range that bounds sales aggregation.
// Start and End are calendar dates (midnight in the report location).
type Window struct {
	Start time.Time
	End   time.Time
}

// From is the first instant of the window (start date 00:00:00).
func (w Window) From() time.Time {
	return w.Start
}

// To is the last second of the window (end date 23:59:59).
func (w Window) To() time.Time {
	y, m, d := w.End.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, w.End.Location())
}

// DefaultWindow is [today - 1 month, today]. Month arithmetic follows
// time.AddDate, so March 31 maps back to March 3 (or 2) like the host calendar.
func DefaultWindow(now time.Time) Window {
	today := truncateDay(now)
	return Window{
		Start: today.AddDate(0, -1, 0),
		End:   today,
	}
}

// NewWindow builds a window from explicit bounds. A zero bound on either side
// yields the default window.
func NewWindow(start, end, now time.Time) Window {
	if start.IsZero() || end.IsZero() {
		return DefaultWindow(now)
	}
	loc := now.Location()
	return Window{
		Start: truncateDay(start.In(loc)),
		End:   truncateDay(end.In(loc)),
	}
}

// ResolveWindow parses request dates tolerantly. When either side is empty or
// cannot be parsed, both sides fall back to the default window.
func ResolveWindow(start, end string, now time.Time) Window {
	s, okStart := parseDate(start, now.Location())
	e, okEnd := parseDate(end, now.Location())
	if !okStart || !okEnd {
		return DefaultWindow(now)
	}
	return NewWindow(s, e, now)
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
