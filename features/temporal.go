// Package features implements the deterministic transform chain that
// turns raw listing records into the fixed-width numeric feature table
// used by both training and single-row inference.
package features

import (
	"time"

	"priceflow/internal/frame"
)

// timeLayouts are tried in order when parsing listing timestamps.
// Timestamps without a zone are taken as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Temporal parses start_time/end_time and derives duration and calendar
// features:
//
//	start_dt, end_dt   parsed timestamps (unparsable values become null)
//	duration_hours     end_dt - start_dt in hours
//	start_weekday      0=Monday .. 6=Sunday
//	start_hour         0-23
//	start_month        1-12
//
// Nulls propagate: a null start_dt yields null for every dependent
// derived field. Malformed input never raises.
func Temporal(f *frame.Frame) *frame.Frame {
	n := f.Rows()
	startDt := parseTimeColumn(f, "start_time", "start_dt")
	endDt := parseTimeColumn(f, "end_time", "end_dt")
	f.SetColumn(startDt)
	f.SetColumn(endDt)

	duration := frame.NewColumn("duration_hours", frame.Float, n)
	weekday := frame.NewColumn("start_weekday", frame.Int, n)
	hour := frame.NewColumn("start_hour", frame.Int, n)
	month := frame.NewColumn("start_month", frame.Int, n)

	for i := 0; i < n; i++ {
		s, sok := startDt.TimeAt(i)
		e, eok := endDt.TimeAt(i)
		if sok && eok {
			duration.SetFloat(i, e.Sub(s).Hours())
		}
		if sok {
			// time.Weekday has Sunday=0; shift so Monday=0.
			weekday.SetInt(i, int64((int(s.Weekday())+6)%7))
			hour.SetInt(i, int64(s.Hour()))
			month.SetInt(i, int64(s.Month()))
		}
	}

	f.SetColumn(duration)
	f.SetColumn(weekday)
	f.SetColumn(hour)
	f.SetColumn(month)
	return f
}

func parseTimeColumn(f *frame.Frame, src, dst string) *frame.Column {
	n := f.Rows()
	out := frame.NewColumn(dst, frame.Time, n)
	c := f.Column(src)
	if c == nil {
		return out
	}
	for i := 0; i < n; i++ {
		switch c.Kind() {
		case frame.Time:
			if t, ok := c.TimeAt(i); ok {
				out.SetTime(i, t.UTC())
			}
		case frame.String:
			if s, ok := c.StringAt(i); ok {
				if t, parsed := parseTimestamp(s); parsed {
					out.SetTime(i, t)
				}
			}
		}
	}
	return out
}
