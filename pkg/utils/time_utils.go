package utils

import "time"

// Use explicit "seconds" variant for DB storage
func NowUnixSeconds() int64 { return time.Now().Unix() }

// StartOfDayUTC returns midnight UTC of the calendar day containing t.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayStartUnix is StartOfDayUTC in unix seconds, the unit quota resets are stored in.
func DayStartUnix(t time.Time) int64 {
	return StartOfDayUTC(t).Unix()
}

// FromUnixSeconds returns zero time if t<=0 to let callers decide how to render.
func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).UTC()
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FormatUnixRFC3339 renders a nullable unix-seconds column.
func FormatUnixRFC3339(t *int64) *string {
	if t == nil || *t <= 0 {
		return nil
	}
	s := FormatRFC3339(FromUnixSeconds(*t))
	return &s
}
