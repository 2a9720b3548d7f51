package timeutil

import (
	"time"
)

// DefaultOffsetMinutes is the upload-day offset used when callers do not supply one (UTC+9).
const DefaultOffsetMinutes = 540

// KST is the Korea Standard Time location (UTC+9)
var KST *time.Location

func init() {
	var err error
	KST, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		// Fallback: create fixed zone if Asia/Seoul not available
		KST = time.FixedZone("KST", DefaultOffsetMinutes*60)
	}
}

// Now returns the current time in KST
func Now() time.Time {
	return time.Now().In(KST)
}

// Zone returns a fixed zone for a UTC offset in minutes.
func Zone(offsetMinutes int) *time.Location {
	if offsetMinutes == DefaultOffsetMinutes {
		return time.FixedZone("KST", offsetMinutes*60)
	}
	return time.FixedZone("", offsetMinutes*60)
}

// DayWindow is a local calendar day expressed as a half-open UTC range [Start, End).
type DayWindow struct {
	Start time.Time
	End   time.Time
	Key   string
}

// Contains reports whether t falls inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// UploadDay returns the local day containing now under a fixed UTC offset.
func UploadDay(now time.Time, offsetMinutes int) DayWindow {
	loc := Zone(offsetMinutes)
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayWindow{
		Start: start.UTC(),
		End:   start.Add(24 * time.Hour).UTC(),
		Key:   start.Format(DateLayout),
	}
}

// MonthKey formats the local month containing now as YYYY-MM.
func MonthKey(now time.Time, offsetMinutes int) string {
	return now.In(Zone(offsetMinutes)).Format(MonthLayout)
}

// MidnightUTC truncates t to 00:00:00 UTC of its UTC calendar day.
func MidnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last instant of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return MidnightUTC(t).Add(24*time.Hour - time.Nanosecond)
}

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)
