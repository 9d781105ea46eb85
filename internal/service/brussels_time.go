package service

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/tourshop/internal/constants"
)

// TourLocalLayout is the offset-free wall-clock format tour times are stored in.
const TourLocalLayout = "2006-01-02T15:04:05"

var brusselsLocation = loadBrussels()

var localDatetimeLayouts = []string{
	TourLocalLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func loadBrussels() *time.Location {
	loc, err := time.LoadLocation(constants.TourTimezone)
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// BrusselsLocation returns the tour timezone.
func BrusselsLocation() *time.Location {
	return brusselsLocation
}

// DatetimeInput either a combined value or a separate date and HH:mm time.
type DatetimeInput struct {
	Combined string
	Date     string
	Time     string
}

// ResolveTourDatetime parses the caller's datetime. Values carrying an offset
// are converted to Brussels; offset-free values are read as Brussels wall clock.
// ok is false when nothing parseable was supplied.
func ResolveTourDatetime(in DatetimeInput) (time.Time, bool) {
	if combined := strings.TrimSpace(in.Combined); combined != "" {
		if t, ok := parseDatetime(combined); ok {
			return t, true
		}
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return time.Time{}, false
	}
	if strings.ContainsAny(date, "T ") {
		return parseDatetime(date)
	}
	clock := strings.TrimSpace(in.Time)
	if clock == "" {
		t, err := time.ParseInLocation("2006-01-02", date, brusselsLocation)
		return t, err == nil
	}
	return parseDatetime(date + "T" + clock)
}

func parseDatetime(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(brusselsLocation), true
	}
	for _, layout := range localDatetimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, brusselsLocation); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatBrusselsLocal renders t as Brussels wall clock without offset.
func FormatBrusselsLocal(t time.Time) string {
	return t.In(brusselsLocation).Format(TourLocalLayout)
}

// ParseBrusselsLocal reads a stored offset-free tour time.
func ParseBrusselsLocal(raw string) (time.Time, error) {
	return time.ParseInLocation(TourLocalLayout, strings.TrimSpace(raw), brusselsLocation)
}

// AddMinutesBrussels adds elapsed minutes to the instant and renders the
// result in Brussels wall clock, so DST switches shift the displayed end.
func AddMinutesBrussels(start time.Time, minutes int) string {
	return FormatBrusselsLocal(start.Add(time.Duration(minutes) * time.Minute))
}

// IsWeekendBrussels reports whether t falls on a Saturday or Sunday in Brussels.
func IsWeekendBrussels(t time.Time) bool {
	switch t.In(brusselsLocation).Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// HourBrussels returns the Brussels wall-clock hour of t.
func HourBrussels(t time.Time) int {
	return t.In(brusselsLocation).Hour()
}
