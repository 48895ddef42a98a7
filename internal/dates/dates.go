// Package dates owns the field-level date and clock conventions shared by
// the backend adapters: calendar dates travel as "YYYY-MM-DD", clock
// times as "HH:mm" (some backends emit "HH:mm:ss").
package dates

import (
	"regexp"
	"time"

	"haru-assistant/internal/gateway"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// fallback layouts tried when the strict pattern does not match
var looseLayouts = []string{
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"2006-1-2",
	time.RFC3339,
}

// Normalize returns the canonical "YYYY-MM-DD" form of s. Input already
// matching the strict pattern passes through after a calendar check;
// otherwise generic parsing is attempted and the result reformatted.
// A value that fails both is a hard validation error, never silently
// defaulted.
func Normalize(s string) (string, error) {
	if isoDate.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s, nil
		}
		return "", gateway.NewError(gateway.KindValidation, 0, "잘못된 날짜입니다: "+s)
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", gateway.NewError(gateway.KindValidation, 0, "잘못된 날짜입니다: "+s)
}

// NormalizeClock accepts "HH:mm" or "HH:mm:ss" and returns "HH:mm".
func NormalizeClock(s string) (string, error) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), nil
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04"), nil
	}
	return "", gateway.NewError(gateway.KindValidation, 0, "잘못된 시간입니다: "+s)
}

var weekdayLabels = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// WeekdayLabel returns the Korean day-of-week label for t.
func WeekdayLabel(t time.Time) string {
	return weekdayLabels[int(t.Weekday())]
}

// Today returns the canonical date string for now.
func Today() string {
	return time.Now().Format("2006-01-02")
}
