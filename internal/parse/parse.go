// Package parse turns raw request strings into typed values. Every
// function either returns a value or an *errs.Error of kind validation
// naming the offending field.
package parse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ayush/exercise-tracker/internal/errs"
)

// DisplayLayout is the day-level format used in API responses, e.g. "Mon Jan 01 2024".
const DisplayLayout = "Mon Jan 02 2006"

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339Nano,
	DisplayLayout,
}

// Day truncates t to midnight UTC of the calendar day t falls on in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a stored calendar day for clients.
func FormatDay(t time.Time) string {
	return Day(t).Format(DisplayLayout)
}

// Date parses a calendar date. Timestamps keep the day of their own offset.
func Date(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errs.Validation(field, field+" is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, errs.Validation(field, field+" must be a valid date (YYYY-MM-DD)")
}

// OptionalDate is Date for fields that may be absent. ok is false when raw is blank.
func OptionalDate(field, raw string) (t time.Time, ok bool, err error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false, nil
	}
	t, err = Date(field, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// MaxDuration is the largest duration the stores can hold (a 32-bit column).
const MaxDuration = math.MaxInt32

// Duration parses a positive whole number of minutes. Integral decimals such
// as "30.0" are accepted. Exponent and hex forms are not.
func Duration(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errs.Validation("duration", "duration is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		if strings.ContainsAny(s, "eExXpP_") {
			return 0, errs.Validation("duration", "duration must be an integer number of minutes")
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > MaxDuration {
			return 0, errs.Validation("duration", "duration must be an integer number of minutes")
		}
		n = int(f)
	}
	if n <= 0 {
		return 0, errs.Validation("duration", "duration must be greater than zero")
	}
	if n > MaxDuration {
		return 0, errs.Validation("duration", "duration is too large")
	}
	return n, nil
}

// Limit parses an optional positive result cap. Zero means no limit.
func Limit(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errs.Validation("limit", "limit must be a positive integer")
	}
	return n, nil
}
