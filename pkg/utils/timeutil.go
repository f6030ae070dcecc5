// Package utils holds small helpers shared by the command line, the API and
// the report renderers.
package utils

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Reports are stamped in IST.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// ToIST converts a time.Time to IST.
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// ParseDateIST parses a date string in "2006-01-02" format as IST.
func ParseDateIST(dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, IST)
}

// FormatDateIST formats a time as "02 Jan 2006" in IST. The zero time formats as "".
func FormatDateIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ToIST(t).Format("02 Jan 2006")
}

// FormatDateTimeIST formats a time as "02 Jan 2006, 03:04 PM IST".
func FormatDateTimeIST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ToIST(t).Format("02 Jan 2006, 03:04 PM") + " IST"
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
