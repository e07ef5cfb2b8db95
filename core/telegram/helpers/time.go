package helpers

import "time"

// DateTimeLayout is the day-first layout used in every operator-facing listing.
const DateTimeLayout = "02.01.2006 15:04"

// FormatTime renders t in DateTimeLayout, or "-" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateTimeLayout)
}
