package util

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// FormatDate formats a date string (YYYY-MM-DD) for display.
func FormatDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}

// FormatTime formats a timestamp, dropping the clock for midnight values.
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("Jan 02, 2006")
	}
	return t.Format("Jan 02, 2006 15:04")
}

// FormatCount formats a row count with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatNumber formats a float with separators and at most two decimals.
func FormatNumber(f float64) string {
	return humanize.CommafWithDigits(f, 2)
}

// FormatLength formats a page length; -1 reads as "All".
func FormatLength(n int) string {
	if n < 0 {
		return "All"
	}
	return FormatCount(n)
}

// TruncateString truncates a string to maxLen display cells and adds "..."
// if needed.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// PadRight truncates or pads s to exactly width display cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}

// SingleLine replaces line breaks and tabs with spaces.
func SingleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
