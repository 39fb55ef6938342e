package table

import (
	"fmt"
	"html"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	markupRe    = regexp.MustCompile(`</?[A-Za-z!][^>]*>`)
	lineBreakRe = regexp.MustCompile(`[\r\n\x{2028}\x{2029}]+`)
)

// emptyPlaceholder is the literal cell text treated as "no value" when sorting.
const emptyPlaceholder = "-"

// dateLayouts are tried in order when a string is parsed as a date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999Z",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
}

// formatValue is the default display rendering of a raw cell.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	}
	if f, ok := numericValue(v); ok {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// numericValue converts Go numeric kinds to float64.
func numericValue(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parseNumber accepts plain numbers, thousands separators, a leading currency
// sign and a trailing percent sign.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimLeft(s, "$€£¥")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isEmptySentinel reports whether a raw value sorts as "no value": nil,
// boolean true, the "-" placeholder and the empty string.
func isEmptySentinel(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return x
	case string:
		return x == "" || x == emptyPlaceholder
	case []byte:
		return len(x) == 0 || string(x) == emptyPlaceholder
	}
	return false
}

// rawText prefers the raw string over its rendering so custom renderers do
// not break numeric and date parsing.
func rawText(v any, display string) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return display
}

func hasMarkup(s string) bool {
	return strings.IndexByte(s, '<') >= 0 && markupRe.MatchString(s)
}

func stripMarkup(s string) string {
	if strings.IndexByte(s, '<') < 0 {
		return s
	}
	return markupRe.ReplaceAllString(s, "")
}

func collapseLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n\u2028\u2029") {
		return s
	}
	return lineBreakRe.ReplaceAllString(s, " ")
}

func stripDiacritics(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// normalizeFilter turns display text into its searchable form.
func normalizeFilter(s string) string {
	s = stripMarkup(s)
	if strings.IndexByte(s, '&') >= 0 {
		s = html.UnescapeString(s)
	}
	s = collapseLineBreaks(s)
	return stripDiacritics(s)
}

// NormalizeSearch applies the filter normalization to user search input so
// it compares against filter keys on equal terms.
func NormalizeSearch(s string) string {
	return stripDiacritics(collapseLineBreaks(s))
}

// sortKeyFor derives the comparison key of a raw value for a resolved column
// type. display is the cell's presentation string.
func sortKeyFor(v any, display string, typ ColumnType) SortKey {
	if isEmptySentinel(v) {
		return SortKey{}
	}
	switch typ {
	case TypeNumber:
		if f, ok := numericValue(v); ok {
			return numberKey(f)
		}
		if f, ok := parseNumber(rawText(v, display)); ok {
			return numberKey(f)
		}
		return SortKey{}
	case TypeDate:
		if t, ok := v.(time.Time); ok {
			return timeKey(t)
		}
		if t, ok := parseDate(rawText(v, display)); ok {
			return timeKey(t)
		}
		return SortKey{}
	case TypeHTML:
		s := strings.TrimSpace(stripMarkup(display))
		if s == "" || s == emptyPlaceholder {
			return SortKey{}
		}
		return stringKey(strings.ToLower(s))
	default:
		if display == "" || display == emptyPlaceholder {
			return SortKey{}
		}
		return stringKey(strings.ToLower(display))
	}
}

// detectType resolves TypeAuto from a column's raw values. undefined cells
// and empty sentinels are skipped.
func detectType(values func(yield func(v any) bool)) ColumnType {
	num, date, markup, seen := true, true, false, false
	values(func(v any) bool {
		if isEmptySentinel(v) {
			return true
		}
		seen = true
		switch x := v.(type) {
		case time.Time:
			num = false
		case string:
			num, date, markup = classifyText(x, num, date, markup)
		case []byte:
			num, date, markup = classifyText(string(x), num, date, markup)
		default:
			if _, ok := numericValue(v); ok {
				date = false
			} else {
				num, date = false, false
			}
		}
		return num || date || !markup
	})
	switch {
	case !seen:
		return TypeString
	case num:
		return TypeNumber
	case date:
		return TypeDate
	case markup:
		return TypeHTML
	default:
		return TypeString
	}
}

func classifyText(s string, num, date, markup bool) (bool, bool, bool) {
	if num {
		if _, ok := parseNumber(s); !ok {
			num = false
		}
	}
	if date {
		if _, ok := parseDate(s); !ok {
			date = false
		}
	}
	if !markup && hasMarkup(s) {
		markup = true
	}
	return num, date, markup
}
