package utils

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// FormatDate renders t as M/D/YYYY.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// FormatPlural appends "s" to word unless amount is exactly one.
func FormatPlural(word string, amount int) string {
	if amount != 1 {
		return word + "s"
	}
	return word
}

// FormatURL shortens a link to its bare host for display: no scheme, no
// leading "www.", no path or query.
func FormatURL(raw string) string {
	s := strings.Replace(raw, "http://", "", 1)
	s = strings.Replace(s, "https://", "", 1)
	s = strings.Replace(s, "www.", "", 1)
	s, _, _ = strings.Cut(s, "/")
	s, _, _ = strings.Cut(s, "?")
	return s
}

// TemplateFuncs exposes the helpers to html/template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"format_date": FormatDate,
		"format_plural": func(word string, amount any) string {
			return FormatPlural(word, toInt(amount))
		},
		"format_url": FormatURL,
		"markdown":   RenderMarkdown,
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint:
		return int(n)
	default:
		return 0
	}
}
