package user

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeCity upper-cases the first letter of a city and lower-cases the rest,
// so "lIMA" becomes "Lima". Matching is case-insensitive regardless.
func NormalizeCity(city string) string {
	first, size := utf8.DecodeRuneInString(city)
	if first == utf8.RuneError {
		return city
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(city[size:])
}
