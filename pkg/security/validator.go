package security

import (
	"errors"
	"strings"
)

// ErrCityRequired is returned for an empty or blank city term.
var ErrCityRequired = errors.New("city is required")

// ValidateCityQuery trims a city search term and rejects a blank one.
// Any other text is a legitimate city name; callers must escape it
// before using it in a pattern and bind it as a parameter in SQL.
func ValidateCityQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrCityRequired
	}
	return query, nil
}
