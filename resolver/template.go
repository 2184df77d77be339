package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openmoniker/openmoniker/moniker"
)

var dateSegment = regexp.MustCompile(`^\d{8}$`)

// renderQuery performs the engine's placeholder substitution on a query
// template:
//
//	{segments[N]}  → the N-th path segment (0-based)
//	{version_date} → the version value when the version is a date
//	{is_latest}    → "true" or "false"
//
// Dialect-specific placeholders ({segments[N]:date}, {filter[N]:column},
// {lookback_start_sql}, {date_filter:column}, ...) are left untouched so a
// downstream dialect renderer can expand them.
func renderQuery(query string, m *moniker.Moniker) string {
	result := query

	for i, seg := range m.Path.Segments {
		placeholder := fmt.Sprintf("{segments[%d]}", i)
		result = strings.ReplaceAll(result, placeholder, seg)
	}

	if date := versionDate(m); date != nil {
		result = strings.ReplaceAll(result, "{version_date}", *date)
	}

	isLatest := "false"
	if m.IsLatest() {
		isLatest = "true"
	}
	result = strings.ReplaceAll(result, "{is_latest}", isLatest)

	return result
}

// versionDate returns the date feeding {version_date}: the version value when
// classified as a date, else the last date-shaped path segment. Callers that
// encode the as-of date as a trailing segment instead of @version still get a
// rendered query.
func versionDate(m *moniker.Moniker) *string {
	if date := m.VersionDate(); date != nil {
		return date
	}
	for i := len(m.Path.Segments) - 1; i >= 0; i-- {
		if dateSegment.MatchString(m.Path.Segments[i]) {
			return &m.Path.Segments[i]
		}
	}
	return nil
}
