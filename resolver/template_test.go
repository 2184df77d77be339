package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmoniker/openmoniker/moniker"
)

func mustParse(t *testing.T, s string) *moniker.Moniker {
	t.Helper()
	m, err := moniker.ParseMoniker(s)
	require.NoError(t, err)
	return m
}

func TestRenderSegments(t *testing.T) {
	m := mustParse(t, "benchmarks/SP500/EUR")
	got := renderQuery("SELECT * FROM t WHERE a = '{segments[0]}' AND b = '{segments[1]}' AND c = '{segments[2]}'", m)
	assert.Equal(t, "SELECT * FROM t WHERE a = 'benchmarks' AND b = 'SP500' AND c = 'EUR'", got)
}

func TestRenderVersionDateFromVersion(t *testing.T) {
	m := mustParse(t, "prices/AAPL@20260115")
	got := renderQuery("WHERE as_of = '{version_date}'", m)
	assert.Equal(t, "WHERE as_of = '20260115'", got)
}

func TestRenderVersionDateFromTrailingSegment(t *testing.T) {
	m := mustParse(t, "benchmarks.constituents/SP500/20260101")
	got := renderQuery("WHERE as_of = '{version_date}'", m)
	assert.Equal(t, "WHERE as_of = '20260101'", got)
}

func TestRenderVersionDateUntouchedWithoutDate(t *testing.T) {
	m := mustParse(t, "prices/AAPL@latest")
	got := renderQuery("WHERE as_of = '{version_date}'", m)
	assert.Equal(t, "WHERE as_of = '{version_date}'", got)
}

func TestRenderIsLatest(t *testing.T) {
	assert.Equal(t, "latest = true",
		renderQuery("latest = {is_latest}", mustParse(t, "prices/AAPL@latest")))
	assert.Equal(t, "latest = false",
		renderQuery("latest = {is_latest}", mustParse(t, "prices/AAPL@20260101")))
}

func TestRenderDialectPlaceholdersPreserved(t *testing.T) {
	m := mustParse(t, "prices/AAPL@3M")
	template := "SELECT {segments[0]:date}, {filter[1]:column}, {lookback_start_sql}, {date_filter:column}"
	assert.Equal(t, template, renderQuery(template, m))
}

func TestRenderOutOfRangeSegmentPreserved(t *testing.T) {
	m := mustParse(t, "prices")
	assert.Equal(t, "WHERE x = '{segments[5]}'", renderQuery("WHERE x = '{segments[5]}'", m))
}
