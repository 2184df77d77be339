package moniker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathAncestors(t *testing.T) {
	p := PathFromString("a/b/c")
	ancestors := p.Ancestors()

	require.Len(t, ancestors, 2)
	assert.Equal(t, "a", ancestors[0].String())
	assert.Equal(t, "a/b", ancestors[1].String())
}

func TestPathParentAndLeaf(t *testing.T) {
	p := PathFromString("a/b/c")

	require.NotNil(t, p.Parent())
	assert.Equal(t, "a/b", p.Parent().String())
	require.NotNil(t, p.Leaf())
	assert.Equal(t, "c", *p.Leaf())

	root := RootPath()
	assert.Nil(t, root.Parent())
	assert.Nil(t, root.Leaf())
	assert.True(t, root.IsEmpty())
}

func TestPathIsAncestorOf(t *testing.T) {
	a := PathFromString("a")
	ab := PathFromString("a/b")
	abc := PathFromString("a/b/c")
	xb := PathFromString("x/b")

	assert.True(t, a.IsAncestorOf(abc))
	assert.True(t, ab.IsAncestorOf(abc))
	assert.False(t, abc.IsAncestorOf(ab))
	assert.False(t, ab.IsAncestorOf(ab))
	assert.False(t, xb.IsAncestorOf(abc))
}

func TestPathChild(t *testing.T) {
	p := PathFromString("a/b")
	child := p.Child("c")

	assert.Equal(t, "a/b/c", child.String())
	// The receiver is unchanged.
	assert.Equal(t, "a/b", p.String())
}

func TestQueryParams(t *testing.T) {
	q := QueryParams{"format": "json"}

	assert.Equal(t, "json", q.Get("format", "csv"))
	assert.Equal(t, "csv", q.Get("missing", "csv"))
	assert.True(t, q.Has("format"))
	assert.False(t, q.Has("missing"))
}

func TestMonikerVersionHelpers(t *testing.T) {
	m, err := ParseMoniker("risk.cvar/portfolio-123@all")
	require.NoError(t, err)
	assert.True(t, m.IsAll())
	assert.False(t, m.IsLatest())
	assert.Nil(t, m.VersionDate())

	m, err = ParseMoniker("prices/AAPL@daily")
	require.NoError(t, err)
	freq := m.VersionFrequency()
	require.NotNil(t, freq)
	assert.Equal(t, "daily", *freq)
}
