// Package moniker implements the moniker grammar: hierarchical, opaque data
// identifiers with optional namespace, version, sub-resource, revision, and
// query parameters.
package moniker

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// VersionType is the semantic classification of a version specifier
type VersionType string

const (
	VersionTypeDate      VersionType = "date"      // @20260101 (YYYYMMDD)
	VersionTypeLatest    VersionType = "latest"    // @latest
	VersionTypeLookback  VersionType = "lookback"  // @3M, @12Y, @1W, @5D
	VersionTypeFrequency VersionType = "frequency" // @daily, @weekly, @monthly
	VersionTypeAll       VersionType = "all"       // @all (full time series)
	VersionTypeCustom    VersionType = "custom"    // source-specific identifier
)

// Path is an ordered sequence of path segments addressing a data asset.
// The canonical string representation joins segments with "/".
type Path struct {
	Segments []string
}

// NewPath creates a Path from segments
func NewPath(segments []string) *Path {
	return &Path{Segments: segments}
}

// RootPath returns the empty root path
func RootPath() *Path {
	return &Path{Segments: []string{}}
}

// String returns the path as a slash-separated string
func (p *Path) String() string {
	return strings.Join(p.Segments, "/")
}

// Len returns the number of segments
func (p *Path) Len() int {
	return len(p.Segments)
}

// IsEmpty reports whether the path has no segments
func (p *Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Domain returns the first segment, or nil for the root path
func (p *Path) Domain() *string {
	if len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[0]
}

// Leaf returns the final segment, or nil for the root path
func (p *Path) Leaf() *string {
	if len(p.Segments) == 0 {
		return nil
	}
	return &p.Segments[len(p.Segments)-1]
}

// Parent returns the parent path, or nil at the root
func (p *Path) Parent() *Path {
	if len(p.Segments) <= 1 {
		return nil
	}
	return &Path{Segments: p.Segments[:len(p.Segments)-1]}
}

// Ancestors returns all ancestor paths from root to parent, excluding self
func (p *Path) Ancestors() []*Path {
	if len(p.Segments) == 0 {
		return nil
	}
	result := make([]*Path, 0, len(p.Segments)-1)
	for i := 1; i < len(p.Segments); i++ {
		result = append(result, &Path{Segments: p.Segments[:i]})
	}
	return result
}

// Child returns a new path with segment appended
func (p *Path) Child(segment string) *Path {
	segments := make([]string, len(p.Segments)+1)
	copy(segments, p.Segments)
	segments[len(p.Segments)] = segment
	return &Path{Segments: segments}
}

// IsAncestorOf reports whether p is a strict ancestor of other
func (p *Path) IsAncestorOf(other *Path) bool {
	if len(p.Segments) >= len(other.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

// PathFromString parses a slash-separated path string without validation
func PathFromString(pathStr string) *Path {
	clean := strings.Trim(pathStr, "/")
	if clean == "" {
		return RootPath()
	}
	return &Path{Segments: strings.Split(clean, "/")}
}

// QueryParams holds moniker query parameters, one value per key
type QueryParams map[string]string

// Get returns a parameter value, or the default when absent
func (q QueryParams) Get(key, defaultVal string) string {
	if val, ok := q[key]; ok {
		return val
	}
	return defaultVal
}

// Has reports whether a parameter is present
func (q QueryParams) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// Moniker is a parsed moniker reference
type Moniker struct {
	Path        *Path
	Namespace   *string
	Version     *string
	VersionType *VersionType
	SubResource *string
	Revision    *int
	Params      QueryParams
}

// String returns the canonical moniker string:
// moniker://[namespace@]path[@version][/sub.resource][/vN][?sorted_params]
func (m *Moniker) String() string {
	var b strings.Builder
	b.WriteString("moniker://")
	if m.Namespace != nil {
		b.WriteString(*m.Namespace)
		b.WriteString("@")
	}
	b.WriteString(m.Path.String())
	if m.Version != nil {
		b.WriteString("@")
		b.WriteString(*m.Version)
	}
	if m.SubResource != nil {
		b.WriteString("/")
		b.WriteString(*m.SubResource)
	}
	if m.Revision != nil {
		fmt.Fprintf(&b, "/v%d", *m.Revision)
	}
	if len(m.Params) > 0 {
		keys := make([]string, 0, len(m.Params))
		for k := range m.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("?")
		for i, k := range keys {
			if i > 0 {
				b.WriteString("&")
			}
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(m.Params[k])
		}
	}
	return b.String()
}

// CanonicalPath returns the path string without namespace, version, or params
func (m *Moniker) CanonicalPath() string {
	return m.Path.String()
}

// IsVersioned reports whether the moniker carries a version specifier
func (m *Moniker) IsVersioned() bool {
	return m.Version != nil
}

// IsLatest reports whether the moniker explicitly requests the latest version
func (m *Moniker) IsLatest() bool {
	return m.VersionType != nil && *m.VersionType == VersionTypeLatest
}

// IsAll reports whether the moniker requests the full time series
func (m *Moniker) IsAll() bool {
	return m.VersionType != nil && *m.VersionType == VersionTypeAll
}

// VersionDate returns the version value when it is a date (YYYYMMDD), else nil
func (m *Moniker) VersionDate() *string {
	if m.VersionType != nil && *m.VersionType == VersionTypeDate {
		return m.Version
	}
	return nil
}

var lookbackParts = regexp.MustCompile(`^(\d+)([YMWD])$`)

// VersionLookback returns (value, unit) when the version is a lookback period
// such as 3M or 12Y. The unit is uppercased. Returns (nil, nil) otherwise.
func (m *Moniker) VersionLookback() (*int, *string) {
	if m.VersionType == nil || *m.VersionType != VersionTypeLookback || m.Version == nil {
		return nil, nil
	}
	matches := lookbackParts.FindStringSubmatch(strings.ToUpper(*m.Version))
	if len(matches) != 3 {
		return nil, nil
	}
	var val int
	fmt.Sscanf(matches[1], "%d", &val)
	return &val, &matches[2]
}

// VersionFrequency returns the lowercased frequency (daily, weekly, monthly)
// when the version is a frequency specifier, else nil
func (m *Moniker) VersionFrequency() *string {
	if m.VersionType != nil && *m.VersionType == VersionTypeFrequency && m.Version != nil {
		freq := strings.ToLower(*m.Version)
		return &freq
	}
	return nil
}
