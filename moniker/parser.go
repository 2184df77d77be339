package moniker

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports a moniker string that could not be parsed. Token, when
// set, is the offending portion of the input.
type ParseError struct {
	Message string
	Token   string
}

func (e *ParseError) Error() string {
	return e.Message
}

// Segments start alphanumeric, then alphanumerics, hyphens, underscores, dots.
var segmentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.\-]*$`)

// Namespaces start with a letter; no dots (dots belong to paths).
var namespacePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-]*$`)

// Versions are plain alphanumeric tokens.
var versionPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Version classification patterns
var (
	dateVersionPattern      = regexp.MustCompile(`^\d{8}$`)
	lookbackVersionPattern  = regexp.MustCompile(`^(?i)\d+[YMWD]$`)
	frequencyVersionPattern = regexp.MustCompile(`^(?i)(daily|weekly|monthly)$`)
)

const (
	maxSegmentLen   = 128
	maxNamespaceLen = 64
)

// ClassifyVersion determines the semantic type of a version string
func ClassifyVersion(version string) *VersionType {
	if version == "" {
		return nil
	}
	var vt VersionType
	switch {
	case dateVersionPattern.MatchString(version):
		vt = VersionTypeDate
	case lookbackVersionPattern.MatchString(version):
		vt = VersionTypeLookback
	case frequencyVersionPattern.MatchString(version):
		vt = VersionTypeFrequency
	case strings.EqualFold(version, "latest"):
		vt = VersionTypeLatest
	case strings.EqualFold(version, "all"):
		vt = VersionTypeAll
	default:
		vt = VersionTypeCustom
	}
	return &vt
}

// ValidateSegment reports whether a path segment is well-formed
func ValidateSegment(segment string) bool {
	if segment == "" || len(segment) > maxSegmentLen {
		return false
	}
	return segmentPattern.MatchString(segment)
}

// ValidateNamespace reports whether a namespace is well-formed
func ValidateNamespace(namespace string) bool {
	if namespace == "" || len(namespace) > maxNamespaceLen {
		return false
	}
	return namespacePattern.MatchString(namespace)
}

// ParsePath parses a slash-separated path string, optionally validating each
// segment. Dots are preserved inside segments; only "/" splits.
func ParsePath(pathStr string, validate bool) (*Path, error) {
	clean := strings.Trim(pathStr, "/")
	if clean == "" {
		return RootPath(), nil
	}

	segments := strings.Split(clean, "/")
	if validate {
		for _, seg := range segments {
			if !ValidateSegment(seg) {
				return nil, &ParseError{
					Message: fmt.Sprintf("invalid path segment %q: segments must start with an alphanumeric and contain only alphanumerics, hyphens, underscores, or dots", seg),
					Token:   seg,
				}
			}
		}
	}
	return &Path{Segments: segments}, nil
}

// Parse parses a full moniker string.
//
// Format: [namespace@]path/segments[@version][/sub.resource][/vN][?query=params]
//
// Examples:
//   - indices.sov/dev/EUR/ALL
//   - commodities.der/crypto/ETH@20260115/v2
//   - verified@ref.sec/ISIN/US0378331005@latest
//   - sec/012345678@20260101/details.corporate.actions
//   - prices.eq/AAPL@3M
//   - moniker://holdings/20260115/fund_alpha?format=json
func Parse(monikerStr string, validate bool) (*Moniker, error) {
	if strings.TrimSpace(monikerStr) == "" {
		return nil, &ParseError{Message: "empty moniker string"}
	}
	monikerStr = strings.TrimSpace(monikerStr)

	// Strip the scheme, rejecting any scheme other than moniker://
	body := monikerStr
	if strings.HasPrefix(body, "moniker://") {
		body = strings.TrimPrefix(body, "moniker://")
	} else if strings.Contains(body, "://") {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid scheme: expected moniker:// or no scheme, got %q", monikerStr),
			Token:   monikerStr[:strings.Index(monikerStr, "://")],
		}
	}

	// Separate the body from the query string at the first "?"
	var queryStr string
	if idx := strings.Index(body, "?"); idx != -1 {
		queryStr = body[idx+1:]
		body = body[:idx]
	}

	// Namespace: the first "@", when it precedes any "/"
	var namespace *string
	remaining := body
	firstAt := strings.Index(body, "@")
	firstSlash := strings.Index(body, "/")
	if firstAt != -1 && (firstSlash == -1 || firstAt < firstSlash) {
		ns := body[:firstAt]
		namespace = &ns
		remaining = body[firstAt+1:]

		if validate && !ValidateNamespace(ns) {
			return nil, &ParseError{
				Message: fmt.Sprintf("invalid namespace %q: must start with a letter and contain only alphanumerics, hyphens, or underscores", ns),
				Token:   ns,
			}
		}
	}

	// Revision: case-insensitive /vN suffix, greedy at the end only
	var revision *int
	if idx := strings.LastIndex(strings.ToLower(remaining), "/v"); idx != -1 {
		digits := remaining[idx+2:]
		if digits != "" && isAllDigits(digits) {
			rev, _ := strconv.Atoi(digits)
			revision = &rev
			remaining = remaining[:idx]
		}
	}

	// Version suffix with optional sub-resource: @version[/sub.resource]
	var version *string
	var subResource *string
	if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
		// The "@" qualifies as a version separator after the first "/",
		// or anywhere once the namespace has already been extracted.
		slashIdx := strings.Index(remaining, "/")
		isVersionAt := namespace != nil || slashIdx == -1 || atIdx > slashIdx

		if isVersionAt {
			afterAt := remaining[atIdx+1:]
			remaining = remaining[:atIdx]

			if slash := strings.Index(afterAt, "/"); slash != -1 {
				ver := afterAt[:slash]
				sub := afterAt[slash+1:]
				version = &ver
				subResource = &sub
			} else {
				version = &afterAt
			}

			if validate && !versionPattern.MatchString(*version) {
				return nil, &ParseError{
					Message: fmt.Sprintf("invalid version %q: must be alphanumeric (e.g. latest, 20260115, 3M)", *version),
					Token:   *version,
				}
			}

			if validate && subResource != nil {
				// Sub-resources are slash-delimited and may be multi-level via
				// dots; every part must be a valid segment.
				for _, part := range strings.FieldsFunc(*subResource, func(r rune) bool { return r == '/' || r == '.' }) {
					if !ValidateSegment(part) {
						return nil, &ParseError{
							Message: fmt.Sprintf("invalid sub-resource segment %q", part),
							Token:   part,
						}
					}
				}
			}
		}
	}

	path, err := ParsePath(remaining, validate)
	if err != nil {
		return nil, err
	}

	// Query parameters: flat map, first value wins on repeated keys
	params := make(QueryParams)
	if queryStr != "" {
		if parsed, err := url.ParseQuery(queryStr); err == nil {
			for key, values := range parsed {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
		}
	}

	var versionType *VersionType
	if version != nil {
		versionType = ClassifyVersion(*version)
	}

	return &Moniker{
		Path:        path,
		Namespace:   namespace,
		Version:     version,
		VersionType: versionType,
		SubResource: subResource,
		Revision:    revision,
		Params:      params,
	}, nil
}

// ParseMoniker parses with validation enabled
func ParseMoniker(monikerStr string) (*Moniker, error) {
	return Parse(monikerStr, true)
}

// Normalize returns the canonical form of a moniker string
func Normalize(monikerStr string) (string, error) {
	m, err := ParseMoniker(monikerStr)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
