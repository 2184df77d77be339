// Package resolver implements the resolution engine: binding discovery,
// successor chase, access policy validation, query template rendering, and
// ownership composition.
package resolver

import (
	"fmt"

	"github.com/openmoniker/openmoniker/catalog"
)

// ResolvedSource is the source-binding descriptor returned to clients
type ResolvedSource struct {
	SourceType string                 `json:"source_type"`
	Connection map[string]interface{} `json:"connection"`
	Query      *string                `json:"query,omitempty"`
	Params     map[string]interface{} `json:"params,omitempty"`
	Schema     map[string]interface{} `json:"schema,omitempty"`
	ReadOnly   bool                   `json:"read_only"`
}

// ResolveResult is the full resolution response
type ResolveResult struct {
	Moniker        string                     `json:"moniker"`
	Path           string                     `json:"path"`
	Source         *ResolvedSource            `json:"source"`
	Ownership      *catalog.ResolvedOwnership `json:"ownership"`
	Node           *catalog.Node              `json:"node,omitempty"`
	BindingPath    string                     `json:"binding_path"`
	SubPath        *string                    `json:"sub_path,omitempty"`
	RedirectedFrom *string                    `json:"redirected_from,omitempty"`
	Warning        *string                    `json:"warning,omitempty"`
}

// DescribeResult is metadata about a path, without query rendering
type DescribeResult struct {
	Node             *catalog.Node              `json:"node,omitempty"`
	Ownership        *catalog.ResolvedOwnership `json:"ownership"`
	Moniker          string                     `json:"moniker"`
	Path             string                     `json:"path"`
	HasSourceBinding bool                       `json:"has_source_binding"`
	SourceType       *string                    `json:"source_type,omitempty"`
}

// ListResult holds the direct children of a path
type ListResult struct {
	Children  []string                   `json:"children"`
	Moniker   string                     `json:"moniker"`
	Path      string                     `json:"path"`
	Ownership *catalog.ResolvedOwnership `json:"ownership,omitempty"`
}

// LineageLevel is one node of the ancestor chain
type LineageLevel struct {
	Path       string  `json:"path"`
	Registered bool    `json:"registered"`
	Status     *string `json:"status,omitempty"`
	IsLeaf     *bool   `json:"is_leaf,omitempty"`
}

// LineageResult is the ancestor chain root→self with resolved ownership
type LineageResult struct {
	Path      string                     `json:"path"`
	Hierarchy []LineageLevel             `json:"hierarchy"`
	Ownership *catalog.ResolvedOwnership `json:"ownership"`
}

// CallerIdentity is the observed (not enforced) identity of the API caller
type CallerIdentity struct {
	UserID   string  `json:"user_id"`
	Username *string `json:"username,omitempty"`
	Source   string  `json:"source"` // "api", "jwt", ...
}

// ResolutionError: the moniker parsed or almost parsed, but the input is
// incoherent for resolution.
type ResolutionError struct {
	Message string
}

func (e *ResolutionError) Error() string {
	return e.Message
}

// NotFoundError: no binding is discoverable for the path
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "no source binding found for path: " + e.Path
}

// AccessDeniedError: an access policy rejected the query pattern
type AccessDeniedError struct {
	Message       string
	EstimatedRows *int
}

func (e *AccessDeniedError) Error() string {
	if e.EstimatedRows != nil {
		return fmt.Sprintf("%s (estimated rows: %d)", e.Message, *e.EstimatedRows)
	}
	return e.Message
}
