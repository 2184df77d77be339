package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openmoniker/openmoniker/errors"
)

// LoadError reports a catalog file that could not be parsed or validated
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("load catalog %s: %s", e.File, e.Message)
	}
	return "load catalog: " + e.Message
}

// nodeSpec mirrors one entry of a declarative catalog file. The file's top
// level is a flat mapping from path to node spec, no wrapper.
type nodeSpec struct {
	DisplayName    string                 `yaml:"display_name"`
	Description    string                 `yaml:"description"`
	Domain         *string                `yaml:"domain"`
	Ownership      *Ownership             `yaml:"ownership"`
	SourceBinding  *bindingSpec           `yaml:"source_binding"`
	AccessPolicy   *policySpec            `yaml:"access_policy"`
	DataQuality    *DataQuality           `yaml:"data_quality"`
	SLA            *SLA                   `yaml:"sla"`
	Freshness      *Freshness             `yaml:"freshness"`
	DataSchema     *DataSchema            `yaml:"schema"`
	Documentation  *Documentation         `yaml:"documentation"`
	Classification string                 `yaml:"classification"`
	Tags           []string               `yaml:"tags"`
	Metadata       map[string]interface{} `yaml:"metadata"`
	Status         string                 `yaml:"status"`
	CreatedAt      *string                `yaml:"created_at"`
	UpdatedAt      *string                `yaml:"updated_at"`
	CreatedBy      *string                `yaml:"created_by"`
	ApprovedBy     *string                `yaml:"approved_by"`
	Deprecation    *string                `yaml:"deprecation_message"`
	Successor      *string                `yaml:"successor"`
	SunsetDeadline *string                `yaml:"sunset_deadline"`
	MigrationGuide *string                `yaml:"migration_guide_url"`
	IsLeaf         bool                   `yaml:"is_leaf"`
}

// bindingSpec mirrors a source binding entry; read_only is a pointer so the
// absent case can default to true.
type bindingSpec struct {
	Type              string                 `yaml:"type"`
	Config            map[string]interface{} `yaml:"config"`
	AllowedOperations []string               `yaml:"allowed_operations"`
	Schema            map[string]interface{} `yaml:"schema"`
	ReadOnly          *bool                  `yaml:"read_only"`
	Cache             *QueryCacheConfig      `yaml:"cache"`
}

// policySpec mirrors an access policy entry; base_row_count and min_filters
// are pointers so absent values can take their defaults.
type policySpec struct {
	RequiredSegments         []int    `yaml:"required_segments"`
	MinFilters               *int     `yaml:"min_filters"`
	BlockedPatterns          []string `yaml:"blocked_patterns"`
	MaxRowsWarn              *int     `yaml:"max_rows_warn"`
	MaxRowsBlock             *int     `yaml:"max_rows_block"`
	CardinalityMultipliers   []int    `yaml:"cardinality_multipliers"`
	BaseRowCount             *int     `yaml:"base_row_count"`
	RequireConfirmationAbove *int     `yaml:"require_confirmation_above"`
	DenialMessage            *string  `yaml:"denial_message"`
	AllowedRoles             []string `yaml:"allowed_roles"`
	AllowedHours             *[2]int  `yaml:"allowed_hours"`
}

// LoadFile loads catalog nodes from one declarative YAML file. Duplicate
// top-level keys are a fatal parse error.
func LoadFile(path string) ([]*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	nodes, err := parseCatalog(data)
	if err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return nodes, nil
}

// LoadFiles loads and merges several catalog files. A path appearing in more
// than one file is a fatal error.
func LoadFiles(paths []string) ([]*Node, error) {
	seen := make(map[string]string)
	var all []*Node

	for _, file := range paths {
		nodes, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			if prev, dup := seen[node.Path]; dup {
				return nil, &LoadError{
					File:    file,
					Message: fmt.Sprintf("path %q already defined in %s", node.Path, prev),
				}
			}
			seen[node.Path] = file
			all = append(all, node)
		}
	}
	return all, nil
}

// parseCatalog decodes a catalog document. The top-level mapping is walked
// through yaml.Node so duplicate keys are detected rather than silently
// last-wins.
func parseCatalog(data []byte) ([]*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse catalog YAML")
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil // empty document
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.Newf("catalog top level must be a mapping of path to node, got %s", kindName(root.Kind))
	}

	seen := make(map[string]int)
	nodes := make([]*Node, 0, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		path := keyNode.Value

		if line, dup := seen[path]; dup {
			return nil, errors.Newf("duplicate catalog key %q at line %d (first defined at line %d)", path, keyNode.Line, line)
		}
		seen[path] = keyNode.Line

		if valNode.Kind == yaml.ScalarNode && valNode.Tag == "!!null" {
			continue
		}

		var spec nodeSpec
		if err := valNode.Decode(&spec); err != nil {
			return nil, errors.Wrapf(err, "node %q", path)
		}

		node, err := specToNode(path, &spec)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// specToNode validates a spec against the schema and applies load-time
// normalization: missing status → active, missing classification → internal,
// read_only → true, base_row_count → 100.
func specToNode(path string, spec *nodeSpec) (*Node, error) {
	node := &Node{
		Path:               path,
		DisplayName:        spec.DisplayName,
		Description:        spec.Description,
		Domain:             spec.Domain,
		Ownership:          spec.Ownership,
		DataQuality:        spec.DataQuality,
		SLA:                spec.SLA,
		Freshness:          spec.Freshness,
		DataSchema:         spec.DataSchema,
		Documentation:      spec.Documentation,
		Classification:     spec.Classification,
		Tags:               spec.Tags,
		Metadata:           spec.Metadata,
		CreatedAt:          spec.CreatedAt,
		UpdatedAt:          spec.UpdatedAt,
		CreatedBy:          spec.CreatedBy,
		ApprovedBy:         spec.ApprovedBy,
		DeprecationMessage: spec.Deprecation,
		Successor:          spec.Successor,
		SunsetDeadline:     spec.SunsetDeadline,
		MigrationGuideURL:  spec.MigrationGuide,
		IsLeaf:             spec.IsLeaf,
	}

	if node.Classification == "" {
		node.Classification = "internal"
	}

	if spec.Status == "" {
		node.Status = NodeStatusActive
	} else {
		status := NodeStatus(spec.Status)
		if !ValidStatuses[status] {
			return nil, errors.Newf("node %q: invalid status %q", path, spec.Status)
		}
		node.Status = status
	}

	if spec.SourceBinding != nil {
		sourceType := SourceType(spec.SourceBinding.Type)
		if !ValidSourceTypes[sourceType] {
			return nil, errors.Newf("node %q: invalid source type %q", path, spec.SourceBinding.Type)
		}
		readOnly := true
		if spec.SourceBinding.ReadOnly != nil {
			readOnly = *spec.SourceBinding.ReadOnly
		}
		node.SourceBinding = &SourceBinding{
			SourceType:        sourceType,
			Config:            spec.SourceBinding.Config,
			AllowedOperations: spec.SourceBinding.AllowedOperations,
			Schema:            spec.SourceBinding.Schema,
			ReadOnly:          readOnly,
			Cache:             spec.SourceBinding.Cache,
		}
	}

	if spec.AccessPolicy != nil {
		policy := &AccessPolicy{
			RequiredSegments:         spec.AccessPolicy.RequiredSegments,
			BlockedPatterns:          spec.AccessPolicy.BlockedPatterns,
			MaxRowsWarn:              spec.AccessPolicy.MaxRowsWarn,
			MaxRowsBlock:             spec.AccessPolicy.MaxRowsBlock,
			CardinalityMultipliers:   spec.AccessPolicy.CardinalityMultipliers,
			BaseRowCount:             defaultBaseRowCount,
			RequireConfirmationAbove: spec.AccessPolicy.RequireConfirmationAbove,
			DenialMessage:            spec.AccessPolicy.DenialMessage,
			AllowedRoles:             spec.AccessPolicy.AllowedRoles,
			AllowedHours:             spec.AccessPolicy.AllowedHours,
		}
		if spec.AccessPolicy.MinFilters != nil {
			policy.MinFilters = *spec.AccessPolicy.MinFilters
		}
		if spec.AccessPolicy.BaseRowCount != nil {
			policy.BaseRowCount = *spec.AccessPolicy.BaseRowCount
		}
		node.AccessPolicy = policy
	}

	return node, nil
}
