// Package catalog implements the catalog data model and the in-memory
// registry: a hierarchical tree of nodes carrying ownership, source binding,
// and access policy, with per-field inheritance and atomic snapshot swap.
package catalog

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// SourceType identifies a supported data source backend
type SourceType string

const (
	SourceTypeSnowflake  SourceType = "snowflake"
	SourceTypeOracle     SourceType = "oracle"
	SourceTypeMSSQL      SourceType = "mssql"
	SourceTypeREST       SourceType = "rest"
	SourceTypeStatic     SourceType = "static"
	SourceTypeExcel      SourceType = "excel"
	SourceTypeBloomberg  SourceType = "bloomberg"
	SourceTypeRefinitiv  SourceType = "refinitiv"
	SourceTypeOpenSearch SourceType = "opensearch"
	SourceTypeComposite  SourceType = "composite" // combines multiple sources
	SourceTypeDerived    SourceType = "derived"   // computed from other monikers
)

// ValidSourceTypes is the closed set of accepted source types
var ValidSourceTypes = map[SourceType]bool{
	SourceTypeSnowflake:  true,
	SourceTypeOracle:     true,
	SourceTypeMSSQL:      true,
	SourceTypeREST:       true,
	SourceTypeStatic:     true,
	SourceTypeExcel:      true,
	SourceTypeBloomberg:  true,
	SourceTypeRefinitiv:  true,
	SourceTypeOpenSearch: true,
	SourceTypeComposite:  true,
	SourceTypeDerived:    true,
}

// NodeStatus is the lifecycle status of a catalog node
type NodeStatus string

const (
	NodeStatusDraft         NodeStatus = "draft"          // being defined, not visible to clients
	NodeStatusPendingReview NodeStatus = "pending_review" // submitted for governance review
	NodeStatusApproved      NodeStatus = "approved"       // governance approved, ready to activate
	NodeStatusActive        NodeStatus = "active"         // live and resolvable
	NodeStatusDeprecated    NodeStatus = "deprecated"     // still resolves, clients warned
	NodeStatusArchived      NodeStatus = "archived"       // no longer resolvable
)

// ValidStatuses is the closed set of accepted lifecycle statuses
var ValidStatuses = map[NodeStatus]bool{
	NodeStatusDraft:         true,
	NodeStatusPendingReview: true,
	NodeStatusApproved:      true,
	NodeStatusActive:        true,
	NodeStatusDeprecated:    true,
	NodeStatusArchived:      true,
}

// servableStatus reports whether a node in this status may serve a binding.
// Archived, draft, and pending-review nodes never serve.
func servableStatus(status NodeStatus) bool {
	switch status {
	case NodeStatusArchived, NodeStatusDraft, NodeStatusPendingReview:
		return false
	}
	return true
}

// Ownership carries governance contacts for a catalog node. All fields are
// nullable and inherit independently from the nearest ancestor that defines
// them.
type Ownership struct {
	AccountableOwner *string `json:"accountable_owner,omitempty" yaml:"accountable_owner,omitempty"`
	DataSpecialist   *string `json:"data_specialist,omitempty" yaml:"data_specialist,omitempty"`
	SupportChannel   *string `json:"support_channel,omitempty" yaml:"support_channel,omitempty"`

	// Formal governance roles with human-readable names
	ADOP     *string `json:"adop,omitempty" yaml:"adop,omitempty"`
	ADS      *string `json:"ads,omitempty" yaml:"ads,omitempty"`
	ADAL     *string `json:"adal,omitempty" yaml:"adal,omitempty"`
	ADOPName *string `json:"adop_name,omitempty" yaml:"adop_name,omitempty"`
	ADSName  *string `json:"ads_name,omitempty" yaml:"ads_name,omitempty"`
	ADALName *string `json:"adal_name,omitempty" yaml:"adal_name,omitempty"`

	// UI is a URL to a custom dashboard for this node
	UI *string `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// IsEmpty reports whether no ownership fields are defined
func (o *Ownership) IsEmpty() bool {
	return o.AccountableOwner == nil && o.DataSpecialist == nil && o.SupportChannel == nil &&
		o.ADOP == nil && o.ADS == nil && o.ADAL == nil &&
		o.ADOPName == nil && o.ADSName == nil && o.ADALName == nil && o.UI == nil
}

// QueryCacheConfig configures caching for expensive queries on a binding
type QueryCacheConfig struct {
	Enabled                bool `json:"enabled" yaml:"enabled"`
	TTLSeconds             int  `json:"ttl_seconds" yaml:"ttl_seconds"`
	RefreshIntervalSeconds int  `json:"refresh_interval_seconds" yaml:"refresh_interval_seconds"`
	RefreshOnStartup       bool `json:"refresh_on_startup" yaml:"refresh_on_startup"`
}

// SourceBinding associates a node with a concrete data source. Config is
// opaque to the engine except for the reserved "query" key, which is a
// template string subject to placeholder substitution.
type SourceBinding struct {
	SourceType        SourceType             `json:"type" yaml:"type"`
	Config            map[string]interface{} `json:"config" yaml:"config"`
	AllowedOperations []string               `json:"allowed_operations,omitempty" yaml:"allowed_operations,omitempty"`
	Schema            map[string]interface{} `json:"schema,omitempty" yaml:"schema,omitempty"`
	ReadOnly          bool                   `json:"read_only" yaml:"read_only"`
	Cache             *QueryCacheConfig      `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Fingerprint returns the first 8 bytes (16 hex chars) of the SHA-256 of the
// binding contract. The serialization is sorted-key, minimal-whitespace JSON;
// external systems depend on byte-for-byte equality, so the shape here must
// not change.
func (sb *SourceBinding) Fingerprint() string {
	data := map[string]interface{}{
		"source_type":        string(sb.SourceType),
		"config":             sb.Config,
		"allowed_operations": sb.AllowedOperations,
		"schema":             sb.Schema,
		"read_only":          sb.ReadOnly,
	}
	raw, _ := json.Marshal(data)
	hash := sha256.Sum256(raw)
	return fmt.Sprintf("%x", hash[:8])
}

// DataQuality carries data quality information for a node
type DataQuality struct {
	DQOwner         *string  `json:"dq_owner,omitempty" yaml:"dq_owner,omitempty"`
	QualityScore    *float64 `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
	ValidationRules []string `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	KnownIssues     []string `json:"known_issues,omitempty" yaml:"known_issues,omitempty"`
	LastValidated   *string  `json:"last_validated,omitempty" yaml:"last_validated,omitempty"`
}

// SLA carries service level expectations for a data source
type SLA struct {
	Freshness         *string `json:"freshness,omitempty" yaml:"freshness,omitempty"`
	Availability      *string `json:"availability,omitempty" yaml:"availability,omitempty"`
	SupportHours      *string `json:"support_hours,omitempty" yaml:"support_hours,omitempty"`
	EscalationContact *string `json:"escalation_contact,omitempty" yaml:"escalation_contact,omitempty"`
}

// Freshness carries data freshness information
type Freshness struct {
	LastLoaded           *string  `json:"last_loaded,omitempty" yaml:"last_loaded,omitempty"`
	RefreshSchedule      *string  `json:"refresh_schedule,omitempty" yaml:"refresh_schedule,omitempty"`
	SourceSystem         *string  `json:"source_system,omitempty" yaml:"source_system,omitempty"`
	UpstreamDependencies []string `json:"upstream_dependencies,omitempty" yaml:"upstream_dependencies,omitempty"`
}

// ColumnSchema describes a single column of a bound source
type ColumnSchema struct {
	Name         string  `json:"name" yaml:"name"`
	DataType     string  `json:"data_type" yaml:"data_type"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
	SemanticType *string `json:"semantic_type,omitempty" yaml:"semantic_type,omitempty"`
	Example      *string `json:"example,omitempty" yaml:"example,omitempty"`
	Nullable     bool    `json:"nullable" yaml:"nullable"`
	PrimaryKey   bool    `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	ForeignKey   *string `json:"foreign_key,omitempty" yaml:"foreign_key,omitempty"`
}

// DataSchema carries schema metadata for a bound source
type DataSchema struct {
	Columns         []ColumnSchema `json:"columns,omitempty" yaml:"columns,omitempty"`
	Description     string         `json:"description,omitempty" yaml:"description,omitempty"`
	SemanticTags    []string       `json:"semantic_tags,omitempty" yaml:"semantic_tags,omitempty"`
	PrimaryKey      []string       `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	UseCases        []string       `json:"use_cases,omitempty" yaml:"use_cases,omitempty"`
	Examples        []string       `json:"examples,omitempty" yaml:"examples,omitempty"`
	RelatedMonikers []string       `json:"related_monikers,omitempty" yaml:"related_monikers,omitempty"`
	Granularity     *string        `json:"granularity,omitempty" yaml:"granularity,omitempty"`
	TypicalRowCount *string        `json:"typical_row_count,omitempty" yaml:"typical_row_count,omitempty"`
	UpdateFrequency *string        `json:"update_frequency,omitempty" yaml:"update_frequency,omitempty"`
}

// Documentation carries documentation links for a node
type Documentation struct {
	GlossaryURL       *string           `json:"glossary_url,omitempty" yaml:"glossary_url,omitempty"`
	RunbookURL        *string           `json:"runbook_url,omitempty" yaml:"runbook_url,omitempty"`
	OnboardingURL     *string           `json:"onboarding_url,omitempty" yaml:"onboarding_url,omitempty"`
	DataDictionaryURL *string           `json:"data_dictionary_url,omitempty" yaml:"data_dictionary_url,omitempty"`
	APIDocsURL        *string           `json:"api_docs_url,omitempty" yaml:"api_docs_url,omitempty"`
	ArchitectureURL   *string           `json:"architecture_url,omitempty" yaml:"architecture_url,omitempty"`
	ChangelogURL      *string           `json:"changelog_url,omitempty" yaml:"changelog_url,omitempty"`
	ContactURL        *string           `json:"contact_url,omitempty" yaml:"contact_url,omitempty"`
	AdditionalLinks   map[string]string `json:"additional_links,omitempty" yaml:"additional_links,omitempty"`
}

// Node is a catalog entry keyed by its canonical path
type Node struct {
	Path        string `json:"path" yaml:"-"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`

	// Domain mapping for top-level nodes
	Domain *string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// Ownership inherits per-field from ancestors when not set
	Ownership *Ownership `json:"ownership,omitempty" yaml:"ownership,omitempty"`

	// SourceBinding is typically present only on leaf nodes
	SourceBinding *SourceBinding `json:"source_binding,omitempty" yaml:"source_binding,omitempty"`

	DataQuality *DataQuality `json:"data_quality,omitempty" yaml:"data_quality,omitempty"`
	SLA         *SLA         `json:"sla,omitempty" yaml:"sla,omitempty"`
	Freshness   *Freshness   `json:"freshness,omitempty" yaml:"freshness,omitempty"`
	DataSchema  *DataSchema  `json:"schema,omitempty" yaml:"schema,omitempty"`

	AccessPolicy  *AccessPolicy  `json:"access_policy,omitempty" yaml:"access_policy,omitempty"`
	Documentation *Documentation `json:"documentation,omitempty" yaml:"documentation,omitempty"`

	Classification string                 `json:"classification" yaml:"classification"`
	Tags           []string               `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Governance lifecycle
	Status             NodeStatus `json:"status" yaml:"status"`
	CreatedAt          *string    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt          *string    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	CreatedBy          *string    `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	ApprovedBy         *string    `json:"approved_by,omitempty" yaml:"approved_by,omitempty"`
	DeprecationMessage *string    `json:"deprecation_message,omitempty" yaml:"deprecation_message,omitempty"`

	// Successor-based migration
	Successor         *string `json:"successor,omitempty" yaml:"successor,omitempty"`
	SunsetDeadline    *string `json:"sunset_deadline,omitempty" yaml:"sunset_deadline,omitempty"`
	MigrationGuideURL *string `json:"migration_guide_url,omitempty" yaml:"migration_guide_url,omitempty"`

	// IsLeaf distinguishes actual data from category nodes
	IsLeaf bool `json:"is_leaf" yaml:"is_leaf"`
}

// ResolvedOwnership is the output of the inheritance walk: each field paired
// with the path at which it was defined (its provenance).
type ResolvedOwnership struct {
	AccountableOwner       *string `json:"accountable_owner,omitempty"`
	AccountableOwnerSource *string `json:"accountable_owner_source,omitempty"`

	DataSpecialist       *string `json:"data_specialist,omitempty"`
	DataSpecialistSource *string `json:"data_specialist_source,omitempty"`

	SupportChannel       *string `json:"support_channel,omitempty"`
	SupportChannelSource *string `json:"support_channel_source,omitempty"`

	ADOP           *string `json:"adop,omitempty"`
	ADOPSource     *string `json:"adop_source,omitempty"`
	ADOPName       *string `json:"adop_name,omitempty"`
	ADOPNameSource *string `json:"adop_name_source,omitempty"`

	ADS           *string `json:"ads,omitempty"`
	ADSSource     *string `json:"ads_source,omitempty"`
	ADSName       *string `json:"ads_name,omitempty"`
	ADSNameSource *string `json:"ads_name_source,omitempty"`

	ADAL           *string `json:"adal,omitempty"`
	ADALSource     *string `json:"adal_source,omitempty"`
	ADALName       *string `json:"adal_name,omitempty"`
	ADALNameSource *string `json:"adal_name_source,omitempty"`

	UI       *string `json:"ui,omitempty"`
	UISource *string `json:"ui_source,omitempty"`
}

// ToOwnership strips provenance, returning plain Ownership
func (ro *ResolvedOwnership) ToOwnership() *Ownership {
	return &Ownership{
		AccountableOwner: ro.AccountableOwner,
		DataSpecialist:   ro.DataSpecialist,
		SupportChannel:   ro.SupportChannel,
		ADOP:             ro.ADOP,
		ADS:              ro.ADS,
		ADAL:             ro.ADAL,
		ADOPName:         ro.ADOPName,
		ADSName:          ro.ADSName,
		ADALName:         ro.ADALName,
		UI:               ro.UI,
	}
}
