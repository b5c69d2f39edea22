package core

import "fmt"

// EntityType is a kind of entity held in the entity store
type EntityType string

const (
	EntityTypeHost    EntityType = "host"
	EntityTypeUser    EntityType = "user"
	EntityTypeService EntityType = "service"
)

// EntityTypes lists every entity type
var EntityTypes = []EntityType{EntityTypeHost, EntityTypeUser, EntityTypeService}

// Criticality is an asset criticality level
type Criticality string

const (
	CriticalityLow        Criticality = "low_impact"
	CriticalityMedium     Criticality = "medium_impact"
	CriticalityHigh       Criticality = "high_impact"
	CriticalityExtreme    Criticality = "extreme_impact"
	CriticalityUnassigned Criticality = "unassigned"
)

// EntitySource is where an entity record came from
type EntitySource string

const (
	EntitySourceCSVUpload EntitySource = "csv_upload"
	EntitySourceEvents    EntitySource = "events"
)

// RiskSeverity is a calculated risk level
type RiskSeverity string

const (
	RiskSeverityUnknown  RiskSeverity = "Unknown"
	RiskSeverityLow      RiskSeverity = "Low"
	RiskSeverityModerate RiskSeverity = "Moderate"
	RiskSeverityHigh     RiskSeverity = "High"
	RiskSeverityCritical RiskSeverity = "Critical"
)

// SortOrder is the direction of an entity list sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Entity list paging limits. MaxEntityResultWindow is the default
// index.max_result_window of Elasticsearch: from+size may not exceed it.
const (
	DefaultEntityPerPage  = 10
	MaxEntityPerPage      = 10000
	MaxEntityResultWindow = 10000
)

// EntityListParams are the query parameters of the entity list
type EntityListParams struct {
	EntityTypes []EntityType   `json:"entityTypes" validate:"required,min=1,dive,oneof=host user service"`
	Criticality []Criticality  `json:"criticality,omitempty" validate:"dive,oneof=low_impact medium_impact high_impact extreme_impact unassigned"`
	Sources     []EntitySource `json:"sources,omitempty" validate:"dive,oneof=csv_upload events"`
	Severity    []RiskSeverity `json:"severity,omitempty" validate:"dive,oneof=Unknown Low Moderate High Critical"`
	FilterQuery string         `json:"filterQuery,omitempty"`
	SortField   string         `json:"sortField,omitempty"`
	SortOrder   SortOrder      `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	Page        int            `json:"page,omitempty" validate:"gte=0"`
	PerPage     int            `json:"per_page,omitempty" validate:"gte=0,lte=10000"`
	Namespace   string         `json:"namespace,omitempty"`
}

// WithDefaults returns a copy with unset paging and sort fields filled in
func (p EntityListParams) WithDefaults() EntityListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultEntityPerPage
	}
	if p.PerPage > MaxEntityPerPage {
		p.PerPage = MaxEntityPerPage
	}
	if p.SortField == "" {
		p.SortField = "@timestamp"
	}
	if p.SortOrder == "" {
		p.SortOrder = SortDesc
	}
	if p.Namespace == "" {
		p.Namespace = "default"
	}
	return p
}

// ValidateWindow rejects a page that reaches past the result window. It
// expects params with defaults applied.
func (p EntityListParams) ValidateWindow() error {
	if p.PerPage < 1 || p.Page < 1 {
		return BadRequest("page and per_page must be positive", nil)
	}
	if p.Page-1 > (MaxEntityResultWindow-p.PerPage)/p.PerPage {
		return BadRequest(fmt.Sprintf("page %d with per_page %d reaches past the first %d entities",
			p.Page, p.PerPage, MaxEntityResultWindow), nil)
	}
	return nil
}

// EntityListResult is a page of entity records
type EntityListResult struct {
	Records []map[string]any `json:"records"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// EntityIndex returns the latest-entities index for an entity type and namespace
func EntityIndex(t EntityType, namespace string) string {
	return fmt.Sprintf(".entities.v1.latest.security_%s_%s", t, namespace)
}
