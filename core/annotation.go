package core

import (
	"time"
)

// DefaultAnnotationIndex is the index (or alias) annotations are written to
const DefaultAnnotationIndex = "observability-annotations"

// Annotation find limits
const (
	DefaultFindSize = 10000
	MaxFindSize     = 10000
	DefaultFindFrom = "now-30d"
	DefaultFindTo   = "now"
)

// SLOWildcard matches every SLO (or every SLO instance) in find queries
const SLOWildcard = "*"

// Annotation is an annotation document as stored in Elasticsearch.
// Field names follow ECS where an ECS field exists.
type Annotation struct {
	Timestamp  time.Time          `json:"@timestamp"`
	Message    string             `json:"message"`
	Annotation AnnotationMeta     `json:"annotation"`
	Event      *AnnotationEvent   `json:"event,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	Service    *AnnotationService `json:"service,omitempty"`
	Monitor    *AnnotationMonitor `json:"monitor,omitempty"`
	SLO        *AnnotationSLO     `json:"slo,omitempty"`
	Host       *AnnotationHost    `json:"host,omitempty"`
}

// AnnotationMeta holds the annotation-specific fields
type AnnotationMeta struct {
	Type  string           `json:"type" validate:"required"`
	Title string           `json:"title,omitempty"`
	Style *AnnotationStyle `json:"style,omitempty"`
}

// AnnotationStyle describes how an annotation is drawn on a chart
type AnnotationStyle struct {
	Icon  string          `json:"icon,omitempty"`
	Color string          `json:"color,omitempty"`
	Line  *AnnotationLine `json:"line,omitempty"`
	Rect  *AnnotationRect `json:"rect,omitempty"`
}

// AnnotationLine is the line style of a point annotation
type AnnotationLine struct {
	Width        int    `json:"width,omitempty"`
	Style        string `json:"style,omitempty" validate:"omitempty,oneof=dashed solid dotted"`
	IconPosition string `json:"iconPosition,omitempty" validate:"omitempty,oneof=top bottom"`
}

// AnnotationRect is the fill style of a range annotation
type AnnotationRect struct {
	Fill string `json:"fill,omitempty" validate:"omitempty,oneof=inside outside"`
}

// AnnotationEvent carries the time range and bookkeeping timestamps
type AnnotationEvent struct {
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
	Created *time.Time `json:"created,omitempty"`
	Updated *time.Time `json:"updated,omitempty"`
}

// AnnotationService identifies the service an annotation belongs to
type AnnotationService struct {
	Name        string `json:"name,omitempty"`
	Environment string `json:"environment,omitempty"`
	Version     string `json:"version,omitempty"`
}

// AnnotationMonitor identifies a synthetics monitor
type AnnotationMonitor struct {
	ID string `json:"id,omitempty"`
}

// AnnotationSLO identifies an SLO and optionally one of its instances
type AnnotationSLO struct {
	ID         string `json:"id" validate:"required"`
	InstanceID string `json:"instanceId,omitempty"`
}

// AnnotationHost identifies a host
type AnnotationHost struct {
	Name string `json:"name,omitempty"`
}

// Prepare fills in server-side fields before a create
func (a *Annotation) Prepare(now time.Time) {
	if a.Annotation.Title == "" {
		a.Annotation.Title = a.Message
	}
	if a.Event == nil {
		a.Event = &AnnotationEvent{}
	}
	created := now.UTC()
	a.Event.Created = &created
	a.Event.Updated = nil
}

// PrepareUpdate fills in server-side fields before an update
func (a *Annotation) PrepareUpdate(now time.Time) {
	if a.Annotation.Title == "" {
		a.Annotation.Title = a.Message
	}
	if a.Event == nil {
		a.Event = &AnnotationEvent{}
	}
	updated := now.UTC()
	a.Event.Updated = &updated
}

// ValidateRange checks event.end is not before event.start
func (a *Annotation) ValidateRange() error {
	if a.Event == nil || a.Event.Start == nil || a.Event.End == nil {
		return nil
	}
	if a.Event.End.Before(*a.Event.Start) {
		return BadRequest("event.end must not be before event.start", nil)
	}
	return nil
}

// StoredAnnotation is the envelope returned after a create, update or get
type StoredAnnotation struct {
	ID     string     `json:"_id"`
	Index  string     `json:"_index"`
	Source Annotation `json:"_source"`
}

// FindParams holds the filters accepted by the find operation
type FindParams struct {
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
	SLOID         string `json:"sloId,omitempty"`
	SLOInstanceID string `json:"sloInstanceId,omitempty"`
	ServiceName   string `json:"serviceName,omitempty"`
	Filter        string `json:"filter,omitempty"`
	Size          int    `json:"size,omitempty"`
}

// WithDefaults returns a copy with unset fields replaced by defaults
func (p FindParams) WithDefaults() FindParams {
	if p.Start == "" {
		p.Start = DefaultFindFrom
	}
	if p.End == "" {
		p.End = DefaultFindTo
	}
	if p.Size <= 0 {
		p.Size = DefaultFindSize
	}
	if p.Size > MaxFindSize {
		p.Size = MaxFindSize
	}
	return p
}

// FoundAnnotation is an annotation with its document id inlined
type FoundAnnotation struct {
	ID string `json:"id"`
	Annotation
}

// FindResult is the result of a find
type FindResult struct {
	Items []FoundAnnotation `json:"items"`
	Total int64             `json:"total"`
}

// AnnotationPermissions reports what the caller may do with the annotation index
type AnnotationPermissions struct {
	Index          string `json:"index"`
	HasGoldLicense bool   `json:"hasGoldLicense"`
	Read           bool   `json:"read"`
	Write          bool   `json:"write"`
}
