// Package ecs holds the Elastic Common Schema fields lookout indexes and turns
// them into Elasticsearch mappings.
//
// The field map in ecs_field_map_gen.go is generated from the upstream
// ecs_flat.yml with:
//
//	lookout ecs generate --input ecs_flat.yml --output ecs/ecs_field_map_gen.go
package ecs

import (
	"sort"
	"strings"
)

// MultiField is an alternate indexing of a field, such as a text variant of a keyword
type MultiField struct {
	Name string
	Type string
}

// FieldSpec describes how one ECS field is indexed
type FieldSpec struct {
	Type          string
	Array         bool
	Required      bool
	IgnoreAbove   int
	ScalingFactor int
	MultiFields   []MultiField
	// Disabled maps an object whose contents are stored but not indexed
	Disabled bool
}

// FieldMap maps flat dotted field names to their spec
type FieldMap map[string]FieldSpec

// Names returns the field names in sorted order
func (fm FieldMap) Names() []string {
	names := make([]string, 0, len(fm))
	for name := range fm {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subset returns the fields equal to, or nested below, one of prefixes
func (fm FieldMap) Subset(prefixes ...string) FieldMap {
	out := make(FieldMap)
	for name, spec := range fm {
		if matchesPrefix(name, prefixes) {
			out[name] = spec
		}
	}
	return out
}

// Merge returns a new map with the fields of other added; other wins on conflict
func (fm FieldMap) Merge(other FieldMap) FieldMap {
	out := make(FieldMap, len(fm)+len(other))
	for name, spec := range fm {
		out[name] = spec
	}
	for name, spec := range other {
		out[name] = spec
	}
	return out
}

// Fields returns the generated ECS field map. The returned map is a copy.
func Fields() FieldMap {
	return FieldMap(nil).Merge(ecsFieldMap)
}

// Version returns the ECS version the field map was generated from
func Version() string {
	return ecsVersion
}

func matchesPrefix(name string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if name == p || strings.HasPrefix(name, p+".") {
			return true
		}
	}
	return false
}
