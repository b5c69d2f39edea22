package ecs

import (
	"strings"
)

// annotationFields are indexed by annotations in addition to the ECS subset
var annotationFields = FieldMap{
	"annotation.type":  {Type: "keyword", IgnoreAbove: 1024},
	"annotation.title": {Type: "text", MultiFields: []MultiField{{Name: "keyword", Type: "keyword"}}},
	"annotation.style": {Type: "object", Disabled: true},
	"event.updated":    {Type: "date"},
	"monitor.id":       {Type: "keyword", IgnoreAbove: 1024},
	"slo.id":           {Type: "keyword", IgnoreAbove: 1024},
	"slo.instanceId":   {Type: "keyword", IgnoreAbove: 1024},
	"message":          {Type: "text"},
}

// annotationECSPrefixes selects the ECS fields an annotation document may carry
var annotationECSPrefixes = []string{
	"@timestamp", "message", "tags", "event.start", "event.end", "event.created",
	"service.name", "service.environment", "service.version", "host.name",
}

// AnnotationFieldMap returns the fields of the annotation index
func AnnotationFieldMap() FieldMap {
	return Fields().Subset(annotationECSPrefixes...).Merge(annotationFields)
}

// AnnotationMappings returns the mappings of the annotation index. Unknown
// fields are kept in _source but not indexed.
func AnnotationMappings() map[string]any {
	m := MappingFromFieldMap(AnnotationFieldMap())
	m["dynamic"] = false
	return m
}

// MappingFromFieldMap nests flat dotted names into an Elasticsearch
// properties tree. A field below a non-object or disabled leaf is dropped.
func MappingFromFieldMap(fm FieldMap) map[string]any {
	root := map[string]any{}
	for _, name := range fm.Names() {
		parts := strings.Split(name, ".")
		props := root
		ok := true
		for _, part := range parts[:len(parts)-1] {
			props, ok = childProperties(props, part)
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}
		props[parts[len(parts)-1]] = fieldMapping(fm[name])
	}
	return map[string]any{"properties": root}
}

// childProperties returns the properties map of the object named part,
// creating it when missing
func childProperties(props map[string]any, part string) (map[string]any, bool) {
	node, found := props[part].(map[string]any)
	if !found {
		node = map[string]any{}
		props[part] = node
	}
	if t, hasType := node["type"]; hasType && t != "object" && t != "nested" {
		return nil, false
	}
	if enabled, isBool := node["enabled"].(bool); isBool && !enabled {
		return nil, false
	}
	child, found := node["properties"].(map[string]any)
	if !found {
		child = map[string]any{}
		node["properties"] = child
	}
	return child, true
}

func fieldMapping(spec FieldSpec) map[string]any {
	m := map[string]any{"type": spec.Type}
	if spec.IgnoreAbove > 0 {
		m["ignore_above"] = spec.IgnoreAbove
	}
	if spec.ScalingFactor > 0 {
		m["scaling_factor"] = spec.ScalingFactor
	}
	if spec.Disabled {
		m["enabled"] = false
	}
	if len(spec.MultiFields) > 0 {
		fields := make(map[string]any, len(spec.MultiFields))
		for _, mf := range spec.MultiFields {
			fields[mf.Name] = map[string]any{"type": mf.Type}
		}
		m["fields"] = fields
	}
	return m
}
