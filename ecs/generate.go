package ecs

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"text/template"

	"golang.org/x/tools/imports"
	"gopkg.in/yaml.v3"
)

// GenerateOptions controls the rendered source file
type GenerateOptions struct {
	// Package is the Go package of the generated file
	Package string
	// VarName is the name of the generated FieldMap variable
	VarName string
	// Version is recorded in the header and in the ecsVersion constant
	Version string
	// Prefixes limits output to fields under these names; empty keeps every field
	Prefixes []string
}

func (o GenerateOptions) withDefaults() GenerateOptions {
	if o.Package == "" {
		o.Package = "ecs"
	}
	if o.VarName == "" {
		o.VarName = "ecsFieldMap"
	}
	if o.Version == "" {
		o.Version = "unknown"
	}
	return o
}

// flatField is one entry of ecs_flat.yml. Only the keys that affect
// indexing are decoded.
type flatField struct {
	FlatName      string   `yaml:"flat_name"`
	Type          string   `yaml:"type"`
	Required      bool     `yaml:"required"`
	IgnoreAbove   int      `yaml:"ignore_above"`
	ScalingFactor int      `yaml:"scaling_factor"`
	Normalize     []string `yaml:"normalize"`
	MultiFields   []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"multi_fields"`
}

// ParseFlat decodes an ecs_flat.yml document into a FieldMap
func ParseFlat(flatYAML []byte) (FieldMap, error) {
	var raw map[string]flatField
	if err := yaml.Unmarshal(flatYAML, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ECS flat definition: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("ECS flat definition contains no fields")
	}

	fm := make(FieldMap, len(raw))
	for key, f := range raw {
		name := f.FlatName
		if name == "" {
			name = key
		}
		if f.Type == "" {
			return nil, fmt.Errorf("field %q has no type", name)
		}
		spec := FieldSpec{
			Type:          f.Type,
			Required:      f.Required,
			IgnoreAbove:   f.IgnoreAbove,
			ScalingFactor: f.ScalingFactor,
		}
		for _, n := range f.Normalize {
			if n == "array" {
				spec.Array = true
			}
		}
		for _, mf := range f.MultiFields {
			spec.MultiFields = append(spec.MultiFields, MultiField{Name: mf.Name, Type: mf.Type})
		}
		sort.Slice(spec.MultiFields, func(i, j int) bool { return spec.MultiFields[i].Name < spec.MultiFields[j].Name })
		fm[name] = spec
	}
	return fm, nil
}

var sourceTemplate = template.Must(template.New("ecs").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by lookout ecs generate from ECS {{ .Version }}; DO NOT EDIT.

package {{ .Package }}

const ecsVersion = {{ quote .Version }}

var {{ .VarName }} = FieldMap{
{{- range .Fields }}
	{{ quote .Name }}: {
		Type: {{ quote .Spec.Type }},
		{{- if .Spec.Array }}
		Array: true,
		{{- end }}
		{{- if .Spec.Required }}
		Required: true,
		{{- end }}
		{{- if .Spec.IgnoreAbove }}
		IgnoreAbove: {{ .Spec.IgnoreAbove }},
		{{- end }}
		{{- if .Spec.ScalingFactor }}
		ScalingFactor: {{ .Spec.ScalingFactor }},
		{{- end }}
		{{- if .Spec.MultiFields }}
		MultiFields: []MultiField{
			{{- range .Spec.MultiFields }}
			{Name: {{ quote .Name }}, Type: {{ quote .Type }}},
			{{- end }}
		},
		{{- end }}
	},
{{- end }}
}
`))

type templateField struct {
	Name string
	Spec FieldSpec
}

// Generate renders ecs_flat.yml as formatted Go source declaring a FieldMap
// with keys in sorted order
func Generate(flatYAML []byte, opts GenerateOptions) ([]byte, error) {
	opts = opts.withDefaults()

	fm, err := ParseFlat(flatYAML)
	if err != nil {
		return nil, err
	}
	fm = fm.Subset(opts.Prefixes...)
	if len(fm) == 0 {
		return nil, fmt.Errorf("no ECS fields match prefixes %v", opts.Prefixes)
	}

	fields := make([]templateField, 0, len(fm))
	for _, name := range fm.Names() {
		fields = append(fields, templateField{Name: name, Spec: fm[name]})
	}

	var buf bytes.Buffer
	err = sourceTemplate.Execute(&buf, struct {
		GenerateOptions
		Fields []templateField
	}{opts, fields})
	if err != nil {
		return nil, fmt.Errorf("failed to render field map: %w", err)
	}

	src, err := imports.Process("ecs_field_map_gen.go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}
	return src, nil
}
